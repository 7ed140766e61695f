package core

import (
	"sync"

	"github.com/Rorical/katabasis/internal/models"
)

// Transcript is the ordered, append-only list of messages for one chat view.
// Ids come from a counter so two entries can never collide.
type Transcript struct {
	mu      sync.RWMutex
	entries []models.Message
	nextID  uint64
}

func NewTranscript() *Transcript {
	return &Transcript{
		entries: make([]models.Message, 0),
		nextID:  1,
	}
}

// Append adds an entry at the end and returns it. Callers validate content
// before appending; entries are never checked again.
func (t *Transcript) Append(origin models.Origin, content string) models.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	msg := models.Message{
		ID:      t.nextID,
		Content: content,
		Origin:  origin,
	}
	t.nextID++
	t.entries = append(t.entries, msg)
	return msg
}

// Entries returns a copy of all entries in order.
func (t *Transcript) Entries() []models.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	result := make([]models.Message, len(t.entries))
	copy(result, t.entries)
	return result
}

// Since returns the entries appended after the first n.
func (t *Transcript) Since(n int) []models.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n >= len(t.entries) {
		return nil
	}
	result := make([]models.Message, len(t.entries)-n)
	copy(result, t.entries[n:])
	return result
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// IsEmpty only selects the placeholder presentation.
func (t *Transcript) IsEmpty() bool {
	return t.Len() == 0
}
