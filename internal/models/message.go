package models

// Origin tags who authored a transcript entry.
type Origin int

const (
	User Origin = iota
	Agent
)

func (o Origin) String() string {
	switch o {
	case User:
		return "user"
	case Agent:
		return "agent"
	default:
		return "unknown"
	}
}

// Message is one transcript entry. Entries are never mutated once appended.
type Message struct {
	ID      uint64
	Content string
	Origin  Origin
}
