package core

import "sync"

// GateState is the busy/idle state of a controller.
type GateState int

const (
	Idle GateState = iota
	Pending
)

func (s GateState) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

// Gate admits at most one outstanding operation. A caller that finds the
// gate Pending is turned away; nothing is queued.
type Gate struct {
	mu    sync.Mutex
	state GateState
}

// TryEnter moves Idle -> Pending and reports whether it did.
func (g *Gate) TryEnter() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Pending {
		return false
	}
	g.state = Pending
	return true
}

// Leave moves back to Idle.
func (g *Gate) Leave() {
	g.mu.Lock()
	g.state = Idle
	g.mu.Unlock()
}

func (g *Gate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Gate) Pending() bool {
	return g.State() == Pending
}
