package dispatcher

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/katabasis/internal/eventbus"
	"github.com/Rorical/katabasis/internal/update"
)

// EventDispatcher handles routing events from core to the UI
type EventDispatcher struct {
	eventBus *eventbus.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewEventDispatcher(eventBus *eventbus.EventBus) *EventDispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventDispatcher{
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Listen waits for the next core event. The model re-issues it after every
// CoreEventMsg; it yields nil once the dispatcher is stopped or the bus closed.
func (ed *EventDispatcher) Listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev, ok := <-ed.eventBus.CoreToUI():
			if !ok {
				return nil
			}
			return update.CoreEventMsg{Event: ev}
		case <-ed.ctx.Done():
			return nil
		}
	}
}

func (ed *EventDispatcher) Stop() {
	ed.cancel()
}

func (ed *EventDispatcher) EventBus() *eventbus.EventBus {
	return ed.eventBus
}
