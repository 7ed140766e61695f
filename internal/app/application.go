package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Rorical/katabasis/internal/dispatcher"
	"github.com/Rorical/katabasis/internal/eventbus"
)

// Application manages the complete TUI lifecycle
type Application struct {
	runtime    *Runtime
	eventBus   *eventbus.EventBus
	dispatcher *dispatcher.EventDispatcher
	model      *Model
	cancel     context.CancelFunc
}

func NewApplication(ctx context.Context, rt *Runtime) *Application {
	eb := eventbus.NewEventBus()
	eb.SetErrorCallback(func(e eventbus.Error) {
		rt.Log.Warn("event dropped", zap.String("operation", e.Operation), zap.Error(e.Err))
	})
	disp := dispatcher.NewEventDispatcher(eb)

	ctx, cancel := context.WithCancel(ctx)
	model := NewModel(ctx, Deps{
		Session:    rt.Session,
		Backend:    rt.Client,
		Bus:        eb,
		Dispatcher: disp,
		Profile:    rt.ProfileName,
		Persona:    rt.Profile.Persona,
		Log:        rt.Log,
	})

	return &Application{
		runtime:    rt,
		eventBus:   eb,
		dispatcher: disp,
		model:      model,
		cancel:     cancel,
	}
}

func (app *Application) Start() error {
	p := tea.NewProgram(app.model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Stop cancels requests still in flight and closes the bus.
func (app *Application) Stop() {
	app.cancel()
	app.dispatcher.Stop()
	app.eventBus.Close()
}
