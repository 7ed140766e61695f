package eventbus

import (
	"errors"
	"sync"
	"time"

	"github.com/Rorical/katabasis/internal/models"
)

var (
	ErrClosed = errors.New("event bus is closed")
	ErrFull   = errors.New("core to UI channel is full")
)

// CoreEvent represents events sent from Core to UI
type CoreEvent interface {
	CoreEvent()
}

// NavigateEvent - Core asks the UI to switch views
type NavigateEvent struct {
	View models.View
}

func (e NavigateEvent) CoreEvent() {}

// NoticeEvent - Core asks the UI to show a blocking alert
type NoticeEvent struct {
	Notice models.Notice
}

func (e NoticeEvent) CoreEvent() {}

// Error represents errors in event processing
type Error struct {
	Operation string
	Event     CoreEvent
	Err       error
	Timestamp time.Time
}

func (e Error) Error() string {
	return e.Operation + ": " + e.Err.Error()
}

func (e Error) Unwrap() error { return e.Err }

// EventBus carries effects from controllers to the UI. It implements
// core.Effects, so controllers publish without knowing about the UI.
type EventBus struct {
	mu            sync.RWMutex
	coreToUI      chan CoreEvent
	closed        bool
	errorCallback func(Error)
}

const DefaultBufferSize = 100

func NewEventBus() *EventBus {
	return NewEventBusSize(DefaultBufferSize)
}

func NewEventBusSize(size int) *EventBus {
	return &EventBus{coreToUI: make(chan CoreEvent, size)}
}

func (eb *EventBus) SetErrorCallback(callback func(Error)) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.errorCallback = callback
}

func (eb *EventBus) reportError(operation string, event CoreEvent, err error) {
	eb.mu.RLock()
	callback := eb.errorCallback
	eb.mu.RUnlock()

	if callback != nil {
		callback(Error{
			Operation: operation,
			Event:     event,
			Err:       err,
			Timestamp: time.Now(),
		})
	}
}

// SendToUI never blocks. A closed bus or a full buffer drops the event and
// reports it through the error callback.
func (eb *EventBus) SendToUI(event CoreEvent) error {
	eb.mu.RLock()
	if eb.closed {
		eb.mu.RUnlock()
		eb.reportError("SendToUI", event, ErrClosed)
		return ErrClosed
	}
	select {
	case eb.coreToUI <- event:
		eb.mu.RUnlock()
		return nil
	default:
		eb.mu.RUnlock()
		eb.reportError("SendToUI", event, ErrFull)
		return ErrFull
	}
}

func (eb *EventBus) Navigate(view models.View) {
	eb.SendToUI(NavigateEvent{View: view})
}

func (eb *EventBus) Notify(notice models.Notice) {
	eb.SendToUI(NoticeEvent{Notice: notice})
}

func (eb *EventBus) CoreToUI() <-chan CoreEvent {
	return eb.coreToUI
}

// Close is idempotent. Receivers see the channel closed once buffered
// events are drained.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	if eb.closed {
		return
	}
	eb.closed = true
	close(eb.coreToUI)
}
