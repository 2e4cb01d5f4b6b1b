package events

import (
	"log/slog"
	"sync"
)

// ListenerID identifies a registered listener for later removal.
type ListenerID int64

// Handler receives the payload of an emitted event.
type Handler func(payload any)

type listener struct {
	id ListenerID
	fn Handler
}

// Emitter is a per-connection event dispatcher. Listeners for an event
// run synchronously, in registration order, on the goroutine that calls
// Emit. A panicking listener is recovered and logged; the remaining
// listeners still run. Emitters are instance-scoped so independent
// conversations in one process never share a registry.
type Emitter struct {
	mu        sync.Mutex
	nextID    ListenerID
	listeners map[string][]listener
	logger    *slog.Logger
}

// NewEmitter creates an emitter. Pass nil logger for default.
func NewEmitter(logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{
		listeners: make(map[string][]listener),
		logger:    logger,
	}
}

// On registers a listener for an event and returns its id.
func (e *Emitter) On(event string, fn Handler) ListenerID {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	e.listeners[event] = append(e.listeners[event], listener{id: e.nextID, fn: fn})
	return e.nextID
}

// Off removes a previously registered listener. Unknown ids are a no-op.
func (e *Emitter) Off(event string, id ListenerID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ls := e.listeners[event]
	for i, l := range ls {
		if l.id == id {
			e.listeners[event] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

// Emit invokes every listener for the event with the payload.
func (e *Emitter) Emit(event string, payload any) {
	e.mu.Lock()
	ls := make([]listener, len(e.listeners[event]))
	copy(ls, e.listeners[event])
	e.mu.Unlock()

	for _, l := range ls {
		e.invoke(event, l, payload)
	}
}

// invoke isolates one listener so its panic cannot take down dispatch
// or the channel read loop above it.
func (e *Emitter) invoke(event string, l listener, payload any) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("event listener panicked",
				"event", event,
				"listener_id", l.id,
				"panic", r,
			)
		}
	}()
	l.fn(payload)
}
