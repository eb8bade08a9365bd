package events

import (
	"log/slog"
	"sync"
)

// Observer is notified of dispatched events. Implementations filter the
// event types they care about via ShouldHandle.
type Observer interface {
	// OnEvent is called for each dispatched event the observer handles.
	OnEvent(event Event) error

	// Name identifies the observer in logs.
	Name() string

	// ShouldHandle reports whether this observer wants the given type.
	ShouldHandle(t Type) bool
}

// Dispatcher fans events out to registered observers. Safe for concurrent
// use; observers are notified sequentially in registration order.
type Dispatcher struct {
	mu        sync.RWMutex
	observers []Observer
	logger    *slog.Logger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger}
}

// Register adds an observer. It will receive all future events its
// ShouldHandle accepts.
func (d *Dispatcher) Register(o Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, o)
	d.logger.Debug("observer registered", "observer", o.Name())
}

// Unregister removes a previously registered observer.
func (d *Dispatcher) Unregister(o Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, obs := range d.observers {
		if obs == o {
			d.observers[i] = d.observers[len(d.observers)-1]
			d.observers = d.observers[:len(d.observers)-1]
			d.logger.Debug("observer unregistered", "observer", o.Name())
			return
		}
	}
}

// Dispatch notifies every observer that handles the event's type. An
// observer error is logged and does not stop delivery to the others.
func (d *Dispatcher) Dispatch(event Event) {
	d.mu.RLock()
	observers := make([]Observer, len(d.observers))
	copy(observers, d.observers)
	d.mu.RUnlock()

	for _, o := range observers {
		if !o.ShouldHandle(event.Type) {
			continue
		}
		if err := o.OnEvent(event); err != nil {
			d.logger.Warn("observer failed to handle event",
				"observer", o.Name(), "type", event.Type, "error", err)
		}
	}
}

// ObserverCount returns the number of registered observers.
func (d *Dispatcher) ObserverCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.observers)
}

// ObserverFunc adapts a function to the Observer interface. A nil types
// list handles every event type.
type ObserverFunc struct {
	ObserverName string
	Types        []Type
	Fn           func(Event) error
}

func (f *ObserverFunc) OnEvent(event Event) error { return f.Fn(event) }

func (f *ObserverFunc) Name() string { return f.ObserverName }

func (f *ObserverFunc) ShouldHandle(t Type) bool {
	if len(f.Types) == 0 {
		return true
	}
	for _, want := range f.Types {
		if want == t {
			return true
		}
	}
	return false
}
