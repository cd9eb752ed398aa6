package resource

import "context"

// Handle identifies an object tracked by a Scope.
// Handle 0 is reserved and always invalid. Handles are never reused within
// a scope, so a stale handle can never release a newer object.
type Handle uint32

// Releaser is implemented by externally allocated objects that must be
// released explicitly.
type Releaser interface {
	Release(ctx context.Context) error
}

// EventType identifies a lifecycle notification.
type EventType uint8

const (
	EventAcquired EventType = iota
	EventReleased
)

func (t EventType) String() string {
	switch t {
	case EventAcquired:
		return "acquired"
	case EventReleased:
		return "released"
	}
	return "unknown"
}

// Event represents a resource lifecycle event.
type Event struct {
	Value  Releaser
	Err    error // release error, EventReleased only
	Label  string
	Handle Handle
	Type   EventType
}

// Observer receives notifications about resource lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) OnResourceEvent(e Event) { f(e) }
