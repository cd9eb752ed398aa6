package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Scope owns externally allocated objects for the duration of one
// operation. Objects may be released early with Release once their data
// has been copied out; Close releases whatever is left, newest first.
// Every tracked object is released exactly once.
type Scope struct {
	backend   *localBackend
	observers []Observer
	obsMu     sync.RWMutex
}

// NewScope creates an empty scope.
func NewScope(observers ...Observer) *Scope {
	return &Scope{
		backend:   newLocalBackend(),
		observers: observers,
	}
}

// Track takes ownership of r. If the scope is already closed r is released
// immediately and ErrClosed is returned.
func (s *Scope) Track(ctx context.Context, label string, r Releaser) (Handle, error) {
	h, err := s.backend.create(label, r)
	if err != nil {
		if rerr := r.Release(ctx); rerr != nil {
			return 0, errors.Join(err, rerr)
		}
		return 0, err
	}

	s.notify(Event{
		Type:   EventAcquired,
		Handle: h,
		Label:  label,
		Value:  r,
	})
	return h, nil
}

// Get returns the live object behind h.
func (s *Scope) Get(h Handle) (Releaser, bool) {
	e, ok := s.backend.get(h)
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Release releases the object behind h. Releasing an unknown or already
// released handle is a no-op.
func (s *Scope) Release(ctx context.Context, h Handle) error {
	e, ok := s.backend.drop(h)
	if !ok {
		return nil
	}

	err := e.value.Release(ctx)
	if err != nil {
		err = fmt.Errorf("release %s: %w", e.label, err)
	}

	s.notify(Event{
		Type:   EventReleased,
		Handle: h,
		Label:  e.label,
		Value:  e.value,
		Err:    err,
	})
	return err
}

// Close releases all remaining objects in reverse acquisition order and
// stops accepting new ones. All release errors are joined.
func (s *Scope) Close(ctx context.Context) error {
	var errs []error
	for _, h := range s.backend.closeAndDrain() {
		if err := s.Release(ctx, h); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of objects not yet released.
func (s *Scope) Len() int {
	return s.backend.len()
}

// Subscribe adds an observer for lifecycle events.
func (s *Scope) Subscribe(o Observer) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *Scope) notify(e Event) {
	s.obsMu.RLock()
	defer s.obsMu.RUnlock()
	for _, o := range s.observers {
		o.OnResourceEvent(e)
	}
}
