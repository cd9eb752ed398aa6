package resource

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("resource scope closed")

// localBackend is the in-memory handle table behind a Scope.
type localBackend struct {
	entries []entry
	mu      sync.Mutex
	closed  bool
}

type entry struct {
	value Releaser
	label string
	valid bool
}

func newLocalBackend() *localBackend {
	return &localBackend{
		entries: make([]entry, 0, 8),
	}
}

// create stores a value and returns its handle.
func (b *localBackend) create(label string, value Releaser) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}

	b.entries = append(b.entries, entry{
		value: value,
		label: label,
		valid: true,
	})
	return Handle(len(b.entries)), nil
}

// get retrieves a live value by handle.
func (b *localBackend) get(handle Handle) (entry, bool) {
	if handle == 0 {
		return entry{}, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := int(handle) - 1
	if idx >= len(b.entries) {
		return entry{}, false
	}

	e := b.entries[idx]
	return e, e.valid
}

// drop invalidates a handle and returns its entry if it was live.
// A second drop of the same handle returns false.
func (b *localBackend) drop(handle Handle) (entry, bool) {
	if handle == 0 {
		return entry{}, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := int(handle) - 1
	if idx >= len(b.entries) {
		return entry{}, false
	}

	e := b.entries[idx]
	if !e.valid {
		return entry{}, false
	}
	b.entries[idx] = entry{}
	return e, true
}

// closeAndDrain marks the backend closed and returns live handles newest first.
func (b *localBackend) closeAndDrain() []Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true

	var live []Handle
	for i := len(b.entries) - 1; i >= 0; i-- {
		if b.entries[i].valid {
			live = append(live, Handle(i+1))
		}
	}
	return live
}

func (b *localBackend) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := 0
	for _, e := range b.entries {
		if e.valid {
			count++
		}
	}
	return count
}
