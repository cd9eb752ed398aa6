package resource

import (
	"context"
	"errors"
	"testing"
)

type countingReleaser struct {
	err   error
	order *[]string
	name  string
	count int
}

func (r *countingReleaser) Release(context.Context) error {
	r.count++
	if r.order != nil {
		*r.order = append(*r.order, r.name)
	}
	return r.err
}

type testObserver struct {
	events []Event
}

func (o *testObserver) OnResourceEvent(e Event) {
	o.events = append(o.events, e)
}

func TestScope_TrackRelease(t *testing.T) {
	ctx := context.Background()
	scope := NewScope()
	r := &countingReleaser{}

	h, err := scope.Track(ctx, "buffer", r)
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if h == 0 {
		t.Fatal("Expected non-zero handle")
	}
	if scope.Len() != 1 {
		t.Fatalf("Expected Len() == 1, got %d", scope.Len())
	}

	got, ok := scope.Get(h)
	if !ok || got != r {
		t.Fatal("Get should return the tracked object")
	}

	if err := scope.Release(ctx, h); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if r.count != 1 {
		t.Fatalf("Expected 1 release, got %d", r.count)
	}
	if scope.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Release")
	}
	if _, ok := scope.Get(h); ok {
		t.Fatal("Get should fail after Release")
	}
}

func TestScope_ReleaseTwiceIsNoop(t *testing.T) {
	ctx := context.Background()
	scope := NewScope()
	r := &countingReleaser{}

	h, _ := scope.Track(ctx, "array", r)
	_ = scope.Release(ctx, h)
	_ = scope.Release(ctx, h)
	_ = scope.Close(ctx)

	if r.count != 1 {
		t.Fatalf("Expected exactly one release, got %d", r.count)
	}
	if err := scope.Release(ctx, 0); err != nil {
		t.Fatalf("Releasing handle 0 should be a no-op: %v", err)
	}
	if err := scope.Release(ctx, 99); err != nil {
		t.Fatalf("Releasing unknown handle should be a no-op: %v", err)
	}
}

func TestScope_CloseReleasesRemainingNewestFirst(t *testing.T) {
	ctx := context.Background()
	scope := NewScope()
	var order []string

	a := &countingReleaser{name: "a", order: &order}
	b := &countingReleaser{name: "b", order: &order}
	c := &countingReleaser{name: "c", order: &order}

	_, _ = scope.Track(ctx, "a", a)
	hb, _ := scope.Track(ctx, "b", b)
	_, _ = scope.Track(ctx, "c", c)

	_ = scope.Release(ctx, hb)
	if err := scope.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	want := []string{"b", "c", "a"}
	if len(order) != len(want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, order)
		}
	}
}

func TestScope_CloseJoinsErrors(t *testing.T) {
	ctx := context.Background()
	scope := NewScope()
	errA := errors.New("a failed")
	errB := errors.New("b failed")

	_, _ = scope.Track(ctx, "a", &countingReleaser{err: errA})
	_, _ = scope.Track(ctx, "b", &countingReleaser{err: errB})

	err := scope.Close(ctx)
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("Expected both errors joined, got %v", err)
	}
}

func TestScope_TrackAfterClose(t *testing.T) {
	ctx := context.Background()
	scope := NewScope()
	_ = scope.Close(ctx)

	r := &countingReleaser{}
	h, err := scope.Track(ctx, "late", r)
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("Expected ErrClosed, got %v", err)
	}
	if h != 0 {
		t.Fatal("Expected zero handle after Close")
	}
	if r.count != 1 {
		t.Fatal("Object tracked after Close must be released immediately")
	}
}

func TestScope_HandlesNotReused(t *testing.T) {
	ctx := context.Background()
	scope := NewScope()

	h1, _ := scope.Track(ctx, "first", &countingReleaser{})
	_ = scope.Release(ctx, h1)
	second := &countingReleaser{}
	h2, _ := scope.Track(ctx, "second", second)

	if h1 == h2 {
		t.Fatal("Handles must not be reused")
	}
	_ = scope.Release(ctx, h1)
	if second.count != 0 {
		t.Fatal("Stale handle released a newer object")
	}
}

func TestScope_Observer(t *testing.T) {
	ctx := context.Background()
	obs := &testObserver{}
	scope := NewScope(obs)

	relErr := errors.New("boom")
	h, _ := scope.Track(ctx, "transform", &countingReleaser{err: relErr})
	if len(obs.events) != 1 || obs.events[0].Type != EventAcquired {
		t.Fatal("Expected EventAcquired")
	}
	if obs.events[0].Handle != h || obs.events[0].Label != "transform" {
		t.Fatal("Wrong handle or label in event")
	}

	err := scope.Release(ctx, h)
	if !errors.Is(err, relErr) {
		t.Fatalf("Expected release error, got %v", err)
	}
	if len(obs.events) != 2 || obs.events[1].Type != EventReleased {
		t.Fatal("Expected EventReleased")
	}
	if !errors.Is(obs.events[1].Err, relErr) {
		t.Fatal("Release error should be reported to observers")
	}

	var fnEvents int
	scope.Subscribe(ObserverFunc(func(Event) { fnEvents++ }))
	_, _ = scope.Track(ctx, "array", &countingReleaser{})
	if fnEvents != 1 {
		t.Fatalf("Expected ObserverFunc to receive 1 event, got %d", fnEvents)
	}
}
