package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fluxai/fluxgen/internal/core/domain"
	"github.com/fluxai/fluxgen/internal/core/ports"
)

type recordingResolver struct {
	mu    sync.Mutex
	order []string
	err   error
}

func (r *recordingResolver) Resolve(_ context.Context, identity *domain.UserIdentity) (domain.EntitlementState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, identity.ID+":"+identity.Email)
	if r.err != nil {
		return domain.Unauthenticated(), r.err
	}
	return domain.Authenticated(&domain.EntitlementRecord{ID: identity.ID}), nil
}

func (r *recordingResolver) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

type recordingBus struct {
	mu      sync.Mutex
	changes []ports.EntitlementChange
}

func (b *recordingBus) Publish(change ports.EntitlementChange) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = append(b.changes, change)
}

func (b *recordingBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.changes)
}

type recordingCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *recordingCache) Get(context.Context, string) (*domain.EntitlementRecord, bool, error) {
	return nil, false, nil
}

func (c *recordingCache) Put(context.Context, *domain.EntitlementRecord) error { return nil }

func (c *recordingCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, id)
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDispatcher_ResolvesSignInsInOrder(t *testing.T) {
	resolver := &recordingResolver{}
	d := NewDispatcher(4, resolver, &recordingBus{}, nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	listener := d.Listener()
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		listener(ports.AuthEvent{UserID: "u1", Identity: &domain.UserIdentity{ID: "u1", Email: email}})
	}

	waitFor(t, func() bool { return len(resolver.seen()) == 3 })
	got := resolver.seen()
	want := []string{"u1:a@x.com", "u1:b@x.com", "u1:c@x.com"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events handled out of order: %v", got)
		}
	}
}

func TestDispatcher_SignOutPublishesUnauthenticated(t *testing.T) {
	resolver := &recordingResolver{}
	bus := &recordingBus{}
	cache := &recordingCache{}
	d := NewDispatcher(2, resolver, bus, cache, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.AuthEvent{UserID: "u1"})

	waitFor(t, func() bool { return bus.count() == 1 })
	bus.mu.Lock()
	change := bus.changes[0]
	bus.mu.Unlock()
	if change.UserID != "u1" || change.State.Authenticated {
		t.Fatalf("unexpected change: %+v", change)
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if len(cache.invalidated) != 1 || cache.invalidated[0] != "u1" {
		t.Fatalf("expected cache invalidation, got %v", cache.invalidated)
	}
	if len(resolver.seen()) != 0 {
		t.Fatalf("sign-out must not resolve")
	}
}

func TestDispatcher_ResolveFailurePublishesUnauthenticated(t *testing.T) {
	resolver := &recordingResolver{err: domain.ErrStoreUnavailable}
	bus := &recordingBus{}
	d := NewDispatcher(1, resolver, bus, nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.AuthEvent{UserID: "u1", Identity: &domain.UserIdentity{ID: "u1"}})

	waitFor(t, func() bool { return bus.count() == 1 })
	bus.mu.Lock()
	defer bus.mu.Unlock()
	if bus.changes[0].State.Authenticated {
		t.Fatalf("a failed resolution must not publish an authenticated state")
	}
}

func TestDispatcher_EnqueueDoesNotBlockWhenFull(t *testing.T) {
	d := NewDispatcher(1, &recordingResolver{err: errors.New("unused")}, &recordingBus{}, nil, zerolog.Nop())

	for i := 0; i < channelBuffer; i++ {
		if !d.Enqueue(ports.AuthEvent{UserID: "u1"}) {
			t.Fatalf("event %d rejected before the buffer was full", i)
		}
	}
	if d.Enqueue(ports.AuthEvent{UserID: "u1"}) {
		t.Fatalf("expected the event to be dropped when the shard is full")
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &recordingResolver{}, &recordingBus{}, nil, zerolog.Nop())

	first := d.shardIndex("user-42")
	for i := 0; i < 10; i++ {
		if d.shardIndex("user-42") != first {
			t.Fatalf("shard index changed between calls")
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard index out of range: %d", first)
	}
}
