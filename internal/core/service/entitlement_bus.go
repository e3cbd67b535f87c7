package service

import (
	"sync"

	"github.com/fluxai/fluxgen/internal/core/domain"
	"github.com/fluxai/fluxgen/internal/core/ports"
)

// EntitlementBus fans entitlement changes out to per-user subscribers.
// Each subscriber holds a single slot: a slow reader only ever sees the latest state.
type EntitlementBus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*subscription
}

type subscription struct {
	userID string
	ch     chan domain.EntitlementState
}

// NewEntitlementBus returns an empty bus.
func NewEntitlementBus() *EntitlementBus {
	return &EntitlementBus{subs: make(map[uint64]*subscription)}
}

// Subscribe returns a channel receiving the states published for userID and a
// function that closes it. The cancel function is safe to call more than once.
func (b *EntitlementBus) Subscribe(userID string) (<-chan domain.EntitlementState, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	sub := &subscription{userID: userID, ch: make(chan domain.EntitlementState, 1)}
	b.subs[id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish implements ports.EntitlementPublisher. It never blocks.
func (b *EntitlementBus) Publish(change ports.EntitlementChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		if sub.userID != change.UserID {
			continue
		}
		select {
		case sub.ch <- change.State:
			continue
		default:
		}
		// Slot full: drop the stale state and keep the newest.
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- change.State:
		default:
		}
	}
}

// Subscribers reports the number of live subscriptions.
func (b *EntitlementBus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
