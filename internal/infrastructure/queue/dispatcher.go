package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/fluxai/fluxgen/internal/core/domain"
	"github.com/fluxai/fluxgen/internal/core/ports"
	"github.com/fluxai/fluxgen/internal/pkg/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes auth-state events to a fixed set of workers using
// consistent hashing on the user id, so events for one user are handled in
// the order they were emitted.
type Dispatcher struct {
	workers  []chan ports.AuthEvent
	resolver ports.EntitlementResolver
	bus      ports.EntitlementPublisher
	cache    ports.EntitlementCache
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used. cache may be nil.
func NewDispatcher(
	numWorkers int,
	resolver ports.EntitlementResolver,
	bus ports.EntitlementPublisher,
	cache ports.EntitlementCache,
	log zerolog.Logger,
) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan ports.AuthEvent, numWorkers),
		resolver: resolver,
		bus:      bus,
		cache:    cache,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.AuthEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an event to the worker responsible for its user. It never
// blocks: it is called from identity provider listeners. When the shard is
// full the event is dropped; the next request from that user resolves again.
func (d *Dispatcher) Enqueue(event ports.AuthEvent) bool {
	idx := d.shardIndex(event.UserID)
	select {
	case d.workers[idx] <- event:
		metrics.AuthEventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return true
	default:
		d.log.Warn().
			Str("user_id", event.UserID).
			Int("worker_id", idx).
			Msg("auth event queue full, dropping event")
		return false
	}
}

// Listener adapts Enqueue to ports.AuthStateListener.
func (d *Dispatcher) Listener() ports.AuthStateListener {
	return func(ev ports.AuthEvent) { d.Enqueue(ev) }
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.AuthEvent) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuthEventsQueueDepth.WithLabelValues(label).Dec()
			d.handle(ctx, event)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, event ports.AuthEvent) {
	if event.Identity == nil {
		if d.cache != nil {
			if err := d.cache.Invalidate(ctx, event.UserID); err != nil {
				d.log.Warn().Err(err).Str("user_id", event.UserID).Msg("failed to invalidate entitlement cache")
			}
		}
		d.bus.Publish(ports.EntitlementChange{UserID: event.UserID, State: domain.Unauthenticated()})
		return
	}

	if _, err := d.resolver.Resolve(ctx, event.Identity); err != nil {
		d.log.Error().Err(err).
			Str("user_id", event.UserID).
			Msg("entitlement resolution on sign-in failed")
		// The caller stays signed out until a later resolution succeeds.
		d.bus.Publish(ports.EntitlementChange{UserID: event.UserID, State: domain.Unauthenticated()})
	}
}
