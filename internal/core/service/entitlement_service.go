package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fluxai/fluxgen/internal/core/domain"
	"github.com/fluxai/fluxgen/internal/core/ports"
	"github.com/fluxai/fluxgen/internal/pkg/metrics"
)

// EntitlementService resolves identities into entitlement state.
//
// Two business rules live here and nowhere else:
//   - the first resolution of an identity creates its record on the ultimate tier;
//   - every later resolution upgrades a non-ultimate record to ultimate.
//
// Neither rule is a fallback: a failed resolution yields the unauthenticated state.
type EntitlementService struct {
	repo  ports.ProfileRepository
	cache ports.EntitlementCache
	bus   ports.EntitlementPublisher
	log   zerolog.Logger
	now   func() time.Time
}

// NewEntitlementService wires the resolver. cache and bus may be nil.
func NewEntitlementService(
	repo ports.ProfileRepository,
	cache ports.EntitlementCache,
	bus ports.EntitlementPublisher,
	log zerolog.Logger,
) *EntitlementService {
	return &EntitlementService{
		repo:  repo,
		cache: cache,
		bus:   bus,
		log:   log,
		now:   time.Now,
	}
}

// Resolve implements ports.EntitlementResolver. It performs at most one write.
// Concurrent resolutions of the same identity converge on the ultimate tier, so
// no locking is needed.
func (s *EntitlementService) Resolve(ctx context.Context, identity *domain.UserIdentity) (domain.EntitlementState, error) {
	if identity == nil {
		return domain.Unauthenticated(), nil
	}

	if rec := s.cached(ctx, identity.ID); rec != nil {
		metrics.EntitlementResolutionsTotal.WithLabelValues("cache_hit").Inc()
		return s.publish(rec), nil
	}

	var rec *domain.EntitlementRecord
	err := storeRetry.do(ctx, func(ctx context.Context) error {
		var err error
		rec, err = s.repo.Get(ctx, identity.ID)
		return err
	})
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		rec = domain.NewEntitlementRecord(identity, s.now())
		if err := storeRetry.do(ctx, func(ctx context.Context) error { return s.repo.Create(ctx, rec) }); err != nil {
			return s.fail(identity.ID, fmt.Errorf("resolve entitlement: create: %w", err))
		}
		metrics.EntitlementResolutionsTotal.WithLabelValues("created").Inc()
		s.log.Info().Str("user_id", identity.ID).Msg("entitlement record created")

	case err != nil:
		return s.fail(identity.ID, fmt.Errorf("resolve entitlement: %w", err))

	case rec.SubscriptionTier != domain.TierUltimate:
		if err := storeRetry.do(ctx, func(ctx context.Context) error {
			return s.repo.SetTier(ctx, rec.ID, domain.TierUltimate)
		}); err != nil {
			return s.fail(identity.ID, fmt.Errorf("resolve entitlement: upgrade: %w", err))
		}
		s.log.Info().Str("user_id", rec.ID).Str("from", string(rec.SubscriptionTier)).Msg("entitlement upgraded")
		rec.SubscriptionTier = domain.TierUltimate
		metrics.EntitlementResolutionsTotal.WithLabelValues("upgraded").Inc()

	default:
		metrics.EntitlementResolutionsTotal.WithLabelValues("unchanged").Inc()
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, rec); err != nil {
			s.log.Warn().Err(err).Str("user_id", rec.ID).Msg("failed to cache entitlement")
		}
	}

	return s.publish(rec), nil
}

// cached returns a cached record only when it is already on the ultimate tier;
// anything else goes through the store so the upgrade rule is applied.
func (s *EntitlementService) cached(ctx context.Context, id string) *domain.EntitlementRecord {
	if s.cache == nil {
		return nil
	}
	rec, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", id).Msg("entitlement cache read failed")
		return nil
	}
	if !ok || rec.SubscriptionTier != domain.TierUltimate {
		return nil
	}
	return rec
}

func (s *EntitlementService) publish(rec *domain.EntitlementRecord) domain.EntitlementState {
	state := domain.Authenticated(rec)
	if s.bus != nil {
		s.bus.Publish(ports.EntitlementChange{UserID: rec.ID, State: state})
	}
	return state
}

func (s *EntitlementService) fail(userID string, err error) (domain.EntitlementState, error) {
	metrics.EntitlementResolutionsTotal.WithLabelValues("error").Inc()
	s.log.Error().Err(err).Str("user_id", userID).Msg("entitlement resolution failed")
	return domain.Unauthenticated(), err
}
