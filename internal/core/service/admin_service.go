package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fluxai/fluxgen/internal/core/domain"
	"github.com/fluxai/fluxgen/internal/core/ports"
)

type AdminService struct {
	profiles ports.ProfileRepository
	gallery  ports.GalleryRepository
	cache    ports.EntitlementCache
	bus      ports.EntitlementPublisher
	log      zerolog.Logger
}

// NewAdminService wires the admin use cases. cache and bus may be nil.
func NewAdminService(
	profiles ports.ProfileRepository,
	gallery ports.GalleryRepository,
	cache ports.EntitlementCache,
	bus ports.EntitlementPublisher,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{profiles: profiles, gallery: gallery, cache: cache, bus: bus, log: log}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.EntitlementRecord, error) {
	return s.profiles.List(ctx)
}

func (s *AdminService) ListImages(ctx context.Context) ([]domain.GenerationRecord, error) {
	records, err := s.gallery.ListRecent(ctx, 0)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(records)
	return records, nil
}

// GrantUltimate upgrades every record registered under email and returns the
// most recently created one.
func (s *AdminService) GrantUltimate(ctx context.Context, email string) (*domain.EntitlementRecord, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, domain.ErrUserNotFound
	}

	records, err := s.profiles.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrUserNotFound
	}

	for _, rec := range records {
		if err := s.grant(ctx, rec); err != nil {
			return nil, err
		}
	}

	s.log.Info().Str("email", email).Int("records", len(records)).Msg("ultimate granted")
	return records[0], nil
}

func (s *AdminService) grant(ctx context.Context, rec *domain.EntitlementRecord) error {
	if rec.SubscriptionTier != domain.TierUltimate {
		if err := storeRetry.do(ctx, func(ctx context.Context) error {
			return s.profiles.SetTier(ctx, rec.ID, domain.TierUltimate)
		}); err != nil {
			return fmt.Errorf("grant ultimate %s: %w", rec.ID, err)
		}
		rec.SubscriptionTier = domain.TierUltimate
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, rec.ID); err != nil {
			s.log.Warn().Err(err).Str("user_id", rec.ID).Msg("failed to invalidate entitlement cache")
		}
	}
	if s.bus != nil {
		s.bus.Publish(ports.EntitlementChange{UserID: rec.ID, State: domain.Authenticated(rec)})
	}
	return nil
}
