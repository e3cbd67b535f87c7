package ports

import (
	"context"

	"github.com/fluxai/fluxgen/internal/core/domain"
)

// ProfileRepository stores entitlement records in the `users` collection.
type ProfileRepository interface {
	// Get returns domain.ErrUserNotFound when no record exists for id.
	Get(ctx context.Context, id string) (*domain.EntitlementRecord, error)
	// Create inserts rec unless a record with the same id already exists, in which
	// case the stored document is left untouched.
	Create(ctx context.Context, rec *domain.EntitlementRecord) error
	SetTier(ctx context.Context, id string, tier domain.Tier) error
	// ListByEmail returns every record registered under email, newest first.
	// Emails are not unique across identity providers.
	ListByEmail(ctx context.Context, email string) ([]*domain.EntitlementRecord, error)
	List(ctx context.Context) ([]*domain.EntitlementRecord, error)
}

// EntitlementCache is a read-through cache in front of ProfileRepository.
type EntitlementCache interface {
	Get(ctx context.Context, id string) (*domain.EntitlementRecord, bool, error)
	Put(ctx context.Context, rec *domain.EntitlementRecord) error
	Invalidate(ctx context.Context, id string) error
}
