package ports

import (
	"context"
	"iter"

	"github.com/fluxai/fluxgen/internal/core/domain"
)

// EntitlementResolver turns an identity into the caller's entitlement state.
type EntitlementResolver interface {
	Resolve(ctx context.Context, identity *domain.UserIdentity) (domain.EntitlementState, error)
}

// EntitlementChange is published on the entitlement bus after each resolution.
type EntitlementChange struct {
	UserID string
	State  domain.EntitlementState
}

// EntitlementPublisher is the write side of the entitlement bus.
type EntitlementPublisher interface {
	Publish(change EntitlementChange)
}

// GenerateInput carries one submission from the transport layer.
type GenerateInput struct {
	Identity *domain.UserIdentity // nil for anonymous callers
	// State is the caller's entitlement when the transport already resolved
	// it. Nil means the service resolves Identity itself.
	State    *domain.EntitlementState
	DeviceID string
	Model    domain.ModelID
	Prompt   string
}

// GenerateResult is returned after a successful generation.
type GenerateResult struct {
	ImageURL  string
	Model     domain.Model
	Persisted bool
	// PersistError is set when the gallery write failed after a successful generation.
	PersistError string
}

// GenerationService runs the gate, the generation call and the gallery write.
type GenerationService interface {
	Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error)
}

// GalleryService reads the community gallery.
type GalleryService interface {
	List(ctx context.Context, limit int) (iter.Seq[domain.GenerationRecord], error)
}

// AdminService backs the admin endpoints.
type AdminService interface {
	ListUsers(ctx context.Context) ([]*domain.EntitlementRecord, error)
	ListImages(ctx context.Context) ([]domain.GenerationRecord, error)
	GrantUltimate(ctx context.Context, email string) (*domain.EntitlementRecord, error)
}
