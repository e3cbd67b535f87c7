package ports

import (
	"context"

	"github.com/fluxai/fluxgen/internal/core/domain"
)

// CredentialRepository persists local accounts for the identity provider.
type CredentialRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Credential, error)
	Create(ctx context.Context, cred *domain.Credential) (*domain.Credential, error)
}

// OAuthProvider is a social login backend (Google).
type OAuthProvider interface {
	Name() string
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for the provider's view of the user.
	Exchange(ctx context.Context, code string) (*domain.UserIdentity, error)
}
