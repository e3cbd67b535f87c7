package ports

import (
	"context"

	"github.com/fluxai/fluxgen/internal/core/domain"
)

// Session is returned by every successful sign-in.
type Session struct {
	Token    string
	Identity *domain.UserIdentity
}

// AuthEvent is emitted on every auth-state change. Identity is nil on sign-out.
type AuthEvent struct {
	UserID   string
	Identity *domain.UserIdentity
}

// AuthStateListener receives auth events. Listeners must not block.
type AuthStateListener func(AuthEvent)

// IdentityProvider covers sign-up, sign-in and auth-state notifications.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignInWithProvider(ctx context.Context, provider, code string) (*Session, error)
	SignOut(ctx context.Context, userID string) error
	OnAuthStateChanged(listener AuthStateListener) (unsubscribe func())
	// ProviderLoginURL returns the consent URL for a social provider.
	ProviderLoginURL(provider, state string) (string, error)
}
