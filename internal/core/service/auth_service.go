package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fluxai/fluxgen/internal/core/domain"
	"github.com/fluxai/fluxgen/internal/core/ports"
)

const (
	minPasswordLength = 6
	providerPassword  = "password"
)

// AuthService is the local identity provider: email/password accounts plus
// social sign-in through the configured OAuth providers.
type AuthService struct {
	repo      ports.CredentialRepository
	providers map[string]ports.OAuthProvider
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger

	mu        sync.RWMutex
	nextID    uint64
	listeners map[uint64]ports.AuthStateListener
}

func NewAuthService(
	repo ports.CredentialRepository,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
	providers ...ports.OAuthProvider,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	s := &AuthService{
		repo:      repo,
		providers: make(map[string]ports.OAuthProvider, len(providers)),
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
		listeners: make(map[uint64]ports.AuthStateListener),
	}
	for _, p := range providers {
		s.providers[p.Name()] = p
	}
	return s
}

func (s *AuthService) SignUp(ctx context.Context, email, password string) (*ports.Session, error) {
	email = normalizeEmail(email)
	if !validEmail(email) || len(password) < minPasswordLength {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.Credential{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Provider:     providerPassword,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	return s.startSession(created.Identity())
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*ports.Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	cred, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if cred.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.startSession(cred.Identity())
}

func (s *AuthService) SignInWithProvider(ctx context.Context, provider, code string) (*ports.Session, error) {
	p, ok := s.providers[provider]
	if !ok {
		return nil, domain.ErrProviderNotConfigured
	}
	if code == "" {
		return nil, domain.ErrInvalidCredentials
	}

	identity, err := p.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return nil, err
		}
		s.log.Warn().Err(err).Str("provider", provider).Msg("provider exchange failed")
		return nil, domain.ErrInvalidCredentials
	}

	return s.startSession(identity)
}

// SignOut notifies listeners; tokens are stateless and simply expire.
func (s *AuthService) SignOut(_ context.Context, userID string) error {
	if userID == "" {
		return domain.ErrInvalidCredentials
	}
	s.emit(ports.AuthEvent{UserID: userID})
	return nil
}

func (s *AuthService) ProviderLoginURL(provider, state string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", domain.ErrProviderNotConfigured
	}
	return p.AuthCodeURL(state), nil
}

// OnAuthStateChanged registers listener for every sign-in and sign-out.
func (s *AuthService) OnAuthStateChanged(listener ports.AuthStateListener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *AuthService) startSession(identity *domain.UserIdentity) (*ports.Session, error) {
	token, err := s.generateToken(identity)
	if err != nil {
		return nil, err
	}
	s.emit(ports.AuthEvent{UserID: identity.ID, Identity: identity})
	return &ports.Session{Token: token, Identity: identity}, nil
}

func (s *AuthService) emit(ev ports.AuthEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.listeners {
		l(ev)
	}
}

func (s *AuthService) generateToken(identity *domain.UserIdentity) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   identity.ID,
		"email": identity.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}
	if identity.DisplayName != "" {
		claims["name"] = identity.DisplayName
	}
	if identity.PhotoURL != "" {
		claims["picture"] = identity.PhotoURL
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
