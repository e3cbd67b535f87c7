package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/fluxai/fluxgen/internal/core/domain"
)

const (
	providerGoogle    = "google"
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	identityIDPrefix  = "google:"
)

// GoogleConfig holds the OAuth client registration.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Google implements ports.OAuthProvider with the OpenID Connect userinfo endpoint.
type Google struct {
	conf        *oauth2.Config
	userInfoURL string
}

// NewGoogle returns nil when no client id is configured, so callers can skip
// registering the provider.
func NewGoogle(cfg GoogleConfig) *Google {
	if cfg.ClientID == "" {
		return nil
	}
	return &Google{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (g *Google) Name() string { return providerGoogle }

func (g *Google) AuthCodeURL(state string) string {
	return g.conf.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Exchange trades the authorization code for a token and reads the user's profile.
func (g *Google) Exchange(ctx context.Context, code string) (*domain.UserIdentity, error) {
	tok, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google exchange: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("google userinfo request: %w", err)
	}
	resp, err := g.conf.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo: status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("google userinfo decode: %w", err)
	}
	if info.Sub == "" || info.Email == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if !info.EmailVerified {
		return nil, fmt.Errorf("%w: email not verified", domain.ErrInvalidCredentials)
	}

	return &domain.UserIdentity{
		ID:          identityIDPrefix + info.Sub,
		Email:       strings.ToLower(info.Email),
		DisplayName: info.Name,
		PhotoURL:    info.Picture,
	}, nil
}
