package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fluxai/fluxgen/internal/core/domain"
)

type stubResolver struct {
	state domain.EntitlementState
	err   error
	calls int
}

func (r *stubResolver) Resolve(_ context.Context, identity *domain.UserIdentity) (domain.EntitlementState, error) {
	r.calls++
	if identity == nil {
		return domain.Unauthenticated(), nil
	}
	return r.state, r.err
}

func runEntitlement(t *testing.T, resolver *stubResolver, identity *domain.UserIdentity) echo.Context {
	t.Helper()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if identity != nil {
		c.Set(KeyIdentity, identity)
	}

	handler := Entitlement(resolver, zerolog.Nop())(func(c echo.Context) error { return nil })
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return c
}

func TestEntitlement_SetsStateAndRole(t *testing.T) {
	resolver := &stubResolver{state: domain.Authenticated(&domain.EntitlementRecord{ID: "u1", Role: domain.RoleAdmin, SubscriptionTier: domain.TierUltimate})}
	c := runEntitlement(t, resolver, &domain.UserIdentity{ID: "u1"})

	state, _ := c.Get(KeyEntitlement).(domain.EntitlementState)
	if state.Tier() != domain.TierUltimate {
		t.Fatalf("unexpected state: %+v", state)
	}
	if c.Get(KeyRole) != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %v", c.Get(KeyRole))
	}
}

func TestEntitlement_Anonymous(t *testing.T) {
	resolver := &stubResolver{}
	c := runEntitlement(t, resolver, nil)

	state, _ := c.Get(KeyEntitlement).(domain.EntitlementState)
	if state.Authenticated {
		t.Fatalf("expected unauthenticated state")
	}
	if resolver.calls != 0 {
		t.Fatalf("anonymous requests must not be resolved")
	}
}

func TestEntitlement_FailureGrantsNothing(t *testing.T) {
	resolver := &stubResolver{err: domain.ErrStoreUnavailable}
	c := runEntitlement(t, resolver, &domain.UserIdentity{ID: "u1"})

	if c.Get(KeyRole) != nil {
		t.Fatalf("a failed resolution must not set a role")
	}
	state, _ := c.Get(KeyEntitlement).(domain.EntitlementState)
	if state.Authenticated {
		t.Fatalf("expected unauthenticated state")
	}
}
