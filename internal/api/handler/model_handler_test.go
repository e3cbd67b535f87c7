package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fluxai/fluxgen/internal/api/middleware"
	"github.com/fluxai/fluxgen/internal/core/domain"
)

func TestModelHandler_List(t *testing.T) {
	tests := []struct {
		name          string
		state         domain.EntitlementState
		premiumUsable bool
	}{
		{name: "anonymous", state: domain.Unauthenticated(), premiumUsable: false},
		{name: "signed in", state: domain.Authenticated(&domain.EntitlementRecord{ID: "u1", SubscriptionTier: domain.TierUltimate}), premiumUsable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/models", nil), rec)
			c.Set(middleware.KeyEntitlement, tt.state)

			if err := NewModelHandler().List(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}

			var resp []modelResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if len(resp) != len(domain.Catalog) {
				t.Fatalf("expected %d models, got %d", len(domain.Catalog), len(resp))
			}
			for _, m := range resp {
				if !m.Premium && !m.Available {
					t.Fatalf("standard model %s must always be available", m.ID)
				}
				if m.Premium && m.Available != tt.premiumUsable {
					t.Fatalf("premium model %s: available=%v", m.ID, m.Available)
				}
				if m.RequiresLogin == m.Available {
					t.Fatalf("requires_login must be the inverse of available for %s", m.ID)
				}
			}
		})
	}
}
