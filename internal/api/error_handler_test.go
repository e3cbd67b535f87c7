package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fluxai/fluxgen/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{"login required", domain.Deny(domain.ReasonLoginRequiredForModel).Err(), http.StatusForbidden, "login_required_for_model"},
		{"quota", fmt.Errorf("wrapped: %w", domain.Deny(domain.ReasonAnonymousQuotaExhausted).Err()), http.StatusForbidden, "anonymous_quota_exhausted"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, ""},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, ""},
		{"exists", domain.ErrUserExists, http.StatusConflict, ""},
		{"not found", domain.ErrUserNotFound, http.StatusNotFound, ""},
		{"unknown model", fmt.Errorf("%w: x", domain.ErrUnknownModel), http.StatusUnprocessableEntity, ""},
		{"invalid prompt", domain.ErrInvalidPrompt, http.StatusUnprocessableEntity, ""},
		{"upstream", fmt.Errorf("generate: %w", domain.ErrUpstream), http.StatusBadGateway, ""},
		{"network", fmt.Errorf("generate: %w", domain.ErrNetwork), http.StatusGatewayTimeout, ""},
		{"store", fmt.Errorf("%w: boom", domain.ErrStoreUnavailable), http.StatusServiceUnavailable, ""},
		{"echo", echo.NewHTTPError(http.StatusTooManyRequests, "slow down"), http.StatusTooManyRequests, ""},
		{"unknown", errors.New("kaboom"), http.StatusInternalServerError, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body["error"] == "" {
				t.Fatalf("expected an error message")
			}
			if body["reason"] != tc.reason {
				t.Fatalf("expected reason %q, got %q", tc.reason, body["reason"])
			}
			if tc.status == http.StatusInternalServerError && body["error"] != "internal server error" {
				t.Fatalf("unexpected errors must not leak details: %q", body["error"])
			}
		})
	}
}
