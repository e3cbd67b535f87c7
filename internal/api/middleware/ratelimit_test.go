package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestRateLimiter_PerCaller(t *testing.T) {
	rl := NewRateLimiter(PerMinute(1, 2), zerolog.Nop())
	defer rl.Stop()

	e := echo.New()
	handler := rl.Middleware()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	call := func(remoteAddr string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/generations", nil)
		req.RemoteAddr = remoteAddr
		c := e.NewContext(req, rec)
		if err := handler(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := call("203.0.113.7:1234"); rec.Code != http.StatusOK {
			t.Fatalf("request %d within burst got %d", i, rec.Code)
		}
	}

	rec := call("203.0.113.7:1234")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
	}

	if rec := call("198.51.100.2:1234"); rec.Code != http.StatusOK {
		t.Fatalf("another address must have its own bucket, got %d", rec.Code)
	}
	if rl.Len() != 2 {
		t.Fatalf("expected 2 tracked callers, got %d", rl.Len())
	}
}

func TestRateLimiter_KeyPrefersUser(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(KeyDeviceID, "d1")
	c.Set(KeyUserID, "u1")

	if got := callerKey(c); got != "user:u1" {
		t.Fatalf("expected user key, got %s", got)
	}
}

func TestRateLimiter_KeyIgnoresDeviceID(t *testing.T) {
	e := echo.New()
	for _, device := range []string{"", "d1", "d2"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		c := e.NewContext(req, httptest.NewRecorder())
		if device != "" {
			c.Set(KeyDeviceID, device)
		}
		if got := callerKey(c); got != "ip:203.0.113.7" {
			t.Fatalf("device %q: expected ip key, got %s", device, got)
		}
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1, CleanupInterval: time.Minute}, zerolog.Nop())
	defer rl.Stop()

	rl.limiter("user:a")
	rl.cleanup(time.Now().Add(3 * time.Minute))

	if rl.Len() != 0 {
		t.Fatalf("expected idle callers to be dropped")
	}
}
