package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fluxai/fluxgen/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. Reason is
// only set for generation gate denials.
type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

var denialMessages = map[domain.DenyReason]string{
	domain.ReasonLoginRequiredForModel:   "sign in to use this model",
	domain.ReasonAnonymousQuotaExhausted: "free generation already used, sign in to continue",
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		// The client went away; nobody is left to read the answer.
		if errors.Is(err, context.Canceled) && c.Request().Context().Err() != nil {
			log.Debug().Str("path", c.Path()).Msg("request abandoned by client")
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var denied *domain.DeniedError
	if errors.As(err, &denied) {
		return http.StatusForbidden, errorResponse{Error: denialMessages[denied.Reason], Reason: string(denied.Reason)}
	}

	switch {
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "access forbidden"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, errorResponse{Error: "user already exists"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "user not found"}
	case errors.Is(err, domain.ErrProviderNotConfigured):
		return http.StatusNotFound, errorResponse{Error: "identity provider not configured"}
	case errors.Is(err, domain.ErrUnknownModel), errors.Is(err, domain.ErrInvalidPrompt):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrUpstream):
		log.Warn().Err(err).Str("path", c.Path()).Msg("upstream error")
		return http.StatusBadGateway, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrNetwork):
		log.Warn().Err(err).Str("path", c.Path()).Msg("upstream unreachable")
		return http.StatusGatewayTimeout, errorResponse{Error: "upstream service unreachable"}
	case errors.Is(err, domain.ErrStoreUnavailable):
		log.Error().Err(err).Str("path", c.Path()).Msg("store unavailable")
		return http.StatusServiceUnavailable, errorResponse{Error: "storage temporarily unavailable"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
