package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork: the generation API or a proxied upstream was unreachable.
	ErrNetwork = errors.New("network error")
	// ErrUpstream: the generation API answered with a non-2xx status or a malformed body.
	ErrUpstream = errors.New("upstream error")
	// ErrStoreUnavailable: the profile or gallery store could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUserExists            = errors.New("user already exists")
	ErrUserNotFound          = errors.New("user not found")
	ErrProviderNotConfigured = errors.New("identity provider not configured")

	ErrAuthorizationDenied = errors.New("authorization denied")
	ErrForbidden           = errors.New("access forbidden")

	ErrUnknownModel  = errors.New("unknown model")
	ErrInvalidPrompt = errors.New("invalid prompt")
)

// UpstreamStatusError reports a non-2xx answer from a proxied upstream.
type UpstreamStatusError struct {
	StatusCode int
	Status     string
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("%s: status %d %s", ErrUpstream, e.StatusCode, e.Status)
}

// Is lets errors.Is(err, ErrUpstream) match.
func (e *UpstreamStatusError) Is(target error) bool {
	return target == ErrUpstream
}
