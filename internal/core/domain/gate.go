package domain

import "fmt"

// DenyReason explains why the gate refused a generation.
type DenyReason string

const (
	ReasonLoginRequiredForModel   DenyReason = "login_required_for_model"
	ReasonAnonymousQuotaExhausted DenyReason = "anonymous_quota_exhausted"
)

// Decision is the gate's verdict. Reason is empty when Allowed is true.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Allow is the positive decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny builds a negative decision.
func Deny(reason DenyReason) Decision { return Decision{Reason: reason} }

// Err converts a negative decision into a *DeniedError; it returns nil for Allow.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DeniedError{Reason: d.Reason}
}

// Authorize decides whether a generation request may proceed. It performs no I/O
// and must be evaluated on every submission: entitlement and the anonymous marker
// can change between two attempts.
func Authorize(state EntitlementState, model ModelID, anonymousMarkerSet bool) Decision {
	if !state.Authenticated {
		if IsPremium(model) {
			return Deny(ReasonLoginRequiredForModel)
		}
		if anonymousMarkerSet {
			return Deny(ReasonAnonymousQuotaExhausted)
		}
	}
	return Allow()
}

// DeniedError carries the gate's reason to the transport layer.
type DeniedError struct {
	Reason DenyReason
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAuthorizationDenied, e.Reason)
}

// Is lets errors.Is(err, ErrAuthorizationDenied) match any denial.
func (e *DeniedError) Is(target error) bool {
	return target == ErrAuthorizationDenied
}
