package middleware

// Keys under which the middleware chain stores request-scoped values.
const (
	KeyIdentity    = "identity"    // *domain.UserIdentity
	KeyUserID      = "user_id"     // string
	KeyRole        = "role"        // string, from the entitlement record
	KeyEntitlement = "entitlement" // domain.EntitlementState
	KeyDeviceID    = "device_id"   // string
)
