package domain

import "time"

// Tier is the subscription level attached to an identity.
type Tier string

const (
	TierBasic    Tier = "basic"
	TierUltimate Tier = "ultimate"
)

// CurrentSchemaVersion is written on every new entitlement record. Bump it together
// with a migration that backfills the new fields on existing documents.
const CurrentSchemaVersion = 1

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t == TierBasic || t == TierUltimate
}

// EntitlementRecord is the durable per-user entitlement document.
type EntitlementRecord struct {
	ID               string    `json:"id" bson:"_id"`
	Email            string    `json:"email" bson:"email"`
	DisplayName      string    `json:"display_name,omitempty" bson:"display_name,omitempty"`
	PhotoURL         string    `json:"photo_url,omitempty" bson:"photo_url,omitempty"`
	SubscriptionTier Tier      `json:"subscription_tier" bson:"subscription_tier"`
	Role             string    `json:"role" bson:"role"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
	SchemaVersion    int       `json:"-" bson:"schema_version"`
}

// NewEntitlementRecord builds the first record for an identity. Every identity
// starts on the ultimate tier: signing in is what unlocks the top plan.
func NewEntitlementRecord(id *UserIdentity, now time.Time) *EntitlementRecord {
	return &EntitlementRecord{
		ID:               id.ID,
		Email:            id.Email,
		DisplayName:      id.DisplayName,
		PhotoURL:         id.PhotoURL,
		SubscriptionTier: TierUltimate,
		Role:             RoleMember,
		CreatedAt:        now.UTC(),
		SchemaVersion:    CurrentSchemaVersion,
	}
}

// IsAdmin reports whether the record carries the admin role.
func (r *EntitlementRecord) IsAdmin() bool {
	return r.Role == RoleAdmin
}

// EntitlementState is what the rest of the application sees for the current caller.
// Record is nil when Authenticated is false.
type EntitlementState struct {
	Authenticated bool               `json:"authenticated"`
	Record        *EntitlementRecord `json:"record,omitempty"`
}

// Unauthenticated is the state used for anonymous callers and for callers whose
// entitlement could not be resolved.
func Unauthenticated() EntitlementState {
	return EntitlementState{}
}

// Authenticated wraps a resolved record.
func Authenticated(rec *EntitlementRecord) EntitlementState {
	return EntitlementState{Authenticated: true, Record: rec}
}

// Tier returns the effective tier, or the empty tier for anonymous callers.
func (s EntitlementState) Tier() Tier {
	if !s.Authenticated || s.Record == nil {
		return ""
	}
	return s.Record.SubscriptionTier
}
