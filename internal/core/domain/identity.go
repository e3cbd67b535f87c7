package domain

import "time"

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// UserIdentity is the identity provider's view of a signed-in user.
type UserIdentity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// Credential is a local email/password account owned by the identity provider.
type Credential struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	Provider     string
	CreatedAt    time.Time
}

// Identity projects the credential onto the identity shape handed to the rest of the system.
func (c *Credential) Identity() *UserIdentity {
	return &UserIdentity{
		ID:          c.ID,
		Email:       c.Email,
		DisplayName: c.DisplayName,
	}
}
