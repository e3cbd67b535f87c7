package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// --- Auth ---

type credentialsRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type identityResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

type sessionResponse struct {
	Token string           `json:"token"`
	User  identityResponse `json:"user"`
}

// --- Models ---

type modelResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Premium       bool   `json:"premium"`
	Available     bool   `json:"available"`
	RequiresLogin bool   `json:"requires_login"`
}

// --- Generations ---

type generationRequest struct {
	Model  string `json:"model"  validate:"required"`
	Prompt string `json:"prompt" validate:"required,max=1000"`
}

type generationResponse struct {
	ImageURL     string `json:"image_url"`
	Model        string `json:"model"`
	ModelName    string `json:"model_name"`
	Persisted    bool   `json:"persisted"`
	PersistError string `json:"persist_error,omitempty"`
}

// --- Gallery ---

type galleryItemResponse struct {
	ID          string    `json:"id"`
	Prompt      string    `json:"prompt"`
	ImageURL    string    `json:"image_url"`
	AuthorEmail string    `json:"author_email"`
	ModelName   string    `json:"model_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type galleryResponse struct {
	Items []galleryItemResponse `json:"items"`
	Count int                   `json:"count"`
}

// --- Profile ---

type entitlementResponse struct {
	Authenticated    bool       `json:"authenticated"`
	SubscriptionTier string     `json:"subscription_tier,omitempty"`
	Role             string     `json:"role,omitempty"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
}

type profileResponse struct {
	User        identityResponse    `json:"user"`
	Entitlement entitlementResponse `json:"entitlement"`
}

// --- Admin ---

type userResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	DisplayName      string    `json:"display_name,omitempty"`
	SubscriptionTier string    `json:"subscription_tier"`
	Role             string    `json:"role"`
	CreatedAt        time.Time `json:"created_at"`
}

type grantUltimateRequest struct {
	Email string `json:"email" validate:"required,email"`
}
