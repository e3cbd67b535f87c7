package handler

import (
	"github.com/fluxai/fluxgen/internal/core/domain"
	"github.com/fluxai/fluxgen/internal/core/ports"
)

// --- Service result → HTTP response ---

func toIdentityResponse(id *domain.UserIdentity) identityResponse {
	if id == nil {
		return identityResponse{}
	}
	return identityResponse{
		ID:          id.ID,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		PhotoURL:    id.PhotoURL,
	}
}

func toSessionResponse(s *ports.Session) sessionResponse {
	return sessionResponse{Token: s.Token, User: toIdentityResponse(s.Identity)}
}

func toModelResponse(m domain.Model, state domain.EntitlementState) modelResponse {
	requiresLogin := m.Premium && !state.Authenticated
	return modelResponse{
		ID:            string(m.ID),
		Name:          m.Name,
		Premium:       m.Premium,
		Available:     !requiresLogin,
		RequiresLogin: requiresLogin,
	}
}

func toGenerationResponse(r *ports.GenerateResult) generationResponse {
	return generationResponse{
		ImageURL:     r.ImageURL,
		Model:        string(r.Model.ID),
		ModelName:    r.Model.Name,
		Persisted:    r.Persisted,
		PersistError: r.PersistError,
	}
}

func toGalleryItem(r domain.GenerationRecord) galleryItemResponse {
	return galleryItemResponse{
		ID:          r.ID,
		Prompt:      r.Prompt,
		ImageURL:    r.ImageURL,
		AuthorEmail: r.AuthorEmail,
		ModelName:   r.ModelName,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

func toEntitlementResponse(s domain.EntitlementState) entitlementResponse {
	if !s.Authenticated || s.Record == nil {
		return entitlementResponse{}
	}
	created := s.Record.CreatedAt.UTC()
	return entitlementResponse{
		Authenticated:    true,
		SubscriptionTier: string(s.Record.SubscriptionTier),
		Role:             s.Record.Role,
		CreatedAt:        &created,
	}
}

func toUserResponse(r *domain.EntitlementRecord) userResponse {
	return userResponse{
		ID:               r.ID,
		Email:            r.Email,
		DisplayName:      r.DisplayName,
		SubscriptionTier: string(r.SubscriptionTier),
		Role:             r.Role,
		CreatedAt:        r.CreatedAt.UTC(),
	}
}
