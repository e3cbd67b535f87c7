package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/fluxai/fluxgen/internal/core/domain"
	"github.com/fluxai/fluxgen/internal/core/ports"
	"github.com/fluxai/fluxgen/internal/pkg/metrics"
)

const maxPromptLength = 1000

type generationService struct {
	resolver  ports.EntitlementResolver
	markers   ports.AnonymousMarkerStore
	generator ports.ImageGenerator
	gallery   ports.GalleryRepository
	log       zerolog.Logger
	now       func() time.Time
}

// NewGenerationService returns a GenerationService implementation.
func NewGenerationService(
	resolver ports.EntitlementResolver,
	markers ports.AnonymousMarkerStore,
	generator ports.ImageGenerator,
	gallery ports.GalleryRepository,
	log zerolog.Logger,
) ports.GenerationService {
	return &generationService{
		resolver:  resolver,
		markers:   markers,
		generator: generator,
		gallery:   gallery,
		log:       log,
		now:       time.Now,
	}
}

// Generate gates, generates and persists a single submission.
func (s *generationService) Generate(ctx context.Context, in ports.GenerateInput) (*ports.GenerateResult, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" || utf8.RuneCountInString(prompt) > maxPromptLength {
		return nil, fmt.Errorf("%w: must be between 1 and %d characters", domain.ErrInvalidPrompt, maxPromptLength)
	}
	model, ok := domain.LookupModel(in.Model)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownModel, in.Model)
	}

	// 1. Entitlement. An unresolved entitlement never grants access.
	var (
		state domain.EntitlementState
		err   error
	)
	if in.State != nil {
		state = *in.State
	} else if state, err = s.resolver.Resolve(ctx, in.Identity); err != nil {
		s.log.Warn().Err(err).Msg("entitlement unresolved, treating caller as anonymous")
		state = domain.Unauthenticated()
	}

	// 2. Anonymous marker, only meaningful for anonymous callers.
	markerSet := false
	if !state.Authenticated {
		if in.DeviceID == "" {
			markerSet = true
		} else if markerSet, err = s.markers.IsSet(ctx, in.DeviceID); err != nil {
			return nil, fmt.Errorf("generate: read anonymous marker: %w", err)
		}
	}

	// 3. Gate.
	decision := domain.Authorize(state, model.ID, markerSet)
	if !decision.Allowed {
		metrics.GateDenialsTotal.WithLabelValues(string(decision.Reason)).Inc()
		s.log.Info().Str("model", string(model.ID)).Str("reason", string(decision.Reason)).Msg("generation denied")
		return nil, decision.Err()
	}

	// 4. Generation call.
	start := s.now()
	imageURL, err := s.generator.Generate(ctx, model.ID, prompt)
	metrics.GenerationDuration.WithLabelValues(string(model.ID)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(string(model.ID), outcomeLabel(err)).Inc()
		return nil, fmt.Errorf("generate: %w", err)
	}
	metrics.GenerationsTotal.WithLabelValues(string(model.ID), "ok").Inc()

	result := &ports.GenerateResult{ImageURL: imageURL, Model: model}

	// 5. Anonymous callers burn their free generation; authenticated ones are persisted.
	if !state.Authenticated {
		if err := s.markers.Set(ctx, in.DeviceID); err != nil {
			s.log.Error().Err(err).Str("device_id", in.DeviceID).Msg("failed to set anonymous marker")
		}
		return result, nil
	}

	rec := &domain.GenerationRecord{
		Prompt:      prompt,
		ImageURL:    imageURL,
		AuthorID:    state.Record.ID,
		AuthorEmail: state.Record.Email,
		ModelName:   model.Name,
		CreatedAt:   s.now().UTC(),
	}
	if err := storeRetry.do(ctx, func(ctx context.Context) error { return s.gallery.Append(ctx, rec) }); err != nil {
		metrics.GalleryWritesTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Str("user_id", rec.AuthorID).Msg("failed to persist generation")
		result.PersistError = err.Error()
		return result, nil
	}
	metrics.GalleryWritesTotal.WithLabelValues("ok").Inc()
	result.Persisted = true

	s.log.Info().
		Str("user_id", rec.AuthorID).
		Str("model", string(model.ID)).
		Msg("generation persisted")

	return result, nil
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrNetwork):
		return "network_error"
	case errors.Is(err, domain.ErrUpstream):
		return "upstream_error"
	default:
		return "error"
	}
}
