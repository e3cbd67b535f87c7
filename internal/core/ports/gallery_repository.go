package ports

import (
	"context"

	"github.com/fluxai/fluxgen/internal/core/domain"
)

// GalleryRepository is the append-only `images` collection.
type GalleryRepository interface {
	Append(ctx context.Context, rec *domain.GenerationRecord) error
	// ListRecent returns up to limit records, newest first. limit <= 0 means no limit.
	ListRecent(ctx context.Context, limit int) ([]domain.GenerationRecord, error)
}
