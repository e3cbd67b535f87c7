package service

import (
	"context"
	"fmt"
	"iter"
	"slices"

	"github.com/fluxai/fluxgen/internal/core/domain"
	"github.com/fluxai/fluxgen/internal/core/ports"
)

const (
	defaultGalleryLimit = 50
	maxGalleryLimit     = 100
)

type GalleryService struct {
	repo ports.GalleryRepository
}

func NewGalleryService(repo ports.GalleryRepository) *GalleryService {
	return &GalleryService{repo: repo}
}

// List snapshots the gallery at call time and returns it newest first.
// The returned sequence can be ranged over any number of times.
func (s *GalleryService) List(ctx context.Context, limit int) (iter.Seq[domain.GenerationRecord], error) {
	if limit <= 0 {
		limit = defaultGalleryLimit
	}
	if limit > maxGalleryLimit {
		limit = maxGalleryLimit
	}

	records, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list gallery: %w", err)
	}
	sortNewestFirst(records)

	return slices.Values(records), nil
}

func sortNewestFirst(records []domain.GenerationRecord) {
	slices.SortStableFunc(records, func(a, b domain.GenerationRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
