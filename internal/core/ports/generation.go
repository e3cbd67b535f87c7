package ports

import (
	"context"

	"github.com/fluxai/fluxgen/internal/core/domain"
)

// ImageGenerator calls the external image generation API.
type ImageGenerator interface {
	Generate(ctx context.Context, model domain.ModelID, prompt string) (imageURL string, err error)
}

// AnonymousMarkerStore records which devices already used their free anonymous generation.
type AnonymousMarkerStore interface {
	IsSet(ctx context.Context, deviceID string) (bool, error)
	Set(ctx context.Context, deviceID string) error
}

// DownloadedImage is an image fetched on behalf of a caller.
type DownloadedImage struct {
	ContentType string
	Body        []byte
}

// ImageFetcher downloads a remote image. Non-2xx answers are reported as
// *domain.UpstreamStatusError.
type ImageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*DownloadedImage, error)
}
