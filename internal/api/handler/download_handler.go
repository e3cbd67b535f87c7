package handler

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fluxai/fluxgen/internal/core/domain"
	"github.com/fluxai/fluxgen/internal/core/ports"
	"github.com/fluxai/fluxgen/internal/pkg/metrics"
)

type downloadErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type DownloadHandler struct {
	fetcher ports.ImageFetcher
	log     zerolog.Logger
}

func NewDownloadHandler(fetcher ports.ImageFetcher, log zerolog.Logger) *DownloadHandler {
	return &DownloadHandler{fetcher: fetcher, log: log}
}

// Download fetches a generated image and returns it base64-encoded so browsers
// can save it without cross-origin restrictions.
//
// @Summary      Download proxy
// @Tags         gallery
// @Produce      plain
// @Param        imageUrl  query     string  true  "Absolute image URL"
// @Success      200       {string}  string  "base64 image body"
// @Failure      400       {object}  downloadErrorResponse
// @Failure      500       {object}  downloadErrorResponse
// @Router       /download-image [get]
func (h *DownloadHandler) Download(c echo.Context) error {
	imageURL := c.QueryParam("imageUrl")
	if imageURL == "" {
		metrics.DownloadsTotal.WithLabelValues("bad_request").Inc()
		return c.JSON(http.StatusBadRequest, downloadErrorResponse{Error: "Missing imageUrl parameter"})
	}

	img, err := h.fetcher.Fetch(c.Request().Context(), imageURL)
	if err != nil {
		var upstream *domain.UpstreamStatusError
		if errors.As(err, &upstream) {
			metrics.DownloadsTotal.WithLabelValues("upstream_error").Inc()
			return c.JSON(upstream.StatusCode, downloadErrorResponse{
				Error: "Failed to fetch image from source: " + upstream.Status,
			})
		}

		metrics.DownloadsTotal.WithLabelValues("failed").Inc()
		h.log.Error().Err(err).Str("image_url", imageURL).Msg("image download failed")
		return c.JSON(http.StatusInternalServerError, downloadErrorResponse{
			Error:   "Failed to process image download.",
			Details: err.Error(),
		})
	}

	metrics.DownloadsTotal.WithLabelValues("ok").Inc()
	body := base64.StdEncoding.EncodeToString(img.Body)
	return c.Blob(http.StatusOK, img.ContentType, []byte(body))
}
