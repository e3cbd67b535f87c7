package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fluxai/fluxgen/internal/core/ports"
)

type GalleryHandler struct {
	gallery ports.GalleryService
}

func NewGalleryHandler(gallery ports.GalleryService) *GalleryHandler {
	return &GalleryHandler{gallery: gallery}
}

// List returns the community gallery, newest first.
//
// @Summary      Community gallery
// @Tags         gallery
// @Produce      json
// @Param        limit  query     int  false  "Maximum items (default 50, max 100)"
// @Success      200    {object}  galleryResponse
// @Failure      400    {object}  errorResponse
// @Failure      503    {object}  errorResponse
// @Router       /v1/gallery [get]
func (h *GalleryHandler) List(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	records, err := h.gallery.List(c.Request().Context(), limit)
	if err != nil {
		return err
	}

	resp := galleryResponse{Items: []galleryItemResponse{}}
	for r := range records {
		resp.Items = append(resp.Items, toGalleryItem(r))
	}
	resp.Count = len(resp.Items)
	return c.JSON(http.StatusOK, resp)
}
