package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fluxai/fluxgen/internal/core/domain"
)

type ModelHandler struct{}

func NewModelHandler() *ModelHandler {
	return &ModelHandler{}
}

// List returns the model catalog with availability for the caller.
//
// @Summary      List generation models
// @Tags         generations
// @Produce      json
// @Success      200  {array}  modelResponse
// @Router       /v1/models [get]
func (h *ModelHandler) List(c echo.Context) error {
	state := ctxEntitlement(c)

	resp := make([]modelResponse, 0, len(domain.Catalog))
	for _, m := range domain.Catalog {
		resp = append(resp, toModelResponse(m, state))
	}
	return c.JSON(http.StatusOK, resp)
}
