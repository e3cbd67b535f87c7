package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fluxai/fluxgen/internal/core/domain"
	"github.com/fluxai/fluxgen/internal/core/ports"
)

type GenerationHandler struct {
	generations ports.GenerationService
}

func NewGenerationHandler(generations ports.GenerationService) *GenerationHandler {
	return &GenerationHandler{generations: generations}
}

// Create submits a prompt to the selected model.
//
// Anonymous callers get a single free generation on the standard model per
// device. Premium models require a signed-in caller.
//
// @Summary      Generate an image
// @Tags         generations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Device-ID  header    string             false  "Device identifier for anonymous callers"
// @Param        body         body      generationRequest  true   "Model and prompt"
// @Success      200          {object}  generationResponse
// @Failure      400          {object}  errorResponse
// @Failure      403          {object}  errorResponse
// @Failure      422          {object}  errorResponse
// @Failure      429          {object}  errorResponse
// @Failure      502          {object}  errorResponse
// @Failure      504          {object}  errorResponse
// @Router       /v1/generations [post]
func (h *GenerationHandler) Create(c echo.Context) error {
	var req generationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.generations.Generate(c.Request().Context(), ports.GenerateInput{
		Identity: ctxIdentity(c),
		State:    ctxResolvedEntitlement(c),
		DeviceID: ctxDeviceID(c),
		Model:    domain.ModelID(req.Model),
		Prompt:   req.Prompt,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toGenerationResponse(result))
}
