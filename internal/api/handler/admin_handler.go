package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fluxai/fluxgen/internal/core/ports"
)

type AdminHandler struct {
	admin ports.AdminService
}

func NewAdminHandler(admin ports.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// ListUsers returns every entitlement record.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.admin.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, resp)
}

// ListImages returns every generation record, newest first.
//
// @Summary      List all images
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  galleryResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/images [get]
func (h *AdminHandler) ListImages(c echo.Context) error {
	images, err := h.admin.ListImages(c.Request().Context())
	if err != nil {
		return err
	}

	resp := galleryResponse{Items: make([]galleryItemResponse, 0, len(images))}
	for _, r := range images {
		resp.Items = append(resp.Items, toGalleryItem(r))
	}
	resp.Count = len(resp.Items)
	return c.JSON(http.StatusOK, resp)
}

// GrantUltimate upgrades the user with the given email to the ultimate tier.
//
// @Summary      Grant ultimate tier
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      grantUltimateRequest  true  "Target user"
// @Success      200   {object}  userResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/users/upgrade [post]
func (h *AdminHandler) GrantUltimate(c echo.Context) error {
	var req grantUltimateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	rec, err := h.admin.GrantUltimate(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(rec))
}
