package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fluxai/fluxgen/internal/core/domain"
)

const defaultHeartbeat = 15 * time.Second

// EntitlementSubscriber is the read side of the entitlement bus.
type EntitlementSubscriber interface {
	Subscribe(userID string) (<-chan domain.EntitlementState, func())
}

type ProfileHandler struct {
	subscriber EntitlementSubscriber
	heartbeat  time.Duration
}

func NewProfileHandler(subscriber EntitlementSubscriber) *ProfileHandler {
	return &ProfileHandler{subscriber: subscriber, heartbeat: defaultHeartbeat}
}

// Me returns the caller's identity and entitlement.
//
// @Summary      Current user profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{
		User:        toIdentityResponse(identity),
		Entitlement: toEntitlementResponse(ctxEntitlement(c)),
	})
}

// Stream pushes the caller's entitlement as server-sent events: the current
// state first, then every change until the client disconnects.
//
// @Summary      Entitlement change stream
// @Tags         profile
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200
// @Failure      401  {object}  errorResponse
// @Router       /v1/me/entitlement/stream [get]
func (h *ProfileHandler) Stream(c echo.Context) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}

	updates, cancel := h.subscriber.Subscribe(identity.ID)
	defer cancel()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	if err := writeEntitlementEvent(res, ctxEntitlement(c)); err != nil {
		return nil
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case state, ok := <-updates:
			if !ok {
				return nil
			}
			if err := writeEntitlementEvent(res, state); err != nil {
				return nil
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

func writeEntitlementEvent(res *echo.Response, state domain.EntitlementState) error {
	data, err := json.Marshal(toEntitlementResponse(state))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: entitlement\ndata: %s\n\n", data); err != nil {
		return err
	}
	res.Flush()
	return nil
}
