package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fluxai/fluxgen/internal/api/middleware"
	"github.com/fluxai/fluxgen/internal/core/domain"
)

// ctxIdentity returns the identity injected by the auth middleware, or nil for
// anonymous callers.
func ctxIdentity(c echo.Context) *domain.UserIdentity {
	identity, _ := c.Get(middleware.KeyIdentity).(*domain.UserIdentity)
	return identity
}

// requireIdentity fails fast when a protected handler is reached without the
// auth middleware having run.
func requireIdentity(c echo.Context) (*domain.UserIdentity, error) {
	identity := ctxIdentity(c)
	if identity == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return identity, nil
}

func ctxEntitlement(c echo.Context) domain.EntitlementState {
	state, _ := c.Get(middleware.KeyEntitlement).(domain.EntitlementState)
	return state
}

// ctxResolvedEntitlement returns the state resolved by the entitlement
// middleware, or nil when it did not run.
func ctxResolvedEntitlement(c echo.Context) *domain.EntitlementState {
	state, ok := c.Get(middleware.KeyEntitlement).(domain.EntitlementState)
	if !ok {
		return nil
	}
	return &state
}

func ctxDeviceID(c echo.Context) string {
	id, _ := c.Get(middleware.KeyDeviceID).(string)
	return id
}

// bindAndValidate decodes the body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}
