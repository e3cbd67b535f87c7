package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fluxai/fluxgen/internal/core/domain"
	"github.com/fluxai/fluxgen/internal/core/ports"
)

// Entitlement resolves the authenticated caller's entitlement and exposes it,
// with the record's role, to the rest of the chain. It must run after Auth or
// OptionalAuth. A failed resolution leaves the caller unauthenticated.
func Entitlement(resolver ports.EntitlementResolver, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, _ := c.Get(KeyIdentity).(*domain.UserIdentity)
			if identity == nil {
				c.Set(KeyEntitlement, domain.Unauthenticated())
				return next(c)
			}

			state, err := resolver.Resolve(c.Request().Context(), identity)
			if err != nil {
				log.Warn().Err(err).Str("user_id", identity.ID).Msg("entitlement unresolved")
			}
			c.Set(KeyEntitlement, state)
			if state.Authenticated && state.Record != nil {
				c.Set(KeyRole, state.Record.Role)
			}
			return next(c)
		}
	}
}
