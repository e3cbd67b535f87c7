package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/fluxai/fluxgen/internal/core/domain"
)

// Auth validates the bearer token and injects the caller's identity into context.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return auth(jwtSecret, true)
}

// OptionalAuth behaves like Auth when an Authorization header is present and
// lets anonymous requests through otherwise. A malformed or expired token is
// still rejected: it must not silently downgrade the caller to anonymous.
func OptionalAuth(jwtSecret string) echo.MiddlewareFunc {
	return auth(jwtSecret, false)
}

func auth(jwtSecret string, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				if required {
					return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
				}
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			identity, err := parseToken(parts[1], jwtSecret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(KeyIdentity, identity)
			c.Set(KeyUserID, identity.ID)

			return next(c)
		}
	}
}

func parseToken(raw, secret string) (*domain.UserIdentity, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}

	identity := &domain.UserIdentity{ID: sub}
	identity.Email, _ = claims["email"].(string)
	identity.DisplayName, _ = claims["name"].(string)
	identity.PhotoURL, _ = claims["picture"].(string)
	return identity, nil
}
