package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	DeviceHeader = "X-Device-ID"
	DeviceCookie = "fluxgen_device"

	deviceCookieMaxAge = 365 * 24 * time.Hour
)

// DeviceID identifies the calling device for the anonymous allowance. The id
// comes from the X-Device-ID header or the device cookie; a missing or
// malformed id is replaced with a fresh one, returned in both places.
func DeviceID(secureCookie bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(DeviceHeader)
			if id == "" {
				if cookie, err := c.Cookie(DeviceCookie); err == nil {
					id = cookie.Value
				}
			}

			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     DeviceCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(deviceCookieMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Response().Header().Set(DeviceHeader, id)
			c.Set(KeyDeviceID, id)
			return next(c)
		}
	}
}
