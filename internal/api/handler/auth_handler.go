package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fluxai/fluxgen/internal/core/ports"
)

const (
	oauthStateCookie = "fluxgen_oauth_state"
	oauthStateTTL    = 10 * time.Minute
)

type AuthHandler struct {
	identity     ports.IdentityProvider
	secureCookie bool
}

func NewAuthHandler(identity ports.IdentityProvider, secureCookie bool) *AuthHandler {
	return &AuthHandler{identity: identity, secureCookie: secureCookie}
}

// SignUp creates an email/password account and signs it in.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Email and password"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req credentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	session, err := h.identity.SignUp(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toSessionResponse(session))
}

// Login authenticates with email and password and returns a JWT.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	session, err := h.identity.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// GoogleLogin redirects to the Google consent screen.
//
// @Summary      Start Google sign-in
// @Tags         auth
// @Success      302
// @Failure      404  {object}  errorResponse
// @Router       /auth/google/login [get]
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	state := uuid.NewString()
	url, err := h.identity.ProviderLoginURL("google", state)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   int(oauthStateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, url)
}

// GoogleCallback completes Google sign-in.
//
// @Summary      Google sign-in callback
// @Tags         auth
// @Produce      json
// @Param        code   query     string  true  "Authorization code"
// @Param        state  query     string  true  "Anti-forgery state"
// @Success      200    {object}  sessionResponse
// @Failure      400    {object}  errorResponse
// @Failure      401    {object}  errorResponse
// @Router       /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	cookie, err := c.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != c.QueryParam("state") {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid oauth state")
	}
	c.SetCookie(&http.Cookie{Name: oauthStateCookie, Value: "", Path: "/auth/google", MaxAge: -1})

	session, err := h.identity.SignInWithProvider(c.Request().Context(), "google", c.QueryParam("code"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toSessionResponse(session))
}

// Logout signs the caller out. Tokens are stateless, so the client discards it.
//
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	if err := h.identity.SignOut(c.Request().Context(), identity.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
