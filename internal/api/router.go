package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/fluxai/fluxgen/docs"
	"github.com/fluxai/fluxgen/internal/api/handler"
	"github.com/fluxai/fluxgen/internal/api/middleware"
	"github.com/fluxai/fluxgen/internal/core/domain"
	"github.com/fluxai/fluxgen/internal/core/ports"
)

const metricsSubsystem = "fluxgen"

// Deps are the services the HTTP layer is built on.
type Deps struct {
	JWTSecret     string
	SecureCookies bool
	Log           zerolog.Logger

	Identity     ports.IdentityProvider
	Resolver     ports.EntitlementResolver
	Entitlements handler.EntitlementSubscriber
	Generations  ports.GenerationService
	Gallery      ports.GalleryService
	Admin        ports.AdminService
	Fetcher      ports.ImageFetcher

	// GenerationLimiter throttles POST /v1/generations. Nil disables throttling.
	GenerationLimiter *middleware.RateLimiter
	HealthChecks      []handler.DependencyCheck

	// Registry defaults to the global prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  metricsSubsystem,
		Registerer: registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Identity, d.SecureCookies)
	modelHandler := handler.NewModelHandler()
	generationHandler := handler.NewGenerationHandler(d.Generations)
	galleryHandler := handler.NewGalleryHandler(d.Gallery)
	profileHandler := handler.NewProfileHandler(d.Entitlements)
	adminHandler := handler.NewAdminHandler(d.Admin)
	downloadHandler := handler.NewDownloadHandler(d.Fetcher, d.Log)
	healthHandler := handler.NewHealthHandler(d.HealthChecks...)

	requireAuth := middleware.Auth(d.JWTSecret)
	entitlement := middleware.Entitlement(d.Resolver, d.Log)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/signup", authHandler.SignUp)
	auth.POST("/login", authHandler.Login)
	auth.GET("/google/login", authHandler.GoogleLogin)
	auth.GET("/google/callback", authHandler.GoogleCallback)
	auth.POST("/logout", authHandler.Logout, requireAuth)

	// --- Public API (anonymous callers allowed) ---
	v1 := e.Group("/v1",
		middleware.DeviceID(d.SecureCookies),
		middleware.OptionalAuth(d.JWTSecret),
		entitlement,
	)
	v1.GET("/models", modelHandler.List)
	var generate []echo.MiddlewareFunc
	if d.GenerationLimiter != nil {
		generate = append(generate, d.GenerationLimiter.Middleware())
	}
	v1.POST("/generations", generationHandler.Create, generate...)
	v1.GET("/gallery", galleryHandler.List)

	// --- Profile ---
	me := e.Group("/v1/me", requireAuth, entitlement)
	me.GET("", profileHandler.Me)
	me.GET("/entitlement/stream", profileHandler.Stream)

	// --- Admin ---
	admin := e.Group("/admin", requireAuth, entitlement, middleware.RBAC(domain.RoleAdmin))
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/images", adminHandler.ListImages)
	admin.POST("/users/upgrade", adminHandler.GrantUltimate)

	e.GET("/download-image", downloadHandler.Download)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	// --- Operational ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
