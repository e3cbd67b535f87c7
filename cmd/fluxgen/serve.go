package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fluxai/fluxgen/internal/api"
	"github.com/fluxai/fluxgen/internal/api/handler"
	"github.com/fluxai/fluxgen/internal/api/middleware"
	"github.com/fluxai/fluxgen/internal/core/ports"
	"github.com/fluxai/fluxgen/internal/core/service"
	mongostore "github.com/fluxai/fluxgen/internal/infrastructure/db/mongo"
	redisstore "github.com/fluxai/fluxgen/internal/infrastructure/db/redis"
	"github.com/fluxai/fluxgen/internal/infrastructure/download"
	"github.com/fluxai/fluxgen/internal/infrastructure/imageapi"
	"github.com/fluxai/fluxgen/internal/infrastructure/oauth"
	"github.com/fluxai/fluxgen/internal/infrastructure/queue"
	"github.com/fluxai/fluxgen/internal/pkg/config"
	"github.com/fluxai/fluxgen/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "fluxgen",
	})

	// --- Stores ---
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	if err := mongostore.RunMigrations(mongoClient, cfg.Mongo.Database); err != nil {
		return err
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer rdb.Close()

	profiles := mongostore.NewProfileRepository(db)
	gallery := mongostore.NewGalleryRepository(db)
	credentials := mongostore.NewCredentialRepository(db)
	cache := redisstore.NewEntitlementCache(rdb, cfg.Entitlement.CacheTTL)
	markers := redisstore.NewMarkerStore(rdb)

	// --- Core services ---
	bus := service.NewEntitlementBus()
	entitlements := service.NewEntitlementService(profiles, cache, bus, logger.Component("entitlement"))

	var providers []ports.OAuthProvider
	if google := oauth.NewGoogle(oauth.GoogleConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
	}); google != nil {
		providers = append(providers, google)
	} else {
		log.Info().Msg("google sign-in disabled: GOOGLE_CLIENT_ID not set")
	}
	identity := service.NewAuthService(credentials, cfg.JWTSecret, cfg.TokenTTL, logger.Component("auth"), providers...)

	dispatcher := queue.NewDispatcher(cfg.Entitlement.EventWorkers, entitlements, bus, cache, logger.Component("auth-events"))
	dispatcher.Start(ctx)
	unsubscribe := identity.OnAuthStateChanged(dispatcher.Listener())
	defer unsubscribe()

	generator := imageapi.NewClient(imageapi.Config{
		Endpoint: cfg.Generation.Endpoint,
		APIKey:   cfg.Generation.APIKey,
		Timeout:  cfg.Generation.Timeout,
	}, logger.Component("imageapi"))
	generations := service.NewGenerationService(entitlements, markers, generator, gallery, logger.Component("generation"))

	limiter := middleware.NewRateLimiter(
		middleware.PerMinute(cfg.Generation.RatePerMinute, cfg.Generation.RateBurst),
		logger.Component("ratelimit"),
	)
	defer limiter.Stop()

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		JWTSecret:         cfg.JWTSecret,
		SecureCookies:     !cfg.IsDevelopment(),
		Log:               logger.Component("http"),
		Identity:          identity,
		Resolver:          entitlements,
		Entitlements:      bus,
		Generations:       generations,
		Gallery:           service.NewGalleryService(gallery),
		Admin:             service.NewAdminService(profiles, gallery, cache, bus, logger.Component("admin")),
		Fetcher:           download.NewFetcher(cfg.Download.Timeout, cfg.Download.MaxBytes),
		GenerationLimiter: limiter,
		HealthChecks:      healthChecks(mongoClient, rdb),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func healthChecks(client *mongo.Client, rdb *redis.Client) []handler.DependencyCheck {
	return []handler.DependencyCheck{
		{Name: "mongodb", Check: func(ctx context.Context) error { return client.Ping(ctx, nil) }},
		{Name: "redis", Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	}
}
