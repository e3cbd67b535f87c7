package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	Mongo       MongoConfig
	Redis       RedisConfig
	Generation  GenerationConfig
	Google      GoogleConfig
	Download    DownloadConfig
	Entitlement EntitlementConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=fluxgen"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type GenerationConfig struct {
	Endpoint      string        `env:"GENERATION_ENDPOINT, default=https://samuraiapi.in/v1/images/generations"`
	APIKey        string        `env:"GENERATION_API_KEY"`
	Timeout       time.Duration `env:"GENERATION_TIMEOUT,  default=60s"`
	RatePerMinute int           `env:"GENERATION_RATE_PER_MINUTE, default=10"`
	RateBurst     int           `env:"GENERATION_RATE_BURST,      default=3"`
}

type GoogleConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `env:"GOOGLE_REDIRECT_URL, default=http://localhost:8080/auth/google/callback"`
}

type DownloadConfig struct {
	Timeout  time.Duration `env:"DOWNLOAD_TIMEOUT,   default=30s"`
	MaxBytes int64         `env:"DOWNLOAD_MAX_BYTES, default=20971520"`
}

type EntitlementConfig struct {
	CacheTTL     time.Duration `env:"ENTITLEMENT_CACHE_TTL, default=5m"`
	EventWorkers int           `env:"AUTH_EVENT_WORKERS,    default=8"`
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			errs = append(errs, errors.New("JWT_SECRET is required outside development"))
		} else {
			c.JWTSecret = "dev-secret"
		}
	}
	if c.Generation.Endpoint == "" {
		errs = append(errs, errors.New("GENERATION_ENDPOINT must not be empty"))
	}
	if c.Generation.RatePerMinute <= 0 || c.Generation.RateBurst <= 0 {
		errs = append(errs, errors.New("GENERATION_RATE_PER_MINUTE and GENERATION_RATE_BURST must be positive"))
	}
	if c.Download.MaxBytes <= 0 {
		errs = append(errs, errors.New("DOWNLOAD_MAX_BYTES must be positive"))
	}
	return errors.Join(errs...)
}
