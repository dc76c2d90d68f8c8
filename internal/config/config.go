// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the service configuration from CMS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/ocms-api/internal/store"
)

// MinJWTSecretLength is the minimum length of the HS256 shared secret.
const MinJWTSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env            string        `env:"CMS_ENV" envDefault:"development"`
	ServerHost     string        `env:"CMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort     int           `env:"CMS_SERVER_PORT" envDefault:"8080"`
	LogLevel       string        `env:"CMS_LOG_LEVEL" envDefault:"info"`
	RequestTimeout time.Duration `env:"CMS_REQUEST_TIMEOUT" envDefault:"30s"`

	// Database
	DBDriver       string `env:"CMS_DB_DRIVER" envDefault:"sqlite"`
	DBDSN          string `env:"CMS_DB_DSN" envDefault:"./data/cms.db"`
	DBMaxOpenConns int    `env:"CMS_DB_MAX_OPEN_CONNS" envDefault:"10"`

	// Identity provider
	JWTSecret    string        `env:"CMS_JWT_SECRET"`
	JWTIssuer    string        `env:"CMS_JWT_ISSUER" envDefault:"https://supabase.com"`
	JWTAudience  string        `env:"CMS_JWT_AUDIENCE"`
	JWKSURL      string        `env:"CMS_JWKS_URL"`
	JWKSRefresh  string        `env:"CMS_JWKS_REFRESH" envDefault:"@every 1h"` // cron spec
	RBACPolicy   string        `env:"CMS_RBAC_POLICY_FILE"`
	CORSOrigins  []string      `env:"CMS_CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,https://admin.assurur.com"`
	RateLimit    float64       `env:"CMS_API_RATE_LIMIT" envDefault:"20"`
	RateBurst    int           `env:"CMS_API_RATE_BURST" envDefault:"40"`
	ShutdownWait time.Duration `env:"CMS_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Cache configuration
	RedisURL    string `env:"CMS_REDIS_URL"` // Optional Redis URL; memory cache otherwise
	CachePrefix string `env:"CMS_CACHE_PREFIX" envDefault:"cms:"`
	CacheTTL    int    `env:"CMS_CACHE_TTL" envDefault:"60"` // seconds

	// Object storage
	StorageDriver string `env:"CMS_STORAGE_DRIVER" envDefault:"local"`
	UploadsDir    string `env:"CMS_UPLOADS_DIR" envDefault:"./uploads"`
	PublicBaseURL string `env:"CMS_PUBLIC_BASE_URL" envDefault:"http://localhost:8080/uploads"`
	S3Endpoint    string `env:"CMS_S3_ENDPOINT"`
	S3Bucket      string `env:"CMS_S3_BUCKET" envDefault:"cms-media"`
	S3AccessKey   string `env:"CMS_S3_ACCESS_KEY"`
	S3SecretKey   string `env:"CMS_S3_SECRET_KEY"`
	S3UseSSL      bool   `env:"CMS_S3_USE_SSL" envDefault:"true"`
	S3Region      string `env:"CMS_S3_REGION" envDefault:"auto"`

	// Tracing
	OTelEndpoint string `env:"CMS_OTEL_ENDPOINT"` // host:port of an OTLP/HTTP collector
	OTelInsecure bool   `env:"CMS_OTEL_INSECURE" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// CacheTTLDuration returns CacheTTL as a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// TracingEnabled returns true if an OTLP endpoint is configured.
func (c Config) TracingEnabled() bool {
	return c.OTelEndpoint != ""
}

// Dialect returns the parsed database dialect.
func (c Config) Dialect() (store.Dialect, error) {
	return store.ParseDialect(c.DBDriver)
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if _, err := c.Dialect(); err != nil {
		errs = append(errs, fmt.Errorf("CMS_DB_DRIVER: %w", err))
	}
	if strings.TrimSpace(c.DBDSN) == "" {
		errs = append(errs, errors.New("CMS_DB_DSN must not be empty"))
	}

	if c.JWTSecret == "" && c.JWKSURL == "" {
		errs = append(errs, errors.New("one of CMS_JWT_SECRET or CMS_JWKS_URL is required"))
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < MinJWTSecretLength {
		errs = append(errs, fmt.Errorf("CMS_JWT_SECRET must be at least %d bytes long, got %d bytes",
			MinJWTSecretLength, len(c.JWTSecret)))
	}
	if c.JWKSURL != "" {
		if u, err := url.Parse(c.JWKSURL); err != nil || u.Host == "" {
			errs = append(errs, fmt.Errorf("CMS_JWKS_URL %q is not an absolute URL", c.JWKSURL))
		}
	}

	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		errs = append(errs, errors.New("CMS_API_RATE_LIMIT and CMS_API_RATE_BURST must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("CMS_REQUEST_TIMEOUT must be positive"))
	}

	switch c.StorageDriver {
	case "local":
	case "s3":
		if c.S3Endpoint == "" || c.S3AccessKey == "" || c.S3SecretKey == "" {
			errs = append(errs, errors.New("CMS_S3_ENDPOINT, CMS_S3_ACCESS_KEY and CMS_S3_SECRET_KEY are required for the s3 driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("CMS_STORAGE_DRIVER %q is not one of local, s3", c.StorageDriver))
	}

	if len(c.CORSOrigins) == 0 {
		slog.Warn("CMS_CORS_ORIGINS is empty; browsers will be unable to call the API")
	}

	return errors.Join(errs...)
}
