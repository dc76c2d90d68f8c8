// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/ocms-api/internal/auth"
	"github.com/olegiv/ocms-api/internal/cache"
	"github.com/olegiv/ocms-api/internal/config"
	"github.com/olegiv/ocms-api/internal/handler/api"
	"github.com/olegiv/ocms-api/internal/logging"
	"github.com/olegiv/ocms-api/internal/middleware"
	"github.com/olegiv/ocms-api/internal/rbac"
	"github.com/olegiv/ocms-api/internal/scheduler"
	"github.com/olegiv/ocms-api/internal/storage"
	"github.com/olegiv/ocms-api/internal/store"
	"github.com/olegiv/ocms-api/internal/telemetry"
	"github.com/olegiv/ocms-api/internal/version"
)

const jwksRefreshJob = "jwks-refresh"

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "ocms-api - headless CMS REST backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CMS_DB_DRIVER          sqlite|postgres (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CMS_DB_DSN             Database DSN or SQLite path (default: ./data/cms.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CMS_JWT_SECRET         HS256 secret shared with the identity provider\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CMS_JWKS_URL           JWKS endpoint for RS256/ES256 tokens\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CMS_RBAC_POLICY_FILE   YAML role policy (default: built-in, reload with SIGHUP)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CMS_STORAGE_DRIVER     local|s3 (default: local)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CMS_REDIS_URL          Redis URL for shared caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CMS_OTEL_ENDPOINT      OTLP/HTTP collector host:port (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Println(version.Get().String())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(os.Stdout, cfg.LogLevel, !cfg.IsDevelopment())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	info := version.Get()
	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		Endpoint: cfg.OTelEndpoint,
		Insecure: cfg.OTelInsecure,
		Version:  info.Version,
	}, logger)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			slog.Error("error flushing traces", "error", err)
		}
	}()

	db, dialect, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	enforcer, err := rbac.NewEnforcer(cfg.RBACPolicy)
	if err != nil {
		return fmt.Errorf("loading rbac policy: %w", err)
	}
	go reloadPolicyOnHangup(ctx, enforcer)

	appCache := cache.New(ctx, cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CacheTTLDuration(),
	})
	defer func() { _ = appCache.Close() }()

	objects, err := storage.New(ctx, storage.Config{
		Driver:        cfg.StorageDriver,
		UploadsDir:    cfg.UploadsDir,
		PublicBaseURL: cfg.PublicBaseURL,
		S3Endpoint:    cfg.S3Endpoint,
		S3Bucket:      cfg.S3Bucket,
		S3AccessKey:   cfg.S3AccessKey,
		S3SecretKey:   cfg.S3SecretKey,
		S3UseSSL:      cfg.S3UseSSL,
		S3Region:      cfg.S3Region,
	})
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	slog.Info("object storage ready", "driver", cfg.StorageDriver, "bucket", objects.Bucket())

	sched := scheduler.New(logger)
	var keys *auth.KeySet
	if cfg.JWKSURL != "" {
		keys = auth.NewKeySet(cfg.JWKSURL, 5*time.Second).
			WithClient(telemetry.InstrumentClient(&http.Client{Timeout: 5 * time.Second}))
		if err := keys.Refresh(ctx); err != nil {
			slog.Warn("initial jwks fetch failed", "url", cfg.JWKSURL, "error", err)
		}
		if err := sched.Add(jwksRefreshJob, cfg.JWKSRefresh, keys.Refresh); err != nil {
			return err
		}
	}
	sched.Start()
	defer sched.Stop()

	verifier := auth.NewVerifier(auth.VerifierConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		Keys:     keys,
		Leeway:   30 * time.Second,
	})

	h := api.NewHandler(api.Config{
		Store:    store.NewStore(db, dialect),
		Policy:   enforcer,
		Storage:  objects,
		Cache:    appCache,
		CacheTTL: cfg.CacheTTLDuration(),
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(telemetry.Middleware)
	r.Use(chimw.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst).Middleware())
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.NotFound(middleware.NotFound)
	r.MethodNotAllowed(middleware.MethodNotAllowed)

	r.Group(h.HealthRoutes)
	r.With(chimw.Compress(5)).Mount("/cms", h.Routes(verifier))

	if local, ok := objects.(*storage.Local); ok {
		fs := http.StripPrefix("/uploads", http.FileServer(http.Dir(local.Dir())))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")

	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownWait)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, store.Dialect, error) {
	dialect, err := cfg.Dialect()
	if err != nil {
		return nil, "", err
	}

	dbCfg := store.DefaultDBConfig(cfg.DBDSN)
	dbCfg.Dialect = dialect
	dbCfg.MaxOpenConns = cfg.DBMaxOpenConns
	if dialect == store.DialectSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DBDSN), 0o750); err != nil {
			return nil, "", fmt.Errorf("creating data directory: %w", err)
		}
	}

	slog.Info("initializing database", "driver", dialect)
	db, err := store.Open(ctx, dbCfg)
	if err != nil {
		return nil, "", fmt.Errorf("initializing database: %w", err)
	}

	slog.Info("running database migrations")
	if err := store.Migrate(db, dialect); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")
	return db, dialect, nil
}

func reloadPolicyOnHangup(ctx context.Context, e *rbac.Enforcer) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := e.Reload(); err != nil {
				slog.Error("rbac policy reload failed, keeping current policy", "error", err)
				continue
			}
			slog.Info("rbac policy reloaded")
		}
	}
}
