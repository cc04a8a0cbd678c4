// Package main is the entry point for the home-services admin dashboard.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hsadmin/internal/cache"
	"hsadmin/internal/config"
	"hsadmin/internal/database"
	"hsadmin/internal/gateway"
	"hsadmin/internal/handlers"
	"hsadmin/internal/listing"
	"hsadmin/internal/logging"
	"hsadmin/internal/metrics"
	"hsadmin/internal/middleware"
	"hsadmin/internal/render"
	"hsadmin/internal/resource"
	"hsadmin/internal/router"
	"hsadmin/internal/session"
	"hsadmin/internal/store"
	"hsadmin/internal/telemetry"
	"hsadmin/web"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON elsewhere, with an
	// optional rotated file copy.
	logger, logCloser, err := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		JSON:       !cfg.IsDev(),
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		slog.Error("failed to initialize logging", "error", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"backend", cfg.BackendURL,
		"version", version,
	)

	ctx := context.Background()

	tracing, err := telemetry.NewProvider(ctx, telemetry.Config{
		Endpoint:       cfg.OTLPEndpoint,
		ServiceVersion: version,
		Environment:    cfg.Env,
		Insecure:       cfg.IsDev(),
		SampleRate:     cfg.OTelSampleRate,
	})
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// Connect to PostgreSQL (audit log and column preferences).
	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey (sessions, list state, dashboard counts).
	valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	collector := metrics.New()
	catalog := resource.DefaultCatalog()

	auditStore := store.NewAuditStore(db)
	prefStore := store.NewPreferenceStore(db)

	client := gateway.NewClient(gateway.Options{
		BaseURL: cfg.BackendURL,
		Token:   cfg.BackendToken,
		Timeout: cfg.BackendTimeout,
		Metrics: collector,
	})

	screens := listing.NewRegistry(listing.RegistryConfig{
		Fetchers: func(s *resource.Schema) listing.Fetcher { return client.For(s) },
		States:   cache.NewListStateStore(valkeyClient, cache.DefaultListStateTTL),
		Columns:  prefStore,
		IdleTTL:  cfg.ScreenIdleTTL,
		List: listing.Options{
			PageSize:     cfg.PageSize,
			Debounce:     cfg.SearchDebounce,
			FetchTimeout: cfg.BackendTimeout,
			Metrics:      collector,
		},
	})

	renderer, err := render.New(render.Options{
		DevMode:      cfg.IsDev(),
		ImageBaseURL: cfg.ImageBaseURL,
		Catalog:      catalog,
	})
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	admin := handlers.NewAdmin(handlers.Config{
		Renderer: renderer,
		Catalog:  catalog,
		Client:   client,
		Screens:  screens,
		Stats:    cache.NewStatsCache(valkeyClient, cache.DefaultStatsTTL),
		Audit:    auditStore,
		Prefs:    prefStore,
		Metrics:  collector,
		Debounce: cfg.SearchDebounce,
	})

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		slog.Error("failed to open static assets", "error", err)
		os.Exit(1)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)

	r := router.New(router.Config{
		Sessions:      sessionStore,
		Admin:         admin,
		Metrics:       collector.Handler(),
		Limiter:       limiter,
		Static:        static,
		SecureCookies: secureCookies,
	})

	// WriteTimeout must cover a slow backend call plus rendering.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.BackendTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// Screens save their state on close, so this runs while Valkey is up.
	screens.Close()
	limiter.Stop()
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		slog.Warn("tracer shutdown failed", "error", err)
	}

	slog.Info("server stopped gracefully")
}
