// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command folio serves the portfolio backend: JSON API, auth, admin
// content management and uploaded media.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/folio-go/internal/analytics"
	"github.com/olegiv/folio-go/internal/cache"
	"github.com/olegiv/folio-go/internal/config"
	"github.com/olegiv/folio-go/internal/geoip"
	"github.com/olegiv/folio-go/internal/handler"
	"github.com/olegiv/folio-go/internal/imagehost"
	"github.com/olegiv/folio-go/internal/logging"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/scheduler"
	"github.com/olegiv/folio-go/internal/session"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/version"
)

const shutdownTimeout = 15 * time.Second

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("folio " + version.String())
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	queries := store.New(db)
	setupLogging(cfg, queries)
	slog.Info("starting folio",
		"version", version.String(),
		"env", cfg.Env,
		"addr", cfg.ServerAddr(),
	)

	if cfg.DoSeed {
		if err := store.Seed(context.Background(), db, store.SeedParams{
			AdminUsername: cfg.SeedAdminUsername,
			AdminEmail:    cfg.SeedAdminEmail,
			AdminPassword: cfg.SeedAdminPassword,
		}); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	sessions := session.NewService(queries, !cfg.IsDevelopment())

	caches := cache.NewManager(cache.ManagerConfig{
		Backend:       cfg.CacheBackend,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	defer caches.Close()

	geo, err := geoip.New(cfg.GeoIPDBPath)
	if err != nil {
		return fmt.Errorf("opening geoip database: %w", err)
	}
	defer geo.Close()

	images, err := imagehost.NewLocalHost(cfg.UploadDir, "/uploads")
	if err != nil {
		return fmt.Errorf("setting up image host: %w", err)
	}

	lockout := middleware.NewLoginProtection()
	defer lockout.Stop()

	jobs := scheduler.New(queries, sessions, geo)
	if err := jobs.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer jobs.Stop()

	api := handler.New(handler.Config{
		Queries:       queries,
		Sessions:      sessions,
		Lockout:       lockout,
		Caches:        caches,
		Images:        images,
		Tracker:       analytics.NewTracker(queries, geo),
		MaxUploadSize: cfg.MaxUploadSize,
	})
	health := handler.NewHealthHandler(db)

	router := buildRouter(cfg, sessions, queries, api, health, images)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	slog.Info("bye")
	return nil
}

// setupLogging installs the default logger: leveled text or JSON output
// wrapped so warnings and errors land in the events table.
func setupLogging(cfg *config.Config, queries *store.Queries) {
	level := parseLogLevel(cfg.LogLevel)
	opts := &slog.HandlerOptions{Level: level}

	var inner slog.Handler
	if cfg.LogFormat == "json" {
		inner = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		inner = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(logging.NewEventLogHandler(inner, queries)))
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildRouter(
	cfg *config.Config,
	sessions *session.Service,
	queries *store.Queries,
	api *handler.Handler,
	health *handler.HealthHandler,
	images *imagehost.LocalHost,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.SecurityHeadersConfig{
		EnableHSTS: cfg.IsProduction(),
	}))

	limiter := middleware.NewGlobalRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	r.Use(limiter.Middleware())

	csrfCfg := middleware.DefaultCSRFConfig(
		[]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.TrustedOrigins())
	// Likes are an anonymous public POST; everything else mutating is
	// same-origin only.
	r.Use(middleware.SkipCSRF("/api/posts"))
	r.Use(middleware.CSRF(csrfCfg))

	r.Use(middleware.WithUser(sessions, queries))

	// Probes sit outside the API prefix for load balancers.
	r.Get("/health", health.Health)
	r.Get("/health/live", health.Live)
	r.Get("/health/ready", health.Ready)

	r.Mount("/api", api.Routes())

	// Uploaded media is served directly from disk.
	uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(images.Dir())))
	r.Get("/uploads/*", func(w http.ResponseWriter, req *http.Request) {
		uploads.ServeHTTP(w, req)
	})

	return r
}
