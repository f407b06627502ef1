// main is the entry point of the registration API.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open the database (SQLite or PostgreSQL) and create the schema
//  4. Optionally put the Redis read-through cache in front of it
//  5. Register every use case with the mediator and build the routes
//  6. Start the HTTP server in a separate goroutine
//  7. Block until an OS signal arrives, then shut down gracefully
//
// RUNNING THE SERVER:
//
//	go run ./cmd/registration-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/registration-api
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aanand-mishra/registration-api/internal/app/registry"
	"github.com/aanand-mishra/registration-api/internal/cache"
	"github.com/aanand-mishra/registration-api/internal/config"
	"github.com/aanand-mishra/registration-api/internal/http/middleware"
	"github.com/aanand-mishra/registration-api/internal/http/router"
	"github.com/aanand-mishra/registration-api/internal/storage"
	"github.com/aanand-mishra/registration-api/internal/storage/cached"
	"github.com/aanand-mishra/registration-api/internal/storage/postgres"
	"github.com/aanand-mishra/registration-api/internal/storage/sqlite"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// Handlers log through slog's default logger, so install ours as it.
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting registration-api",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	db, err := openStorage(cfg)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	log.Info("storage initialised", slog.String("driver", cfg.Storage.Driver))

	// ── 4. Optional Cache ─────────────────────────────────────────────────
	var store storage.Storage = db
	if cfg.Cache.Enabled {
		rdb, err := cache.Connect(ctx, cfg.Cache)
		if err != nil {
			// the API still works without the cache, just slower
			log.Warn("cache unavailable, continuing without it", slog.String("error", err.Error()))
		} else {
			defer rdb.Close()
			store = cached.Wrap(db, cache.NewRedis(rdb, cache.WithPrefix(cfg.Cache.Prefix)), cfg.Cache.TTL, log)
			log.Info("cache enabled", slog.String("address", cfg.Cache.Addr))
		}
	}

	// ── 5. Use Cases + Routes ─────────────────────────────────────────────
	m := registry.New(store, log, nil)

	mws := []middleware.Middleware{
		middleware.Recover(log),
		middleware.Logging(log),
	}
	if cfg.RateLimit.Enabled {
		limiters := middleware.NewLimiters(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL)
		limiters.StartJanitor(ctx, cfg.RateLimit.IdleTTL/4)

		keyFn := middleware.ClientKey(cfg.RateLimit.KeyHeader, cfg.RateLimit.TrustXForwardedFor)
		mws = append(mws, middleware.RateLimit(limiters, keyFn, cfg.RateLimit.RetryAfter))

		log.Info("rate limiting enabled",
			slog.Float64("rps", cfg.RateLimit.RPS),
			slog.Int("burst", cfg.RateLimit.Burst))
	}

	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      middleware.Chain(router.New(m, store), mws...),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	// ── 6. Start Server in a Goroutine ────────────────────────────────────
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 7. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")
	stop()

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// openStorage opens the backend named by storage.driver.
func openStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg)
	case config.DriverPostgres:
		return postgres.New(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// dev: human-readable text at DEBUG. staging: JSON at DEBUG. prod: JSON at INFO.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}
}
