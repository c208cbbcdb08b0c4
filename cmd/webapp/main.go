// Copyright (c) 2026 Taskdeck. All rights reserved.
// Author: dev@taskdeck.app

// Command webapp is the entry point for the Taskdeck web gateway.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Select the credential store (Redis when configured, file otherwise).
//  4. Optionally start the in-process mock backend.
//  5. Wire the API client, session controller, and task service.
//  6. Hydrate the session from the stored credential.
//  7. Start the gateway with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskdeck/taskdeck/internal/apiclient"
	"github.com/taskdeck/taskdeck/internal/backend/mockapi"
	"github.com/taskdeck/taskdeck/internal/platform/config"
	"github.com/taskdeck/taskdeck/internal/platform/constants"
	redisstore "github.com/taskdeck/taskdeck/internal/platform/redis"
	"github.com/taskdeck/taskdeck/internal/session"
	"github.com/taskdeck/taskdeck/internal/task"
	"github.com/taskdeck/taskdeck/internal/token"
	"github.com/taskdeck/taskdeck/internal/web"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Taskdeck] gateway_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("backend", cfg.BackendBaseURL),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Credential Store ───────────────────────────────────────────────
	var store token.Store
	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
		store = token.NewRedisStore(rdb, token.WithExpiryThreshold(cfg.ExpiryThreshold))
		log.Info("credential_store_selected", slog.String("kind", "redis"))
	} else {
		store = token.NewFileStore(cfg.TokenStorePath, token.WithExpiryThreshold(cfg.ExpiryThreshold))
		log.Info("credential_store_selected",
			slog.String("kind", "file"),
			slog.String("path", cfg.TokenStorePath),
		)
	}

	// Lifetime context for background goroutines (rate limiter sweep, mock).
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 4. Mock Backend (development only) ────────────────────────────────
	var mockServer *http.Server
	if cfg.UseMockBackend {
		mock := mockapi.NewServer(cfg.MockJWTSecret, cfg.TokenLifetime, log)

		// Seed a demo account so the flow works out of the box.
		if _, err := mock.SeedAccount("demo@taskdeck.app", "demo-password", "demo"); err != nil {
			log.Warn("mock_seed_failed", slog.Any("error", err))
		}

		backend, err := url.Parse(cfg.BackendBaseURL)
		must(log, err, "parse backend base url")

		// Serve the fake exactly where the client expects the real backend.
		mockServer = &http.Server{Addr: backend.Host, Handler: mock.Router()}
		go func() {
			log.Info("mock_backend_listening", slog.String("addr", backend.Host))
			if err := mockServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("mock backend error", slog.Any("error", err))
			}
		}()
	}

	// ── 5. Client & Domain Wiring ─────────────────────────────────────────
	// The unauthorized sink closes over the controller variable so the client
	// can be constructed first.
	var controller *session.Controller
	client := apiclient.New(apiclient.Options{
		BaseURL:       cfg.BackendBaseURL,
		Timeout:       cfg.RequestTimeout,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
		OnUnauthorized: func(ctx context.Context) {
			if controller != nil {
				controller.HandleUnauthorized(ctx)
			}
		},
	}, store, log)

	controller = session.NewController(client, store, cfg.TokenLifetime, log)
	tasks := task.NewService(client, controller, log)

	// ── 6. Session Hydration ──────────────────────────────────────────────
	controller.Init(startupCtx)

	// ── 7. Gateway with Graceful Shutdown ─────────────────────────────────
	gateway := web.NewServer(cfg, controller, tasks, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := gateway.ListenAndServe(appCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := gateway.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	if mockServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		_ = mockServer.Shutdown(shutdownCtx)
		cancel()
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
