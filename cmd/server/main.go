// Package main is the entrypoint for the AgroScan API server.
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
	"time"

	"github.com/agroscan/agroscan/internal/ai"
	"github.com/agroscan/agroscan/internal/api"
	"github.com/agroscan/agroscan/internal/api/handler"
	mw "github.com/agroscan/agroscan/internal/api/middleware"
	"github.com/agroscan/agroscan/internal/api/response"
	"github.com/agroscan/agroscan/internal/cache"
	"github.com/agroscan/agroscan/internal/config"
	"github.com/agroscan/agroscan/internal/gate"
	"github.com/agroscan/agroscan/internal/inspection"
	"github.com/agroscan/agroscan/internal/session"
	"github.com/agroscan/agroscan/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Evaluate the configuration gate. This happens exactly once: a
	// missing credential keeps the inspection routes closed until restart,
	// and the server still comes up so the diagnostic is reachable.
	status := gate.Evaluate(cfg)
	if !status.Ready() {
		slog.Warn("configuration incomplete, inspection routes disabled",
			"failed_checks", status.FailedChecks())
	}

	// 3. Redis is always required: sessions and rate limits live there.
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 4. Wire the store: Postgres when configured, in-memory when the
	// operator opted into local-only mode, nil when the gate is closed.
	var inspectionStore store.Store
	switch {
	case status.StoreConfigured:
		pool, err := store.Connect(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()
		slog.Info("database connected")

		if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		slog.Info("database migrations applied")

		inspectionStore = store.NewPostgresStore(pool)
	case status.LocalOnly:
		slog.Warn("running in local-only mode, inspections will not survive a restart")
		inspectionStore = store.NewMemoryStore()
	}

	// 5. Sessions and middleware
	sessions := session.NewManager(redisCache, cfg.Session.TTL)
	auth := mw.NewAuth(sessions)
	rateLimit := mw.NewRateLimit(redisCache, 60)

	deps := api.Dependencies{
		Auth:      auth,
		RateLimit: rateLimit,
		Gate:      mw.NewGate(status),

		HealthHandler: healthHandler(inspectionStore, redisCache, status),
		LoginHandler:  handler.NewLoginHandler(sessions),
		LogoutHandler: handler.NewLogoutHandler(sessions),
		MeHandler:     handler.NewMeHandler(),
	}

	// 6. The classifier and controller exist only behind an open gate;
	// nothing constructs them from partial configuration.
	if status.Ready() {
		classifier, err := ai.NewClassifier(cfg.AI)
		if err != nil {
			return fmt.Errorf("create classifier: %w", err)
		}
		slog.Info("classifier initialized", "provider", classifier.Name())

		svc := inspection.NewService(classifier, inspectionStore, cfg.AI.InferenceTimeout)
		if err := svc.Refresh(ctx); err != nil {
			// Non-fatal: the list refetches on demand.
			slog.Warn("initial inspection load failed", "error", err)
		}

		deps.CreateInspectionHandler = handler.NewCreateInspectionHandler(svc)
		deps.ListInspectionsHandler = handler.NewListInspectionsHandler(svc)
		deps.DeleteInspectionHandler = handler.NewDeleteInspectionHandler(svc)
		deps.ClearInspectionsHandler = handler.NewClearInspectionsHandler(svc)
		deps.StatsHandler = handler.NewStatsHandler(svc)
	}

	router := api.NewRouter(deps)

	// 7. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * cfg.AI.InferenceTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks store and cache connectivity. The store check
// reports the gate state rather than failing when no store is configured.
func healthHandler(s store.Store, c cache.Cache, status gate.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		switch {
		case s == nil:
			checks["database"] = "unconfigured"
		case status.LocalOnly:
			checks["database"] = "local-only"
		default:
			if err := s.Ping(r.Context()); err != nil {
				checks["database"] = "degraded"
			}
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		if checks["database"] == "degraded" || checks["cache"] == "degraded" {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":        "ok",
			"ready":         status.Ready(),
			"local_only":    status.LocalOnly,
			"services":      checks,
			"failed_checks": status.FailedChecks(),
		})
	}
}
