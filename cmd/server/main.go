// Package main is the entrypoint for the QWatch API server.
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

	"github.com/kiranshivaraju/qwatch/internal/api"
	"github.com/kiranshivaraju/qwatch/internal/api/handler"
	mw "github.com/kiranshivaraju/qwatch/internal/api/middleware"
	"github.com/kiranshivaraju/qwatch/internal/api/response"
	"github.com/kiranshivaraju/qwatch/internal/apikey"
	"github.com/kiranshivaraju/qwatch/internal/cache"
	"github.com/kiranshivaraju/qwatch/internal/config"
	"github.com/kiranshivaraju/qwatch/internal/feed"
	"github.com/kiranshivaraju/qwatch/internal/ibmq"
	"github.com/kiranshivaraju/qwatch/internal/jobs"
	"github.com/kiranshivaraju/qwatch/internal/simulator"
	"github.com/kiranshivaraju/qwatch/internal/store"
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
	// 1. Load config, fail fast on invalid values
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "feed_mode", cfg.Feed.Mode, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create store, seed the admin key if configured
	pgStore := store.NewPostgresStore(pool)
	if cfg.API.BootstrapAdminKey != "" {
		if err := apikey.Bootstrap(ctx, pgStore, cfg.API.BootstrapAdminKey); err != nil {
			return fmt.Errorf("bootstrap admin key: %w", err)
		}
	}

	// 6. Build the job pipeline and start the feed
	sim := newSimulator(cfg.Simulator)
	svc := jobs.NewService(newRemote(cfg), sim, redisCache, jobs.Config{
		JobLimit:  cfg.IBMQ.JobLimit,
		SeedCount: cfg.Simulator.SeedCount,
		CacheTTL:  cfg.Feed.CacheTTL,
	})

	liveFeed := feed.New(newSource(cfg, sim, svc), cfg.Feed.Interval())
	if err := liveFeed.Start(ctx); err != nil {
		return fmt.Errorf("start feed: %w", err)
	}
	defer liveFeed.Stop()

	// 7. Build router with dependencies
	deps := api.Dependencies{
		Auth:          mw.NewAuth(pgStore),
		RateLimit:     mw.NewRateLimit(redisCache, cfg.API.RateLimitRequests, cfg.API.RateLimitWindow),
		AllowedOrigin: cfg.API.AllowedOrigin,

		HealthHandler:    healthHandler(pgStore, redisCache),
		ListJobsHandler:  handler.NewListJobsHandler(liveFeed),
		GetJobHandler:    handler.NewGetJobHandler(liveFeed, sim),
		StatsHandler:     handler.NewStatsHandler(liveFeed),
		CreateKeyHandler: handler.NewCreateKeyHandler(pgStore),
		ListKeysHandler:  handler.NewListKeysHandler(pgStore),
		RevokeKeyHandler: handler.NewRevokeKeyHandler(pgStore),
	}

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
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

func newSimulator(cfg config.SimulatorConfig) *simulator.Simulator {
	simCfg := simulator.DefaultConfig()
	simCfg.ArrivalProbability = cfg.ArrivalProbability
	simCfg.StartProbability = cfg.StartProbability
	simCfg.CompleteProbability = cfg.CompleteProbability
	simCfg.MaxJobs = cfg.MaxJobs
	return simulator.New(simulator.NewRand(cfg.RandomSeed), simCfg)
}

// newRemote returns nil in simulate mode so the service never calls out.
func newRemote(cfg *config.Config) ibmq.Client {
	if cfg.Feed.Mode != config.FeedModeRemote {
		return nil
	}
	if cfg.IBMQ.APIToken == "" {
		slog.Warn("IBMQ_API_TOKEN not set, remote mode will serve synthetic jobs")
	}
	return ibmq.NewHTTPClient(cfg.IBMQ.BaseURL, cfg.IBMQ.APIToken, cfg.IBMQ.Timeout)
}

func newSource(cfg *config.Config, sim *simulator.Simulator, svc *jobs.Service) feed.Source {
	if cfg.Feed.Mode == config.FeedModeRemote {
		return feed.NewRemoteSource(svc)
	}
	return feed.NewSimulatedSource(sim, cfg.Simulator.SeedCount)
}

// pinger is the slice of the store and cache the health check needs.
type pinger interface {
	Ping(ctx context.Context) error
}

// healthHandler checks database and cache connectivity.
func healthHandler(s, c pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
