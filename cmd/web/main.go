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

	"github.com/AdamBeresnev/venue-bracket/internal/cache"
	"github.com/AdamBeresnev/venue-bracket/internal/config"
	"github.com/AdamBeresnev/venue-bracket/internal/db"
	"github.com/AdamBeresnev/venue-bracket/internal/metrics"
	"github.com/AdamBeresnev/venue-bracket/internal/service"
	"github.com/AdamBeresnev/venue-bracket/internal/store"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	database, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.StoreTimeout)
	if err != nil {
		return err
	}
	defer database.Close()
	logger.Info("database connected", "driver", cfg.DatabaseDriver)

	if err := db.RunMigrations(database); err != nil {
		return err
	}

	snapshots, closeCache := newSnapshotCache(cfg, logger)
	defer closeCache()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := newApplication(database, snapshots, metrics.New(registry), cfg, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      newRouter(app, registry),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", "address", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	logger.Info("server stopped gracefully")
	return nil
}

// newSnapshotCache prefers Redis and falls back to an in-process cache when
// Redis is not configured or unreachable.
func newSnapshotCache(cfg *config.Config, logger *slog.Logger) (service.SnapshotCache, func()) {
	if cfg.RedisURL == "" && cfg.RedisAddr == "" {
		logger.Info("redis not configured, caching snapshots in memory")
		return cache.NewMemory(), func() {}
	}

	redisCache, err := cache.NewRedis(cfg.RedisURL, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, caching snapshots in memory", "error", err)
		return cache.NewMemory(), func() {}
	}
	logger.Info("caching snapshots in redis")
	return redisCache, func() { redisCache.Close() }
}

type application struct {
	engine      *service.BracketService
	tournaments *service.TournamentService
}

func newApplication(database *sqlx.DB, snapshots service.SnapshotCache, recorder *metrics.Recorder, cfg *config.Config, logger *slog.Logger) *application {
	matchStore := store.NewMatchStore(database)
	teamStore := store.NewTeamStore(database)
	standingStore := store.NewStandingStore(database)
	tournamentStore := store.NewTournamentStore(database)

	engine := service.NewBracketService(matchStore, teamStore, standingStore, tournamentStore, service.Options{
		StoreTimeout: cfg.StoreTimeout,
		SnapshotTTL:  cfg.SnapshotTTL,
		Cache:        snapshots,
		Logger:       logger,
		Metrics:      recorder,
	})

	return &application{
		engine:      engine,
		tournaments: service.NewTournamentService(database, tournamentStore, teamStore, standingStore, engine, cfg.StoreTimeout),
	}
}
