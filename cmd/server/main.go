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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"nhc/internal/election/cache"
	electionModels "nhc/internal/election/models"
	"nhc/internal/platform/config"
	"nhc/internal/platform/httpserver"
	"nhc/internal/platform/logger"
	"nhc/internal/platform/postgres"
	"nhc/internal/platform/redis"
	"nhc/internal/storage/memory"
	pgstore "nhc/internal/storage/postgres"
	"nhc/pkg/platform/circuit"
)

// main wires configuration, storage and the HTTP router, then serves until
// SIGINT or SIGTERM. Business logic lives in the internal service packages.
func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(log)

	policy, err := electionModels.ParseWinnerPolicy(cfg.WinnerPolicy)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	d := deps{
		cfg:      cfg,
		logger:   log,
		registry: registry,
		policy:   policy,
		cache:    cache.Nop{},
		checks:   map[string]func(context.Context) error{},
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		d.cache = cache.NewGuarded(
			cache.NewRedis(redisClient, cfg.Redis.ResultsTTL),
			circuit.New("results-cache", circuit.WithCooldown(30*time.Second)),
			log,
		)
		d.checks["redis"] = redisClient.Health
		log.Info("results cache enabled", "ttl", cfg.Redis.ResultsTTL.String())
	}

	var router http.Handler
	switch cfg.Storage {
	case config.StoragePostgres:
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := pgstore.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		d.checks["postgres"] = db.PingContext
		store := pgstore.New(db, pgstore.WithTxTimeout(cfg.Database.TxTimeout))
		router, err = buildRouter(ctx, store, store.RunInTx, d)
		if err != nil {
			return err
		}
	default:
		store := memory.New()
		router, err = buildRouter(ctx, store, store.RunInTx, d)
		if err != nil {
			return err
		}
	}
	log.Info("storage ready", "backend", cfg.Storage, "winner_policy", string(policy), "timezone", cfg.Location.String())

	srv := httpserver.New(cfg, router)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
