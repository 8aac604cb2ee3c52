package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/content-console/internal/cron"
	"github.com/angelmondragon/content-console/internal/orphans"
	"github.com/angelmondragon/content-console/pkg/config"
	"github.com/angelmondragon/content-console/pkg/db"
	"github.com/angelmondragon/content-console/pkg/instance"
	"github.com/angelmondragon/content-console/pkg/logger"
	"github.com/angelmondragon/content-console/pkg/metrics"
	"github.com/angelmondragon/content-console/pkg/migrate"
	"github.com/angelmondragon/content-console/pkg/redis"
	"github.com/angelmondragon/content-console/pkg/siteapi"
	"github.com/angelmondragon/content-console/pkg/storage"
)

const (
	lockName    = "orphan-sweeper"
	metricsAddr = ":9102"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "orphan-sweeper"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "orphan-sweeper",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run migrations", err)
		os.Exit(1)
	}

	store, err := storage.Open(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap object store", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logg.Error(context.Background(), "error closing object store", err)
		}
	}()

	var lock cron.Lock = cron.NoopLock{}
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		// The lock outlives one sweep so a slow batch is never run twice.
		redisLock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockKey(cfg.App.Env)), 2*cfg.Orphans.SweepInterval)
		if err != nil {
			logg.Error(ctx, "failed to create sweeper lock", err)
			os.Exit(1)
		}
		lock = redisLock
	} else {
		logg.Warn(ctx, "redis not configured; running sweeper without a distributed lock")
	}

	registry := prometheus.NewRegistry()
	consoleMetrics := metrics.NewConsoleMetrics(registry)
	cronMetrics := metrics.NewCronJobMetrics(registry)

	ledger, err := orphans.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(ctx, "failed to create orphan ledger", err)
		os.Exit(1)
	}
	api, err := siteapi.NewClient(cfg.SiteAPI)
	if err != nil {
		logg.Error(ctx, "failed to create site api client", err)
		os.Exit(1)
	}

	job, err := cron.NewOrphanCleanupJob(cron.OrphanCleanupJobParams{
		Logger:     logg,
		Repo:       ledger,
		Store:      store,
		References: api,
		Metrics:    consoleMetrics,
		BatchSize:  cfg.Orphans.BatchSize,
		MinAge:     cfg.Orphans.MinAge,
	})
	if err != nil {
		logg.Error(ctx, "failed to create orphan cleanup job", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(job),
		Lock:     lock,
		Metrics:  cronMetrics,
		Interval: cfg.Orphans.SweepInterval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create sweeper service", err)
		os.Exit(1)
	}

	metricsServer := &http.Server{
		Addr:              metricsAddr,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped", err)
		}
	}()
	defer func() {
		_ = metricsServer.Shutdown(context.Background())
	}()

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "worker_id": instance.GetID()})
	logg.Info(ctx, "starting orphan sweeper")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "orphan sweeper stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "orphan sweeper shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("%s:%s", lockName, env)
}
