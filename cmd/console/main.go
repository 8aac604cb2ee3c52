package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/content-console/api/controllers"
	"github.com/angelmondragon/content-console/api/routes"
	"github.com/angelmondragon/content-console/internal/console"
	"github.com/angelmondragon/content-console/internal/events"
	"github.com/angelmondragon/content-console/internal/forms"
	"github.com/angelmondragon/content-console/internal/orphans"
	"github.com/angelmondragon/content-console/pkg/config"
	"github.com/angelmondragon/content-console/pkg/db"
	"github.com/angelmondragon/content-console/pkg/env"
	"github.com/angelmondragon/content-console/pkg/logger"
	"github.com/angelmondragon/content-console/pkg/metrics"
	"github.com/angelmondragon/content-console/pkg/migrate"
	"github.com/angelmondragon/content-console/pkg/pubsub"
	"github.com/angelmondragon/content-console/pkg/redis"
	"github.com/angelmondragon/content-console/pkg/siteapi"
	"github.com/angelmondragon/content-console/pkg/storage"
)

const (
	sessionSweepInterval = time.Minute
	shutdownTimeout      = 15 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "console"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "console",
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

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(ctx, "redis not configured; idempotency and staging rate limits disabled")
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

	api, err := siteapi.NewClient(cfg.SiteAPI)
	if err != nil {
		logg.Error(ctx, "failed to create site api client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	consoleMetrics := metrics.NewConsoleMetrics(registry)

	ledger, err := orphans.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(ctx, "failed to create orphan ledger", err)
		os.Exit(1)
	}
	cleaner, err := orphans.NewCleaner(store, ledger, consoleMetrics, logg)
	if err != nil {
		logg.Error(ctx, "failed to create orphan cleaner", err)
		os.Exit(1)
	}

	params := console.CatalogParams{
		API:            api,
		Store:          store,
		Cleaner:        cleaner,
		Metrics:        consoleMetrics,
		Notifier:       forms.NewLogNotifier(logg),
		Logger:         logg,
		MaxUploadBytes: cfg.Forms.MaxUploadBytes(),
		PreviewMaxPx:   cfg.Forms.PreviewMaxPx,
		SessionTTL:     cfg.Forms.SessionTTL,
	}

	var pubsubClient *pubsub.Client
	if cfg.PubSub.Enabled() {
		pubsubClient, err = pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		publisher, err := events.NewPublisher(pubsubClient, logg)
		if err != nil {
			logg.Error(ctx, "failed to create content change publisher", err)
			os.Exit(1)
		}
		params.Changes = publisher
	}

	catalog, err := console.NewCatalog(params)
	if err != nil {
		logg.Error(ctx, "failed to build console catalog", err)
		os.Exit(1)
	}
	go catalog.Sessions().Run(ctx, sessionSweepInterval)

	readiness := map[string]controllers.Pinger{
		"db":    dbClient,
		"store": store,
	}
	if redisClient != nil {
		readiness["redis"] = redisClient
	}
	if pubsubClient != nil {
		readiness["pubsub"] = pubsubClient
	}

	addr := env.ListenAddr(cfg.App.Port)
	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"storage": cfg.Storage.Driver,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			catalog,
			redisClient,
			readiness,
			metrics.NewHTTPMetrics(registry),
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting console server")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "console server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		logg.Info(shutdownCtx, "console server shutting down gracefully")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}
}
