package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/content-console/api/controllers"
	"github.com/angelmondragon/content-console/api/middleware"
	"github.com/angelmondragon/content-console/internal/console"
	"github.com/angelmondragon/content-console/pkg/config"
	"github.com/angelmondragon/content-console/pkg/enums"
	"github.com/angelmondragon/content-console/pkg/logger"
	"github.com/angelmondragon/content-console/pkg/metrics"
	"github.com/angelmondragon/content-console/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	catalog *console.Catalog,
	redisClient *redis.Client,
	readiness map[string]controllers.Pinger,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Metrics(observer(httpMetrics)),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	// A nil *redis.Client must not reach the middleware as a non-nil interface.
	var idempotencyStore redis.IdempotencyStore
	var stageLimiter middleware.FixedWindowLimiter
	if redisClient != nil {
		idempotencyStore = redisClient
		stageLimiter = redisClient
	}
	stagePolicy := middleware.NewRateLimitPolicy("stage", cfg.Forms.StageRateLimit, cfg.Forms.StageRateWindow)
	stageLimit := middleware.RateLimit(stagePolicy, stageLimiter, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness, logg))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	sessions := catalog.Sessions()
	contacts := enums.ResourceContacts.String()
	quotes := enums.ResourceQuotes.String()

	r.Route("/console", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Put("/"+contacts+"/{id}/status", controllers.SetRequestStatus(catalog, contacts, logg))
		r.Put("/"+quotes+"/{id}/status", controllers.SetRequestStatus(catalog, quotes, logg))
		r.Put("/"+quotes+"/{id}/flag", controllers.FlagRequest(catalog, quotes, logg))

		r.Get("/forms/{formId}", controllers.GetForm(sessions, logg))
		r.Delete("/forms/{formId}", controllers.CloseForm(sessions, logg))
		r.Patch("/forms/{formId}/fields", controllers.PatchFormFields(sessions, logg))
		r.With(stageLimit).Post("/forms/{formId}/assets", controllers.StageFormAssets(sessions, cfg.Forms.MaxUploadBytes(), logg))
		r.Delete("/forms/{formId}/assets/{index}", controllers.RemoveFormAsset(sessions, logg))
		r.Put("/forms/{formId}/pairs", controllers.PutFormPairs(sessions, logg))
		r.Post("/forms/{formId}/submit", controllers.SubmitForm(sessions, logg))

		r.Get("/{resource}", controllers.ListRecords(catalog, logg))
		r.Post("/{resource}/forms", controllers.OpenForm(catalog, logg))
		r.Delete("/{resource}/{id}", controllers.DeleteRecord(catalog, logg))
	})

	return r
}

func observer(m *metrics.HTTPMetrics) middleware.HTTPObserver {
	if m == nil {
		return nil
	}
	return m
}
