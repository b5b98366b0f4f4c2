package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/Collabos-llc/mlb-data-service/internal/api/handler"
	"github.com/Collabos-llc/mlb-data-service/internal/config"
)

// NewRouter creates and configures the chi router with all middleware and
// routes.
func NewRouter(h *handler.Handler, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Routes ---

	r.Get("/", h.Root)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Swagger UI over the embedded OpenAPI document.
	r.Get("/docs/doc.json", DocJSON)
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		// Collection triggers run long: a full-day Statcast pull can take
		// minutes, so they get their own generous timeout.
		r.Route("/collect", func(r chi.Router) {
			r.Use(middleware.Timeout(5 * time.Minute))
			r.Post("/fangraphs/batting", h.CollectBatting)
			r.Post("/fangraphs/pitching", h.CollectPitching)
			r.Post("/statcast", h.CollectStatcast)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))

			r.Get("/status", h.Status)

			r.Get("/fangraphs/batting", h.GetBattingSummary)
			r.Get("/fangraphs/pitching", h.GetPitchingSummary)
			r.Get("/statcast", h.GetPitchEvents)
			r.Get("/analytics/summary", h.GetAnalyticsSummary)

			r.Get("/player/search", h.SearchPlayers)
			r.Get("/player/profile", h.GetPlayerProfile)

			r.Get("/performance/metrics", h.GetPerformanceMetrics)
			r.Get("/freshness", h.GetFreshness)
			r.Get("/collections/history", h.GetCollectionHistory)
		})
	})

	return r
}
