package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"inova/internal/http/handlers"
	"inova/internal/infra"
	"inova/internal/metrics"
	"inova/internal/middleware"
)

// NewRouter wires middleware and routes. Only the routes that start paid
// provider work share the per-IP rate limit.
func NewRouter(app *handlers.App, lookup middleware.CountryLookup) http.Handler {
	cfg := app.Config
	if cfg == nil {
		cfg = &infra.Config{}
	}
	logger := *infra.LoggerOrDiscard(app.Logger)

	r := chi.NewRouter()

	// Middlewares dasar
	r.Use(
		chimw.RealIP,
		middleware.RequestID,
		middleware.Session(cfg.AppEnv == "production"),
		middleware.Logger(logger),
		chimw.Recoverer,
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.I18N(cfg.DefaultLocale, lookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get(infra.DefaultOpenAPISpecURL, app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Status reads are polled once per second; no generation happens here
	r.Get("/v1/logo/{id}", app.LogoStatus)

	// Generation routes call paid providers
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
		r.Post("/v1/generate", app.Generate)
		r.Post("/v1/logo", app.LogoCreate)
		r.Post("/v1/ideas", app.IdeasGenerate)
	})

	return r
}
