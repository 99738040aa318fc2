package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"reelsmaker/internal/http/handlers"
	"reelsmaker/internal/infra"
	"reelsmaker/internal/middleware"
)

// Options configures the HTTP surface around the handlers.
type Options struct {
	Logger         infra.Logger
	JWTSecret      string
	AllowedOrigins []string
	// RateLimitPerMin bounds generate-plan and composition requests per client IP.
	RateLimitPerMin int
	CountryLookup   middleware.CountryLookup
	// StaticDir and AssetsDir are served under /static and /assets when set.
	StaticDir string
	AssetsDir string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N("en", opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)

	if opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}
	if opts.AssetsDir != "" {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(opts.AssetsDir))))
	}

	r.Route("/v1", func(r chi.Router) {
		if opts.JWTSecret != "" {
			r.Use(middleware.OptionalAuthJWT(opts.JWTSecret))
		}
		limit := middleware.RateLimit(opts.RateLimitPerMin, time.Minute)

		r.With(limit).Post("/generate-plan", app.GeneratePlan)
		r.Post("/billing/create-session", app.BillingCreateSession)

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", app.ListTemplates)
			r.Get("/trending", app.TrendingTemplates)
			r.Get("/{id}", app.GetTemplate)
		})

		r.Route("/compositions", func(r chi.Router) {
			r.With(limit).Post("/", app.CreateComposition)
			r.Get("/{id}", app.GetComposition)
			r.Delete("/{id}", app.DeleteComposition)
			r.Get("/{id}/events", app.CompositionEvents)
			r.Get("/{id}/video", app.CompositionVideo)
			r.Get("/{id}/thumbnail", app.CompositionThumbnail)
			r.Get("/{id}/bundle", app.CompositionBundle)
		})

		r.Get("/history", app.ListHistory)
	})

	return r
}
