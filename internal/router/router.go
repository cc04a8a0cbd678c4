// Package router sets up all HTTP routes and middleware chains for the
// home-services admin dashboard. Operational endpoints sit outside the
// session and CSRF chain; every list screen shares one generic route set
// keyed by the entity name.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"hsadmin/internal/handlers"
	"hsadmin/internal/middleware"
)

// Config holds what the router wires together. Metrics, Limiter and Static
// are optional.
type Config struct {
	Sessions      middleware.SessionStore
	Admin         *handlers.Admin
	Metrics       http.Handler
	Limiter       *middleware.RateLimiter
	Static        fs.FS
	SecureCookies bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(cfg Config) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(otelhttp.NewMiddleware("hsadmin",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	))

	// Health check and metrics: no session, no CSRF.
	r.Get("/health", healthHandler)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}
	if cfg.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(cfg.Static)))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin/", http.StatusFound)
	})

	admin := cfg.Admin
	limited := func(h http.HandlerFunc) http.Handler {
		if cfg.Limiter == nil {
			return h
		}
		return cfg.Limiter.Middleware(h)
	}

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.EnsureSession(cfg.Sessions))
		r.Use(middleware.NewCSRF(cfg.SecureCookies))

		r.Get("/", admin.Dashboard)
		r.Post("/refresh", admin.Refresh)

		r.Route("/{entity}", func(r chi.Router) {
			// List state
			r.Get("/", admin.List)
			r.Get("/table", admin.Table)
			r.Post("/search", admin.Search)
			r.Post("/filter", admin.Filter)
			r.Post("/page/{dir}", admin.Page)
			r.Post("/retry", admin.Retry)
			r.Post("/sort", admin.Sort)
			r.Post("/columns", admin.Columns)

			// Create / edit modal
			r.Get("/new", admin.New)
			r.Get("/edit", admin.Edit)
			r.Method(http.MethodPost, "/preview", limited(admin.Preview))
			r.Method(http.MethodPost, "/save", limited(admin.Save))
			r.Post("/close", admin.Close)

			// Row actions; only the confirmation deletes.
			r.Method(http.MethodPost, "/toggle", limited(admin.Toggle))
			r.Post("/delete", admin.Delete)
			r.Method(http.MethodPost, "/delete/confirm", limited(admin.DeleteConfirm))
			r.Post("/delete/cancel", admin.DeleteCancel)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
