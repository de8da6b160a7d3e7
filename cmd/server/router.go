package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dutrus/MESALIB/internal/api"
	apiMiddleware "github.com/dutrus/MESALIB/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.logger)

	handlers := &api.Handlers{
		Profiles:     api.NewProfileHandler(app.profiles, app.logger),
		Matches:      api.NewMatchHandler(app.lifecycle, app.profiles, app.logger),
		Availability: api.NewAvailabilityHandler(app.availability, app.profiles, app.logger),
		Admin:        api.NewAdminHandler(app.lifecycle, app.profiles, app.logger),
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		handlers.Register(r)
	})

	r.Get("/health", app.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	return r
}

// handleHealth reports OK, or 503 when a configured dependency is unreachable.
func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if app.db != nil {
		if err := app.db.PingContext(ctx); err != nil {
			app.logger.Warn("health check: database unreachable")
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	if app.redis != nil {
		if err := app.redis.Health(ctx); err != nil {
			app.logger.Warn("health check: redis unreachable")
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		app.logger.Error("failed to write health check response", "error", err)
	}
}
