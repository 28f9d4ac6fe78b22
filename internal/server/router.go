// Package server собирает HTTP API: маршруты, middleware и жизненный цикл сервера.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/iudanet/wealthvault/internal/server/handlers"
	"github.com/iudanet/wealthvault/internal/server/metrics"
	"github.com/iudanet/wealthvault/internal/server/middleware"
)

// RouterDependencies handlers and middleware collaborators of the API
type RouterDependencies struct {
	Auth      *handlers.AuthHandler
	Health    *handlers.HealthHandler
	Policies  *handlers.PolicyHandler
	Types     *handlers.TypeHandler
	Shares    *handlers.ShareHandler
	Documents *handlers.DocumentHandler

	Tokens      middleware.TokenValidator
	RateLimiter *middleware.RateLimiter
	Metrics     *metrics.Metrics
	// MetricsHandler отдает /metrics; nil отключает endpoint
	MetricsHandler http.Handler
}

// NewRouter wires the /api/v1 routes
func NewRouter(logger *slog.Logger, deps RouterDependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RecoveryMiddleware(logger))
	r.Use(deps.Metrics.Middleware)
	r.Use(middleware.LoggingWithSkip(logger, []string{"/api/v1/health", "/metrics"}))

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", deps.Health.Health)

		// Публичные endpoints: вход и guardian ссылки ограничены по частоте
		r.Group(func(r chi.Router) {
			if deps.RateLimiter != nil {
				r.Use(deps.RateLimiter.Middleware)
			}
			r.Post("/auth/register", deps.Auth.Register)
			r.Get("/auth/salt/{username}", deps.Auth.GetSalt)
			r.Post("/auth/login", deps.Auth.Login)
			r.Post("/auth/refresh", deps.Auth.Refresh)
			r.Get("/guardian", deps.Shares.Resolve)
		})

		// Ключ документа сам по себе является ссылкой доступа
		r.Get("/documents/{key}", deps.Documents.Download)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(logger, deps.Tokens))

			r.Post("/auth/logout", deps.Auth.Logout)

			r.Route("/policies", func(r chi.Router) {
				r.Get("/", deps.Policies.List)
				r.Post("/", deps.Policies.Create)
				r.Get("/timeline", deps.Policies.Timeline)
				r.Get("/{id}", deps.Policies.Get)
				r.Put("/{id}", deps.Policies.Update)
				r.Post("/{id}/renew", deps.Policies.Renew)
			})

			r.Route("/types", func(r chi.Router) {
				r.Get("/", deps.Types.List)
				r.Post("/", deps.Types.Create)
				r.Patch("/{key}", deps.Types.Update)
				r.Delete("/{key}", deps.Types.Delete)
			})

			r.Route("/shares", func(r chi.Router) {
				r.Get("/", deps.Shares.List)
				r.Post("/", deps.Shares.Create)
				r.Delete("/{id}", deps.Shares.Revoke)
			})

			r.Post("/documents", deps.Documents.Upload)
			r.Post("/extractions", deps.Documents.Extract)
		})
	})

	return r
}
