// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scentwise/scentwise/internal/config"
	"github.com/scentwise/scentwise/internal/middleware"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler so the shared middleware works with r.Use.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router assembles the HTTP routing tree.
type Router struct {
	cfg      config.ServerConfig
	handlers *Handlers
}

// NewRouter creates a router for the given handler set.
func NewRouter(cfg config.ServerConfig, handlers *Handlers) *Router {
	return &Router{cfg: cfg, handlers: handlers}
}

// Setup builds the routing tree with the global middleware stack.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(rt.cfg.RateLimitPerMinute, time.Minute))
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Get("/health", rt.handlers.Health)
		r.Get("/steps", rt.handlers.Steps)
		r.Get("/perfumes", rt.handlers.Perfumes)
		r.Post("/recommend", rt.handlers.Recommend)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", rt.handlers.CreateSession)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", rt.handlers.GetSession)
				r.Delete("/", rt.handlers.DeleteSession)
				r.Post("/path", rt.handlers.SelectPath)
				r.Post("/responses", rt.handlers.RecordResponse)
				r.Post("/advance", rt.handlers.Advance)
				r.Post("/retreat", rt.handlers.Retreat)
				r.Post("/jump", rt.handlers.Jump)
				r.Post("/reset", rt.handlers.Reset)
				r.Post("/recommendations", rt.handlers.SessionRecommendations)
			})
		})
	})

	return r
}
