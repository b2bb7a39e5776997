// Ritualboard - Global Stress-Relief Leaderboard Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ritualboard

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/ritualboard/internal/middleware"
)

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler        *Handler
	chiMiddleware  *ChiMiddleware
	metricsEnabled bool
}

// NewRouter creates a router for h.
func NewRouter(h *Handler) *Router {
	return &Router{
		handler:        h,
		chiMiddleware:  NewChiMiddleware(ChiMiddlewareConfigFromSecurity(h.config.Security)),
		metricsEnabled: h.config.Server.MetricsEnabled,
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	// ========================
	// Room Endpoint
	// ========================
	// WebSocket upgrade, polling GET and a fixed 204 preflight share one path.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RoomCORS())
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.HandleFunc("/parties/main/{room}", router.handler.Room)
	})

	// ========================
	// JSON API
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.CORS())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Route("/health", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitCustom(RateLimitHealth))
			r.Get("/", router.handler.Health)
			r.Get("/live", router.handler.HealthLive)
			r.Get("/ready", router.handler.HealthReady)
		})

		r.With(router.chiMiddleware.RateLimit()).Get("/leaderboard/top", router.handler.LeaderboardTop)

		r.With(router.chiMiddleware.RateLimitCustom(RateLimitAdmin)).
			Post("/admin/leaderboard/reset", router.handler.LeaderboardReset)
	})

	if router.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	return r
}
