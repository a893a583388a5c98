// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andariego-ec/andariego/internal/middleware"
)

// RouterConfig holds the transport-level settings of the HTTP surface.
type RouterConfig struct {
	RateLimitReqs     int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
	CORSOrigins       []string
}

// NewRouter assembles the chi route tree.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		if !cfg.RateLimitDisabled {
			r.Use(httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))
		}
		r.Use(middleware.PrometheusMetrics)

		r.Get("/health", h.Health)
		r.Get("/live", h.Live)
		r.Get("/ready", h.Ready)

		r.Route("/sites", func(r chi.Router) {
			r.Get("/nearby", h.Nearby)
			r.Get("/{id}/related", h.Related)
		})

		r.Post("/identify", h.Identify)
		r.Post("/recognize", h.Recognize)
		r.Post("/recommend", h.Recommend)

		r.Get("/risk", h.Risk)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
