// Andariego - Tourism Geo-Recommendation and Risk Analysis
// Copyright 2026 Andariego contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/andariego-ec/andariego

// Package metrics provides Prometheus instrumentation for:
//   - API endpoint latency and throughput
//   - Identification outcomes and similarity scoring
//   - Candidate filter behavior (catalog size, skipped sites)
//   - Risk scorer usage and degradation
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Identification Metrics
	IdentificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identifications_total",
			Help: "Total photo identification requests by outcome",
		},
		[]string{"outcome"}, // success, suggestion, not_found
	)

	SimilarityDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "similarity_computation_duration_seconds",
			Help:    "Duration of a single image similarity computation",
			Buckets: prometheus.DefBuckets,
		},
	)

	SimilarityBestScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "similarity_best_score",
			Help:    "Best similarity score per identification request",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	// Candidate Filter Metrics
	CandidatesConsidered = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "candidate_filter_candidates",
			Help:    "Candidates surviving the radius filter per query",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	SitesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "candidate_filter_sites_skipped_total",
			Help: "Catalog sites skipped during filtering by reason",
		},
		[]string{"reason"}, // out_of_region, invalid_coordinate
	)

	// Risk Scorer Metrics
	RiskRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_requests_total",
			Help: "Total risk assessment requests by result",
		},
		[]string{"result"}, // success, degraded, invalid_input
	)

	RiskLevel = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "risk_level",
			Help:    "Final risk level distribution (0-10)",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)

	// Achievements Metrics
	VisitEventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "visit_events_published_total",
			Help: "Total site-visited events published to the achievements bus",
		},
	)

	VisitEventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visit_events_consumed_total",
			Help: "Total site-visited events consumed by result",
		},
		[]string{"result"}, // ok, error
	)

	// Circuit Breaker Metrics (object detector)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordIdentification records the outcome of a photo identification.
func RecordIdentification(outcome string, bestScore float64) {
	IdentificationsTotal.WithLabelValues(outcome).Inc()
	SimilarityBestScore.Observe(bestScore)
}

// RecordRiskRequest records a risk assessment request.
func RecordRiskRequest(result string, level float64) {
	RiskRequestsTotal.WithLabelValues(result).Inc()
	if result == "success" {
		RiskLevel.Observe(level)
	}
}
