// Scentwise - Adaptive Fragrance Interview and Recommendation Service
// Copyright 2026 Scentwise Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/scentwise/scentwise

// Package metrics provides Prometheus instrumentation for Scentwise:
//   - API endpoint latency and throughput
//   - Catalog cache efficiency and request coalescing
//   - Rerank/baseline upstream outcomes and the fallback rate
//   - Circuit breaker state
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics

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
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Catalog cache metrics

	CatalogCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_cache_hits_total",
			Help: "Total number of catalog cache hits (fresh snapshot served)",
		},
	)

	CatalogCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_cache_misses_total",
			Help: "Total number of catalog cache misses (refetch triggered)",
		},
	)

	CatalogCoalescedWaits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_coalesced_waits_total",
			Help: "Total number of callers that awaited an already in-flight catalog fetch",
		},
	)

	CatalogFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_fetch_duration_seconds",
			Help:    "Duration of upstream catalog fetches in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	CatalogFetchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_fetch_errors_total",
			Help: "Total number of catalog fetches that failed after retries",
		},
	)

	CatalogSnapshotSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_snapshot_candidates",
			Help: "Number of candidates in the current catalog snapshot",
		},
	)

	// Ranking pipeline metrics

	RankRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rank_requests_total",
			Help: "Total number of ranking requests by outcome (rerank, fallback, error)",
		},
		[]string{"outcome"},
	)

	RerankCallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rerank_call_duration_seconds",
			Help:    "Duration of external rerank calls in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 180},
		},
	)

	RerankFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rerank_failures_total",
			Help: "Total number of rerank call failures by reason",
		},
		[]string{"reason"}, // "timeout", "rejected", "unparsable", "breaker_open"
	)

	BaselineFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "baseline_failures_total",
			Help: "Total number of baseline call failures by reason",
		},
		[]string{"reason"},
	)

	// Circuit breaker metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Interview session metrics

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "interview_sessions_active",
			Help: "Current number of live interview sessions",
		},
	)

	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interview_sessions_created_total",
			Help: "Total number of interview sessions created",
		},
	)

	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interview_sessions_expired_total",
			Help: "Total number of interview sessions removed by the idle sweeper",
		},
	)

	StepSkips = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interview_step_skips_total",
			Help: "Total number of quick-fire steps skipped by the confidence short-circuit",
		},
	)
)

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRankOutcome records the outcome of one ranking request.
// Outcome is "rerank", "baseline" or "empty".
func RecordRankOutcome(outcome string) {
	RankRequestsTotal.WithLabelValues(outcome).Inc()
}
