// Package metrics defines the Prometheus instruments exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Resolutions counts MatchResults by resolution status.
	Resolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booster_resolutions_total",
			Help: "Total number of cross-platform resolutions by status",
		},
		[]string{"status"}, // full, partial, primary_only, failed
	)

	// Degradations counts resolutions that fell back to the primary link.
	Degradations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booster_degradations_total",
			Help: "Total number of degraded resolutions by reason",
		},
		[]string{"reason"}, // timeout, provider_error, cancelled
	)

	// MatchingRequests counts calls to the matching provider.
	MatchingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booster_matching_requests_total",
			Help: "Total number of matching provider requests by outcome",
		},
		[]string{"outcome"}, // success, not_found, error, rejected
	)

	// MatchingDuration observes matching provider latency.
	MatchingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "booster_matching_duration_seconds",
			Help:    "Latency of matching provider requests",
			Buckets: prometheus.DefBuckets,
		},
	)

	// BreakerState reports the matching provider circuit breaker state.
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "booster_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// MatchCache counts request cache lookups.
	MatchCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booster_match_cache_total",
			Help: "Match cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)

	// HTTPRequests counts served requests.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booster_http_requests_total",
			Help: "Total HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)
)
