// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pubglens_http_requests_total",
			Help: "Inbound HTTP requests by route and status.",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pubglens_http_request_duration_seconds",
			Help:    "Inbound HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pubglens_upstream_requests_total",
			Help: "Calls to the PUBG API by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pubglens_upstream_request_duration_seconds",
			Help:    "PUBG API call latency.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pubglens_cache_lookups_total",
			Help: "Response cache lookups by kind and result.",
		},
		[]string{"kind", "result"},
	)

	ProviderAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pubglens_ai_provider_attempts_total",
			Help: "AI provider attempts by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	ProviderAttemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pubglens_ai_provider_attempt_duration_seconds",
			Help:    "AI provider attempt latency.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"provider"},
	)

	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pubglens_analyses_total",
			Help: "Analysis requests by kind and result.",
		},
		[]string{"kind", "result"},
	)

	ProviderBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pubglens_ai_provider_breaker_state",
			Help: "Circuit breaker state per provider (0 closed, 1 half-open, 2 open).",
		},
		[]string{"provider"},
	)
)

// RecordAPIRequest records one served HTTP request.
func RecordAPIRequest(method, route string, status int, d time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordUpstreamRequest records one PUBG API call.
func RecordUpstreamRequest(endpoint, outcome string, d time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(kind, result).Inc()
}

// RecordProviderAttempt records one attempt against an AI provider.
func RecordProviderAttempt(provider, outcome string, d time.Duration) {
	ProviderAttemptsTotal.WithLabelValues(provider, outcome).Inc()
	ProviderAttemptDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordAnalysis records the terminal state of an analysis request.
func RecordAnalysis(kind string, ok bool) {
	result := "succeeded"
	if !ok {
		result = "all_providers_failed"
	}
	AnalysesTotal.WithLabelValues(kind, result).Inc()
}

// SetBreakerState publishes a provider's circuit breaker state.
func SetBreakerState(provider string, state int) {
	ProviderBreakerState.WithLabelValues(provider).Set(float64(state))
}
