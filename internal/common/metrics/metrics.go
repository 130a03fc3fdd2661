// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InferenceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inference_requests_total",
			Help: "Total number of chat-completions calls by model and outcome",
		},
		[]string{"model", "outcome"},
	)

	InferenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inference_request_duration_seconds",
			Help:    "Latency of chat-completions calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
		[]string{"model"},
	)

	NormalizeFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalize_fallback_total",
			Help: "Number of model answers that needed a heuristic fallback",
		},
		[]string{"stage"},
	)

	Classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifications_total",
			Help: "Total number of classification requests by outcome",
		},
		[]string{"outcome"},
	)

	ClassificationsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "classifications_active",
			Help: "Number of classifications currently in flight",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)

	RateLimitDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_decisions_total",
			Help: "Rate limiter decisions (allowed, limited, error)",
		},
		[]string{"decision"},
	)
)

// Outcome labels shared by the counters above.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeAccepted = "accepted"
	OutcomeError    = "error"
)
