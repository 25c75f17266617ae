package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "talqs", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "talqs", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)

	// outcome is "ok" or one of the generation failure reasons.
	GenerationRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "talqs", Name: "generation_requests_total", Help: "Generation backend calls by task, backend and outcome."},
		[]string{"task", "backend", "outcome"},
	)
	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "talqs", Name: "generation_duration_seconds", Help: "Generation backend latency.", Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}},
		[]string{"task", "backend"},
	)
	Fallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "talqs", Name: "fallbacks_total", Help: "Degraded responses by service and fallback strategy."},
		[]string{"service", "strategy"},
	)
	DocumentUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "talqs", Name: "document_uploads_total", Help: "Document uploads by outcome."},
		[]string{"outcome"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(GenerationRequests)
	reg.MustRegister(GenerationDuration)
	reg.MustRegister(Fallbacks)
	reg.MustRegister(DocumentUploads)
}
