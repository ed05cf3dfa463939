package ai

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderRequests counts provider calls by provider, operation and outcome.
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kagi_provider_requests_total",
			Help: "Total number of AI provider calls by provider, operation and outcome",
		},
		[]string{"provider", "op", "outcome"},
	)

	// ProviderLatency tracks the latency of provider calls.
	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kagi_provider_request_duration_seconds",
			Help:    "Latency of AI provider calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "op"},
	)
)

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(Classify(err))
}

func observeDuration(provider, op string, start time.Time, err error) {
	ProviderLatency.WithLabelValues(provider, op).Observe(time.Since(start).Seconds())
	ProviderRequests.WithLabelValues(provider, op, outcome(err)).Inc()
}

func observe(provider, op string, err error) {
	ProviderRequests.WithLabelValues(provider, op, outcome(err)).Inc()
}
