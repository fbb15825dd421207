// Package metrics holds the Prometheus instruments the service exposes on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess       = "success"
	OutcomeInvalidIntent = "invalid_intent"
	OutcomeProviderError = "provider_error"
)

// DispatchMetrics counts and times dispatch attempts by outcome.
// A nil *DispatchMetrics is valid and records nothing.
type DispatchMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewDispatchMetrics creates the instruments and registers them with reg.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	m := &DispatchMetrics{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fcm_dispatch_total",
			Help: "Notification dispatch attempts, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fcm_dispatch_duration_seconds",
			Help:    "Time spent in a dispatch attempt, by outcome.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.total, m.duration)
	return m
}

// Observe records one dispatch attempt.
func (m *DispatchMetrics) Observe(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.total.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
