// Package metrics exposes Prometheus collectors for jitter calculations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors a service records into. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	delays   *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		delays: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jitter",
			Name:      "delay_units",
			Help:      "Computed delays before rounding, in the caller's unit.",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 16, 32, 64, 128, 200},
		}, []string{"strategy"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jitter",
			Name:      "failures_total",
			Help:      "Rejected calculations by error kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.delays, m.failures)
	return m
}

func (m *Metrics) ObserveDelay(strategy string, delay float64) {
	if m == nil {
		return
	}
	m.delays.WithLabelValues(strategy).Observe(delay)
}

func (m *Metrics) ObserveFailure(kind string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(kind).Inc()
}
