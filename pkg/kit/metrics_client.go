package kit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelOp      = "op"
	labelOutcome = "outcome"
)

// ClientMetrics tracks outbound calls. A nil *ClientMetrics records nothing.
type ClientMetrics struct {
	Calls   *prometheus.CounterVec
	Latency *prometheus.HistogramVec
}

func NewClientMetrics(reg prometheus.Registerer, client string) *ClientMetrics {
	m := &ClientMetrics{
		Calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "client_requests_total",
				Help:        "Total outbound requests",
				ConstLabels: prometheus.Labels{"client": client},
			},
			[]string{labelOp, labelOutcome},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "client_request_duration_seconds",
				Help:        "Outbound request latency",
				ConstLabels: prometheus.Labels{"client": client},
			},
			[]string{labelOp},
		),
	}

	reg.MustRegister(m.Calls, m.Latency)
	return m
}

func (m *ClientMetrics) Observe(op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Calls.WithLabelValues(op, outcome).Inc()
	m.Latency.WithLabelValues(op).Observe(d.Seconds())
}
