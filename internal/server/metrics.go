package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeRejected = "rejected"
)

type metrics struct {
	registry    *prometheus.Registry
	evaluations *prometheus.CounterVec
	connections prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "calc",
			Name:      "evaluations_total",
			Help:      "Evaluations handled by the server, by operation and outcome.",
		}, []string{"op", "outcome"}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "calc",
			Name:      "active_connections",
			Help:      "Open websocket connections.",
		}),
	}
	m.registry.MustRegister(m.evaluations, m.connections)
	return m
}

func (m *metrics) observe(op, outcome string) {
	m.evaluations.WithLabelValues(op, outcome).Inc()
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
