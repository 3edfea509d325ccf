// Package metrics exposes Prometheus counters for mutations and refusals.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like
type Metrics struct {
	registry  *prometheus.Registry
	mutations *prometheus.CounterVec
	refusals  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workhours",
			Name:      "mutations_total",
			Help:      "Successful mutations by entity type and history action.",
		}, []string{"entity", "action"}),
		refusals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workhours",
			Name:      "refusals_total",
			Help:      "Guarded operations refused to keep an invariant.",
		}, []string{"entity"}),
	}
	m.registry.MustRegister(
		m.mutations,
		m.refusals,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveMutation(entity, action string) {
	m.mutations.WithLabelValues(entity, action).Inc()
}

func (m *Metrics) ObserveRefusal(entity string) {
	m.refusals.WithLabelValues(entity).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests that gather directly
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
