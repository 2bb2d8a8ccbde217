package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/probitech/bloomd/registry"
)

// metrics holds the server's Prometheus collectors. Each Server owns its
// own prometheus.Registry so multiple servers can coexist in one process
// (as they do in tests).
type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

func newMetrics(reg *registry.Registry) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bloomd",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route pattern and status code.",
		}, []string{"route", "code"}),
	}
	m.registry.MustRegister(m.requests)
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "bloomd",
		Name:      "filters",
		Help:      "Number of currently registered filters.",
	}, func() float64 {
		return float64(reg.Len())
	}))
	return m
}
