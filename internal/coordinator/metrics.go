package coordinator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the coordinator's request-path Prometheus instruments,
// registered against their own private registry rather than the global
// default one. This keeps every Metrics instance (and therefore every
// Server, including the many constructed in tests) independent: no two
// Servers fight over registering "minikv_requests_total" twice.
type Metrics struct {
	Registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics constructs a fresh metric set on a fresh registry. Callers that
// want these metrics served at /metrics expose m.Registry via
// promhttp.HandlerFor.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "minikv_requests_total",
			Help: "Total coordinator requests by method and outcome.",
		}, []string{"method", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "minikv_request_duration_seconds",
			Help:    "Coordinator request handling latency by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
	reg.MustRegister(m.requestsTotal, m.requestDuration)
	return m
}

// observe records one completed request's outcome and latency.
func (m *Metrics) observe(method, outcome string, d time.Duration) {
	m.requestsTotal.WithLabelValues(method, outcome).Inc()
	m.requestDuration.WithLabelValues(method).Observe(d.Seconds())
}
