package jsonrpc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics of a Client. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// Sends counts exchanges, labelled by shape: single or batch.
	Sends *prometheus.CounterVec
	// Requests counts sent messages that expect a response.
	Requests prometheus.Counter
	// Notifications counts sent messages that expect none.
	Notifications prometheus.Counter
	// Failures counts failed exchanges, labelled by error category.
	Failures *prometheus.CounterVec
	// SendDuration observes the time from encoding to correlated responses,
	// labelled by shape.
	SendDuration *prometheus.HistogramVec
}

// NewMetrics registers the client metrics with the default registerer.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(nil)
}

// NewMetricsWithRegistry registers the client metrics with registry.
func NewMetricsWithRegistry(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		Sends: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jsonrpc_client_sends_total",
			Help: "The total number of exchanges sent, by shape (single or batch)",
		}, []string{"shape"}),
		Requests: factory.NewCounter(prometheus.CounterOpts{
			Name: "jsonrpc_client_requests_total",
			Help: "The total number of requests that expect a response",
		}),
		Notifications: factory.NewCounter(prometheus.CounterOpts{
			Name: "jsonrpc_client_notifications_total",
			Help: "The total number of notifications sent",
		}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jsonrpc_client_failures_total",
			Help: "The total number of failed exchanges, by error category",
		}, []string{"category"}),
		SendDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jsonrpc_client_send_duration_seconds",
			Help:    "Duration of exchanges, from encoding to correlated responses",
			Buckets: prometheus.DefBuckets,
		}, []string{"shape"}),
	}
}

func (m *Metrics) recordSend(shape string, requests, notifications int, took time.Duration) {
	if m == nil {
		return
	}
	m.Sends.WithLabelValues(shape).Inc()
	m.Requests.Add(float64(requests))
	m.Notifications.Add(float64(notifications))
	m.SendDuration.WithLabelValues(shape).Observe(took.Seconds())
}

func (m *Metrics) recordFailure(category Category) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(category.String()).Inc()
}
