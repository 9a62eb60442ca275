// Package metrics holds the Prometheus collectors of the dispatch service.
package metrics

import (
	"strconv"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/fanout"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors. Build it with New and register it once.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	fanoutMessages      *prometheus.CounterVec
	ordersByStatus      *prometheus.GaugeVec
	integrationFailures prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		fanoutMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fanout_messages_total",
				Help: "Realtime messages handed to subscribers, by event and outcome",
			},
			[]string{"event", "outcome"},
		),
		ordersByStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "orders",
				Help: "Number of orders per lifecycle status",
			},
			[]string{"status"},
		),
		integrationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "integration_events_failed_total",
			Help: "Total number of domain events that could not be produced to the broker",
		}),
	}
	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.fanoutMessages,
		m.ordersByStatus,
		m.integrationFailures,
	)
	return m
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, seconds float64) {
	code := strconv.Itoa(status)
	m.httpRequestsTotal.WithLabelValues(method, path, code).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, code).Observe(seconds)
}

// MessageDelivered implements fanout.Observer.
func (m *Metrics) MessageDelivered(kind fanout.Kind) {
	m.fanoutMessages.WithLabelValues(string(kind), "delivered").Inc()
}

// MessageDropped implements fanout.Observer.
func (m *Metrics) MessageDropped(kind fanout.Kind) {
	m.fanoutMessages.WithLabelValues(string(kind), "dropped").Inc()
}

// SetOrderCounts replaces the per-status order gauges.
func (m *Metrics) SetOrderCounts(counts map[order.Status]int) {
	for status, count := range counts {
		m.ordersByStatus.WithLabelValues(status.String()).Set(float64(count))
	}
}

// IntegrationEventFailed counts a domain event lost on the way to the broker.
func (m *Metrics) IntegrationEventFailed() {
	m.integrationFailures.Inc()
}
