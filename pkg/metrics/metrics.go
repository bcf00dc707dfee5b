package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds the portal client's Prometheus instrumentation on a private
// registry so embedding processes keep full control over exposure.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	realtimeEvents  *prometheus.CounterVec
	reconnects      prometheus.Counter
}

// New registers the portal collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "studentlink_request_duration_seconds",
		Help:    "Duration of API client requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "resource", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studentlink_requests_total",
		Help: "Total API client requests",
	}, []string{"method", "resource", "outcome"})

	realtimeEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studentlink_realtime_events_total",
		Help: "Realtime events dispatched to handlers",
	}, []string{"event"})

	reconnects := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "studentlink_realtime_reconnects_total",
		Help: "WebSocket reconnect attempts",
	})

	registry.MustRegister(requestDuration, requestTotal, realtimeEvents, reconnects)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		realtimeEvents:  realtimeEvents,
		reconnects:      reconnects,
	}
}

// ObserveRequest records one API client round trip.
func (m *Metrics) ObserveRequest(method, resource, status, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, resource, status).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, resource, outcome).Inc()
}

// ObserveRealtimeEvent counts one dispatched transport event.
func (m *Metrics) ObserveRealtimeEvent(event string) {
	if m == nil {
		return
	}
	m.realtimeEvents.WithLabelValues(event).Inc()
}

// ObserveReconnect counts one reconnect attempt.
func (m *Metrics) ObserveReconnect() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}

// Handler exposes the registry over HTTP (used by the stub server).
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return m.handler
}

// Gather returns the current metric families for snapshot display.
func (m *Metrics) Gather() ([]*dto.MetricFamily, error) {
	if m == nil {
		return nil, nil
	}
	return m.registry.Gather()
}
