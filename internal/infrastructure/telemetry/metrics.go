package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ordernow"

// Dispatch outcomes recorded by RecordDispatch.
const (
	OutcomeSent      = "sent"
	OutcomeSimulated = "simulated"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// Metrics is the Prometheus instrumentation for the service. It owns its own
// registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	dispatchTotal       *prometheus.CounterVec
	truncationsTotal    *prometheus.CounterVec
	webhookEventsTotal  *prometheus.CounterVec
	inboundIntentsTotal *prometheus.CounterVec
	deliveryStatusTotal *prometheus.CounterVec
	deliveryFailures    *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them, along with the Go
// runtime and process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dispatched_total",
			Help:      "Outbound notifications by message kind and outcome.",
		}, []string{"kind", "outcome"}),
		truncationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_truncations_total",
			Help:      "Rendered bodies shortened to the provider limit.",
		}, []string{"kind"}),
		webhookEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Webhook entries processed by kind.",
		}, []string{"kind"}),
		inboundIntentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inbound_intents_total",
			Help:      "Inbound customer messages by detected intent.",
		}, []string{"intent"}),
		deliveryStatusTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_status_updates_total",
			Help:      "Applied delivery status changes by status.",
		}, []string{"status"}),
		deliveryFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_failures_total",
			Help:      "Failed deliveries by provider error code.",
		}, []string{"code"}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.dispatchTotal,
		m.truncationsTotal,
		m.webhookEventsTotal,
		m.inboundIntentsTotal,
		m.deliveryStatusTotal,
		m.deliveryFailures,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)
	return m
}

// Registry exposes the underlying registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordDispatch counts one notification attempt.
func (m *Metrics) RecordDispatch(kind, outcome string) {
	m.dispatchTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordTruncation counts a body cut down to the length limit.
func (m *Metrics) RecordTruncation(kind string) {
	m.truncationsTotal.WithLabelValues(kind).Inc()
}

// RecordWebhookEvent counts one classified webhook entry.
func (m *Metrics) RecordWebhookEvent(kind string) {
	m.webhookEventsTotal.WithLabelValues(kind).Inc()
}

// RecordInboundIntent counts one routed customer message.
func (m *Metrics) RecordInboundIntent(intent string) {
	m.inboundIntentsTotal.WithLabelValues(intent).Inc()
}

// RecordDeliveryStatus counts one applied status change.
func (m *Metrics) RecordDeliveryStatus(status string) {
	m.deliveryStatusTotal.WithLabelValues(status).Inc()
}

// RecordDeliveryFailure counts a failed delivery. A zero code means the
// provider gave no error detail.
func (m *Metrics) RecordDeliveryFailure(code int) {
	label := "unknown"
	if code != 0 {
		label = strconv.Itoa(code)
	}
	m.deliveryFailures.WithLabelValues(label).Inc()
}

// ObserveHTTPRequest records one served request. route is the matched route
// template, never the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
