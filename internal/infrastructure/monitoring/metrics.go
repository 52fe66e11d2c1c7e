package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "webshell"

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Visit metrics
	Visits      *prometheus.CounterVec
	VisitErrors *prometheus.CounterVec
	Proposals   *prometheus.CounterVec

	// Navigation metrics
	Navigations *prometheus.CounterVec

	// Path configuration and origin metrics
	PathConfigLoads *prometheus.CounterVec
	RedirectProbes  *prometheus.CounterVec
	BreakerState    *prometheus.GaugeVec

	// Shell metrics
	SessionsActive    prometheus.Gauge
	BridgeConnections prometheus.Gauge
	BridgeMessages    *prometheus.CounterVec
}

// NewMetrics creates a metrics collector with its own registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		Visits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "visits_total",
				Help:      "Visit lifecycle transitions by outcome",
			},
			[]string{"outcome"},
		),
		VisitErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "visit_errors_total",
				Help:      "Visit failures by error kind",
			},
			[]string{"kind"},
		),
		Proposals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "proposals_total",
				Help:      "Visit proposals by throttle result",
			},
			[]string{"result"},
		),

		Navigations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "navigations_total",
				Help:      "Back stack operations performed",
			},
			[]string{"operation"},
		),

		PathConfigLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pathconfig_loads_total",
				Help:      "Path configuration loads by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		RedirectProbes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "redirect_probes_total",
				Help:      "Redirect probes by result",
			},
			[]string{"result"},
		),
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Number of open shells",
			},
		),
		BridgeConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "bridge_connections",
				Help:      "Number of connected web view bridges",
			},
		),
		BridgeMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bridge_messages_total",
				Help:      "Bridge messages by direction and type",
			},
			[]string{"direction", "type"},
		),
	}
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordVisit records a visit lifecycle transition
func (m *Metrics) RecordVisit(outcome string) {
	if m == nil {
		return
	}
	m.Visits.WithLabelValues(outcome).Inc()
}

// RecordVisitError records a visit failure
func (m *Metrics) RecordVisitError(kind string) {
	if m == nil {
		return
	}
	m.VisitErrors.WithLabelValues(kind).Inc()
}

// RecordProposal records whether a proposal passed the throttle
func (m *Metrics) RecordProposal(result string) {
	if m == nil {
		return
	}
	m.Proposals.WithLabelValues(result).Inc()
}

// RecordNavigation records a back stack operation
func (m *Metrics) RecordNavigation(operation string) {
	if m == nil {
		return
	}
	m.Navigations.WithLabelValues(operation).Inc()
}

// RecordPathConfigLoad records a path configuration load attempt
func (m *Metrics) RecordPathConfigLoad(source, outcome string) {
	if m == nil {
		return
	}
	m.PathConfigLoads.WithLabelValues(source, outcome).Inc()
}

// RecordRedirectProbe records a redirect probe result
func (m *Metrics) RecordRedirectProbe(result string) {
	if m == nil {
		return
	}
	m.RedirectProbes.WithLabelValues(result).Inc()
}

// SetBreakerState records a circuit breaker position
func (m *Metrics) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

// SetSessionsActive sets the number of open shells
func (m *Metrics) SetSessionsActive(count int) {
	if m == nil {
		return
	}
	m.SessionsActive.Set(float64(count))
}

// IncBridgeConnections increments connected bridges
func (m *Metrics) IncBridgeConnections() {
	if m == nil {
		return
	}
	m.BridgeConnections.Inc()
}

// DecBridgeConnections decrements connected bridges
func (m *Metrics) DecBridgeConnections() {
	if m == nil {
		return
	}
	m.BridgeConnections.Dec()
}

// RecordBridgeMessage records a bridge message
func (m *Metrics) RecordBridgeMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.BridgeMessages.WithLabelValues(direction, msgType).Inc()
}
