package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service metric collectors
type Metrics struct {
	serviceName string
	registry    *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Business metrics
	StockConsumptions  *prometheus.CounterVec
	CycleAdvances      prometheus.Counter
	HeldOrdersCreated  prometheus.Counter
	HeldOrdersDeleted  prometheus.Counter
	CodeAllocRetries   prometheus.Counter
	EventsPublished    *prometheus.CounterVec
}

// Config holds metrics configuration
type Config struct {
	ServiceName string
	Namespace   string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "pos",
	}
}

// New creates and registers the service metrics
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		serviceName: config.ServiceName,
		registry:    registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed",
		}, []string{"service", "method", "path", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),

		HTTPRequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served",
		}),

		StockConsumptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "stock_consumptions_total",
			Help:      "Recipe stock consumptions by result",
		}, []string{"service", "result"}),

		CycleAdvances: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "cycle_advances_total",
			Help:      "Replenishment cycles advanced",
		}),

		HeldOrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "held_orders_created_total",
			Help:      "Held orders created",
		}),

		HeldOrdersDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "held_orders_deleted_total",
			Help:      "Held orders discarded",
		}),

		CodeAllocRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "hold_code_allocation_retries_total",
			Help:      "Hold code allocation retries caused by concurrent writers",
		}),

		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "events_published_total",
			Help:      "Domain events published by type and result",
		}, []string{"service", "eventType", "result"}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.StockConsumptions,
		m.CycleAdvances,
		m.HeldOrdersCreated,
		m.HeldOrdersDeleted,
		m.CodeAllocRetries,
		m.EventsPublished,
	)

	return m
}

// ObserveHTTPRequest records an HTTP request observation
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// RecordConsumption records a stock consumption attempt
func (m *Metrics) RecordConsumption(result string) {
	m.StockConsumptions.WithLabelValues(m.serviceName, result).Inc()
}

// RecordEventPublished records an event publish attempt
func (m *Metrics) RecordEventPublished(eventType, result string) {
	m.EventsPublished.WithLabelValues(m.serviceName, eventType, result).Inc()
}

// Handler returns an http.Handler serving the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
