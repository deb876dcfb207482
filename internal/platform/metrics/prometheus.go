package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsManager holds the service's Prometheus metrics on a private registry.
type MetricsManager struct {
	Registry            *prometheus.Registry
	CarsCreatedTotal    prometheus.Counter
	CarsUpdatedTotal    prometheus.Counter
	CarsDeletedTotal    prometheus.Counter
	CarsPublishedTotal  prometheus.Counter
	APIErrorsTotal      *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetricsManager creates and registers the metrics under the given namespace.
func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		CarsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cars_created_total",
			Help:      "Total number of car listings created.",
		}),
		CarsUpdatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cars_updated_total",
			Help:      "Total number of car listings updated.",
		}),
		CarsDeletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cars_deleted_total",
			Help:      "Total number of car listings deleted.",
		}),
		CarsPublishedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cars_published_total",
			Help:      "Total number of car listings published to the marketplace.",
		}),
		APIErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API errors by operation and error type.",
		}, []string{"method", "error_type"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests by method, route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	registry.MustRegister(
		m.CarsCreatedTotal,
		m.CarsUpdatedTotal,
		m.CarsDeletedTotal,
		m.CarsPublishedTotal,
		m.APIErrorsTotal,
		m.HTTPRequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *MetricsManager) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveError counts a failed operation. Safe on a nil manager.
func (m *MetricsManager) ObserveError(method, errorType string) {
	if m == nil {
		return
	}
	m.APIErrorsTotal.WithLabelValues(method, errorType).Inc()
}

// CarCreated, CarUpdated, CarDeleted and CarPublished are nil-safe counter shortcuts.
func (m *MetricsManager) CarCreated() {
	if m != nil {
		m.CarsCreatedTotal.Inc()
	}
}

func (m *MetricsManager) CarUpdated() {
	if m != nil {
		m.CarsUpdatedTotal.Inc()
	}
}

func (m *MetricsManager) CarDeleted() {
	if m != nil {
		m.CarsDeletedTotal.Inc()
	}
}

func (m *MetricsManager) CarPublished() {
	if m != nil {
		m.CarsPublishedTotal.Inc()
	}
}
