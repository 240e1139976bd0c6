// Package metrics holds the Prometheus collectors. All collectors live on a
// private registry so tests can build as many Metrics values as they like.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "barber"

type Metrics struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec

	salesTotal      *prometheus.CounterVec
	salesAmount     *prometheus.CounterVec
	saleFailures    *prometheus.CounterVec
	cashSessions    *prometheus.CounterVec
	cashDifference  prometheus.Histogram
	cacheOperations *prometheus.CounterVec
	jobs            *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		errorTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Total number of HTTP responses with status >= 500",
		}, []string{"method", "path"}),
		salesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_registered_total",
			Help:      "Sales settled against an open cash session",
		}, []string{"method"}),
		salesAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_amount_total",
			Help:      "Sum of payment amounts settled",
		}, []string{"method"}),
		saleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_failed_total",
			Help:      "Sale registrations rejected or rolled back, by error kind",
		}, []string{"kind"}),
		cashSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cash_session_events_total",
			Help:      "Cash session lifecycle events",
		}, []string{"event"}),
		cashDifference: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cash_close_difference_abs",
			Help:      "Absolute difference between counted and expected cash at close",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500},
		}),
		cacheOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Catalog cache lookups",
		}, []string{"result"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_processed_total",
			Help:      "Background jobs by type and outcome (ok, retry, dead)",
		}, []string{"type", "result"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.requestTotal,
		m.errorTotal,
		m.salesTotal,
		m.salesAmount,
		m.saleFailures,
		m.cashSessions,
		m.cashDifference,
		m.cacheOperations,
		m.jobs,
	)
	return m
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, code).Observe(elapsed.Seconds())
	m.requestTotal.WithLabelValues(method, path, code).Inc()
	if status >= http.StatusInternalServerError {
		m.errorTotal.WithLabelValues(method, path).Inc()
	}
}

func (m *Metrics) SaleRegistered(method string, amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.salesTotal.WithLabelValues(method).Inc()
	m.salesAmount.WithLabelValues(method).Add(amount.InexactFloat64())
}

func (m *Metrics) SaleFailed(kind string) {
	if m == nil {
		return
	}
	m.saleFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) CashOpened() {
	if m == nil {
		return
	}
	m.cashSessions.WithLabelValues("opened").Inc()
}

func (m *Metrics) CashClosed(difference decimal.Decimal) {
	if m == nil {
		return
	}
	m.cashSessions.WithLabelValues("closed").Inc()
	m.cashDifference.Observe(difference.Abs().InexactFloat64())
}

// CacheResult records "hit", "miss" or "error".
func (m *Metrics) CacheResult(result string) {
	if m == nil {
		return
	}
	m.cacheOperations.WithLabelValues(result).Inc()
}

func (m *Metrics) JobProcessed(jobType, result string) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(jobType, result).Inc()
}
