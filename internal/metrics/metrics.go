// Package metrics holds the Prometheus collectors of the server. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "airquality"

type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	pipelineDuration prometheus.Histogram
	readingsLoaded   prometheus.Gauge
	readingsFiltered prometheus.Histogram
	rangeErrors      prometheus.Counter
	dbQueryDuration  *prometheus.HistogramVec
}

// New registers every collector, plus the Go runtime and process collectors,
// on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		pipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Time spent filtering, aggregating, reshaping and binning one request.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		readingsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "readings",
			Help:      "Hourly readings held by the loaded dataset.",
		}),
		readingsFiltered: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "filtered_readings",
			Help:      "Readings left after the date filter.",
			Buckets:   prometheus.ExponentialBuckets(24, 4, 8),
		}),
		rangeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "range_errors_total",
			Help:      "Requests whose start date was after the end date.",
		}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "SQLite statement latency by operation.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"op"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.pipelineDuration,
		m.readingsLoaded,
		m.readingsFiltered,
		m.rangeErrors,
		m.dbQueryDuration,
	)
	return m
}

// Registry exposes the registry for tests and additional collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObservePipeline(filtered int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.readingsFiltered.Observe(float64(filtered))
	m.pipelineDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) SetReadingsLoaded(n int) {
	if m == nil {
		return
	}
	m.readingsLoaded.Set(float64(n))
}

func (m *Metrics) IncRangeError() {
	if m == nil {
		return
	}
	m.rangeErrors.Inc()
}

// ObserveQuery matches db.QueryObserver.
func (m *Metrics) ObserveQuery(op string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}
