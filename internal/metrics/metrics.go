// Package metrics exposes Prometheus instrumentation for the triage
// service on a dedicated registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	classificationsTotal *prometheus.CounterVec
	classifyDuration     prometheus.Histogram
	modelFailuresTotal   prometheus.Counter
	cacheHitsTotal       prometheus.Counter
}

func New(service string) *Metrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "triage",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "triage",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "triage",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	classificationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "triage",
			Subsystem: "classifier",
			Name:      "classifications_total",
			Help:      "Total classifications by category and decision source.",
		},
		[]string{"service", "category", "source"},
	)
	classifyDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "triage",
			Subsystem: "classifier",
			Name:      "duration_seconds",
			Help:      "Classification pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	modelFailuresTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "triage",
			Subsystem: "classifier",
			Name:      "model_failures_total",
			Help:      "Total model invocations that fell back to the heuristic.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	cacheHitsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "triage",
			Subsystem: "classifier",
			Name:      "cache_hits_total",
			Help:      "Total classifications served from the result cache.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		classificationsTotal,
		classifyDuration,
		modelFailuresTotal,
		cacheHitsTotal,
	)

	return &Metrics{
		registry:             registry,
		service:              service,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		classificationsTotal: classificationsTotal,
		classifyDuration:     classifyDuration,
		modelFailuresTotal:   modelFailuresTotal,
		cacheHitsTotal:       cacheHitsTotal,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts, durations and in-flight requests
// for every route. The registered route pattern is used as the path
// label to keep cardinality bounded.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		m.requestInFlight.Inc()
		err := c.Next()
		m.requestInFlight.Dec()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		path := c.Route().Path
		m.requestTotal.WithLabelValues(
			m.service,
			c.Method(),
			path,
			strconv.Itoa(status),
		).Inc()
		m.requestDuration.WithLabelValues(m.service, c.Method(), path).Observe(time.Since(start).Seconds())

		return err
	}
}

// RecordClassification counts one finished classification.
func (m *Metrics) RecordClassification(category, source string, duration time.Duration) {
	if category == "" {
		category = "unknown"
	}
	if source == "" {
		source = "unknown"
	}
	m.classificationsTotal.WithLabelValues(m.service, category, source).Inc()
	m.classifyDuration.Observe(duration.Seconds())
}

// RecordModelFailure counts a model invocation that could not produce
// usable output.
func (m *Metrics) RecordModelFailure() {
	m.modelFailuresTotal.Inc()
}

// RecordCacheHit counts a classification answered from the cache.
func (m *Metrics) RecordCacheHit() {
	m.cacheHitsTotal.Inc()
}
