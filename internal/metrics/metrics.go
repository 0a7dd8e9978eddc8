// Package metrics exposes Prometheus counters for study activity and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	Reviews           *prometheus.CounterVec
	PersistFailures   prometheus.Counter
	SessionsStarted   prometheus.Counter
	SessionsCompleted prometheus.Counter
	DueCards          prometheus.Gauge
	Reminders         *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry under namespace
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		Reviews: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reviews_total",
				Help:      "Total number of graded reviews",
			},
			[]string{"grade"},
		),
		PersistFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "review_persist_failures_total",
				Help:      "Total number of grades that could not be saved",
			},
		),
		SessionsStarted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_started_total",
				Help:      "Total number of study sessions started",
			},
		),
		SessionsCompleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_completed_total",
				Help:      "Total number of study sessions that ran out of cards",
			},
		),
		DueCards: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "due_cards",
				Help:      "Number of cards due at the last deck scan",
			},
		),
		Reminders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reminders_total",
				Help:      "Total number of reminder notifications by result",
			},
			[]string{"result"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(
		c.Reviews,
		c.PersistFailures,
		c.SessionsStarted,
		c.SessionsCompleted,
		c.DueCards,
		c.Reminders,
		c.HTTPRequests,
		c.HTTPDuration,
	)

	return c
}

// Registry returns the registry backing this collector
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) RecordReview(grade string) {
	if c == nil {
		return
	}
	c.Reviews.WithLabelValues(grade).Inc()
}

func (c *Collector) RecordPersistFailure() {
	if c == nil {
		return
	}
	c.PersistFailures.Inc()
}

func (c *Collector) RecordSessionStarted() {
	if c == nil {
		return
	}
	c.SessionsStarted.Inc()
}

func (c *Collector) RecordSessionCompleted() {
	if c == nil {
		return
	}
	c.SessionsCompleted.Inc()
}

func (c *Collector) SetDueCards(n int) {
	if c == nil {
		return
	}
	c.DueCards.Set(float64(n))
}

// RecordReminder counts one notification attempt; result is "sent", "failed" or "skipped"
func (c *Collector) RecordReminder(result string) {
	if c == nil {
		return
	}
	c.Reminders.WithLabelValues(result).Inc()
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
