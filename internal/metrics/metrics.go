// Package metrics exposes Prometheus counters for ledger activity and HTTP traffic.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

const namespace = "herdbook"

// Metrics owns a private registry so that several instances can coexist in tests.
type Metrics struct {
	registry     *prometheus.Registry
	entries      *prometheus.CounterVec
	reversals    *prometheus.CounterVec
	mutations    *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "entries_total",
			Help:      "Ledger entries appended, by category and kind.",
		}, []string{"category", "kind"}),
		reversals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "reversals_total",
			Help:      "Ledger entries removed because their source record was deleted.",
		}, []string{"source"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Domain mutations by operation and outcome.",
		}, []string{"op", "result"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(
		m.entries,
		m.reversals,
		m.mutations,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// LedgerEntry counts one appended entry.
func (m *Metrics) LedgerEntry(category models.Category, kind models.FinanceKind) {
	if m == nil {
		return
	}
	m.entries.WithLabelValues(string(category), string(kind)).Inc()
}

// Reversal counts removed entries for a source kind.
func (m *Metrics) Reversal(source models.SourceKind, removed int) {
	if m == nil || removed <= 0 {
		return
	}
	m.reversals.WithLabelValues(string(source)).Add(float64(removed))
}

// Mutation counts one domain mutation with its outcome.
func (m *Metrics) Mutation(op string, err error) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, Result(err)).Inc()
}

// ObserveHTTP records the latency of one request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Result maps an error onto a low-cardinality outcome label.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrValidation):
		return "validation"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrConflict):
		return "conflict"
	case errors.Is(err, models.ErrStorage):
		return "storage"
	default:
		return "error"
	}
}
