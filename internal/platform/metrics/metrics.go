package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	EntriesRegistered prometheus.Counter
	ExitsRegistered   prometheus.Counter
	EntriesDenied     *prometheus.CounterVec
	BadgesAssigned    prometheus.Counter
	BadgesReturned    *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		EntriesRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "garita_entries_registered_total",
			Help: "Total number of contractor entries registered",
		}),
		ExitsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "garita_exits_registered_total",
			Help: "Total number of contractor exits registered",
		}),
		EntriesDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "garita_entries_denied_total",
			Help: "Entry registrations rejected by validation, by error code",
		}, []string{"error_code"}),
		BadgesAssigned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "garita_badges_assigned_total",
			Help: "Badge loans opened alongside entries",
		}),
		BadgesReturned: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "garita_badges_returned_total",
			Help: "Badge loans closed on exit, by return condition",
		}, []string{"condition"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "garita_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// NewForTest creates metrics on a private registry so parallel tests do not
// trip duplicate registration panics.
func NewForTest() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		EntriesRegistered: factory.NewCounter(prometheus.CounterOpts{Name: "garita_entries_registered_total", Help: "test"}),
		ExitsRegistered:   factory.NewCounter(prometheus.CounterOpts{Name: "garita_exits_registered_total", Help: "test"}),
		EntriesDenied:     factory.NewCounterVec(prometheus.CounterOpts{Name: "garita_entries_denied_total", Help: "test"}, []string{"error_code"}),
		BadgesAssigned:    factory.NewCounter(prometheus.CounterOpts{Name: "garita_badges_assigned_total", Help: "test"}),
		BadgesReturned:    factory.NewCounterVec(prometheus.CounterOpts{Name: "garita_badges_returned_total", Help: "test"}, []string{"condition"}),
		RequestDuration:   factory.NewHistogramVec(prometheus.HistogramOpts{Name: "garita_http_request_duration_seconds", Help: "test"}, []string{"method", "route", "status"}),
	}
}
