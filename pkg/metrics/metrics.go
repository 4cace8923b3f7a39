package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Triage metrics
	TriageDecisions  *prometheus.CounterVec
	TriageRejections prometheus.Counter
	OracleCalls      *prometheus.CounterVec
	OracleLatency    prometheus.Histogram

	// Wellness metrics
	WellnessScores prometheus.Histogram

	// Storage metrics
	RepositoryOperations *prometheus.CounterVec
	RepositoryLatency    *prometheus.HistogramVec

	// Worker metrics
	EventsConsumed *prometheus.CounterVec
	CasesPurged    prometheus.Counter
}

// New creates all application metrics and registers them with reg.
// Passing a fresh registry keeps tests isolated from the default one.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),

		TriageDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "triage",
			Name:      "decisions_total",
			Help:      "Triage decisions by ESI level and source",
		}, []string{"esi_level", "source"}),
		TriageRejections: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "triage",
			Name:      "guard_rejections_total",
			Help:      "Inputs rejected by the medical intent guard",
		}),
		OracleCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "calls_total",
			Help:      "Oracle calls by outcome",
		}, []string{"outcome"}),
		OracleLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "call_duration_seconds",
			Help:      "Time spent waiting for the oracle",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 3, 5, 10},
		}),

		WellnessScores: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "wellness",
			Name:      "score",
			Help:      "Distribution of computed wellness scores",
			Buckets:   []float64{20, 40, 60, 80, 100},
		}),

		RepositoryOperations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repository_operations_total",
			Help:      "Total number of repository operations",
		}, []string{"operation", "status"}),
		RepositoryLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "repository_operation_duration_seconds",
			Help:      "Duration of repository operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		EventsConsumed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "events_consumed_total",
			Help:      "Broker events handled by the worker",
		}, []string{"channel", "outcome"}),
		CasesPurged: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "cases_purged_total",
			Help:      "Closed cases removed by the retention sweep",
		}),
	}
}
