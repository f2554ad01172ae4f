package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rwh"

// Metrics holds the Prometheus counters and histograms for the estimator service.
type Metrics struct {
	// Assessment metrics.
	Assessments      *prometheus.CounterVec // labels: outcome={complete,incomplete,invalid}
	SuitabilityScore prometheus.Histogram

	// Outbound collaborator metrics.
	CollaboratorRequests *prometheus.CounterVec   // labels: collaborator={geocoder,rainfall,groundwater}, outcome={success,error,empty}
	CollaboratorDuration *prometheus.HistogramVec // labels: collaborator
	GeocodeCache         *prometheus.CounterVec   // labels: method={search,reverse}, result={hit,miss}
	RainfallCache        *prometheus.CounterVec   // labels: result={hit,miss,error}

	AuthAttempts     *prometheus.CounterVec // labels: operation={register,login}, outcome
	ReportsPublished *prometheus.CounterVec // labels: outcome={success,error}
}

func newMetrics() *Metrics {
	return &Metrics{
		Assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Assessments run, by outcome.",
		}, []string{"outcome"}),
		SuitabilityScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suitability_score",
			Help:      "Distribution of site suitability scores (0-100).",
			Buckets:   []float64{10, 20, 33, 40, 50, 60, 66, 80, 90, 100},
		}),
		CollaboratorRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_requests_total",
			Help:      "Requests to external data providers by collaborator and outcome.",
		}, []string{"collaborator", "outcome"}),
		CollaboratorDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collaborator_duration_seconds",
			Help:      "External data provider request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"collaborator"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		RainfallCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rainfall_cache_total",
			Help:      "Rainfall series cache lookups by result.",
		}, []string{"result"}),
		AuthAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Register and login attempts by outcome.",
		}, []string{"operation", "outcome"}),
		ReportsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_published_total",
			Help:      "Assessment reports handed to the report topic, by outcome.",
		}, []string{"outcome"}),
	}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Assessments,
		m.SuitabilityScore,
		m.CollaboratorRequests,
		m.CollaboratorDuration,
		m.GeocodeCache,
		m.RainfallCache,
		m.AuthAttempts,
		m.ReportsPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
