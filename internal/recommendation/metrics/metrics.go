package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the recommendation module.
type Metrics struct {
	// Recommendations created since process start
	Created prometheus.Counter

	// Retrievals served, labeled by source ("cache" or "store")
	RetrievalSource *prometheus.CounterVec

	// Full evaluation latency including the queue publish and store write
	EvaluateLatency prometheus.Histogram
}

// New creates a Metrics instance with all recommendation metrics registered.
func New() *Metrics {
	return &Metrics{
		Created: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clinrec_recommendations_created_total",
			Help: "Total recommendations created",
		}),

		RetrievalSource: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clinrec_recommendation_retrievals_total",
			Help: "Total recommendation retrievals by serving source",
		}, []string{"source"}),

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "clinrec_recommendation_evaluate_duration_seconds",
			Help:    "Duration of full evaluations including publish and persist",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementCreated records a created recommendation.
func (m *Metrics) IncrementCreated() {
	if m != nil {
		m.Created.Inc()
	}
}

// IncrementRetrieval records a retrieval served from the given source.
func (m *Metrics) IncrementRetrieval(source string) {
	if m != nil {
		m.RetrievalSource.WithLabelValues(source).Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
