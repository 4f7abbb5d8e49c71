package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the decision module.
type Metrics struct {
	// Scored documents by final status and selected form type
	DocumentsScored *prometheus.CounterVec

	// Documents that could not be scored or persisted, by stage
	DocumentsFailed *prometheus.CounterVec

	// Per-bucket points, to watch rubric drift across batches
	BucketScore *prometheus.HistogramVec

	// Selections resolved by the first-encountered fallback
	AmbiguousTieBreaks prometheus.Counter

	// Single document evaluation latency
	EvaluateLatency prometheus.Histogram

	// Whole batch latency
	BatchLatency prometheus.Histogram
}

// New creates a new Metrics instance registered with the default registerer.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the decision metrics with reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DocumentsScored: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "i9score_documents_scored_total",
			Help: "Total scored documents by status and form type",
		}, []string{"status", "form_type"}),

		DocumentsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "i9score_documents_failed_total",
			Help: "Total documents that failed by stage",
		}, []string{"stage"}), // stage: "load", "store", "audit", "cancelled"

		BucketScore: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "i9score_bucket_points",
			Help:    "Points awarded per rubric bucket",
			Buckets: []float64{0, 5, 10, 15, 20, 25},
		}, []string{"bucket"}),

		AmbiguousTieBreaks: factory.NewCounter(prometheus.CounterOpts{
			Name: "i9score_ambiguous_tie_breaks_total",
			Help: "Selections where signature date and page could not separate instances",
		}),

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "i9score_evaluate_duration_seconds",
			Help:    "Duration of a single document evaluation",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		BatchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "i9score_batch_duration_seconds",
			Help:    "Duration of a batch evaluation",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// IncrementScored records a scored document.
func (m *Metrics) IncrementScored(status, formType string) {
	if m != nil {
		m.DocumentsScored.WithLabelValues(status, formType).Inc()
	}
}

// IncrementFailed records a failure at the given stage.
func (m *Metrics) IncrementFailed(stage string) {
	if m != nil {
		m.DocumentsFailed.WithLabelValues(stage).Inc()
	}
}

// ObserveBucket records the points a bucket awarded.
func (m *Metrics) ObserveBucket(bucket string, points int) {
	if m != nil {
		m.BucketScore.WithLabelValues(bucket).Observe(float64(points))
	}
}

// IncrementTieBreak records an ambiguous selection.
func (m *Metrics) IncrementTieBreak() {
	if m != nil {
		m.AmbiguousTieBreaks.Inc()
	}
}

// ObserveEvaluateLatency records a single evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// ObserveBatchLatency records a batch duration.
func (m *Metrics) ObserveBatchLatency(d time.Duration) {
	if m != nil {
		m.BatchLatency.Observe(d.Seconds())
	}
}
