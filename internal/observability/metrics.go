package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wx_trigger"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// evaluation pipeline.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	MessagesProduced prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Evaluation metrics.
	Evaluations        *prometheus.CounterVec // labels: outcome={alternate,clear}
	TriggersEmitted    *prometheus.CounterVec // labels: reason
	NewTriggers        prometheus.Counter
	EvaluationDuration prometheus.Histogram
	TafUnparsed        prometheus.Counter
	MetarStale         *prometheus.CounterVec // labels: level={expired,critical}
	SegmentCache       *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.Evaluations,
		m.TriggersEmitted,
		m.NewTriggers,
		m.EvaluationDuration,
		m.TafUnparsed,
		m.MetarStale,
		m.SegmentCache,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total evaluation requests read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total evaluation results written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total requests that could not be decoded or evaluated.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-evaluate-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Flight evaluations by destination outcome.",
		}, []string{"outcome"}),
		TriggersEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triggers_total",
			Help:      "Triggers in evaluation results by reason code.",
		}, []string{"reason"}),
		NewTriggers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "new_triggers_total",
			Help:      "Triggers absent from the flight's previous set.",
		}),
		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_duration_seconds",
			Help:      "Duration of a single flight evaluation.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		TafUnparsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "taf_unparsed_total",
			Help:      "TAFs whose validity header could not be parsed.",
		}),
		MetarStale: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metar_stale_total",
			Help:      "Stale METARs seen during evaluation by level.",
		}, []string{"level"}),
		SegmentCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segment_cache_total",
			Help:      "TAF segment cache lookups by result.",
		}, []string{"result"}),
	}
}
