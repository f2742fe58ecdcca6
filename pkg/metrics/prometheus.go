package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	RowsLoaded          prometheus.Counter
	RowsRejected        prometheus.Counter
	FilesProcessed      prometheus.Counter
	StageDuration       *prometheus.HistogramVec
	StageRetries        *prometheus.CounterVec
	QualityChecksFailed prometheus.Counter
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		RowsLoaded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "The total number of fact rows loaded",
		}),
		RowsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_rejected_total",
			Help:      "The total number of fact rows rejected by validation",
		}),
		FilesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_processed_total",
			Help:      "The total number of source files fully ingested",
		}),
		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time taken by each pipeline stage",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		StageRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_retries_total",
			Help:      "The total number of stage retry attempts",
		}, []string{"stage"}),
		QualityChecksFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quality_checks_failed_total",
			Help:      "The total number of failed quality checks",
		}),
	}
}
