package snapshot

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "snapshot_load_duration_seconds",
		Help:    "Duration of catalog snapshot loads from the database",
		Buckets: prometheus.DefBuckets,
	})

	loadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_load_errors_total",
		Help: "Total number of failed catalog snapshot loads",
	})

	entityCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "snapshot_entities",
		Help: "Number of entities in the current catalog snapshot",
	}, []string{"entity"})

	loadedTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "snapshot_loaded_timestamp_seconds",
		Help: "Unix time of the last successful snapshot load",
	})
)

// MetricsRecorder records snapshot cache metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordLoad records a successful load with its duration and entity counts.
func (m *MetricsRecorder) RecordLoad(d time.Duration, counts map[string]int) {
	loadDuration.Observe(d.Seconds())
	for entity, n := range counts {
		entityCount.WithLabelValues(entity).Set(float64(n))
	}
	loadedTimestamp.SetToCurrentTime()
}

// RecordLoadError records a failed load.
func (m *MetricsRecorder) RecordLoadError() {
	loadErrors.Inc()
}
