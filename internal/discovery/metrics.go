package discovery

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestDuration tracks engine computation time per operation.
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "discovery_calculation_duration_seconds",
		Help:    "Time taken for discovery calculation by operation",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"operation"}) // operation: deals, stores, branches, detail, home

	// requestErrors tracks engine errors per operation.
	requestErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discovery_calculation_errors_total",
		Help: "Total number of discovery errors by operation",
	}, []string{"operation"})

	// qualifyingStores tracks how many stores survive the distance bound.
	qualifyingStores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "discovery_qualifying_stores_count",
		Help:    "Number of stores with a branch inside the distance bound",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})

	// rankedDeals tracks the size of the ranked list before pagination.
	rankedDeals = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "discovery_ranked_deals_count",
		Help:    "Number of distinct products in the ranked list",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	})

	// nearestDistance tracks the distance to the closest qualifying branch.
	nearestDistance = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "discovery_nearest_branch_meters",
		Help:    "Distance to the nearest qualifying branch in meters",
		Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000},
	})
)

// MetricsRecorder provides methods to record discovery metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordDuration records the computation time of one engine operation.
func (m *MetricsRecorder) RecordDuration(operation string, d time.Duration) {
	requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordError records an engine error.
func (m *MetricsRecorder) RecordError(operation string) {
	requestErrors.WithLabelValues(operation).Inc()
}

// RecordQualifyingStores records the qualifying store count of one request.
func (m *MetricsRecorder) RecordQualifyingStores(n int) {
	qualifyingStores.Observe(float64(n))
}

// RecordRankedDeals records the pre-pagination result size.
func (m *MetricsRecorder) RecordRankedDeals(n int) {
	rankedDeals.Observe(float64(n))
}

// RecordNearestDistance records the closest qualifying branch distance.
func (m *MetricsRecorder) RecordNearestDistance(meters float64) {
	nearestDistance.Observe(meters)
}
