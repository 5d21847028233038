package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ObservationMetrics tracks the observation service: mutations, cache
// refreshes and location outcomes.
type ObservationMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	errorsTotal       *prometheus.CounterVec
	cacheSizeGauge    prometheus.Gauge
	locationOutcomes  *prometheus.CounterVec
}

// NewObservationMetrics creates and registers observation metrics
func NewObservationMetrics(registry *prometheus.Registry) (*ObservationMetrics, error) {
	m := &ObservationMetrics{
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "observation_operations_total",
				Help: "Total number of observation service operations",
			},
			[]string{"operation", "status"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "observation_operation_duration_seconds",
				Help:    "Time taken for observation service operations, including the cache refresh",
				Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount15),
			},
			[]string{"operation"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "observation_errors_total",
				Help: "Total number of observation service errors",
			},
			[]string{"operation", "error_type"},
		),
		cacheSizeGauge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "observation_cache_size",
				Help: "Number of observations held in the in-memory list",
			},
		),
		locationOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "observation_location_outcomes_total",
				Help: "Outcome of location capture when saving observations",
			},
			[]string{"outcome"}, // outcome: captured, denied, unavailable
		),
	}

	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements the Collector interface
func (m *ObservationMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.operationsTotal.Describe(ch)
	m.operationDuration.Describe(ch)
	m.errorsTotal.Describe(ch)
	m.cacheSizeGauge.Describe(ch)
	m.locationOutcomes.Describe(ch)
}

// Collect implements the Collector interface
func (m *ObservationMetrics) Collect(ch chan<- prometheus.Metric) {
	m.operationsTotal.Collect(ch)
	m.operationDuration.Collect(ch)
	m.errorsTotal.Collect(ch)
	m.cacheSizeGauge.Collect(ch)
	m.locationOutcomes.Collect(ch)
}

// RecordOperation implements Recorder
func (m *ObservationMetrics) RecordOperation(operation, status string) {
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuration implements Recorder
func (m *ObservationMetrics) RecordDuration(operation string, seconds float64) {
	m.operationDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordError implements Recorder
func (m *ObservationMetrics) RecordError(operation, errorType string) {
	m.errorsTotal.WithLabelValues(operation, errorType).Inc()
}

// SetCacheSize updates the cache size gauge
func (m *ObservationMetrics) SetCacheSize(size int) {
	m.cacheSizeGauge.Set(float64(size))
}

// RecordLocationOutcome counts how location capture ended for a saved observation
func (m *ObservationMetrics) RecordLocationOutcome(outcome string) {
	m.locationOutcomes.WithLabelValues(outcome).Inc()
}
