// Package metrics provides suncalc service metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SunCalcMetrics contains Prometheus metrics for sun event calculations
type SunCalcMetrics struct {
	sunCalcOperationsTotal  *prometheus.CounterVec
	sunCalcDurationSeconds  *prometheus.HistogramVec
	sunCalcCacheHitsTotal   *prometheus.CounterVec
	sunCalcCacheMissesTotal *prometheus.CounterVec
	sunCalcCacheSize        prometheus.Gauge
}

// NewSunCalcMetrics creates and registers new suncalc metrics
func NewSunCalcMetrics(registry *prometheus.Registry) (*SunCalcMetrics, error) {
	m := &SunCalcMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *SunCalcMetrics) initMetrics() {
	m.sunCalcOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suncalc_operations_total",
			Help: "Total number of sun calculation operations",
		},
		[]string{"operation", "status"},
	)

	m.sunCalcDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "suncalc_duration_seconds",
			Help:    "Time taken for sun calculations",
			Buckets: prometheus.ExponentialBuckets(BucketStart100us, BucketFactor2, BucketCount12),
		},
		[]string{"operation"},
	)

	m.sunCalcCacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suncalc_cache_hits_total",
			Help: "Total number of sun event cache hits",
		},
		[]string{"operation"},
	)

	m.sunCalcCacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suncalc_cache_misses_total",
			Help: "Total number of sun event cache misses",
		},
		[]string{"operation"},
	)

	m.sunCalcCacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "suncalc_cache_size",
			Help: "Number of cached sun event entries",
		},
	)
}

// Describe implements the Collector interface
func (m *SunCalcMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.sunCalcOperationsTotal.Describe(ch)
	m.sunCalcDurationSeconds.Describe(ch)
	m.sunCalcCacheHitsTotal.Describe(ch)
	m.sunCalcCacheMissesTotal.Describe(ch)
	m.sunCalcCacheSize.Describe(ch)
}

// Collect implements the Collector interface
func (m *SunCalcMetrics) Collect(ch chan<- prometheus.Metric) {
	m.sunCalcOperationsTotal.Collect(ch)
	m.sunCalcDurationSeconds.Collect(ch)
	m.sunCalcCacheHitsTotal.Collect(ch)
	m.sunCalcCacheMissesTotal.Collect(ch)
	m.sunCalcCacheSize.Collect(ch)
}

// RecordSunCalcOperation records a sun calculation operation
func (m *SunCalcMetrics) RecordSunCalcOperation(operation, status string) {
	m.sunCalcOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordSunCalcDuration records the duration of a sun calculation operation
func (m *SunCalcMetrics) RecordSunCalcDuration(operation string, duration float64) {
	m.sunCalcDurationSeconds.WithLabelValues(operation).Observe(duration)
}

// RecordSunCalcCacheHit records a cache hit
func (m *SunCalcMetrics) RecordSunCalcCacheHit(operation string) {
	m.sunCalcCacheHitsTotal.WithLabelValues(operation).Inc()
}

// RecordSunCalcCacheMiss records a cache miss
func (m *SunCalcMetrics) RecordSunCalcCacheMiss(operation string) {
	m.sunCalcCacheMissesTotal.WithLabelValues(operation).Inc()
}

// UpdateCacheSize updates the cache size gauge
func (m *SunCalcMetrics) UpdateCacheSize(size int) {
	m.sunCalcCacheSize.Set(float64(size))
}
