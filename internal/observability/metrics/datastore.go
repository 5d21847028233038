// Package metrics provides datastore metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DatastoreMetrics contains Prometheus metrics for observation store operations
type DatastoreMetrics struct {
	dbOperationsTotal      *prometheus.CounterVec
	dbOperationDuration    *prometheus.HistogramVec
	dbOperationErrorsTotal *prometheus.CounterVec
	dbQueryResultSizeHist  *prometheus.HistogramVec
	dbTableRowCountGauge   *prometheus.GaugeVec

	collectors []prometheus.Collector
}

// NewDatastoreMetrics creates and registers new datastore metrics
func NewDatastoreMetrics(registry *prometheus.Registry) (*DatastoreMetrics, error) {
	m := &DatastoreMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *DatastoreMetrics) initMetrics() {
	m.dbOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datastore_db_operations_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "table", "status"}, // operation: select, insert, delete, create; status: success, error
	)

	m.dbOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datastore_db_operation_duration_seconds",
			Help:    "Time taken for database operations",
			Buckets: prometheus.ExponentialBuckets(BucketStart100us, BucketFactor2, BucketCount15),
		},
		[]string{"operation", "table"},
	)

	m.dbOperationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datastore_db_operation_errors_total",
			Help: "Total number of database operation errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	m.dbQueryResultSizeHist = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datastore_db_query_result_size",
			Help:    "Number of rows returned or affected by database queries",
			Buckets: prometheus.ExponentialBuckets(BucketStart1, BucketFactor2, BucketCount12),
		},
		[]string{"operation", "table"},
	)

	m.dbTableRowCountGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "datastore_table_row_count",
			Help: "Number of rows per table as of the last full read",
		},
		[]string{"table"},
	)

	m.collectors = []prometheus.Collector{
		m.dbOperationsTotal,
		m.dbOperationDuration,
		m.dbOperationErrorsTotal,
		m.dbQueryResultSizeHist,
		m.dbTableRowCountGauge,
	}
}

// Describe implements the Collector interface
func (m *DatastoreMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *DatastoreMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordDbOperation records a database operation with its outcome
func (m *DatastoreMetrics) RecordDbOperation(operation, table, status string) {
	m.dbOperationsTotal.WithLabelValues(operation, table, status).Inc()
}

// RecordDbOperationDuration records the duration of a database operation
func (m *DatastoreMetrics) RecordDbOperationDuration(operation, table string, seconds float64) {
	m.dbOperationDuration.WithLabelValues(operation, table).Observe(seconds)
}

// RecordDbOperationError records a categorized database error
func (m *DatastoreMetrics) RecordDbOperationError(operation, table, errorType string) {
	m.dbOperationErrorsTotal.WithLabelValues(operation, table, errorType).Inc()
}

// RecordQueryResultSize records how many rows a query touched
func (m *DatastoreMetrics) RecordQueryResultSize(operation, table string, rows int) {
	m.dbQueryResultSizeHist.WithLabelValues(operation, table).Observe(float64(rows))
}

// UpdateTableRowCount sets the row count gauge for a table
func (m *DatastoreMetrics) UpdateTableRowCount(table string, count int) {
	m.dbTableRowCountGauge.WithLabelValues(table).Set(float64(count))
}
