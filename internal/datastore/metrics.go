package datastore

import (
	"github.com/tphakala/birdwatcher/internal/observability/metrics"
)

// Metrics is a type alias for the metrics.DatastoreMetrics
type Metrics = metrics.DatastoreMetrics
