package metrics

// Operation labels shared by the collectors in this package.
const (
	// OpObservationAdd represents saving a new observation.
	OpObservationAdd = "observation_add"
	// OpObservationRemove represents deleting an observation.
	OpObservationRemove = "observation_remove"
	// OpObservationRefresh represents re-reading the table into the cache.
	OpObservationRefresh = "observation_refresh"
	// OpLocationRequest represents a position fix request.
	OpLocationRequest = "location_request"
	// OpSunEvents represents a sun event calculation.
	OpSunEvents = "sun_events"
)

// Status labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Histogram bucket parameters.
const (
	// BucketStart100us is the starting bucket for 0.1ms histograms (0.1ms to ~400ms range).
	BucketStart100us = 0.0001
	// BucketStart1ms is the starting bucket for 1ms histograms (1ms to ~16s range).
	BucketStart1ms = 0.001
	// BucketStart1 is the starting bucket for row count histograms.
	BucketStart1 = 1.0

	// BucketFactor2 is the common exponential growth factor of 2 for histogram buckets.
	BucketFactor2 = 2

	// BucketCount12 defines 12 exponential buckets.
	BucketCount12 = 12
	// BucketCount15 defines 15 exponential buckets.
	BucketCount15 = 15
)
