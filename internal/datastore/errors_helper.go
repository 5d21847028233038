package datastore

import (
	"fmt"
	"strings"

	"github.com/tphakala/birdwatcher/internal/errors"
)

// Sentinel errors for store failures. Every error returned by a store
// wraps exactly one of them, test with errors.Is.
var (
	// ErrStorageUnavailable means the store could not be opened or initialized
	ErrStorageUnavailable = errors.NewStd("observation storage unavailable")
	// ErrWriteFailed means an insert or delete did not complete
	ErrWriteFailed = errors.NewStd("observation write failed")
	// ErrReadFailed means the table could not be read
	ErrReadFailed = errors.NewStd("observation read failed")
)

// dbError creates a properly categorized database error with context.
// The returned error matches both sentinel and the driver error.
func dbError(sentinel, err error, operation, priority string, context ...any) error {
	builder := errors.New(fmt.Errorf("%w: %w", sentinel, err)).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation)

	if priority != "" {
		builder = builder.Priority(priority)
	}

	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}

	return builder.Build()
}

// notInitializedError is returned when a method is called before Open
func notInitializedError(sentinel error, operation string) error {
	return errors.New(fmt.Errorf("%w: database connection is not initialized", sentinel)).
		Component("datastore").
		Category(errors.CategoryState).
		Context("operation", operation).
		Build()
}

// configError reports unusable store settings
func configError(message string, context ...any) error {
	builder := errors.New(fmt.Errorf("%w: %s", ErrStorageUnavailable, message)).
		Component("datastore").
		Category(errors.CategoryConfiguration).
		Priority(errors.PriorityHigh)

	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}

	return builder.Build()
}

// isDatabaseCorruption checks if an error indicates a damaged database file
func isDatabaseCorruption(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "malformed") ||
		strings.Contains(errStr, "corrupt") ||
		strings.Contains(errStr, "file is not a database")
}

// priorityFor escalates priority for errors that will not go away on retry
func priorityFor(err error) string {
	switch categorizeError(err) {
	case "corruption", "disk_full", "permission_denied":
		return errors.PriorityCritical
	case "database_locked", "deadlock", "timeout":
		return errors.PriorityMedium
	}
	if isDatabaseCorruption(err) {
		return errors.PriorityCritical
	}
	return errors.PriorityHigh
}
