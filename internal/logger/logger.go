// Package logger provides a structured, module-aware logging system built on Go's standard log/slog.
//
// Components obtain a module-scoped logger from the central logger and log
// with typed fields:
//
//	centralLogger, err := logger.NewCentralLogger(&settings.Logging)
//	if err != nil {
//	    return err
//	}
//	defer centralLogger.Close()
//
//	storeLogger := centralLogger.Module("datastore")
//	storeLogger.Info("Observation saved",
//	    logger.Uint64("id", uint64(obs.ID)),
//	    logger.String("species", obs.Species))
//
// Console output is human-readable text without timestamps; file output is
// JSON with RFC3339 timestamps. Module loggers may be routed to their own
// files through the "modules" section of the logging configuration.
//
// For tests, use NewSlogLogger with a buffer or io.Discard.
package logger

import (
	"context"
	"log/slog"
	"time"
	"unique"
)

// LogLevel represents log severity levels
type LogLevel string

const (
	LogLevelTrace LogLevel = "trace"
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Well-known attribute keys
const (
	moduleKey  = "module"
	traceIDKey = "trace_id"
)

// LogFilePermissions is the mode used when creating log files
const LogFilePermissions = 0o600

// Field represents a structured log field.
// Keys are interned with unique.Make so repeated keys share one allocation.
type Field struct {
	Key   string
	Value any
}

func internKey(key string) string {
	return unique.Make(key).Value()
}

var errorKey = internKey("error")

// Logger is the centralized logging interface for dependency injection
type Logger interface {
	// Module returns a logger scoped to a specific module
	Module(name string) Logger

	// Leveled logging methods
	Trace(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// Context-aware logging
	With(fields ...Field) Logger
	WithContext(ctx context.Context) Logger

	// Log with explicit level
	Log(level LogLevel, msg string, fields ...Field)

	// Flush ensures all buffered logs are written
	Flush() error
}

// String creates a string field for structured logging.
func String(key, value string) Field {
	return Field{Key: internKey(key), Value: value}
}

// Int creates an integer field for structured logging.
func Int(key string, value int) Field {
	return Field{Key: internKey(key), Value: value}
}

// Int64 creates a 64-bit integer field for structured logging.
func Int64(key string, value int64) Field {
	return Field{Key: internKey(key), Value: value}
}

// Uint64 creates an unsigned 64-bit integer field, used for row identifiers.
func Uint64(key string, value uint64) Field {
	return Field{Key: internKey(key), Value: value}
}

// Float64 creates a 64-bit float field for structured logging.
//
// Floats are rounded to three decimals on output, which is enough for
// coordinates at roughly 100 m resolution in log lines.
func Float64(key string, value float64) Field {
	return Field{Key: internKey(key), Value: value}
}

// Bool creates a boolean field for structured logging.
func Bool(key string, value bool) Field {
	return Field{Key: internKey(key), Value: value}
}

// Error creates an error field for structured logging.
//
// The field key is always "error". If err is nil, the value will be nil.
//
//	if err := store.Insert(ctx, &obs); err != nil {
//	    log.Error("Failed to save observation",
//	        logger.Error(err),
//	        logger.String("species", obs.Species))
//	    return err
//	}
func Error(err error) Field {
	if err == nil {
		return Field{Key: errorKey, Value: nil}
	}
	return Field{Key: errorKey, Value: err.Error()}
}

// Duration creates a duration field, rendered as a human-readable string.
func Duration(key string, value time.Duration) Field {
	return Field{Key: internKey(key), Value: value}
}

// parseSlogLevel maps a LogLevel to its slog level
func parseSlogLevel(level LogLevel) slog.Level {
	return parseLogLevel(string(level))
}
