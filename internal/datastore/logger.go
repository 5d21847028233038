package datastore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tphakala/birdwatcher/internal/errors"
	"github.com/tphakala/birdwatcher/internal/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// defaultSlowThreshold marks queries worth a warning. A field log table
// stays small, anything slower points at a locked or remote database.
const defaultSlowThreshold = 500 * time.Millisecond

var (
	serviceLogger logger.Logger
	loggerMu      sync.Mutex
)

// GetLogger returns the datastore module logger from the central logger.
// It is resolved on first use so the application can install its
// configured logger before the store is opened.
func GetLogger() logger.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if serviceLogger == nil {
		serviceLogger = logger.Global().Module("datastore")
	}
	return serviceLogger
}

// SetLogger replaces the datastore logger, used by the application builder and tests
func SetLogger(l logger.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	serviceLogger = l
}

// GormLogger implements GORM's logger interface with structured logging and metrics
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormlogger.LogLevel
	log           logger.Logger
	metrics       *Metrics
}

// NewGormLogger creates a new GORM logger instance
func NewGormLogger(log logger.Logger, slowThreshold time.Duration, logLevel gormlogger.LogLevel, metrics *Metrics) *GormLogger {
	return &GormLogger{
		SlowThreshold: slowThreshold,
		LogLevel:      logLevel,
		log:           log.Module("gorm"),
		metrics:       metrics,
	}
}

// createGormLogger builds the adapter used by both backends; debug mode traces every statement
func createGormLogger(debug bool, metrics *Metrics) *GormLogger {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return NewGormLogger(GetLogger(), defaultSlowThreshold, level, metrics)
}

// LogMode implements logger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

// Info implements logger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Info {
		l.log.WithContext(ctx).Info(fmt.Sprintf(msg, data...))
	}
}

// Warn implements logger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Warn {
		l.log.WithContext(ctx).Warn(fmt.Sprintf(msg, data...))
	}
}

// Error implements logger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Error {
		l.log.WithContext(ctx).Error("GORM error", logger.String("msg", fmt.Sprintf(msg, data...)))
		if l.metrics != nil {
			l.metrics.RecordDbOperationError("gorm_internal", sqlUnknown, "gorm_error")
		}
	}
}

// Trace implements logger.Interface. Every statement feeds the metrics,
// logging depends on the level and outcome.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	operation, table := parseSQLOperation(sql)

	if l.metrics != nil {
		l.metrics.RecordDbOperationDuration(operation, table, elapsed.Seconds())
		if rows >= 0 {
			l.metrics.RecordQueryResultSize(operation, table, int(rows))
		}
	}

	log := l.log.WithContext(ctx)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		log.Error("Database query failed",
			logger.Error(err),
			logger.String("sql", sql),
			logger.Duration("duration", elapsed),
			logger.Int64("rows_affected", rows))

		if l.metrics != nil {
			l.metrics.RecordDbOperation(operation, table, "error")
			l.metrics.RecordDbOperationError(operation, table, categorizeError(err))
		}

	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold:
		log.Warn("Slow query detected",
			logger.String("sql", sql),
			logger.Duration("duration", elapsed),
			logger.Int64("rows_affected", rows),
			logger.Duration("threshold", l.SlowThreshold))

		if l.metrics != nil {
			l.metrics.RecordDbOperation(operation, table, "success")
		}

	default:
		if l.LogLevel >= gormlogger.Info {
			log.Trace("SQL query",
				logger.String("sql", sql),
				logger.Duration("duration", elapsed),
				logger.Int64("rows_affected", rows))
		}

		if l.metrics != nil {
			l.metrics.RecordDbOperation(operation, table, "success")
		}
	}
}

var _ gormlogger.Interface = (*GormLogger)(nil)
