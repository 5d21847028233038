// Package datastore persists observations in SQLite or MySQL through GORM.
package datastore

import (
	"context"
	"sync"
	"time"

	"github.com/tphakala/birdwatcher/internal/conf"
	"github.com/tphakala/birdwatcher/internal/errors"
	"github.com/tphakala/birdwatcher/internal/logger"
	"gorm.io/gorm"
)

// Interface defines the observation store. Each call is its own unit of
// work; mutations are serialized by the implementation.
type Interface interface {
	Open(ctx context.Context) error
	EnsureSchema(ctx context.Context) error
	Insert(ctx context.Context, obs *Observation) error
	SelectAll(ctx context.Context) ([]Observation, error)
	DeleteByID(ctx context.Context, id uint) error
	Close() error
	SetMetrics(m *Metrics)
}

// DataStore implements the queries shared by SQLiteStore and MySQLStore
type DataStore struct {
	DB *gorm.DB

	writeMu   sync.Mutex // at most one mutation in flight
	metricsMu sync.RWMutex
	metrics   *Metrics
}

// New creates a store for the backend enabled in settings. SQLite wins
// when both are enabled.
func New(settings *conf.Settings) (Interface, error) {
	switch {
	case settings == nil:
		return nil, configError("settings are nil")
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{Settings: settings}, nil
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{Settings: settings}, nil
	default:
		return nil, configError("no database backend enabled",
			"sqlite_enabled", false,
			"mysql_enabled", false)
	}
}

// SetMetrics sets the metrics instance; call before Open so GORM statements are counted too
func (ds *DataStore) SetMetrics(m *Metrics) {
	ds.metricsMu.Lock()
	defer ds.metricsMu.Unlock()
	ds.metrics = m
}

func (ds *DataStore) getMetrics() *Metrics {
	ds.metricsMu.RLock()
	defer ds.metricsMu.RUnlock()
	return ds.metrics
}

// EnsureSchema creates the observations table if it does not exist yet.
// It never alters or drops an existing table.
func (ds *DataStore) EnsureSchema(ctx context.Context) error {
	if ds.DB == nil {
		return notInitializedError(ErrStorageUnavailable, "ensure_schema")
	}

	ds.writeMu.Lock()
	defer ds.writeMu.Unlock()

	migrator := ds.DB.WithContext(ctx).Migrator()
	if migrator.HasTable(&Observation{}) {
		GetLogger().Debug("Observations table already present")
		return nil
	}

	if err := migrator.CreateTable(&Observation{}); err != nil {
		return dbError(ErrStorageUnavailable, err, "ensure_schema", errors.PriorityCritical,
			"table", Observation{}.TableName())
	}

	GetLogger().Info("Created observations table")
	return nil
}

// Insert appends one observation; the engine assigned ID is written back into obs
func (ds *DataStore) Insert(ctx context.Context, obs *Observation) error {
	if ds.DB == nil {
		return notInitializedError(ErrWriteFailed, "insert")
	}
	if obs == nil {
		return errors.New(errors.NewStd("observation is nil")).
			Component("datastore").
			Category(errors.CategoryValidation).
			Context("operation", "insert").
			Build()
	}

	ds.writeMu.Lock()
	defer ds.writeMu.Unlock()

	// A caller supplied ID would bypass AUTOINCREMENT
	obs.ID = 0

	start := time.Now()
	if err := ds.DB.WithContext(ctx).Create(obs).Error; err != nil {
		return dbError(ErrWriteFailed, err, "insert", priorityFor(err),
			"species", obs.Species,
			"duration_ms", time.Since(start).Milliseconds())
	}

	GetLogger().Debug("Observation saved",
		logger.Uint64("id", uint64(obs.ID)),
		logger.String("species", obs.Species),
		logger.Bool("has_location", obs.HasLocation()),
		logger.Duration("duration", time.Since(start)))

	return nil
}

// SelectAll returns every row. Order is unspecified, callers sort.
func (ds *DataStore) SelectAll(ctx context.Context) ([]Observation, error) {
	if ds.DB == nil {
		return nil, notInitializedError(ErrReadFailed, "select_all")
	}

	var observations []Observation
	if err := ds.DB.WithContext(ctx).Find(&observations).Error; err != nil {
		return nil, dbError(ErrReadFailed, err, "select_all", priorityFor(err))
	}

	if m := ds.getMetrics(); m != nil {
		m.UpdateTableRowCount(Observation{}.TableName(), len(observations))
	}

	return observations, nil
}

// DeleteByID removes the row with the given ID. An absent ID is not an error.
func (ds *DataStore) DeleteByID(ctx context.Context, id uint) error {
	if ds.DB == nil {
		return notInitializedError(ErrWriteFailed, "delete")
	}

	ds.writeMu.Lock()
	defer ds.writeMu.Unlock()

	result := ds.DB.WithContext(ctx).Where("id = ?", id).Delete(&Observation{})
	if result.Error != nil {
		return dbError(ErrWriteFailed, result.Error, "delete", priorityFor(result.Error),
			"id", id)
	}

	if result.RowsAffected == 0 {
		GetLogger().Debug("Delete matched no observation", logger.Uint64("id", uint64(id)))
		return nil
	}

	GetLogger().Debug("Observation deleted", logger.Uint64("id", uint64(id)))
	return nil
}

// pingDB forces the connection open now instead of on the first query
func pingDB(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// closeDB closes the connection pool behind GORM
func (ds *DataStore) closeDB(backend string) error {
	if ds.DB == nil {
		return nil
	}

	sqlDB, err := ds.DB.DB()
	if err != nil {
		return dbError(ErrStorageUnavailable, err, "close", errors.PriorityMedium, "backend", backend)
	}

	if err := sqlDB.Close(); err != nil {
		return dbError(ErrStorageUnavailable, err, "close", errors.PriorityMedium, "backend", backend)
	}

	ds.DB = nil
	GetLogger().Debug("Database connection closed", logger.String("backend", backend))
	return nil
}
