package datastore

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/tphakala/birdwatcher/internal/conf"
	"github.com/tphakala/birdwatcher/internal/errors"
	"github.com/tphakala/birdwatcher/internal/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLiteStore implements Interface for an SQLite file
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

func validateSQLiteConfig(settings *conf.Settings) error {
	if settings.Output.SQLite.Path == "" {
		return configError("sqlite path is empty")
	}
	return nil
}

// Open opens (or creates) the SQLite database file
func (store *SQLiteStore) Open(ctx context.Context) error {
	if err := validateSQLiteConfig(store.Settings); err != nil {
		return err
	}

	dir, fileName := filepath.Split(store.Settings.Output.SQLite.Path)
	basePath := conf.GetBasePath(dir)
	absoluteFilePath := filepath.Join(basePath, fileName)

	// WAL lets readers proceed during the single writer; busy_timeout
	// absorbs short locks from a second process on the same file
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", absoluteFilePath)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: createGormLogger(store.Settings.Debug, store.getMetrics()),
	})
	if err != nil {
		return dbError(ErrStorageUnavailable, err, "open", errors.PriorityCritical,
			"backend", "sqlite",
			"path", absoluteFilePath)
	}

	if err := pingDB(ctx, db); err != nil {
		return dbError(ErrStorageUnavailable, err, "open", errors.PriorityCritical,
			"backend", "sqlite",
			"path", absoluteFilePath)
	}

	store.DB = db
	GetLogger().Info("SQLite database opened", logger.String("path", absoluteFilePath))
	return nil
}

// Close closes the SQLite database
func (store *SQLiteStore) Close() error {
	return store.closeDB("sqlite")
}
