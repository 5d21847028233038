package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tphakala/birdwatcher/internal/datastore"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const observationsTable = "observations"

// Migrator copies observations from a source to a target database.
type Migrator struct {
	cfg      Config
	sourceDB *gorm.DB
	targetDB *gorm.DB
	out      io.Writer
}

// MigrationStats tracks copy statistics.
type MigrationStats struct {
	StartTime time.Time
	EndTime   time.Time
	Migrated  int64
	Skipped   int64
	Errors    int64
	Batches   int
}

// Print outputs the copy statistics.
func (s *MigrationStats) Print(w io.Writer) {
	fmt.Fprintln(w, "\n=== Copy Summary ===")
	fmt.Fprintf(w, "Duration: %s\n", s.EndTime.Sub(s.StartTime).Round(time.Millisecond))
	fmt.Fprintf(w, "%-12s %10s %10s %10s %8s\n", "Table", "Migrated", "Skipped", "Errors", "Batches")
	fmt.Fprintf(w, "%-12s %10d %10d %10d %8d\n", observationsTable, s.Migrated, s.Skipped, s.Errors, s.Batches)
}

// NewMigrator opens the source SQLite file and the target MySQL database.
func NewMigrator(ctx context.Context, cfg *Config) (*Migrator, error) {
	logLevel := logger.Silent
	if cfg.Verbose {
		logLevel = logger.Info
	}
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	dsn, err := cfg.GetMySQLDSN()
	if err != nil {
		return nil, err
	}

	sourceDB, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	targetDB, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		closeGorm(sourceDB)
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	m := newMigrator(cfg, sourceDB, targetDB, os.Stdout)
	if err := m.ping(ctx); err != nil {
		m.Close()
		return nil, err
	}

	fmt.Fprintln(m.out, "Database connections established successfully")
	return m, nil
}

// newMigrator wraps already opened databases
func newMigrator(cfg *Config, sourceDB, targetDB *gorm.DB, out io.Writer) *Migrator {
	return &Migrator{cfg: *cfg, sourceDB: sourceDB, targetDB: targetDB, out: out}
}

func (m *Migrator) ping(ctx context.Context) error {
	for name, db := range map[string]*gorm.DB{"source": m.sourceDB, "target": m.targetDB} {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get %s connection: %w", name, err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("failed to ping %s database: %w", name, err)
		}
	}
	return nil
}

// Close closes both database connections.
func (m *Migrator) Close() {
	closeGorm(m.sourceDB)
	closeGorm(m.targetDB)
}

func closeGorm(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Run executes the copy.
func (m *Migrator) Run(ctx context.Context) (*MigrationStats, error) {
	stats := &MigrationStats{StartTime: time.Now()}

	if !m.sourceDB.Migrator().HasTable(&datastore.Observation{}) {
		return nil, fmt.Errorf("source database has no %s table", observationsTable)
	}

	target := m.targetDB.WithContext(ctx)
	if !target.Migrator().HasTable(&datastore.Observation{}) {
		if err := target.Migrator().CreateTable(&datastore.Observation{}); err != nil {
			return nil, fmt.Errorf("failed to create target table: %w", err)
		}
		fmt.Fprintln(m.out, "Created observations table in target database")
	}

	if m.cfg.Clean {
		if err := target.Where("1 = 1").Delete(&datastore.Observation{}).Error; err != nil {
			return nil, fmt.Errorf("failed to clean target table: %w", err)
		}
		fmt.Fprintln(m.out, "Target observations deleted")
	}

	var sourceCount int64
	if err := m.sourceDB.WithContext(ctx).Model(&datastore.Observation{}).Count(&sourceCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count source records: %w", err)
	}
	if sourceCount == 0 {
		fmt.Fprintln(m.out, "No observations to copy")
		stats.EndTime = time.Now()
		return stats, nil
	}

	var processed int64
	err := m.sourceDB.WithContext(ctx).
		FindInBatches(new([]datastore.Observation), m.cfg.BatchSize, func(tx *gorm.DB, batch int) error {
			stats.Batches = batch
			records := tx.Statement.Dest.(*[]datastore.Observation)

			// Existing ids are skipped so the copy can be repeated
			result := target.Clauses(clause.OnConflict{DoNothing: true}).Create(records)
			if result.Error != nil {
				stats.Errors += int64(len(*records))
				fmt.Fprintf(m.out, "  Batch %d error: %v\n", batch, result.Error)
				return nil //nolint:nilerr // a failed batch is counted, the copy continues
			}

			stats.Migrated += result.RowsAffected
			stats.Skipped += int64(len(*records)) - result.RowsAffected
			processed += int64(len(*records))

			if m.cfg.Verbose {
				fmt.Fprintf(m.out, "  %d/%d (%.1f%%)\n", processed, sourceCount,
					float64(processed)/float64(sourceCount)*100)
			}
			return nil
		}).Error
	if err != nil {
		return stats, err
	}

	stats.EndTime = time.Now()
	return stats, nil
}
