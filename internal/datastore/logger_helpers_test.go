package datastore

import (
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestParseSQLOperation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sql       string
		operation string
		table     string
	}{
		{"SELECT * FROM `observations`", "select", "observations"},
		{`INSERT INTO "observations" ("species") VALUES ("Robin")`, "insert", "observations"},
		{"DELETE FROM `observations` WHERE id = 3", "delete", "observations"},
		{"CREATE TABLE `observations` (`id` integer PRIMARY KEY AUTOINCREMENT)", "create", "observations"},
		{"CREATE INDEX `idx_observations_observed_at` ON `observations`(`observed_at`)", "create", "idx_observations_observed_at"},
		{"PRAGMA journal_mode", sqlUnknown, sqlUnknown},
	}

	for _, tt := range tests {
		operation, table := parseSQLOperation(tt.sql)
		assert.Equal(t, tt.operation, operation, tt.sql)
		assert.Equal(t, tt.table, table, tt.sql)
	}
}

func TestCategorizeError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "none"},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, "database_locked"},
		{"sqlite full", fmt.Errorf("insert: %w", sqlite3.Error{Code: sqlite3.ErrFull}), "disk_full"},
		{"sqlite not a db", sqlite3.Error{Code: sqlite3.ErrNotADB}, "corruption"},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, "constraint_violation"},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213}, "deadlock"},
		{"mysql access", fmt.Errorf("open: %w", &mysql.MySQLError{Number: 1045}), "permission_denied"},
		{"message no such table", fmt.Errorf("no such table: observations"), "missing_table"},
		{"message other", fmt.Errorf("something odd"), "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, categorizeError(tt.err))
		})
	}
}
