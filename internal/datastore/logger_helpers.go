package datastore

import (
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"github.com/tphakala/birdwatcher/internal/errors"
)

// sqlUnknown is used when SQL operation or table cannot be determined.
const sqlUnknown = "unknown"

// SQL operation regex patterns
var (
	selectPattern = regexp.MustCompile(`(?i)^\s*SELECT\s+.*?\s+FROM\s+['"\x60]?(\w+)['"\x60]?`)
	insertPattern = regexp.MustCompile(`(?i)^\s*INSERT\s+INTO\s+['"\x60]?(\w+)['"\x60]?`)
	deletePattern = regexp.MustCompile(`(?i)^\s*DELETE\s+FROM\s+['"\x60]?(\w+)['"\x60]?`)
	createPattern = regexp.MustCompile(`(?i)^\s*CREATE\s+(?:UNIQUE\s+)?(?:TABLE|INDEX)\s+(?:IF\s+NOT\s+EXISTS\s+)?['"\x60]?(\w+)['"\x60]?`)
)

// parseSQLOperation extracts the operation type and table name from SQL query
func parseSQLOperation(sql string) (operation, table string) {
	sql = strings.TrimSpace(sql)

	if matches := selectPattern.FindStringSubmatch(sql); len(matches) > 1 {
		return "select", matches[1]
	}
	if matches := insertPattern.FindStringSubmatch(sql); len(matches) > 1 {
		return "insert", matches[1]
	}
	if matches := deletePattern.FindStringSubmatch(sql); len(matches) > 1 {
		return "delete", matches[1]
	}
	if matches := createPattern.FindStringSubmatch(sql); len(matches) > 1 {
		return "create", matches[1]
	}

	return sqlUnknown, sqlUnknown
}

// MySQL server error numbers we distinguish in metrics
const (
	mysqlErrDBAccessDenied  = 1044
	mysqlErrAccessDenied    = 1045
	mysqlErrNoSuchTable     = 1146
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
	mysqlErrDuplicateEntry  = 1062
)

// categorizeError categorizes database errors for metrics.
// Driver error codes are checked first, message matching is the fallback.
func categorizeError(err error) string {
	if err == nil {
		return "none"
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return "database_locked"
		case sqlite3.ErrConstraint:
			return "constraint_violation"
		case sqlite3.ErrFull:
			return "disk_full"
		case sqlite3.ErrCorrupt, sqlite3.ErrNotADB:
			return "corruption"
		case sqlite3.ErrPerm, sqlite3.ErrReadonly, sqlite3.ErrAuth:
			return "permission_denied"
		case sqlite3.ErrCantOpen:
			return "connection_error"
		}
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlErrDuplicateEntry:
			return "constraint_violation"
		case mysqlErrDeadlock:
			return "deadlock"
		case mysqlErrLockWaitTimeout:
			return "timeout"
		case mysqlErrAccessDenied, mysqlErrDBAccessDenied:
			return "permission_denied"
		case mysqlErrNoSuchTable:
			return "missing_table"
		}
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "unique constraint") || strings.Contains(errStr, "duplicate"):
		return "constraint_violation"
	case strings.Contains(errStr, "deadlock"):
		return "deadlock"
	case strings.Contains(errStr, "database is locked"):
		return "database_locked"
	case strings.Contains(errStr, "no such table"):
		return "missing_table"
	case strings.Contains(errStr, "connection") || strings.Contains(errStr, "database is closed"):
		return "connection_error"
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded"):
		return "timeout"
	case strings.Contains(errStr, "context canceled"):
		return "canceled"
	case strings.Contains(errStr, "permission") || strings.Contains(errStr, "denied"):
		return "permission_denied"
	case strings.Contains(errStr, "disk full") || strings.Contains(errStr, "no space"):
		return "disk_full"
	default:
		return "other"
	}
}
