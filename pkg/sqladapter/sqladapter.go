// Package sqladapter is the shared SQL plumbing the lock, semaphore,
// cache, and breaker database-backed adapters build on: a
// github.com/Masterminds/squirrel statement builder configured for the
// caller's placeholder dialect, a minimal DB interface satisfied by
// *sql.DB, *sql.Tx, and the libSQL/modernc.org/sqlite drivers alike, and
// a conflict sentinel every adapter's Insert maps its driver-specific
// unique-violation error onto.
package sqladapter

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// ErrConflict is returned by Insert-style helpers on a unique-key
// violation, regardless of the underlying driver's own error type.
// Package-specific adapters (pkg/lock/locksql, pkg/semaphore/semsql, ...)
// wrap it into their own domain sentinel (lock.ErrKeyAlreadyExists and
// so on) so callers never import this package directly.
var ErrConflict = errors.New("sqladapter: unique constraint violation")

// DB is the subset of *sql.DB / *sql.Tx every adapter needs. Both
// satisfy it, so adapters can be used inside a transaction when a
// caller wants to compose lock/cache operations with other statements.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Dialect selects the placeholder style a driver expects. libSQL and
// modernc.org/sqlite both accept "?" positional placeholders; database/
// sql drivers for Postgres-family backends expect "$1"-style ordinals.
type Dialect int

const (
	// Question is the "?" placeholder style (SQLite, libSQL, MySQL).
	Question Dialect = iota
	// Dollar is the "$1" placeholder style (Postgres).
	Dollar
)

// Builder returns a squirrel statement builder configured for dialect.
func Builder(d Dialect) sq.StatementBuilderType {
	switch d {
	case Dollar:
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	default:
		return sq.StatementBuilder.PlaceholderFormat(sq.Question)
	}
}

// IsUniqueViolation makes a best-effort, driver-agnostic guess at
// whether err represents a unique-key conflict, based on substrings
// common across SQLite/libSQL, MySQL, and Postgres error messages. It is
// intentionally conservative: adapters treat a miss here as a genuine
// failure rather than silently reinterpreting it as a conflict.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "unique_violation"),
		strings.Contains(msg, "duplicate entry"),
		strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "sqlite_constraint"):
		return true
	default:
		return false
	}
}

// WrapInsertErr normalizes err into ErrConflict when it looks like a
// unique violation, leaving any other error untouched.
func WrapInsertErr(err error) error {
	if IsUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// RowsAffected is a small helper that treats a driver's "rows affected
// unsupported" error as zero rather than failing the caller, since a
// handful of the pack's drivers (notably some libSQL embedded-replica
// modes) don't implement it.
func RowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}
