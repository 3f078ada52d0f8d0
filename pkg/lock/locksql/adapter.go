// Package locksql implements lock.DatabaseAdapter over database/sql
// using squirrel to build dialect-portable statements. It targets the
// libSQL driver (github.com/tursodatabase/libsql-client-go) and
// modernc.org/sqlite equally, since both speak the "?" placeholder
// dialect; pass sqladapter.Dollar for Postgres-family drivers.
package locksql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/aegiskit/aegis/pkg/lock"
	"github.com/aegiskit/aegis/pkg/sqladapter"
)

// DefaultTable is the table name used when New is called without
// WithTable.
const DefaultTable = "aegis_locks"

// Adapter implements lock.DatabaseAdapter over a SQL table with columns
// (key TEXT PRIMARY KEY, owner TEXT NOT NULL, expiration INTEGER NULL)
// where expiration is a Unix-nanosecond timestamp, NULL meaning "never
// expires".
type Adapter struct {
	db      sqladapter.DB
	builder sq.StatementBuilderType
	table   string
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithTable overrides the table name (default DefaultTable).
func WithTable(name string) Option {
	return func(a *Adapter) {
		if name != "" {
			a.table = name
		}
	}
}

// New builds an Adapter. dialect selects the placeholder style the
// underlying driver expects.
func New(db sqladapter.DB, dialect sqladapter.Dialect, opts ...Option) *Adapter {
	a := &Adapter{db: db, builder: sqladapter.Builder(dialect), table: DefaultTable}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var _ lock.DatabaseAdapter = (*Adapter)(nil)

func (a *Adapter) Insert(ctx context.Context, key, owner string, exp time.Time) error {
	query, args, err := a.builder.Insert(a.table).
		Columns("key", "owner", "expiration").
		Values(key, owner, expToNullable(exp)).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		if sqladapter.IsUniqueViolation(err) {
			return lock.ErrKeyAlreadyExists
		}
		return err
	}
	return nil
}

func (a *Adapter) Update(ctx context.Context, key, owner string, exp time.Time) (bool, error) {
	query, args, err := a.builder.Update(a.table).
		Set("owner", owner).
		Set("expiration", expToNullable(exp)).
		Where(sq.Eq{"key": key}).
		Where(sq.NotEq{"expiration": nil}).
		Where(sq.LtOrEq{"expiration": time.Now().UnixNano()}).
		ToSql()
	if err != nil {
		return false, err
	}
	res, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := sqladapter.RowsAffected(res)
	return n > 0, err
}

func (a *Adapter) Remove(ctx context.Context, key, owner string) (bool, error) {
	query, args, err := a.builder.Delete(a.table).
		Where(sq.Eq{"key": key, "owner": owner}).
		ToSql()
	if err != nil {
		return false, err
	}
	res, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := sqladapter.RowsAffected(res)
	return n > 0, err
}

func (a *Adapter) RemoveUnowned(ctx context.Context, key string) (bool, error) {
	query, args, err := a.builder.Delete(a.table).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return false, err
	}
	res, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := sqladapter.RowsAffected(res)
	return n > 0, err
}

func (a *Adapter) Refresh(ctx context.Context, key, owner string, exp time.Time) (lock.RefreshResult, error) {
	query, args, err := a.builder.Update(a.table).
		Set("expiration", expToNullable(exp)).
		Where(sq.Eq{"key": key, "owner": owner}).
		Where(sq.NotEq{"expiration": nil}).
		ToSql()
	if err != nil {
		return lock.RefreshUnowned, err
	}
	res, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return lock.RefreshUnowned, err
	}
	n, err := sqladapter.RowsAffected(res)
	if err != nil {
		return lock.RefreshUnowned, err
	}
	if n > 0 {
		return lock.Refreshed, nil
	}

	st, err := a.Find(ctx, key)
	if err != nil {
		return lock.RefreshUnowned, err
	}
	if st == nil || st.Owner != owner {
		return lock.RefreshUnowned, nil
	}
	return lock.RefreshUnexpirable, nil
}

func (a *Adapter) Find(ctx context.Context, key string) (*lock.State, error) {
	query, args, err := a.builder.Select("owner", "expiration").
		From(a.table).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var owner string
	var expNanos sql.NullInt64
	row := a.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&owner, &expNanos); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &lock.State{Owner: owner, Expiration: nullableToExp(expNanos)}, nil
}

func expToNullable(exp time.Time) any {
	if exp.IsZero() {
		return nil
	}
	return exp.UnixNano()
}

func nullableToExp(n sql.NullInt64) time.Time {
	if !n.Valid {
		return time.Time{}
	}
	return time.Unix(0, n.Int64)
}
