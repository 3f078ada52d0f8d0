// Package breakersql implements breaker.DatabaseAdapter over
// database/sql using squirrel, following a single-row-per-key layout:
// { key (unique), stateJSON }.
//
// Unlike lock/semaphore, a circuit breaker's atomic update is an
// arbitrary Go closure over a Policy (consecutive streaks, sliding
// windows), not a single conditional write expressible in one SQL
// statement. AtomicUpdate instead runs an optimistic
// compare-and-set loop keyed on a version column: read the current
// row, apply the transform in Go, and write it back conditioned on the
// version being unchanged, retrying on conflict the same way a
// compare-and-swap register would.
package breakersql

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/aegiskit/aegis/pkg/breaker"
	"github.com/aegiskit/aegis/pkg/sqladapter"
)

// DefaultTable names the table used when New is called without
// WithTable.
const DefaultTable = "aegis_circuit_breakers"

// MaxAttempts bounds the compare-and-set retry loop so a pathologically
// contended key fails loudly instead of spinning forever.
const MaxAttempts = 50

// Adapter implements breaker.DatabaseAdapter over a single table of
// (key, state_json, version) rows.
type Adapter struct {
	db    sqladapter.DB
	build sq.StatementBuilderType
	table string
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithTable overrides the default table name.
func WithTable(table string) Option {
	return func(a *Adapter) {
		if table != "" {
			a.table = table
		}
	}
}

// New builds an Adapter. dialect selects the placeholder style the
// underlying driver expects.
func New(db sqladapter.DB, dialect sqladapter.Dialect, opts ...Option) *Adapter {
	a := &Adapter{db: db, build: sqladapter.Builder(dialect), table: DefaultTable}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var _ breaker.DatabaseAdapter = (*Adapter)(nil)

func (a *Adapter) Find(ctx context.Context, key string) ([]byte, error) {
	raw, _, err := a.find(ctx, key)
	return raw, err
}

func (a *Adapter) find(ctx context.Context, key string) ([]byte, int64, error) {
	query, args, err := a.build.Select("state_json", "version").
		From(a.table).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, 0, err
	}
	var raw []byte
	var version int64
	row := a.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&raw, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	return raw, version, nil
}

func (a *Adapter) AtomicUpdate(ctx context.Context, key string, transform breaker.RawTransform) ([]byte, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		raw, version, err := a.find(ctx, key)
		if err != nil {
			return nil, err
		}

		next, err := transform(raw)
		if err != nil {
			return nil, err
		}

		if raw == nil {
			ok, err := a.insertNew(ctx, key, next)
			if err != nil {
				return nil, err
			}
			if ok {
				return next, nil
			}
			continue // someone else inserted it first; retry as an update
		}

		ok, err := a.compareAndSet(ctx, key, version, next)
		if err != nil {
			return nil, err
		}
		if ok {
			return next, nil
		}
	}
	return nil, breaker.ErrConcurrentUpdate
}

func (a *Adapter) insertNew(ctx context.Context, key string, stateJSON []byte) (bool, error) {
	query, args, err := a.build.Insert(a.table).
		Columns("key", "state_json", "version").
		Values(key, stateJSON, 1).
		Suffix("ON CONFLICT (key) DO NOTHING").
		ToSql()
	if err != nil {
		return false, err
	}
	res, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		if sqladapter.IsUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	n, err := sqladapter.RowsAffected(res)
	return n > 0, err
}

func (a *Adapter) compareAndSet(ctx context.Context, key string, version int64, stateJSON []byte) (bool, error) {
	query, args, err := a.build.Update(a.table).
		Set("state_json", stateJSON).
		Set("version", version+1).
		Where(sq.Eq{"key": key, "version": version}).
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
