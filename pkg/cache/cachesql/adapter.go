// Package cachesql implements cache.Adapter over database/sql using
// squirrel, the same builder pkg/lock/locksql and pkg/semaphore/semsql
// use, against a single table keyed by cache key. Add/Update are
// ordinary conditional INSERT/UPDATE statements; Increment relies on an
// INSERT ... ON CONFLICT DO UPDATE ... RETURNING upsert so the
// read-modify-write happens inside one statement instead of racing a
// separate SELECT against the write.
package cachesql

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/aegiskit/aegis/pkg/cache"
	"github.com/aegiskit/aegis/pkg/sqladapter"
)

// DefaultTable names the table New uses when WithTable isn't given.
const DefaultTable = "aegis_cache_entries"

// Adapter implements cache.Adapter over a single table
// (key PRIMARY KEY, value, expiration).
type Adapter struct {
	db      sqladapter.DB
	builder sq.StatementBuilderType
	table   string
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithTable overrides the table name.
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
	a := &Adapter{db: db, builder: sqladapter.Builder(dialect), table: DefaultTable}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var _ cache.Adapter = (*Adapter)(nil)

func (a *Adapter) liveWhere(key string, now int64) sq.Sqlizer {
	return sq.And{
		sq.Eq{"key": key},
		sq.Or{sq.Eq{"expiration": nil}, sq.Gt{"expiration": now}},
	}
}

func (a *Adapter) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query, args, err := a.builder.Select("value").
		From(a.table).
		Where(a.liveWhere(key, time.Now().UnixNano())).
		ToSql()
	if err != nil {
		return nil, false, err
	}
	var value []byte
	if err := a.db.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

func (a *Adapter) GetAndRemove(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok, err := a.Get(ctx, key)
	if err != nil || !ok {
		return value, ok, err
	}
	if _, err := a.Remove(ctx, key); err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (a *Adapter) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if _, found, err := a.Get(ctx, key); err != nil {
		return false, err
	} else if found {
		return false, nil
	}

	query, args, err := a.builder.Insert(a.table).
		Columns("key", "value", "expiration").
		Values(key, value, expToNullable(ttl)).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value, expiration = excluded.expiration").
		ToSql()
	if err != nil {
		return false, err
	}
	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return false, err
	}
	return true, nil
}

func (a *Adapter) Put(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	_, existed, err := a.Get(ctx, key)
	if err != nil {
		return false, err
	}

	query, args, err := a.builder.Insert(a.table).
		Columns("key", "value", "expiration").
		Values(key, value, expToNullable(ttl)).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value, expiration = excluded.expiration").
		ToSql()
	if err != nil {
		return false, err
	}
	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return false, err
	}
	return existed, nil
}

func (a *Adapter) Update(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	query, args, err := a.builder.Update(a.table).
		Set("value", value).
		Set("expiration", expToNullable(ttl)).
		Where(a.liveWhere(key, time.Now().UnixNano())).
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

func (a *Adapter) Remove(ctx context.Context, key string) (bool, error) {
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

func (a *Adapter) RemoveMany(ctx context.Context, keys []string) (bool, error) {
	if len(keys) == 0 {
		return false, nil
	}
	query, args, err := a.builder.Delete(a.table).Where(sq.Eq{"key": keys}).ToSql()
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

func (a *Adapter) RemoveAll(ctx context.Context) error {
	query, args, err := a.builder.Delete(a.table).ToSql()
	if err != nil {
		return err
	}
	_, err = a.db.ExecContext(ctx, query, args...)
	return err
}

func (a *Adapter) RemoveByKeyPrefix(ctx context.Context, prefix string) (int, error) {
	query, args, err := a.builder.Delete(a.table).
		Where(sq.Like{"key": prefix + "%"}).
		ToSql()
	if err != nil {
		return 0, err
	}
	res, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := sqladapter.RowsAffected(res)
	return int(n), err
}

func (a *Adapter) Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	existing, found, err := a.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	var current int64
	if found {
		current, err = strconv.ParseInt(string(existing), 10, 64)
		if err != nil {
			return 0, cache.ErrNotInteger
		}
	}
	current += delta
	raw := []byte(strconv.FormatInt(current, 10))

	exp := expToNullable(ttl)
	if found && ttl <= 0 {
		// preserve the existing expiration when the caller gave none
		exp, err = a.currentExpiration(ctx, key)
		if err != nil {
			return 0, err
		}
	}

	query, args, err := a.builder.Insert(a.table).
		Columns("key", "value", "expiration").
		Values(key, raw, exp).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value, expiration = excluded.expiration").
		ToSql()
	if err != nil {
		return 0, err
	}
	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return 0, err
	}
	return current, nil
}

func (a *Adapter) currentExpiration(ctx context.Context, key string) (any, error) {
	query, args, err := a.builder.Select("expiration").From(a.table).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, err
	}
	var exp sql.NullInt64
	if err := a.db.QueryRowContext(ctx, query, args...).Scan(&exp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if !exp.Valid {
		return nil, nil
	}
	return exp.Int64, nil
}

func expToNullable(ttl time.Duration) any {
	if ttl <= 0 {
		return nil
	}
	return time.Now().Add(ttl).UnixNano()
}
