// Package semsql implements semaphore.DatabaseAdapter over database/sql
// using squirrel to build a single conditional-insert statement:
// an INSERT ... SELECT whose WHERE clause
// re-counts live slots under the key and only proceeds when the count
// is still below limit, linearized by the database's own row locking.
//
// Storage follows a two-table layout: a keys table
// (key PRIMARY KEY, limit_value) and a slots table (key, slot_id,
// expiration) with slot primary key (key, slot_id) and a foreign key
// back to the keys table on DELETE CASCADE, so ForceReleaseAll only
// needs to remove the keys row.
package semsql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/aegiskit/aegis/pkg/semaphore"
	"github.com/aegiskit/aegis/pkg/sqladapter"
)

// DefaultKeysTable and DefaultSlotsTable name the two tables used when
// New is called without WithTables.
const (
	DefaultKeysTable  = "aegis_semaphores"
	DefaultSlotsTable = "aegis_semaphore_slots"
)

// Adapter implements semaphore.DatabaseAdapter over the two-table
// layout described in the package doc.
type Adapter struct {
	db         sqladapter.DB
	builder    sq.StatementBuilderType
	keysTable  string
	slotsTable string
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithTables overrides the keys/slots table names.
func WithTables(keysTable, slotsTable string) Option {
	return func(a *Adapter) {
		if keysTable != "" {
			a.keysTable = keysTable
		}
		if slotsTable != "" {
			a.slotsTable = slotsTable
		}
	}
}

// New builds an Adapter. dialect selects the placeholder style the
// underlying driver expects.
func New(db sqladapter.DB, dialect sqladapter.Dialect, opts ...Option) *Adapter {
	a := &Adapter{
		db:         db,
		builder:    sqladapter.Builder(dialect),
		keysTable:  DefaultKeysTable,
		slotsTable: DefaultSlotsTable,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var _ semaphore.DatabaseAdapter = (*Adapter)(nil)

func (a *Adapter) InsertSlot(ctx context.Context, key, slotID string, limit int, exp time.Time) (bool, error) {
	if err := a.upsertKeyLimit(ctx, key, limit); err != nil {
		return false, err
	}

	now := time.Now().UnixNano()
	expVal := expToNullable(exp)

	countCond := "(SELECT COUNT(*) FROM " + a.slotsTable +
		" WHERE key = ? AND slot_id <> ? AND (expiration IS NULL OR expiration > ?)) < ?"

	sel := a.builder.Select().
		Column(sq.Expr("?", key)).
		Column(sq.Expr("?", slotID)).
		Column(sq.Expr("?", expVal)).
		Where(sq.Expr(countCond, key, slotID, now, limit))

	query, args, err := a.builder.Insert(a.slotsTable).
		Columns("key", "slot_id", "expiration").
		Select(sel).
		ToSql()
	if err != nil {
		return false, err
	}

	res, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		if sqladapter.IsUniqueViolation(err) {
			return false, semaphore.ErrKeyAlreadyExists
		}
		return false, err
	}
	n, err := sqladapter.RowsAffected(res)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// upsertKeyLimit records key's current limit, independent of slot
// occupancy: losing a race here only affects what getState reports as
// Limit, never the capacity check itself, which always re-counts the
// slots table directly.
func (a *Adapter) upsertKeyLimit(ctx context.Context, key string, limit int) error {
	query, args, err := a.builder.Insert(a.keysTable).
		Columns("key", "limit_value").
		Values(key, limit).
		Suffix("ON CONFLICT (key) DO UPDATE SET limit_value = excluded.limit_value").
		ToSql()
	if err != nil {
		return err
	}
	_, err = a.db.ExecContext(ctx, query, args...)
	return err
}

func (a *Adapter) UpdateSlot(ctx context.Context, key, slotID string, exp time.Time) (bool, error) {
	query, args, err := a.builder.Update(a.slotsTable).
		Set("expiration", expToNullable(exp)).
		Where(sq.Eq{"key": key, "slot_id": slotID}).
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

func (a *Adapter) RemoveSlot(ctx context.Context, key, slotID string) (bool, error) {
	query, args, err := a.builder.Delete(a.slotsTable).
		Where(sq.Eq{"key": key, "slot_id": slotID}).
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

// RemoveAllSlots deletes key's row from the keys table; a real foreign
// key with ON DELETE CASCADE removes the slots rows as a side effect.
// Adapters run against a driver/schema without FK enforcement should
// create one, or this call leaves orphaned slot rows behind.
func (a *Adapter) RemoveAllSlots(ctx context.Context, key string) (bool, error) {
	query, args, err := a.builder.Delete(a.keysTable).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return false, err
	}
	res, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := sqladapter.RowsAffected(res)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}

	// No keys row (legacy data or a schema without the keys table
	// populated yet) — fall back to removing slot rows directly.
	query, args, err = a.builder.Delete(a.slotsTable).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return false, err
	}
	res, err = a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err = sqladapter.RowsAffected(res)
	return n > 0, err
}

func (a *Adapter) FindSlot(ctx context.Context, key, slotID string) (*time.Time, error) {
	query, args, err := a.builder.Select("expiration").
		From(a.slotsTable).
		Where(sq.Eq{"key": key, "slot_id": slotID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var expNanos sql.NullInt64
	row := a.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&expNanos); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	exp := nullableToExp(expNanos)
	return &exp, nil
}

func (a *Adapter) FindState(ctx context.Context, key string) (*semaphore.State, error) {
	query, args, err := a.builder.Select("slot_id", "expiration").
		From(a.slotsTable).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	st := &semaphore.State{}
	for rows.Next() {
		var slotID string
		var expNanos sql.NullInt64
		if err := rows.Scan(&slotID, &expNanos); err != nil {
			return nil, err
		}
		st.AcquiredSlots = append(st.AcquiredSlots, semaphore.Slot{
			SlotID:     slotID,
			Expiration: nullableToExp(expNanos),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(st.AcquiredSlots) == 0 {
		return nil, nil
	}

	limitQuery, limitArgs, err := a.builder.Select("limit_value").
		From(a.keysTable).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var limit int
	if err := a.db.QueryRowContext(ctx, limitQuery, limitArgs...).Scan(&limit); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	st.Limit = limit
	return st, nil
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
