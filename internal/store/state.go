package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// StateRepo is a small key/value table for documents that are always read
// and written whole.
type StateRepo struct {
	db *sql.DB
}

// Get returns the value stored under key, or nil if the key is absent.
func (r *StateRepo) Get(ctx context.Context, key string) ([]byte, error) {
	return getState(ctx, r.db, key)
}

// Put overwrites the value stored under key.
func (r *StateRepo) Put(ctx context.Context, key string, value []byte) error {
	return putState(ctx, r.db, key, value)
}

// Update reads key, passes the current value (nil if absent) to fn and
// stores what fn returns, all under one immediate transaction. A nil result
// leaves the row as it is. An error from fn rolls back and is returned
// unchanged.
func (r *StateRepo) Update(ctx context.Context, key string, fn func(cur []byte) ([]byte, error)) error {
	return immediate(ctx, r.db, func(q querier) error {
		cur, err := getState(ctx, q, key)
		if err != nil {
			return err
		}
		next, err := fn(cur)
		if err != nil || next == nil {
			return err
		}
		return putState(ctx, q, key, next)
	})
}

func getState(ctx context.Context, q querier, key string) ([]byte, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("value").
		From(entsql.Table(tableLearnerState)).
		Where(entsql.EQ("state_key", key)).
		Query()

	var value string
	err := q.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query state %q: %w", key, err)
	}
	return []byte(value), nil
}

func putState(ctx context.Context, q querier, key string, value []byte) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableLearnerState).
		Columns("state_key", "value", "updated_at").
		Values(key, string(value), time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("state_key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("write state %q: %w", key, err)
	}
	return nil
}
