package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ensureSequenceTable creates and seeds the single-row counter table. The
// sequence is shared by every event table, so activity and LLM events can
// be interleaved in the order they happened even though each table has its
// own auto-increment id.
func ensureSequenceTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return fmt.Errorf("seed sequence: %w", err)
	}
	return nil
}

// nextSequence returns the next sequence number and increments the
// counter. Callers run it in the same transaction as the insert that uses
// the number.
func nextSequence(ctx context.Context, q querier) (int64, error) {
	var seq int64
	err := q.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// appendEvent reserves a sequence number and inserts the row built by
// insert under one immediate transaction.
func (r *eventRepo) appendEvent(ctx context.Context, insert func(seq int64) (string, []any)) error {
	return immediate(ctx, r.db, func(q querier) error {
		seq, err := nextSequence(ctx, q)
		if err != nil {
			return err
		}
		query, args := insert(seq)
		_, err = q.ExecContext(ctx, query, args...)
		return err
	})
}

// eventRepo implements EventRepo on top of the SQL builder and the global
// sequence counter.
type eventRepo struct {
	db *sql.DB
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UnixMilli()
}
