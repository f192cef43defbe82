package store

import (
	"context"
	"database/sql"
	"fmt"
)

// querier is the part of *sql.DB and *sql.Conn the repositories use, so the
// same statements run standalone or inside an immediate transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// immediate runs fn on a single connection inside BEGIN IMMEDIATE. The
// write lock is taken before the first read, so another process opening the
// same file waits on busy_timeout instead of interleaving its own
// read-modify-write.
func immediate(ctx context.Context, db *sql.DB, fn func(q querier) error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}

	done := false
	defer func() {
		if !done {
			_, _ = conn.ExecContext(context.WithoutCancel(ctx), "ROLLBACK")
		}
		conn.Close()
	}()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("begin immediate: %w", err)
	}
	if err := fn(conn); err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	done = true
	return nil
}
