// package repositories provides persistence layer implementations for the task manager.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// querier is satisfied by both [sql.DB] and [sql.Tx].
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NextOrder returns the order value for a task appended to the end of the list.
//
// It is the larger of the live task count and max(sort_order)+1, so it stays unique after deletes leave gaps.
func NextOrder(ctx context.Context, q querier) (int, error) {
	var (
		count int
		max   sql.NullInt64
	)
	err := q.QueryRowContext(ctx, "SELECT COUNT(*), MAX(sort_order) FROM tasks WHERE deleted_at IS NULL").Scan(&count, &max)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next order: %w", err)
	}

	next := count
	if max.Valid && int(max.Int64)+1 > next {
		next = int(max.Int64) + 1
	}
	return next, nil
}

// withTx runs fn inside a transaction, committing only when fn succeeds.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
