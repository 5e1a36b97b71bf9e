package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/shared"
)

const taskColumns = "id, title, category, due_date, completed, sort_order, created_at"

// TaskRepository persists [models.Task] rows.
type TaskRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewTaskRepository creates a new TaskRepository with the given database connection
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db, now: time.Now}
}

// Create inserts task, assigning its ID, CreatedAt and (when negative or already taken) its Order.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		order, err := r.resolveOrder(ctx, tx, task.Order)
		if err != nil {
			return err
		}

		if task.ID == "" {
			task.ID = shared.GenerateID()
		}
		if task.CreatedAt.IsZero() {
			task.CreatedAt = r.now()
		}
		task.Order = order

		query := `
			INSERT INTO tasks (id, title, category, due_date, completed, sort_order, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err = tx.ExecContext(ctx, query,
			task.ID,
			task.Title,
			task.Category,
			nullTime(task.DueDate),
			task.Completed,
			task.Order,
			task.CreatedAt,
			task.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert task: %w", err)
		}
		return nil
	})
}

func (r *TaskRepository) resolveOrder(ctx context.Context, q querier, requested int) (int, error) {
	if requested >= 0 {
		var taken bool
		err := q.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM tasks WHERE sort_order = ? AND deleted_at IS NULL)", requested,
		).Scan(&taken)
		if err != nil {
			return 0, fmt.Errorf("failed to check order: %w", err)
		}
		if !taken {
			return requested, nil
		}
	}
	return NextOrder(ctx, q)
}

// Get retrieves a task by ID, excluding soft-deleted tasks
func (r *TaskRepository) Get(ctx context.Context, id string) (*models.Task, error) {
	return r.get(ctx, r.db, id)
}

func (r *TaskRepository) get(ctx context.Context, q querier, id string) (*models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE id = ? AND deleted_at IS NULL"
	return scanTask(q.QueryRowContext(ctx, query, id))
}

// Patch applies patch to the task with id inside a transaction and returns the merged record.
func (r *TaskRepository) Patch(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	var merged models.Task

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		current, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}

		merged = patch.Apply(*current)
		if err := merged.Validate(); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		return r.update(ctx, tx, &merged)
	})
	if err != nil {
		return nil, err
	}
	return &merged, nil
}

// Update writes the mutable fields of task (title, category, due date, completion).
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return r.update(ctx, r.db, task)
}

func (r *TaskRepository) update(ctx context.Context, q querier, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = ?, category = ?, due_date = ?, completed = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := q.ExecContext(ctx, query,
		task.Title,
		task.Category,
		nullTime(task.DueDate),
		task.Completed,
		r.now(),
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return expectRow(result, task.ID)
}

// Delete soft-deletes a task by ID and returns the removed record.
func (r *TaskRepository) Delete(ctx context.Context, id string) (*models.Task, error) {
	var removed *models.Task

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		task, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			"UPDATE tasks SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", r.now(), id,
		)
		if err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		if err := expectRow(result, id); err != nil {
			return err
		}

		removed = task
		return nil
	})
	return removed, err
}

// List retrieves live tasks in manual order.
//
// Supported criteria: "category" (string) and "completed" (bool).
func (r *TaskRepository) List(ctx context.Context, criteria map[string]any) ([]models.Task, error) {
	return r.list(ctx, r.db, criteria)
}

func (r *TaskRepository) list(ctx context.Context, q querier, criteria map[string]any) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE deleted_at IS NULL"
	args := []any{}

	if category, ok := criteria["category"].(string); ok && category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}

	if completed, ok := criteria["completed"].(bool); ok {
		query += " AND completed = ?"
		args = append(args, completed)
	}

	query += " ORDER BY sort_order ASC, created_at ASC, id ASC"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tasks, nil
}

// Reorder rewrites sort_order for every live task in one transaction.
//
// resequence receives the live ids in current order and returns the complete new sequence;
// position i becomes order i. Either every row is updated or none is.
func (r *TaskRepository) Reorder(ctx context.Context, resequence func(current []string) []string) ([]models.Task, error) {
	var tasks []models.Task

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		current, err := r.list(ctx, tx, nil)
		if err != nil {
			return err
		}

		ids := make([]string, len(current))
		for i, t := range current {
			ids[i] = t.ID
		}

		next := resequence(ids)
		if len(next) != len(ids) {
			return fmt.Errorf("%w: resequence returned %d ids for %d tasks", shared.ErrInvalidInput, len(next), len(ids))
		}

		stmt, err := tx.PrepareContext(ctx, "UPDATE tasks SET sort_order = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL")
		if err != nil {
			return fmt.Errorf("failed to prepare reorder: %w", err)
		}
		defer stmt.Close()

		now := r.now()
		for i, id := range next {
			result, err := stmt.ExecContext(ctx, i, now, id)
			if err != nil {
				return fmt.Errorf("failed to reorder task %s: %w", id, err)
			}
			if err := expectRow(result, id); err != nil {
				return err
			}
		}

		tasks, err = r.list(ctx, tx, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanTask scans a single row from [sql.Row] or [sql.Rows] into a [models.Task]
func scanTask(s scanner) (*models.Task, error) {
	var (
		task models.Task
		due  sql.NullTime
	)

	err := s.Scan(&task.ID, &task.Title, &task.Category, &due, &task.Completed, &task.Order, &task.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	if due.Valid {
		t := due.Time
		task.DueDate = &t
	}
	return &task, nil
}

func expectRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrTaskNotFound, id)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
