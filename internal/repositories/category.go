package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/shared"
)

// CategoryRepository reads and maintains the pre-seeded categories table.
type CategoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new CategoryRepository with the given database connection
func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a category. Used for seeding beyond the migration defaults.
func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = shared.GenerateID()
	}
	if c.Name == "" {
		return fmt.Errorf("%w: category name is required", shared.ErrInvalidInput)
	}
	if c.Color == "" {
		c.Color = models.FallbackCategory.Color
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, color, task_count) VALUES (?, ?, ?, ?)",
		c.ID, c.Name, c.Color, c.TaskCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// Get retrieves a category by ID
func (r *CategoryRepository) Get(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, color, task_count FROM categories WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &c.Color, &c.TaskCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrCategoryNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}
	return &c, nil
}

// List returns every category ordered by creation.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, color, task_count FROM categories ORDER BY created_at ASC, rowid ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.TaskCount); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return categories, nil
}

// RefreshTaskCounts recomputes the denormalized task_count column from live tasks.
func (r *CategoryRepository) RefreshTaskCounts(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE categories
		SET task_count = (
			SELECT COUNT(*) FROM tasks
			WHERE tasks.category = categories.id AND tasks.deleted_at IS NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to refresh task counts: %w", err)
	}
	return nil
}
