package gateway

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/repositories"
	"github.com/desertthunder/taskx/internal/shared"
)

// SQLite stores tasks through the repositories package. The database must be migrated.
type SQLite struct {
	tasks      *repositories.TaskRepository
	categories *repositories.CategoryRepository
}

// NewSQLite creates a gateway on db.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{
		tasks:      repositories.NewTaskRepository(db),
		categories: repositories.NewCategoryRepository(db),
	}
}

func (s *SQLite) GetAllTasks(ctx context.Context) ([]models.Task, error) {
	return s.tasks.List(ctx, nil)
}

func (s *SQLite) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	if err := s.categories.RefreshTaskCounts(ctx); err != nil {
		return nil, err
	}
	return s.categories.List(ctx)
}

func (s *SQLite) GetTask(ctx context.Context, id string) (models.Task, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return models.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return *task, nil
}

func (s *SQLite) CreateTask(ctx context.Context, draft models.Task) (models.Task, error) {
	task, err := normalizeDraft(draft)
	if err != nil {
		return models.Task{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	task.ID = ""
	task.CreatedAt = time.Time{}
	if err := s.tasks.Create(ctx, &task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *SQLite) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	if err := patch.Validate(); err != nil {
		return models.Task{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	task, err := s.tasks.Patch(ctx, id, patch)
	if err != nil {
		return models.Task{}, err
	}
	return *task, nil
}

func (s *SQLite) DeleteTask(ctx context.Context, id string) (models.Task, error) {
	task, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	return *task, nil
}

func (s *SQLite) ReorderTasks(ctx context.Context, ids []string) ([]models.Task, error) {
	return s.tasks.Reorder(ctx, func(current []string) []string {
		return resequence(current, ids)
	})
}
