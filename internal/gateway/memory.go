package gateway

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/shared"
)

// Memory keeps tasks and categories in process memory.
type Memory struct {
	mu         sync.Mutex
	tasks      []models.Task
	categories []models.Category
	now        func() time.Time
	newID      func() string
}

// NewMemory returns an empty task list with the default categories.
func NewMemory() *Memory {
	return &Memory{
		categories: DefaultCategories(),
		now:        time.Now,
		newID:      shared.GenerateID,
	}
}

// NewMemoryWith seeds the gateway with tasks as-is. Intended for tests and fixtures.
func NewMemoryWith(categories []models.Category, tasks ...models.Task) *Memory {
	m := NewMemory()
	if categories != nil {
		m.categories = slices.Clone(categories)
	}
	for _, t := range tasks {
		m.tasks = append(m.tasks, t.Clone())
	}
	return m
}

func (m *Memory) GetAllTasks(ctx context.Context) ([]models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(), nil
}

func (m *Memory) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := slices.Clone(m.categories)
	for i := range out {
		out[i].TaskCount = 0
		for _, t := range m.tasks {
			if t.Category == out[i].ID {
				out[i].TaskCount++
			}
		}
	}
	return out, nil
}

func (m *Memory) GetTask(ctx context.Context, id string) (models.Task, error) {
	if err := ctx.Err(); err != nil {
		return models.Task{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return models.Task{}, fmt.Errorf("%w: %s", shared.ErrTaskNotFound, id)
	}
	return m.tasks[i].Clone(), nil
}

func (m *Memory) CreateTask(ctx context.Context, draft models.Task) (models.Task, error) {
	if err := ctx.Err(); err != nil {
		return models.Task{}, err
	}

	task, err := normalizeDraft(draft)
	if err != nil {
		return models.Task{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task.ID = m.newID()
	task.CreatedAt = m.now()
	task.Order = assignOrder(m.tasks, task.Order)

	m.tasks = append(m.tasks, task)
	return task.Clone(), nil
}

func (m *Memory) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	if err := ctx.Err(); err != nil {
		return models.Task{}, err
	}
	if err := patch.Validate(); err != nil {
		return models.Task{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return models.Task{}, fmt.Errorf("%w: %s", shared.ErrTaskNotFound, id)
	}

	m.tasks[i] = patch.Apply(m.tasks[i])
	return m.tasks[i].Clone(), nil
}

func (m *Memory) DeleteTask(ctx context.Context, id string) (models.Task, error) {
	if err := ctx.Err(); err != nil {
		return models.Task{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return models.Task{}, fmt.Errorf("%w: %s", shared.ErrTaskNotFound, id)
	}

	removed := m.tasks[i]
	m.tasks = slices.Delete(m.tasks, i, i+1)
	return removed, nil
}

func (m *Memory) ReorderTasks(ctx context.Context, ids []string) ([]models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.sorted()
	order := make([]string, len(current))
	for i, t := range current {
		order[i] = t.ID
	}

	position := make(map[string]int, len(order))
	for i, id := range resequence(order, ids) {
		position[id] = i
	}
	for i := range m.tasks {
		m.tasks[i].Order = position[m.tasks[i].ID]
	}
	return m.sorted(), nil
}

func (m *Memory) index(id string) int {
	return slices.IndexFunc(m.tasks, func(t models.Task) bool { return t.ID == id })
}

// sorted returns clones of every task ordered by (Order, CreatedAt, ID). Callers hold mu.
func (m *Memory) sorted() []models.Task {
	out := make([]models.Task, len(m.tasks))
	for i, t := range m.tasks {
		out[i] = t.Clone()
	}
	models.SortTasks(out)
	return out
}
