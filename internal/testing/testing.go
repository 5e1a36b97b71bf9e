// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/taskx/internal/gateway"
	"github.com/desertthunder/taskx/internal/models"
)

// Gateway operation names accepted by [MockGateway.FailOn], [MockGateway.Hook] and [MockGateway.Calls].
const (
	OpGetAllTasks      = "GetAllTasks"
	OpGetAllCategories = "GetAllCategories"
	OpGetTask          = "GetTask"
	OpCreateTask       = "CreateTask"
	OpUpdateTask       = "UpdateTask"
	OpDeleteTask       = "DeleteTask"
	OpReorderTasks     = "ReorderTasks"
)

// MockGateway is a test double for [gateway.Gateway] backed by [gateway.Memory].
//
// It counts calls per operation, can fail any operation, and runs hooks before
// delegating so tests can block or sequence calls in flight.
type MockGateway struct {
	*gateway.Memory

	mu    sync.Mutex
	errs  map[string]error
	hooks map[string]func(ctx context.Context, id string)
	calls map[string]int
	ids   map[string][]string
}

// NewMockGateway seeds a mock with the default categories and tasks.
func NewMockGateway(tasks ...models.Task) *MockGateway {
	return &MockGateway{
		Memory: gateway.NewMemoryWith(nil, tasks...),
		errs:   map[string]error{},
		hooks:  map[string]func(context.Context, string){},
		calls:  map[string]int{},
		ids:    map[string][]string{},
	}
}

// FailOn makes op return err until cleared with a nil err.
func (m *MockGateway) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, op)
		return
	}
	m.errs[op] = err
}

// Hook runs fn at the start of every op call, before any configured failure.
func (m *MockGateway) Hook(op string, fn func(ctx context.Context, id string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[op] = fn
}

// Calls returns how many times op was invoked.
func (m *MockGateway) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// IDs returns the task ids op was invoked with, in call order.
func (m *MockGateway) IDs(op string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ids[op]...)
}

func (m *MockGateway) enter(ctx context.Context, op, id string) error {
	m.mu.Lock()
	m.calls[op]++
	if id != "" {
		m.ids[op] = append(m.ids[op], id)
	}
	hook := m.hooks[op]
	m.mu.Unlock()

	if hook != nil {
		hook(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errs[op]
}

func (m *MockGateway) GetAllTasks(ctx context.Context) ([]models.Task, error) {
	if err := m.enter(ctx, OpGetAllTasks, ""); err != nil {
		return nil, err
	}
	return m.Memory.GetAllTasks(ctx)
}

func (m *MockGateway) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	if err := m.enter(ctx, OpGetAllCategories, ""); err != nil {
		return nil, err
	}
	return m.Memory.GetAllCategories(ctx)
}

func (m *MockGateway) GetTask(ctx context.Context, id string) (models.Task, error) {
	if err := m.enter(ctx, OpGetTask, id); err != nil {
		return models.Task{}, err
	}
	return m.Memory.GetTask(ctx, id)
}

func (m *MockGateway) CreateTask(ctx context.Context, draft models.Task) (models.Task, error) {
	if err := m.enter(ctx, OpCreateTask, ""); err != nil {
		return models.Task{}, err
	}
	return m.Memory.CreateTask(ctx, draft)
}

func (m *MockGateway) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	if err := m.enter(ctx, OpUpdateTask, id); err != nil {
		return models.Task{}, err
	}
	return m.Memory.UpdateTask(ctx, id, patch)
}

func (m *MockGateway) DeleteTask(ctx context.Context, id string) (models.Task, error) {
	if err := m.enter(ctx, OpDeleteTask, id); err != nil {
		return models.Task{}, err
	}
	return m.Memory.DeleteTask(ctx, id)
}

func (m *MockGateway) ReorderTasks(ctx context.Context, ids []string) ([]models.Task, error) {
	if err := m.enter(ctx, OpReorderTasks, ""); err != nil {
		return nil, err
	}
	return m.Memory.ReorderTasks(ctx, ids)
}

// Fixed is a reference instant for tests that depend on the current time.
var Fixed = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

// Clock returns a now func pinned to t.
func Clock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// NewTask builds a task fixture with CreatedAt derived from order.
func NewTask(id, title, category string, order int) models.Task {
	return models.Task{
		ID:        id,
		Title:     title,
		Category:  category,
		Order:     order,
		CreatedAt: Fixed.Add(time.Duration(order) * time.Minute),
	}
}

// Due returns a copy of t due at due.
func Due(t models.Task, due time.Time) models.Task {
	t.DueDate = &due
	return t
}

// Done returns a completed copy of t.
func Done(t models.Task) models.Task {
	t.Completed = true
	return t
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
