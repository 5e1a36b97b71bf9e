package tasks

import (
	"context"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/taskx/internal/gateway"
	"github.com/desertthunder/taskx/internal/models"
	"golang.org/x/sync/errgroup"
)

// StoreOpts configures a [Store].
type StoreOpts struct {
	Gateway         gateway.Gateway
	Logger          *log.Logger
	Now             func() time.Time // defaults to time.Now
	DefaultCategory string           // category for tasks created without one
}

// Store mirrors the gateway's tasks and serializes mutations against them.
type Store struct {
	gw              gateway.Gateway
	logger          *log.Logger
	now             func() time.Time
	defaultCategory string

	// structure is held exclusively by membership changes and shared by updates.
	structure sync.RWMutex
	perTask   keyedMutex

	// mu guards the committed snapshot below. It is never held across a gateway call.
	mu         sync.RWMutex
	tasks      []models.Task
	categories []models.Category
	query      Query
}

// NewStore creates an empty store. Call [Store.Load] to populate it.
func NewStore(opts StoreOpts) *Store {
	s := &Store{
		gw:              opts.Gateway,
		logger:          opts.Logger,
		now:             opts.Now,
		defaultCategory: opts.DefaultCategory,
		tasks:           []models.Task{},
		categories:      []models.Category{},
		query:           Query{Filter: FilterAll},
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.defaultCategory == "" {
		s.defaultCategory = models.DefaultCategoryID
	}
	return s
}

// Load replaces the snapshot with the gateway's tasks and categories, fetched concurrently.
//
// On failure the previous snapshot is kept and the error is a LoadError.
func (s *Store) Load(ctx context.Context) error {
	s.structure.Lock()
	defer s.structure.Unlock()

	var (
		tasks      []models.Task
		categories []models.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = s.gw.GetAllTasks(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.gw.GetAllCategories(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("load failed", "op", "load", "error", err)
		return &OpError{Kind: ErrLoad, Op: "load", Err: err}
	}

	models.SortTasks(tasks)

	s.mu.Lock()
	s.tasks = tasks
	s.categories = categories
	s.mu.Unlock()

	s.logger.Debug("loaded", "op", "load", "tasks", len(tasks), "categories", len(categories))
	return nil
}

// Create adds a task titled in.Title. The trimmed title must not be empty.
func (s *Store) Create(ctx context.Context, in models.TaskInput) (models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Task{}, validationError("create", "", models.Task{}.Validate())
	}

	s.structure.Lock()
	defer s.structure.Unlock()

	category := in.Category
	if category == "" {
		category = s.defaultCategory
	}

	s.mu.RLock()
	draft := models.Task{
		Title:     title,
		Category:  category,
		DueDate:   in.DueDate,
		Completed: false,
		Order:     draftOrder(s.tasks),
	}
	s.mu.RUnlock()

	created, err := s.gw.CreateTask(ctx, draft)
	if err != nil {
		s.logger.Warn("gateway rejected create", "op", "create", "error", err)
		return models.Task{}, persistenceError("create", "", err)
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, created.Clone())
	models.SortTasks(s.tasks)
	s.mu.Unlock()

	s.logger.Debug("created", "op", "create", "id", created.ID)
	return created, nil
}

// draftOrder is the task count, bumped past the highest order so it stays unique after deletes.
func draftOrder(tasks []models.Task) int {
	order := len(tasks)
	for _, t := range tasks {
		if t.Order >= order {
			order = t.Order + 1
		}
	}
	return order
}

// Update applies patch to the task with id and commits the gateway's returned record.
func (s *Store) Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	if err := patch.Validate(); err != nil {
		return models.Task{}, validationError("update", id, err)
	}

	s.structure.RLock()
	defer s.structure.RUnlock()
	unlock := s.perTask.Lock(id)
	defer unlock()

	if _, ok := s.lookup(id); !ok {
		return models.Task{}, notFoundError("update", id)
	}
	return s.update(ctx, "update", id, patch)
}

// Toggle flips the completion state of the task with id.
func (s *Store) Toggle(ctx context.Context, id string) (models.Task, error) {
	s.structure.RLock()
	defer s.structure.RUnlock()
	unlock := s.perTask.Lock(id)
	defer unlock()

	current, ok := s.lookup(id)
	if !ok {
		return models.Task{}, notFoundError("toggle", id)
	}

	completed := !current.Completed
	return s.update(ctx, "toggle", id, models.TaskPatch{Completed: &completed})
}

// update sends patch and commits the result. Callers hold the structure read lock and id's lock.
func (s *Store) update(ctx context.Context, op, id string, patch models.TaskPatch) (models.Task, error) {
	updated, err := s.gw.UpdateTask(ctx, id, patch)
	if err != nil {
		s.logger.Warn("gateway rejected update", "op", op, "id", id, "error", err)
		return models.Task{}, persistenceError(op, id, err)
	}

	s.mu.Lock()
	if i := s.index(id); i >= 0 {
		s.tasks[i] = updated.Clone()
		models.SortTasks(s.tasks)
	}
	s.mu.Unlock()

	s.logger.Debug("updated", "op", op, "id", id)
	return updated, nil
}

// Delete removes the task with id once the gateway confirms.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.structure.Lock()
	defer s.structure.Unlock()

	if _, ok := s.lookup(id); !ok {
		return notFoundError("delete", id)
	}

	if _, err := s.gw.DeleteTask(ctx, id); err != nil {
		s.logger.Warn("gateway rejected delete", "op", "delete", "id", id, "error", err)
		return persistenceError("delete", id, err)
	}

	s.mu.Lock()
	if i := s.index(id); i >= 0 {
		s.tasks = slices.Delete(s.tasks, i, i+1)
	}
	s.mu.Unlock()

	s.logger.Debug("deleted", "op", "delete", "id", id)
	return nil
}

// Reorder moves the visible task at m.From to m.To under the current filter and search.
//
// The move is resolved against the full order: visible tasks take the slots visible
// tasks held, hidden tasks keep theirs. A move that changes nothing makes no gateway call.
func (s *Store) Reorder(ctx context.Context, m MoveRequest) error {
	s.structure.Lock()
	defer s.structure.Unlock()

	s.mu.RLock()
	full := ids(s.tasks)
	visible := ids(Visible(s.tasks, s.query, s.now()))
	s.mu.RUnlock()

	if m.From == m.To && m.From >= 0 && m.From < len(visible) {
		return nil
	}

	moved, err := Move(visible, m.From, m.To)
	if err != nil {
		return validationError("reorder", "", err)
	}

	next, err := Resolve(full, visible, moved)
	if err != nil {
		return validationError("reorder", "", err)
	}
	return s.commitOrder(ctx, "reorder", full, next)
}

// ReorderAll makes orderedIDs the manual order. Tasks not listed keep their relative
// order after the listed ones.
func (s *Store) ReorderAll(ctx context.Context, orderedIDs []string) error {
	if err := checkUnique(orderedIDs); err != nil {
		return validationError("reorder", "", err)
	}

	s.structure.Lock()
	defer s.structure.Unlock()

	s.mu.RLock()
	full := ids(s.tasks)
	s.mu.RUnlock()

	known := make(map[string]bool, len(full))
	for _, id := range full {
		known[id] = true
	}

	next := make([]string, 0, len(full))
	for _, id := range orderedIDs {
		if !known[id] {
			return notFoundError("reorder", id)
		}
		next = append(next, id)
	}
	for _, id := range full {
		if !slices.Contains(orderedIDs, id) {
			next = append(next, id)
		}
	}
	return s.commitOrder(ctx, "reorder", full, next)
}

// commitOrder sends next to the gateway unless it equals full. Callers hold structure.
func (s *Store) commitOrder(ctx context.Context, op string, full, next []string) error {
	if slices.Equal(full, next) {
		s.logger.Debug("reorder is a no-op", "op", op)
		return nil
	}

	reordered, err := s.gw.ReorderTasks(ctx, next)
	if err != nil {
		s.logger.Warn("gateway rejected reorder", "op", op, "error", err)
		return persistenceError(op, "", err)
	}

	models.SortTasks(reordered)

	s.mu.Lock()
	s.tasks = reordered
	s.mu.Unlock()

	s.logger.Debug("reordered", "op", op, "tasks", len(reordered))
	return nil
}

// Get returns the committed task with id.
func (s *Store) Get(id string) (models.Task, error) {
	t, ok := s.lookup(id)
	if !ok {
		return models.Task{}, notFoundError("get", id)
	}
	return t, nil
}

// Tasks returns every committed task in manual order.
func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Categories returns the categories with TaskCount recomputed from the committed tasks.
func (s *Store) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, len(s.categories))
	for _, t := range s.tasks {
		counts[t.Category]++
	}

	out := slices.Clone(s.categories)
	for i := range out {
		out[i].TaskCount = counts[out[i].ID]
	}
	return out
}

// Category resolves id, falling back to [models.FallbackCategory].
func (s *Store) Category(id string) models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.ResolveCategory(s.categories, id)
}

// SetFilter changes the active filter. The empty filter selects all tasks.
func (s *Store) SetFilter(f Filter) {
	if f == "" {
		f = FilterAll
	}

	s.mu.Lock()
	s.query.Filter = f
	s.mu.Unlock()
}

// SetSearch changes the active search text.
func (s *Store) SetSearch(q string) {
	s.mu.Lock()
	s.query.Search = q
	s.mu.Unlock()
}

// Query returns the active filter and search.
func (s *Store) Query() Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// VisibleTasks returns the committed tasks passing the active query, evaluated now.
func (s *Store) VisibleTasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Visible(s.tasks, s.query, s.now())
}

// Stats projects completion statistics over every committed task.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Project(s.tasks, s.now())
}

// FilterCounts returns the number of tasks each status filter and category would show.
func (s *Store) FilterCounts() map[Filter]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	counts := make(map[Filter]int, len(StatusFilters)+len(s.categories))
	for _, f := range StatusFilters {
		counts[f] = Count(s.tasks, f, now)
	}
	for _, c := range s.categories {
		f := Filter(c.ID)
		counts[f] = Count(s.tasks, f, now)
	}
	return counts
}

func (s *Store) lookup(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.index(id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return models.Task{}, false
}

// index returns the position of id in s.tasks or -1. Callers hold mu.
func (s *Store) index(id string) int {
	return slices.IndexFunc(s.tasks, func(t models.Task) bool { return t.ID == id })
}

func ids(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
