package tasks

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/shared"
	tu "github.com/desertthunder/taskx/internal/testing"
)

func newTestStore(t *testing.T, tasks ...models.Task) (*Store, *tu.MockGateway) {
	t.Helper()

	gw := tu.NewMockGateway(tasks...)
	s := NewStore(StoreOpts{Gateway: gw, Now: tu.Clock(tu.Fixed)})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}
	return s, gw
}

func abcd() []models.Task {
	return []models.Task{
		tu.NewTask("A", "Alpha", "work", 0),
		tu.NewTask("B", "Bravo", "personal", 1),
		tu.NewTask("C", "Charlie", "work", 2),
		tu.NewTask("D", "Delta", "personal", 3),
	}
}

func visibleIDs(s *Store) []string { return ids(s.VisibleTasks()) }

func TestStoreLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("sorted snapshot", func(t *testing.T) {
		tasks := abcd()
		slices.Reverse(tasks)
		s, gw := newTestStore(t, tasks...)

		if got := visibleIDs(s); !slices.Equal(got, []string{"A", "B", "C", "D"}) {
			t.Errorf("expected A..D in order, got %v", got)
		}
		if len(s.Categories()) != 5 {
			t.Errorf("expected 5 categories, got %d", len(s.Categories()))
		}
		if gw.Calls(tu.OpGetAllTasks) != 1 || gw.Calls(tu.OpGetAllCategories) != 1 {
			t.Error("expected one call to each list operation")
		}
	})

	t.Run("failure keeps previous snapshot", func(t *testing.T) {
		s, gw := newTestStore(t, abcd()...)
		gw.FailOn(tu.OpGetAllCategories, shared.ErrServiceUnavailable)

		err := s.Load(ctx)
		if !errors.Is(err, ErrLoad) {
			t.Fatalf("expected ErrLoad, got %v", err)
		}
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected cause to be wrapped, got %v", err)
		}
		if len(s.Tasks()) != 4 {
			t.Errorf("expected previous snapshot to survive, got %d tasks", len(s.Tasks()))
		}
	})

	t.Run("first failure leaves store empty", func(t *testing.T) {
		gw := tu.NewMockGateway(abcd()...)
		gw.FailOn(tu.OpGetAllTasks, shared.ErrServiceUnavailable)
		s := NewStore(StoreOpts{Gateway: gw})

		if err := s.Load(ctx); !errors.Is(err, ErrLoad) {
			t.Fatalf("expected ErrLoad, got %v", err)
		}
		if len(s.Tasks()) != 0 || len(s.VisibleTasks()) != 0 {
			t.Error("expected empty store")
		}
	})
}

func TestStoreCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("appends canonical task", func(t *testing.T) {
		s, gw := newTestStore(t, abcd()...)

		task, err := s.Create(ctx, models.TaskInput{Title: "  Echo  ", Category: "ideas"})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if task.ID == "" || task.Title != "Echo" || task.Completed {
			t.Errorf("unexpected task: %+v", task)
		}
		if task.Order != 4 {
			t.Errorf("expected order 4, got %d", task.Order)
		}
		if got := visibleIDs(s); got[len(got)-1] != task.ID {
			t.Errorf("expected new task last, got %v", got)
		}
		if gw.Calls(tu.OpCreateTask) != 1 {
			t.Errorf("expected one create call, got %d", gw.Calls(tu.OpCreateTask))
		}
	})

	t.Run("default category", func(t *testing.T) {
		s, _ := newTestStore(t)

		task, err := s.Create(ctx, models.TaskInput{Title: "Errand"})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if task.Category != models.DefaultCategoryID {
			t.Errorf("expected %q, got %q", models.DefaultCategoryID, task.Category)
		}
	})

	t.Run("order stays unique after delete", func(t *testing.T) {
		s, _ := newTestStore(t, abcd()...)
		if err := s.Delete(ctx, "A"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		task, err := s.Create(ctx, models.TaskInput{Title: "Echo"})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		for _, other := range s.Tasks() {
			if other.ID != task.ID && other.Order == task.Order {
				t.Errorf("order %d shared with %s", task.Order, other.ID)
			}
		}
	})

	t.Run("blank title", func(t *testing.T) {
		s, gw := newTestStore(t, abcd()...)

		_, err := s.Create(ctx, models.TaskInput{Title: "   "})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
		if gw.Calls(tu.OpCreateTask) != 0 {
			t.Error("validation failure must not reach the gateway")
		}
		if len(s.Tasks()) != 4 {
			t.Errorf("task set changed: %d tasks", len(s.Tasks()))
		}
	})

	t.Run("gateway failure", func(t *testing.T) {
		s, gw := newTestStore(t, abcd()...)
		gw.FailOn(tu.OpCreateTask, shared.ErrSimulatedFailure)

		_, err := s.Create(ctx, models.TaskInput{Title: "Echo"})
		if !errors.Is(err, ErrPersistence) || !errors.Is(err, shared.ErrSimulatedFailure) {
			t.Fatalf("expected persistence error wrapping the cause, got %v", err)
		}
		if len(s.Tasks()) != 4 {
			t.Errorf("failed create must not add a task, got %d", len(s.Tasks()))
		}
	})
}

func TestStoreUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip through load", func(t *testing.T) {
		due := tu.Fixed.Add(48 * time.Hour)
		original := tu.Due(tu.NewTask("A", "Alpha", "work", 0), due)
		s, _ := newTestStore(t, original)

		title := "X"
		if _, err := s.Update(ctx, "A", models.TaskPatch{Title: &title}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if err := s.Load(ctx); err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		got, err := s.Get("A")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		want := original.Clone()
		want.Title = "X"
		if got.Title != want.Title || got.Category != want.Category || got.Completed != want.Completed ||
			got.Order != want.Order || !got.CreatedAt.Equal(want.CreatedAt) || !got.DueDate.Equal(*want.DueDate) {
			t.Errorf("expected %+v, got %+v", want, got)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		s, gw := newTestStore(t, abcd()...)
		done := true

		_, err := s.Update(ctx, "Z", models.TaskPatch{Completed: &done})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		var opErr *OpError
		if !errors.As(err, &opErr) || opErr.ID != "Z" || opErr.Op != "update" {
			t.Errorf("expected op and id on error, got %#v", err)
		}
		if gw.Calls(tu.OpUpdateTask) != 0 {
			t.Error("unknown id must not reach the gateway")
		}
	})

	t.Run("blank title", func(t *testing.T) {
		s, gw := newTestStore(t, abcd()...)
		blank := "  "

		if _, err := s.Update(ctx, "A", models.TaskPatch{Title: &blank}); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
		if gw.Calls(tu.OpUpdateTask) != 0 {
			t.Error("validation failure must not reach the gateway")
		}
	})

	t.Run("gateway failure leaves record", func(t *testing.T) {
		s, gw := newTestStore(t, abcd()...)
		gw.FailOn(tu.OpUpdateTask, shared.ErrSimulatedFailure)
		title := "X"

		if _, err := s.Update(ctx, "A", models.TaskPatch{Title: &title}); !errors.Is(err, ErrPersistence) {
			t.Fatalf("expected ErrPersistence, got %v", err)
		}
		if got, _ := s.Get("A"); got.Title != "Alpha" {
			t.Errorf("expected title unchanged, got %q", got.Title)
		}
	})

	t.Run("toggle", func(t *testing.T) {
		s, _ := newTestStore(t, abcd()...)

		got, err := s.Toggle(ctx, "B")
		if err != nil {
			t.Fatalf("Toggle failed: %v", err)
		}
		if !got.Completed {
			t.Error("expected task to be completed")
		}

		got, _ = s.Toggle(ctx, "B")
		if got.Completed {
			t.Error("expected task to be pending again")
		}

		if _, err := s.Toggle(ctx, "Z"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes after confirmation", func(t *testing.T) {
		s, gw := newTestStore(t, abcd()...)

		if err := s.Delete(ctx, "B"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		for range 3 {
			if _, err := s.Get("B"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		}
		if err := s.Delete(ctx, "B"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
		if _, err := gw.GetTask(ctx, "B"); !errors.Is(err, shared.ErrTaskNotFound) {
			t.Errorf("expected gateway to have removed the task, got %v", err)
		}
	})

	t.Run("failure keeps task", func(t *testing.T) {
		s, gw := newTestStore(t, abcd()...)
		gw.FailOn(tu.OpDeleteTask, shared.ErrSimulatedFailure)

		if err := s.Delete(ctx, "B"); !errors.Is(err, ErrPersistence) {
			t.Fatalf("expected ErrPersistence, got %v", err)
		}
		if _, err := s.Get("B"); err != nil {
			t.Errorf("task should remain after failed delete: %v", err)
		}
	})
}

func TestStoreReorder(t *testing.T) {
	ctx := context.Background()

	t.Run("move within full list", func(t *testing.T) {
		s, gw := newTestStore(t, abcd()...)

		if err := s.Reorder(ctx, MoveRequest{From: 0, To: 2}); err != nil {
			t.Fatalf("Reorder failed: %v", err)
		}
		want := []string{"B", "C", "A", "D"}
		if got := visibleIDs(s); !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
		for i, task := range s.Tasks() {
			if task.Order != i {
				t.Errorf("task %s: expected order %d, got %d", task.ID, i, task.Order)
			}
		}
		if gw.Calls(tu.OpReorderTasks) != 1 {
			t.Errorf("expected one reorder call, got %d", gw.Calls(tu.OpReorderTasks))
		}
	})

	t.Run("filtered move keeps hidden slots", func(t *testing.T) {
		s, _ := newTestStore(t, abcd()...)
		s.SetFilter("personal")

		if err := s.Reorder(ctx, MoveRequest{From: 1, To: 0}); err != nil {
			t.Fatalf("Reorder failed: %v", err)
		}
		if got := visibleIDs(s); !slices.Equal(got, []string{"D", "B"}) {
			t.Errorf("expected visible [D B], got %v", got)
		}

		s.SetFilter(FilterAll)
		if got := visibleIDs(s); !slices.Equal(got, []string{"A", "D", "C", "B"}) {
			t.Errorf("expected full [A D C B], got %v", got)
		}
	})

	t.Run("same index is a no-op", func(t *testing.T) {
		s, gw := newTestStore(t, abcd()...)

		if err := s.Reorder(ctx, MoveRequest{From: 1, To: 1}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gw.Calls(tu.OpReorderTasks) != 0 {
			t.Error("no-op move must not reach the gateway")
		}
	})

	t.Run("invalid index", func(t *testing.T) {
		s, gw := newTestStore(t, abcd()...)

		for _, m := range []MoveRequest{{From: -1, To: 0}, {From: 0, To: 4}, {From: 9, To: 9}} {
			if err := s.Reorder(ctx, m); !errors.Is(err, ErrValidation) {
				t.Errorf("%+v: expected ErrValidation, got %v", m, err)
			}
		}
		if gw.Calls(tu.OpReorderTasks) != 0 {
			t.Error("invalid moves must not reach the gateway")
		}
	})

	t.Run("gateway failure keeps order", func(t *testing.T) {
		s, gw := newTestStore(t, abcd()...)
		gw.FailOn(tu.OpReorderTasks, shared.ErrSimulatedFailure)

		if err := s.Reorder(ctx, MoveRequest{From: 0, To: 3}); !errors.Is(err, ErrPersistence) {
			t.Fatalf("expected ErrPersistence, got %v", err)
		}
		if got := visibleIDs(s); !slices.Equal(got, []string{"A", "B", "C", "D"}) {
			t.Errorf("expected unchanged order, got %v", got)
		}
	})

	t.Run("reorder all", func(t *testing.T) {
		s, _ := newTestStore(t, abcd()...)

		if err := s.ReorderAll(ctx, []string{"D", "B"}); err != nil {
			t.Fatalf("ReorderAll failed: %v", err)
		}
		if got := visibleIDs(s); !slices.Equal(got, []string{"D", "B", "A", "C"}) {
			t.Errorf("expected [D B A C], got %v", got)
		}
	})

	t.Run("reorder all identical is a no-op", func(t *testing.T) {
		s, gw := newTestStore(t, abcd()...)

		if err := s.ReorderAll(ctx, []string{"A", "B", "C", "D"}); err != nil {
			t.Fatalf("ReorderAll failed: %v", err)
		}
		if err := s.ReorderAll(ctx, []string{"A", "B"}); err != nil {
			t.Fatalf("ReorderAll failed: %v", err)
		}
		if gw.Calls(tu.OpReorderTasks) != 0 {
			t.Errorf("expected no gateway calls, got %d", gw.Calls(tu.OpReorderTasks))
		}
	})

	t.Run("reorder all rejects bad input", func(t *testing.T) {
		s, _ := newTestStore(t, abcd()...)

		if err := s.ReorderAll(ctx, []string{"A", "A"}); !errors.Is(err, ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
		if err := s.ReorderAll(ctx, []string{"Z"}); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestStoreViews(t *testing.T) {
	s, _ := newTestStore(t, fixtureTasks()...)

	t.Run("search", func(t *testing.T) {
		s.SetSearch("mil")
		defer s.SetSearch("")

		if got := visibleIDs(s); !slices.Equal(got, []string{"a", "b"}) {
			t.Errorf("expected [a b], got %v", got)
		}
	})

	t.Run("empty filter resets", func(t *testing.T) {
		s.SetFilter(FilterCompleted)
		s.SetFilter("")
		if q := s.Query(); q.Filter != FilterAll {
			t.Errorf("expected all, got %q", q.Filter)
		}
	})

	t.Run("stats ignore filter", func(t *testing.T) {
		s.SetFilter(FilterCompleted)
		defer s.SetFilter(FilterAll)

		if got := s.Stats(); got.Total != 6 || got.Completed != 2 || got.Overdue != 1 {
			t.Errorf("unexpected stats: %+v", got)
		}
	})

	t.Run("filter counts", func(t *testing.T) {
		counts := s.FilterCounts()
		want := map[Filter]int{FilterAll: 6, FilterPending: 4, FilterCompleted: 2, FilterOverdue: 1, "work": 2, "ideas": 1}
		for f, n := range want {
			if counts[f] != n {
				t.Errorf("%s: expected %d, got %d", f, n, counts[f])
			}
		}
	})

	t.Run("category counts recomputed", func(t *testing.T) {
		for _, c := range s.Categories() {
			if c.TaskCount != Count(s.Tasks(), Filter(c.ID), tu.Fixed) {
				t.Errorf("%s: count %d does not match tasks", c.ID, c.TaskCount)
			}
		}
	})

	t.Run("category fallback", func(t *testing.T) {
		if got := s.Category("missing"); got != models.FallbackCategory {
			t.Errorf("expected fallback, got %+v", got)
		}
		if got := s.Category("work"); got.Name != "Work" {
			t.Errorf("expected Work, got %+v", got)
		}
	})
}

func TestStoreConcurrency(t *testing.T) {
	ctx := context.Background()

	t.Run("same id updates are sequenced", func(t *testing.T) {
		s, gw := newTestStore(t, abcd()...)

		release := make(chan struct{})
		arrived := make(chan string, 2)
		gw.Hook(tu.OpUpdateTask, func(_ context.Context, id string) {
			arrived <- id
			<-release
		})

		var wg sync.WaitGroup
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.Toggle(ctx, "A"); err != nil {
					t.Errorf("Toggle failed: %v", err)
				}
			}()
		}

		<-arrived
		select {
		case <-arrived:
			t.Fatal("second update reached the gateway before the first settled")
		case <-time.After(50 * time.Millisecond):
		}

		close(release)
		wg.Wait()

		if got, _ := s.Get("A"); got.Completed {
			t.Error("two toggles should leave the task pending")
		}
		if gw.Calls(tu.OpUpdateTask) != 2 {
			t.Errorf("expected 2 update calls, got %d", gw.Calls(tu.OpUpdateTask))
		}
	})

	t.Run("second update observes first", func(t *testing.T) {
		s, _ := newTestStore(t, abcd()...)
		title := "First"

		if _, err := s.Update(ctx, "A", models.TaskPatch{Title: &title}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		done := true
		got, err := s.Update(ctx, "A", models.TaskPatch{Completed: &done})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if got.Title != "First" || !got.Completed {
			t.Errorf("expected both updates applied, got %+v", got)
		}
	})

	t.Run("different ids proceed in parallel", func(t *testing.T) {
		s, gw := newTestStore(t, abcd()...)

		release := make(chan struct{})
		arrived := make(chan string, 2)
		gw.Hook(tu.OpUpdateTask, func(_ context.Context, id string) {
			arrived <- id
			<-release
		})

		var wg sync.WaitGroup
		for _, id := range []string{"A", "B"} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.Toggle(ctx, id)
			}()
		}

		for range 2 {
			select {
			case <-arrived:
			case <-time.After(time.Second):
				close(release)
				t.Fatal("updates to different ids were serialized")
			}
		}
		close(release)
		wg.Wait()
	})

	t.Run("reads do not wait for gateway", func(t *testing.T) {
		s, gw := newTestStore(t, abcd()...)

		release := make(chan struct{})
		arrived := make(chan string, 1)
		gw.Hook(tu.OpDeleteTask, func(_ context.Context, id string) {
			arrived <- id
			<-release
		})

		done := make(chan error, 1)
		go func() { done <- s.Delete(ctx, "A") }()
		<-arrived

		read := make(chan int, 1)
		go func() {
			s.Stats()
			read <- len(s.VisibleTasks())
		}()

		select {
		case n := <-read:
			if n != 4 {
				t.Errorf("expected committed snapshot of 4 tasks during delete, got %d", n)
			}
		case <-time.After(time.Second):
			t.Error("read blocked on in-flight gateway call")
		}

		close(release)
		if err := <-done; err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if len(s.VisibleTasks()) != 3 {
			t.Errorf("expected 3 tasks after delete, got %d", len(s.VisibleTasks()))
		}
	})
}

func TestOpError(t *testing.T) {
	err := persistenceError("update", "A", shared.ErrSimulatedFailure)

	if !errors.Is(err, ErrPersistence) {
		t.Error("expected kind to match")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("kind must not match other kinds")
	}
	if !errors.Is(err, shared.ErrSimulatedFailure) {
		t.Error("expected cause to unwrap")
	}
	if got, want := err.Error(), "update A: persistence failed: simulated gateway failure"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
