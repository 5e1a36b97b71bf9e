package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/shared"
	"github.com/desertthunder/taskx/internal/tasks"
	tu "github.com/desertthunder/taskx/internal/testing"
)

func newTestModel(t *testing.T) (*Model, *tu.MockGateway) {
	t.Helper()
	timeNow = tu.Clock(tu.Fixed)
	t.Cleanup(func() { timeNow = time.Now })

	gw := tu.NewMockGateway(
		tu.NewTask("A", "Buy milk", "shopping", 0),
		tu.NewTask("B", "Write report", "work", 1),
		tu.Done(tu.NewTask("C", "Call mom", "personal", 2)),
	)
	store := tasks.NewStore(tasks.StoreOpts{Gateway: gw, Now: tu.Clock(tu.Fixed)})
	m := NewModel(context.Background(), store)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	settle(t, m, m.Init())
	return m, gw
}

// settle runs cmd and feeds its message back, as the bubbletea runtime would.
// Commands that do not answer promptly (cursor blinks) are dropped.
func settle(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for cmd != nil {
		out := make(chan tea.Msg, 1)
		go func(cmd tea.Cmd) { out <- cmd() }(cmd)

		var msg tea.Msg
		select {
		case msg = <-out:
		case <-time.After(100 * time.Millisecond):
			return
		}

		if _, ok := msg.(Msg); !ok {
			return
		}
		_, cmd = m.Update(msg)
	}
}

func press(t *testing.T, m *Model, keys ...string) {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd := m.Update(msg)
		settle(t, m, cmd)
	}
}

func visibleTitles(m *Model) []string {
	out := []string{}
	for _, item := range m.taskList.Items() {
		out = append(out, item.(taskItem).task.Title)
	}
	return out
}

func TestModel(t *testing.T) {
	t.Run("loads tasks", func(t *testing.T) {
		m, _ := newTestModel(t)

		if got := strings.Join(visibleTitles(m), ","); got != "Buy milk,Write report,Call mom" {
			t.Errorf("unexpected items: %s", got)
		}
		if view := m.View(); !strings.Contains(view, "1/3 done") {
			t.Errorf("expected stats in header, got:\n%s", view)
		}
	})

	t.Run("toggle", func(t *testing.T) {
		m, _ := newTestModel(t)
		press(t, m, "x")

		task, _ := m.store.Get("A")
		if !task.Completed {
			t.Error("expected selected task to be completed")
		}
	})

	t.Run("add", func(t *testing.T) {
		m, gw := newTestModel(t)
		press(t, m, "a")
		if m.view != AddView {
			t.Fatalf("expected AddView, got %v", m.view)
		}

		press(t, m, "N", "e", "w", "tab", "t", "o", "d", "a", "y", "enter")

		if m.view != ListView {
			t.Errorf("expected ListView after submit, got %v", m.view)
		}
		if gw.Calls(tu.OpCreateTask) != 1 {
			t.Fatalf("expected one create call, got %d", gw.Calls(tu.OpCreateTask))
		}
		titles := visibleTitles(m)
		if titles[len(titles)-1] != "New" {
			t.Errorf("expected new task last, got %v", titles)
		}
		created := m.store.Tasks()[3]
		if created.Category != models.DefaultCategoryID || created.DueDate == nil {
			t.Errorf("unexpected created task: %+v", created)
		}
	})

	t.Run("add blank title shows error", func(t *testing.T) {
		m, _ := newTestModel(t)
		press(t, m, "a", "enter")

		if !errors.Is(m.err, tasks.ErrValidation) {
			t.Errorf("expected validation error, got %v", m.err)
		}
	})

	t.Run("edit", func(t *testing.T) {
		m, _ := newTestModel(t)
		press(t, m, "down", "e", "!", "enter")

		task, _ := m.store.Get("B")
		if task.Title != "Write report!" {
			t.Errorf("expected edited title, got %q", task.Title)
		}
	})

	t.Run("delete with confirm", func(t *testing.T) {
		m, _ := newTestModel(t)

		press(t, m, "d", "n")
		if len(m.store.Tasks()) != 3 {
			t.Fatal("declined delete must keep the task")
		}

		press(t, m, "d")
		if view := m.View(); !strings.Contains(view, `Delete "Buy milk"?`) {
			t.Errorf("expected confirmation, got:\n%s", view)
		}
		press(t, m, "y")
		if _, err := m.store.Get("A"); !errors.Is(err, tasks.ErrNotFound) {
			t.Errorf("expected task deleted, got %v", err)
		}
	})

	t.Run("move down", func(t *testing.T) {
		m, _ := newTestModel(t)
		press(t, m, "J")

		if got := strings.Join(visibleTitles(m), ","); got != "Write report,Buy milk,Call mom" {
			t.Errorf("unexpected order: %s", got)
		}
		if m.taskList.Index() != 1 {
			t.Errorf("expected cursor to follow the task, got %d", m.taskList.Index())
		}
	})

	t.Run("filter cycle", func(t *testing.T) {
		m, _ := newTestModel(t)

		press(t, m, "f")
		if m.store.Query().Filter != tasks.FilterPending {
			t.Fatalf("expected pending, got %q", m.store.Query().Filter)
		}
		if got := len(visibleTitles(m)); got != 2 {
			t.Errorf("expected 2 pending tasks, got %d", got)
		}

		press(t, m, "f")
		if got := strings.Join(visibleTitles(m), ","); got != "Call mom" {
			t.Errorf("expected completed tasks, got %s", got)
		}
	})

	t.Run("search", func(t *testing.T) {
		m, _ := newTestModel(t)
		press(t, m, "/", "M", "I", "L")

		if got := strings.Join(visibleTitles(m), ","); got != "Buy milk" {
			t.Errorf("expected live search results, got %s", got)
		}

		press(t, m, "esc")
		if len(visibleTitles(m)) != 3 || m.store.Query().Search != "" {
			t.Error("esc should clear the search")
		}
	})

	t.Run("gateway failure", func(t *testing.T) {
		m, gw := newTestModel(t)
		gw.FailOn(tu.OpUpdateTask, shared.ErrSimulatedFailure)
		press(t, m, "x")

		if !errors.Is(m.err, tasks.ErrPersistence) {
			t.Errorf("expected persistence error, got %v", m.err)
		}
		if view := m.View(); !strings.Contains(view, "Error:") {
			t.Errorf("expected error in view, got:\n%s", view)
		}
	})
}
