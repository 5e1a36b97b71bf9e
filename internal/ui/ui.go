package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/shared"
	"github.com/desertthunder/taskx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListView ViewState = iota
	AddView
	EditView
	SearchView
	ConfirmView
)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	store    *tasks.Store
	view     ViewState
	width    int
	height   int
	taskList list.Model
	title    textinput.Model
	due      textinput.Model
	search   textinput.Model
	bar      progress.Model
	help     help.Model
	keys     keyMap
	category int    // index into the store's categories while adding
	editing  string // task id being edited or deleted
	busy     bool
	status   string
	err      error
}

// NewModel creates a new TUI model over store. Init loads the store.
func NewModel(ctx context.Context, store *tasks.Store) *Model {
	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Tasks"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)

	title := textinput.New()
	title.Placeholder = "What needs doing?"
	title.CharLimit = 200

	due := textinput.New()
	due.Placeholder = "today, tomorrow, week or 2006-01-02"

	search := textinput.New()
	search.Placeholder = "search titles"
	search.Prompt = "/ "

	return &Model{
		ctx:      ctx,
		store:    store,
		view:     ListView,
		taskList: l,
		title:    title,
		due:      due,
		search:   search,
		bar:      progress.New(progress.WithGradient("#5B4FE9", "#4ECDC4"), progress.WithoutPercentage()),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init loads tasks and categories from the store.
func (m *Model) Init() tea.Cmd {
	m.busy = true
	return m.load()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.taskList.SetSize(msg.Width-4, msg.Height-10)
		m.bar.Width = min(40, max(10, msg.Width-30))
		return m, nil

	case Msg:
		return m.handleMsg(msg)

	case tea.KeyMsg:
		switch m.view {
		case ListView:
			return m.handleListKeys(msg)
		case AddView, EditView:
			return m.handleFormKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}
	}

	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	m.busy = false

	switch msg.kind {
	case MsgLoaded:
		if err, _ := msg.data.(error); err != nil {
			m.err = err
		} else {
			m.err = nil
			m.status = fmt.Sprintf("loaded %d tasks", len(m.store.Tasks()))
		}
		m.refresh(-1)

	case MsgMutated:
		mut := msg.data.(mutation)
		if mut.err != nil {
			m.err = mut.err
			m.status = ""
		} else {
			m.err = nil
			m.status = mut.status
		}
		m.refresh(mut.focus)
	}
	return m, nil
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy && !key.Matches(msg, m.keys.quit, m.keys.up, m.keys.down, m.keys.help) {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		if t, ok := m.selected(); ok {
			m.busy = true
			return m, m.run(func() (string, error) {
				_, err := m.store.Toggle(m.ctx, t.ID)
				return fmt.Sprintf("toggled %q", t.Title), err
			}, -1)
		}
		return m, nil
	case key.Matches(msg, m.keys.add):
		m.view = AddView
		m.editing = ""
		m.category = m.defaultCategoryIndex()
		m.title.SetValue("")
		m.due.SetValue("")
		m.due.Blur()
		return m, m.title.Focus()
	case key.Matches(msg, m.keys.edit):
		if t, ok := m.selected(); ok {
			m.view = EditView
			m.editing = t.ID
			m.title.SetValue(t.Title)
			m.title.CursorEnd()
			return m, m.title.Focus()
		}
		return m, nil
	case key.Matches(msg, m.keys.delete):
		if t, ok := m.selected(); ok {
			m.view = ConfirmView
			m.editing = t.ID
		}
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		return m, m.move(-1)
	case key.Matches(msg, m.keys.moveDown):
		return m, m.move(1)
	case key.Matches(msg, m.keys.filter):
		m.store.SetFilter(m.nextFilter())
		m.refresh(0)
		return m, nil
	case key.Matches(msg, m.keys.search):
		m.view = SearchView
		m.search.SetValue(m.store.Query().Search)
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.reload):
		m.busy = true
		return m, m.load()
	}

	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.closeForm()
		return m, nil
	case m.view == AddView && key.Matches(msg, m.keys.next):
		if m.title.Focused() {
			m.title.Blur()
			return m, m.due.Focus()
		}
		m.due.Blur()
		return m, m.title.Focus()
	case m.view == AddView && (msg.String() == "ctrl+n" || msg.String() == "ctrl+p"):
		if n := len(m.store.Categories()); n > 0 {
			step := 1
			if msg.String() == "ctrl+p" {
				step = n - 1
			}
			m.category = (m.category + step) % n
		}
		return m, nil
	case key.Matches(msg, m.keys.submit):
		return m, m.submitForm()
	}

	var cmd tea.Cmd
	if m.due.Focused() {
		m.due, cmd = m.due.Update(msg)
	} else {
		m.title, cmd = m.title.Update(msg)
	}
	return m, cmd
}

func (m *Model) submitForm() tea.Cmd {
	title := m.title.Value()

	if m.view == EditView {
		id := m.editing
		m.closeForm()
		m.busy = true
		return m.run(func() (string, error) {
			_, err := m.store.Update(m.ctx, id, models.TaskPatch{Title: &title})
			return "task updated", err
		}, -1)
	}

	due, err := shared.ParseDueDate(m.due.Value(), timeNow())
	if err != nil {
		m.err = err
		return nil
	}

	input := models.TaskInput{Title: title, DueDate: due}
	if categories := m.store.Categories(); m.category < len(categories) {
		input.Category = categories[m.category].ID
	}

	m.closeForm()
	m.busy = true
	return m.run(func() (string, error) {
		t, err := m.store.Create(m.ctx, input)
		return fmt.Sprintf("added %q", t.Title), err
	}, -1)
}

func (m *Model) closeForm() {
	m.view = ListView
	m.editing = ""
	m.title.Blur()
	m.due.Blur()
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.search.SetValue("")
		m.store.SetSearch("")
		m.search.Blur()
		m.view = ListView
		m.refresh(0)
		return m, nil
	case key.Matches(msg, m.keys.submit):
		m.search.Blur()
		m.view = ListView
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.store.SetSearch(m.search.Value())
	m.refresh(0)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		id := m.editing
		m.view = ListView
		m.editing = ""
		m.busy = true
		return m, m.run(func() (string, error) {
			return "task deleted", m.store.Delete(m.ctx, id)
		}, -1)
	case key.Matches(msg, m.keys.no), msg.String() == "q":
		m.view = ListView
		m.editing = ""
	}
	return m, nil
}

// move shifts the selected task by delta within the visible list.
func (m *Model) move(delta int) tea.Cmd {
	from := m.taskList.Index()
	to := from + delta
	if _, ok := m.selected(); !ok || to < 0 || to >= len(m.taskList.Items()) {
		return nil
	}

	m.busy = true
	return m.run(func() (string, error) {
		return "task moved", m.store.Reorder(m.ctx, tasks.MoveRequest{From: from, To: to})
	}, to)
}

// run executes op off the update loop and reports through [MsgMutated].
func (m *Model) run(op func() (string, error), focus int) tea.Cmd {
	return func() tea.Msg {
		status, err := op()
		if err != nil {
			focus = -1
		}
		return mutatedMsg(status, err, focus)
	}
}

func (m *Model) load() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg(m.store.Load(m.ctx))
	}
}

// refresh rebuilds the list from the store's visible tasks.
func (m *Model) refresh(focus int) {
	now := timeNow()
	visible := m.store.VisibleTasks()
	items := make([]list.Item, len(visible))
	for i, t := range visible {
		items[i] = taskItem{task: t, category: m.store.Category(t.Category), now: now}
	}

	cursor := m.taskList.Index()
	m.taskList.SetItems(items)
	if focus >= 0 {
		cursor = focus
	}
	if cursor >= len(items) {
		cursor = len(items) - 1
	}
	if cursor >= 0 {
		m.taskList.Select(cursor)
	}
}

func (m *Model) selected() (models.Task, bool) {
	item, ok := m.taskList.SelectedItem().(taskItem)
	if !ok {
		return models.Task{}, false
	}
	return item.task, true
}

// nextFilter cycles all, pending, completed, overdue, then each category.
func (m *Model) nextFilter() tasks.Filter {
	filters := append([]tasks.Filter{}, tasks.StatusFilters...)
	for _, c := range m.store.Categories() {
		filters = append(filters, tasks.Filter(c.ID))
	}

	current := m.store.Query().Filter
	for i, f := range filters {
		if f == current {
			return filters[(i+1)%len(filters)]
		}
	}
	return tasks.FilterAll
}

func (m *Model) defaultCategoryIndex() int {
	for i, c := range m.store.Categories() {
		if c.ID == models.DefaultCategoryID {
			return i
		}
	}
	return 0
}

// Run starts the TUI on the alternate screen and blocks until it exits.
func Run(ctx context.Context, store *tasks.Store) error {
	p := tea.NewProgram(NewModel(ctx, store), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}
