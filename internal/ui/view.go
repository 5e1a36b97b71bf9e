package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/taskx/internal/tasks"
)

var timeNow = time.Now

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case AddView, EditView:
		return m.renderForm()
	case ConfirmView:
		return m.renderConfirm()
	default:
		return m.renderList()
	}
}

func (m *Model) renderHeader() string {
	stats := m.store.Stats()
	summary := fmt.Sprintf("%d/%d done", stats.Completed, stats.Total)
	if stats.Overdue > 0 {
		summary += " • " + styles.overdue.Render(fmt.Sprintf("%d overdue", stats.Overdue))
	}
	return fmt.Sprintf("%s %s", m.bar.ViewAs(stats.Percentage/100), summary)
}

func (m *Model) renderTabs() string {
	counts := m.store.FilterCounts()
	active := m.store.Query().Filter

	tabs := []string{}
	for _, f := range tasks.StatusFilters {
		tabs = append(tabs, m.renderTab(string(f), counts[f], f == active))
	}
	for _, c := range m.store.Categories() {
		f := tasks.Filter(c.ID)
		label := Swatch("●", c.Color) + " " + c.Name
		tabs = append(tabs, m.renderTab(label, counts[f], f == active))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderTab(label string, count int, on bool) string {
	text := fmt.Sprintf("%s %d", label, count)
	if on {
		return styles.tabOn.Render(text)
	}
	return styles.tab.Render(text)
}

func (m *Model) renderStatus() string {
	switch {
	case m.err != nil:
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	case m.busy:
		return styles.warn.Render("saving…")
	case m.status != "":
		return styles.ok.Render(m.status)
	default:
		return ""
	}
}

func (m *Model) renderList() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	if m.view == SearchView || m.store.Query().Search != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}

	if len(m.taskList.Items()) == 0 {
		b.WriteString(styles.help.Render(m.emptyMessage()))
		b.WriteString("\n")
	} else {
		b.WriteString(m.taskList.View())
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) emptyMessage() string {
	q := m.store.Query()
	switch {
	case strings.TrimSpace(q.Search) != "":
		return fmt.Sprintf("No tasks match %q.", strings.TrimSpace(q.Search))
	case q.Filter != tasks.FilterAll && len(m.store.Tasks()) > 0:
		return "Nothing here. Press f to change the filter."
	default:
		return "No tasks yet. Press a to add one."
	}
}

func (m *Model) renderForm() string {
	heading := "New Task"
	if m.view == EditView {
		heading = "Edit Task"
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(heading))
	b.WriteString("\n")
	b.WriteString(m.title.View())
	b.WriteString("\n")

	helpKeys := []key.Binding{m.keys.submit, m.keys.back}
	if m.view == AddView {
		b.WriteString(m.due.View())
		b.WriteString("\n")
		if categories := m.store.Categories(); m.category < len(categories) {
			c := categories[m.category]
			b.WriteString(fmt.Sprintf("Category: %s %s %s\n", Swatch("●", c.Color), c.Name, styles.help.Render("(ctrl+n/ctrl+p)")))
		}
		helpKeys = append(helpKeys, m.keys.next)
	}

	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderConfirm() string {
	t, err := m.store.Get(m.editing)
	if err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v", err))
	}

	title := styles.title.Render(fmt.Sprintf("Delete %q?", t.Title))
	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s", title, m.help.ShortHelpView(helpKeys))
}
