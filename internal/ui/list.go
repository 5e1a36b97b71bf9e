package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/taskx/internal/models"
)

var _ list.Item = taskItem{}

// taskItem wraps [models.Task] to implement [list.Item].
type taskItem struct {
	task     models.Task
	category models.Category
	now      time.Time
}

func (i taskItem) FilterValue() string { return i.task.Title }

func (i taskItem) Title() string {
	if i.task.Completed {
		return "✓ " + styles.done.Render(i.task.Title)
	}
	return "○ " + i.task.Title
}

func (i taskItem) Description() string {
	desc := Swatch("●", i.category.Color) + " " + i.category.Name
	if i.task.DueDate == nil {
		return desc
	}

	due := i.task.DueDate.Format("Jan 2")
	switch i.task.DueStatusAt(i.now) {
	case models.DueOverdue:
		due = styles.overdue.Render("overdue " + due)
	case models.DueToday:
		due = styles.dueToday.Render("due today")
	default:
		due = "due " + due
	}
	return fmt.Sprintf("%s • %s", desc, due)
}
