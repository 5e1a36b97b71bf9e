// package models defines the data model for the task manager
package models

import (
	"errors"
	"slices"
	"strings"
	"time"
)

// DefaultCategoryID is assigned to tasks created without a category.
const DefaultCategoryID = "personal"

// FallbackCategory is displayed for tasks whose category id does not resolve.
var FallbackCategory = Category{ID: "", Name: "General", Color: "#94a3b8"}

var errEmptyTitle = errors.New("title must not be empty")

// Task is the canonical task record.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Completed bool       `json:"completed"`
	Order     int        `json:"order"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Validate reports whether the task can be stored.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return errEmptyTitle
	}
	return nil
}

// IsOverdue reports whether t is pending with a due date strictly before now.
func (t Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}

// Clone returns a copy of t that shares no pointers with it.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}

// SortTasks orders tasks by Order, breaking ties by CreatedAt and then ID.
func SortTasks(tasks []Task) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// DueStatus classifies a task's due date for display.
type DueStatus string

const (
	DueNone     DueStatus = "none"
	DueOverdue  DueStatus = "overdue"
	DueToday    DueStatus = "today"
	DueUpcoming DueStatus = "upcoming"
)

// DueStatusAt returns the display status of t's due date at now.
//
// Completed tasks and tasks without a due date are [DueNone]. A date falling on today's
// calendar day is [DueToday] even when its instant has passed.
func (t Task) DueStatusAt(now time.Time) DueStatus {
	if t.DueDate == nil || t.Completed {
		return DueNone
	}

	due := t.DueDate.In(now.Location())
	dy, dm, dd := due.Date()
	ny, nm, nd := now.Date()
	switch {
	case dy == ny && dm == nm && dd == nd:
		return DueToday
	case due.Before(now):
		return DueOverdue
	default:
		return DueUpcoming
	}
}

// Category groups tasks for display. TaskCount is denormalized and informational only.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	TaskCount int    `json:"taskCount"`
}

// ResolveCategory finds id in categories, falling back to [FallbackCategory].
func ResolveCategory(categories []Category, id string) Category {
	for _, c := range categories {
		if c.ID == id {
			return c
		}
	}
	return FallbackCategory
}

// TaskInput holds the fields accepted when creating a task.
type TaskInput struct {
	Title    string     `json:"title"`
	Category string     `json:"category,omitempty"`
	DueDate  *time.Time `json:"dueDate,omitempty"`
}

// TaskPatch is a partial update. Nil fields are left unchanged; ClearDueDate removes the due date.
type TaskPatch struct {
	Title        *string    `json:"title,omitempty"`
	Category     *string    `json:"category,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	ClearDueDate bool       `json:"clearDueDate,omitempty"`
	Completed    *bool      `json:"completed,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Category == nil && p.DueDate == nil && !p.ClearDueDate && p.Completed == nil
}

// Validate rejects patches that would blank the title.
func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return errEmptyTitle
	}
	return nil
}

// Apply merges the patch onto t, trimming the title. ID, Order and CreatedAt are never touched.
func (p TaskPatch) Apply(t Task) Task {
	t = t.Clone()
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.ClearDueDate {
		t.DueDate = nil
	}
	if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}
