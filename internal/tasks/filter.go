package tasks

import (
	"strings"
	"time"

	"github.com/desertthunder/taskx/internal/models"
)

// Filter selects tasks by status or by category id.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
	FilterOverdue   Filter = "overdue"
)

// StatusFilters lists the filters that are not category ids.
var StatusFilters = []Filter{FilterAll, FilterPending, FilterCompleted, FilterOverdue}

// IsStatus reports whether f is a status filter rather than a category id.
func (f Filter) IsStatus() bool {
	switch f {
	case FilterAll, FilterPending, FilterCompleted, FilterOverdue, "":
		return true
	}
	return false
}

// Match reports whether t passes f at now. The empty filter behaves like [FilterAll].
func (f Filter) Match(t models.Task, now time.Time) bool {
	switch f {
	case FilterAll, "":
		return true
	case FilterPending:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	case FilterOverdue:
		return t.IsOverdue(now)
	default:
		return t.Category == string(f)
	}
}

// Query is the active filter and search text.
type Query struct {
	Filter Filter `json:"filter"`
	Search string `json:"search"`
}

// Match applies the filter first and then the search.
func (q Query) Match(t models.Task, now time.Time) bool {
	if !q.Filter.Match(t, now) {
		return false
	}

	needle := strings.ToLower(strings.TrimSpace(q.Search))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), needle)
}

// Visible returns the tasks matching q at now, ordered by Order.
//
// The input is not modified. An unknown category yields an empty result.
func Visible(tasks []models.Task, q Query, now time.Time) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if q.Match(t, now) {
			out = append(out, t.Clone())
		}
	}
	models.SortTasks(out)
	return out
}

// Count returns how many tasks pass f at now, ignoring any search.
func Count(tasks []models.Task, f Filter, now time.Time) int {
	n := 0
	for _, t := range tasks {
		if f.Match(t, now) {
			n++
		}
	}
	return n
}
