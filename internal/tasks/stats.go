package tasks

import (
	"time"

	"github.com/desertthunder/taskx/internal/models"
)

// Stats summarizes completion across a task set.
type Stats struct {
	Completed  int     `json:"completed"`
	Pending    int     `json:"pending"`
	Overdue    int     `json:"overdue"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Project computes [Stats] for tasks at now. Percentage is 0 for an empty set.
func Project(tasks []models.Task, now time.Time) Stats {
	var s Stats
	for _, t := range tasks {
		s.Total++
		if t.Completed {
			s.Completed++
			continue
		}
		s.Pending++
		if t.IsOverdue(now) {
			s.Overdue++
		}
	}

	if s.Total > 0 {
		s.Percentage = float64(s.Completed) / float64(s.Total) * 100
	}
	return s
}
