package tasks

import (
	"testing"

	"github.com/desertthunder/taskx/internal/models"
	tu "github.com/desertthunder/taskx/internal/testing"
)

func TestProject(t *testing.T) {
	tests := []struct {
		name  string
		tasks []models.Task
		want  Stats
	}{
		{name: "empty", tasks: nil, want: Stats{}},
		{
			name:  "fixture",
			tasks: fixtureTasks(),
			want:  Stats{Completed: 2, Pending: 4, Overdue: 1, Total: 6, Percentage: percent(2, 6)},
		},
		{
			name:  "all done",
			tasks: []models.Task{tu.Done(tu.NewTask("a", "a", "work", 0))},
			want:  Stats{Completed: 1, Total: 1, Percentage: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(tt.tasks, tu.Fixed)
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func percent(completed, total int) float64 {
	return float64(completed) / float64(total) * 100
}
