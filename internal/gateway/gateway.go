package gateway

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/taskx/internal/models"
)

// Gateway is the storage contract the task store depends on.
type Gateway interface {
	// GetAllTasks returns every task ordered by Order ascending.
	GetAllTasks(ctx context.Context) ([]models.Task, error)
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	GetTask(ctx context.Context, id string) (models.Task, error)
	// CreateTask stores draft and returns the canonical task with ID, CreatedAt and Order assigned.
	CreateTask(ctx context.Context, draft models.Task) (models.Task, error)
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error)
	// DeleteTask removes the task and returns the removed record.
	DeleteTask(ctx context.Context, id string) (models.Task, error)
	// ReorderTasks assigns order 0..k-1 to ids. Unlisted tasks keep their relative order
	// after them and unknown ids are ignored. Either every order changes or none does.
	ReorderTasks(ctx context.Context, ids []string) ([]models.Task, error)
}

//go:embed seed.json
var seedJSON []byte

type seed struct {
	Categories []models.Category `json:"categories"`
}

// DefaultCategories returns the pre-seeded categories.
func DefaultCategories() []models.Category {
	var s seed
	if err := json.Unmarshal(seedJSON, &s); err != nil {
		panic(fmt.Sprintf("gateway: invalid embedded seed: %v", err))
	}
	return s.Categories
}

// resequence returns the full id sequence after listing ids first.
//
// current holds every known id in its present order. Listed ids that are unknown or
// repeated are skipped; unlisted ids follow in their prior relative order.
func resequence(current, ids []string) []string {
	known := make(map[string]bool, len(current))
	for _, id := range current {
		known[id] = true
	}

	out := make([]string, 0, len(current))
	placed := make(map[string]bool, len(current))
	for _, id := range ids {
		if known[id] && !placed[id] {
			out = append(out, id)
			placed[id] = true
		}
	}

	for _, id := range current {
		if !placed[id] {
			out = append(out, id)
		}
	}
	return out
}

// normalizeDraft trims the title and applies the default category.
func normalizeDraft(draft models.Task) (models.Task, error) {
	draft = draft.Clone()
	draft.Title = strings.TrimSpace(draft.Title)
	if err := draft.Validate(); err != nil {
		return models.Task{}, err
	}
	if draft.Category == "" {
		draft.Category = models.DefaultCategoryID
	}
	return draft, nil
}

// nextOrder returns max(len, max order + 1) over tasks.
func nextOrder(tasks []models.Task) int {
	next := len(tasks)
	for _, t := range tasks {
		if t.Order+1 > next {
			next = t.Order + 1
		}
	}
	return next
}

// orderTaken reports whether any task already holds order.
func orderTaken(tasks []models.Task, order int) bool {
	for _, t := range tasks {
		if t.Order == order {
			return true
		}
	}
	return false
}

// assignOrder keeps the requested order when it is free and non-negative.
func assignOrder(tasks []models.Task, requested int) int {
	if requested >= 0 && !orderTaken(tasks, requested) {
		return requested
	}
	return nextOrder(tasks)
}

