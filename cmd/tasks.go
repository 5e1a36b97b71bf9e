package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/taskx/internal/formatter"
	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/shared"
	"github.com/desertthunder/taskx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// applyQuery sets the store's filter and search from the --filter and --search flags.
func applyQuery(store *tasks.Store, cmd *cli.Command) {
	store.SetFilter(tasks.Filter(strings.TrimSpace(cmd.String("filter"))))
	store.SetSearch(cmd.String("search"))
}

// resolveTask finds a task by id, or by its 1-based position in the unfiltered order.
func resolveTask(store *tasks.Store, ref string) (models.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Task{}, fmt.Errorf("%w: task id or position", shared.ErrMissingArgument)
	}

	t, err := store.Get(ref)
	if err == nil {
		return t, nil
	}
	if n, convErr := strconv.Atoi(ref); convErr == nil {
		if all := store.Tasks(); n >= 1 && n <= len(all) {
			return all[n-1], nil
		}
	}
	return models.Task{}, err
}

func (r *Runner) formatTask(store *tasks.Store, pos int, t models.Task) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}

	line := fmt.Sprintf("%3d. [%s] %s (%s)", pos, mark, t.Title, store.Category(t.Category).Name)
	if status := t.DueStatusAt(r.now()); status != models.DueNone {
		line += fmt.Sprintf(" due %s (%s)", t.DueDate.Format("2006-01-02"), status)
	}
	return line + "  " + t.ID
}

// List prints the visible tasks. Positions refer to the unfiltered order.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}
	applyQuery(store, cmd)

	visible := store.VisibleTasks()
	if cmd.Bool("json") {
		return r.writeJSON(visible, true)
	}

	positions := map[string]int{}
	for i, t := range store.Tasks() {
		positions[t.ID] = i + 1
	}

	if len(visible) == 0 {
		return r.writePlain("No tasks.\n")
	}
	for _, t := range visible {
		if err := r.writePlain("%s\n", r.formatTask(store, positions[t.ID], t)); err != nil {
			return err
		}
	}

	stats := store.Stats()
	return r.writePlain("\n%d/%d completed (%.0f%%)\n", stats.Completed, stats.Total, stats.Percentage)
}

// Add creates a task from the command arguments.
func (r *Runner) Add(ctx context.Context, cmd *cli.Command) error {
	title := strings.Join(cmd.Args().Slice(), " ")

	due, err := shared.ParseDueDate(cmd.String("due"), r.now())
	if err != nil {
		return err
	}

	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	t, err := store.Create(ctx, models.TaskInput{Title: title, Category: cmd.String("category"), DueDate: due})
	if err != nil {
		return err
	}

	r.logger.Debug("task added", "id", t.ID)
	return r.writePlain("✓ Added %q to %s  %s\n", t.Title, store.Category(t.Category).Name, t.ID)
}

// Edit applies the flags that were set as a partial update.
func (r *Runner) Edit(ctx context.Context, cmd *cli.Command) error {
	var patch models.TaskPatch
	if cmd.IsSet("title") {
		title := cmd.String("title")
		patch.Title = &title
	}
	if cmd.IsSet("category") {
		category := cmd.String("category")
		patch.Category = &category
	}
	if cmd.IsSet("due") {
		due, err := shared.ParseDueDate(cmd.String("due"), r.now())
		if err != nil {
			return err
		}
		patch.DueDate = due
		patch.ClearDueDate = due == nil
	}
	if cmd.Bool("clear-due") {
		patch.DueDate = nil
		patch.ClearDueDate = true
	}
	if patch.IsEmpty() {
		return fmt.Errorf("%w: one of --title, --category, --due or --clear-due", shared.ErrMissingArgument)
	}

	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	t, err := resolveTask(store, cmd.StringArg("id"))
	if err != nil {
		return err
	}

	updated, err := store.Update(ctx, t.ID, patch)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Updated %q\n", updated.Title)
}

// Done toggles completion.
func (r *Runner) Done(ctx context.Context, cmd *cli.Command) error {
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	t, err := resolveTask(store, cmd.StringArg("id"))
	if err != nil {
		return err
	}

	toggled, err := store.Toggle(ctx, t.ID)
	if err != nil {
		return err
	}

	if toggled.Completed {
		return r.writePlain("✓ Completed %q\n", toggled.Title)
	}
	return r.writePlain("○ Reopened %q\n", toggled.Title)
}

// Delete removes a task.
func (r *Runner) Delete(ctx context.Context, cmd *cli.Command) error {
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	t, err := resolveTask(store, cmd.StringArg("id"))
	if err != nil {
		return err
	}

	if err := store.Delete(ctx, t.ID); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %q\n", t.Title)
}

// Move repositions a task. With --ids it sets the complete order; otherwise from and to are
// 1-based positions in the list selected by --filter and --search.
func (r *Runner) Move(ctx context.Context, cmd *cli.Command) error {
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	if refs := cmd.StringSlice("ids"); len(refs) > 0 {
		ids := make([]string, 0, len(refs))
		for _, ref := range refs {
			t, err := resolveTask(store, ref)
			if err != nil {
				return err
			}
			ids = append(ids, t.ID)
		}
		if err := store.ReorderAll(ctx, ids); err != nil {
			return err
		}
		return r.writePlain("✓ Reordered %d tasks\n", len(ids))
	}

	from, err := position(cmd.StringArg("from"), "from")
	if err != nil {
		return err
	}
	to, err := position(cmd.StringArg("to"), "to")
	if err != nil {
		return err
	}

	applyQuery(store, cmd)
	if err := store.Reorder(ctx, tasks.MoveRequest{From: from - 1, To: to - 1}); err != nil {
		return err
	}
	return r.writePlain("✓ Moved %d → %d\n", from, to)
}

func position(arg, name string) (int, error) {
	if arg == "" {
		return 0, fmt.Errorf("%w: %s position", shared.ErrMissingArgument, name)
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", shared.ErrInvalidArgument, name, arg)
	}
	return n, nil
}

// Stats prints the completion projection.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	stats := store.Stats()
	if cmd.Bool("json") {
		return r.writeJSON(stats, true)
	}

	if err := r.writePlainHeader("Progress"); err != nil {
		return err
	}
	return r.writePlain("Completed:  %d\nPending:    %d\nOverdue:    %d\nTotal:      %d\nProgress:   %.0f%%\n",
		stats.Completed, stats.Pending, stats.Overdue, stats.Total, stats.Percentage)
}

// Categories prints categories with counts derived from the live tasks.
func (r *Runner) Categories(ctx context.Context, cmd *cli.Command) error {
	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	categories := store.Categories()
	if cmd.Bool("json") {
		return r.writeJSON(categories, true)
	}

	for _, c := range categories {
		if err := r.writePlain("%-10s %-10s %s %d\n", c.ID, c.Name, c.Color, c.TaskCount); err != nil {
			return err
		}
	}
	return nil
}

// Export writes the visible list in the chosen format.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	store, err := r.Store(ctx)
	if err != nil {
		return err
	}
	applyQuery(store, cmd)

	report := formatter.Report{
		Title:       "Tasks",
		GeneratedAt: r.now(),
		Query:       store.Query(),
		Stats:       store.Stats(),
		Tasks:       store.VisibleTasks(),
		Categories:  store.Categories(),
	}

	path, err := formatter.WriteExport(report, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("exported tasks", "path", path, "format", format, "count", len(report.Tasks))
	return r.writePlain("✓ Exported %d tasks to %s\n", len(report.Tasks), path)
}
