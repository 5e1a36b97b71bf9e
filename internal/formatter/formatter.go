// package formatter exports task lists to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/shared"
	"github.com/desertthunder/taskx/internal/tasks"
)

const dateLayout = "2006-01-02"

// Format names an export encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// ParseFormat accepts csv, markdown (or md), txt (or text) and json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
	}
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// Report is the input to every exporter.
type Report struct {
	Title       string            `json:"title"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Query       tasks.Query       `json:"query"`
	Stats       tasks.Stats       `json:"stats"`
	Tasks       []models.Task     `json:"tasks"`
	Categories  []models.Category `json:"categories"`
}

func (r Report) category(id string) models.Category {
	return models.ResolveCategory(r.Categories, id)
}

func formatDue(t models.Task) string {
	if t.DueDate == nil {
		return ""
	}
	return t.DueDate.Format(dateLayout)
}

// ExportToCSV writes one row per task with columns: ID, Title, Category, Due, Completed, Order, Created
func ExportToCSV(r Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Category", "Due", "Completed", "Order", "Created"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, task := range r.Tasks {
		record := []string{
			task.ID,
			task.Title,
			r.category(task.Category).Name,
			formatDue(task),
			strconv.FormatBool(task.Completed),
			strconv.Itoa(task.Order),
			task.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a checklist grouped under a summary header
func ExportToMarkdown(r Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", r.Title)
	fmt.Fprintf(&buf, "**Progress**: %d/%d completed (%.0f%%)\n", r.Stats.Completed, r.Stats.Total, r.Stats.Percentage)
	if r.Stats.Overdue > 0 {
		fmt.Fprintf(&buf, "**Overdue**: %d\n", r.Stats.Overdue)
	}
	if q := describeQuery(r.Query); q != "" {
		fmt.Fprintf(&buf, "**View**: %s\n", q)
	}
	buf.WriteString("\n## Tasks\n\n")

	if len(r.Tasks) == 0 {
		buf.WriteString("_No tasks._\n")
		return buf.Bytes(), nil
	}

	for _, task := range r.Tasks {
		mark := " "
		if task.Completed {
			mark = "x"
		}
		line := fmt.Sprintf("- [%s] %s `%s`", mark, task.Title, r.category(task.Category).Name)
		if due := formatDue(task); due != "" {
			line += fmt.Sprintf(" (due %s)", due)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// ExportToText renders a numbered plain text list
func ExportToText(r Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", r.Title)
	fmt.Fprintf(&buf, "Completed: %d/%d\n\n", r.Stats.Completed, r.Stats.Total)

	for i, task := range r.Tasks {
		status := "[ ]"
		if task.Completed {
			status = "[x]"
		}
		fmt.Fprintf(&buf, "%d. %s %s (%s)", i+1, status, task.Title, r.category(task.Category).Name)
		if due := formatDue(task); due != "" {
			fmt.Fprintf(&buf, " due %s", due)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToJSON encodes the whole report as indented JSON
func ExportToJSON(r Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Export encodes r in format f.
func Export(r Report, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(r)
	case FormatMarkdown:
		return ExportToMarkdown(r)
	case FormatText:
		return ExportToText(r)
	case FormatJSON:
		return ExportToJSON(r)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, f)
	}
}

// WriteExport encodes r and writes it to path.
//
// Defaults to tasks.{ext} in the working directory.
func WriteExport(r Report, f Format, path string) (string, error) {
	if path == "" {
		path = "tasks." + f.Extension()
	}

	data, err := Export(r, f)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

func describeQuery(q tasks.Query) string {
	parts := []string{}
	if q.Filter != "" && q.Filter != tasks.FilterAll {
		parts = append(parts, "filter "+string(q.Filter))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		parts = append(parts, fmt.Sprintf("search %q", s))
	}
	return strings.Join(parts, ", ")
}
