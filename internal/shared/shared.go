// package shared defines shared helpers
package shared

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// NewFileLogger creates a [log.Logger] that appends to the file at path, creating parent directories as needed.
//
// Used by the TUI so log output does not corrupt the rendered screen.
func NewFileLogger(path string) (*log.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return NewLogger(f), nil
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// ParseLogLevel converts a config level name to a [log.Level], falling back to info.
func ParseLogLevel(level string) log.Level {
	ll, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.InfoLevel
	}
	return ll
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

// NormalizeTitle trims surrounding whitespace from a task title.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(title)
}

// ParseDueDate parses a due date flag value relative to now.
//
// Accepts the quick options "today", "tomorrow" and "week" (seven days out), a calendar date in 2006-01-02 form (midnight local time) or an RFC 3339 timestamp.
// An empty value or "none" yields nil.
func ParseDueDate(value string, now time.Time) (*time.Time, error) {
	v := strings.ToLower(strings.TrimSpace(value))

	day := func(offset int) *time.Time {
		y, m, d := now.Date()
		t := time.Date(y, m, d+offset, 0, 0, 0, 0, now.Location())
		return &t
	}

	switch v {
	case "", "none":
		return nil, nil
	case "today":
		return day(0), nil
	case "tomorrow":
		return day(1), nil
	case "week":
		return day(7), nil
	}

	if t, err := time.ParseInLocation("2006-01-02", v, now.Location()); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(value)); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("%w: unrecognized due date %q", ErrInvalidArgument, value)
}
