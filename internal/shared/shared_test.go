package shared

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDueDate(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

	tc := []struct {
		name    string
		value   string
		want    *time.Time
		wantErr bool
	}{
		{name: "empty", value: "", want: nil},
		{name: "none", value: "none", want: nil},
		{name: "today", value: "today", want: ptr(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))},
		{name: "tomorrow", value: " Tomorrow ", want: ptr(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC))},
		{name: "week", value: "week", want: ptr(time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC))},
		{name: "calendar date", value: "2024-12-25", want: ptr(time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC))},
		{name: "rfc3339", value: "2024-04-01T09:00:00Z", want: ptr(time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC))},
		{name: "garbage", value: "someday", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDueDate(tt.value, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDueDate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("ParseDueDate() = %v, want %v", got, tt.want)
			}
			if got != nil && !got.Equal(*tt.want) {
				t.Errorf("ParseDueDate() = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	t.Run("GenerateID", func(t *testing.T) {
		a, b := GenerateID(), GenerateID()
		if a == "" || a == b {
			t.Errorf("expected distinct non-empty ids, got %q and %q", a, b)
		}
	})

	t.Run("NormalizeTitle", func(t *testing.T) {
		if got := NormalizeTitle("  Buy milk \n"); got != "Buy milk" {
			t.Errorf("NormalizeTitle() = %q", got)
		}
	})

	t.Run("ParseLogLevel", func(t *testing.T) {
		if got := ParseLogLevel("DEBUG"); got.String() != "debug" {
			t.Errorf("expected debug, got %s", got)
		}
		if got := ParseLogLevel("bogus"); got.String() != "info" {
			t.Errorf("expected info fallback, got %s", got)
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "taskx.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		logger.Info("hello")
	})
}

func ptr(t time.Time) *time.Time { return &t }
