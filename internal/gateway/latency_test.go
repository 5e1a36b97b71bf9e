package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/shared"
)

// countingGateway records how many calls reach the backend.
type countingGateway struct {
	*Memory
	creates int
}

func (c *countingGateway) CreateTask(ctx context.Context, draft models.Task) (models.Task, error) {
	c.creates++
	return c.Memory.CreateTask(ctx, draft)
}

func TestLatency(t *testing.T) {
	t.Run("delays each call", func(t *testing.T) {
		l := NewLatency(NewMemory(), LatencyOpts{Delays: Delays{Read: 30 * time.Millisecond}})

		start := time.Now()
		if _, err := l.GetAllTasks(context.Background()); err != nil {
			t.Fatalf("GetAllTasks failed: %v", err)
		}
		if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
			t.Errorf("expected at least 30ms delay, got %v", elapsed)
		}
	})

	t.Run("cancelled context skips backend", func(t *testing.T) {
		backend := &countingGateway{Memory: NewMemory()}
		l := NewLatency(backend, LatencyOpts{Delays: Delays{Create: time.Second}})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := l.CreateTask(ctx, models.Task{Title: "late"})
		if !errors.Is(err, shared.ErrTimeout) || !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected timeout wrapping deadline exceeded, got %v", err)
		}
		if backend.creates != 0 {
			t.Errorf("expected no backend calls, got %d", backend.creates)
		}
	})

	t.Run("injected failure", func(t *testing.T) {
		backend := &countingGateway{Memory: NewMemory()}
		l := NewLatency(backend, LatencyOpts{FailRate: 0.5})

		l.roll = func() float64 { return 0.1 }
		if _, err := l.CreateTask(context.Background(), models.Task{Title: "x"}); !errors.Is(err, shared.ErrSimulatedFailure) {
			t.Errorf("expected ErrSimulatedFailure, got %v", err)
		}
		if backend.creates != 0 {
			t.Errorf("failed call must not reach backend, got %d creates", backend.creates)
		}

		l.roll = func() float64 { return 0.9 }
		if _, err := l.CreateTask(context.Background(), models.Task{Title: "x"}); err != nil {
			t.Errorf("expected success, got %v", err)
		}
	})

	t.Run("throttles requests", func(t *testing.T) {
		l := NewLatency(NewMemory(), LatencyOpts{RequestsPerSecond: 20})
		ctx := context.Background()

		start := time.Now()
		for range 3 {
			if _, err := l.GetAllCategories(ctx); err != nil {
				t.Fatalf("GetAllCategories failed: %v", err)
			}
		}
		if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
			t.Errorf("expected throttling to take at least 90ms, got %v", elapsed)
		}
	})

	t.Run("options from config", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		opts := LatencyOptsFromConfig(cfg, nil)
		if opts.Delays != DefaultDelays() {
			t.Errorf("expected default delays, got %+v", opts.Delays)
		}

		cfg.Gateway.SimulateLatency = false
		if opts := LatencyOptsFromConfig(cfg, nil); opts.enabled() {
			t.Errorf("expected disabled options, got %+v", opts)
		}
	})
}
