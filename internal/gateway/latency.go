package gateway

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/taskx/internal/models"
	"github.com/desertthunder/taskx/internal/shared"
	"golang.org/x/time/rate"
)

// Delays holds the simulated round-trip time for each gateway operation.
type Delays struct {
	Read    time.Duration
	Create  time.Duration
	Update  time.Duration
	Delete  time.Duration
	Reorder time.Duration
}

// DefaultDelays mirrors the mock service the task manager was first built against.
func DefaultDelays() Delays {
	return Delays{
		Read:    200 * time.Millisecond,
		Create:  300 * time.Millisecond,
		Update:  250 * time.Millisecond,
		Delete:  200 * time.Millisecond,
		Reorder: 200 * time.Millisecond,
	}
}

// LatencyOpts configures a [Latency] decorator.
type LatencyOpts struct {
	Delays            Delays
	RequestsPerSecond float64 // 0 disables throttling
	FailRate          float64 // probability in [0,1] that a call fails with [shared.ErrSimulatedFailure]
	Logger            *log.Logger
}

// LatencyOptsFromConfig builds decorator options from the [gateway] config section.
func LatencyOptsFromConfig(cfg *shared.Config, logger *log.Logger) LatencyOpts {
	g := cfg.Gateway
	opts := LatencyOpts{
		RequestsPerSecond: g.RequestsPerSecond,
		FailRate:          g.FailRate,
		Logger:            logger,
	}
	if g.SimulateLatency {
		opts.Delays = Delays{
			Read:    g.ReadDelay,
			Create:  g.CreateDelay,
			Update:  g.UpdateDelay,
			Delete:  g.DeleteDelay,
			Reorder: g.ReorderDelay,
		}
	}
	return opts
}

// enabled reports whether the options change anything about a call.
func (o LatencyOpts) enabled() bool {
	return o.Delays != (Delays{}) || o.RequestsPerSecond > 0 || o.FailRate > 0
}

// Latency wraps a [Gateway] so every call waits before reaching the backend.
//
// A call first waits on the limiter, then sleeps its operation delay, then may fail by
// [LatencyOpts.FailRate]. Cancelling ctx at any point aborts the call without touching the backend.
type Latency struct {
	next    Gateway
	delays  Delays
	limiter *rate.Limiter
	fail    float64
	roll    func() float64
	logger  *log.Logger
}

// NewLatency decorates next.
func NewLatency(next Gateway, opts LatencyOpts) *Latency {
	l := &Latency{
		next:   next,
		delays: opts.Delays,
		fail:   opts.FailRate,
		roll:   rand.Float64,
		logger: opts.Logger,
	}
	if opts.RequestsPerSecond > 0 {
		l.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return l
}

func (l *Latency) wait(ctx context.Context, op string, delay time.Duration) error {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: %w: %w", op, shared.ErrTimeout, err)
		}
	}

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w: %w", op, shared.ErrTimeout, ctx.Err())
		case <-timer.C:
		}
	}

	if l.fail > 0 && l.roll() < l.fail {
		if l.logger != nil {
			l.logger.Debug("injected gateway failure", "op", op)
		}
		return fmt.Errorf("%s: %w", op, shared.ErrSimulatedFailure)
	}
	return nil
}

func (l *Latency) GetAllTasks(ctx context.Context) ([]models.Task, error) {
	if err := l.wait(ctx, "GetAllTasks", l.delays.Read); err != nil {
		return nil, err
	}
	return l.next.GetAllTasks(ctx)
}

func (l *Latency) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	if err := l.wait(ctx, "GetAllCategories", l.delays.Read); err != nil {
		return nil, err
	}
	return l.next.GetAllCategories(ctx)
}

func (l *Latency) GetTask(ctx context.Context, id string) (models.Task, error) {
	if err := l.wait(ctx, "GetTask", l.delays.Read); err != nil {
		return models.Task{}, err
	}
	return l.next.GetTask(ctx, id)
}

func (l *Latency) CreateTask(ctx context.Context, draft models.Task) (models.Task, error) {
	if err := l.wait(ctx, "CreateTask", l.delays.Create); err != nil {
		return models.Task{}, err
	}
	return l.next.CreateTask(ctx, draft)
}

func (l *Latency) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	if err := l.wait(ctx, "UpdateTask", l.delays.Update); err != nil {
		return models.Task{}, err
	}
	return l.next.UpdateTask(ctx, id, patch)
}

func (l *Latency) DeleteTask(ctx context.Context, id string) (models.Task, error) {
	if err := l.wait(ctx, "DeleteTask", l.delays.Delete); err != nil {
		return models.Task{}, err
	}
	return l.next.DeleteTask(ctx, id)
}

func (l *Latency) ReorderTasks(ctx context.Context, ids []string) ([]models.Task, error) {
	if err := l.wait(ctx, "ReorderTasks", l.delays.Reorder); err != nil {
		return nil, err
	}
	return l.next.ReorderTasks(ctx, ids)
}
