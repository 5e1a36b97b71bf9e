package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/taskx/internal/gateway"
	"github.com/desertthunder/taskx/internal/shared"
	"github.com/desertthunder/taskx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	logger  *log.Logger
	output  io.Writer
	gateway gateway.Gateway
	now     func() time.Time

	mu     sync.Mutex
	store  *tasks.Store
	closer func() error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
	// Gateway replaces the backend selected by Config.Storage when set.
	Gateway gateway.Gateway
	Now     func() time.Time
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Runner{
		config:  opts.Config,
		logger:  opts.Logger,
		output:  opts.Output,
		gateway: opts.Gateway,
		now:     opts.Now,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, listCommand, addCommand, editCommand, doneCommand, deleteCommand,
		moveCommand, statsCommand, categoriesCommand, exportCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger. Must be called before the store is opened.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Store opens the configured gateway on first use and returns a loaded [tasks.Store].
func (r *Runner) Store(ctx context.Context) (*tasks.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.store != nil {
		return r.store, nil
	}

	gw := r.gateway
	if gw == nil {
		opened, closer, err := gateway.Open(r.config, r.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
		gw, r.closer = opened, closer
	}

	store := tasks.NewStore(tasks.StoreOpts{
		Gateway:         gw,
		Logger:          shared.WithLogger(r.logger, "component", "store"),
		Now:             r.now,
		DefaultCategory: r.config.Tasks.DefaultCategory,
	})
	if err := store.Load(ctx); err != nil {
		return nil, err
	}

	r.store = store
	return store, nil
}

// Close releases the storage backend opened by [Runner.Store].
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closer == nil {
		return nil
	}
	err := r.closer()
	r.closer = nil
	r.store = nil
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) error {
	rule := "═══════════════════════════════════════\n"
	return r.writePlain("%s%s\n%s", rule, title, rule)
}
