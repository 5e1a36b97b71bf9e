package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/taskx/internal/shared"
	"github.com/desertthunder/taskx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI over the configured store.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// stdout belongs to the UI
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	store, err := r.Store(ctx)
	if err != nil {
		return err
	}
	return ui.Run(ctx, store)
}
