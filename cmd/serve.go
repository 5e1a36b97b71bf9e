package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/desertthunder/taskx/internal/server"
	"github.com/desertthunder/taskx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve exposes the store over HTTP until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Address()
	}

	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(addr, store, shared.WithLogger(r.logger, "component", "http"))
	return srv.ListenAndServe(ctx)
}
