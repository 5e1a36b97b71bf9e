package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/taskx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the default config file unless one already exists.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil {
		r.logger.Info("config file already exists", "path", path)
		return r.writePlain("Config already exists at %s\n", path)
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	return r.writePlain("✓ Wrote %s\n", path)
}

// SetupDatabase creates the SQLite database named by the config at --config and runs migrations.
//
// A missing config file is created from the defaults first.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using current config", "error", err)
		}
	}
	if loaded, err := shared.LoadConfig(configPath); err == nil {
		config = loaded
	} else {
		r.logger.Warn("failed to load config, using current config", "error", err)
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if !cmd.Bool("status") {
		r.logger.Info("running database migrations")
		if err := shared.RunMigrationsContext(ctx, db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	statuses, err := shared.Migrations(ctx, db)
	if err != nil {
		return err
	}

	if err := r.writePlainHeader("Migrations: " + config.Database.Path); err != nil {
		return err
	}
	for _, s := range statuses {
		mark := "pending"
		if s.Applied {
			mark = "applied"
		}
		if err := r.writePlain("%04d %-24s %s\n", s.Version, s.Name, mark); err != nil {
			return err
		}
	}
	return nil
}
