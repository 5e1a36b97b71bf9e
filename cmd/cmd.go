// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// queryFlags select the visible list the same way the TUI filter bar and search box do.
func queryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "Filter: all, pending, completed, overdue or a category id",
			Value:   "all",
		},
		&cli.StringFlag{
			Name:    "search",
			Aliases: []string{"s"},
			Usage:   "Case-insensitive title search",
		},
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output JSON",
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and storage",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config file from the built-in defaults",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Create the SQLite database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "status",
						Usage: "Only print migration status",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List tasks in manual order",
		Flags:   append(queryFlags(), jsonFlag()),
		Action:  r.List,
	}
}

func addCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Create a task",
		ArgsUsage: "<title...>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "category",
				Aliases: []string{"c"},
				Usage:   "Category id",
			},
			&cli.StringFlag{
				Name:    "due",
				Aliases: []string{"d"},
				Usage:   "Due date: today, tomorrow, week or YYYY-MM-DD",
			},
		},
		Action: r.Add,
	}
}

func editCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Change a task's title, category or due date",
		ArgsUsage: "<id|position>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "title",
				Aliases: []string{"t"},
				Usage:   "New title",
			},
			&cli.StringFlag{
				Name:    "category",
				Aliases: []string{"c"},
				Usage:   "New category id",
			},
			&cli.StringFlag{
				Name:    "due",
				Aliases: []string{"d"},
				Usage:   "New due date: today, tomorrow, week or YYYY-MM-DD",
			},
			&cli.BoolFlag{
				Name:  "clear-due",
				Usage: "Remove the due date",
			},
		},
		Action: r.Edit,
	}
}

func doneCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "done",
		Aliases:   []string{"toggle"},
		Usage:     "Toggle a task's completion",
		ArgsUsage: "<id|position>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Action: r.Done,
	}
}

func deleteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a task",
		ArgsUsage: "<id|position>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Action: r.Delete,
	}
}

func moveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "move",
		Aliases:   []string{"mv"},
		Usage:     "Move a task within the visible list, or set the full order with --ids",
		ArgsUsage: "<from> <to>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "from"},
			&cli.StringArg{Name: "to"},
		},
		Flags: append(queryFlags(),
			&cli.StringSliceFlag{
				Name:  "ids",
				Usage: "Complete task order, first to last",
			},
		),
		Action: r.Move,
	}
}

func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show completion statistics",
		Flags:  []cli.Flag{jsonFlag()},
		Action: r.Stats,
	}
}

func categoriesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "categories",
		Aliases: []string{"cats"},
		Usage:   "List categories with live task counts",
		Flags:   []cli.Flag{jsonFlag()},
		Action:  r.Categories,
	}
}

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the visible list to a file",
		Flags: append(queryFlags(),
			&cli.StringFlag{
				Name:  "format",
				Usage: "Export format: csv, markdown, txt or json",
				Value: "markdown",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: tasks.<ext>)",
			},
		),
		Action: r.Export,
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the task store over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default: server.host:server.port)",
			},
		},
		Action: r.Serve,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log file path",
				Value: "./tmp/taskx-tui.log",
			},
		},
		Action: r.TUI,
	}
}
