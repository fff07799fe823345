package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tick/internal/tick"
)

type AddCmd struct {
	flags *Flags
	app   *tick.App

	// flags
	category string
	due      string
}

// NewAddCmd creates a new add command
func NewAddCmd(flags *Flags, app *tick.App) *AddCmd {
	return &AddCmd{flags: flags, app: app}
}

// Register adds the add command to the application
func (cmd *AddCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "add",
		Aliases:   []string{"a"},
		Usage:     "Add a task",
		UsageText: "tick add [--category personal] [--due 2026-01-31] <text...>",
		Description: `Adds a task to the end of the list. All positional arguments are joined
into the task text.

The category defaults to tasks.default_category from the config file. Adding
with --category all files the task under personal.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "category",
				Aliases:     []string{"c"},
				Usage:       "task category (personal, work, shopping)",
				Destination: &cmd.category,
			},
			&cli.StringFlag{
				Name:        "due",
				Usage:       "due date as YYYY-MM-DD",
				Destination: &cmd.due,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	ctx = commandContext(ctx, c)

	category := cmd.category
	if category == "" {
		category = string(cmd.app.Config.Tasks.DefaultCategory)
	}

	cat, due, err := taskInput(category, cmd.due)
	if err != nil {
		return err
	}

	echoNotifications(cmd.app, c)

	t, err := cmd.app.Tasks.Add(ctx, strings.Join(c.Args().Slice(), " "), cat, due)
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "#%d %s\n", cmd.app.Tasks.Position(t.ID), shortID(t.ID))
	return nil
}
