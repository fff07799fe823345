package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tick/internal/core/logging"
	"github.com/colonyops/tick/internal/tick"
)

type EditCmd struct {
	flags *Flags
	app   *tick.App

	// flags
	due      string
	clearDue bool
}

// NewEditCmd creates a new edit command
func NewEditCmd(flags *Flags, app *tick.App) *EditCmd {
	return &EditCmd{flags: flags, app: app}
}

// Register adds the edit command to the application
func (cmd *EditCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "edit",
		Usage:     "Change the text or due date of a task",
		UsageText: "tick edit [--due 2026-01-31 | --clear-due] <ref> [text...]",
		Description: `Replaces the text of a task. When no text is given the current text is kept,
which allows changing only the due date. Category and completion are unchanged.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "due",
				Usage:       "new due date as YYYY-MM-DD",
				Destination: &cmd.due,
			},
			&cli.BoolFlag{
				Name:        "clear-due",
				Usage:       "remove the due date",
				Destination: &cmd.clearDue,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *EditCmd) run(ctx context.Context, c *cli.Command) error {
	ctx = commandContext(ctx, c)

	if cmd.due != "" && cmd.clearDue {
		return fmt.Errorf("--due and --clear-due are mutually exclusive")
	}

	id, err := resolveRef(cmd.app, c)
	if err != nil {
		return err
	}
	ctx = logging.WithTaskID(ctx, id)

	due, err := parseDue(cmd.due)
	if err != nil {
		return fmt.Errorf("due: %w", err)
	}

	if err := cmd.app.Tasks.StartEdit(ctx, id); err != nil {
		return err
	}
	current, _ := cmd.app.Tasks.Editing()

	text := strings.Join(c.Args().Tail(), " ")
	if text == "" {
		text = current.Text
	}
	if due == nil && !cmd.clearDue {
		due = current.DueDate
	}

	echoNotifications(cmd.app, c)

	t, err := cmd.app.Tasks.SaveEdit(ctx, id, text, due)
	if err != nil {
		_ = cmd.app.Tasks.CancelEdit(ctx, id)
		return fmt.Errorf("edit task: %w", err)
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "#%d %s\n", cmd.app.Tasks.Position(id), t.Text)
	return nil
}
