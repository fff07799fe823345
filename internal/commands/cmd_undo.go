package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tick/internal/tick"
)

type UndoCmd struct {
	flags *Flags
	app   *tick.App
}

// NewUndoCmd creates a new undo command
func NewUndoCmd(flags *Flags, app *tick.App) *UndoCmd {
	return &UndoCmd{flags: flags, app: app}
}

// Register adds the undo command to the application
func (cmd *UndoCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "undo",
		Usage:     "Restore the most recently deleted task",
		UsageText: "tick undo",
		Description: `Reinserts the last deleted task at the position it was deleted from.
Only the most recent deletion can be restored, and only once.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *UndoCmd) run(ctx context.Context, c *cli.Command) error {
	ctx = commandContext(ctx, c)

	echoNotifications(cmd.app, c)

	if _, ok := cmd.app.Tasks.Undo(ctx); !ok {
		_, _ = fmt.Fprintln(c.Root().Writer, "Nothing to undo")
	}
	return nil
}
