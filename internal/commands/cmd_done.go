package commands

import (
	"context"
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tick/internal/tick"
)

type DoneCmd struct {
	flags *Flags
	app   *tick.App
}

// NewDoneCmd creates a new done command
func NewDoneCmd(flags *Flags, app *tick.App) *DoneCmd {
	return &DoneCmd{flags: flags, app: app}
}

// Register adds the done command to the application
func (cmd *DoneCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "done",
		Aliases:   []string{"toggle"},
		Usage:     "Toggle tasks between done and open",
		UsageText: "tick done <ref>...",
		Action:    cmd.run,
	})

	return app
}

func (cmd *DoneCmd) run(ctx context.Context, c *cli.Command) error {
	ctx = commandContext(ctx, c)

	refs := c.Args().Slice()
	if len(refs) == 0 {
		return fmt.Errorf("task reference required (a number from 'tick ls' or an id prefix)")
	}

	// Resolve everything first so positions refer to the same list.
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := cmd.app.Tasks.Resolve(ref)
		if err != nil {
			return err
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}

	echoNotifications(cmd.app, c)

	out := c.Root().Writer
	for _, id := range ids {
		t, err := cmd.app.Tasks.ToggleComplete(ctx, id)
		if err != nil {
			return err
		}

		state := "open"
		if t.Completed {
			state = "done"
		}
		_, _ = fmt.Fprintf(out, "#%d %s: %s\n", cmd.app.Tasks.Position(id), state, t.Text)
	}

	return nil
}
