package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/tick/internal/core/logging"
	"github.com/colonyops/tick/internal/tick"
)

type RmCmd struct {
	flags *Flags
	app   *tick.App

	// flags
	yes bool

	// confirm asks the user before deleting. Replaced in tests.
	confirm func(title string) (bool, error)
	// interactive reports whether a prompt can be shown.
	interactive func() bool
}

// NewRmCmd creates a new rm command
func NewRmCmd(flags *Flags, app *tick.App) *RmCmd {
	return &RmCmd{
		flags:       flags,
		app:         app,
		confirm:     confirmPrompt,
		interactive: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
	}
}

// Register adds the rm command to the application
func (cmd *RmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rm",
		Aliases:   []string{"delete"},
		Usage:     "Delete a task",
		UsageText: "tick rm [--yes] <ref>",
		Description: `Deletes a task after confirmation. The prompt is skipped with --yes or when
stdin is not a terminal. The deletion can be reverted with 'tick undo' until the
next deletion or until undo.window elapses.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "skip confirmation",
				Destination: &cmd.yes,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RmCmd) run(ctx context.Context, c *cli.Command) error {
	ctx = commandContext(ctx, c)

	id, err := resolveRef(cmd.app, c)
	if err != nil {
		return err
	}
	ctx = logging.WithTaskID(ctx, id)

	pos := cmd.app.Tasks.Position(id)

	if !cmd.yes && cmd.interactive() {
		var text string
		for _, t := range cmd.app.Tasks.All() {
			if t.ID == id {
				text = t.Text
			}
		}

		ok, err := cmd.confirm(fmt.Sprintf("Delete %q?", text))
		if err != nil {
			return fmt.Errorf("confirm: %w", err)
		}
		if !ok {
			_, _ = fmt.Fprintln(c.Root().Writer, "Aborted")
			return nil
		}
	}

	echoNotifications(cmd.app, c)

	rec, err := cmd.app.Tasks.Delete(ctx, id)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "#%d %s (run 'tick undo' to restore)\n", pos, rec.Task.Text)
	return nil
}

func confirmPrompt(title string) (bool, error) {
	ok := false
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Delete").
		Negative("Cancel").
		Value(&ok).
		Run()
	return ok, err
}
