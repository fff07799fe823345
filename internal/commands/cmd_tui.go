package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tick/internal/core/task"
	"github.com/colonyops/tick/internal/tick"
	"github.com/colonyops/tick/internal/tui"
)

type TuiCmd struct {
	flags *Flags
	app   *tick.App
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *tick.App) *TuiCmd {
	return &TuiCmd{
		flags: flags,
		app:   app,
	}
}

// Register adds the tui command to the application
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:   "tui",
		Usage:  "Open the interactive task list",
		Action: cmd.run,
	})

	return app
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	var opts tui.Options

	watcher, err := cmd.app.Storage.Watch(log.Logger)
	if err != nil {
		log.Warn().Err(err).Msg("live reload disabled")
	}
	if watcher != nil {
		defer func() { _ = watcher.Close() }()

		changes, err := watcher.Watch(ctx, task.StorageKey)
		if err != nil {
			return fmt.Errorf("watch tasks: %w", err)
		}
		opts.Changes = changes
	}

	if cmd.app.Storage.Degraded {
		opts.Warnings = append(opts.Warnings, "Storage unavailable, changes will not be saved")
	}

	m := tui.New(ctx, cmd.app, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
