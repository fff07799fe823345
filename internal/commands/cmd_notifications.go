package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tick/internal/tick"
	"github.com/colonyops/tick/pkg/iojson"
)

type NotificationsCmd struct {
	flags *Flags
	app   *tick.App

	// flags
	clear      bool
	jsonOutput bool
}

// NewNotificationsCmd creates a new notifications command
func NewNotificationsCmd(flags *Flags, app *tick.App) *NotificationsCmd {
	return &NotificationsCmd{flags: flags, app: app}
}

// Register adds the notifications command to the application
func (cmd *NotificationsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "notifications",
		Aliases:   []string{"log"},
		Usage:     "Show recent task notifications",
		UsageText: "tick notifications [--json] [--clear]",
		Description: `Lists the notifications raised by task operations, newest first. The history
is capped at notifications.limit entries.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "clear",
				Usage:       "delete the notification history",
				Destination: &cmd.clear,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *NotificationsCmd) run(ctx context.Context, c *cli.Command) error {
	out := c.Root().Writer

	if cmd.clear {
		if err := cmd.app.Notify.Clear(ctx); err != nil {
			return fmt.Errorf("clear notifications: %w", err)
		}
		_, _ = fmt.Fprintln(out, "Notifications cleared")
		return nil
	}

	history, err := cmd.app.Notify.History(ctx)
	if err != nil {
		return fmt.Errorf("list notifications: %w", err)
	}

	if cmd.jsonOutput {
		for _, n := range history {
			if err := iojson.WriteLine(out, n); err != nil {
				return err
			}
		}
		return nil
	}

	if len(history) == 0 {
		_, _ = fmt.Fprintln(out, "No notifications")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, n := range history {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", n.CreatedAt.Local().Format("2006-01-02 15:04:05"), n.Level, n.Message)
	}
	return w.Flush()
}
