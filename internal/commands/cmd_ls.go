package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tick/internal/core/task"
	"github.com/colonyops/tick/internal/tick"
	"github.com/colonyops/tick/pkg/iojson"
)

type LsCmd struct {
	flags *Flags
	app   *tick.App

	// flags
	category   string
	match      string
	jsonOutput bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *tick.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List tasks",
		UsageText: "tick ls [--category work] [--match 'milk*'] [--json]",
		Description: `Displays a table of tasks with their position, status, category, and due date.

The position in the first column is the reference accepted by done, edit, and rm.
It is stable across filters. --match filters task text with a glob pattern;
a pattern without metacharacters matches as a substring.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "category",
				Aliases:     []string{"c"},
				Usage:       "filter by category (all, personal, work, shopping)",
				Value:       string(task.CategoryAll),
				Destination: &cmd.category,
			},
			&cli.StringFlag{
				Name:        "match",
				Aliases:     []string{"m"},
				Usage:       "filter task text by glob pattern",
				Destination: &cmd.match,
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

type lsEntry struct {
	Position int `json:"position"`
	task.Task
}

func (cmd *LsCmd) run(_ context.Context, c *cli.Command) error {
	cat, err := task.ParseCategory(cmd.category)
	if err != nil {
		return err
	}

	out := c.Root().Writer

	tasks, err := task.Match(cmd.app.Tasks.List(cat), cmd.match)
	if err != nil {
		if cmd.jsonOutput {
			_ = iojson.WriteError(out, "invalid match pattern", map[string]any{"match": cmd.match})
		}
		return err
	}

	if cmd.jsonOutput {
		for _, t := range tasks {
			if err := iojson.WriteLine(out, lsEntry{Position: cmd.app.Tasks.Position(t.ID), Task: t}); err != nil {
				return err
			}
		}
		return nil
	}

	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(out, task.EmptyMessage(cat))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tDONE\tTASK\tCATEGORY\tDUE\tID")
	for _, t := range tasks {
		writeTaskRow(w, cmd.app.Tasks.Position(t.ID), t)
	}
	return w.Flush()
}
