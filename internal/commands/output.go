package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tick/internal/core/logging"
	"github.com/colonyops/tick/internal/core/notify"
	"github.com/colonyops/tick/internal/core/task"
	"github.com/colonyops/tick/internal/tick"
)

// dueLayout is the date format accepted by --due and shown in listings.
const dueLayout = "2006-01-02"

// echoNotifications prints every notification published during the command
// to the root writer.
func echoNotifications(app *tick.App, c *cli.Command) {
	out := c.Root().Writer
	app.Notify.Subscribe(func(n notify.Notification) {
		switch n.Level {
		case notify.LevelError:
			_, _ = fmt.Fprintf(out, "error: %s\n", n.Message)
		case notify.LevelWarning:
			_, _ = fmt.Fprintf(out, "warning: %s\n", n.Message)
		default:
			_, _ = fmt.Fprintln(out, n.Message)
		}
	})
}

// commandContext tags the context for log correlation.
func commandContext(ctx context.Context, c *cli.Command) context.Context {
	return logging.WithCommand(ctx, c.Name)
}

// parseDue parses a --due value in the local time zone. Empty means no date.
func parseDue(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(dueLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("want YYYY-MM-DD, got %q", s)
	}
	return &d, nil
}

// taskInput validates the category and due flags shared by add and import.
func taskInput(category, due string) (task.Category, *time.Time, error) {
	var (
		errs criterio.FieldErrorsBuilder
		cat  task.Category
		d    *time.Time
		err  error
	)

	if cat, err = task.ParseCategory(category); err != nil {
		errs = errs.Append("category", err)
	}
	if d, err = parseDue(due); err != nil {
		errs = errs.Append("due", err)
	}

	return cat, d, errs.ToError()
}

// resolveRef resolves a single positional task reference.
func resolveRef(app *tick.App, c *cli.Command) (string, error) {
	if c.Args().Len() == 0 {
		return "", fmt.Errorf("task reference required (a number from 'tick ls' or an id prefix)")
	}
	return app.Tasks.Resolve(c.Args().First())
}

func formatDue(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Local().Format(dueLayout)
}

func writeTaskRow(w io.Writer, pos int, t task.Task) {
	mark := "[ ]"
	if t.Completed {
		mark = "[x]"
	}
	_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", pos, mark, t.Text, t.Category, formatDue(t.DueDate), shortID(t.ID))
}

// shortID returns the random tail of a UUIDv7, which is more distinctive
// than its time-ordered head.
func shortID(id string) string {
	if i := strings.LastIndexByte(id, '-'); i >= 0 && len(id)-i > 8 {
		return id[len(id)-8:]
	}
	return id
}
