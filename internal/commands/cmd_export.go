package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tick/internal/core/task"
	"github.com/colonyops/tick/internal/export"
	"github.com/colonyops/tick/internal/tick"
	"github.com/colonyops/tick/pkg/iojson"
)

type ExportCmd struct {
	flags *Flags
	app   *tick.App

	format string
}

// NewExportCmd creates a new export command
func NewExportCmd(flags *Flags, app *tick.App) *ExportCmd {
	return &ExportCmd{flags: flags, app: app}
}

// Register adds the export command to the application
func (cmd *ExportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "export",
		Usage:     "Write all tasks as JSON, CSV or PDF",
		UsageText: "tick export [--format json|csv|pdf] > tasks.json",
		Description: `Writes the full task list. JSON uses the stored format and can be read
back with 'tick import'. CSV has one row per task. PDF is a printable
checklist grouped by category.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format: json, csv or pdf",
				Value:       string(export.FormatJSON),
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ExportCmd) run(_ context.Context, c *cli.Command) error {
	format, err := export.ParseFormat(cmd.format)
	if err != nil {
		return err
	}

	tasks := cmd.app.Tasks.All()
	out := c.Root().Writer

	switch format {
	case export.FormatCSV:
		return export.CSV(out, tasks)
	case export.FormatPDF:
		return export.PDF(out, tasks, time.Now())
	default:
		return iojson.WriteWith(out, c.Root().ErrWriter, tasks)
	}
}

type ImportCmd struct {
	flags *Flags
	app   *tick.App

	reader iojson.FileReader[[]json.RawMessage]
}

// NewImportCmd creates a new import command
func NewImportCmd(flags *Flags, app *tick.App) *ImportCmd {
	return &ImportCmd{flags: flags, app: app}
}

// Register adds the import command to the application
func (cmd *ImportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "import",
		Usage:     "Append tasks from a JSON array",
		UsageText: "tick import -f tasks.json",
		Description: `Appends tasks from a JSON array in the format written by 'tick export'.
Every imported task gets a new id. Completion state and due dates are kept.
Each record is checked against the task record schema first. Records
that fail the schema or carry invalid text are skipped and reported.`,
		Flags:  []cli.Flag{cmd.reader.Flag()},
		Action: cmd.run,
	})

	return app
}

func (cmd *ImportCmd) run(ctx context.Context, c *cli.Command) error {
	ctx = commandContext(ctx, c)

	records, err := cmd.reader.Read()
	if err != nil {
		return err
	}

	out := c.Root().Writer
	imported, skipped := 0, 0

	for i, raw := range records {
		t, rec, err := cmd.importRecord(ctx, raw)
		if err != nil {
			if !errors.Is(err, task.ErrValidation) {
				return fmt.Errorf("import record %d: %w", i, err)
			}
			skipped++
			_, _ = fmt.Fprintf(out, "skipped record %d: %v\n", i, err)
			continue
		}

		if rec.Completed {
			if _, err := cmd.app.Tasks.ToggleComplete(ctx, t.ID); err != nil {
				return fmt.Errorf("import record %d: %w", i, err)
			}
		}
		imported++
	}

	_, _ = fmt.Fprintf(out, "Imported %d task(s)", imported)
	if skipped > 0 {
		_, _ = fmt.Fprintf(out, ", skipped %d", skipped)
	}
	_, _ = fmt.Fprintln(out)
	return nil
}

func (cmd *ImportCmd) importRecord(ctx context.Context, raw json.RawMessage) (task.Task, task.Task, error) {
	if err := task.CheckRecord(raw); err != nil {
		return task.Task{}, task.Task{}, err
	}

	var rec task.Task
	if err := json.Unmarshal(raw, &rec); err != nil {
		return task.Task{}, task.Task{}, &task.ValidationError{Field: "record", Message: err.Error()}
	}

	t, err := cmd.app.Tasks.Add(ctx, rec.Text, rec.Category, rec.DueDate)
	return t, rec, err
}
