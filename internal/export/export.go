// Package export renders the task list in formats meant for other tools:
// CSV for spreadsheets and PDF for printing.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/colonyops/tick/internal/core/task"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// ParseFormat converts a flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatCSV, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json, csv or pdf)", s)
	}
}

const dueLayout = "2006-01-02"

var csvHeader = []string{"id", "text", "completed", "category", "due"}

// CSV writes one row per task after a header row.
func CSV(w io.Writer, tasks []task.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, t := range tasks {
		row := []string{t.ID, t.Text, strconv.FormatBool(t.Completed), string(t.Category), formatDue(t.DueDate)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// PDF writes a printable A4 checklist grouped by category. Categories with
// no tasks are left out.
func PDF(w io.Writer, tasks []task.Task, now time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Tasks")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 6, "Generated "+now.Format("2006-01-02 15:04"))
	pdf.Ln(10)

	for _, c := range task.Categories[1:] {
		group := task.Filter(tasks, c)
		if len(group) == 0 {
			continue
		}

		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(40, 8, strings.ToUpper(string(c[:1]))+string(c[1:]))
		pdf.Ln(9)

		pdf.SetFont("Arial", "", 10)
		for _, t := range group {
			mark := "[ ]"
			if t.Completed {
				mark = "[x]"
			}
			due := formatDue(t.DueDate)
			pdf.CellFormat(10, 6, mark, "", 0, "L", false, 0, "")
			pdf.CellFormat(140, 6, tr(t.Text), "", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, due, "", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

// formatDue renders the due date as the local calendar day, matching `tick ls`.
func formatDue(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Local().Format(dueLayout)
}
