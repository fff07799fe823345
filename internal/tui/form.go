package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/tick/internal/core/styles"
	"github.com/colonyops/tick/internal/core/task"
)

const dueLayout = "2006-01-02"

type formMode int

const (
	formAdd formMode = iota
	formEdit
)

const (
	fieldText = iota
	fieldDue
	fieldCategory
)

// taskForm is the inline add/edit form. The category field is only shown
// when adding.
type taskForm struct {
	mode     formMode
	taskID   string
	category task.Category
	text     textinput.Model
	due      textinput.Model
	focus    int
	err      string
}

func newTextInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = ""
	return ti
}

func newAddForm(category task.Category) *taskForm {
	if !category.IsStorable() {
		category = task.FallbackCategory
	}
	f := &taskForm{
		mode:     formAdd,
		category: category,
		text:     newTextInput("What needs doing?", task.MaxTextLength),
		due:      newTextInput("YYYY-MM-DD (optional)", len(dueLayout)),
	}
	f.text.Focus()
	return f
}

func newEditForm(t task.Task) *taskForm {
	f := &taskForm{
		mode:     formEdit,
		taskID:   t.ID,
		category: t.Category,
		text:     newTextInput("", task.MaxTextLength),
		due:      newTextInput("YYYY-MM-DD (optional)", len(dueLayout)),
	}
	f.text.SetValue(t.Text)
	if t.DueDate != nil {
		f.due.SetValue(t.DueDate.Local().Format(dueLayout))
	}
	f.text.Focus()
	return f
}

func (f *taskForm) fieldCount() int {
	if f.mode == formAdd {
		return 3
	}
	return 2
}

func (f *taskForm) setFocus(i int) {
	n := f.fieldCount()
	f.focus = ((i % n) + n) % n
	f.text.Blur()
	f.due.Blur()
	switch f.focus {
	case fieldText:
		f.text.Focus()
	case fieldDue:
		f.due.Focus()
	}
}

// cycleCategory moves the category selection by delta, skipping the
// filter-only category.
func (f *taskForm) cycleCategory(delta int) {
	storable := slices.DeleteFunc(slices.Clone(task.Categories), func(c task.Category) bool {
		return !c.IsStorable()
	})
	i := slices.Index(storable, f.category)
	n := len(storable)
	f.category = storable[((i+delta)%n+n)%n]
}

// Update handles a key press that is not a submit or cancel.
func (f *taskForm) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return nil
	}

	if f.focus == fieldCategory {
		switch msg.String() {
		case "left", "h":
			f.cycleCategory(-1)
		case "right", "l", " ":
			f.cycleCategory(1)
		}
		return nil
	}

	f.err = ""

	var cmd tea.Cmd
	if f.focus == fieldDue {
		f.due, cmd = f.due.Update(msg)
	} else {
		f.text, cmd = f.text.Update(msg)
	}
	return cmd
}

// values returns the entered text and parsed due date. Text validation is
// left to the task store so both surfaces report the same messages.
func (f *taskForm) values() (string, *time.Time, error) {
	raw := strings.TrimSpace(f.due.Value())
	if raw == "" {
		return f.text.Value(), nil, nil
	}

	d, err := time.ParseInLocation(dueLayout, raw, time.Local)
	if err != nil {
		return "", nil, &task.ValidationError{Field: "due", Message: "Due date must be YYYY-MM-DD"}
	}
	return f.text.Value(), &d, nil
}

func (f *taskForm) setError(err error) {
	f.err = err.Error()
}

func (f *taskForm) View(width int) string {
	title := "Add task"
	if f.mode == formEdit {
		title = "Edit task"
	}

	field := func(label string, focused bool, value string) string {
		style := styles.FormFieldStyle
		if focused {
			style = styles.FormFieldFocusedStyle
		}
		return style.Width(max(width-4, 20)).Render(label + "  " + value)
	}

	rows := []string{
		styles.FormTitleStyle.Render(title),
		field("Task", f.focus == fieldText, f.text.View()),
		field("Due ", f.focus == fieldDue, f.due.View()),
	}
	if f.mode == formAdd {
		rows = append(rows, field("In  ", f.focus == fieldCategory, fmt.Sprintf("‹ %s ›", f.category)))
	}
	if f.err != "" {
		rows = append(rows, styles.FormErrorStyle.Render(f.err))
	}
	rows = append(rows, styles.FormHelpStyle.Render("enter save  tab next field  esc cancel"))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
