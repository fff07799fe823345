package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/tick/internal/core/styles"
	"github.com/colonyops/tick/internal/core/task"
)

func (m Model) View() string {
	if m.state == stateShowingHelp {
		return m.helpContent + "\n" + styles.ModalHelpStyle.Render("esc close")
	}
	if m.state == stateShowingNotifications && m.notifyModal != nil {
		return m.notifyModal.Overlay(m.width, m.height)
	}

	sections := []string{
		styles.CommandHeaderStyle.Render("tick"),
		m.renderTabs(),
		styles.DividerStyle.Render(strings.Repeat("─", max(m.width, 20))),
		m.renderTasks(),
	}
	if m.state == stateForm && m.form != nil {
		sections = append(sections, "", m.form.View(m.width))
	}
	sections = append(sections, "", m.help.View(m.keys))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.state == stateConfirming && m.confirm != nil {
		content = m.confirm.Overlay(m.width, m.height)
	}

	return m.toastView.Overlay(content, m.width, m.height)
}

func (m Model) renderTabs() string {
	counts := m.app.Tasks.Counts()

	tabs := make([]string, 0, len(task.Categories))
	for i, c := range task.Categories {
		label := tabLabel(c) + " " + styles.TabCountStyle.Render(fmt.Sprintf("%d", counts[c]))
		if i == m.tab {
			tabs = append(tabs, styles.TabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, styles.TabInactiveStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func tabLabel(c task.Category) string {
	s := string(c)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (m Model) renderTasks() string {
	tasks := m.visible()
	if len(tasks) == 0 {
		return styles.EmptyStateStyle.Render(task.EmptyMessage(m.category()))
	}

	today := truncateDay(time.Now())
	rows := make([]string, 0, len(tasks))
	for i, t := range tasks {
		rows = append(rows, m.renderTask(t, i == m.cursor, today))
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderTask(t task.Task, selected bool, today time.Time) string {
	cursor := "  "
	if selected {
		cursor = styles.TaskCursorStyle.Render(styles.IconCursor) + " "
	}

	check := styles.IconUnchecked
	text := styles.TaskTextStyle.Render(t.Text)
	switch {
	case t.IsEditing:
		text = styles.TaskEditingStyle.Render(t.Text)
	case t.Completed:
		check = styles.IconCheck
		text = styles.TaskDoneStyle.Render(t.Text)
	}

	row := cursor + check + " " + text
	if m.category() == task.CategoryAll {
		row += "  " + styles.CategoryStyle.Render(string(t.Category))
	}
	if t.DueDate != nil {
		due := styles.IconCalendar + " " + t.DueDate.Local().Format(dueLayout)
		if !t.Completed && truncateDay(*t.DueDate).Before(today) {
			row += "  " + styles.DueOverdueStyle.Render(due)
		} else {
			row += "  " + styles.DueStyle.Render(due)
		}
	}
	return row
}

func truncateDay(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
