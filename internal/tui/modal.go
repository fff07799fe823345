package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/tick/internal/core/styles"
	"github.com/colonyops/tick/internal/core/task"
)

const deleteModalTextWidth = 40

// deleteModal asks before a task is removed. Delete is selected initially.
type deleteModal struct {
	task          task.Task
	deleteFocused bool
}

func newDeleteModal(t task.Task) *deleteModal {
	return &deleteModal{task: t, deleteFocused: true}
}

// ToggleSelection switches between the Delete and Cancel buttons.
func (m *deleteModal) ToggleSelection() {
	m.deleteFocused = !m.deleteFocused
}

// DeleteSelected reports whether enter would delete.
func (m *deleteModal) DeleteSelected() bool {
	return m.deleteFocused
}

func (m *deleteModal) TaskID() string {
	return m.task.ID
}

// Overlay renders the dialog centered in a width x height area. The
// background is replaced.
func (m *deleteModal) Overlay(width, height int) string {
	deleteStyle, cancelStyle := styles.ModalButtonSelectedStyle, styles.ModalButtonStyle
	if !m.deleteFocused {
		deleteStyle, cancelStyle = cancelStyle, deleteStyle
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		deleteStyle.Render("Delete"), "  ", cancelStyle.Render("Cancel"))

	details := tabLabel(m.task.Category)
	if m.task.DueDate != nil {
		details += "  " + styles.IconCalendar + " " + m.task.DueDate.Format("Jan 2")
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render("Delete task?"),
		"",
		ansi.Truncate(m.task.Text, deleteModalTextWidth, "…"),
		styles.TextMutedStyle.Render(details),
		lipgloss.NewStyle().MarginTop(1).Render(buttons),
		styles.ModalHelpStyle.Render("←/→ select  enter confirm  y/n  esc cancel"),
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(content))
}
