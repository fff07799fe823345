package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/tick/internal/core/task"
	"github.com/colonyops/tick/pkg/tuitest"
)

func TestDeleteModal_Defaults(t *testing.T) {
	m := newDeleteModal(task.Task{ID: "abc", Text: "Buy milk", Category: task.CategoryShopping})

	assert.True(t, m.DeleteSelected())
	assert.Equal(t, "abc", m.TaskID())
}

func TestDeleteModal_ToggleSelection(t *testing.T) {
	m := newDeleteModal(task.Task{})

	m.ToggleSelection()
	assert.False(t, m.DeleteSelected())

	m.ToggleSelection()
	assert.True(t, m.DeleteSelected())
}

func TestDeleteModal_Overlay(t *testing.T) {
	due := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)
	m := newDeleteModal(task.Task{Text: "Buy milk", Category: task.CategoryShopping, DueDate: &due})

	out := tuitest.StripANSI(m.Overlay(80, 24))

	assert.Contains(t, out, "Delete task?")
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "Shopping")
	assert.Contains(t, out, "Mar 14")
	assert.Contains(t, out, "Cancel")
}

func TestDeleteModal_TruncatesLongText(t *testing.T) {
	long := strings.Repeat("x", task.MaxTextLength)
	m := newDeleteModal(task.Task{Text: long, Category: task.CategoryWork})

	out := tuitest.StripANSI(m.Overlay(120, 24))

	assert.NotContains(t, out, long)
	assert.Contains(t, out, "…")
}
