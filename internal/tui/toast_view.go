package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/tick/internal/core/notify"
	"github.com/colonyops/tick/internal/core/styles"
)

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg { return toastTickMsg(t) })
}

// ToastView draws the controller's stack in the bottom right corner.
type ToastView struct {
	controller *ToastController
}

func NewToastView(controller *ToastController) *ToastView {
	return &ToastView{controller: controller}
}

// View stacks the toasts vertically, newest at the bottom.
func (v *ToastView) View() string {
	var boxes []string
	for _, t := range v.controller.Toasts() {
		boxes = append(boxes, renderToast(t.notification))
	}
	if len(boxes) == 0 {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Right, boxes...)
}

func toastStyle(level notify.Level) lipgloss.Style {
	switch level {
	case notify.LevelError:
		return styles.ToastErrorStyle
	case notify.LevelWarning:
		return styles.ToastWarningStyle
	default:
		return styles.ToastInfoStyle
	}
}

func renderToast(n notify.Notification) string {
	body := n.Message
	if n.Action == notify.ActionUndo {
		body += "  " + styles.ToastActionStyle.Render(styles.IconUndo+" u undo")
	}
	return toastStyle(n.Level).Width(toastWidth).Render(body)
}

// Overlay replaces the last rows of background with the toast stack,
// right-aligned within width. Background is padded to height first.
func (v *ToastView) Overlay(background string, width, height int) string {
	stack := v.View()
	if stack == "" {
		return background
	}

	lines := strings.Split(background, "\n")
	if missing := height - len(lines); missing > 0 {
		lines = append(lines, make([]string, missing)...)
	}

	rows := strings.Split(stack, "\n")
	offset := len(lines) - len(rows)
	for i, row := range rows {
		if offset+i < 0 {
			continue
		}
		lines[offset+i] = lipgloss.PlaceHorizontal(max(width-1, lipgloss.Width(row)), lipgloss.Right, row)
	}

	return strings.Join(lines, "\n")
}
