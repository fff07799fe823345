package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/tick/internal/core/notify"
	"github.com/colonyops/tick/internal/core/styles"
	tuinotify "github.com/colonyops/tick/internal/tui/notify"
)

// Modal sizing. The frame takes the title, divider, help line and padding.
const (
	historyWidthPct  = 65
	historyMinWidth  = 50
	historyMaxHeight = 20
	historyMargin    = 4
	historyFrame     = 6
)

// NotificationModal lists past notifications, newest first, in a
// scrollable viewport.
type NotificationModal struct {
	bus      *tuinotify.Bus
	viewport viewport.Model
	count    int
}

func NewNotificationModal(bus *tuinotify.Bus, width, height int) *NotificationModal {
	w := historyWidth(width)
	h := max(min(height-historyMargin, historyMaxHeight), historyFrame+1)

	m := &NotificationModal{bus: bus, viewport: viewport.New(w-4, h-historyFrame)}
	m.reload()
	return m
}

// reload reads the history from the bus into the viewport.
func (m *NotificationModal) reload() {
	history, err := m.bus.History(context.Background())
	m.count = len(history)

	switch {
	case err != nil:
		log.Error().Err(err).Msg("failed to load notification history")
		m.viewport.SetContent(styles.TextErrorStyle.Render("failed to load notifications: " + err.Error()))
	case len(history) == 0:
		m.viewport.SetContent(styles.TextMutedStyle.Render("No notifications"))
	default:
		lines := make([]string, len(history))
		for i, n := range history {
			lines[i] = formatNotification(n)
		}
		m.viewport.SetContent(strings.Join(lines, "\n"))
	}
	m.viewport.GotoTop()
}

// formatNotification renders one history line: local time, then the message
// colored by level.
func formatNotification(n notify.Notification) string {
	msgStyle := lipgloss.NewStyle()
	if n.Level == notify.LevelError {
		msgStyle = styles.TextErrorStyle
	} else if n.Level == notify.LevelWarning {
		msgStyle = styles.TextWarningStyle
	}
	return styles.TextMutedStyle.Render(n.CreatedAt.Local().Format("15:04:05")) + " " + msgStyle.Render(n.Message)
}

func (m *NotificationModal) ScrollUp()   { m.viewport.ScrollUp(1) }
func (m *NotificationModal) ScrollDown() { m.viewport.ScrollDown(1) }

// Clear empties the history and shows the empty state.
func (m *NotificationModal) Clear() error {
	if err := m.bus.Clear(context.Background()); err != nil {
		return err
	}
	m.reload()
	return nil
}

// Overlay centers the modal in a width x height screen.
func (m *NotificationModal) Overlay(width, height int) string {
	w := historyWidth(width)

	title := "Notifications"
	if m.count > 0 {
		title = fmt.Sprintf("Notifications (%d)", m.count)
	}
	if m.viewport.TotalLineCount() > m.viewport.VisibleLineCount() {
		title += styles.TextMutedStyle.Render(fmt.Sprintf(" %3.0f%%", m.viewport.ScrollPercent()*100))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(title),
		styles.DividerStyle.Render(strings.Repeat("─", max(w-6, 1))),
		m.viewport.View(),
		styles.ModalHelpStyle.Render("[j/k] scroll  [D] clear all  [esc] close"),
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, styles.ModalStyle.Width(w).Render(body))
}

// historyWidth takes historyWidthPct of the terminal, at least
// historyMinWidth, and never more than fits inside the margin.
func historyWidth(termWidth int) int {
	fit := max(termWidth-historyMargin, 1)
	return min(max(termWidth*historyWidthPct/100, historyMinWidth), fit)
}
