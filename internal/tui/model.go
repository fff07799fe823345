// Package tui implements the Bubble Tea TUI for tick.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/tick/internal/core/notify"
	"github.com/colonyops/tick/internal/core/styles"
	"github.com/colonyops/tick/internal/core/task"
	"github.com/colonyops/tick/internal/store/jsonfile"
	"github.com/colonyops/tick/internal/tick"
)

// UIState represents the current state of the TUI.
type UIState int

const (
	stateNormal UIState = iota
	stateForm
	stateConfirming
	stateShowingHelp
	stateShowingNotifications
)

// Options configures the TUI.
type Options struct {
	// Changes delivers task list rewrites by other processes. Nil disables
	// live reload.
	Changes <-chan jsonfile.Change
	// Warnings are shown as toasts on startup.
	Warnings []string
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	ctx  context.Context
	app  *tick.App
	keys keyMap
	help help.Model

	state  UIState
	tab    int
	cursor int
	width  int
	height int

	form        *taskForm
	confirm     *deleteModal
	helpContent string
	notifyModal *NotificationModal

	toastController *ToastController
	toastView       *ToastView
	changes         <-chan jsonfile.Change
	startupWarnings []string
}

// New creates a new TUI model. Tasks must already be loaded.
func New(ctx context.Context, app *tick.App, opts Options) Model {
	toastCtrl := NewToastController(app.Config.TUI.ToastTTL)
	toastView := NewToastView(toastCtrl)

	// Wire bus -> toast controller
	app.Notify.Subscribe(func(n notify.Notification) {
		toastCtrl.Push(n)
	})

	return Model{
		ctx:             ctx,
		app:             app,
		keys:            defaultKeyMap(),
		help:            help.New(),
		state:           stateNormal,
		toastController: toastCtrl,
		toastView:       toastView,
		changes:         opts.Changes,
		startupWarnings: opts.Warnings,
	}
}

func (m Model) Init() tea.Cmd {
	for _, w := range m.startupWarnings {
		m.toastController.Push(notify.Notification{Level: notify.LevelWarning, Message: w})
	}
	return tea.Batch(waitForTaskChange(m.changes), m.ensureToastTick())
}

// category returns the category of the active tab.
func (m Model) category() task.Category {
	return task.Categories[m.tab]
}

// visible returns the tasks shown in the active tab.
func (m Model) visible() []task.Task {
	return m.app.Tasks.List(m.category())
}

func (m Model) selected() (task.Task, bool) {
	tasks := m.visible()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return task.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	m.cursor = min(max(m.cursor, 0), max(n-1, 0))
}

// ensureToastTick starts the toast countdown if toasts are showing and the
// timer is not already running.
func (m Model) ensureToastTick() tea.Cmd {
	if !m.toastController.HasToasts() || m.toastController.Ticking() {
		return nil
	}
	m.toastController.SetTicking(true)
	return scheduleToastTick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if m.state == stateShowingHelp {
			m.helpContent = renderHelp(m.width)
		}
		return m, nil

	case toastTickMsg:
		m.toastController.Tick(toastTickInterval)
		if m.toastController.HasToasts() {
			return m, scheduleToastTick()
		}
		m.toastController.SetTicking(false)
		return m, nil

	case tasksChangedMsg:
		if m.app.Tasks.Reload(m.ctx) {
			log.Debug().Msg("task list reloaded from disk")
			m.clampCursor()
		}
		return m, waitForTaskChange(m.changes)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.state {
	case stateForm:
		return m.handleFormKey(msg)
	case stateConfirming:
		return m.handleConfirmModalKey(msg.String())
	case stateShowingHelp:
		return m.handleHelpKey(msg)
	case stateShowingNotifications:
		return m.handleNotificationsKey(msg.String())
	}

	return m.handleNormalKey(msg)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if editing, ok := m.app.Tasks.Editing(); ok {
		_ = m.app.Tasks.CancelEdit(m.ctx, editing.ID)
	}
	return m, tea.Quit
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.keys.Undo.SetEnabled(m.toastController.Offers(notify.ActionUndo))

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Up):
		m.cursor--
		m.clampCursor()

	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()

	case key.Matches(msg, m.keys.PrevTab):
		m.switchTab(m.tab - 1)

	case key.Matches(msg, m.keys.NextTab):
		m.switchTab(m.tab + 1)

	case msg.String() >= "1" && msg.String() <= "4" && len(msg.String()) == 1:
		m.switchTab(int(msg.String()[0] - '1'))

	case key.Matches(msg, m.keys.Add):
		m.form = newAddForm(m.category())
		m.state = stateForm

	case key.Matches(msg, m.keys.Edit):
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.app.Tasks.StartEdit(m.ctx, t.ID); err != nil {
			return m, nil
		}
		m.form = newEditForm(t)
		m.state = stateForm

	case key.Matches(msg, m.keys.Toggle):
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		_, _ = m.app.Tasks.ToggleComplete(m.ctx, t.ID)

	case key.Matches(msg, m.keys.Delete):
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.confirm = newDeleteModal(t)
		m.state = stateConfirming

	case key.Matches(msg, m.keys.Undo):
		m.toastController.DismissAction(notify.ActionUndo)
		if _, ok := m.app.Tasks.Undo(m.ctx); ok {
			m.clampCursor()
		}
		return m, m.ensureToastTick()

	case key.Matches(msg, m.keys.Theme):
		mode := styles.CurrentMode.Toggle()
		styles.SetTheme(mode)
		m.app.Prefs.SetTheme(m.ctx, mode)

	case key.Matches(msg, m.keys.Dismiss):
		m.toastController.Dismiss()

	case key.Matches(msg, m.keys.Notifications):
		m.notifyModal = NewNotificationModal(m.app.Notify, m.width, m.height)
		m.state = stateShowingNotifications

	case key.Matches(msg, m.keys.Help):
		m.helpContent = renderHelp(m.width)
		m.state = stateShowingHelp
	}

	return m, m.ensureToastTick()
}

func (m *Model) switchTab(i int) {
	n := len(task.Categories)
	m.tab = ((i % n) + n) % n
	m.cursor = 0
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.form.mode == formEdit {
			_ = m.app.Tasks.CancelEdit(m.ctx, m.form.taskID)
		}
		m.form = nil
		m.state = stateNormal
		return m, nil

	case "enter":
		return m.submitForm()
	}

	return m, m.form.Update(msg)
}

// submitForm saves the form. Validation errors keep the form open and are
// shown inline.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	text, due, err := m.form.values()
	if err != nil {
		m.form.setError(err)
		return m, nil
	}

	switch m.form.mode {
	case formAdd:
		t, err := m.app.Tasks.Add(m.ctx, text, m.form.category, due)
		if err != nil {
			return m.formFailed(err)
		}
		m.selectTask(t.ID)

	case formEdit:
		if _, err := m.app.Tasks.SaveEdit(m.ctx, m.form.taskID, text, due); err != nil {
			return m.formFailed(err)
		}
	}

	m.form = nil
	m.state = stateNormal
	return m, m.ensureToastTick()
}

func (m Model) formFailed(err error) (tea.Model, tea.Cmd) {
	if errors.Is(err, task.ErrValidation) {
		m.form.setError(err)
		return m, nil
	}

	// The task vanished, most likely removed by another process.
	m.form = nil
	m.state = stateNormal
	m.clampCursor()
	return m, m.ensureToastTick()
}

// selectTask moves the cursor to id, switching to the All tab if the active
// tab does not show it.
func (m *Model) selectTask(id string) {
	for i, t := range m.visible() {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
	m.tab = 0
	for i, t := range m.visible() {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m Model) handleConfirmModalKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case "enter", "y":
		if keyStr == "y" || m.confirm.DeleteSelected() {
			_, _ = m.app.Tasks.Delete(m.ctx, m.confirm.TaskID())
			m.clampCursor()
		}
		m.confirm = nil
		m.state = stateNormal
		return m, m.ensureToastTick()
	case "esc", "n", "q":
		m.confirm = nil
		m.state = stateNormal
	case "left", "right", "h", "l", "tab":
		m.confirm.ToggleSelection()
	}
	return m, nil
}

func (m Model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "?", "q":
		m.state = stateNormal
		m.helpContent = ""
	}
	return m, nil
}

func (m Model) handleNotificationsKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case "esc", "q", "N":
		m.state = stateNormal
		m.notifyModal = nil
	case "j", "down":
		m.notifyModal.ScrollDown()
	case "k", "up":
		m.notifyModal.ScrollUp()
	case "D":
		if err := m.notifyModal.Clear(); err != nil {
			log.Error().Err(err).Msg("failed to clear notifications")
		}
	}
	return m, nil
}
