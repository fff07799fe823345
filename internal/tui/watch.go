package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/tick/internal/core/task"
	"github.com/colonyops/tick/internal/store/jsonfile"
)

// tasksChangedMsg is sent when another process rewrote the task list.
type tasksChangedMsg struct{}

// waitForTaskChange blocks on the next change to the task key. It returns
// nil once the channel is closed, which ends the watch.
func waitForTaskChange(changes <-chan jsonfile.Change) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		for change := range changes {
			if change.Key == task.StorageKey {
				return tasksChangedMsg{}
			}
		}
		return nil
	}
}
