// Package tick wires the task domain to storage and notifications for the
// CLI and TUI.
package tick

import (
	"github.com/rs/zerolog"

	"github.com/colonyops/tick/internal/core/config"
	"github.com/colonyops/tick/internal/core/task"
	tuinotify "github.com/colonyops/tick/internal/tui/notify"
)

// App is the central entry point for all tick operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Tasks  *TaskService
	Prefs  *PrefsService
	Notify *tuinotify.Bus

	Config  *config.Config
	Storage *Storage
}

// NewApp constructs an App over opened storage. Tasks are not loaded;
// callers run Tasks.Load once they have a context.
func NewApp(cfg *config.Config, storage *Storage, log zerolog.Logger) *App {
	bus := tuinotify.NewBus(storage.Notifications, log)
	persist := task.NewPersistence(storage.KV, log)

	return &App{
		Tasks:   NewTaskService(persist, bus, log, WithPersistentUndo(storage.KV, cfg.Undo.Window)),
		Prefs:   NewPrefsService(storage.KV, log),
		Notify:  bus,
		Config:  cfg,
		Storage: storage,
	}
}

// Close releases storage.
func (a *App) Close() error {
	return a.Storage.Close()
}
