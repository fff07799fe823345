package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tick/internal/core/config"
	"github.com/colonyops/tick/internal/core/notify"
	"github.com/colonyops/tick/internal/core/task"
	"github.com/colonyops/tick/internal/store/memory"
	"github.com/colonyops/tick/internal/tick"
)

type testEnv struct {
	app   *tick.App
	flags *Flags

	interactive bool
	confirmed   bool
	prompts     []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	storage := &tick.Storage{
		Backend:       config.BackendMemory,
		KV:            memory.New(),
		Notifications: &notify.MemoryStore{Limit: cfg.Notifications.Limit},
	}
	app := tick.NewApp(&cfg, storage, zerolog.Nop())
	app.Tasks.Load(context.Background())

	return &testEnv{
		app:   app,
		flags: &Flags{DataDir: cfg.DataDir, Config: &cfg},
	}
}

// run executes a tick command line and returns everything written to the
// root writer.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := &cli.Command{Name: "tick", Writer: &out, ErrWriter: &out}

	rm := NewRmCmd(e.flags, e.app)
	rm.interactive = func() bool { return e.interactive }
	rm.confirm = func(title string) (bool, error) {
		e.prompts = append(e.prompts, title)
		return e.confirmed, nil
	}

	root = NewAddCmd(e.flags, e.app).Register(root)
	root = NewLsCmd(e.flags, e.app).Register(root)
	root = NewDoneCmd(e.flags, e.app).Register(root)
	root = NewEditCmd(e.flags, e.app).Register(root)
	root = rm.Register(root)
	root = NewUndoCmd(e.flags, e.app).Register(root)
	root = NewNotificationsCmd(e.flags, e.app).Register(root)
	root = NewExportCmd(e.flags, e.app).Register(root)
	root = NewImportCmd(e.flags, e.app).Register(root)
	root = NewConfigValidateCmd(e.flags).Register(root)

	err := root.Run(context.Background(), append([]string{"tick"}, args...))
	return out.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, "tick %s", strings.Join(args, " "))
	return out
}

func (e *testEnv) texts() []string {
	var out []string
	for _, tk := range e.app.Tasks.All() {
		out = append(out, tk.Text)
	}
	return out
}

func TestAdd(t *testing.T) {
	e := newTestEnv(t)

	out := e.mustRun(t, "add", "Buy", "milk")
	assert.Contains(t, out, `"Buy milk" added to personal`)
	assert.Contains(t, out, "#1")

	e.mustRun(t, "add", "--category", "work", "--due", "2026-01-31", "Quarterly report")

	tasks := e.app.Tasks.All()
	require.Len(t, tasks, 2)
	assert.Equal(t, task.CategoryPersonal, tasks[0].Category, "default category comes from config")
	assert.Equal(t, task.CategoryWork, tasks[1].Category)
	require.NotNil(t, tasks[1].DueDate)
	assert.Equal(t, "2026-01-31", tasks[1].DueDate.Format(dueLayout))
}

func TestAdd_AllCategoryFallsBack(t *testing.T) {
	e := newTestEnv(t)

	e.mustRun(t, "add", "-c", "all", "Call mom")

	assert.Equal(t, task.FallbackCategory, e.app.Tasks.All()[0].Category)
}

func TestAdd_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "empty text", args: []string{"add", "   "}, wantErr: "Task cannot be empty"},
		{name: "too long", args: []string{"add", strings.Repeat("x", 101)}, wantErr: "too long"},
		{name: "unknown category", args: []string{"add", "-c", "errands", "x"}, wantErr: "unknown category"},
		{name: "bad due", args: []string{"add", "--due", "tomorrow", "x"}, wantErr: "YYYY-MM-DD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)

			_, err := e.run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Empty(t, e.app.Tasks.All())
		})
	}
}

func TestLs_Empty(t *testing.T) {
	e := newTestEnv(t)

	assert.Contains(t, e.mustRun(t, "ls"), "No tasks found. Add a task to get started!")
	assert.Contains(t, e.mustRun(t, "ls", "-c", "shopping"), "No shopping tasks were found. Add a task to get started!")
}

func TestLs_FilterKeepsPositions(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun(t, "add", "-c", "work", "Report")
	e.mustRun(t, "add", "-c", "shopping", "Milk")
	e.mustRun(t, "add", "-c", "work", "Standup notes")

	out := e.mustRun(t, "ls", "-c", "work")
	assert.Contains(t, out, "Report")
	assert.Contains(t, out, "Standup notes")
	assert.NotContains(t, out, "Milk")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[2], "3 "), "position is the index in the full list: %q", lines[2])
}

func TestLs_Match(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun(t, "add", "Buy milk")
	e.mustRun(t, "add", "Buy eggs")
	e.mustRun(t, "add", "Call mom")

	out := e.mustRun(t, "ls", "--match", "buy*")
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "Buy eggs")
	assert.NotContains(t, out, "Call mom")

	out = e.mustRun(t, "ls", "--match", "MOM")
	assert.Contains(t, out, "Call mom")
}

func TestLs_JSON(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun(t, "add", "-c", "work", "Report")
	e.mustRun(t, "add", "-c", "shopping", "Milk")

	out := e.mustRun(t, "ls", "--json", "-c", "shopping")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)

	var entry struct {
		Position int    `json:"position"`
		ID       string `json:"id"`
		Text     string `json:"text"`
		Category string `json:"category"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, 2, entry.Position)
	assert.Equal(t, "Milk", entry.Text)
	assert.Equal(t, "shopping", entry.Category)
	assert.NotEmpty(t, entry.ID)
}

func TestDone(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun(t, "add", "one")
	e.mustRun(t, "add", "two")

	out := e.mustRun(t, "done", "1", "#2")
	assert.Contains(t, out, "#1 done: one")
	assert.Contains(t, out, "#2 done: two")

	e.mustRun(t, "done", "2")

	tasks := e.app.Tasks.All()
	assert.True(t, tasks[0].Completed)
	assert.False(t, tasks[1].Completed)
}

func TestDone_PrintedID(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun(t, "add", "first")
	out := e.mustRun(t, "add", "-c", "work", "Buy milk")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	fields := strings.Fields(lines[len(lines)-1])
	require.Len(t, fields, 2)
	assert.Equal(t, "#2", fields[0])

	done := e.mustRun(t, "done", fields[1])
	assert.Contains(t, done, "#2 done: Buy milk")
	assert.True(t, e.app.Tasks.All()[1].Completed)
}

func TestDone_DuplicateRefs(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun(t, "add", "one")

	out := e.mustRun(t, "done", "1", "#1")
	assert.Equal(t, 1, strings.Count(out, "done: one"))
	assert.True(t, e.app.Tasks.All()[0].Completed)
}

func TestDone_UnknownRef(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun(t, "add", "one")

	_, err := e.run(t, "done", "1", "7")
	require.ErrorIs(t, err, task.ErrNotFound)
	assert.False(t, e.app.Tasks.All()[0].Completed, "no task is toggled when any ref fails")

	_, err = e.run(t, "done")
	require.Error(t, err)
}

func TestEdit(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun(t, "add", "-c", "work", "--due", "2026-01-31", "Report")

	e.mustRun(t, "edit", "1", "Quarterly", "report")

	got := e.app.Tasks.All()[0]
	assert.Equal(t, "Quarterly report", got.Text)
	assert.Equal(t, task.CategoryWork, got.Category)
	require.NotNil(t, got.DueDate, "due date is kept when not given")
	assert.False(t, got.IsEditing)

	e.mustRun(t, "edit", "--due", "2026-03-01", "1")
	got = e.app.Tasks.All()[0]
	assert.Equal(t, "Quarterly report", got.Text, "text is kept when not given")
	assert.Equal(t, "2026-03-01", got.DueDate.Format(dueLayout))

	e.mustRun(t, "edit", "--clear-due", "1")
	assert.Nil(t, e.app.Tasks.All()[0].DueDate)
}

func TestEdit_Invalid(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun(t, "add", "Report")

	_, err := e.run(t, "edit", "--due", "2026-01-01", "--clear-due", "1")
	require.Error(t, err)

	_, err = e.run(t, "edit", "9", "x")
	require.ErrorIs(t, err, task.ErrNotFound)

	_, err = e.run(t, "edit", "1", strings.Repeat("x", 101))
	require.ErrorIs(t, err, task.ErrValidation)

	_, editing := e.app.Tasks.Editing()
	assert.False(t, editing, "failed edits leave no task in editing state")
	assert.Equal(t, "Report", e.app.Tasks.All()[0].Text)
}

func TestRm_AndUndo(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun(t, "add", "one")
	e.mustRun(t, "add", "two")
	e.mustRun(t, "add", "three")

	out := e.mustRun(t, "rm", "--yes", "2")
	assert.Contains(t, out, "Task deleted")
	assert.Equal(t, []string{"one", "three"}, e.texts())

	out = e.mustRun(t, "undo")
	assert.Contains(t, out, `"two" restored`)
	assert.Equal(t, []string{"one", "two", "three"}, e.texts())

	out = e.mustRun(t, "undo")
	assert.Contains(t, out, "Nothing to undo")
}

func TestRm_Confirmation(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		e := newTestEnv(t)
		e.interactive = true
		e.mustRun(t, "add", "Buy milk")

		out := e.mustRun(t, "rm", "1")

		assert.Contains(t, out, "Aborted")
		require.Len(t, e.prompts, 1)
		assert.Contains(t, e.prompts[0], "Buy milk")
		assert.Len(t, e.app.Tasks.All(), 1)
	})

	t.Run("accepted", func(t *testing.T) {
		e := newTestEnv(t)
		e.interactive = true
		e.confirmed = true
		e.mustRun(t, "add", "Buy milk")

		e.mustRun(t, "rm", "1")

		assert.Empty(t, e.app.Tasks.All())
	})

	t.Run("not a terminal", func(t *testing.T) {
		e := newTestEnv(t)
		e.mustRun(t, "add", "Buy milk")

		e.mustRun(t, "rm", "1")

		assert.Empty(t, e.prompts)
		assert.Empty(t, e.app.Tasks.All())
	})
}

func TestNotifications(t *testing.T) {
	e := newTestEnv(t)

	assert.Contains(t, e.mustRun(t, "notifications"), "No notifications")

	e.mustRun(t, "add", "Buy milk")
	e.mustRun(t, "rm", "-y", "1")

	out := e.mustRun(t, "notifications")
	assert.Contains(t, out, "Task deleted")
	assert.Less(t, strings.Index(out, "Task deleted"), strings.Index(out, "added"), "newest first")

	out = e.mustRun(t, "notifications", "--json")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	var n notify.Notification
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &n))
	assert.Equal(t, "Task deleted", n.Message)

	e.mustRun(t, "notifications", "--clear")
	assert.Contains(t, e.mustRun(t, "notifications"), "No notifications")
}

func TestExportImport(t *testing.T) {
	src := newTestEnv(t)
	src.mustRun(t, "add", "-c", "work", "--due", "2026-01-31", "Report")
	src.mustRun(t, "add", "-c", "shopping", "Milk")
	src.mustRun(t, "done", "2")

	exported := src.mustRun(t, "export")

	var tasks []task.Task
	require.NoError(t, json.Unmarshal([]byte(exported), &tasks))
	require.Len(t, tasks, 2)

	file := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(file, []byte(exported), 0o644))

	dst := newTestEnv(t)
	dst.mustRun(t, "add", "existing")
	out := dst.mustRun(t, "import", "-f", file)
	assert.Contains(t, out, "Imported 2 task(s)")

	got := dst.app.Tasks.All()
	require.Len(t, got, 3)
	assert.Equal(t, "Report", got[1].Text)
	assert.Equal(t, task.CategoryWork, got[1].Category)
	require.NotNil(t, got[1].DueDate)
	assert.True(t, got[2].Completed)
	assert.NotEqual(t, tasks[0].ID, got[1].ID, "imported tasks get new ids")
}

func TestExport_CSVAndPDF(t *testing.T) {
	e := newTestEnv(t)
	e.mustRun(t, "add", "-c", "work", "Report")

	out := e.mustRun(t, "export", "--format", "csv")
	assert.Contains(t, out, "id,text,completed,category,due")
	assert.Contains(t, out, ",Report,false,work,")

	out = e.mustRun(t, "export", "--format", "pdf")
	assert.True(t, strings.HasPrefix(out, "%PDF-"))

	_, err := e.run(t, "export", "--format", "xml")
	require.Error(t, err)
}

func TestImport_SkipsInvalidRecords(t *testing.T) {
	file := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(file, []byte(`[
		{"text": "ok", "category": "work"},
		{"text": "  ", "category": "work"},
		{"text": "no category"},
		{"text": "filter only", "category": "all"}
	]`), 0o644))

	e := newTestEnv(t)
	out := e.mustRun(t, "import", "-f", file)

	assert.Contains(t, out, "Imported 1 task(s), skipped 3")
	assert.Equal(t, []string{"ok"}, e.texts())
}

func TestConfigValidate(t *testing.T) {
	e := newTestEnv(t)

	out := e.mustRun(t, "config", "validate")
	assert.Contains(t, out, "Configuration is valid")

	e.flags.Config.Storage.Backend = config.BackendMemory
	out = e.mustRun(t, "config", "validate", "--format", "json")

	var result struct {
		Valid    bool                       `json:"valid"`
		Warnings []config.ValidationWarning `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Valid)
	assert.NotEmpty(t, result.Warnings)
}

func TestConfigValidate_Invalid(t *testing.T) {
	e := newTestEnv(t)
	e.flags.Config.Storage.Backend = "redis"

	out, err := e.run(t, "config", "validate")

	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, out, "storage.backend")
}
