package tick

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/tick/internal/core/kv"
	"github.com/colonyops/tick/internal/core/notify"
	"github.com/colonyops/tick/internal/core/task"
	tuinotify "github.com/colonyops/tick/internal/tui/notify"
)

// UndoKey is the KV key holding the most recent deletion between CLI runs.
const UndoKey = "undo"

// TaskService wraps task.Store with the undo buffer, persistence, and
// outcome notifications. Every successful mutation is saved; save failures
// are logged and never undo the in-memory change.
//
// TaskService is not safe for concurrent use.
type TaskService struct {
	store   *task.Store
	undo    *task.UndoBuffer
	persist *task.Persistence
	bus     *tuinotify.Bus
	log     zerolog.Logger

	undoKV     kv.KV
	undoWindow time.Duration
}

// TaskServiceOption configures a TaskService.
type TaskServiceOption func(*TaskService)

// WithStore replaces the default task store.
func WithStore(store *task.Store) TaskServiceOption {
	return func(s *TaskService) { s.store = store }
}

// WithPersistentUndo mirrors the undo buffer to store under UndoKey for
// window, so a later process can restore a deletion. A zero window disables it.
func WithPersistentUndo(store kv.KV, window time.Duration) TaskServiceOption {
	return func(s *TaskService) {
		if window > 0 {
			s.undoKV = store
			s.undoWindow = window
		}
	}
}

// NewTaskService creates a new TaskService.
func NewTaskService(persist *task.Persistence, bus *tuinotify.Bus, log zerolog.Logger, opts ...TaskServiceOption) *TaskService {
	s := &TaskService{
		store:   task.NewStore(),
		undo:    &task.UndoBuffer{},
		persist: persist,
		bus:     bus,
		log:     log.With().Str("cmp", "task-service").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory list with the persisted one.
func (s *TaskService) Load(ctx context.Context) {
	s.store.Replace(s.persist.Load(ctx))
}

// Reload re-reads persisted tasks after another process changed them and
// reports whether the visible list changed. An in-progress edit survives if
// its task still exists.
func (s *TaskService) Reload(ctx context.Context) bool {
	loaded := s.persist.Load(ctx)
	if slices.EqualFunc(loaded, s.store.List(), sameTask) {
		return false
	}

	editing, isEditing := s.store.Editing()
	s.store.Replace(loaded)
	if isEditing {
		_ = s.store.StartEdit(editing.ID)
	}
	return true
}

// Add creates a task in category. Adding while the "all" view is active
// files the task under task.FallbackCategory.
func (s *TaskService) Add(ctx context.Context, text string, category task.Category, due *time.Time) (task.Task, error) {
	if category == task.CategoryAll {
		category = task.FallbackCategory
	}

	t, err := s.store.Add(text, category, due)
	if err != nil {
		return task.Task{}, err
	}

	s.save(ctx)
	s.bus.Infof("%q added to %s", t.Text, t.Category)
	s.log.Debug().Ctx(ctx).Str("id", t.ID).Str("category", string(t.Category)).Msg("task added")
	return t, nil
}

// ToggleComplete flips the completed flag of a task.
func (s *TaskService) ToggleComplete(ctx context.Context, id string) (task.Task, error) {
	if err := s.store.ToggleComplete(id); err != nil {
		return task.Task{}, s.notFound(ctx, err)
	}

	s.save(ctx)
	t, _ := s.store.Get(id)
	return t, nil
}

// StartEdit moves a task into the editing state.
func (s *TaskService) StartEdit(ctx context.Context, id string) error {
	if err := s.store.StartEdit(id); err != nil {
		return s.notFound(ctx, err)
	}
	return nil
}

// CancelEdit abandons an edit without changing the task.
func (s *TaskService) CancelEdit(ctx context.Context, id string) error {
	if err := s.store.CancelEdit(id); err != nil {
		return s.notFound(ctx, err)
	}
	return nil
}

// SaveEdit replaces the text and due date of a task.
func (s *TaskService) SaveEdit(ctx context.Context, id, text string, due *time.Time) (task.Task, error) {
	if err := s.store.Edit(id, text, due); err != nil {
		if errors.Is(err, task.ErrNotFound) {
			return task.Task{}, s.notFound(ctx, err)
		}
		return task.Task{}, err
	}

	s.save(ctx)
	s.bus.Infof("Task updated")
	t, _ := s.store.Get(id)
	return t, nil
}

// Delete removes a task and remembers it for Undo, replacing any earlier
// deletion.
func (s *TaskService) Delete(ctx context.Context, id string) (task.DeletedRecord, error) {
	rec, err := s.store.Delete(id)
	if err != nil {
		return task.DeletedRecord{}, s.notFound(ctx, err)
	}

	s.undo.Capture(rec)
	s.save(ctx)

	if s.undoKV != nil {
		if err := s.undoKV.SetTTL(ctx, UndoKey, rec, s.undoWindow); err != nil {
			s.log.Error().Ctx(ctx).Err(err).Msg("failed to persist undo record")
		}
	}

	s.bus.Offerf(notify.ActionUndo, "Task deleted")
	return rec, nil
}

// Undo restores the most recent deletion at its original position, clamped
// to the current list length. It reports false when there is nothing to
// restore.
func (s *TaskService) Undo(ctx context.Context) (task.Task, bool) {
	rec, ok := s.undo.Consume()
	if !ok {
		rec, ok = s.loadPersistedUndo(ctx)
	}
	s.clearPersistedUndo(ctx)
	if !ok {
		return task.Task{}, false
	}

	if _, exists := s.store.Get(rec.Task.ID); exists {
		s.log.Debug().Ctx(ctx).Str("id", rec.Task.ID).Msg("undo target already present")
		return task.Task{}, false
	}

	s.store.Restore(rec)
	s.save(ctx)
	s.bus.Infof("%q restored", rec.Task.Text)
	return rec.Task.Clone(), true
}

// CanUndo reports whether Undo would restore something.
func (s *TaskService) CanUndo(ctx context.Context) bool {
	if s.undo.Pending() {
		return true
	}
	if s.undoKV == nil {
		return false
	}
	ok, err := s.undoKV.Has(ctx, UndoKey)
	return err == nil && ok
}

// List returns the tasks visible under category, in list order.
func (s *TaskService) List(category task.Category) []task.Task {
	return task.Filter(s.store.List(), category)
}

// All returns every task in list order.
func (s *TaskService) All() []task.Task {
	return s.store.List()
}

// Counts returns the per-category task counts.
func (s *TaskService) Counts() map[task.Category]int {
	return task.Counts(s.store.List())
}

// Editing returns the task being edited, if any.
func (s *TaskService) Editing() (task.Task, bool) {
	return s.store.Editing()
}

func (s *TaskService) save(ctx context.Context) {
	// Persistence logs its own failures.
	_ = s.persist.Save(ctx, s.store.List())
}

func (s *TaskService) notFound(ctx context.Context, err error) error {
	s.log.Debug().Ctx(ctx).Err(err).Msg("task not found")
	return err
}

func (s *TaskService) loadPersistedUndo(ctx context.Context) (task.DeletedRecord, bool) {
	if s.undoKV == nil {
		return task.DeletedRecord{}, false
	}

	var rec task.DeletedRecord
	if err := s.undoKV.Get(ctx, UndoKey, &rec); err != nil {
		if !kv.IsNotFound(err) {
			s.log.Warn().Ctx(ctx).Err(err).Msg("discarding unreadable undo record")
		}
		return task.DeletedRecord{}, false
	}
	if rec.Task.ID == "" || !rec.Task.Category.IsStorable() {
		s.log.Warn().Ctx(ctx).Msg("discarding invalid undo record")
		return task.DeletedRecord{}, false
	}
	return rec, true
}

func (s *TaskService) clearPersistedUndo(ctx context.Context) {
	if s.undoKV == nil {
		return
	}
	if err := s.undoKV.Delete(ctx, UndoKey); err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Msg("failed to clear undo record")
	}
}

// sameTask compares the persisted fields of two tasks.
func sameTask(a, b task.Task) bool {
	if a.ID != b.ID || a.Text != b.Text || a.Completed != b.Completed || a.Category != b.Category {
		return false
	}
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return true
	case a.DueDate == nil || b.DueDate == nil:
		return false
	default:
		return a.DueDate.Equal(*b.DueDate)
	}
}

// ErrAmbiguousRef is returned when a task reference matches more than one task.
var ErrAmbiguousRef = errors.New("ambiguous task reference")

// Resolve maps a user-supplied reference to a task id. A reference is either
// a 1-based position in the full list as printed by `tick ls` ("3" or "#3"),
// or a unique prefix or suffix of a task id. The short id the CLI prints is
// a suffix.
func (s *TaskService) Resolve(ref string) (string, error) {
	tasks := s.store.List()

	if n, ok := parsePosition(ref); ok {
		if n < 1 || n > len(tasks) {
			return "", fmt.Errorf("task #%d: %w", n, task.ErrNotFound)
		}
		return tasks[n-1].ID, nil
	}

	var match string
	for _, t := range tasks {
		if t.ID == ref {
			return t.ID, nil
		}
		if ref != "" && (strings.HasPrefix(t.ID, ref) || strings.HasSuffix(t.ID, ref)) {
			if match != "" {
				return "", fmt.Errorf("%q: %w", ref, ErrAmbiguousRef)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%q: %w", ref, task.ErrNotFound)
	}
	return match, nil
}

// Position returns the 1-based position of id in the full list, or 0.
func (s *TaskService) Position(id string) int {
	return slices.IndexFunc(s.store.List(), func(t task.Task) bool { return t.ID == id }) + 1
}

func parsePosition(ref string) (int, bool) {
	ref, hasHash := cutHash(ref)
	if ref == "" || len(ref) > 6 {
		return 0, false
	}
	n := 0
	for _, r := range ref {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	// Longer bare digit runs are treated as id prefixes.
	if !hasHash && len(ref) > 4 {
		return 0, false
	}
	return n, true
}

func cutHash(ref string) (string, bool) {
	if len(ref) > 0 && ref[0] == '#' {
		return ref[1:], true
	}
	return ref, false
}
