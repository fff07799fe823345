package task

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

const maxIDAttempts = 3

// IDFunc generates task ids.
type IDFunc func() string

// NewID returns a time-ordered UUID string.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Store owns the ordered in-memory task list. List order is insertion order
// except where Restore reinserts a task at its recorded position.
//
// Store is not safe for concurrent use; it is driven from a single goroutine.
type Store struct {
	tasks []Task
	newID IDFunc
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithIDFunc overrides the id generator.
func WithIDFunc(fn IDFunc) StoreOption {
	return func(s *Store) { s.newID = fn }
}

// NewStore creates an empty Store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{newID: NewID}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends a new incomplete task. The text is trimmed. Returns an error
// matching ErrValidation for empty or too-long text and for categories that
// cannot be stored, including CategoryAll.
func (s *Store) Add(text string, category Category, due *time.Time) (Task, error) {
	trimmed, err := NormalizeText(text)
	if err != nil {
		return Task{}, err
	}
	if err := ValidateCategory(category); err != nil {
		return Task{}, err
	}

	id, err := s.uniqueID()
	if err != nil {
		return Task{}, err
	}

	t := Task{
		ID:       id,
		Text:     trimmed,
		Category: category,
		DueDate:  copyTime(due),
	}
	s.tasks = append(s.tasks, t)

	return t.Clone(), nil
}

// ToggleComplete flips the completed flag of the task with the given id.
func (s *Store) ToggleComplete(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("toggle %q: %w", id, ErrNotFound)
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	return nil
}

// Edit replaces the text (trimmed) and due date of a task and returns it to
// the idle editing state. Id, category and completed flag are unchanged.
func (s *Store) Edit(id, text string, due *time.Time) error {
	trimmed, err := NormalizeText(text)
	if err != nil {
		return err
	}

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("edit %q: %w", id, ErrNotFound)
	}

	s.tasks[i].Text = trimmed
	s.tasks[i].DueDate = copyTime(due)
	s.tasks[i].IsEditing = false
	return nil
}

// StartEdit marks the task as editing and every other task as idle, so at
// most one task is editable at a time.
func (s *Store) StartEdit(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("start edit %q: %w", id, ErrNotFound)
	}
	for j := range s.tasks {
		s.tasks[j].IsEditing = j == i
	}
	return nil
}

// CancelEdit returns the task to the idle editing state.
func (s *Store) CancelEdit(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("cancel edit %q: %w", id, ErrNotFound)
	}
	s.tasks[i].IsEditing = false
	return nil
}

// Editing returns the task currently being edited, if any.
func (s *Store) Editing() (Task, bool) {
	for _, t := range s.tasks {
		if t.IsEditing {
			return t.Clone(), true
		}
	}
	return Task{}, false
}

// Delete removes the task and returns a copy of it with its original index.
func (s *Store) Delete(id string) (DeletedRecord, error) {
	i := s.indexOf(id)
	if i < 0 {
		return DeletedRecord{}, fmt.Errorf("delete %q: %w", id, ErrNotFound)
	}

	rec := DeletedRecord{Task: s.tasks[i].Clone(), Index: i}
	rec.Task.IsEditing = false
	s.tasks = slices.Delete(s.tasks, i, i+1)

	return rec, nil
}

// Restore reinserts a deleted task at min(rec.Index, Len()). The clamp
// covers lists that shrank between the delete and the restore.
func (s *Store) Restore(rec DeletedRecord) {
	idx := min(max(rec.Index, 0), len(s.tasks))
	s.tasks = slices.Insert(s.tasks, idx, rec.Task.Clone())
}

// List returns a snapshot of all tasks in order.
func (s *Store) List() []Task {
	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Replace swaps the whole list, typically with tasks loaded from storage.
// Editing flags are reset.
func (s *Store) Replace(tasks []Task) {
	s.tasks = make([]Task, len(tasks))
	for i, t := range tasks {
		t = t.Clone()
		t.IsEditing = false
		s.tasks[i] = t
	}
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}

func (s *Store) uniqueID() (string, error) {
	for range maxIDAttempts {
		id := s.newID()
		if id != "" && s.indexOf(id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("generate unique task id after %d attempts", maxIDAttempts)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
