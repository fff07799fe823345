// Package task defines the task-list domain: the task model, the ordered
// task store, single-level undo, category filtering, and persistence.
package task

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrValidation is returned when task input is rejected (empty or too long
	// text, or a category that cannot be stored).
	ErrValidation = errors.New("invalid task")
	// ErrNotFound is returned when an operation references an unknown task id.
	ErrNotFound = errors.New("task not found")
	// ErrStorage wraps serialization and write failures from the persistence layer.
	ErrStorage = errors.New("task storage failure")
)

// ValidationError describes rejected task input. It matches ErrValidation
// with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// MaxTextLength is the maximum task text length in characters, after trimming.
const MaxTextLength = 100

// Category tags a task. CategoryAll is a filter-only pseudo-category and is
// never stored on a task.
type Category string

const (
	CategoryAll      Category = "all"
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryShopping Category = "shopping"
)

// FallbackCategory is assigned when a task is added while the "all" view is active.
const FallbackCategory = CategoryPersonal

// Categories lists the filter tabs in display order.
var Categories = []Category{CategoryAll, CategoryPersonal, CategoryWork, CategoryShopping}

// IsValid reports whether c is any known category, including CategoryAll.
func (c Category) IsValid() bool {
	switch c {
	case CategoryAll, CategoryWork, CategoryPersonal, CategoryShopping:
		return true
	default:
		return false
	}
}

// IsStorable reports whether c may be stored on a task.
func (c Category) IsStorable() bool {
	return c.IsValid() && c != CategoryAll
}

// ParseCategory converts a string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", &ValidationError{
			Field:   "category",
			Message: fmt.Sprintf("unknown category %q (want one of all, personal, work, shopping)", s),
		}
	}
	return c, nil
}

// Task is a single to-do item.
type Task struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	Category  Category   `json:"category"`
	DueDate   *time.Time `json:"dueDate,omitempty"`

	// IsEditing is UI state and is never persisted.
	IsEditing bool `json:"-"`
}

// Clone returns a value copy of t that shares no memory with it.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}

// DeletedRecord is a copy of a removed task and the index it occupied.
type DeletedRecord struct {
	Task  Task `json:"task"`
	Index int  `json:"index"`
}
