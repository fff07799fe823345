// Package notify defines user-facing notifications and their history store.
package notify

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Level represents the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Action is an affordance attached to a transient notification.
type Action string

const (
	ActionNone Action = ""
	// ActionUndo offers restoring the most recent deletion.
	ActionUndo Action = "undo"
)

// Notification represents a single notification event.
type Notification struct {
	ID        int64     `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`

	// Action is not persisted.
	Action Action `json:"-"`
}

// Store persists notifications to durable storage.
type Store interface {
	Save(ctx context.Context, n Notification) (int64, error)
	List(ctx context.Context) ([]Notification, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// MemoryStore is a process-local Store holding at most Limit entries.
type MemoryStore struct {
	Limit int

	mu     sync.Mutex
	items  []Notification
	nextID int64
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) Save(_ context.Context, n Notification) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	n.ID = m.nextID
	n.Action = ActionNone
	m.items = append(m.items, n)
	if m.Limit > 0 && len(m.items) > m.Limit {
		m.items = slices.Delete(m.items, 0, len(m.items)-m.Limit)
	}
	return n.ID, nil
}

// List returns notifications newest first.
func (m *MemoryStore) List(_ context.Context) ([]Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := slices.Clone(m.items)
	slices.Reverse(out)
	if out == nil {
		out = []Notification{}
	}
	return out, nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	return nil
}

func (m *MemoryStore) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.items)), nil
}
