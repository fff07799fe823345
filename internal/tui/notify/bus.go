// Package notify provides the in-process bus that fans task outcome messages
// out to the CLI, the TUI toast stack, and the notification history.
package notify

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/tick/internal/core/notify"
)

// Subscriber receives every published notification.
type Subscriber func(notify.Notification)

// Bus records outcome messages and hands them to subscribers on the
// publishing goroutine (a CLI action or the Bubble Tea Update loop).
// A nil store disables history; subscribers are still called.
type Bus struct {
	store notify.Store
	log   zerolog.Logger
	now   func() time.Time

	mu   sync.Mutex
	subs []Subscriber
}

func NewBus(store notify.Store, log zerolog.Logger) *Bus {
	return &Bus{
		store: store,
		log:   log.With().Str("cmp", "notify").Logger(),
		now:   time.Now,
	}
}

func (b *Bus) Subscribe(fn Subscriber) {
	b.mu.Lock()
	b.subs = append(b.subs, fn)
	b.mu.Unlock()
}

// Publish stamps n, saves it so subscribers see its history id, and then
// delivers it. A failed save is logged and does not stop delivery.
func (b *Bus) Publish(n notify.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = b.now()
	}
	if b.store != nil {
		if id, err := b.store.Save(context.Background(), n); err != nil {
			b.log.Error().Err(err).Str("message", n.Message).Msg("failed to persist notification")
		} else {
			n.ID = id
		}
	}

	b.mu.Lock()
	subs := slices.Clone(b.subs)
	b.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
}

func (b *Bus) Errorf(format string, args ...any) {
	b.emit(notify.LevelError, notify.ActionNone, format, args)
}

func (b *Bus) Warnf(format string, args ...any) {
	b.emit(notify.LevelWarning, notify.ActionNone, format, args)
}

func (b *Bus) Infof(format string, args ...any) {
	b.emit(notify.LevelInfo, notify.ActionNone, format, args)
}

// Offerf publishes an info message that carries an action, such as undo
// after a delete.
func (b *Bus) Offerf(action notify.Action, format string, args ...any) {
	b.emit(notify.LevelInfo, action, format, args)
}

func (b *Bus) emit(level notify.Level, action notify.Action, format string, args []any) {
	b.Publish(notify.Notification{Level: level, Action: action, Message: fmt.Sprintf(format, args...)})
}

// History lists stored notifications, newest first.
func (b *Bus) History(ctx context.Context) ([]notify.Notification, error) {
	if b.store == nil {
		return nil, nil
	}
	return b.store.List(ctx)
}

// Clear empties the history.
func (b *Bus) Clear(ctx context.Context) error {
	if b.store == nil {
		return nil
	}
	return b.store.Clear(ctx)
}
