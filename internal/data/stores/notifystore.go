package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/tick/internal/core/notify"
	"github.com/colonyops/tick/internal/data/db"
)

// NotifyStore keeps the notification history in SQLite. When limit is
// positive only the newest limit rows survive each Save.
type NotifyStore struct {
	db    *db.DB
	limit int
}

var _ notify.Store = (*NotifyStore)(nil)

// NewNotifyStore creates a notification history capped at limit entries.
// A limit of zero keeps everything.
func NewNotifyStore(database *db.DB, limit int) *NotifyStore {
	return &NotifyStore{db: database, limit: limit}
}

// Save inserts n and prunes the history in the same transaction.
func (s *NotifyStore) Save(ctx context.Context, n notify.Notification) (int64, error) {
	var id int64
	err := s.db.WithTx(ctx, func(q *db.Queries) error {
		var err error
		id, err = q.InsertNotification(ctx, db.InsertNotificationParams{
			Level:     string(n.Level),
			Message:   n.Message,
			CreatedAt: n.CreatedAt.UnixNano(),
		})
		if err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}

		if s.limit > 0 {
			if err := q.PruneNotifications(ctx, int64(s.limit)); err != nil {
				return fmt.Errorf("prune notifications: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// List returns the history, newest first.
func (s *NotifyStore) List(ctx context.Context) ([]notify.Notification, error) {
	rows, err := s.db.Queries().ListNotifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	out := make([]notify.Notification, len(rows))
	for i, row := range rows {
		out[i] = notify.Notification{
			ID:        row.ID,
			Level:     notify.Level(row.Level),
			Message:   row.Message,
			CreatedAt: time.Unix(0, row.CreatedAt),
		}
	}
	return out, nil
}

func (s *NotifyStore) Clear(ctx context.Context) error {
	if err := s.db.Queries().DeleteAllNotifications(ctx); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}

func (s *NotifyStore) Count(ctx context.Context) (int64, error) {
	count, err := s.db.Queries().CountNotifications(ctx)
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return count, nil
}
