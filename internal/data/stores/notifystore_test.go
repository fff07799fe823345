package stores

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tick/internal/core/notify"
	"github.com/colonyops/tick/internal/data/db"
)

func openNotifyStore(t *testing.T, limit int) *NotifyStore {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return NewNotifyStore(database, limit)
}

func saveMessages(t *testing.T, store *NotifyStore, msgs ...string) {
	t.Helper()
	base := time.Now()
	for i, msg := range msgs {
		_, err := store.Save(context.Background(), notify.Notification{
			Level:     notify.LevelInfo,
			Message:   msg,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}
}

func messages(t *testing.T, store *NotifyStore) []string {
	t.Helper()
	items, err := store.List(context.Background())
	require.NoError(t, err)
	out := make([]string, len(items))
	for i, n := range items {
		out[i] = n.Message
	}
	return out
}

func TestNotifyStore_SaveAndList(t *testing.T) {
	ctx := context.Background()
	store := openNotifyStore(t, 0)

	id, err := store.Save(ctx, notify.Notification{
		Level:     notify.LevelError,
		Message:   "failed to save tasks",
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	items, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].ID)
	assert.Equal(t, notify.LevelError, items[0].Level)
	assert.Equal(t, "failed to save tasks", items[0].Message)
}

func TestNotifyStore_NewestFirst(t *testing.T) {
	store := openNotifyStore(t, 0)
	saveMessages(t, store, "Task deleted", `"Milk" restored`, "Task updated")

	assert.Equal(t, []string{"Task updated", `"Milk" restored`, "Task deleted"}, messages(t, store))
}

func TestNotifyStore_PrunesToLimit(t *testing.T) {
	store := openNotifyStore(t, 3)

	var msgs []string
	for i := range 5 {
		msgs = append(msgs, fmt.Sprintf("msg %d", i))
	}
	saveMessages(t, store, msgs...)

	assert.Equal(t, []string{"msg 4", "msg 3", "msg 2"}, messages(t, store))

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestNotifyStore_Clear(t *testing.T) {
	store := openNotifyStore(t, 0)
	saveMessages(t, store, "one", "two")

	require.NoError(t, store.Clear(context.Background()))

	items, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
}
