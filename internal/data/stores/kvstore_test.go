package stores

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tick/internal/core/kv"
	"github.com/colonyops/tick/internal/core/task"
	"github.com/colonyops/tick/internal/data/db"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestKVStore(t *testing.T) (*KVStore, *fakeClock) {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := NewKVStore(database)
	store.now = clock.now
	return store, clock
}

func TestKVStore_TaskListRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestKVStore(t)

	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	in := []task.Task{
		{ID: "1", Text: "Report", Category: task.CategoryWork, DueDate: &due},
		{ID: "2", Text: "Milk", Category: task.CategoryShopping, Completed: true},
	}
	require.NoError(t, store.Set(ctx, task.StorageKey, in))

	var out []task.Task
	require.NoError(t, store.Get(ctx, task.StorageKey, &out))
	require.Len(t, out, 2)
	assert.Equal(t, "Report", out[0].Text)
	assert.True(t, out[0].DueDate.Equal(due))
	assert.True(t, out[1].Completed)
}

func TestKVStore_Missing(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestKVStore(t)

	var v string
	require.ErrorIs(t, store.Get(ctx, "tasks", &v), kv.ErrNotFound)

	_, err := store.GetRaw(ctx, "tasks")
	require.ErrorIs(t, err, kv.ErrNotFound)

	has, err := store.Has(ctx, "tasks")
	require.NoError(t, err)
	assert.False(t, has)

	keys, err := store.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{}, keys)
}

func TestKVStore_OverwriteKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestKVStore(t)

	require.NoError(t, store.Set(ctx, "prefs:theme", "dark"))
	created := clock.now()

	clock.advance(time.Hour)
	require.NoError(t, store.Set(ctx, "prefs:theme", "light"))

	entry, err := store.GetRaw(ctx, "prefs:theme")
	require.NoError(t, err)
	assert.JSONEq(t, `"light"`, string(entry.Value))
	assert.True(t, entry.CreatedAt.Equal(created))
	assert.True(t, entry.UpdatedAt.Equal(clock.now()))
	assert.Nil(t, entry.ExpiresAt)
}

func TestKVStore_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestKVStore(t)

	for _, k := range []string{"undo", "tasks", "prefs:theme"} {
		require.NoError(t, store.Set(ctx, k, true))
	}
	require.NoError(t, store.Delete(ctx, "undo"))
	require.NoError(t, store.Delete(ctx, "never-set"))

	keys, err := store.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"prefs:theme", "tasks"}, keys)
}

func TestKVStore_TTL(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestKVStore(t)

	require.NoError(t, store.SetTTL(ctx, "undo", "record", 10*time.Minute))

	entry, err := store.GetRaw(ctx, "undo")
	require.NoError(t, err)
	require.NotNil(t, entry.ExpiresAt)
	assert.True(t, entry.ExpiresAt.Equal(clock.now().Add(10*time.Minute)))

	clock.advance(9 * time.Minute)
	has, err := store.Has(ctx, "undo")
	require.NoError(t, err)
	assert.True(t, has, "live before the window closes")

	clock.advance(2 * time.Minute)

	var v string
	require.ErrorIs(t, store.Get(ctx, "undo", &v), kv.ErrNotFound)
	has, err = store.Has(ctx, "undo")
	require.NoError(t, err)
	assert.False(t, has)

	keys, err := store.ListKeys(ctx)
	require.NoError(t, err)
	assert.NotContains(t, keys, "undo")
}

func TestKVStore_SetClearsTTL(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestKVStore(t)

	require.NoError(t, store.SetTTL(ctx, "undo", 1, time.Minute))
	require.NoError(t, store.Set(ctx, "undo", 2))
	clock.advance(time.Hour)

	var v int
	require.NoError(t, store.Get(ctx, "undo", &v))
	assert.Equal(t, 2, v)
}

func TestKVStore_SweepExpired(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestKVStore(t)

	require.NoError(t, store.Set(ctx, "tasks", []task.Task{}))
	require.NoError(t, store.SetTTL(ctx, "undo", "goes", time.Minute))
	clock.advance(2 * time.Minute)

	require.NoError(t, store.SweepExpired(ctx))

	// Moving the clock back would revive an expired row that was only
	// hidden; a swept row is gone for good.
	clock.advance(-time.Hour)
	has, err := store.Has(ctx, "undo")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestKVStore_DecodeError(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestKVStore(t)

	require.NoError(t, store.Set(ctx, "tasks", map[string]int{"not": 1}))

	var v []task.Task
	err := store.Get(ctx, "tasks", &v)
	require.Error(t, err)
	assert.False(t, kv.IsNotFound(err))
	assert.ErrorContains(t, err, "decode")
}
