package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tick/internal/core/kv"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "kv"))
	require.NoError(t, err)
	return s
}

func TestStore_SetGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Set(ctx, "tasks", sample{Name: "a", Count: 2}))

	var got sample
	require.NoError(t, s.Get(ctx, "tasks", &got))
	assert.Equal(t, sample{Name: "a", Count: 2}, got)

	_, err := os.Stat(filepath.Join(s.Dir(), "tasks.json"))
	assert.NoError(t, err)
}

func TestStore_GetMissing(t *testing.T) {
	var got sample
	err := newTestStore(t).Get(context.Background(), "missing", &got)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestStore_GetCorrupt(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "tasks.json"), []byte("{nope"), 0o644))

	var got []sample
	err := s.Get(ctx, "tasks", &got)
	require.Error(t, err)
	assert.False(t, kv.IsNotFound(err))
}

func TestStore_KeyEscaping(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Set(ctx, "prefs:theme", "dark"))
	require.NoError(t, s.Set(ctx, "a/b", 1))

	keys, err := s.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b", "prefs:theme"}, keys)

	var theme string
	require.NoError(t, s.Get(ctx, "prefs:theme", &theme))
	assert.Equal(t, "dark", theme)
}

func TestStore_CreatedAtPreserved(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return first }
	require.NoError(t, s.Set(ctx, "k", 1))

	s.now = func() time.Time { return first.Add(time.Hour) }
	require.NoError(t, s.Set(ctx, "k", 2))

	entry, err := s.GetRaw(ctx, "k")
	require.NoError(t, err)
	assert.True(t, entry.CreatedAt.Equal(first))
	assert.True(t, entry.UpdatedAt.Equal(first.Add(time.Hour)))
	assert.JSONEq(t, "2", string(entry.Value))
}

func TestStore_TTL(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.SetTTL(ctx, "undo", "rec", time.Minute))
	require.NoError(t, s.Set(ctx, "tasks", 1))

	ok, err := s.Has(ctx, "undo")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)

	ok, err = s.Has(ctx, "undo")
	require.NoError(t, err)
	assert.False(t, ok)

	keys, err := s.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tasks"}, keys)

	require.NoError(t, s.SweepExpired(ctx))
	_, err = os.Stat(filepath.Join(s.Dir(), "undo.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Set(ctx, "k", 1))
	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"), "deleting a missing key is not an error")

	ok, err := s.Has(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyFromFile(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"tasks.json", "tasks", true},
		{"/x/prefs%3Atheme.json", "prefs:theme", true},
		{"tasks.json.tmp", "", false},
		{"notes.txt", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := KeyFromFile(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
