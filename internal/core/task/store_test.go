package task

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqIDs() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("t%d", n)
	}
}

func newTestStore(t *testing.T, texts ...string) *Store {
	t.Helper()
	s := NewStore(WithIDFunc(seqIDs()))
	for _, text := range texts {
		_, err := s.Add(text, CategoryWork, nil)
		require.NoError(t, err)
	}
	return s
}

func TestStore_Add(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category Category
		wantErr  bool
		wantText string
	}{
		{"valid", "Buy milk", CategoryShopping, false, "Buy milk"},
		{"trims whitespace", "  Call mom \n", CategoryPersonal, false, "Call mom"},
		{"exactly 100 chars", strings.Repeat("x", 100), CategoryWork, false, strings.Repeat("x", 100)},
		{"100 multibyte chars", strings.Repeat("é", 100), CategoryWork, false, strings.Repeat("é", 100)},
		{"101 chars", strings.Repeat("x", 101), CategoryWork, true, ""},
		{"empty", "", CategoryWork, true, ""},
		{"whitespace only", " \t\n ", CategoryWork, true, ""},
		{"all pseudo-category", "task", CategoryAll, true, ""},
		{"unknown category", "task", Category("errands"), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(WithIDFunc(seqIDs()))

			got, err := s.Add(tt.text, tt.category, nil)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrValidation)
				assert.Empty(t, s.List(), "failed add must leave list unchanged")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantText, got.Text)
			assert.Equal(t, tt.category, got.Category)
			assert.False(t, got.Completed)
			assert.Equal(t, []Task{got}, s.List())
		})
	}
}

func TestStore_Add_AppendsWithUniqueIDs(t *testing.T) {
	s := NewStore()

	a, err := s.Add("first", CategoryWork, nil)
	require.NoError(t, err)
	b, err := s.Add("second", CategoryWork, nil)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Text)
	assert.Equal(t, "second", list[1].Text)
}

func TestStore_Add_DuplicateGeneratedID(t *testing.T) {
	s := NewStore(WithIDFunc(func() string { return "same" }))

	_, err := s.Add("one", CategoryWork, nil)
	require.NoError(t, err)

	_, err = s.Add("two", CategoryWork, nil)
	require.Error(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestStore_Add_CopiesDueDate(t *testing.T) {
	s := newTestStore(t)
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	got, err := s.Add("file taxes", CategoryPersonal, &due)
	require.NoError(t, err)

	due = due.AddDate(1, 0, 0)
	stored, ok := s.Get(got.ID)
	require.True(t, ok)
	require.NotNil(t, stored.DueDate)
	assert.Equal(t, 2026, stored.DueDate.Year())
}

func TestStore_ToggleComplete(t *testing.T) {
	s := newTestStore(t, "a", "b")

	require.NoError(t, s.ToggleComplete("t1"))
	got, _ := s.Get("t1")
	assert.True(t, got.Completed)

	require.NoError(t, s.ToggleComplete("t1"))
	got, _ = s.Get("t1")
	assert.False(t, got.Completed, "toggling twice restores the original flag")

	other, _ := s.Get("t2")
	assert.False(t, other.Completed)
}

func TestStore_ToggleComplete_NotFound(t *testing.T) {
	s := newTestStore(t, "a")
	before := s.List()

	err := s.ToggleComplete("missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, s.List())
}

func TestStore_Edit(t *testing.T) {
	s := newTestStore(t, "draft")
	require.NoError(t, s.ToggleComplete("t1"))
	require.NoError(t, s.StartEdit("t1"))

	due := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Edit("t1", "  final  ", &due))

	got, _ := s.Get("t1")
	assert.Equal(t, "final", got.Text)
	assert.Equal(t, CategoryWork, got.Category)
	assert.True(t, got.Completed)
	assert.False(t, got.IsEditing)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))

	require.NoError(t, s.Edit("t1", "final", nil))
	got, _ = s.Get("t1")
	assert.Nil(t, got.DueDate, "nil due date clears it")
}

func TestStore_Edit_Errors(t *testing.T) {
	s := newTestStore(t, "keep")

	err := s.Edit("t1", "   ", nil)
	require.ErrorIs(t, err, ErrValidation)

	err = s.Edit("missing", "text", nil)
	require.ErrorIs(t, err, ErrNotFound)

	got, _ := s.Get("t1")
	assert.Equal(t, "keep", got.Text)
}

func TestStore_StartEdit_SingleEditor(t *testing.T) {
	s := newTestStore(t, "a", "b", "c")

	for _, id := range []string{"t1", "t3", "t2", "t2"} {
		require.NoError(t, s.StartEdit(id))

		editing := 0
		for _, task := range s.List() {
			if task.IsEditing {
				editing++
				assert.Equal(t, id, task.ID)
			}
		}
		assert.Equal(t, 1, editing)
	}

	require.ErrorIs(t, s.StartEdit("missing"), ErrNotFound)
	got, ok := s.Editing()
	require.True(t, ok)
	assert.Equal(t, "t2", got.ID, "failed start edit leaves state unchanged")

	require.NoError(t, s.CancelEdit("t2"))
	_, ok = s.Editing()
	assert.False(t, ok)
}

func TestStore_DeleteRestore_RoundTrip(t *testing.T) {
	for _, id := range []string{"t1", "t2", "t3"} {
		t.Run(id, func(t *testing.T) {
			s := newTestStore(t, "a", "b", "c")
			require.NoError(t, s.ToggleComplete("t2"))
			before := s.List()

			rec, err := s.Delete(id)
			require.NoError(t, err)
			assert.Equal(t, 2, s.Len())

			s.Restore(rec)
			assert.Equal(t, before, s.List())
		})
	}
}

func TestStore_Delete_NotFound(t *testing.T) {
	s := newTestStore(t, "a")
	_, err := s.Delete("missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, s.Len())
}

func TestStore_Restore_ClampsToEnd(t *testing.T) {
	s := newTestStore(t, "a", "b", "c")

	rec, err := s.Delete("t3")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Index)

	_, err = s.Delete("t1")
	require.NoError(t, err)
	_, err = s.Delete("t2")
	require.NoError(t, err)

	s.Restore(rec)
	list := s.List()
	require.Len(t, list, 1)
	assert.Equal(t, "c", list[0].Text)

	s.Restore(DeletedRecord{Task: Task{ID: "neg", Text: "neg", Category: CategoryWork}, Index: -4})
	assert.Equal(t, "neg", s.List()[0].ID)
}

func TestStore_ListIsSnapshot(t *testing.T) {
	due := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore(WithIDFunc(seqIDs()))
	_, err := s.Add("a", CategoryWork, &due)
	require.NoError(t, err)

	list := s.List()
	list[0].Text = "mutated"
	*list[0].DueDate = due.AddDate(5, 0, 0)

	got, _ := s.Get("t1")
	assert.Equal(t, "a", got.Text)
	assert.Equal(t, 2026, got.DueDate.Year())
}

func TestStore_Scenario_BuyMilk(t *testing.T) {
	s := NewStore()
	var undo UndoBuffer

	added, err := s.Add("Buy milk", CategoryShopping, nil)
	require.NoError(t, err)
	require.Len(t, s.List(), 1)
	assert.Equal(t, "Buy milk", s.List()[0].Text)
	assert.Equal(t, CategoryShopping, s.List()[0].Category)
	assert.False(t, s.List()[0].Completed)

	rec, err := s.Delete(added.ID)
	require.NoError(t, err)
	undo.Capture(rec)
	assert.Empty(t, s.List())

	got, ok := undo.Consume()
	require.True(t, ok)
	s.Restore(got)

	require.Len(t, s.List(), 1)
	assert.Equal(t, added, s.List()[0])
	assert.Equal(t, 0, got.Index)
}

func TestStore_Scenario_TooLong(t *testing.T) {
	s := NewStore()
	_, err := s.Add(strings.Repeat("x", 101), CategoryWork, nil)
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, s.List())
}
