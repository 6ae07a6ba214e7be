package remote

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/shoplist/internal/database"
	"github.com/dukerupert/shoplist/internal/model"
)

func setupSQLite(t *testing.T) *SQLite {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLite(db, model.DefaultListID, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSQLiteInsertDefaults(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	item, err := s.Insert(ctx, model.NewItem{Name: "Milch", Quantity: "2"})
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, model.DefaultListID, item.ListID)
	assert.Equal(t, "Milch", item.Name)
	assert.Equal(t, "2", item.Quantity)
	assert.Empty(t, item.Notes)
	assert.Equal(t, model.CategoryOther, item.Category)
	assert.Equal(t, model.StoreOther, item.Store)
	assert.False(t, item.Completed)
	assert.Nil(t, item.SortOrder)
	assert.False(t, item.CreatedAt.IsZero())
}

func TestSQLiteFetchAllOrdering(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	a, err := s.Insert(ctx, model.NewItem{Name: "A"})
	require.NoError(t, err)
	b, err := s.Insert(ctx, model.NewItem{Name: "B"})
	require.NoError(t, err)
	c, err := s.Insert(ctx, model.NewItem{Name: "C"})
	require.NoError(t, err)

	// c first, a second, b unordered.
	_, err = s.Update(ctx, c.ID, model.ItemPatch{SortOrder: model.Ptr(0)})
	require.NoError(t, err)
	_, err = s.Update(ctx, a.ID, model.ItemPatch{SortOrder: model.Ptr(1)})
	require.NoError(t, err)

	items, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, ids(items))
}

func TestSQLiteFetchAllScopedToList(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	other := NewSQLite(s.db, "some-other-list", slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := other.Insert(ctx, model.NewItem{Name: "Fremd"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, model.NewItem{Name: "Eigen"})
	require.NoError(t, err)

	items, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Eigen", items[0].Name)
}

func TestSQLiteUpdate(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	item, err := s.Insert(ctx, model.NewItem{Name: "Brot", Notes: "Vollkorn", AssignedTo: "jana-uuid"})
	require.NoError(t, err)

	cat := model.CategoryBakery
	updated, err := s.Update(ctx, item.ID, model.ItemPatch{
		Category:   &cat,
		Completed:  model.Ptr(true),
		Notes:      model.Ptr(""),
		AssignedTo: model.Ptr(""),
	})
	require.NoError(t, err)

	assert.Equal(t, model.CategoryBakery, updated.Category)
	assert.True(t, updated.Completed)
	assert.Empty(t, updated.Notes)
	assert.Empty(t, updated.AssignedTo)
	assert.Equal(t, "Brot", updated.Name)
}

func TestSQLiteNotFound(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	_, err := s.Update(ctx, "missing", model.ItemPatch{Completed: model.Ptr(true)})
	assert.True(t, errors.Is(err, model.ErrNotFound), "update: %v", err)

	err = s.Delete(ctx, "missing")
	assert.True(t, errors.Is(err, model.ErrNotFound), "delete: %v", err)
}

func TestSQLiteUpdateEmptyPatch(t *testing.T) {
	s := setupSQLite(t)
	item, err := s.Insert(context.Background(), model.NewItem{Name: "Eier"})
	require.NoError(t, err)

	_, err = s.Update(context.Background(), item.ID, model.ItemPatch{})
	assert.True(t, model.IsValidation(err), "got %v", err)
}

func TestSQLiteDeleteMany(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	a, _ := s.Insert(ctx, model.NewItem{Name: "A"})
	b, _ := s.Insert(ctx, model.NewItem{Name: "B"})
	c, _ := s.Insert(ctx, model.NewItem{Name: "C"})

	require.NoError(t, s.DeleteMany(ctx, []string{a.ID, c.ID, "missing"}))
	require.NoError(t, s.DeleteMany(ctx, nil))

	items, err := s.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids(items))
}

func TestSQLiteReorder(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	a, _ := s.Insert(ctx, model.NewItem{Name: "A"})
	b, _ := s.Insert(ctx, model.NewItem{Name: "B"})
	c, _ := s.Insert(ctx, model.NewItem{Name: "C"})

	// Unknown ids update zero rows and are not an error.
	require.NoError(t, s.Reorder(ctx, []string{c.ID, "missing", a.ID, b.ID}))

	items, err := s.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, ids(items))
	require.NotNil(t, items[0].SortOrder)
	assert.Equal(t, 0, *items[0].SortOrder)
	assert.Equal(t, 2, *items[1].SortOrder)
	assert.Equal(t, 3, *items[2].SortOrder)
}

func TestSQLiteSubscribe(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	var calls atomic.Int32
	unsubscribe, err := s.Subscribe(ctx, func() { calls.Add(1) })
	require.NoError(t, err)

	_, err = s.Insert(ctx, model.NewItem{Name: "Käse"})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, 5*time.Millisecond)

	unsubscribe()
	before := calls.Load()
	_, err = s.Insert(ctx, model.NewItem{Name: "Wurst"})
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, before, calls.Load())
}

func ids(items []model.ListItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
