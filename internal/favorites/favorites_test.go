package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/shoplist/internal/database"
	"github.com/dukerupert/shoplist/internal/model"
)

type fakeBackend struct {
	mu      sync.Mutex
	items   []model.Favorite
	lists   int
	listErr error
	addErr  error
	added   []model.Favorite
	rmErr   error
	// When gate is set, List signals listed after reading and then
	// blocks until gate is closed.
	gate   chan struct{}
	listed chan struct{}
}

func (f *fakeBackend) List(context.Context) ([]model.Favorite, error) {
	f.mu.Lock()
	f.lists++
	if f.listErr != nil {
		f.mu.Unlock()
		return nil, f.listErr
	}
	items := append([]model.Favorite(nil), f.items...)
	gate, listed := f.gate, f.listed
	f.mu.Unlock()

	if gate != nil {
		listed <- struct{}{}
		<-gate
	}
	return items, nil
}

// holdNextList makes the next List block after reading. Closing the
// returned channel releases it.
func (f *fakeBackend) holdNextList() (release chan struct{}, listed chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
	f.listed = make(chan struct{}, 1)
	return f.gate, f.listed
}

func (f *fakeBackend) unhold() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate, f.listed = nil, nil
}

func (f *fakeBackend) Add(_ context.Context, fav model.Favorite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, fav)
	f.items = append(f.items, fav)
	return nil
}

func (f *fakeBackend) Remove(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rmErr != nil {
		return f.rmErr
	}
	f.items = slices.DeleteFunc(f.items, func(fav model.Favorite) bool { return fav.Name == name })
	return nil
}

func (f *fakeBackend) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCache(b Backend) (*Cache, *time.Time) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewCache(b, discardLogger())
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCacheListServesFreshFromCache(t *testing.T) {
	b := &fakeBackend{items: []model.Favorite{{Name: "Milch", Category: model.CategoryDairy}}}
	c, now := newTestCache(b)
	ctx := context.Background()

	_, err := c.List(ctx)
	require.NoError(t, err)
	_, err = c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, b.listCount())

	*now = now.Add(StaleTime)
	_, err = c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, b.listCount())
}

func TestCacheListStaleOnError(t *testing.T) {
	b := &fakeBackend{items: []model.Favorite{{Name: "Brot", Category: model.CategoryBakery}}}
	c, now := newTestCache(b)
	ctx := context.Background()

	_, err := c.List(ctx)
	require.NoError(t, err)

	b.listErr = errors.New("offline")
	*now = now.Add(2 * StaleTime)

	favs, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Favorite{{Name: "Brot", Category: model.CategoryBakery}}, favs)
}

func TestCacheListErrorWithoutCache(t *testing.T) {
	b := &fakeBackend{listErr: errors.New("offline")}
	c, _ := newTestCache(b)

	_, err := c.List(context.Background())
	assert.Error(t, err)
}

func TestCacheRefreshAlwaysReads(t *testing.T) {
	b := &fakeBackend{}
	c, _ := newTestCache(b)

	c.Refresh(context.Background())
	c.Refresh(context.Background())
	assert.Equal(t, 2, b.listCount())
}

func TestCacheRemove(t *testing.T) {
	b := &fakeBackend{items: []model.Favorite{
		{Name: "Milch", Category: model.CategoryDairy},
		{Name: "Brot", Category: model.CategoryBakery},
	}}
	c, _ := newTestCache(b)
	ctx := context.Background()

	_, err := c.List(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Remove(ctx, "Milch"))
	favs, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Favorite{{Name: "Brot", Category: model.CategoryBakery}}, favs)
	assert.Equal(t, 1, b.listCount(), "remove must not refetch")

	b.rmErr = errors.New("nope")
	assert.Error(t, c.Remove(ctx, "Brot"))
	favs, _ = c.List(ctx)
	assert.Len(t, favs, 1)
}

func TestCacheRecordSwallowsErrors(t *testing.T) {
	b := &fakeBackend{addErr: errors.New("offline")}
	c, _ := newTestCache(b)

	c.Record("Milch", model.CategoryDairy)
	c.Wait()
	assert.Empty(t, b.added)
}

func TestCacheRecordMarksStale(t *testing.T) {
	b := &fakeBackend{}
	c, _ := newTestCache(b)
	ctx := context.Background()

	_, err := c.List(ctx)
	require.NoError(t, err)

	c.Record("Käse", model.CategoryDairy)
	c.Wait()

	favs, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Favorite{{Name: "Käse", Category: model.CategoryDairy}}, favs)
}

func TestCacheRecordDuringRefresh(t *testing.T) {
	b := &fakeBackend{}
	c, _ := newTestCache(b)
	ctx := context.Background()
	_, err := c.List(ctx)
	require.NoError(t, err)

	release, listed := b.holdNextList()
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Refresh(ctx)
	}()
	<-listed
	b.unhold()

	c.Record("Käse", model.CategoryDairy)
	c.Wait()
	close(release)
	<-done

	favs, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Favorite{{Name: "Käse", Category: model.CategoryDairy}}, favs)
}

func TestCacheRemoveDuringRefresh(t *testing.T) {
	b := &fakeBackend{items: []model.Favorite{
		{Name: "Milch", Category: model.CategoryDairy},
		{Name: "Brot", Category: model.CategoryBakery},
	}}
	c, _ := newTestCache(b)
	ctx := context.Background()
	_, err := c.List(ctx)
	require.NoError(t, err)

	release, listed := b.holdNextList()
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Refresh(ctx)
	}()
	<-listed
	b.unhold()

	require.NoError(t, c.Remove(ctx, "Brot"))
	close(release)
	<-done

	assert.Equal(t, []model.Favorite{{Name: "Milch", Category: model.CategoryDairy}}, c.Matching(""))
	favs, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Favorite{{Name: "Milch", Category: model.CategoryDairy}}, favs)
}

func TestCacheMatching(t *testing.T) {
	b := &fakeBackend{items: []model.Favorite{
		{Name: "Milch", Category: model.CategoryDairy},
		{Name: "Mehl", Category: model.CategoryOther},
		{Name: "Hafermilch", Category: model.CategoryDairy},
	}}
	c, _ := newTestCache(b)
	_, err := c.List(context.Background())
	require.NoError(t, err)

	assert.Len(t, c.Matching(""), 3)
	got := c.Matching("mi")
	require.Len(t, got, 1)
	assert.Equal(t, "Milch", got[0].Name)
	assert.Len(t, c.Matching("M"), 2)
	assert.Empty(t, c.Matching("x"))
}

func TestHTTPBackend(t *testing.T) {
	var deleted string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/favorites":
			json.NewEncoder(w).Encode([]model.Favorite{{Name: "Milch", Category: model.CategoryDairy}})
		case r.Method == http.MethodPost && r.URL.Path == "/api/favorites":
			var f model.Favorite
			json.NewDecoder(r.Body).Decode(&f)
			assert.Equal(t, "Tee", f.Name)
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodDelete:
			deleted = r.URL.Path
			if r.URL.Path == "/api/favorites/Gibt es nicht" {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"error":"Favorite not found"}`))
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	h := NewHTTP(server.URL)
	ctx := context.Background()

	favs, err := h.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Favorite{{Name: "Milch", Category: model.CategoryDairy}}, favs)

	require.NoError(t, h.Add(ctx, model.Favorite{Name: "Tee", Category: model.CategoryBeverages}))

	require.NoError(t, h.Remove(ctx, "Äpfel & Birnen"))
	assert.Equal(t, "/api/favorites/Äpfel & Birnen", deleted)

	err = h.Remove(ctx, "Gibt es nicht")
	require.Error(t, err)
	assert.True(t, model.IsRemote(err))
	assert.Contains(t, err.Error(), "Favorite not found")
}

func TestSQLBackend(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	s := NewSQL(db)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, model.Favorite{Name: "Milch", Category: model.CategoryOther}))
	require.NoError(t, s.Add(ctx, model.Favorite{Name: "Milch", Category: model.CategoryDairy}))
	require.NoError(t, s.Add(ctx, model.Favorite{Name: "Brot", Category: model.CategoryBakery}))

	favs, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Favorite{
		{Name: "Brot", Category: model.CategoryBakery},
		{Name: "Milch", Category: model.CategoryDairy},
	}, favs)

	require.NoError(t, s.Remove(ctx, "Brot"))
	assert.True(t, errors.Is(s.Remove(ctx, "Brot"), model.ErrNotFound))
}

func TestDisabledBackend(t *testing.T) {
	c := NewCache(Disabled{}, discardLogger())
	favs, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, favs)
	assert.ErrorIs(t, c.Remove(context.Background(), "x"), ErrDisabled)
}
