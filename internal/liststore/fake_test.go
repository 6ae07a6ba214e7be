package liststore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
)

// fakeCollection is an in-memory Collection. The hook fields, when set,
// replace the default behaviour of the matching call.
type fakeCollection struct {
	mu     sync.Mutex
	items  []model.ListItem
	nextID int
	calls  map[string]int

	fetchErr    error
	insertErr   error
	updateErr   error
	deleteErr   error
	fetchHook   func(ctx context.Context) ([]model.ListItem, error)
	reorderHook func(ctx context.Context, ids []string) error
}

func newFakeCollection(items ...model.ListItem) *fakeCollection {
	return &fakeCollection{items: items, calls: map[string]int{}}
}

func (f *fakeCollection) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeCollection) record(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeCollection) FetchAll(ctx context.Context) ([]model.ListItem, error) {
	f.record("fetch")
	if f.fetchHook != nil {
		return f.fetchHook(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, model.NewRemoteError("fetch items", f.fetchErr)
	}
	return slices.Clone(f.items), nil
}

func (f *fakeCollection) Insert(_ context.Context, in model.NewItem) (model.ListItem, error) {
	f.record("insert")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return model.ListItem{}, model.NewRemoteError("insert item", f.insertErr)
	}
	f.nextID++
	item := model.ListItem{
		ID:         fmt.Sprintf("new-%d", f.nextID),
		ListID:     model.DefaultListID,
		Name:       in.Name,
		Quantity:   in.Quantity,
		Notes:      in.Notes,
		Category:   in.Category,
		Store:      in.Store,
		AssignedTo: in.AssignedTo,
		CreatedAt:  time.Now(),
	}
	f.items = append(f.items, item)
	return item, nil
}

func (f *fakeCollection) Update(_ context.Context, id string, p model.ItemPatch) (model.ListItem, error) {
	f.record("update")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return model.ListItem{}, model.NewRemoteError("update item", f.updateErr)
	}
	i := slices.IndexFunc(f.items, func(it model.ListItem) bool { return it.ID == id })
	if i < 0 {
		return model.ListItem{}, fmt.Errorf("update item %s: %w", id, model.ErrNotFound)
	}
	items := slices.Clone(f.items)
	if p.Name != nil {
		items[i].Name = *p.Name
	}
	if p.Completed != nil {
		items[i].Completed = *p.Completed
	}
	if p.Category != nil {
		items[i].Category = *p.Category
	}
	f.items = items
	return items[i], nil
}

func (f *fakeCollection) Delete(_ context.Context, id string) error {
	f.record("delete")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return model.NewRemoteError("delete item", f.deleteErr)
	}
	n := len(f.items)
	f.items = slices.DeleteFunc(slices.Clone(f.items), func(it model.ListItem) bool { return it.ID == id })
	if len(f.items) == n {
		return fmt.Errorf("delete item %s: %w", id, model.ErrNotFound)
	}
	return nil
}

func (f *fakeCollection) DeleteMany(_ context.Context, ids []string) error {
	f.record("deleteMany")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return model.NewRemoteError("delete items", f.deleteErr)
	}
	f.items = slices.DeleteFunc(slices.Clone(f.items), func(it model.ListItem) bool {
		return slices.Contains(ids, it.ID)
	})
	return nil
}

func (f *fakeCollection) Reorder(ctx context.Context, ids []string) error {
	f.record("reorder")
	if f.reorderHook != nil {
		if err := f.reorderHook(ctx, ids); err != nil {
			return model.NewRemoteError("reorder items", err)
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = reorder(f.items, ids)
	return nil
}

func (f *fakeCollection) setFetchErr(err error) {
	f.mu.Lock()
	f.fetchErr = err
	f.mu.Unlock()
}

type fixedResolver struct {
	mu    sync.Mutex
	cat   model.Category
	calls int
}

func (r *fixedResolver) Resolve(context.Context, string) model.Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.cat
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func item(id, name string) model.ListItem {
	return model.ListItem{ID: id, ListID: model.DefaultListID, Name: name, Category: model.CategoryOther, Store: model.StoreOther}
}

func ids(items []model.ListItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
