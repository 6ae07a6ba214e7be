// Package liststore holds the local, authoritative view of the shared
// shopping list and keeps it in step with the remote collection.
//
// Every mutation goes to the remote collection first and is followed by a
// full refresh; the snapshot is never patched locally. The one exception is
// ReorderItems, which publishes the new order immediately and rolls it back
// if the remote write fails.
package liststore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/notify"
	"github.com/dukerupert/shoplist/internal/view"
)

// Collection is the remote list the store mirrors.
type Collection interface {
	FetchAll(ctx context.Context) ([]model.ListItem, error)
	Insert(ctx context.Context, in model.NewItem) (model.ListItem, error)
	Update(ctx context.Context, id string, p model.ItemPatch) (model.ListItem, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) error
	Reorder(ctx context.Context, orderedIDs []string) error
}

// Feed delivers payload-less change signals for the list.
type Feed interface {
	Subscribe(ctx context.Context, onChange func()) (unsubscribe func(), err error)
}

// Categorizer picks a category for a new item. It must not fail.
type Categorizer interface {
	Resolve(ctx context.Context, name string) model.Category
}

// Status is what a UI needs to decide between list, spinner and error page.
type Status struct {
	Loaded  bool
	Pending int
	// Err is the most recent refresh failure, cleared by the next success.
	Err error
	// LoadFailed is set when the initial load failed and nothing has
	// been loaded since.
	LoadFailed bool
}

type Store struct {
	coll     Collection
	resolver Categorizer
	logger   *slog.Logger
	hub      *notify.Hub

	mu      sync.Mutex
	items   []model.ListItem
	loaded  bool
	loadErr error
	lastErr error
	pending int
	// started counts refreshes begun; applied is the generation of the
	// newest result allowed into the snapshot. A result whose generation
	// is not above applied is stale and dropped.
	started uint64
	applied uint64
}

func New(coll Collection, resolver Categorizer, logger *slog.Logger) *Store {
	return &Store{
		coll:     coll,
		resolver: resolver,
		logger:   logger,
		hub:      notify.NewHub(logger),
		items:    []model.ListItem{},
	}
}

// OnChange registers fn to be called after the snapshot or status changes.
// Bursts may be coalesced into one call.
func (s *Store) OnChange(fn func()) (unsubscribe func()) {
	return s.hub.Subscribe(fn)
}

func (s *Store) changed() {
	s.hub.Broadcast()
}

// Items returns a copy of the current snapshot.
func (s *Store) Items() []model.ListItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Loaded:     s.loaded,
		Pending:    s.pending,
		Err:        s.lastErr,
		LoadFailed: !s.loaded && s.loadErr != nil,
	}
}

// Visible is the snapshot filtered and sorted for display.
func (s *Store) Visible(f view.Filter, mode view.SortMode) []model.ListItem {
	s.mu.Lock()
	items := s.items
	s.mu.Unlock()
	return view.Visible(items, f, mode)
}

// Load performs the initial refresh. If it fails the store reports
// LoadFailed until a later refresh succeeds.
func (s *Store) Load(ctx context.Context) error {
	err := s.Refresh(ctx)
	if err != nil {
		s.mu.Lock()
		s.loadErr = err
		s.mu.Unlock()
		s.changed()
	}
	return err
}

// Refresh replaces the snapshot with the remote collection. A refresh that
// finishes after a newer one has already been applied is discarded.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.started++
	gen := s.started
	s.mu.Unlock()

	items, err := s.coll.FetchAll(ctx)

	s.mu.Lock()
	if gen <= s.applied {
		s.mu.Unlock()
		s.logger.Debug("discarded stale refresh", "generation", gen)
		return nil
	}
	if err != nil {
		s.lastErr = err
		s.mu.Unlock()
		s.changed()
		return fmt.Errorf("refresh: %w", err)
	}
	s.applied = gen
	s.items = items
	s.loaded = true
	s.loadErr = nil
	s.lastErr = nil
	s.mu.Unlock()

	s.changed()
	return nil
}

// sweep refreshes after a successful mutation. The mutation has already
// landed, so a failure here is only logged and left in Status.
func (s *Store) sweep(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("refresh after mutation failed", "error", err)
	}
}

func (s *Store) begin() {
	s.mu.Lock()
	s.pending++
	s.mu.Unlock()
	s.changed()
}

func (s *Store) end() {
	s.mu.Lock()
	s.pending--
	s.mu.Unlock()
	s.changed()
}

// AddItem inserts a new item. When no category is given it is resolved
// first, which may take up to the categoriser's timeout.
func (s *Store) AddItem(ctx context.Context, in model.NewItem) (model.ListItem, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return model.ListItem{}, err
	}

	s.begin()
	defer s.end()

	if in.Category == "" {
		in.Category = s.resolver.Resolve(ctx, in.Name)
	}
	return s.insert(ctx, in)
}

// AddItemFromFavorite inserts name with a known category, skipping
// categorisation.
func (s *Store) AddItemFromFavorite(ctx context.Context, name string, category model.Category) (model.ListItem, error) {
	if category == "" {
		category = model.CategoryOther
	}
	in := model.NewItem{Name: name, Category: category}.Normalize()
	if err := in.Validate(); err != nil {
		return model.ListItem{}, err
	}

	s.begin()
	defer s.end()
	return s.insert(ctx, in)
}

func (s *Store) insert(ctx context.Context, in model.NewItem) (model.ListItem, error) {
	item, err := s.coll.Insert(ctx, in)
	if err != nil {
		return model.ListItem{}, fmt.Errorf("add item: %w", err)
	}
	s.logger.Info("item added", "id", item.ID, "name", item.Name, "category", item.Category)
	s.sweep(ctx)
	return item, nil
}

// UpdateItem applies p remotely. The snapshot only changes through the
// refresh that follows.
func (s *Store) UpdateItem(ctx context.Context, id string, p model.ItemPatch) (model.ListItem, error) {
	if err := p.Validate(); err != nil {
		return model.ListItem{}, err
	}

	s.begin()
	defer s.end()

	item, err := s.coll.Update(ctx, id, p)
	if err != nil {
		return model.ListItem{}, fmt.Errorf("update item: %w", err)
	}
	s.sweep(ctx)
	return item, nil
}

// ToggleCompleted flips the completed flag as currently seen in the
// snapshot. An id missing from the snapshot is ErrNotFound and nothing is
// sent.
func (s *Store) ToggleCompleted(ctx context.Context, id string) (model.ListItem, error) {
	s.mu.Lock()
	idx := slices.IndexFunc(s.items, func(it model.ListItem) bool { return it.ID == id })
	var completed bool
	if idx >= 0 {
		completed = s.items[idx].Completed
	}
	s.mu.Unlock()

	if idx < 0 {
		return model.ListItem{}, fmt.Errorf("toggle item %s: %w", id, model.ErrNotFound)
	}
	return s.UpdateItem(ctx, id, model.ItemPatch{Completed: model.Ptr(!completed)})
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	s.begin()
	defer s.end()

	if err := s.coll.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	s.sweep(ctx)
	return nil
}

// RemovePurchasedItems deletes every completed item in one call and returns
// how many there were. With none completed it does nothing.
func (s *Store) RemovePurchasedItems(ctx context.Context) (int, error) {
	s.mu.Lock()
	var ids []string
	for _, it := range s.items {
		if it.Completed {
			ids = append(ids, it.ID)
		}
	}
	s.mu.Unlock()

	if len(ids) == 0 {
		return 0, nil
	}

	s.begin()
	defer s.end()

	if err := s.coll.DeleteMany(ctx, ids); err != nil {
		return 0, fmt.Errorf("remove purchased items: %w", err)
	}
	s.sweep(ctx)
	return len(ids), nil
}

// ReorderItems shows the new order at once, then writes it remotely. If the
// write fails the snapshot taken just before is put back. Either way a
// refresh follows, since the remote writes are not atomic and may have
// partly landed.
//
// Callers should only offer reordering when view.CanReorder holds.
func (s *Store) ReorderItems(ctx context.Context, orderedIDs []string) error {
	s.begin()
	defer s.end()

	s.mu.Lock()
	prev := s.items
	next := reorder(prev, orderedIDs)
	s.items = next
	// Refreshes already in flight predate the new order.
	s.applied = s.started
	s.mu.Unlock()
	s.changed()

	ids := make([]string, len(next))
	for i, it := range next {
		ids[i] = it.ID
	}

	err := s.coll.Reorder(ctx, ids)
	if err != nil {
		s.mu.Lock()
		s.items = prev
		s.applied = s.started
		s.mu.Unlock()
		s.changed()
		s.logger.Warn("reorder failed, rolled back", "error", err)
	}

	s.sweep(ctx)
	if err != nil {
		return fmt.Errorf("reorder items: %w", err)
	}
	return nil
}

// reorder returns a new slice with items in the order of ids. Items not
// named in ids follow, keeping their relative order. Ids that match no item
// are ignored.
func reorder(items []model.ListItem, ids []string) []model.ListItem {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, dup := pos[id]; !dup {
			pos[id] = i
		}
	}
	rank := func(it model.ListItem) int {
		if p, ok := pos[it.ID]; ok {
			return p
		}
		return len(ids)
	}

	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b model.ListItem) int {
		return rank(a) - rank(b)
	})
	return out
}

// Watch refreshes on every signal from feed until ctx is done. At most one
// refresh runs at a time and signals arriving meanwhile collapse into one
// follow-up refresh.
func (s *Store) Watch(ctx context.Context, feed Feed) error {
	trigger := make(chan struct{}, 1)
	unsubscribe, err := feed.Subscribe(ctx, func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe to changes: %w", err)
	}
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-trigger:
			if err := s.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Warn("refresh on change failed", "error", err)
			}
		}
	}
}
