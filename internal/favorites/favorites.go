// Package favorites keeps the name→category suggestions shown while adding
// an item. Favorites are recorded as a side effect of successful
// categorisation and only ever removed explicitly.
package favorites

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
)

// StaleTime is how long a fetched list is served without re-reading.
const StaleTime = 5 * time.Minute

// recordTimeout bounds the background create issued by Record.
const recordTimeout = 10 * time.Second

var ErrDisabled = errors.New("favorites not configured")

// Backend is where favorites are stored.
type Backend interface {
	List(ctx context.Context) ([]model.Favorite, error)
	Add(ctx context.Context, f model.Favorite) error
	Remove(ctx context.Context, name string) error
}

type Cache struct {
	backend Backend
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.RWMutex
	items     []model.Favorite
	fetchedAt time.Time
	loaded    bool
	// gen moves on every refresh start and every local write. A fetch is
	// only applied if nothing moved it since the fetch began.
	gen uint64

	wg sync.WaitGroup
}

func NewCache(backend Backend, logger *slog.Logger) *Cache {
	return &Cache{
		backend: backend,
		logger:  logger,
		now:     time.Now,
	}
}

// List returns the cached favorites, re-reading them when older than
// StaleTime. A failed read keeps serving whatever was cached before and
// reports the error only when nothing was.
func (c *Cache) List(ctx context.Context) ([]model.Favorite, error) {
	c.mu.RLock()
	if c.loaded && c.now().Sub(c.fetchedAt) < StaleTime {
		items := slices.Clone(c.items)
		c.mu.RUnlock()
		return items, nil
	}
	c.mu.RUnlock()

	items, err := c.Refresh(ctx)
	if err != nil {
		c.mu.RLock()
		defer c.mu.RUnlock()
		if c.loaded {
			c.logger.Warn("serving stale favorites", "error", err)
			return slices.Clone(c.items), nil
		}
		return nil, err
	}
	return items, nil
}

// Refresh re-reads the favorites regardless of age. A result overtaken by
// a newer refresh, a Remove or a recorded favorite is returned but not
// cached.
func (c *Cache) Refresh(ctx context.Context) ([]model.Favorite, error) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	items, err := c.backend.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Favorite{}
	}

	c.mu.Lock()
	if gen == c.gen {
		c.items = items
		c.fetchedAt = c.now()
		c.loaded = true
	}
	c.mu.Unlock()
	return slices.Clone(items), nil
}

// Remove deletes the favorite and, on success, drops it from the cache.
func (c *Cache) Remove(ctx context.Context, name string) error {
	if err := c.backend.Remove(ctx, name); err != nil {
		return err
	}
	c.mu.Lock()
	c.gen++
	c.items = slices.DeleteFunc(slices.Clone(c.items), func(f model.Favorite) bool {
		return f.Name == name
	})
	c.mu.Unlock()
	return nil
}

// Record stores a favorite in the background. Failures are logged, never
// returned. On success the cached list is marked stale so the next List
// re-reads it.
func (c *Cache) Record(name string, category model.Category) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := c.backend.Add(ctx, model.Favorite{Name: name, Category: category}); err != nil {
			c.logger.Warn("record favorite", "name", name, "error", err)
			return
		}
		c.mu.Lock()
		c.gen++
		c.fetchedAt = time.Time{}
		c.mu.Unlock()
	}()
}

// Wait blocks until background Record calls have finished.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// Matching filters cached favorites to those whose name starts with prefix,
// ignoring case. An empty prefix matches everything.
func (c *Cache) Matching(prefix string) []model.Favorite {
	c.mu.RLock()
	defer c.mu.RUnlock()

	prefix = strings.ToLower(strings.TrimSpace(prefix))
	out := []model.Favorite{}
	for _, f := range c.items {
		if strings.HasPrefix(strings.ToLower(f.Name), prefix) {
			out = append(out, f)
		}
	}
	return out
}

// Disabled is the backend used when favorites have nowhere to live.
type Disabled struct{}

func (Disabled) List(context.Context) ([]model.Favorite, error) { return nil, nil }

func (Disabled) Add(context.Context, model.Favorite) error { return nil }

func (Disabled) Remove(context.Context, string) error { return ErrDisabled }
