// Package categorize resolves the shopping category of an item name.
//
// A Resolver wraps some Categorizer (the remote categorisation API or the
// offline keyword table) with a timeout and a catch-all fallback, so adding
// an item is never blocked by a misbehaving service.
package categorize

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
)

// ErrUnavailable means no category could be determined. Resolver absorbs it.
var ErrUnavailable = errors.New("categorization unavailable")

// DefaultTimeout bounds a single categorisation call.
const DefaultTimeout = 5 * time.Second

type Categorizer interface {
	Categorize(ctx context.Context, name string) (model.Category, error)
}

// Recorder is told about every successful resolution. Record must return
// at once and do any slow work in the background.
type Recorder interface {
	Record(name string, category model.Category)
}

type Resolver struct {
	categorizer Categorizer
	recorder    Recorder
	timeout     time.Duration
	logger      *slog.Logger
}

// NewResolver returns a Resolver. recorder may be nil.
func NewResolver(c Categorizer, recorder Recorder, timeout time.Duration, logger *slog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		categorizer: c,
		recorder:    recorder,
		timeout:     timeout,
		logger:      logger,
	}
}

// Resolve always returns a category. Any failure, including a reply naming a
// category outside the fixed set, yields model.CategoryOther.
func (r *Resolver) Resolve(ctx context.Context, name string) model.Category {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.CategoryOther
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cat, err := r.categorizer.Categorize(ctx, name)
	if err == nil && !cat.Valid() {
		err = ErrUnavailable
	}
	if err != nil {
		r.logger.Debug("categorization fell back", "name", name, "error", err)
		return model.CategoryOther
	}

	if r.recorder != nil {
		r.recorder.Record(name, cat)
	}
	return cat
}
