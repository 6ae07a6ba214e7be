// Package app wires the list store to whichever collection, categoriser,
// favorites backend and change feed the configuration selects.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dukerupert/shoplist/internal/categorize"
	"github.com/dukerupert/shoplist/internal/config"
	"github.com/dukerupert/shoplist/internal/database"
	"github.com/dukerupert/shoplist/internal/favorites"
	"github.com/dukerupert/shoplist/internal/liststore"
	"github.com/dukerupert/shoplist/internal/push"
	"github.com/dukerupert/shoplist/internal/realtime"
	"github.com/dukerupert/shoplist/internal/remote"
)

type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Store     *liststore.Store
	Favorites *favorites.Cache
	Feed      liststore.Feed
	// Push is nil when no API is configured.
	Push *push.Registrar

	closers []func()
}

// collection is what both remote adapters provide.
type collection interface {
	liststore.Collection
	liststore.Feed
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	var (
		coll collection
		db   *sql.DB
	)
	if cfg.Local() {
		var err error
		db, err = database.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open local database: %w", err)
		}
		a.closers = append(a.closers, func() { db.Close() })
		coll = remote.NewSQLite(db, cfg.ListID, logger.With("component", "sqlite"))
		logger.Debug("using local collection", "path", cfg.DBPath)
	} else {
		pool, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		coll = remote.NewPostgres(pool, cfg.ListID, logger.With("component", "postgres"))
		logger.Debug("using postgres collection")
	}

	a.Feed = coll
	if cfg.RealtimeURL != "" {
		a.Feed = realtime.NewFeed(cfg.RealtimeURL, cfg.ListID, logger.With("component", "realtime"))
	}

	var backend favorites.Backend = favorites.Disabled{}
	switch {
	case cfg.APIURL != "":
		backend = favorites.NewHTTP(cfg.APIURL)
	case db != nil:
		backend = favorites.NewSQL(db)
	}
	a.Favorites = favorites.NewCache(backend, logger.With("component", "favorites"))
	// Pending favorite writes must land before the database closes.
	a.closers = append(a.closers, a.Favorites.Wait)

	var categorizer categorize.Categorizer = categorize.Keywords{}
	if cfg.APIURL != "" {
		categorizer = categorize.NewClient(cfg.APIURL)
		a.Push = push.NewRegistrar(cfg.APIURL)
	}
	resolver := categorize.NewResolver(categorizer, a.Favorites, cfg.CategorizeTimeout, logger.With("component", "categorize"))

	a.Store = liststore.New(coll, resolver, logger.With("component", "liststore"))
	return a, nil
}

// Close releases everything New opened, in reverse order. Calling it again
// does nothing.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
