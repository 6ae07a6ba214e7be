package favorites

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/shoplist/internal/model"
)

// SQL keeps favorites in the local database's favorites table.
type SQL struct {
	db *sql.DB
}

func NewSQL(db *sql.DB) *SQL {
	return &SQL{db: db}
}

func (s *SQL) List(ctx context.Context) ([]model.Favorite, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, category FROM favorites ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var favs []model.Favorite
	for rows.Next() {
		var f model.Favorite
		if err := rows.Scan(&f.Name, &f.Category); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favs = append(favs, f)
	}
	return favs, rows.Err()
}

// Add inserts f, or updates the category of an existing favorite of the same name.
func (s *SQL) Add(ctx context.Context, f model.Favorite) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO favorites (name, category) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET category = excluded.category`,
		f.Name, string(f.Category),
	)
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (s *SQL) Remove(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("remove favorite %s: %w", name, model.ErrNotFound)
	}
	return nil
}
