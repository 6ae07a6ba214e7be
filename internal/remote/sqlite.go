package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/notify"
)

// SQLite is a collection kept in a local SQLite file. It stands in for the
// hosted store when running offline. Change notifications only cover writes
// made through this value, i.e. within the same process.
type SQLite struct {
	db     *sql.DB
	listID string
	hub    *notify.Hub
	now    func() time.Time
}

func NewSQLite(db *sql.DB, listID string, logger *slog.Logger) *SQLite {
	return &SQLite{
		db:     db,
		listID: listID,
		hub:    notify.NewHub(logger),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *SQLite) FetchAll(ctx context.Context) ([]model.ListItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemCols+` FROM `+itemTable+` WHERE list_id = ?
		 ORDER BY sort_order IS NULL, sort_order ASC, created_at ASC, id ASC`,
		s.listID,
	)
	if err != nil {
		return nil, model.NewRemoteError("fetch items", err)
	}
	defer rows.Close()

	items := []model.ListItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, model.NewRemoteError("fetch items", fmt.Errorf("scan item: %w", err))
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewRemoteError("fetch items", err)
	}
	return items, nil
}

func (s *SQLite) get(ctx context.Context, id string) (model.ListItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemCols+` FROM `+itemTable+` WHERE id = ? AND list_id = ?`, id, s.listID)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ListItem{}, notFound("get", id)
	}
	if err != nil {
		return model.ListItem{}, model.NewRemoteError("get item", err)
	}
	return item, nil
}

func (s *SQLite) Insert(ctx context.Context, in model.NewItem) (model.ListItem, error) {
	id := uuid.NewString()
	now := s.now()
	category := in.Category
	if category == "" {
		category = model.CategoryOther
	}
	store := in.Store
	if store == "" {
		store = model.StoreOther
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+itemTable+` (id, list_id, name, quantity, notes, category, store, assigned_to, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, s.listID, in.Name, nullable(in.Quantity), nullable(in.Notes),
		string(category), string(store), nullable(in.AssignedTo), now, now,
	)
	if err != nil {
		return model.ListItem{}, model.NewRemoteError("insert item", err)
	}
	s.hub.Broadcast()
	return s.get(ctx, id)
}

func (s *SQLite) Update(ctx context.Context, id string, p model.ItemPatch) (model.ListItem, error) {
	set, args, err := buildSet(p, questionMark)
	if err != nil {
		return model.ListItem{}, err
	}
	args = append(args, s.now(), id, s.listID)

	res, err := s.db.ExecContext(ctx,
		`UPDATE `+itemTable+` SET `+set+`, updated_at = ? WHERE id = ? AND list_id = ?`, args...)
	if err != nil {
		return model.ListItem{}, model.NewRemoteError("update item", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ListItem{}, notFound("update", id)
	}
	s.hub.Broadcast()
	return s.get(ctx, id)
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+itemTable+` WHERE id = ? AND list_id = ?`, id, s.listID)
	if err != nil {
		return model.NewRemoteError("delete item", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("delete", id)
	}
	s.hub.Broadcast()
	return nil
}

func (s *SQLite) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, s.listID)
	for _, id := range ids {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM `+itemTable+` WHERE list_id = ? AND id IN (`+placeholders+`)`, args...)
	if err != nil {
		return model.NewRemoteError("delete items", err)
	}
	s.hub.Broadcast()
	return nil
}

// Reorder sets each item's sort position to its index in orderedIDs. Ids
// that name no row update nothing and are not an error.
func (s *SQLite) Reorder(ctx context.Context, orderedIDs []string) error {
	err := reorderEach(ctx, orderedIDs, func(ctx context.Context, id string, pos int) error {
		_, err := s.db.ExecContext(ctx,
			`UPDATE `+itemTable+` SET sort_order = ?, updated_at = ? WHERE id = ? AND list_id = ?`,
			pos, s.now(), id, s.listID,
		)
		return err
	})
	// Some rows may have moved even when one failed.
	s.hub.Broadcast()
	if err != nil {
		return model.NewRemoteError("reorder items", err)
	}
	return nil
}

// Subscribe calls onChange after every write made through s.
func (s *SQLite) Subscribe(_ context.Context, onChange func()) (func(), error) {
	return s.hub.Subscribe(onChange), nil
}
