package remote

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"

	"github.com/dukerupert/shoplist/internal/model"
)

// Postgres is the collection backed by the hosted Postgres table.
type Postgres struct {
	pool       *pgxpool.Pool
	listID     string
	logger     *slog.Logger
	newBackoff func() retry.Backoff
}

func NewPostgres(pool *pgxpool.Pool, listID string, logger *slog.Logger) *Postgres {
	return &Postgres{
		pool:   pool,
		listID: listID,
		logger: logger,
		newBackoff: func() retry.Backoff {
			return retry.WithCappedDuration(30*time.Second, retry.NewExponential(500*time.Millisecond))
		},
	}
}

// validID reports whether id could name a row at all. Anything that is not a
// UUID cannot exist, so callers treat it as not found without a round trip.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (p *Postgres) FetchAll(ctx context.Context) ([]model.ListItem, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+itemCols+` FROM `+itemTable+` WHERE list_id = $1
		 ORDER BY sort_order ASC NULLS LAST, created_at ASC, id ASC`,
		p.listID,
	)
	if err != nil {
		return nil, model.NewRemoteError("fetch items", err)
	}
	defer rows.Close()

	items := []model.ListItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, model.NewRemoteError("fetch items", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewRemoteError("fetch items", err)
	}
	return items, nil
}

func (p *Postgres) Insert(ctx context.Context, in model.NewItem) (model.ListItem, error) {
	category := in.Category
	if category == "" {
		category = model.CategoryOther
	}
	store := in.Store
	if store == "" {
		store = model.StoreOther
	}

	row := p.pool.QueryRow(ctx,
		`INSERT INTO `+itemTable+` (list_id, name, quantity, notes, category, store, assigned_to)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+itemCols,
		p.listID, in.Name, nullable(in.Quantity), nullable(in.Notes),
		string(category), string(store), nullable(in.AssignedTo),
	)
	item, err := scanItem(row)
	if err != nil {
		return model.ListItem{}, model.NewRemoteError("insert item", err)
	}
	return item, nil
}

func (p *Postgres) Update(ctx context.Context, id string, patch model.ItemPatch) (model.ListItem, error) {
	set, args, err := buildSet(patch, dollar)
	if err != nil {
		return model.ListItem{}, err
	}
	if !validID(id) {
		return model.ListItem{}, notFound("update", id)
	}
	args = append(args, id, p.listID)

	row := p.pool.QueryRow(ctx,
		`UPDATE `+itemTable+` SET `+set+`, updated_at = now()
		 WHERE id = `+dollar(len(args)-1)+` AND list_id = `+dollar(len(args))+`
		 RETURNING `+itemCols,
		args...,
	)
	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ListItem{}, notFound("update", id)
	}
	if err != nil {
		return model.ListItem{}, model.NewRemoteError("update item", err)
	}
	return item, nil
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return notFound("delete", id)
	}
	tag, err := p.pool.Exec(ctx, `DELETE FROM `+itemTable+` WHERE id = $1 AND list_id = $2`, id, p.listID)
	if err != nil {
		return model.NewRemoteError("delete item", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("delete", id)
	}
	return nil
}

func (p *Postgres) DeleteMany(ctx context.Context, ids []string) error {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	_, err := p.pool.Exec(ctx,
		`DELETE FROM `+itemTable+` WHERE list_id = $1 AND id = ANY($2::uuid[])`, p.listID, valid)
	if err != nil {
		return model.NewRemoteError("delete items", err)
	}
	return nil
}

// Reorder sets each item's sort position to its index in orderedIDs. Ids
// that name no row are ignored, as in the sqlite adapter; a non-UUID id
// cannot name a row, so it is not sent.
func (p *Postgres) Reorder(ctx context.Context, orderedIDs []string) error {
	err := reorderEach(ctx, orderedIDs, func(ctx context.Context, id string, pos int) error {
		if !validID(id) {
			return nil
		}
		_, err := p.pool.Exec(ctx,
			`UPDATE `+itemTable+` SET sort_order = $1, updated_at = now() WHERE id = $2 AND list_id = $3`,
			pos, id, p.listID,
		)
		return err
	})
	if err != nil {
		return model.NewRemoteError("reorder items", err)
	}
	return nil
}
