package remote

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/shoplist/internal/model"
)

const itemTable = "shopping_list_items"

// columns is the one place local field names meet remote column names.
var columns = map[string]string{
	model.FieldName:       "name",
	model.FieldQuantity:   "quantity",
	model.FieldNotes:      "notes",
	model.FieldCategory:   "category",
	model.FieldStore:      "store",
	model.FieldCompleted:  "completed",
	model.FieldAssignedTo: "assigned_to",
	model.FieldSortOrder:  "sort_order",
}

const itemCols = `id, list_id, name, quantity, notes, category, store, completed, assigned_to, sort_order, created_at, updated_at`

func columnFor(field string) (string, error) {
	col, ok := columns[field]
	if !ok {
		return "", fmt.Errorf("no column for field %q", field)
	}
	return col, nil
}

// buildSet renders the SET list of an UPDATE for p. placeholder renders the
// n-th (1-based) bind parameter in the dialect at hand.
func buildSet(p model.ItemPatch, placeholder func(n int) string) (string, []any, error) {
	fields := p.Fields()
	if len(fields) == 0 {
		return "", nil, &model.ValidationError{Msg: "no fields to update"}
	}

	parts := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for _, fv := range fields {
		col, err := columnFor(fv.Field)
		if err != nil {
			return "", nil, err
		}
		args = append(args, fv.Value)
		parts = append(parts, col+" = "+placeholder(len(args)))
	}
	return strings.Join(parts, ", "), args, nil
}

func questionMark(int) string { return "?" }

func dollar(n int) string { return fmt.Sprintf("$%d", n) }

// reorderConcurrency bounds the per-row updates a reorder has in flight.
const reorderConcurrency = 8

// reorderEach assigns position i to ids[i] through independent updates.
// There is no transaction: when one update fails the others still land, and
// the first error is returned once all of them have finished.
func reorderEach(ctx context.Context, ids []string, set func(ctx context.Context, id string, pos int) error) error {
	var g errgroup.Group
	g.SetLimit(reorderConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			return set(ctx, id, i)
		})
	}
	return g.Wait()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (model.ListItem, error) {
	var (
		item                        model.ListItem
		quantity, notes, assignedTo *string
		category, store             string
		sortOrder                   *int64
	)
	err := s.Scan(
		&item.ID, &item.ListID, &item.Name, &quantity, &notes, &category, &store,
		&item.Completed, &assignedTo, &sortOrder, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return model.ListItem{}, err
	}

	item.Category = model.Category(category)
	item.Store = model.Store(store)
	if quantity != nil {
		item.Quantity = *quantity
	}
	if notes != nil {
		item.Notes = *notes
	}
	if assignedTo != nil {
		item.AssignedTo = *assignedTo
	}
	if sortOrder != nil {
		pos := int(*sortOrder)
		item.SortOrder = &pos
	}
	return item, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func notFound(op, id string) error {
	return fmt.Errorf("%s item %s: %w", op, id, model.ErrNotFound)
}
