package cli

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/dukerupert/shoplist/internal/liststore"
	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/view"
)

var (
	dim     = color.New(color.Faint)
	done    = color.New(color.FgGreen)
	warn    = color.New(color.FgYellow)
	fail    = color.New(color.FgRed)
	heading = color.New(color.Bold)
)

func userName(id string) string {
	if u, ok := model.UserByID(id); ok {
		return u.Name
	}
	return id
}

func renderItem(w io.Writer, n int, it model.ListItem) {
	box := "[ ]"
	name := it.Name
	if it.Completed {
		box = done.Sprint("[x]")
		name = dim.Sprint(name)
	}

	fmt.Fprintf(w, "%3d. %s %s", n, box, name)
	if it.Quantity != "" {
		fmt.Fprintf(w, "  %s", it.Quantity)
	}

	meta := []string{it.Category.Icon() + " " + string(it.Category), string(it.Store)}
	if it.AssignedTo != "" {
		meta = append(meta, userName(it.AssignedTo))
	}
	fmt.Fprintf(w, "  %s", dim.Sprint(strings.Join(meta, " · ")))
	if it.Notes != "" {
		fmt.Fprintf(w, "\n       %s", dim.Sprint(it.Notes))
	}
	fmt.Fprintf(w, "  %s\n", dim.Sprint(shortID(it.ID)))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// renderList prints the header and the visible items. Numbers are positions
// in visible and are what item arguments refer to.
func renderList(w io.Writer, all, visible []model.ListItem, f view.Filter, group bool, st liststore.Status) {
	open := 0
	for _, it := range all {
		if !it.Completed {
			open++
		}
	}

	fmt.Fprintf(w, "%s  %d open, %d done", heading.Sprint("Shopping list"), open, len(all)-open)
	if n := f.ActiveCount(); n > 0 {
		fmt.Fprintf(w, "  %s", warn.Sprintf("[%d filter(s) active, %d hidden]", n, len(all)-len(visible)))
	}
	fmt.Fprintln(w)
	switch {
	case st.LoadFailed:
		fmt.Fprintln(w, fail.Sprintf("! list could not be loaded: %v", st.Err))
	case st.Err != nil:
		fmt.Fprintln(w, warn.Sprintf("! last sync failed: %v", st.Err))
	}

	if len(visible) == 0 {
		if f.Search != "" {
			fmt.Fprintln(w, dim.Sprint("No items found"))
		} else {
			fmt.Fprintln(w, dim.Sprint("The list is empty"))
		}
		return
	}

	if !group {
		for i, it := range visible {
			renderItem(w, i+1, it)
		}
		return
	}

	pos := make(map[string]int, len(visible))
	for i, it := range visible {
		pos[it.ID] = i + 1
	}
	for _, g := range view.GroupByCategory(visible) {
		fmt.Fprintf(w, "\n%s %s %s\n", g.Icon, heading.Sprint(g.Name), dim.Sprintf("(%d)", len(g.Items)))
		for _, it := range g.Items {
			renderItem(w, pos[it.ID], it)
		}
	}
}

// resolveItem maps an item argument to an id. The argument is either a
// position as printed by list, or a prefix of the item id.
func resolveItem(visible []model.ListItem, arg string) (string, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(visible) {
			return "", fmt.Errorf("no item at position %d: %w", n, model.ErrNotFound)
		}
		return visible[n-1].ID, nil
	}

	var match string
	for _, it := range visible {
		if strings.HasPrefix(it.ID, arg) {
			if match != "" {
				return "", fmt.Errorf("id prefix %q is ambiguous", arg)
			}
			match = it.ID
		}
	}
	if match == "" {
		// Let the store decide; the item may exist but be filtered out.
		return arg, nil
	}
	return match, nil
}

// moveTo returns the ids of items with the one identified by id moved to
// 1-based position to.
func moveTo(items []model.ListItem, id string, to int) ([]string, error) {
	ids := make([]string, 0, len(items))
	from := -1
	for i, it := range items {
		ids = append(ids, it.ID)
		if it.ID == id {
			from = i
		}
	}
	if from < 0 {
		return nil, fmt.Errorf("move item %s: %w", id, model.ErrNotFound)
	}
	if to < 1 || to > len(ids) {
		return nil, fmt.Errorf("position %d out of range 1-%d", to, len(ids))
	}

	ids = slices.Delete(ids, from, from+1)
	ids = slices.Insert(ids, to-1, id)
	return ids, nil
}
