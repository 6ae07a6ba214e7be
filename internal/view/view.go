// Package view derives what the list shows from a snapshot: filtering,
// sorting and grouping. Every function here is pure and returns a new slice.
package view

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dukerupert/shoplist/internal/model"
)

type SortMode string

const (
	SortManual   SortMode = "manual"
	SortName     SortMode = "name"
	SortCategory SortMode = "category"
	SortStore    SortMode = "store"
	SortCreated  SortMode = "created"
)

var SortModes = []SortMode{SortManual, SortName, SortCategory, SortStore, SortCreated}

func ParseSortMode(s string) (SortMode, error) {
	for _, m := range SortModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown sort mode %q", s)
}

// Filter narrows the visible items. Unset fields do not filter; set fields
// must all match.
type Filter struct {
	Search     string         `yaml:"search,omitempty"`
	AssignedTo string         `yaml:"assigned_to,omitempty"`
	Store      model.Store    `yaml:"store,omitempty"`
	Category   model.Category `yaml:"category,omitempty"`
	Completed  *bool          `yaml:"completed,omitempty"`
}

// ActiveCount is the number of filters that are set.
func (f Filter) ActiveCount() int {
	n := 0
	if strings.TrimSpace(f.Search) != "" {
		n++
	}
	if f.AssignedTo != "" {
		n++
	}
	if f.Store != "" {
		n++
	}
	if f.Category != "" {
		n++
	}
	if f.Completed != nil {
		n++
	}
	return n
}

func (f Filter) Match(item model.ListItem) bool {
	if f.AssignedTo != "" && item.AssignedTo != f.AssignedTo {
		return false
	}
	if f.Store != "" && item.Store != f.Store {
		return false
	}
	if f.Category != "" && item.Category != f.Category {
		return false
	}
	if f.Completed != nil && item.Completed != *f.Completed {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(item.Name), term) &&
			!strings.Contains(strings.ToLower(item.Notes), term) {
			return false
		}
	}
	return true
}

// Visible filters items and, unless mode is manual, sorts the result.
// In manual mode the input order is kept as is.
func Visible(items []model.ListItem, f Filter, mode SortMode) []model.ListItem {
	out := make([]model.ListItem, 0, len(items))
	for _, item := range items {
		if f.Match(item) {
			out = append(out, item)
		}
	}

	switch mode {
	case SortName:
		c := collate.New(language.German)
		slices.SortStableFunc(out, func(a, b model.ListItem) int {
			return c.CompareString(a.Name, b.Name)
		})
	case SortCategory:
		slices.SortStableFunc(out, func(a, b model.ListItem) int {
			return a.Category.Order() - b.Category.Order()
		})
	case SortStore:
		c := collate.New(language.German)
		slices.SortStableFunc(out, func(a, b model.ListItem) int {
			return c.CompareString(string(a.Store), string(b.Store))
		})
	case SortCreated:
		// Newest first. A zero time is the oldest possible.
		slices.SortStableFunc(out, func(a, b model.ListItem) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
	return out
}

// CanReorder reports whether dragging items into a new order is allowed:
// only in manual mode and only while no filter hides any item. Reordering a
// filtered subset would hand out positions that collide with hidden items.
func CanReorder(mode SortMode, visible, total int) bool {
	return mode == SortManual && visible == total
}

type Group struct {
	Name  string
	Icon  string
	Items []model.ListItem
}

// GroupByCategory buckets items by category in display order. Items with an
// unknown category land in the catch-all. Empty groups are left out.
func GroupByCategory(items []model.ListItem) []Group {
	buckets := make(map[model.Category][]model.ListItem)
	for _, item := range items {
		cat := item.Category
		if !cat.Valid() {
			cat = model.CategoryOther
		}
		buckets[cat] = append(buckets[cat], item)
	}

	var groups []Group
	for _, info := range model.Categories {
		if b := buckets[info.Name]; len(b) > 0 {
			groups = append(groups, Group{Name: string(info.Name), Icon: info.Icon, Items: b})
		}
	}
	return groups
}

// GroupByStore buckets items by store in the fixed store order.
func GroupByStore(items []model.ListItem) []Group {
	buckets := make(map[model.Store][]model.ListItem)
	for _, item := range items {
		store := item.Store
		if !store.Valid() {
			store = model.StoreOther
		}
		buckets[store] = append(buckets[store], item)
	}

	var groups []Group
	for _, store := range model.Stores {
		if b := buckets[store]; len(b) > 0 {
			groups = append(groups, Group{Name: string(store), Items: b})
		}
	}
	return groups
}
