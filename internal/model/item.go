package model

import (
	"strings"
	"time"
)

// DefaultListID is the one shared list every client reads and writes.
const DefaultListID = "00000000-0000-0000-0000-000000000001"

type ListItem struct {
	ID         string    `json:"id"`
	ListID     string    `json:"list_id"`
	Name       string    `json:"name"`
	Quantity   string    `json:"quantity,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	Category   Category  `json:"category"`
	Store      Store     `json:"store"`
	Completed  bool      `json:"completed"`
	AssignedTo string    `json:"assigned_to,omitempty"`
	SortOrder  *int      `json:"sort_order"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewItem holds the fields for an insert. Only Name is required.
type NewItem struct {
	Name       string
	Quantity   string
	Notes      string
	Category   Category
	Store      Store
	AssignedTo string
}

// Normalize trims user input and fills the catch-all store.
// Category is left empty so the caller can decide whether to resolve it.
func (n NewItem) Normalize() NewItem {
	n.Name = strings.TrimSpace(n.Name)
	n.Quantity = strings.TrimSpace(n.Quantity)
	n.Notes = strings.TrimSpace(n.Notes)
	if n.Store == "" {
		n.Store = StoreOther
	}
	return n
}

func (n NewItem) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return &ValidationError{Field: FieldName, Msg: "name is required"}
	}
	if n.Category != "" && !n.Category.Valid() {
		return &ValidationError{Field: FieldCategory, Msg: "unknown category " + string(n.Category)}
	}
	if n.Store != "" && !n.Store.Valid() {
		return &ValidationError{Field: FieldStore, Msg: "unknown store " + string(n.Store)}
	}
	if n.AssignedTo != "" && !KnownUser(n.AssignedTo) {
		return &ValidationError{Field: FieldAssignedTo, Msg: "unknown user " + n.AssignedTo}
	}
	return nil
}
