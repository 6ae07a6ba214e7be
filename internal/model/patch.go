package model

import "strings"

// Canonical field names. These are the only names the list store deals in;
// the remote adapter owns the translation to column names.
const (
	FieldName       = "name"
	FieldQuantity   = "quantity"
	FieldNotes      = "notes"
	FieldCategory   = "category"
	FieldStore      = "store"
	FieldCompleted  = "completed"
	FieldAssignedTo = "assignedTo"
	FieldSortOrder  = "sortOrder"
)

// ItemPatch is a partial update. Nil fields are left untouched.
type ItemPatch struct {
	Name       *string
	Quantity   *string
	Notes      *string
	Category   *Category
	Store      *Store
	Completed  *bool
	AssignedTo *string
	SortOrder  *int
}

// FieldValue is one field of a patch. A nil Value clears the field.
type FieldValue struct {
	Field string
	Value any
}

func (p ItemPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Fields lists the set fields in a fixed order. Empty optional strings
// become nil so they are stored as absent rather than "".
func (p ItemPatch) Fields() []FieldValue {
	var out []FieldValue
	if p.Name != nil {
		out = append(out, FieldValue{FieldName, strings.TrimSpace(*p.Name)})
	}
	if p.Quantity != nil {
		out = append(out, FieldValue{FieldQuantity, optional(*p.Quantity)})
	}
	if p.Notes != nil {
		out = append(out, FieldValue{FieldNotes, optional(*p.Notes)})
	}
	if p.Category != nil {
		out = append(out, FieldValue{FieldCategory, string(*p.Category)})
	}
	if p.Store != nil {
		out = append(out, FieldValue{FieldStore, string(*p.Store)})
	}
	if p.Completed != nil {
		out = append(out, FieldValue{FieldCompleted, *p.Completed})
	}
	if p.AssignedTo != nil {
		out = append(out, FieldValue{FieldAssignedTo, optional(*p.AssignedTo)})
	}
	if p.SortOrder != nil {
		out = append(out, FieldValue{FieldSortOrder, *p.SortOrder})
	}
	return out
}

func (p ItemPatch) Validate() error {
	if p.IsEmpty() {
		return &ValidationError{Msg: "no fields to update"}
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return &ValidationError{Field: FieldName, Msg: "name must not be empty"}
	}
	if p.Category != nil && !p.Category.Valid() {
		return &ValidationError{Field: FieldCategory, Msg: "unknown category " + string(*p.Category)}
	}
	if p.Store != nil && !p.Store.Valid() {
		return &ValidationError{Field: FieldStore, Msg: "unknown store " + string(*p.Store)}
	}
	if p.AssignedTo != nil && *p.AssignedTo != "" && !KnownUser(*p.AssignedTo) {
		return &ValidationError{Field: FieldAssignedTo, Msg: "unknown user " + *p.AssignedTo}
	}
	return nil
}

func optional(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
