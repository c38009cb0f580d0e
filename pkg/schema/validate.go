package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSchema is matched by every structural error returned by Validate.
var ErrInvalidSchema = errors.New("schema: invalid form")

// SchemaError describes a structural problem with a single field.
type SchemaError struct {
	FieldID string
	Reason  string
}

func (e *SchemaError) Error() string {
	if e.FieldID == "" {
		return fmt.Sprintf("schema: %s", e.Reason)
	}
	return fmt.Sprintf("schema: field %q: %s", e.FieldID, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidSchema.
func (e *SchemaError) Unwrap() error {
	return ErrInvalidSchema
}

// Validate checks the structural invariants the engine relies on: unique,
// non-empty ids, known kinds, and derived fields that reference only
// non-derived fields of the same form. Derived-on-derived references are
// rejected so a single pass in schema order always sees final parent values.
func (f Form) Validate() error {
	seen := make(map[string]Field, len(f.Fields))
	for _, field := range f.Fields {
		id := strings.TrimSpace(field.ID)
		if id == "" {
			return &SchemaError{Reason: "field id is required"}
		}
		if id != field.ID {
			return &SchemaError{FieldID: field.ID, Reason: "field id must not carry surrounding whitespace"}
		}
		if _, dup := seen[id]; dup {
			return &SchemaError{FieldID: id, Reason: "duplicate field id"}
		}
		if !field.Kind.Valid() {
			return &SchemaError{FieldID: id, Reason: fmt.Sprintf("unknown field type %q", field.Kind)}
		}
		seen[id] = field
	}

	for _, field := range f.Fields {
		if !field.IsDerived() {
			if len(field.ParentFields) > 0 {
				return &SchemaError{FieldID: field.ID, Reason: "only derived fields may declare parent fields"}
			}
			continue
		}
		for _, parentID := range field.ParentFields {
			parent, ok := seen[parentID]
			if !ok {
				return &SchemaError{FieldID: field.ID, Reason: fmt.Sprintf("parent field %q does not exist", parentID)}
			}
			if parent.IsDerived() {
				return &SchemaError{FieldID: field.ID, Reason: fmt.Sprintf("parent field %q is derived", parentID)}
			}
		}
	}
	return nil
}
