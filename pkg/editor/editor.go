// Package editor builds and edits form schemas: the field palette, ordered
// field edits, JSON patches, markup sanitizing and authoring lint.
package editor

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-formflow/pkg/schema"
)

var (
	ErrUnknownKind   = errors.New("editor: unknown field kind")
	ErrFieldNotFound = errors.New("editor: field not found")
	ErrDuplicateID   = errors.New("editor: duplicate field id")
	ErrOutOfRange    = errors.New("editor: position out of range")
)

// NewField returns a field of kind with the palette defaults: an empty label
// and default, no rules, one blank option for selection kinds, and an empty
// readonly formula for derived fields.
func NewField(kind schema.FieldKind, id string) schema.Field {
	field := schema.Field{
		ID:          id,
		Kind:        kind,
		Validations: []schema.ValidationRule{},
	}
	switch kind {
	case schema.FieldKindSelect, schema.FieldKindRadio, schema.FieldKindCheckbox:
		field.Options = []schema.FieldOption{{}}
	case schema.FieldKindDerived:
		field.ParentFields = []string{}
		field.Readonly = true
	}
	return field
}

// Option configures an Editor.
type Option func(*Editor)

// WithIDGenerator overrides how new field ids are produced.
func WithIDGenerator(next func() string) Option {
	return func(e *Editor) {
		if next != nil {
			e.newID = next
		}
	}
}

// Editor applies authoring edits to a form. Edits never validate the whole
// form; call Form().Validate() or Lint before saving.
type Editor struct {
	form  schema.Form
	newID func() string
}

// New returns an editor working on a copy of form.
func New(form schema.Form, opts ...Option) *Editor {
	e := &Editor{form: form.Clone(), newID: uuid.NewString}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Form returns a copy of the edited form.
func (e *Editor) Form() schema.Form { return e.form.Clone() }

// SetName renames the form.
func (e *Editor) SetName(name string) { e.form.Name = name }

// Add appends a new field of kind with a generated id.
func (e *Editor) Add(kind schema.FieldKind) (schema.Field, error) {
	if !kind.Valid() {
		return schema.Field{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	field := NewField(kind, e.newID())
	if e.form.Index(field.ID) >= 0 {
		return schema.Field{}, fmt.Errorf("%w: %q", ErrDuplicateID, field.ID)
	}
	e.form.Fields = append(e.form.Fields, field)
	return field.Clone(), nil
}

// Update replaces the field with the same id.
func (e *Editor) Update(field schema.Field) error {
	idx := e.form.Index(field.ID)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, field.ID)
	}
	e.form.Fields[idx] = field.Clone()
	return nil
}

// Remove deletes the field and drops it from every derived field's parents.
// Formulas are left as written; Lint reports the now unbound identifier.
func (e *Editor) Remove(id string) error {
	idx := e.form.Index(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	e.form.Fields = append(e.form.Fields[:idx], e.form.Fields[idx+1:]...)
	for i := range e.form.Fields {
		field := &e.form.Fields[i]
		if len(field.ParentFields) == 0 {
			continue
		}
		kept := field.ParentFields[:0]
		for _, parent := range field.ParentFields {
			if parent != id {
				kept = append(kept, parent)
			}
		}
		field.ParentFields = kept
	}
	return nil
}

// Move relocates the field at position from to position to.
func (e *Editor) Move(from, to int) error {
	n := len(e.form.Fields)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d to %d of %d", ErrOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}
	field := e.form.Fields[from]
	fields := append(e.form.Fields[:from:from], e.form.Fields[from+1:]...)
	fields = append(fields[:to], append([]schema.Field{field}, fields[to:]...)...)
	e.form.Fields = fields
	return nil
}

// MoveUp swaps the field with its predecessor. Moving the first field up is a
// no-op.
func (e *Editor) MoveUp(id string) error {
	idx := e.form.Index(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	if idx == 0 {
		return nil
	}
	return e.Move(idx, idx-1)
}

// MoveDown swaps the field with its successor. Moving the last field down is
// a no-op.
func (e *Editor) MoveDown(id string) error {
	idx := e.form.Index(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	if idx == len(e.form.Fields)-1 {
		return nil
	}
	return e.Move(idx, idx+1)
}
