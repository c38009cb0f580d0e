// Package schema defines the form schema consumed by the evaluation engine:
// ordered fields, their validation rules, and derived fields computed from
// parent fields through an arithmetic formula. The package carries no engine
// logic beyond structural checks; validation, derivation and sessions live in
// their own packages and only read these types.
package schema

import (
	"strings"
	"time"
)

// FieldKind enumerates the input kinds a form can carry.
type FieldKind string

const (
	FieldKindText     FieldKind = "text"
	FieldKindNumber   FieldKind = "number"
	FieldKindTextarea FieldKind = "textarea"
	FieldKindSelect   FieldKind = "select"
	FieldKindRadio    FieldKind = "radio"
	FieldKindCheckbox FieldKind = "checkbox"
	FieldKindDate     FieldKind = "date"
	FieldKindEmail    FieldKind = "email"
	FieldKindPassword FieldKind = "password"
	FieldKindDerived  FieldKind = "derived"
)

// FieldKinds lists every supported kind in palette order.
var FieldKinds = []FieldKind{
	FieldKindText,
	FieldKindNumber,
	FieldKindTextarea,
	FieldKindSelect,
	FieldKindRadio,
	FieldKindCheckbox,
	FieldKindDate,
	FieldKindEmail,
	FieldKindPassword,
	FieldKindDerived,
}

// Valid reports whether k is one of the supported kinds.
func (k FieldKind) Valid() bool {
	for _, known := range FieldKinds {
		if k == known {
			return true
		}
	}
	return false
}

// RuleKind identifies a validation rule.
type RuleKind string

const (
	RuleRequired  RuleKind = "required"
	RuleMinLength RuleKind = "minLength"
	RuleMaxLength RuleKind = "maxLength"
	RuleEmail     RuleKind = "email"
	RulePassword  RuleKind = "password"
)

// ValidationRule is a single constraint attached to a field. Value carries the
// threshold for length rules and is ignored by the other kinds.
type ValidationRule struct {
	Kind  RuleKind `json:"type" yaml:"type"`
	Value string   `json:"value" yaml:"value"`
}

// FieldOption is one choice of a select, radio or checkbox-group field.
type FieldOption struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Field models one input of a form. ParentFields and Formula are only
// meaningful for derived fields.
type Field struct {
	ID           string           `json:"id" yaml:"id"`
	Kind         FieldKind        `json:"type" yaml:"type"`
	Label        string           `json:"label" yaml:"label"`
	DefaultValue string           `json:"defaultValue" yaml:"defaultValue"`
	Required     bool             `json:"required" yaml:"required"`
	Validations  []ValidationRule `json:"validations" yaml:"validations"`
	Options      []FieldOption    `json:"options,omitempty" yaml:"options,omitempty"`
	ParentFields []string         `json:"parentFields,omitempty" yaml:"parentFields,omitempty"`
	Formula      string           `json:"formula,omitempty" yaml:"formula,omitempty"`
	Readonly     bool             `json:"readonly,omitempty" yaml:"readonly,omitempty"`
}

// IsDerived reports whether the field value is computed from a formula.
func (f Field) IsDerived() bool {
	return f.Kind == FieldKindDerived
}

// IsMultiValue reports whether the field is a checkbox group, i.e. a checkbox
// with options whose value is the list of selected option values.
func (f Field) IsMultiValue() bool {
	return f.Kind == FieldKindCheckbox && len(f.Options) > 0
}

// IsReadonly reports whether user edits are rejected for the field.
func (f Field) IsReadonly() bool {
	return f.Readonly || f.IsDerived()
}

// HasRule reports whether the field declares a rule of the given kind.
func (f Field) HasRule(kind RuleKind) bool {
	for _, rule := range f.Validations {
		if rule.Kind == kind {
			return true
		}
	}
	return false
}

// DisplayLabel returns the label, falling back to the id.
func (f Field) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return f.ID
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	out := f
	if f.Validations != nil {
		out.Validations = append([]ValidationRule(nil), f.Validations...)
	}
	if f.Options != nil {
		out.Options = append([]FieldOption(nil), f.Options...)
	}
	if f.ParentFields != nil {
		out.ParentFields = append([]string(nil), f.ParentFields...)
	}
	return out
}

// Form is a named, ordered list of fields. Field order is both presentation
// and submission order. ID and CreatedAt are assigned when a form is saved.
type Form struct {
	ID        string     `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string     `json:"name" yaml:"name"`
	Fields    []Field    `json:"fields" yaml:"fields"`
	CreatedAt *time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// Field returns the field with the given id.
func (f Form) Field(id string) (Field, bool) {
	if idx := f.Index(id); idx >= 0 {
		return f.Fields[idx], true
	}
	return Field{}, false
}

// Index returns the position of the field with the given id, or -1.
func (f Form) Index(id string) int {
	for i, field := range f.Fields {
		if field.ID == id {
			return i
		}
	}
	return -1
}

// DerivedFields returns the derived fields in schema order.
func (f Form) DerivedFields() []Field {
	var out []Field
	for _, field := range f.Fields {
		if field.IsDerived() {
			out = append(out, field)
		}
	}
	return out
}

// Clone returns a deep copy of the form.
func (f Form) Clone() Form {
	out := f
	if f.Fields != nil {
		out.Fields = make([]Field, len(f.Fields))
		for i, field := range f.Fields {
			out.Fields[i] = field.Clone()
		}
	}
	if f.CreatedAt != nil {
		ts := *f.CreatedAt
		out.CreatedAt = &ts
	}
	return out
}
