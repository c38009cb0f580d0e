package session

import (
	"github.com/goliatone/go-formflow/pkg/derive"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// FieldState is a read-only snapshot of one field inside a session.
type FieldState struct {
	Field   schema.Field
	Value   schema.Value
	Present bool
	Touched bool
	Error   string

	submitted bool
}

// VisibleError returns the error message a renderer should show: only once
// the user touched the field or after a submission attempt.
func (f FieldState) VisibleError() string {
	if f.Touched || f.submitted {
		return f.Error
	}
	return ""
}

// State reports the lifecycle position.
func (s *Session) State() State { return s.state }

// Form returns a copy of the loaded form.
func (s *Session) Form() schema.Form { return s.form.Clone() }

// Values returns a copy of the current value-set.
func (s *Session) Values() schema.Values { return s.values.Clone() }

// Value returns the current value of id.
func (s *Session) Value(id string) (schema.Value, bool) {
	return s.values.Get(id)
}

// Touched reports whether the user edited id since the last load or reset.
func (s *Session) Touched(id string) bool { return s.touched[id] }

// Submitted reports whether Submit ran since the last load or reset.
func (s *Session) Submitted() bool { return s.submitted }

// Errors returns a copy of the error-set in schema order.
func (s *Session) Errors() []validation.Failure { return cloneFailures(s.errors) }

// ErrorFor returns the error message recorded for id, if any.
func (s *Session) ErrorFor(id string) (string, bool) {
	for _, failure := range s.errors {
		if failure.FieldID == id {
			return failure.Message, true
		}
	}
	return "", false
}

// DerivationFailures returns the derived fields that failed on the most
// recent recomputation.
func (s *Session) DerivationFailures() []derive.Failure {
	if len(s.derived) == 0 {
		return nil
	}
	return append([]derive.Failure(nil), s.derived...)
}

// Field returns the snapshot for id.
func (s *Session) Field(id string) (FieldState, bool) {
	field, ok := s.form.Field(id)
	if !ok {
		return FieldState{}, false
	}
	return s.fieldState(field), true
}

// Fields returns snapshots for every field in schema order.
func (s *Session) Fields() []FieldState {
	out := make([]FieldState, 0, len(s.form.Fields))
	for _, field := range s.form.Fields {
		out = append(out, s.fieldState(field))
	}
	return out
}

func (s *Session) fieldState(field schema.Field) FieldState {
	value, present := s.values.Get(field.ID)
	message, _ := s.ErrorFor(field.ID)
	return FieldState{
		Field:     field.Clone(),
		Value:     value,
		Present:   present,
		Touched:   s.touched[field.ID],
		Error:     message,
		submitted: s.submitted,
	}
}
