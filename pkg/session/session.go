// Package session holds the live state of one form being filled in: current
// values, touched fields and the error-set from the last submission. Every
// mutation recomputes derived fields before returning, so callers never see a
// derived value computed from a stale parent.
//
// A Session is owned by a single caller and is not safe for concurrent use;
// independent sessions share no mutable state.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-formflow/pkg/derive"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// State is the lifecycle position of a session.
type State int

const (
	StateInitializing State = iota
	StateReady
	StateSubmitting
	StateSubmittedValid
	StateSubmittedInvalid
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateSubmitting:
		return "submitting"
	case StateSubmittedValid:
		return "submitted-valid"
	case StateSubmittedInvalid:
		return "submitted-invalid"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrInvalidState is returned when an operation is called in a state
	// that does not allow it.
	ErrInvalidState = errors.New("session: operation not allowed in current state")
	// ErrUnknownField is returned for field ids the loaded form does not have.
	ErrUnknownField = errors.New("session: unknown field")
	// ErrReadonlyField is returned when setting a derived or readonly field.
	ErrReadonlyField = errors.New("session: field is readonly")
)

// ContractError reports a caller bug: wrong state, unknown field or an edit
// of a readonly field. User input never produces one.
type ContractError struct {
	Op      string
	FieldID string
	State   State
	Err     error
}

func (e *ContractError) Error() string {
	var b strings.Builder
	b.WriteString("session: ")
	b.WriteString(e.Op)
	if e.FieldID != "" {
		fmt.Fprintf(&b, " %q", e.FieldID)
	}
	fmt.Fprintf(&b, " (state %s): %s", e.State, strings.TrimPrefix(e.Err.Error(), "session: "))
	return b.String()
}

func (e *ContractError) Unwrap() error { return e.Err }

// Result is the outcome of Submit.
type Result struct {
	Valid  bool
	Values schema.Values
	Errors []validation.Failure
}

// Option configures a Session.
type Option func(*Session)

// WithDeriver sets the derivation engine. Sessions may share one engine.
func WithDeriver(engine *derive.Engine) Option {
	return func(s *Session) {
		if engine != nil {
			s.deriver = engine
		}
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session is the live state of one form.
type Session struct {
	deriver *derive.Engine
	logger  *slog.Logger

	state   State
	form    schema.Form
	initial schema.Values
	values  schema.Values
	touched map[string]bool
	errors  []validation.Failure
	derived []derive.Failure

	submitted bool
}

// New returns a session in the Initializing state.
func New(options ...Option) *Session {
	s := &Session{
		logger:  slog.Default(),
		state:   StateInitializing,
		values:  schema.Values{},
		touched: map[string]bool{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.deriver == nil {
		s.deriver = derive.New(derive.WithObserver(derive.SlogObserver{Logger: s.logger}))
	}
	return s
}

// Load installs form and seeds the value-set. initial may be nil; its entries
// take precedence over field defaults. Load can be called again to switch
// forms, which discards all previous state.
func (s *Session) Load(form schema.Form, initial schema.Values) error {
	if err := form.Validate(); err != nil {
		return fmt.Errorf("session: load: %w", err)
	}
	for id := range initial {
		if form.Index(id) < 0 {
			return &ContractError{Op: "load", FieldID: id, State: s.state, Err: ErrUnknownField}
		}
	}

	s.form = form.Clone()
	s.initial = initial.Clone()
	s.reseed()
	s.logger.Debug("form session loaded",
		"form", form.Name,
		"fields", len(form.Fields),
		"seeded", len(s.values),
	)
	return nil
}

// SetValue records user input for a non-derived field, marks it touched,
// drops its error and recomputes derived fields. Allowed while Ready, and
// after an invalid submission, which returns the session to Ready.
func (s *Session) SetValue(id string, value schema.Value) error {
	if s.state != StateReady && s.state != StateSubmittedInvalid {
		return &ContractError{Op: "set value", FieldID: id, State: s.state, Err: ErrInvalidState}
	}
	field, ok := s.form.Field(id)
	if !ok {
		return &ContractError{Op: "set value", FieldID: id, State: s.state, Err: ErrUnknownField}
	}
	if field.IsReadonly() {
		return &ContractError{Op: "set value", FieldID: id, State: s.state, Err: ErrReadonlyField}
	}

	s.values[id] = value
	s.touched[id] = true
	s.dropError(id)
	s.recompute()
	s.state = StateReady
	return nil
}

// Submit validates every field, replaces the error-set and moves to
// SubmittedValid or SubmittedInvalid. Allowed while Ready and after an
// invalid submission.
func (s *Session) Submit() (Result, error) {
	if s.state != StateReady && s.state != StateSubmittedInvalid {
		return Result{}, &ContractError{Op: "submit", State: s.state, Err: ErrInvalidState}
	}

	s.state = StateSubmitting
	s.submitted = true
	failures := validation.ValidateAll(s.form, s.values)
	s.errors = failures

	result := Result{Values: s.values.Clone(), Errors: cloneFailures(failures)}
	if len(failures) == 0 {
		s.state = StateSubmittedValid
		result.Valid = true
	} else {
		s.state = StateSubmittedInvalid
	}

	s.logger.Debug("form submitted",
		"form", s.form.Name,
		"valid", result.Valid,
		"errors", len(failures),
	)
	return result, nil
}

// Reset restores the value-set seeded by the last Load, clears touched flags
// and errors, and returns to Ready.
func (s *Session) Reset() error {
	if s.state == StateInitializing {
		return &ContractError{Op: "reset", State: s.state, Err: ErrInvalidState}
	}
	s.reseed()
	return nil
}

func (s *Session) reseed() {
	s.values = seed(s.form, s.initial)
	s.touched = map[string]bool{}
	s.errors = nil
	s.submitted = false
	s.recompute()
	s.state = StateReady
}

// seed builds the initial value-set: explicit initial values first, then
// non-empty defaults, then an empty selection for checkbox groups.
func seed(form schema.Form, initial schema.Values) schema.Values {
	values := schema.Values{}
	for _, field := range form.Fields {
		if value, ok := initial[field.ID]; ok {
			values[field.ID] = value
			continue
		}
		if field.DefaultValue != "" {
			if field.IsMultiValue() {
				values[field.ID] = schema.List(splitDefaults(field.DefaultValue)...)
			} else {
				values[field.ID] = schema.String(field.DefaultValue)
			}
			continue
		}
		if field.IsMultiValue() {
			values[field.ID] = schema.List()
		}
	}
	return values
}

func splitDefaults(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (s *Session) recompute() {
	s.values, s.derived = s.deriver.Recompute(s.form, s.values)
}

func (s *Session) dropError(id string) {
	if len(s.errors) == 0 {
		return
	}
	kept := s.errors[:0:0]
	for _, failure := range s.errors {
		if failure.FieldID != id {
			kept = append(kept, failure)
		}
	}
	s.errors = kept
}

func cloneFailures(in []validation.Failure) []validation.Failure {
	if len(in) == 0 {
		return nil
	}
	return append([]validation.Failure(nil), in...)
}
