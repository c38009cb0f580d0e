// Package derive recomputes derived field values from their parent fields.
//
// Derived fields may only reference non-derived fields, so one pass in schema
// order always sees final parent values and no dependency sort is needed.
// Evaluation failures are expected while users are mid-edit: the previous
// value is kept and the failure is reported to an Observer instead of being
// returned as an error.
package derive

import (
	"log/slog"
	"strings"

	"github.com/goliatone/go-formflow/pkg/formula"
	"github.com/goliatone/go-formflow/pkg/schema"
)

// Evaluator evaluates a formula against numeric variables. formula.Evaluate
// satisfies it through EvaluatorFunc.
type Evaluator interface {
	Evaluate(expr string, vars map[string]float64) (float64, error)
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(expr string, vars map[string]float64) (float64, error)

// Evaluate delegates to the underlying function.
func (fn EvaluatorFunc) Evaluate(expr string, vars map[string]float64) (float64, error) {
	return fn(expr, vars)
}

// Observer receives derivation failures.
type Observer interface {
	DerivationFailed(field schema.Field, err error)
}

// ObserverFunc adapts a function into an Observer.
type ObserverFunc func(field schema.Field, err error)

// DerivationFailed delegates to the underlying function.
func (fn ObserverFunc) DerivationFailed(field schema.Field, err error) {
	fn(field, err)
}

// NopObserver discards failures.
type NopObserver struct{}

func (NopObserver) DerivationFailed(schema.Field, error) {}

// SlogObserver logs failures at warn level.
type SlogObserver struct {
	Logger *slog.Logger
}

func (o SlogObserver) DerivationFailed(field schema.Field, err error) {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("derived field evaluation failed",
		"field", field.ID,
		"formula", field.Formula,
		"error", err,
	)
}

// Failure records a derived field that kept its previous value.
type Failure struct {
	FieldID string
	Err     error
}

func (f Failure) Error() string {
	return "derive: " + f.FieldID + ": " + f.Err.Error()
}

func (f Failure) Unwrap() error { return f.Err }

// Option configures an Engine.
type Option func(*Engine)

// WithObserver routes failures to observer.
func WithObserver(observer Observer) Option {
	return func(e *Engine) {
		if observer != nil {
			e.observer = observer
		}
	}
}

// WithEvaluator swaps the formula evaluator.
func WithEvaluator(evaluator Evaluator) Option {
	return func(e *Engine) {
		if evaluator != nil {
			e.evaluator = evaluator
		}
	}
}

// Engine recomputes derived fields. It holds no per-form state and is safe to
// share between sessions.
type Engine struct {
	evaluator Evaluator
	observer  Observer
}

// New constructs an Engine that evaluates with formula.Evaluate and logs
// failures through slog.Default.
func New(options ...Option) *Engine {
	e := &Engine{
		evaluator: EvaluatorFunc(formula.Evaluate),
		observer:  SlogObserver{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Recompute returns a copy of values in which every derived field holds the
// result of its formula. values is not modified. Fields whose formula fails
// keep their previous entry (or stay absent) and are listed in the returned
// failures.
func (e *Engine) Recompute(form schema.Form, values schema.Values) (schema.Values, []Failure) {
	out := values.Clone()
	var failures []Failure

	for _, field := range form.Fields {
		if !field.IsDerived() || strings.TrimSpace(field.Formula) == "" {
			continue
		}
		if !anyPresent(out, field.ParentFields) {
			continue
		}

		vars := make(map[string]float64, len(field.ParentFields))
		for _, parentID := range field.ParentFields {
			// missing parents read as 0
			vars[parentID] = out[parentID].Float()
		}

		result, err := e.evaluator.Evaluate(field.Formula, vars)
		if err != nil {
			failures = append(failures, Failure{FieldID: field.ID, Err: err})
			e.observer.DerivationFailed(field, err)
			continue
		}
		out[field.ID] = schema.String(schema.FormatNumber(result))
	}

	return out, failures
}

// anyPresent reports whether at least one parent has a value. A derived field
// whose parents were never given values stays untouched. Fields without
// parents always evaluate.
func anyPresent(values schema.Values, parents []string) bool {
	if len(parents) == 0 {
		return true
	}
	for _, id := range parents {
		if _, ok := values[id]; ok {
			return true
		}
	}
	return false
}

var defaultEngine = New()

// Recompute runs the default engine.
func Recompute(form schema.Form, values schema.Values) (schema.Values, []Failure) {
	return defaultEngine.Recompute(form, values)
}
