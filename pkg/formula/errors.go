package formula

import (
	"errors"
	"fmt"
)

// ErrEvaluation is matched by every error the evaluator returns.
var ErrEvaluation = errors.New("formula: evaluation failed")

// Reason classifies an EvaluationError.
type Reason string

const (
	ReasonSyntax         Reason = "syntax"
	ReasonUnbound        Reason = "unbound identifier"
	ReasonDivisionByZero Reason = "division by zero"
	ReasonNonFinite      Reason = "non-finite result"
)

// EvaluationError reports why a formula could not be parsed or evaluated.
// Pos is the byte offset of the problem, or -1 when it has no single location.
type EvaluationError struct {
	Formula    string
	Pos        int
	Reason     Reason
	Identifier string
	Detail     string
}

func (e *EvaluationError) Error() string {
	msg := "formula: " + string(e.Reason)
	switch {
	case e.Identifier != "":
		msg += fmt.Sprintf(" %q", e.Identifier)
	case e.Detail != "":
		msg += ": " + e.Detail
	}
	if e.Pos >= 0 {
		msg += fmt.Sprintf(" at offset %d", e.Pos)
	}
	if e.Formula != "" {
		msg += fmt.Sprintf(" in %q", e.Formula)
	}
	return msg
}

// Is lets errors.Is(err, ErrEvaluation) match.
func (e *EvaluationError) Is(target error) bool {
	return target == ErrEvaluation
}

func syntaxError(formula string, pos int, detail string) *EvaluationError {
	return &EvaluationError{Formula: formula, Pos: pos, Reason: ReasonSyntax, Detail: detail}
}
