// Package validation applies a field's rules to a candidate value. Rules are
// evaluated in a fixed order: required-ness first, then an early pass for
// empty optional values, then the declared rules in order with the first
// failure winning. Failures are user-facing results, not defects, so nothing
// here returns an error for bad input.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-formflow/pkg/schema"
)

const (
	MessageRequired = "This field is required"
	MessageEmail    = "Please enter a valid email address"
	MessagePassword = "Password must be at least 8 characters long"

	// PasswordMinLength is the fixed minimum enforced by the password rule.
	PasswordMinLength = 8
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Failure is a field that did not pass validation. Message is shown verbatim.
type Failure struct {
	FieldID string `json:"fieldId"`
	Message string `json:"message"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.FieldID, f.Message)
}

// ValidateField checks value against field. present is false when the
// value-set holds no entry for the field, which counts as empty. It returns
// nil when the field passes.
func ValidateField(field schema.Field, value schema.Value, present bool) *Failure {
	empty := !present || value.IsEmpty()

	if empty {
		if isRequired(field) {
			return &Failure{FieldID: field.ID, Message: MessageRequired}
		}
		return nil
	}

	// checkbox groups only take part in the required check
	if field.IsMultiValue() {
		return nil
	}

	text := value.Text()
	for _, rule := range field.Validations {
		if msg, failed := checkRule(rule, text); failed {
			return &Failure{FieldID: field.ID, Message: msg}
		}
	}
	return nil
}

// ValidateAll runs ValidateField over every field in schema order and returns
// the failing ones, at most one per field.
func ValidateAll(form schema.Form, values schema.Values) []Failure {
	var failures []Failure
	for _, field := range form.Fields {
		value, present := values.Get(field.ID)
		if failure := ValidateField(field, value, present); failure != nil {
			failures = append(failures, *failure)
		}
	}
	return failures
}

// Check adapts ValidateField to an error-returning validator, which is what
// prompt drivers expect. A nil error means the value passes.
func Check(field schema.Field, value schema.Value) error {
	if failure := ValidateField(field, value, true); failure != nil {
		return failure
	}
	return nil
}

func isRequired(field schema.Field) bool {
	return field.Required || field.HasRule(schema.RuleRequired)
}

func checkRule(rule schema.ValidationRule, text string) (string, bool) {
	switch rule.Kind {
	case schema.RuleMinLength:
		limit, ok := threshold(rule.Value)
		if ok && utf8.RuneCountInString(text) < limit {
			return fmt.Sprintf("Minimum length is %d characters", limit), true
		}
	case schema.RuleMaxLength:
		limit, ok := threshold(rule.Value)
		if ok && utf8.RuneCountInString(text) > limit {
			return fmt.Sprintf("Maximum length is %d characters", limit), true
		}
	case schema.RuleEmail:
		if !emailPattern.MatchString(text) {
			return MessageEmail, true
		}
	case schema.RulePassword:
		if utf8.RuneCountInString(text) < PasswordMinLength {
			return MessagePassword, true
		}
	}
	return "", false
}

// threshold parses a length limit. Unparseable limits disable the rule.
func threshold(raw string) (int, bool) {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return limit, true
}
