package editor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/formula"
	"github.com/goliatone/go-formflow/pkg/schema"
)

// IssueCode classifies a lint finding.
type IssueCode string

const (
	IssueSchema          IssueCode = "schema"
	IssueFormulaSyntax   IssueCode = "formula-syntax"
	IssueFormulaUnbound  IssueCode = "formula-unbound"
	IssueDuplicateRule   IssueCode = "duplicate-rule"
	IssueBadThreshold    IssueCode = "bad-threshold"
	IssueMissingOptions  IssueCode = "missing-options"
	IssueBlankOption     IssueCode = "blank-option"
	IssueMissingLabel    IssueCode = "missing-label"
	IssueUnusedParent    IssueCode = "unused-parent"
	IssueRedundantRule   IssueCode = "redundant-rule"
	IssueDerivedRequired IssueCode = "derived-required"
	IssueMissingFormula  IssueCode = "missing-formula"
)

// Issue is an authoring warning. Issues never block a session; they point at
// schemas that will behave in surprising ways.
type Issue struct {
	FieldID string    `json:"fieldId,omitempty"`
	Code    IssueCode `json:"code"`
	Message string    `json:"message"`
}

func (i Issue) String() string {
	if i.FieldID == "" {
		return fmt.Sprintf("[%s] %s", i.Code, i.Message)
	}
	return fmt.Sprintf("%s: [%s] %s", i.FieldID, i.Code, i.Message)
}

// Lint inspects form and returns its issues in schema order.
func Lint(form schema.Form) []Issue {
	var issues []Issue

	if err := form.Validate(); err != nil {
		var schemaErr *schema.SchemaError
		if errors.As(err, &schemaErr) {
			issues = append(issues, Issue{FieldID: schemaErr.FieldID, Code: IssueSchema, Message: schemaErr.Reason})
		} else {
			issues = append(issues, Issue{Code: IssueSchema, Message: err.Error()})
		}
	}

	for _, field := range form.Fields {
		issues = append(issues, lintField(field)...)
	}
	return issues
}

func lintField(field schema.Field) []Issue {
	var issues []Issue
	add := func(code IssueCode, format string, args ...any) {
		issues = append(issues, Issue{FieldID: field.ID, Code: code, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(field.Label) == "" {
		add(IssueMissingLabel, "field has no label")
	}

	seen := map[schema.RuleKind]bool{}
	for _, rule := range field.Validations {
		if seen[rule.Kind] {
			add(IssueDuplicateRule, "rule %q is declared more than once", rule.Kind)
		}
		seen[rule.Kind] = true

		switch rule.Kind {
		case schema.RuleMinLength, schema.RuleMaxLength:
			if _, err := strconv.Atoi(strings.TrimSpace(rule.Value)); err != nil {
				add(IssueBadThreshold, "rule %q has non-integer value %q and is ignored", rule.Kind, rule.Value)
			}
			if field.IsMultiValue() {
				add(IssueRedundantRule, "rule %q does not apply to checkbox groups", rule.Kind)
			}
		case schema.RuleEmail, schema.RulePassword:
			if field.IsMultiValue() {
				add(IssueRedundantRule, "rule %q does not apply to checkbox groups", rule.Kind)
			}
		}
	}

	switch field.Kind {
	case schema.FieldKindSelect, schema.FieldKindRadio:
		if len(field.Options) == 0 {
			add(IssueMissingOptions, "%s field has no options", field.Kind)
		}
	}
	for i, option := range field.Options {
		if strings.TrimSpace(option.Value) == "" {
			add(IssueBlankOption, "option %d has an empty value", i+1)
		}
	}

	if field.IsDerived() {
		if field.Required || field.HasRule(schema.RuleRequired) {
			add(IssueDerivedRequired, "derived fields are computed and should not be required")
		}
		issues = append(issues, lintFormula(field)...)
	}
	return issues
}

func lintFormula(field schema.Field) []Issue {
	if strings.TrimSpace(field.Formula) == "" {
		return []Issue{{FieldID: field.ID, Code: IssueMissingFormula, Message: "derived field has no formula and is never computed"}}
	}
	var issues []Issue

	program, err := formula.Compile(field.Formula)
	if err != nil {
		return append(issues, Issue{FieldID: field.ID, Code: IssueFormulaSyntax, Message: err.Error()})
	}

	parents := make(map[string]bool, len(field.ParentFields))
	for _, parent := range field.ParentFields {
		parents[parent] = true
	}
	used := map[string]bool{}
	for _, name := range program.Identifiers() {
		used[name] = true
		if !parents[name] {
			issues = append(issues, Issue{
				FieldID: field.ID,
				Code:    IssueFormulaUnbound,
				Message: fmt.Sprintf("formula uses %q which is not a parent field", name),
			})
		}
	}
	for _, parent := range field.ParentFields {
		if !used[parent] {
			issues = append(issues, Issue{
				FieldID: field.ID,
				Code:    IssueUnusedParent,
				Message: fmt.Sprintf("parent %q is not used by the formula", parent),
			})
		}
	}
	return issues
}
