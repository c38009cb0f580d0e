// Package tui fills in a form session interactively from a terminal. Prompts
// go through a PromptDriver; the default driver uses survey.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/session"
)

// Runner prompts for every editable field of a session, submits, and asks
// again for fields that failed validation.
type Runner struct {
	driver      PromptDriver
	theme       Theme
	maxAttempts int
	logger      *slog.Logger
}

// New constructs a runner using the survey driver on the process terminal
// unless WithPromptDriver is given.
func New(options ...Option) *Runner {
	r := &Runner{
		theme:  DefaultTheme,
		logger: slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(defaultStdio())
	}
	return r
}

// Run drives s until it submits valid, the user aborts, or the attempt limit
// is reached. The last submission result is returned in every case where a
// submission happened.
func (r *Runner) Run(ctx context.Context, s *session.Session) (session.Result, error) {
	if ctx == nil {
		return session.Result{}, errors.New("tui: context is required")
	}
	if s.State() == session.StateInitializing {
		return session.Result{}, errors.New("tui: session has no form loaded")
	}

	for _, state := range s.Fields() {
		if state.Field.IsReadonly() {
			continue
		}
		if err := r.promptField(ctx, s, state); err != nil {
			return session.Result{}, err
		}
	}
	if err := r.reportDerived(ctx, s); err != nil {
		return session.Result{}, err
	}

	for attempt := 1; ; attempt++ {
		result, err := s.Submit()
		if err != nil {
			return session.Result{}, err
		}
		if result.Valid {
			r.logger.Debug("tui: form submitted", "attempts", attempt)
			return result, nil
		}
		if r.maxAttempts > 0 && attempt >= r.maxAttempts {
			return result, ErrTooManyAttempts
		}

		var retry []session.FieldState
		for _, failure := range result.Errors {
			state, ok := s.Field(failure.FieldID)
			if !ok || state.Field.IsReadonly() {
				continue
			}
			retry = append(retry, state)
		}
		if len(retry) == 0 {
			// nothing the user can edit would change the outcome
			return result, nil
		}

		for _, state := range retry {
			msg := fmt.Sprintf("%s%s: %s", r.theme.ErrorPrefix, state.Field.DisplayLabel(), state.Error)
			if err := r.driver.Info(ctx, msg); err != nil {
				return result, err
			}
			if err := r.promptField(ctx, s, state); err != nil {
				return result, err
			}
		}
		if err := r.reportDerived(ctx, s); err != nil {
			return result, err
		}
	}
}

func (r *Runner) promptField(ctx context.Context, s *session.Session, state session.FieldState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := r.ask(ctx, state)
	if err != nil {
		return err
	}
	return s.SetValue(state.Field.ID, value)
}

func (r *Runner) ask(ctx context.Context, state session.FieldState) (schema.Value, error) {
	field := state.Field
	message := r.message(field)
	hint := ruleHint(field)
	current := ""
	if state.Present {
		current = state.Value.Text()
	}

	switch {
	case field.IsMultiValue():
		selected, _ := state.Value.Items()
		var defaults []int
		for _, value := range selected {
			if idx := optionIndex(field.Options, value); idx >= 0 {
				defaults = append(defaults, idx)
			}
		}
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Options:  optionLabels(field.Options),
			Selected: defaults,
			Hint:     hint,
		})
		if err != nil {
			return schema.Value{}, err
		}
		values := make([]string, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(field.Options) {
				values = append(values, field.Options[idx].Value)
			}
		}
		return schema.List(values...), nil

	case field.Kind == schema.FieldKindCheckbox:
		checked, _ := state.Value.Flag()
		if !checked {
			checked = strings.EqualFold(strings.TrimSpace(current), "true")
		}
		answer, err := r.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: checked, Hint: hint})
		if err != nil {
			return schema.Value{}, err
		}
		return schema.Bool(answer), nil

	case field.Kind == schema.FieldKindSelect || field.Kind == schema.FieldKindRadio:
		var preselect []int
		if idx := optionIndex(field.Options, current); idx >= 0 {
			preselect = []int{idx}
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:  message,
			Options:  optionLabels(field.Options),
			Selected: preselect,
			Hint:     hint,
		})
		if err != nil {
			return schema.Value{}, err
		}
		if idx < 0 || idx >= len(field.Options) {
			return schema.String(""), nil
		}
		return schema.String(field.Options[idx].Value), nil

	case field.Kind == schema.FieldKindPassword:
		answer, err := r.driver.Password(ctx, InputConfig{Message: message, Hint: hint})
		if err != nil {
			return schema.Value{}, err
		}
		return schema.String(answer), nil

	case field.Kind == schema.FieldKindTextarea:
		answer, err := r.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: current, Hint: hint})
		if err != nil {
			return schema.Value{}, err
		}
		return schema.String(answer), nil

	case field.Kind == schema.FieldKindNumber:
		answer, err := r.driver.Input(ctx, InputConfig{Message: message, Default: current, Hint: hint, Validator: numeric})
		if err != nil {
			return schema.Value{}, err
		}
		return schema.String(strings.TrimSpace(answer)), nil

	default:
		answer, err := r.driver.Input(ctx, InputConfig{Message: message, Default: current, Hint: hint})
		if err != nil {
			return schema.Value{}, err
		}
		return schema.String(answer), nil
	}
}

func (r *Runner) reportDerived(ctx context.Context, s *session.Session) error {
	for _, state := range s.Fields() {
		if !state.Field.IsDerived() || !state.Present {
			continue
		}
		msg := fmt.Sprintf("%s%s: %s", r.theme.DerivedPrefix, state.Field.DisplayLabel(), state.Value.Text())
		if err := r.driver.Info(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) message(field schema.Field) string {
	label := field.DisplayLabel()
	if field.Required || field.HasRule(schema.RuleRequired) {
		label += r.theme.RequiredSuffix
	}
	return label
}

// ruleHint summarises the validation rules of field for the prompt help text.
func ruleHint(field schema.Field) string {
	var parts []string
	for _, rule := range field.Validations {
		switch rule.Kind {
		case schema.RuleMinLength:
			parts = append(parts, "at least "+strings.TrimSpace(rule.Value)+" characters")
		case schema.RuleMaxLength:
			parts = append(parts, "at most "+strings.TrimSpace(rule.Value)+" characters")
		case schema.RuleEmail:
			parts = append(parts, "an email address")
		case schema.RulePassword:
			parts = append(parts, "at least 8 characters")
		}
	}
	return strings.Join(parts, "; ")
}

// numeric accepts blank input so optional number fields can be skipped.
func numeric(input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
		return fmt.Errorf("%q is not a number", trimmed)
	}
	return nil
}

func optionLabels(options []schema.FieldOption) []string {
	labels := make([]string, len(options))
	for i, option := range options {
		label := strings.TrimSpace(option.Label)
		if label == "" {
			label = option.Value
		}
		labels[i] = label
	}
	return labels
}

func optionIndex(options []schema.FieldOption, value string) int {
	for i, option := range options {
		if option.Value == value {
			return i
		}
	}
	return -1
}
