package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// InputConfig configures a single-line text, number or password prompt.
// Validator runs on every answer before it is accepted.
type InputConfig struct {
	Message   string
	Default   string
	Hint      string
	Validator func(string) error
}

// ConfirmConfig configures a single checkbox.
type ConfirmConfig struct {
	Message string
	Default bool
	Hint    string
}

// SelectConfig configures a select, radio or checkbox-group prompt. Options
// are display labels in schema order; answers are indices into them.
type SelectConfig struct {
	Message string
	Options []string
	// Selected preselects options. A single-choice prompt uses the first
	// entry only.
	Selected []int
	Hint     string
}

// TextAreaConfig configures a multi-line text prompt.
type TextAreaConfig struct {
	Message string
	Default string
	Hint    string
}

// PromptDriver asks the user for one answer at a time. The Runner only talks
// to this interface so sessions can be driven without a terminal.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Password(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
	Info(ctx context.Context, msg string) error
}

type surveyDriver struct {
	stdio terminal.Stdio
}

// NewSurveyDriver returns a PromptDriver backed by survey, reading from and
// writing to stdio.
func NewSurveyDriver(stdio terminal.Stdio) PromptDriver {
	return &surveyDriver{stdio: stdio}
}

// ask checks ctx, runs one survey prompt and maps interrupts and closed input
// to ErrAborted.
func (d *surveyDriver) ask(ctx context.Context, prompt survey.Prompt, response any, validator func(string) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var opts []survey.AskOpt
	if d.stdio.In != nil && d.stdio.Out != nil {
		opts = append(opts, survey.WithStdio(d.stdio.In, d.stdio.Out, d.stdio.Err))
	}
	if validator != nil {
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			text, _ := ans.(string)
			return validator(text)
		}))
	}

	err := survey.AskOne(prompt, response, opts...)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, terminal.InterruptErr), errors.Is(err, io.EOF):
		return ErrAborted
	default:
		return err
	}
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var out string
	prompt := &survey.Input{Message: cfg.Message, Help: cfg.Hint, Default: cfg.Default}
	if err := d.ask(ctx, prompt, &out, cfg.Validator); err != nil {
		return "", err
	}
	return out, nil
}

func (d *surveyDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	var out string
	prompt := &survey.Password{Message: cfg.Message, Help: cfg.Hint}
	if err := d.ask(ctx, prompt, &out, cfg.Validator); err != nil {
		return "", err
	}
	return out, nil
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	var out bool
	prompt := &survey.Confirm{Message: cfg.Message, Help: cfg.Hint, Default: cfg.Default}
	if err := d.ask(ctx, prompt, &out, nil); err != nil {
		return false, err
	}
	return out, nil
}

func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	prompt := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Hint}
	if len(cfg.Selected) > 0 {
		if idx := cfg.Selected[0]; idx >= 0 && idx < len(cfg.Options) {
			prompt.Default = cfg.Options[idx]
		}
	}
	// survey writes the chosen index into an int response
	var out int
	if err := d.ask(ctx, prompt, &out, nil); err != nil {
		return -1, err
	}
	return out, nil
}

func (d *surveyDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	prompt := &survey.MultiSelect{Message: cfg.Message, Options: cfg.Options, Help: cfg.Hint}
	if len(cfg.Selected) > 0 {
		var defaults []string
		for _, idx := range cfg.Selected {
			if idx >= 0 && idx < len(cfg.Options) {
				defaults = append(defaults, cfg.Options[idx])
			}
		}
		prompt.Default = defaults
	}
	var out []int
	if err := d.ask(ctx, prompt, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *surveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	var out string
	prompt := &survey.Multiline{Message: cfg.Message, Help: cfg.Hint, Default: cfg.Default}
	if err := d.ask(ctx, prompt, &out, nil); err != nil {
		return "", err
	}
	return out, nil
}

// Info prints msg on its own line. Derived values and validation messages go
// through here.
func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.stdio.Out == nil {
		return nil
	}
	_, err := fmt.Fprintln(d.stdio.Out, msg)
	return err
}
