package tui

import (
	"log/slog"
	"os"

	"github.com/AlecAivazis/survey/v2/terminal"
)

// Theme captures optional message prefixes the runner applies when printing.
type Theme struct {
	RequiredSuffix string
	DerivedPrefix  string
	ErrorPrefix    string
}

// DefaultTheme is used when no theme is configured.
var DefaultTheme = Theme{
	RequiredSuffix: " *",
	DerivedPrefix:  "= ",
	ErrorPrefix:    "! ",
}

// Option configures the Runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver used by the runner.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

// WithMaxAttempts bounds the number of correction rounds after an invalid
// submission. Zero or less means unbounded.
func WithMaxAttempts(n int) Option {
	return func(r *Runner) {
		r.maxAttempts = n
	}
}

// WithLogger sets the logger used for run events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func defaultStdio() terminal.Stdio {
	return terminal.Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}
