package tui

import "errors"

var (
	// ErrAborted is returned when the user interrupts a prompt or input ends.
	ErrAborted = errors.New("tui: aborted")
	// ErrTooManyAttempts is returned when a submission is still invalid after
	// the configured number of correction rounds.
	ErrTooManyAttempts = errors.New("tui: too many invalid submissions")
)
