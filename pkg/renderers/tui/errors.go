package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrTooManyAttempts is returned when a field stays invalid after the
	// configured number of answers.
	ErrTooManyAttempts = errors.New("tui: too many invalid answers")
	// ErrNoDriver is returned when the session has no prompt driver.
	ErrNoDriver = errors.New("tui: prompt driver is nil")
)
