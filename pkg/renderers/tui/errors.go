package tui

import "errors"

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("tui: fill aborted")

// ErrTooManyAttempts is returned once a field exhausts its re-prompts. The
// wrapped message names the field.
var ErrTooManyAttempts = errors.New("tui: too many invalid attempts")
