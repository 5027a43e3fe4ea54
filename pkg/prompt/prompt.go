// Package prompt collects generate inputs from a terminal. The Prompter
// interface keeps the wizard testable: SurveyPrompter talks to the terminal,
// ScriptedPrompter replays canned answers.
package prompt

import (
	"context"
	"errors"
)

// ErrNonInteractive is returned when a prompt is needed but no terminal is
// available.
var ErrNonInteractive = errors.New("cannot prompt in non-interactive mode")

// Prompter asks the user for single values.
type Prompter interface {
	// Input collects free text. def is returned on empty input.
	Input(ctx context.Context, message, def string) (string, error)

	// Select presents options and returns the index of the chosen one.
	Select(ctx context.Context, message string, options []string) (int, error)

	// IsInteractive reports whether prompts can be displayed.
	IsInteractive() bool
}
