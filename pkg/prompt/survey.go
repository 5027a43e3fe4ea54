package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// SurveyPrompter implements Prompter with terminal prompts.
type SurveyPrompter struct {
	interactive bool
	opts        []survey.AskOpt
}

// NewSurveyPrompter creates a survey-backed prompter. opts are passed to
// every question, e.g. survey.WithStdio.
func NewSurveyPrompter(interactive bool, opts ...survey.AskOpt) *SurveyPrompter {
	return &SurveyPrompter{
		interactive: interactive,
		opts:        opts,
	}
}

// Input asks for a line of text.
func (sp *SurveyPrompter) Input(ctx context.Context, message, def string) (string, error) {
	if !sp.interactive {
		return "", ErrNonInteractive
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var result string
	prompt := &survey.Input{
		Message: message,
		Default: def,
	}
	if err := survey.AskOne(prompt, &result, sp.opts...); err != nil {
		return "", err
	}
	return strings.TrimSpace(result), nil
}

// Select shows a filterable list; typing narrows the options.
func (sp *SurveyPrompter) Select(ctx context.Context, message string, options []string) (int, error) {
	if !sp.interactive {
		return 0, ErrNonInteractive
	}
	if len(options) == 0 {
		return 0, fmt.Errorf("no options to select from")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var index int
	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 15,
	}
	if err := survey.AskOne(prompt, &index, sp.opts...); err != nil {
		return 0, err
	}
	return index, nil
}

// IsInteractive returns whether the prompter can display prompts.
func (sp *SurveyPrompter) IsInteractive() bool {
	return sp.interactive
}
