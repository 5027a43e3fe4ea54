package prompt

import (
	"context"
	"fmt"
	"slices"
)

// ScriptedPrompter replays canned answers in order. Input answers are
// strings; Select answers are either an index or the option text.
type ScriptedPrompter struct {
	answers []any
	next    int
	calls   []string
}

// NewScriptedPrompter creates a prompter that returns answers in order.
func NewScriptedPrompter(answers ...any) *ScriptedPrompter {
	return &ScriptedPrompter{answers: answers}
}

func (sp *ScriptedPrompter) pop(message string) (any, error) {
	sp.calls = append(sp.calls, message)
	if sp.next >= len(sp.answers) {
		return nil, fmt.Errorf("no scripted answer for %q", message)
	}
	a := sp.answers[sp.next]
	sp.next++
	return a, nil
}

// Input returns the next answer, or def when the answer is empty.
func (sp *ScriptedPrompter) Input(_ context.Context, message, def string) (string, error) {
	a, err := sp.pop(message)
	if err != nil {
		return "", err
	}
	s, ok := a.(string)
	if !ok {
		return "", fmt.Errorf("scripted answer for %q is %T, want string", message, a)
	}
	if s == "" {
		return def, nil
	}
	return s, nil
}

// Select returns the next answer as an option index.
func (sp *ScriptedPrompter) Select(_ context.Context, message string, options []string) (int, error) {
	a, err := sp.pop(message)
	if err != nil {
		return 0, err
	}
	switch v := a.(type) {
	case int:
		if v < 0 || v >= len(options) {
			return 0, fmt.Errorf("scripted index %d out of range for %q", v, message)
		}
		return v, nil
	case string:
		i := slices.Index(options, v)
		if i < 0 {
			return 0, fmt.Errorf("scripted option %q not offered for %q", v, message)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("scripted answer for %q is %T, want int or string", message, a)
	}
}

// IsInteractive always reports true.
func (sp *ScriptedPrompter) IsInteractive() bool {
	return true
}

// Calls returns the messages of every prompt shown so far.
func (sp *ScriptedPrompter) Calls() []string {
	return sp.calls
}

// Remaining returns the number of unused answers.
func (sp *ScriptedPrompter) Remaining() int {
	return len(sp.answers) - sp.next
}
