package policy

import (
	"time"

	"github.com/connect-util/connect-util/pkg/terraform"
)

// Severity represents the severity level of a policy violation.
type Severity string

const (
	// SeverityInfo is for informational messages.
	SeverityInfo Severity = "info"

	// SeverityWarning is for findings that should be reviewed.
	SeverityWarning Severity = "warning"

	// SeverityError is for findings that fail validation.
	SeverityError Severity = "error"
)

// Blocking reports whether a violation of this severity fails validation.
func (s Severity) Blocking() bool {
	return s == SeverityError
}

// Policy represents a policy rule with its Rego code.
type Policy struct {
	// Name is the unique name of the policy.
	Name string `json:"name"`

	// Description provides a human-readable description.
	Description string `json:"description"`

	// Rego contains the Rego module. Its package must define a deny set.
	Rego string `json:"rego"`

	// Severity is used for violations that do not carry their own.
	Severity Severity `json:"severity"`

	// Enabled indicates if the policy is active.
	Enabled bool `json:"enabled"`

	// Tags are labels for organizing policies.
	Tags []string `json:"tags,omitempty"`

	// Source is the file the policy was loaded from. Empty for built-ins.
	Source string `json:"source,omitempty"`
}

// Violation is one deny entry produced by a policy for a connector.
type Violation struct {
	Policy   string   `json:"policy"`
	Resource string   `json:"resource"`
	Key      string   `json:"key,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Result is the outcome of evaluating the enabled policies over a set of
// connector configurations.
type Result struct {
	// Allowed is false when at least one blocking violation was found.
	Allowed bool `json:"allowed"`

	Violations []Violation `json:"violations,omitempty"`

	// Warnings lists policies that failed to evaluate.
	Warnings []string `json:"warnings,omitempty"`

	EvaluatedPolicies []string      `json:"evaluated_policies"`
	EvaluatedAt       time.Time     `json:"evaluated_at"`
	Duration          time.Duration `json:"duration"`
}

// Count returns the number of violations with the given severity.
func (r *Result) Count(s Severity) int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == s {
			n++
		}
	}
	return n
}

// Input is the document passed to Rego as input.
type Input struct {
	Connector ConnectorInput `json:"connector"`
	Context   InputContext   `json:"context"`
}

// ConnectorInput mirrors terraform.ConnectorConfig for Rego consumption.
type ConnectorInput struct {
	Name            string            `json:"name"`
	ConnectorClass  string            `json:"connector_class"`
	Config          map[string]string `json:"config"`
	SensitiveConfig map[string]string `json:"sensitive_config"`
}

// InputContext describes where the connector came from.
type InputContext struct {
	File      string    `json:"file,omitempty"`
	Operation string    `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
}

func newInput(cfg terraform.ConnectorConfig, file string) Input {
	config := cfg.Config
	if config == nil {
		config = map[string]string{}
	}
	sensitive := cfg.SensitiveConfig
	if sensitive == nil {
		sensitive = map[string]string{}
	}
	return Input{
		Connector: ConnectorInput{
			Name:            cfg.Name,
			ConnectorClass:  cfg.ConnectorClass,
			Config:          config,
			SensitiveConfig: sensitive,
		},
		Context: InputContext{
			File:      file,
			Operation: "validate",
			Timestamp: time.Now(),
		},
	}
}
