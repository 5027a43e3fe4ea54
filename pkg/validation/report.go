package validation

import (
	"time"

	"github.com/connect-util/connect-util/pkg/apperr"
	"github.com/connect-util/connect-util/pkg/policy"
)

// ConnectorResult is the config validation outcome for one connector.
type ConnectorResult struct {
	Name           string `json:"name"`
	ConnectorClass string `json:"connector_class"`
	DisplayName    string `json:"display_name"`

	Valid bool        `json:"valid"`
	Kind  apperr.Kind `json:"kind,omitempty"`
	Error string      `json:"error,omitempty"`

	NonSensitiveCount int `json:"non_sensitive_count"`
	SensitiveCount    int `json:"sensitive_count"`
}

// StructureResult is the structural outcome for one connector resource.
type StructureResult struct {
	Resource string `json:"resource"`
	Valid    bool   `json:"valid"`
	Error    string `json:"error,omitempty"`
}

// Report collects everything found while validating one document.
type Report struct {
	File string `json:"file"`

	// Commented is set when every non-blank line is a comment. Nothing else
	// is filled in that case.
	Commented bool `json:"commented"`

	Connectors []ConnectorResult `json:"connectors"`
	Structure  []StructureResult `json:"structure"`

	// StructureError is the first structural violation, or empty.
	StructureError string `json:"structure_error,omitempty"`

	Policy *policy.Result `json:"policy,omitempty"`

	Duration time.Duration `json:"duration"`
}

// ConfigValid reports whether every connector passed config validation.
func (r *Report) ConfigValid() bool {
	for _, c := range r.Connectors {
		if !c.Valid {
			return false
		}
	}
	return true
}

// Valid reports whether the document passed every check, policies included.
func (r *Report) Valid() bool {
	if r.Commented {
		return true
	}
	if !r.ConfigValid() || r.StructureError != "" {
		return false
	}
	return r.Policy == nil || r.Policy.Allowed
}

// InvalidCount returns the number of connectors that failed config validation.
func (r *Report) InvalidCount() int {
	n := 0
	for _, c := range r.Connectors {
		if !c.Valid {
			n++
		}
	}
	return n
}
