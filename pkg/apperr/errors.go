// Package apperr defines the classified errors returned by connect-util.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error so callers can decide whether it aborts a run or
// is reported alongside other results.
type Kind string

const (
	// KindParseFailure means the input is not a syntactically valid document.
	// It aborts the whole parse or validate call.
	KindParseFailure Kind = "parse_failure"

	// KindMissingField means a required connector setting is absent.
	KindMissingField Kind = "missing_field"

	// KindMisplacedSensitiveField means a sensitive setting was found in the
	// non-sensitive configuration map.
	KindMisplacedSensitiveField Kind = "misplaced_sensitive_field"

	// KindInvalidEnumValue means a setting holds a value outside its allowed set.
	KindInvalidEnumValue Kind = "invalid_enum_value"

	// KindStructuralViolation means a resource declaration does not have the
	// required shape.
	KindStructuralViolation Kind = "structural_violation"

	// KindGenerationFailure means a document could not be generated, either
	// because of a malformed identifier or a serialization fault.
	KindGenerationFailure Kind = "generation_failure"

	// KindUnknownConnector means a connector class is not in the catalog.
	KindUnknownConnector Kind = "unknown_connector"

	// KindConfig covers invalid CLI input and settings.
	KindConfig Kind = "config"

	// KindIO covers file system failures.
	KindIO Kind = "io"
)

// Error is a classified error with optional resource and field context.
type Error struct {
	// Kind is the error classification.
	Kind Kind `json:"kind"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Resource is the resource label the error refers to, if any.
	Resource string `json:"resource,omitempty"`

	// Field is the configuration key the error refers to, if any.
	Field string `json:"field,omitempty"`

	// Err is the underlying error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind. A target with an
// empty Field matches any field.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.Field == "" || t.Field == e.Field
}

// WithResource adds resource context to an error.
func (e *Error) WithResource(resource string) *Error {
	e.Resource = resource
	return e
}

// WithField adds field context to an error.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around err.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NewParseFailure reports a document that could not be parsed.
func NewParseFailure(err error) *Error {
	return Wrap(KindParseFailure, "Failed to parse Terraform file", err)
}

// NewMissingField reports an absent required setting.
func NewMissingField(field string) *Error {
	return New(KindMissingField, fmt.Sprintf("Missing required configuration: %s", field)).WithField(field)
}

// NewMisplacedSensitiveField reports a sensitive setting outside config_sensitive.
func NewMisplacedSensitiveField(field string) *Error {
	return New(KindMisplacedSensitiveField,
		fmt.Sprintf("Sensitive configuration '%s' should be in config_sensitive block", field)).WithField(field)
}

// NewInvalidEnumValue reports a value outside the allowed set of a field.
func NewInvalidEnumValue(field, value string, allowed []string) *Error {
	quoted := make([]string, len(allowed))
	for i, v := range allowed {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return New(KindInvalidEnumValue,
		fmt.Sprintf("Invalid value '%s' for field '%s'. Valid values: [%s]", value, field, strings.Join(quoted, ", "))).
		WithField(field)
}

// NewStructuralViolation reports a resource declaration missing a required element.
// The message is prefixed with the resource label.
func NewStructuralViolation(resource, element, detail string) *Error {
	return New(KindStructuralViolation, fmt.Sprintf("Resource '%s' %s", resource, detail)).
		WithResource(resource).
		WithField(element)
}

// NewGenerationFailure reports a document that could not be generated.
func NewGenerationFailure(message string, err error) *Error {
	return Wrap(KindGenerationFailure, message, err)
}

// NewUnknownConnector reports a connector class missing from the catalog.
func NewUnknownConnector(class string) *Error {
	return New(KindUnknownConnector, fmt.Sprintf("Unknown connector: %s", class)).WithField(class)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err's chain contains an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsSchemaFailure reports whether err is a per-connector validation failure
// that should be reported rather than abort processing.
func IsSchemaFailure(err error) bool {
	k, ok := KindOf(err)
	if !ok {
		return false
	}
	return k == KindMissingField || k == KindMisplacedSensitiveField || k == KindInvalidEnumValue
}
