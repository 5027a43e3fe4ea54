package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessages(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"missing", NewMissingField("database.hostname"), "Missing required configuration: database.hostname"},
		{
			"misplaced",
			NewMisplacedSensitiveField("database.password"),
			"Sensitive configuration 'database.password' should be in config_sensitive block",
		},
		{
			"enum",
			NewInvalidEnumValue("snapshot.mode", "always", []string{"initial", "never"}),
			`Invalid value 'always' for field 'snapshot.mode'. Valid values: ["initial", "never"]`,
		},
		{
			"structure",
			NewStructuralViolation("pg", "status", "missing 'status' field"),
			"Resource 'pg' missing 'status' field",
		},
		{"unknown", NewUnknownConnector("Nope"), "Unknown connector: Nope"},
		{
			"wrapped",
			NewParseFailure(errors.New("main.tf:1,1: bad")),
			"Failed to parse Terraform file: main.tf:1,1: bad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindHelpers(t *testing.T) {
	err := fmt.Errorf("validate: %w", NewMissingField("a"))

	assert.True(t, IsKind(err, KindMissingField))
	assert.False(t, IsKind(err, KindParseFailure))
	assert.True(t, IsSchemaFailure(err))
	assert.False(t, IsSchemaFailure(NewStructuralViolation("r", "status", "missing")))
	assert.False(t, IsSchemaFailure(errors.New("plain")))

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindMissingField, kind)
}

func TestIs(t *testing.T) {
	err := NewStructuralViolation("pg", "kafka_cluster", "missing block")

	assert.True(t, errors.Is(err, &Error{Kind: KindStructuralViolation}))
	assert.True(t, errors.Is(err, &Error{Kind: KindStructuralViolation, Field: "kafka_cluster"}))
	assert.False(t, errors.Is(err, &Error{Kind: KindStructuralViolation, Field: "status"}))
	assert.False(t, errors.Is(err, &Error{Kind: KindMissingField}))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(KindIO, "write output", cause)
	assert.ErrorIs(t, err, cause)
}
