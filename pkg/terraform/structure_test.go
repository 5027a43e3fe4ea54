package terraform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connect-util/connect-util/pkg/apperr"
	"github.com/connect-util/connect-util/pkg/hcldoc"
)

func parseTF(t *testing.T, src string) *hcldoc.File {
	t.Helper()
	file, err := ParseDocument(hcldoc.NewHCL(), []byte(src), "main.tf")
	require.NoError(t, err)
	return file
}

const completeResource = `
resource "confluent_connector" "ok" {
  status = var.status
  environment {
    id = var.environment_id
  }
  kafka_cluster {
    id = var.kafka_cluster.id
  }
  config_sensitive    = {}
  config_nonsensitive = {}
}
`

func TestValidateStructure(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		field   string
		wantMsg string
	}{
		{
			name: "complete",
			src:  completeResource,
		},
		{
			name:    "no resources",
			src:     `variable "status" {}`,
			field:   "resource",
			wantMsg: "No 'confluent_connector' resources found in file",
		},
		{
			name: "missing status",
			src: `resource "confluent_connector" "a" {
  environment { id = "e" }
}`,
			field:   AttrStatus,
			wantMsg: "Resource 'a' missing 'status' field",
		},
		{
			name: "missing environment",
			src: `resource "confluent_connector" "a" {
  status = "RUNNING"
}`,
			field:   BlockEnvironment,
			wantMsg: "Resource 'a' missing 'environment { id = ... }' block",
		},
		{
			name: "environment without id",
			src: `resource "confluent_connector" "a" {
  status = "RUNNING"
  environment {
    name = "prod"
    region = "eu"
  }
}`,
			field:   BlockEnvironment,
			wantMsg: "Resource 'a' environment block must have 'id' attribute (found: name, region)",
		},
		{
			name: "empty environment",
			src: `resource "confluent_connector" "a" {
  status = "RUNNING"
  environment {}
}`,
			field:   BlockEnvironment,
			wantMsg: "(found: none)",
		},
		{
			name: "environment as attribute",
			src: `resource "confluent_connector" "a" {
  status = "RUNNING"
  environment = { id = "e" }
}`,
			field:   BlockEnvironment,
			wantMsg: "missing 'environment { id = ... }' block",
		},
		{
			name: "missing kafka_cluster",
			src: `resource "confluent_connector" "a" {
  status = "RUNNING"
  environment { id = "e" }
}`,
			field:   BlockKafkaCluster,
			wantMsg: "Resource 'a' missing 'kafka_cluster { id = ... }' block",
		},
		{
			name: "kafka_cluster without id",
			src: `resource "confluent_connector" "a" {
  status = "RUNNING"
  environment { id = "e" }
  kafka_cluster {}
}`,
			field:   BlockKafkaCluster,
			wantMsg: "Resource 'a' kafka_cluster block must have 'id' attribute",
		},
		{
			name: "missing config_sensitive",
			src: `resource "confluent_connector" "a" {
  status = "RUNNING"
  environment { id = "e" }
  kafka_cluster { id = "k" }
  config_nonsensitive = {}
}`,
			field:   AttrConfigSensitive,
			wantMsg: "Resource 'a' missing 'config_sensitive' attribute",
		},
		{
			name: "missing config_nonsensitive",
			src: `resource "confluent_connector" "a" {
  status = "RUNNING"
  environment { id = "e" }
  kafka_cluster { id = "k" }
  config_sensitive = {}
}`,
			field:   AttrConfigNonSensitive,
			wantMsg: "Resource 'a' missing 'config_nonsensitive' attribute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStructure(parseTF(t, tt.src))
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)

			var aerr *apperr.Error
			require.True(t, errors.As(err, &aerr))
			assert.Equal(t, apperr.KindStructuralViolation, aerr.Kind)
			assert.Equal(t, tt.field, aerr.Field)
		})
	}
}

func TestValidateStructureKafkaClusterRequired(t *testing.T) {
	without := `resource "confluent_connector" "pg" {
  status = var.status
  environment {
    id = var.environment_id
  }
  config_sensitive    = {}
  config_nonsensitive = {}
}`
	err := ValidateStructure(parseTF(t, without))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka_cluster")

	with := `resource "confluent_connector" "pg" {
  status = var.status
  environment {
    id = var.environment_id
  }
  kafka_cluster {
    id = var.kafka_cluster.id
  }
  config_sensitive    = {}
  config_nonsensitive = {}
}`
	assert.NoError(t, ValidateStructure(parseTF(t, with)))
}

func TestCheckStructureReportsEveryResource(t *testing.T) {
	src := completeResource + `
resource "confluent_connector" "broken" {
  status = var.status
}

resource "confluent_kafka_topic" "ignored" {
  topic_name = "x"
}

module "not_checked" {
  source = "./connector"
}
`
	file := parseTF(t, src)

	checks := CheckStructure(file)
	require.Len(t, checks, 2)
	assert.Equal(t, "ok", checks[0].Resource)
	assert.True(t, checks[0].OK())
	assert.Equal(t, "broken", checks[1].Resource)
	assert.False(t, checks[1].OK())

	err := ValidateStructure(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Resource 'broken' missing 'environment")
}

func TestValidateStructureReturnsFirstFailure(t *testing.T) {
	src := `
resource "confluent_connector" "first" {
  environment { id = "e" }
}

resource "confluent_connector" "second" {
  status = "RUNNING"
}
`
	err := ValidateStructure(parseTF(t, src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Resource 'first' missing 'status' field")
}

func TestCheckStructureNil(t *testing.T) {
	assert.Empty(t, CheckStructure(nil))
	assert.Error(t, ValidateStructure(&hcldoc.File{}))
}
