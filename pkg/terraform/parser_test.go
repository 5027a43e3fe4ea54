package terraform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connect-util/connect-util/pkg/apperr"
	"github.com/connect-util/connect-util/pkg/hcldoc"
)

const twoConnectors = `
variable "status" {
  type = string
}

resource "confluent_connector" "orders_cdc" {
  status = var.status
  environment {
    id = var.environment_id
  }
  kafka_cluster {
    id = var.kafka_cluster.id
  }
  config_sensitive = {
    "database.password" = "<REPLACE_WITH_ACTUAL_VALUE>"
  }
  config_nonsensitive = {
    "connector.class"    = "PostgresCdcSourceV2"
    name                 = "orders-cdc"
    "database.port"      = 5432
    "topics"             = join(",", ["a", "b"])
    "tasks.max"          = "1"
    "output.data.format" = local.schema_formats.avro
    "uses.var"           = status
  }
}

resource "confluent_kafka_topic" "orders" {
  topic_name = "orders"
}

module "legacy_sink" {
  source = "./modules/connector"
  config_nonsensitive = {
    "connector.class" = "PostgresSink"
  }
  config_sensitive = {
    "connection.password" = var.db_password
  }
}

resource "confluent_connector" "no_class" {
  config_nonsensitive = {
    name = "no-class"
  }
}

resource "confluent_connector" {
  config_nonsensitive = {
    "connector.class" = "OneLabelOnly"
  }
}
`

func TestParseSource(t *testing.T) {
	configs, err := ParseSource(hcldoc.NewHCL(), []byte(twoConnectors), "main.tf")
	require.NoError(t, err)
	require.Len(t, configs, 2)

	cdc := configs[0]
	assert.Equal(t, "orders_cdc", cdc.Name)
	assert.Equal(t, "PostgresCdcSourceV2", cdc.ConnectorClass)
	assert.Equal(t, map[string]string{
		"connector.class": "PostgresCdcSourceV2",
		"name":            "orders-cdc",
		"database.port":   "5432",
		"topics":          "join(...)",
		"tasks.max":       "1",
		"uses.var":        "var.status",
	}, cdc.Config)
	assert.Equal(t, map[string]string{"database.password": "<REPLACE_WITH_ACTUAL_VALUE>"}, cdc.SensitiveConfig)

	legacy := configs[1]
	assert.Equal(t, "legacy_sink", legacy.Name)
	assert.Equal(t, "PostgresSink", legacy.ConnectorClass)
	assert.Empty(t, legacy.SensitiveConfig, "traversal values are not extractable")
}

func TestParseConnectorsSkipsBlocksWithoutClass(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "no connector.class",
			src: `resource "confluent_connector" "a" {
  config_nonsensitive = { name = "a" }
}`,
		},
		{
			name: "empty connector.class",
			src: `resource "confluent_connector" "a" {
  config_nonsensitive = { "connector.class" = "" }
}`,
		},
		{
			name: "connector.class not extractable",
			src: `resource "confluent_connector" "a" {
  config_nonsensitive = { "connector.class" = var.class_name.value }
}`,
		},
		{
			name: "config_nonsensitive not an object",
			src: `resource "confluent_connector" "a" {
  config_nonsensitive = var.config
}`,
		},
		{
			name: "no config at all",
			src:  `resource "confluent_connector" "a" {}`,
		},
		{
			name: "comments only",
			src:  "# resource \"confluent_connector\" \"a\" {\n#   status = var.status\n# }\n",
		},
		{
			name: "empty document",
			src:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configs, err := ParseSource(hcldoc.NewHCL(), []byte(tt.src), "main.tf")
			require.NoError(t, err)
			assert.Empty(t, configs)
		})
	}
}

func TestParseSourceSyntaxError(t *testing.T) {
	_, err := ParseSource(hcldoc.NewHCL(), []byte(`resource "confluent_connector" "a" {`), "bad.tf")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindParseFailure))
	assert.Contains(t, err.Error(), "Failed to parse Terraform file")
}

func TestParseConnectorsNilFile(t *testing.T) {
	assert.Empty(t, ParseConnectors(nil))
	assert.Empty(t, ParseConnectors(&hcldoc.File{}))
}
