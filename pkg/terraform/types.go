package terraform

import (
	"github.com/go-playground/validator/v10"

	"github.com/connect-util/connect-util/pkg/catalog"
)

// ResourceType is the first label of the resource declarations this package
// reads and writes.
const ResourceType = "confluent_connector"

// Reserved attribute and key names inside a connector resource.
const (
	AttrStatus             = "status"
	AttrConfigSensitive    = "config_sensitive"
	AttrConfigNonSensitive = "config_nonsensitive"
	BlockEnvironment       = "environment"
	BlockKafkaCluster      = "kafka_cluster"
	BlockLifecycle         = "lifecycle"

	KeyConnectorClass = "connector.class"
)

// Placeholder tokens inserted where the real value is unknown at generation time.
const (
	PlaceholderValue       = "<REPLACE_WITH_ACTUAL_VALUE>"
	PlaceholderTopicName   = "<REPLACE_WITH_TOPIC_NAME>"
	PlaceholderTopicPrefix = "<REPLACE_WITH_TOPIC_PREFIX>"
)

// PlaceholderPrefix starts every placeholder token.
const PlaceholderPrefix = "<REPLACE_WITH_"

// ConnectorConfig is one connector declaration read back from a document.
type ConnectorConfig struct {
	Name            string            `json:"name" yaml:"name"`
	ConnectorClass  string            `json:"connector_class" yaml:"connector_class"`
	Config          map[string]string `json:"config" yaml:"config"`
	SensitiveConfig map[string]string `json:"sensitive_config" yaml:"sensitive_config"`
}

// GenerationOptions are the inputs of a single Generate call.
type GenerationOptions struct {
	// ConnectorName is the user-facing connector name. Dashes are replaced
	// with underscores to form the resource label.
	ConnectorName string `validate:"required"`

	// Connector is the catalog definition to generate from.
	Connector catalog.ConnectorDefinition

	// Topics are the Kafka topics the connector reads or writes.
	Topics []string `validate:"dive,required"`

	// InputDataFormat is used by connectors that declare an input format.
	// Empty selects the connector's default.
	InputDataFormat catalog.DataFormat `validate:"omitempty,oneof=AVRO JSON JSON_SR PROTOBUF PARQUET"`

	// OutputDataFormat sets output.data.format. Empty selects the default.
	OutputDataFormat catalog.DataFormat `validate:"omitempty,oneof=AVRO JSON JSON_SR PROTOBUF PARQUET"`
}

// Validate checks the options before generation.
func (o GenerationOptions) Validate() error {
	return validator.New().Struct(o)
}

func (o GenerationOptions) outputFormat(fallback catalog.DataFormat) catalog.DataFormat {
	if o.OutputDataFormat != "" {
		return o.OutputDataFormat
	}
	return fallback
}

func (o GenerationOptions) inputFormat(fallback catalog.DataFormat) catalog.DataFormat {
	if o.InputDataFormat != "" {
		return o.InputDataFormat
	}
	return fallback
}
