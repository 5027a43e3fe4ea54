package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// ConnectorType distinguishes connectors that read into Kafka from those that
// write out of it.
type ConnectorType string

const (
	// Source connectors read from an external system into Kafka topics.
	Source ConnectorType = "source"

	// Sink connectors write from Kafka topics into an external system.
	Sink ConnectorType = "sink"
)

// String returns the display form of the connector type.
func (t ConnectorType) String() string {
	switch t {
	case Source:
		return "Source"
	case Sink:
		return "Sink"
	default:
		return string(t)
	}
}

// ParseConnectorType parses "source" or "sink", ignoring case.
func ParseConnectorType(s string) (ConnectorType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "source":
		return Source, nil
	case "sink":
		return Sink, nil
	default:
		return "", fmt.Errorf("invalid connector type %q (expected source or sink)", s)
	}
}

// DataFormat is a record serialization format understood by the deployment tool.
type DataFormat string

const (
	Avro     DataFormat = "AVRO"
	JSON     DataFormat = "JSON"
	JSONSR   DataFormat = "JSON_SR"
	Protobuf DataFormat = "PROTOBUF"
	Parquet  DataFormat = "PARQUET"
)

// FormatsTable is the local value generated documents read data formats from.
const FormatsTable = "local.schema_formats"

// DataFormats returns every supported data format.
func DataFormats() []DataFormat {
	return []DataFormat{Avro, JSON, JSONSR, Protobuf, Parquet}
}

// Token returns the wire token for the format.
func (f DataFormat) Token() string {
	return string(f)
}

// TableKey returns the key of the format in the formats table.
func (f DataFormat) TableKey() string {
	return strings.ToLower(string(f))
}

// Reference returns the expression path that resolves to the format's token,
// for example local.schema_formats.avro.
func (f DataFormat) Reference() string {
	return FormatsTable + "." + f.TableKey()
}

// ParseDataFormat parses a format token, ignoring case. "JSON-SR" is accepted
// as an alias for JSON_SR.
func ParseDataFormat(s string) (DataFormat, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for _, f := range DataFormats() {
		if string(f) == norm {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid data format %q", s)
}

// ConfigField describes one configuration setting of a connector.
type ConfigField struct {
	Name         string   `json:"name" yaml:"name" validate:"required"`
	DisplayName  string   `json:"display_name" yaml:"display_name" validate:"required"`
	Description  string   `json:"description" yaml:"description,omitempty"`
	FieldType    string   `json:"field_type" yaml:"field_type" validate:"oneof=string int long boolean"`
	Required     bool     `json:"required" yaml:"required"`
	DefaultValue *string  `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	ValidValues  []string `json:"valid_values,omitempty" yaml:"valid_values,omitempty" validate:"omitempty,min=1,unique"`
}

// Restricted reports whether the field only accepts values from ValidValues.
func (f ConfigField) Restricted() bool {
	return f.ValidValues != nil
}

// Allows reports whether v is an acceptable value for the field.
func (f ConfigField) Allows(v string) bool {
	return !f.Restricted() || slices.Contains(f.ValidValues, v)
}

// ConnectorDefinition is an immutable catalog entry.
type ConnectorDefinition struct {
	Name             string        `json:"name" yaml:"name" validate:"required"`
	DisplayName      string        `json:"display_name" yaml:"display_name" validate:"required"`
	ConnectorClass   string        `json:"connector_class" yaml:"connector_class" validate:"required"`
	ConnectorType    ConnectorType `json:"connector_type" yaml:"connector_type" validate:"oneof=source sink"`
	Description      string        `json:"description" yaml:"description,omitempty"`
	RequiredConfigs  []ConfigField `json:"required_configs" yaml:"required_configs" validate:"dive"`
	OptionalConfigs  []ConfigField `json:"optional_configs" yaml:"optional_configs" validate:"dive"`
	SensitiveConfigs []string      `json:"sensitive_configs" yaml:"sensitive_configs" validate:"dive,required"`
}

// Field returns the required or optional field with the given name.
func (d ConnectorDefinition) Field(name string) (ConfigField, bool) {
	for _, f := range d.RequiredConfigs {
		if f.Name == name {
			return f, true
		}
	}
	for _, f := range d.OptionalConfigs {
		if f.Name == name {
			return f, true
		}
	}
	return ConfigField{}, false
}

// Requires reports whether name is one of the required fields.
func (d ConnectorDefinition) Requires(name string) bool {
	for _, f := range d.RequiredConfigs {
		if f.Name == name {
			return true
		}
	}
	return false
}

// IsSensitive reports whether name is listed as a sensitive setting.
func (d ConnectorDefinition) IsSensitive(name string) bool {
	return slices.Contains(d.SensitiveConfigs, name)
}

// Clone returns a deep copy of the definition.
func (d ConnectorDefinition) Clone() ConnectorDefinition {
	out := d
	out.RequiredConfigs = cloneFields(d.RequiredConfigs)
	out.OptionalConfigs = cloneFields(d.OptionalConfigs)
	out.SensitiveConfigs = slices.Clone(d.SensitiveConfigs)
	return out
}

func cloneFields(fields []ConfigField) []ConfigField {
	if fields == nil {
		return nil
	}
	out := make([]ConfigField, len(fields))
	for i, f := range fields {
		out[i] = f
		out[i].ValidValues = slices.Clone(f.ValidValues)
		if f.DefaultValue != nil {
			v := *f.DefaultValue
			out[i].DefaultValue = &v
		}
	}
	return out
}

// Summary is the listing view of a connector definition.
type Summary struct {
	Name        string        `json:"name" yaml:"name"`
	DisplayName string        `json:"display_name" yaml:"display_name"`
	Class       string        `json:"connector_class" yaml:"connector_class"`
	Type        ConnectorType `json:"connector_type" yaml:"connector_type"`
	Description string        `json:"description" yaml:"description"`
}
