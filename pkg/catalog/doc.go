// Package catalog provides the connector definition catalog and per-connector
// configuration validation.
//
// # Overview
//
// A ConnectorDefinition describes one managed Kafka Connect connector: its
// wire class, whether it is a Source or a Sink, and the settings it accepts.
// Settings are split into required and optional fields; some fields restrict
// their value to a fixed set, and some are sensitive and must never appear in
// the non-sensitive configuration map of a generated resource.
//
// # Definitions
//
// The built-in definitions live in CUE files embedded in the binary
// (definitions/*.cue). They are unified with a schema (definitions/schema.cue)
// that fills defaults such as display_name and marks required fields, then
// decoded and validated with go-playground/validator struct tags:
//
//	sources: [
//	    {
//	        name:        "PostgresCdcSourceV2"
//	        description: "Capture changes from PostgreSQL"
//	        required_configs: [
//	            {name: "database.hostname", description: "PostgreSQL host"},
//	        ]
//	        optional_configs: []
//	        sensitive_configs: ["database.password"]
//	    },
//	]
//
// Extension files with the same shape can be passed to Load to add connectors
// that are not built in. Names must stay unique across all files.
//
// # Usage Example
//
//	cat := catalog.Default()
//
//	def, ok := cat.FindByName("PostgresSink")
//	if !ok {
//	    return apperr.NewUnknownConnector("PostgresSink")
//	}
//
//	if err := def.ValidateConfig(nonSensitive, sensitive); err != nil {
//	    fmt.Println(err)
//	}
//
// The catalog is never mutated after construction. Every accessor returns
// copies, so callers may modify what they receive.
package catalog
