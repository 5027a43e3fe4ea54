// Package terraform converts between connector definitions and
// confluent_connector resource declarations.
//
// Generation builds a resource block from a catalog definition and
// GenerationOptions, applies the connector-specific settings table, and prints
// the result with an hcldoc.Printer:
//
//	gen := terraform.NewGenerator(hcldoc.NewHCL())
//	text, err := gen.Generate(terraform.GenerationOptions{
//	    ConnectorName: "orders-cdc",
//	    Connector:     def,
//	    Topics:        []string{"orders"},
//	})
//
// Parsing goes the other way. ParseConnectors walks a parsed document and
// returns one ConnectorConfig per resource (or legacy module) declaration that
// names a connector.class; declarations without one are skipped silently.
// CheckStructure and ValidateStructure verify the shape every connector
// resource must have: status, environment { id }, kafka_cluster { id },
// config_sensitive and config_nonsensitive.
//
// Nothing in this package performs I/O or keeps state between calls.
package terraform
