// Package hcldoc provides the configuration document model used by connect-util
// and the parser/printer pair that converts it to and from HCL source text.
//
// # Overview
//
// The model covers only the constructs connector declarations use: blocks with
// labels, attributes, and a closed set of expression variants (strings,
// numbers, booleans, null, arrays, objects, variable references, traversals
// and function calls). Anything else the HCL parser produces is kept as an
// Unsupported expression holding its original source text, so callers can
// pattern-match without losing track of what was skipped.
//
// Callers depend on the Parser and Printer interfaces. The HCL type implements
// both on top of github.com/hashicorp/hcl/v2: hclsyntax reads documents and
// hclwrite builds and formats them.
//
// # Usage Example
//
//	codec := hcldoc.NewHCL()
//
//	file, err := codec.Parse(src, "connector.tf")
//	if err != nil {
//	    return err
//	}
//
//	for _, block := range file.Body.Blocks() {
//	    fmt.Println(block.Type, block.Labels)
//	}
//
//	out, err := codec.Print(file)
//
// # Object Keys
//
// An object key is printed as a bare identifier unless it is marked Quoted.
// Keys containing "." must be quoted, since HCL would otherwise read them as
// a traversal. The Key helper applies that rule.
package hcldoc
