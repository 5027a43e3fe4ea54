// Package validation checks connector documents end to end: parsing,
// per-connector config validation against the catalog, resource shape and
// optional Rego policies. Config failures are collected in a Report instead
// of aborting so every connector in a document gets a verdict.
package validation
