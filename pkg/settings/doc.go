// Package settings loads the CLI configuration.
//
// Precedence, lowest first:
//
//  1. built-in defaults
//  2. connect-util.yaml in the working directory, or the file given by --config
//  3. CONNECT_UTIL_* environment variables, e.g. CONNECT_UTIL_TRACING_EXPORTER
//  4. the same variables set in a .env file, which overwrite the environment
//
// Command-line flags are applied on top by the CLI.
package settings
