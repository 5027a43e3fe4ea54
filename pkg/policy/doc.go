// Package policy evaluates Open Policy Agent (OPA) Rego policies against
// connector configurations read back from Terraform documents.
//
// Policies complement the catalog checks: the catalog says which keys a
// connector needs, policies say what an organization accepts in them.
//
// # Usage
//
//	eng, err := policy.NewEngine(logger, true)
//	if err != nil {
//	    return err
//	}
//	if err := eng.LoadPolicies(ctx, []string{"./policies"}); err != nil {
//	    return err
//	}
//	result, err := eng.Evaluate(ctx, "connectors.tf", configs)
//
// # Writing Policies
//
// A policy is a Rego module whose package defines a deny set. Each entry is
// either a message string or an object with message, severity and key:
//
//	package custom.policies.naming
//
//	import rego.v1
//
//	# Connector names must carry a team prefix
//	deny contains violation if {
//	    not startswith(input.connector.config.name, "payments-")
//	    violation := {
//	        "message": sprintf("Connector %s lacks the payments- prefix", [input.connector.name]),
//	        "severity": "error",
//	        "key": "name",
//	    }
//	}
//
// The input document is:
//
//	{
//	  "connector": {"name", "connector_class", "config", "sensitive_config"},
//	  "context":   {"file", "operation", "timestamp"}
//	}
//
// Files ending in .rego are named after the file and default to warning
// severity. Files ending in .json hold a serialized Policy.
//
// # Built-in Policies
//
//  1. hardcoded-secrets - literal values in config_sensitive
//  2. unresolved-placeholders - leftover <REPLACE_WITH_...> tokens
//  3. tasks-max - tasks.max missing or not a positive integer
//  4. kafka-auth - kafka.auth.mode and its credentials
//
// Only error severity makes a Result disallowed.
//
// # Hot Reload
//
//	loader := policy.NewLoader(logger)
//	err = loader.Watch(ctx, paths, func(p []policy.Policy) error {
//	    return eng.ReplacePolicies(ctx, p)
//	})
package policy
