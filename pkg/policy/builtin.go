package policy

// BuiltinPolicies returns the policies enabled by default.
func BuiltinPolicies() []Policy {
	return []Policy{
		hardcodedSecretsPolicy(),
		placeholderPolicy(),
		tasksMaxPolicy(),
		kafkaAuthPolicy(),
	}
}

// hardcodedSecretsPolicy rejects literal secrets in config_sensitive.
func hardcodedSecretsPolicy() Policy {
	return Policy{
		Name:        "hardcoded-secrets",
		Description: "Sensitive connector settings must reference a variable or remain a placeholder",
		Severity:    SeverityError,
		Enabled:     true,
		Tags:        []string{"security"},
		Rego: `package connect.policies.secrets

import rego.v1

deny contains violation if {
	some key, value in input.connector.sensitive_config
	value != ""
	not startswith(value, "<REPLACE_WITH_")
	not startswith(value, "var.")
	violation := {
		"message": sprintf("Connector %s sets sensitive '%s' to a literal value; reference a variable instead", [input.connector.name, key]),
		"severity": "error",
		"key": key,
	}
}`,
	}
}

// placeholderPolicy flags generated placeholders nobody filled in.
func placeholderPolicy() Policy {
	return Policy{
		Name:        "unresolved-placeholders",
		Description: "Generated <REPLACE_WITH_...> placeholders must be replaced before deployment",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"completeness"},
		Rego: `package connect.policies.placeholders

import rego.v1

deny contains violation if {
	some key, value in input.connector.config
	startswith(value, "<REPLACE_WITH_")
	violation := {
		"message": sprintf("Connector %s still has placeholder %s for '%s'", [input.connector.name, value, key]),
		"severity": "warning",
		"key": key,
	}
}

deny contains violation if {
	some key, value in input.connector.sensitive_config
	startswith(value, "<REPLACE_WITH_")
	violation := {
		"message": sprintf("Connector %s still has a placeholder for sensitive '%s'", [input.connector.name, key]),
		"severity": "warning",
		"key": key,
	}
}`,
	}
}

// tasksMaxPolicy checks the task count setting.
func tasksMaxPolicy() Policy {
	return Policy{
		Name:        "tasks-max",
		Description: "tasks.max should be set to a positive integer",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"sizing"},
		Rego: `package connect.policies.tasks

import rego.v1

deny contains violation if {
	not input.connector.config["tasks.max"]
	violation := {
		"message": sprintf("Connector %s does not set tasks.max", [input.connector.name]),
		"severity": "warning",
		"key": "tasks.max",
	}
}

deny contains violation if {
	value := input.connector.config["tasks.max"]
	not regex.match("^[1-9][0-9]*$", value)
	violation := {
		"message": sprintf("Connector %s has tasks.max '%s'; it must be a positive integer", [input.connector.name, value]),
		"severity": "error",
		"key": "tasks.max",
	}
}`,
	}
}

// kafkaAuthPolicy checks the Kafka authentication settings.
func kafkaAuthPolicy() Policy {
	return Policy{
		Name:        "kafka-auth",
		Description: "kafka.auth.mode must be SERVICE_ACCOUNT or KAFKA_API_KEY with its credentials",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"security"},
		Rego: `package connect.policies.kafka_auth

import rego.v1

allowed_modes := {"SERVICE_ACCOUNT", "KAFKA_API_KEY"}

deny contains violation if {
	mode := input.connector.config["kafka.auth.mode"]
	not mode in allowed_modes
	violation := {
		"message": sprintf("Connector %s has unsupported kafka.auth.mode '%s'", [input.connector.name, mode]),
		"severity": "error",
		"key": "kafka.auth.mode",
	}
}

deny contains violation if {
	input.connector.config["kafka.auth.mode"] == "KAFKA_API_KEY"
	some key in ["kafka.api.key", "kafka.api.secret"]
	not input.connector.sensitive_config[key]
	violation := {
		"message": sprintf("Connector %s uses KAFKA_API_KEY authentication without %s in config_sensitive", [input.connector.name, key]),
		"severity": "error",
		"key": key,
	}
}

deny contains violation if {
	input.connector.config["kafka.auth.mode"] == "SERVICE_ACCOUNT"
	not input.connector.config["kafka.service.account.id"]
	violation := {
		"message": sprintf("Connector %s uses SERVICE_ACCOUNT authentication without kafka.service.account.id", [input.connector.name]),
		"severity": "info",
		"key": "kafka.service.account.id",
	}
}`,
	}
}
