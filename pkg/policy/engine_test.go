package policy

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/connect-util/connect-util/pkg/terraform"
)

func newTestEngine(t *testing.T, builtins bool) *Engine {
	t.Helper()
	eng, err := NewEngine(zerolog.Nop(), builtins)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return eng
}

func generatedConfig() terraform.ConnectorConfig {
	return terraform.ConnectorConfig{
		Name:           "orders_sink",
		ConnectorClass: "PostgresSink",
		Config: map[string]string{
			"connector.class":          "PostgresSink",
			"name":                     "orders-sink",
			"kafka.auth.mode":          "SERVICE_ACCOUNT",
			"kafka.service.account.id": "sa-123",
			"connection.host":          "db.internal",
			"tasks.max":                "1",
		},
		SensitiveConfig: map[string]string{
			"connection.password": "var.db_password",
		},
	}
}

func policiesHit(violations []Violation) map[string]int {
	hits := make(map[string]int)
	for _, v := range violations {
		hits[v.Policy]++
	}
	return hits
}

func TestNewEngine(t *testing.T) {
	eng := newTestEngine(t, true)

	policies := eng.ListPolicies()
	expected := []string{"hardcoded-secrets", "kafka-auth", "tasks-max", "unresolved-placeholders"}
	if len(policies) != len(expected) {
		t.Fatalf("Expected %d built-in policies, got %d", len(expected), len(policies))
	}
	for i, name := range expected {
		if policies[i].Name != name {
			t.Errorf("Expected policy %d to be %s, got %s", i, name, policies[i].Name)
		}
	}

	if empty := newTestEngine(t, false); len(empty.ListPolicies()) != 0 {
		t.Error("Engine without built-ins should have no policies")
	}
}

func TestEvaluate_BuiltinPolicies(t *testing.T) {
	eng := newTestEngine(t, true)

	tests := []struct {
		name          string
		mutate        func(*terraform.ConnectorConfig)
		expectAllowed bool
		expectPolicy  string
	}{
		{
			name:          "clean config",
			mutate:        func(*terraform.ConnectorConfig) {},
			expectAllowed: true,
		},
		{
			name: "literal secret",
			mutate: func(c *terraform.ConnectorConfig) {
				c.SensitiveConfig["connection.password"] = "hunter2"
			},
			expectAllowed: false,
			expectPolicy:  "hardcoded-secrets",
		},
		{
			name: "placeholder secret",
			mutate: func(c *terraform.ConnectorConfig) {
				c.SensitiveConfig["connection.password"] = terraform.PlaceholderValue
			},
			expectAllowed: true,
			expectPolicy:  "unresolved-placeholders",
		},
		{
			name: "placeholder config",
			mutate: func(c *terraform.ConnectorConfig) {
				c.Config["connection.host"] = "<REPLACE_WITH_DB_HOST>"
			},
			expectAllowed: true,
			expectPolicy:  "unresolved-placeholders",
		},
		{
			name: "missing tasks.max",
			mutate: func(c *terraform.ConnectorConfig) {
				delete(c.Config, "tasks.max")
			},
			expectAllowed: true,
			expectPolicy:  "tasks-max",
		},
		{
			name: "zero tasks.max",
			mutate: func(c *terraform.ConnectorConfig) {
				c.Config["tasks.max"] = "0"
			},
			expectAllowed: false,
			expectPolicy:  "tasks-max",
		},
		{
			name: "unknown auth mode",
			mutate: func(c *terraform.ConnectorConfig) {
				c.Config["kafka.auth.mode"] = "PLAINTEXT"
			},
			expectAllowed: false,
			expectPolicy:  "kafka-auth",
		},
		{
			name: "api key without credentials",
			mutate: func(c *terraform.ConnectorConfig) {
				c.Config["kafka.auth.mode"] = "KAFKA_API_KEY"
			},
			expectAllowed: false,
			expectPolicy:  "kafka-auth",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := generatedConfig()
			tt.mutate(&cfg)

			result, err := eng.Evaluate(context.Background(), "main.tf", []terraform.ConnectorConfig{cfg})
			if err != nil {
				t.Fatalf("Evaluation failed: %v", err)
			}

			if result.Allowed != tt.expectAllowed {
				t.Errorf("Expected allowed=%v, got %v. Violations: %+v", tt.expectAllowed, result.Allowed, result.Violations)
			}

			hits := policiesHit(result.Violations)
			if tt.expectPolicy == "" && len(result.Violations) > 0 {
				t.Errorf("Expected no violations, got %+v", result.Violations)
			}
			if tt.expectPolicy != "" && hits[tt.expectPolicy] == 0 {
				t.Errorf("Expected a %s violation, got %+v", tt.expectPolicy, result.Violations)
			}
			for _, v := range result.Violations {
				if v.Resource != "orders_sink" {
					t.Errorf("Expected resource orders_sink, got %s", v.Resource)
				}
			}
		})
	}
}

func TestEvaluate_ViolationFields(t *testing.T) {
	eng := newTestEngine(t, true)

	cfg := generatedConfig()
	cfg.SensitiveConfig["connection.password"] = "hunter2"

	result, err := eng.Evaluate(context.Background(), "main.tf", []terraform.ConnectorConfig{cfg})
	if err != nil {
		t.Fatalf("Evaluation failed: %v", err)
	}
	if len(result.Violations) != 1 {
		t.Fatalf("Expected 1 violation, got %+v", result.Violations)
	}

	v := result.Violations[0]
	if v.Severity != SeverityError {
		t.Errorf("Expected error severity, got %s", v.Severity)
	}
	if v.Key != "connection.password" {
		t.Errorf("Expected key connection.password, got %s", v.Key)
	}
	if !strings.Contains(v.Message, "orders_sink") {
		t.Errorf("Message should name the connector: %s", v.Message)
	}
	if result.Count(SeverityError) != 1 || result.Count(SeverityWarning) != 0 {
		t.Errorf("Unexpected severity counts in %+v", result.Violations)
	}
}

func TestEnableDisablePolicy(t *testing.T) {
	eng := newTestEngine(t, true)

	if err := eng.DisablePolicy("hardcoded-secrets"); err != nil {
		t.Fatalf("Failed to disable policy: %v", err)
	}

	p, err := eng.GetPolicy("hardcoded-secrets")
	if err != nil {
		t.Fatalf("Failed to get policy: %v", err)
	}
	if p.Enabled {
		t.Error("Policy should be disabled")
	}

	cfg := generatedConfig()
	cfg.SensitiveConfig["connection.password"] = "hunter2"

	result, err := eng.Evaluate(context.Background(), "main.tf", []terraform.ConnectorConfig{cfg})
	if err != nil {
		t.Fatalf("Evaluation failed: %v", err)
	}
	if !result.Allowed {
		t.Errorf("Disabled policy should not block: %+v", result.Violations)
	}
	for _, name := range result.EvaluatedPolicies {
		if name == "hardcoded-secrets" {
			t.Error("Disabled policy should not be evaluated")
		}
	}

	if err := eng.EnablePolicy("hardcoded-secrets"); err != nil {
		t.Fatalf("Failed to enable policy: %v", err)
	}
	result, err = eng.Evaluate(context.Background(), "main.tf", []terraform.ConnectorConfig{cfg})
	if err != nil {
		t.Fatalf("Evaluation failed: %v", err)
	}
	if result.Allowed {
		t.Error("Re-enabled policy should block")
	}

	if err := eng.EnablePolicy("missing"); err == nil {
		t.Error("Expected error for unknown policy")
	}
}

func TestAddPolicies(t *testing.T) {
	eng := newTestEngine(t, false)

	custom := Policy{
		Name:    "team-prefix",
		Enabled: true,
		Rego: `package custom.naming

import rego.v1

deny contains msg if {
	not startswith(input.connector.config.name, "payments-")
	msg := sprintf("Connector %s lacks the payments- prefix", [input.connector.name])
}`,
	}
	if err := eng.AddPolicies(context.Background(), custom); err != nil {
		t.Fatalf("Failed to add policy: %v", err)
	}

	result, err := eng.Evaluate(context.Background(), "", []terraform.ConnectorConfig{generatedConfig()})
	if err != nil {
		t.Fatalf("Evaluation failed: %v", err)
	}
	if len(result.Violations) != 1 {
		t.Fatalf("Expected 1 violation, got %+v", result.Violations)
	}
	if result.Violations[0].Severity != SeverityWarning {
		t.Errorf("String entries take the policy default severity, got %s", result.Violations[0].Severity)
	}
	if !result.Allowed {
		t.Error("Warnings should not block")
	}

	broken := Policy{Name: "broken", Enabled: true, Rego: "package broken\n\ndeny contains"}
	if err := eng.AddPolicies(context.Background(), broken); err == nil {
		t.Error("Expected compile error")
	}
	if _, err := eng.GetPolicy("broken"); err == nil {
		t.Error("Broken policy should not be registered")
	}
}

func TestReplacePoliciesKeepsBuiltins(t *testing.T) {
	eng := newTestEngine(t, true)
	ctx := context.Background()

	first := Policy{Name: "first", Enabled: true, Rego: "package first\n\nimport rego.v1\n\ndeny contains \"x\" if { false }"}
	second := Policy{Name: "second", Enabled: true, Rego: "package second\n\nimport rego.v1\n\ndeny contains \"y\" if { false }"}

	if err := eng.AddPolicies(ctx, first); err != nil {
		t.Fatalf("Failed to add policy: %v", err)
	}
	if err := eng.ReplacePolicies(ctx, []Policy{second}); err != nil {
		t.Fatalf("Failed to replace policies: %v", err)
	}

	if _, err := eng.GetPolicy("first"); err == nil {
		t.Error("Replaced policy should be gone")
	}
	if _, err := eng.GetPolicy("second"); err != nil {
		t.Error("New policy should be registered")
	}
	if _, err := eng.GetPolicy("hardcoded-secrets"); err != nil {
		t.Error("Built-in policies should survive a replace")
	}
}

func TestEvaluate_NoConnectors(t *testing.T) {
	eng := newTestEngine(t, true)

	result, err := eng.Evaluate(context.Background(), "main.tf", nil)
	if err != nil {
		t.Fatalf("Evaluation failed: %v", err)
	}
	if !result.Allowed || len(result.Violations) != 0 {
		t.Errorf("Expected empty allowed result, got %+v", result)
	}
	if len(result.EvaluatedPolicies) != 4 {
		t.Errorf("Expected 4 evaluated policies, got %v", result.EvaluatedPolicies)
	}
}

func TestEvaluate_Cancelled(t *testing.T) {
	eng := newTestEngine(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := eng.Evaluate(ctx, "main.tf", []terraform.ConnectorConfig{generatedConfig()}); err == nil {
		t.Error("Expected context error")
	}
}
