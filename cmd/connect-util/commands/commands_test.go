package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/connect-util/connect-util/pkg/catalog"
	"github.com/connect-util/connect-util/pkg/prompt"
)

const leakySink = `
resource "confluent_connector" "leaky" {
  status = var.status
  environment {
    id = var.environment_id
  }
  kafka_cluster {
    id = var.kafka_cluster.id
  }
  config_sensitive = {
    "connection.password" = "hunter2"
  }
  config_nonsensitive = {
    "connector.class"          = "PostgresSink"
    "name"                     = "leaky"
    "kafka.auth.mode"          = "SERVICE_ACCOUNT"
    "kafka.service.account.id" = "sa-1"
    "tasks.max"                = "1"
    "connection.host"          = "db"
    "connection.port"          = "5432"
    "connection.user"          = "app"
    "db.name"                  = "orders"
  }
}
`

func execute(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	if a == nil {
		a = &app{}
	}
	a.version = "test"
	if a.logOutput == nil {
		a.logOutput = io.Discard
	}

	cmd := newRootCommand(a, "abc123", "today")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), ".env")}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGenerateNonInteractive(t *testing.T) {
	out, err := execute(t, nil, "generate", "--non-interactive", "-n", "demo-src")
	require.NoError(t, err)

	first := catalog.Default().ListByType(catalog.Source)[0]
	assert.Contains(t, out, `resource "confluent_connector" "demo_src" {`)
	assert.Contains(t, out, `"`+first.ConnectorClass+`"`)
	assert.Contains(t, out, `"<REPLACE_WITH_TOPIC_PREFIX>"`)
}

func TestGenerateNonInteractiveRequiresName(t *testing.T) {
	_, err := execute(t, nil, "generate", "--non-interactive")
	require.Error(t, err)
	assert.Equal(t, "Connector name is required for non-interactive mode", err.Error())
}

func TestGenerateToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cdc.tf")

	out, err := execute(t, nil, "generate", "--non-interactive",
		"-n", "orders-cdc", "--connector", "PostgresCdcSourceV2",
		"--topics", "orders,payments", "--output-format", "json_sr", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Terraform configuration written to: "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	flat := strings.Join(strings.Fields(string(data)), " ")
	assert.Contains(t, flat, `topics = join(",", ["orders", "payments"])`)
	assert.Contains(t, flat, `local.schema_formats.json_sr`)
}

func TestGenerateInteractive(t *testing.T) {
	p := prompt.NewScriptedPrompter("orders-sink", "Sink", "PostgreSQL Sink", "orders")
	out, err := execute(t, &app{prompter: p}, "generate")
	require.NoError(t, err)

	assert.Contains(t, out, `resource "confluent_connector" "orders_sink" {`)
	assert.Contains(t, out, `"PostgresSink"`)
	assert.Equal(t, 0, p.Remaining())
}

func TestGenerateInputErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"unknown connector", []string{"--connector", "Nope"}, "Unknown connector: Nope"},
		{"bad type", []string{"--type", "both"}, "invalid --type"},
		{"bad output format", []string{"--output-format", "xml"}, `invalid data format "xml"`},
		{"bad input format", []string{"--input-format", "csv"}, `invalid data format "csv"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"generate", "--non-interactive", "-n", "x"}, tt.args...)
			_, err := execute(t, nil, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestValidateGeneratedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pg.tf")
	_, err := execute(t, nil, "generate", "--non-interactive", "-n", "pg-sink", "--connector", "PostgresSink", "-o", path)
	require.NoError(t, err)

	out, err := execute(t, nil, "validate", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 connector configuration(s) to validate")
	assert.Contains(t, out, "Configuration is valid!")
	assert.Contains(t, out, "Connector: PostgreSQL Sink")
	assert.Contains(t, out, "pg_sink")
	assert.Contains(t, out, "Policies (4 evaluated):")
	assert.Contains(t, out, "[warning] unresolved-placeholders")
}

func TestValidateJSON(t *testing.T) {
	path := writeTemp(t, "leaky.tf", leakySink)

	out, err := execute(t, nil, "validate", "-c", path, "--json", "--no-builtin-policies")
	require.NoError(t, err)

	var report struct {
		File       string `json:"file"`
		Connectors []struct {
			Name  string `json:"name"`
			Valid bool   `json:"valid"`
		} `json:"connectors"`
		Policy struct {
			Allowed bool `json:"allowed"`
		} `json:"policy"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, path, report.File)
	require.Len(t, report.Connectors, 1)
	assert.Equal(t, "leaky", report.Connectors[0].Name)
	assert.True(t, report.Connectors[0].Valid)
	assert.True(t, report.Policy.Allowed)
}

func TestValidateOutcomes(t *testing.T) {
	denyAll := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(denyAll, "deny.rego"), []byte(`package custom.deny_all

import rego.v1

deny contains violation if {
	violation := {"message": "nothing may pass", "severity": "error"}
}
`), 0o644))

	optIn := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(optIn, "opt-in.json"), []byte(`{
  "name": "opt-in-deny",
  "severity": "error",
  "enabled": false,
  "rego": "package custom.opt_in\n\nimport rego.v1\n\ndeny contains \"opted in\" if { true }\n"
}`), 0o644))

	leaky := writeTemp(t, "leaky.tf", leakySink)
	missingStatus := writeTemp(t, "broken.tf", strings.Replace(leakySink, "status = var.status", "", 1))
	commented := writeTemp(t, "off.tf", "# resource \"confluent_connector\" \"a\" {\n# }\n")
	invalidConfig := writeTemp(t, "invalid.tf", strings.Replace(leakySink, `"db.name"                  = "orders"`, "", 1))

	tests := []struct {
		name    string
		args    []string
		wantErr string
		wantOut string
	}{
		{"missing file", []string{"-c", "/nonexistent/x.tf"}, "Configuration file not found: /nonexistent/x.tf", ""},
		{"commented out", []string{"-c", commented}, "", "File is commented out - no validation needed"},
		{"blocking builtin policy", []string{"-c", leaky}, "policy check failed: 1 blocking violation(s)", "[error] hardcoded-secrets"},
		{"builtins disabled", []string{"-c", leaky, "--no-builtin-policies"}, "", "Policies (0 evaluated):"},
		{"custom policy dir", []string{"-c", leaky, "--no-builtin-policies", "--policy", denyAll}, "policy check failed", "nothing may pass"},
		{"structural violation", []string{"-c", missingStatus, "--no-builtin-policies"}, "Resource 'leaky' missing 'status' field", "Resource structure:"},
		{"invalid config does not fail", []string{"-c", invalidConfig, "--no-builtin-policies"}, "", "Missing required configuration: db.name"},
		{"disabled builtin policy", []string{"-c", leaky, "--disable-policy", "hardcoded-secrets"}, "", "Policies (3 evaluated):"},
		{"unknown policy toggle", []string{"-c", leaky, "--disable-policy", "nope"}, "policy not found: nope", ""},
		{"disabled file policy", []string{"-c", leaky, "--no-builtin-policies", "--policy", optIn}, "", "Policies (0 evaluated):"},
		{"enabled file policy", []string{"-c", leaky, "--no-builtin-policies", "--policy", optIn, "--enable-policy", "opt-in-deny"}, "policy check failed", "opted in"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, nil, append([]string{"validate"}, tt.args...)...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			if tt.wantOut != "" {
				assert.Contains(t, out, tt.wantOut)
			}
		})
	}
}

func TestValidateRequiresConfigFile(t *testing.T) {
	_, err := execute(t, nil, "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "config-file" not set`)
}

func TestSettingsFileApplies(t *testing.T) {
	dir := t.TempDir()
	textfile := filepath.Join(dir, "metrics.prom")
	cfg := writeTemp(t, "settings.yaml", "policy:\n  builtin: false\nmetrics:\n  textfile: "+textfile+"\n")
	leaky := writeTemp(t, "leaky.tf", leakySink)

	_, err := execute(t, nil, "--config", cfg, "validate", "-c", leaky)
	require.NoError(t, err, "built-in policies are disabled by the settings file")

	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `connect_util_commands_total{command="validate",status="success"} 1`)
	assert.Contains(t, string(data), `connect_util_connectors_validated_total{result="valid"} 1`)
}

func TestListPlugins(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		out, err := execute(t, nil, "list-plugins")
		require.NoError(t, err)
		assert.Contains(t, out, "Available connector plugins:")
		assert.Contains(t, out, "  - PostgreSQL Sink (Sink)")
		assert.Contains(t, out, "Class: PostgresSink")
	})

	t.Run("invalid filter", func(t *testing.T) {
		out, err := execute(t, nil, "list-plugins", "-t", "both")
		require.NoError(t, err)
		assert.Contains(t, out, "Invalid filter type. Use 'source' or 'sink'")
		assert.NotContains(t, out, "Available connector plugins:")
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, nil, "list-plugins", "-o", "json")
		require.NoError(t, err)
		var rows []catalog.Summary
		require.NoError(t, json.Unmarshal([]byte(out), &rows))
		assert.Len(t, rows, catalog.Default().Len())
	})

	t.Run("yaml sinks", func(t *testing.T) {
		out, err := execute(t, nil, "list-plugins", "-t", "SINK", "-o", "yaml")
		require.NoError(t, err)
		var rows []catalog.Summary
		require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
		require.Len(t, rows, len(catalog.Default().ListByType(catalog.Sink)))
		for _, r := range rows {
			assert.Equal(t, catalog.Sink, r.Type)
		}
	})

	t.Run("bad output", func(t *testing.T) {
		_, err := execute(t, nil, "list-plugins", "-o", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported output format")
	})
}

func TestListPolicies(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		out, err := execute(t, nil, "list-policies", "--disable-policy", "tasks-max")
		require.NoError(t, err)
		assert.Contains(t, out, "  - hardcoded-secrets [error] enabled")
		assert.Contains(t, out, "  - tasks-max [warning] disabled")
	})

	t.Run("single policy", func(t *testing.T) {
		out, err := execute(t, nil, "list-policies", "hardcoded-secrets")
		require.NoError(t, err)
		assert.Contains(t, out, "hardcoded-secrets [error] enabled")
		assert.Contains(t, out, "package connect.policies.secrets")
	})

	t.Run("unknown policy", func(t *testing.T) {
		_, err := execute(t, nil, "list-policies", "nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "policy not found: nope")
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, nil, "list-policies", "-o", "json")
		require.NoError(t, err)

		var policies []struct {
			Name    string `json:"name"`
			Enabled bool   `json:"enabled"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &policies))
		require.Len(t, policies, 4)
		assert.Equal(t, "hardcoded-secrets", policies[0].Name)
	})
}

func TestGenerateLogsConnector(t *testing.T) {
	t.Setenv("CONNECT_UTIL_LOG_FORMAT", "json")

	var logs bytes.Buffer
	_, err := execute(t, &app{logOutput: &logs}, "-v", "generate", "--non-interactive", "-n", "demo-src", "--topics", "a,b")
	require.NoError(t, err)

	assert.Contains(t, logs.String(), `"connector":"demo-src"`)
	assert.Contains(t, logs.String(), "Generated connector resource with 2 topic(s)")
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tf")

	out, err := execute(t, nil, "init", "--dir", dir)
	require.NoError(t, err)
	for _, name := range []string{"variables.tf", "locals.tf", "connect-util.yaml"} {
		assert.FileExists(t, filepath.Join(dir, name))
		assert.Contains(t, out, "Created "+filepath.Join(dir, name))
	}

	out, err = execute(t, nil, "init", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Skipped existing file: "+filepath.Join(dir, "variables.tf"))
	assert.NotContains(t, out, "Created")

	out, err = execute(t, nil, "init", "--dir", dir, "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Created "+filepath.Join(dir, "locals.tf"))

	_, err = execute(t, nil, "--config", filepath.Join(dir, "connect-util.yaml"), "list-plugins")
	require.NoError(t, err, "the written settings file loads")
}

func TestWatchFile(t *testing.T) {
	path := writeTemp(t, "watched.tf", "# v1\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, zerolog.Nop(), path, func() { calls.Add(1) })
	}()

	// Writes are spaced wider than the debounce delay so each one can fire.
	deadline := time.After(10 * time.Second)
	tick := time.NewTicker(4 * watchDelay)
	defer tick.Stop()
	for calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("onChange was not called")
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, []byte("# v2\n"), 0o644))
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watchFile did not stop")
	}
}
