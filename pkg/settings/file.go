package settings

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/connect-util/connect-util/pkg/apperr"
)

var keyComments = map[string]string{
	"log_level":  "trace, debug, info, warn or error",
	"log_format": "console or json",
	"output_dir": "directory for generated files given by relative path",
	"tracing":    "span exporter: none, stdout or otlp (otlp needs an endpoint)",
	"metrics":    "write Prometheus metrics to this file after each command",
	"policy":     "Rego policy files or directories evaluated by validate",
	"generate":   "output.data.format used by generate instead of each connector's default",
}

// Marshal renders s as commented YAML.
func Marshal(s Settings) ([]byte, error) {
	var doc yaml.Node
	if err := doc.Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	doc.HeadComment = "connect-util configuration. Every key can be overridden with a\n" +
		EnvPrefix + "_<KEY> environment variable, nested keys joined by '_'."

	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i]
		if c, ok := keyComments[key.Value]; ok {
			key.HeadComment = c
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDefault writes the default settings to path. An existing file is only
// replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return apperr.New(apperr.KindConfig, fmt.Sprintf("%s already exists", path))
		}
	}

	data, err := Marshal(Defaults())
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperr.Wrap(apperr.KindIO, "failed to create directory "+dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperr.Wrap(apperr.KindIO, "failed to write "+path, err)
	}
	return nil
}
