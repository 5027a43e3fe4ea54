package terraform

import (
	"github.com/connect-util/connect-util/pkg/apperr"
	"github.com/connect-util/connect-util/pkg/hcldoc"
)

// ParseDocument parses source text, classifying syntax errors as parse failures.
func ParseDocument(p hcldoc.Parser, src []byte, filename string) (*hcldoc.File, error) {
	file, err := p.Parse(src, filename)
	if err != nil {
		return nil, apperr.NewParseFailure(err)
	}
	return file, nil
}

// ParseConnectors returns one ConnectorConfig per connector declaration in the
// document. Both resource "confluent_connector" "<name>" blocks and legacy
// module "<name>" blocks are read. Blocks whose non-sensitive configuration
// has no connector.class are skipped.
func ParseConnectors(file *hcldoc.File) []ConnectorConfig {
	var configs []ConnectorConfig
	if file == nil || file.Body == nil {
		return configs
	}

	for _, block := range file.Body.Blocks() {
		var name string
		switch {
		case block.Type == "resource" && len(block.Labels) >= 2 && block.Labels[0] == ResourceType:
			name = block.Labels[1]
		case block.Type == "module":
			if len(block.Labels) > 0 {
				name = block.Labels[0]
			}
		default:
			continue
		}

		if cfg, ok := connectorFromBody(name, block.Body); ok {
			configs = append(configs, cfg)
		}
	}

	return configs
}

// ParseSource parses src and returns its connector declarations.
func ParseSource(p hcldoc.Parser, src []byte, filename string) ([]ConnectorConfig, error) {
	file, err := ParseDocument(p, src, filename)
	if err != nil {
		return nil, err
	}
	return ParseConnectors(file), nil
}

func connectorFromBody(name string, body *hcldoc.Body) (ConnectorConfig, bool) {
	cfg := ConnectorConfig{
		Name:            name,
		Config:          map[string]string{},
		SensitiveConfig: map[string]string{},
	}
	if body == nil {
		return cfg, false
	}

	for _, attr := range body.Attributes() {
		switch attr.Name {
		case AttrConfigNonSensitive:
			if m, ok := ExtractObject(attr.Expr); ok {
				for k, v := range m {
					cfg.Config[k] = v
				}
			}
		case AttrConfigSensitive:
			if m, ok := ExtractObject(attr.Expr); ok {
				for k, v := range m {
					cfg.SensitiveConfig[k] = v
				}
			}
		}
	}

	cfg.ConnectorClass = cfg.Config[KeyConnectorClass]
	return cfg, cfg.ConnectorClass != ""
}
