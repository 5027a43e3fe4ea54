package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/connect-util/connect-util/pkg/apperr"
	"github.com/connect-util/connect-util/pkg/catalog"
	"github.com/connect-util/connect-util/pkg/terraform"
)

// Prompt messages shown by the generate wizard.
const (
	MsgConnectorName = "Enter connector name"
	MsgConnectorType = "Select connector type"
	MsgConnector     = "Select connector (type to search)"
	MsgTopics        = "Topics (comma-separated, leave empty to fill in later)"
	typeOptionSource = "Source"
	typeOptionSink   = "Sink"
)

// Preset holds values already supplied on the command line. The wizard only
// prompts for what is missing.
type Preset struct {
	Name        string
	Type        catalog.ConnectorType
	ConnectorID string

	// Topics is used as is when TopicsSet, even if empty.
	Topics    []string
	TopicsSet bool

	InputFormat  catalog.DataFormat
	OutputFormat catalog.DataFormat
}

// Wizard gathers GenerationOptions interactively.
type Wizard struct {
	prompter Prompter
	catalog  *catalog.Catalog
}

// NewWizard creates a wizard over cat.
func NewWizard(p Prompter, cat *catalog.Catalog) *Wizard {
	return &Wizard{prompter: p, catalog: cat}
}

// Run prompts for the connector name, type, connector and topics in that
// order, skipping anything preset supplies.
func (w *Wizard) Run(ctx context.Context, preset Preset) (terraform.GenerationOptions, error) {
	opts := terraform.GenerationOptions{
		ConnectorName:    strings.TrimSpace(preset.Name),
		InputDataFormat:  preset.InputFormat,
		OutputDataFormat: preset.OutputFormat,
	}

	if opts.ConnectorName == "" {
		name, err := w.prompter.Input(ctx, MsgConnectorName, "")
		if err != nil {
			return opts, wrapPromptErr("Failed to get connector name", err)
		}
		if name = strings.TrimSpace(name); name == "" {
			return opts, apperr.New(apperr.KindConfig, "Connector name must not be empty")
		}
		opts.ConnectorName = name
	}

	def, err := w.connector(ctx, preset)
	if err != nil {
		return opts, err
	}
	opts.Connector = def

	if preset.TopicsSet {
		opts.Topics = preset.Topics
	} else {
		raw, err := w.prompter.Input(ctx, MsgTopics, "")
		if err != nil {
			return opts, wrapPromptErr("Failed to get topics", err)
		}
		opts.Topics = SplitList(raw)
	}

	return opts, nil
}

func (w *Wizard) connector(ctx context.Context, preset Preset) (catalog.ConnectorDefinition, error) {
	if preset.ConnectorID != "" {
		def, ok := w.catalog.FindByName(preset.ConnectorID)
		if !ok {
			return def, apperr.NewUnknownConnector(preset.ConnectorID)
		}
		return def, nil
	}

	connectorType := preset.Type
	if connectorType == "" {
		i, err := w.prompter.Select(ctx, MsgConnectorType, []string{typeOptionSource, typeOptionSink})
		if err != nil {
			return catalog.ConnectorDefinition{}, wrapPromptErr("Failed to select connector type", err)
		}
		switch i {
		case 0:
			connectorType = catalog.Source
		case 1:
			connectorType = catalog.Sink
		default:
			return catalog.ConnectorDefinition{}, apperr.New(apperr.KindConfig,
				fmt.Sprintf("Connector type selection %d out of range", i))
		}
	}

	defs := w.catalog.ListByType(connectorType)
	if len(defs) == 0 {
		return catalog.ConnectorDefinition{}, apperr.New(apperr.KindConfig, "No connectors available")
	}
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.DisplayName
	}

	i, err := w.prompter.Select(ctx, MsgConnector, names)
	if err != nil {
		return catalog.ConnectorDefinition{}, wrapPromptErr("Failed to select connector", err)
	}
	if i < 0 || i >= len(defs) {
		return catalog.ConnectorDefinition{}, apperr.New(apperr.KindConfig,
			fmt.Sprintf("Connector selection %d out of range (%d connectors)", i, len(defs)))
	}
	return defs[i], nil
}

func wrapPromptErr(msg string, err error) error {
	return apperr.Wrap(apperr.KindConfig, msg, err)
}

// SplitList splits a comma-separated list, trimming blanks and dropping
// empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
