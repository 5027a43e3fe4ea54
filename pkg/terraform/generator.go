package terraform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/connect-util/connect-util/pkg/apperr"
	"github.com/connect-util/connect-util/pkg/catalog"
	"github.com/connect-util/connect-util/pkg/hcldoc"
)

// ignoredChanges are the config_nonsensitive keys that must not trigger a
// redeployment when they drift.
var ignoredChanges = []string{
	"kafka.deployment.type",
	"kafka.max.partition.validation.disable",
	"kafka.max.partition.validation.enable",
	"kafka.max.partition.validation",
}

// Generator renders connector resource declarations.
type Generator struct {
	printer hcldoc.Printer
}

// NewGenerator creates a generator that serializes documents with printer.
func NewGenerator(printer hcldoc.Printer) *Generator {
	return &Generator{printer: printer}
}

// ResourceLabel returns the resource label for a connector name.
func ResourceLabel(connectorName string) string {
	return strings.ReplaceAll(connectorName, "-", "_")
}

// Generate renders the resource declaration for opts. Equal options always
// produce identical text. Options failing Validate produce no text.
func (g *Generator) Generate(opts GenerationOptions) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", apperr.NewGenerationFailure("Invalid generation options", err)
	}
	out, err := g.printer.Print(BuildDocument(opts))
	if err != nil {
		var idErr *hcldoc.InvalidIdentifierError
		if errors.As(err, &idErr) {
			return "", apperr.NewGenerationFailure(fmt.Sprintf("Invalid identifier '%s'", idErr.Text), err).
				WithField(idErr.Text)
		}
		return "", apperr.NewGenerationFailure("Failed to serialize HCL", err)
	}
	return string(out), nil
}

// BuildDocument assembles the document tree for opts without serializing it.
func BuildDocument(opts GenerationOptions) *hcldoc.File {
	file := hcldoc.NewFile()
	resource := file.Body.AppendBlock("resource", ResourceType, ResourceLabel(opts.ConnectorName))
	body := resource.Body

	body.AppendAttribute(AttrStatus, hcldoc.Ref("var.status"))

	env := body.AppendBlock(BlockEnvironment)
	env.Body.AppendAttribute("id", hcldoc.Ref("var.environment_id"))

	cluster := body.AppendBlock(BlockKafkaCluster)
	cluster.Body.AppendAttribute("id", hcldoc.Ref("var.kafka_cluster.id"))

	body.AppendAttribute(AttrConfigSensitive, sensitiveConfig(opts.Connector))
	body.AppendAttribute(AttrConfigNonSensitive, nonSensitiveConfig(opts))

	ignore := make([]hcldoc.Expression, 0, len(ignoredChanges))
	for _, key := range ignoredChanges {
		ignore = append(ignore, hcldoc.IndexRef(AttrConfigNonSensitive, key))
	}
	lifecycle := body.AppendBlock(BlockLifecycle)
	lifecycle.Body.AppendAttribute("ignore_changes", hcldoc.Array{Items: ignore})

	return file
}

func sensitiveConfig(def catalog.ConnectorDefinition) hcldoc.Object {
	obj := hcldoc.Object{}
	for _, name := range def.SensitiveConfigs {
		obj.Set(hcldoc.Key(name), str(PlaceholderValue))
	}
	return obj
}

func nonSensitiveConfig(opts GenerationOptions) hcldoc.Object {
	obj := hcldoc.Object{}
	set := func(key string, value hcldoc.Expression) {
		obj.Set(hcldoc.Key(key), value)
	}

	set(KeyConnectorClass, str(opts.Connector.ConnectorClass))
	set("name", str(opts.ConnectorName))
	set("kafka.auth.mode", str("SERVICE_ACCOUNT"))
	set("kafka.deployment.type", str("DEDICATED"))

	switch {
	case len(opts.Topics) == 0 && opts.Connector.ConnectorType == catalog.Sink:
		set("topics", str(PlaceholderTopicName))
	case len(opts.Topics) == 0:
		set("topic.prefix", str(PlaceholderTopicPrefix))
	default:
		if opts.Connector.Requires("topic.prefix") {
			set("topic.prefix", str(PlaceholderTopicPrefix))
		}
		topics := make([]hcldoc.Expression, 0, len(opts.Topics))
		for _, t := range opts.Topics {
			topics = append(topics, str(t))
		}
		set("topics", hcldoc.FuncCall{
			Name: "join",
			Args: []hcldoc.Expression{str(","), hcldoc.Array{Items: topics}},
		})
	}

	applyOverrides(&obj, opts)

	// Overrides may already have chosen a connector-specific output format.
	if !obj.Has("output.data.format") {
		set("output.data.format", formatRef(opts.outputFormat(catalog.Avro)))
	}
	set("tasks.max", str("1"))

	return obj
}

func str(s string) hcldoc.String {
	return hcldoc.String{Value: s}
}

func formatRef(f catalog.DataFormat) hcldoc.Expression {
	return hcldoc.Ref(f.Reference())
}
