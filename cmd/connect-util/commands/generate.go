package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/connect-util/connect-util/pkg/apperr"
	"github.com/connect-util/connect-util/pkg/catalog"
	"github.com/connect-util/connect-util/pkg/hcldoc"
	"github.com/connect-util/connect-util/pkg/prompt"
	"github.com/connect-util/connect-util/pkg/telemetry"
	"github.com/connect-util/connect-util/pkg/terraform"
)

type generateOptions struct {
	name           string
	output         string
	connector      string
	connectorType  string
	topics         []string
	inputFormat    string
	outputFormat   string
	nonInteractive bool
}

func newGenerateCommand(a *app) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a Terraform connector resource",
		Long: `Generate a confluent_connector resource for a catalog connector.

Values not given as flags are asked for interactively. With --non-interactive
the connector name is required and the connector defaults to the first source
in the catalog.`,
		Example: `  # Interactive
  connect-util generate

  # Fully specified
  connect-util generate -n orders-cdc --connector PostgresCdcSourceV2 --topics orders -o orders.tf

  # Scripted, first source connector
  connect-util generate --non-interactive -n demo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, _ zerolog.Logger) error {
				return a.generate(ctx, cmd, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "connector name")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.connector, "connector", "", "catalog connector name, see list-plugins")
	cmd.Flags().StringVar(&opts.connectorType, "type", "", "connector type: source or sink")
	cmd.Flags().StringSliceVar(&opts.topics, "topics", nil, "comma-separated Kafka topics")
	cmd.Flags().StringVar(&opts.inputFormat, "input-format", "", "input data format (AVRO, JSON, JSON_SR, PROTOBUF, PARQUET)")
	cmd.Flags().StringVar(&opts.outputFormat, "output-format", "", "output data format (AVRO, JSON, JSON_SR, PROTOBUF, PARQUET)")
	cmd.Flags().BoolVar(&opts.nonInteractive, "non-interactive", false, "never prompt")

	return cmd
}

func (a *app) generate(ctx context.Context, cmd *cobra.Command, opts generateOptions) error {
	preset := prompt.Preset{
		Name:        opts.name,
		ConnectorID: opts.connector,
		Topics:      prompt.SplitList(strings.Join(opts.topics, ",")),
		TopicsSet:   cmd.Flags().Changed("topics"),
	}

	if opts.connectorType != "" {
		t, err := catalog.ParseConnectorType(opts.connectorType)
		if err != nil {
			return apperr.Wrap(apperr.KindConfig, "invalid --type", err)
		}
		preset.Type = t
	}

	var err error
	if preset.InputFormat, err = parseFormat(opts.inputFormat, ""); err != nil {
		return err
	}
	if preset.OutputFormat, err = parseFormat(opts.outputFormat, a.settings.DataFormat()); err != nil {
		return err
	}

	var genOpts terraform.GenerationOptions
	if opts.nonInteractive {
		genOpts, err = a.nonInteractiveOptions(preset)
	} else {
		genOpts, err = prompt.NewWizard(a.prompterFor(), a.catalog).Run(ctx, preset)
	}
	if err != nil {
		return err
	}

	op := telemetry.StartOperation(ctx, "generate.connector",
		telemetry.AttrConnectorName.String(genOpts.ConnectorName),
		telemetry.AttrConnectorClass.String(genOpts.Connector.ConnectorClass),
	)
	doc, err := terraform.NewGenerator(hcldoc.NewHCL()).Generate(genOpts)
	op.End(err)
	if err != nil {
		return err
	}
	a.tel.Metrics.RecordGenerated(genOpts.Connector.ConnectorClass)

	op.Logger.WithConnector(genOpts.ConnectorName, genOpts.Connector.ConnectorClass).
		Infof("Generated connector resource with %d topic(s)", len(genOpts.Topics))

	if opts.output == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), doc)
		return err
	}

	path := opts.output
	if !filepath.IsAbs(path) && a.settings.OutputDir != "" {
		path = filepath.Join(a.settings.OutputDir, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperr.Wrap(apperr.KindIO, "failed to create output directory", err)
	}
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return apperr.Wrap(apperr.KindIO, "failed to write "+path, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderOK("Terraform configuration written to: "+path))
	return nil
}

func (a *app) nonInteractiveOptions(preset prompt.Preset) (terraform.GenerationOptions, error) {
	if preset.Name == "" {
		return terraform.GenerationOptions{}, apperr.New(apperr.KindConfig,
			"Connector name is required for non-interactive mode")
	}

	var def catalog.ConnectorDefinition
	if preset.ConnectorID != "" {
		d, ok := a.catalog.FindByName(preset.ConnectorID)
		if !ok {
			return terraform.GenerationOptions{}, apperr.NewUnknownConnector(preset.ConnectorID)
		}
		def = d
	} else {
		t := preset.Type
		if t == "" {
			t = catalog.Source
		}
		defs := a.catalog.ListByType(t)
		if len(defs) == 0 {
			return terraform.GenerationOptions{}, apperr.New(apperr.KindConfig, "No connectors available")
		}
		def = defs[0]
	}

	return terraform.GenerationOptions{
		ConnectorName:    preset.Name,
		Connector:        def,
		Topics:           preset.Topics,
		InputDataFormat:  preset.InputFormat,
		OutputDataFormat: preset.OutputFormat,
	}, nil
}

func (a *app) prompterFor() prompt.Prompter {
	if a.prompter != nil {
		return a.prompter
	}
	return prompt.NewSurveyPrompter(isTerminal(os.Stdin))
}

func parseFormat(s string, fallback catalog.DataFormat) (catalog.DataFormat, error) {
	if s == "" {
		return fallback, nil
	}
	f, err := catalog.ParseDataFormat(s)
	if err != nil {
		return "", apperr.New(apperr.KindConfig, err.Error())
	}
	return f, nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
