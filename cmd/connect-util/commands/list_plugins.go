package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/connect-util/connect-util/pkg/catalog"
)

func newListPluginsCommand(a *app) *cobra.Command {
	var (
		filterType string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "list-plugins",
		Short: "List available connector plugins",
		Example: `  connect-util list-plugins
  connect-util list-plugins -t sink -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(_ context.Context, logger zerolog.Logger) error {
				out := cmd.OutOrStdout()

				var t catalog.ConnectorType
				if filterType != "" {
					parsed, err := catalog.ParseConnectorType(filterType)
					if err != nil {
						logger.Debug().Err(err).Msg("Invalid filter type")
						fmt.Fprintln(out, renderError("Invalid filter type. Use 'source' or 'sink'"))
						return nil
					}
					t = parsed
				}

				return writeSummaries(out, a.catalog.Summaries(t), output)
			})
		},
	}

	cmd.Flags().StringVarP(&filterType, "type", "t", "", "filter by connector type (source, sink)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json, yaml)")

	return cmd
}

func writeSummaries(out io.Writer, rows []catalog.Summary, format string) error {
	if rows == nil {
		rows = []catalog.Summary{}
	}

	switch format {
	case "text", "":
		fmt.Fprintln(out, styleHeader.Render("Available connector plugins:"))
		for _, r := range rows {
			fmt.Fprintf(out, "  - %s (%s)\n", r.DisplayName, r.Type)
			fmt.Fprintf(out, "    %s %s\n", styleMuted.Render("Class:"), r.Class)
			fmt.Fprintf(out, "    %s %s\n", styleMuted.Render("Description:"), r.Description)
		}
		return nil
	default:
		return encodeStructured(out, rows, format)
	}
}
