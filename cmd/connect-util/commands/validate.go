package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/connect-util/connect-util/pkg/apperr"
	"github.com/connect-util/connect-util/pkg/policy"
	"github.com/connect-util/connect-util/pkg/validation"
)

type validateOptions struct {
	configFile string
	policy     policyOptions
	jsonOutput bool
	watch      bool
}

func newValidateCommand(a *app) *cobra.Command {
	var opts validateOptions

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a Terraform connector file",
		Long: `Validate the connector resources in a Terraform file.

This command checks:
  - HCL syntax
  - Connector settings against the catalog definition
  - Required resource structure (status, environment, kafka_cluster, config maps)
  - Policy compliance (OPA/rego)

Invalid connector settings are reported without failing the command.
Structural violations and blocking policy violations fail it.`,
		Example: `  # Validate a file
  connect-util validate -c orders.tf

  # With extra policies, JSON output
  connect-util validate -c orders.tf --policy ./policies --json

  # Skip one built-in policy
  connect-util validate -c orders.tf --disable-policy tasks-max

  # Re-validate on every save
  connect-util validate -c orders.tf --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, logger zerolog.Logger) error {
				return a.validate(ctx, cmd.OutOrStdout(), logger, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.configFile, "config-file", "c", "", "Terraform file to validate")
	opts.policy.register(cmd)
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "re-validate when the file or policies change")
	_ = cmd.MarkFlagRequired("config-file")

	return cmd
}

func (a *app) validate(ctx context.Context, out io.Writer, logger zerolog.Logger, opts validateOptions) error {
	engine, paths, err := a.policyEngine(ctx, logger, opts.policy)
	if err != nil {
		return err
	}

	v := validation.New(a.catalog, logger, validation.WithPolicyEngine(engine))
	once := func() error {
		report, err := v.ValidateFile(ctx, opts.configFile)
		if report != nil {
			if rerr := renderReport(out, report, opts.jsonOutput); rerr != nil {
				return rerr
			}
		}
		if err != nil {
			return err
		}
		if report.Policy != nil && !report.Policy.Allowed {
			return apperr.New(apperr.KindConfig, fmt.Sprintf("policy check failed: %d blocking violation(s)",
				report.Policy.Count(policy.SeverityError)))
		}
		return nil
	}

	if !opts.watch {
		return once()
	}

	var mu sync.Mutex
	rerun := func() {
		mu.Lock()
		defer mu.Unlock()
		if err := once(); err != nil {
			fmt.Fprintln(out, renderError(err.Error()))
		}
	}
	rerun()

	if len(paths) > 0 {
		loader := policy.NewLoader(logger)
		err := loader.Watch(ctx, paths, func(policies []policy.Policy) error {
			if err := engine.ReplacePolicies(ctx, policies); err != nil {
				return err
			}
			if err := applyToggles(engine, opts.policy); err != nil {
				return err
			}
			rerun()
			return nil
		})
		if err != nil {
			return err
		}
		defer func() { _ = loader.StopWatching() }()
	}

	fmt.Fprintln(out, styleMuted.Render("Watching "+opts.configFile+" for changes, press Ctrl+C to stop"))
	return watchFile(ctx, logger, opts.configFile, rerun)
}

func renderReport(out io.Writer, r *validation.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	if r.Commented {
		fmt.Fprintln(out, renderOK("File is commented out - no validation needed"))
		fmt.Fprintln(out, styleHeader.Render("Configuration Summary:"))
		fmt.Fprintln(out, "  Status: Commented out")
		fmt.Fprintln(out, "  Note: This file contains no active connector configuration")
		return nil
	}

	n := len(r.Connectors)
	fmt.Fprintln(out, renderInfo(fmt.Sprintf("Found %d connector configuration(s) to validate", n)))
	for i, c := range r.Connectors {
		fmt.Fprintln(out)
		fmt.Fprintln(out, styleHeader.Render(fmt.Sprintf("--- Validating Connector %d of %d ---", i+1, n)))
		if !c.Valid {
			fmt.Fprintln(out, renderError("Configuration validation failed:"))
			fmt.Fprintf(out, "  %s\n", c.Error)
			continue
		}
		fmt.Fprintln(out, renderOK("Configuration is valid!"))
		fmt.Fprintln(out, styleHeader.Render("Configuration Summary:"))
		fmt.Fprintf(out, "  Connector: %s\n", c.DisplayName)
		fmt.Fprintln(out, "  Required configs: all present")
		fmt.Fprintln(out, "  Sensitive configs: properly separated")
		fmt.Fprintf(out, "  Non-sensitive configs: %d fields\n", c.NonSensitiveCount)
		fmt.Fprintf(out, "  Sensitive configs: %d fields\n", c.SensitiveCount)
	}

	if len(r.Structure) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, styleHeader.Render("Resource structure:"))
		for _, s := range r.Structure {
			if s.Valid {
				fmt.Fprintf(out, "  %s\n", renderOK(s.Resource))
			} else {
				fmt.Fprintf(out, "  %s\n", renderError(s.Error))
			}
		}
	}

	if r.Policy != nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, styleHeader.Render(fmt.Sprintf("Policies (%d evaluated):", len(r.Policy.EvaluatedPolicies))))
		if len(r.Policy.Violations) == 0 {
			fmt.Fprintf(out, "  %s\n", renderOK("no violations"))
		}
		for _, v := range r.Policy.Violations {
			line := fmt.Sprintf("[%s] %s: %s", v.Severity, v.Policy, v.Message)
			switch v.Severity {
			case policy.SeverityError:
				line = renderError(line)
			case policy.SeverityWarning:
				line = renderWarn(line)
			default:
				line = renderInfo(line)
			}
			fmt.Fprintf(out, "  %s\n", line)
		}
		for _, w := range r.Policy.Warnings {
			fmt.Fprintf(out, "  %s\n", renderWarn(w))
		}
	}

	return nil
}
