package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/connect-util/connect-util/pkg/apperr"
	"github.com/connect-util/connect-util/pkg/policy"
)

// policyOptions are the policy flags shared by validate and list-policies.
type policyOptions struct {
	paths     []string
	noBuiltin bool
	enable    []string
	disable   []string
}

func (o *policyOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&o.paths, "policy", nil, "policy file or directory (repeatable)")
	cmd.Flags().BoolVar(&o.noBuiltin, "no-builtin-policies", false, "skip the built-in policies")
	cmd.Flags().StringArrayVar(&o.enable, "enable-policy", nil, "enable a policy by name (repeatable)")
	cmd.Flags().StringArrayVar(&o.disable, "disable-policy", nil, "disable a policy by name (repeatable)")
}

// policyEngine builds the engine from settings and flags. It returns the
// policy paths so callers can watch them.
func (a *app) policyEngine(ctx context.Context, logger zerolog.Logger, opts policyOptions) (*policy.Engine, []string, error) {
	paths := slices.Concat(a.settings.Policy.Paths, opts.paths)
	builtin := a.settings.Policy.Builtin && !opts.noBuiltin

	engine, err := policy.NewEngine(logger, builtin)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create policy engine: %w", err)
	}
	if len(paths) > 0 {
		if err := engine.LoadPolicies(ctx, paths); err != nil {
			return nil, nil, err
		}
	}
	if err := applyToggles(engine, opts); err != nil {
		return nil, nil, err
	}
	return engine, paths, nil
}

// applyToggles enables then disables the named policies. Reloaded policies
// come back with their file state, so this runs again after every reload.
func applyToggles(engine *policy.Engine, opts policyOptions) error {
	for _, name := range opts.enable {
		if err := engine.EnablePolicy(name); err != nil {
			return apperr.Wrap(apperr.KindConfig, "invalid --enable-policy", err)
		}
	}
	for _, name := range opts.disable {
		if err := engine.DisablePolicy(name); err != nil {
			return apperr.Wrap(apperr.KindConfig, "invalid --disable-policy", err)
		}
	}
	return nil
}

func newListPoliciesCommand(a *app) *cobra.Command {
	var (
		opts   policyOptions
		output string
	)

	cmd := &cobra.Command{
		Use:   "list-policies [NAME]",
		Short: "List the policies validate evaluates",
		Long: `List the built-in and loaded policies with their severity and state.
With a NAME, print that policy including its Rego module.`,
		Example: `  connect-util list-policies
  connect-util list-policies --policy ./policies --disable-policy tasks-max
  connect-util list-policies hardcoded-secrets`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, logger zerolog.Logger) error {
				engine, _, err := a.policyEngine(ctx, logger, opts)
				if err != nil {
					return err
				}

				if len(args) == 1 {
					p, err := engine.GetPolicy(args[0])
					if err != nil {
						return apperr.Wrap(apperr.KindConfig, "unknown policy", err)
					}
					return writePolicy(cmd.OutOrStdout(), p, output)
				}
				return writePolicies(cmd.OutOrStdout(), engine.ListPolicies(), output)
			})
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, json, yaml)")

	return cmd
}

func writePolicies(out io.Writer, policies []policy.Policy, format string) error {
	if format != "text" && format != "" {
		return encodeStructured(out, policies, format)
	}

	fmt.Fprintln(out, styleHeader.Render("Policies:"))
	for _, p := range policies {
		fmt.Fprintf(out, "  - %s [%s] %s\n", p.Name, p.Severity, policyState(p))
		fmt.Fprintf(out, "    %s %s\n", styleMuted.Render("Description:"), p.Description)
		if p.Source != "" {
			fmt.Fprintf(out, "    %s %s\n", styleMuted.Render("Source:"), p.Source)
		}
	}
	return nil
}

func writePolicy(out io.Writer, p policy.Policy, format string) error {
	if format != "text" && format != "" {
		return encodeStructured(out, p, format)
	}

	fmt.Fprintf(out, "%s [%s] %s\n", styleHeader.Render(p.Name), p.Severity, policyState(p))
	fmt.Fprintln(out, p.Description)
	if p.Source != "" {
		fmt.Fprintf(out, "%s %s\n", styleMuted.Render("Source:"), p.Source)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, p.Rego)
	return nil
}

func policyState(p policy.Policy) string {
	if p.Enabled {
		return "enabled"
	}
	return "disabled"
}

func encodeStructured(out io.Writer, v any, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return apperr.New(apperr.KindConfig, fmt.Sprintf("unsupported output format %q (expected text, json or yaml)", format))
	}
}
