package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/connect-util/connect-util/pkg/catalog"
	"github.com/connect-util/connect-util/pkg/prompt"
	"github.com/connect-util/connect-util/pkg/settings"
	"github.com/connect-util/connect-util/pkg/telemetry"
)

// app holds state shared by all commands of one invocation.
type app struct {
	version string

	// Global flags
	configPath string
	envFile    string
	verbose    bool

	settings *settings.Settings
	tel      *telemetry.Telemetry
	catalog  *catalog.Catalog

	// prompter overrides the terminal prompter, for tests.
	prompter prompt.Prompter
	// logOutput overrides the log destination, for tests.
	logOutput io.Writer
}

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(&app{version: version}, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(a *app, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "connect-util",
		Short: "Kafka Connect connector Terraform generator",
		Long: `connect-util generates and validates Terraform declarations for
Confluent Cloud managed connectors.

Features:
  - Catalog of source and sink connector definitions
  - Terraform generation with connector-specific defaults
  - Validation of connector settings and resource structure
  - Policy checks via OPA/Rego`,
		Version:           fmt.Sprintf("%s (commit: %s, built: %s)", a.version, commit, buildDate),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "settings file (default ./"+settings.DefaultFileName+")")
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file with CONNECT_UTIL_* variables")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newGenerateCommand(a))
	rootCmd.AddCommand(newValidateCommand(a))
	rootCmd.AddCommand(newListPluginsCommand(a))
	rootCmd.AddCommand(newListPoliciesCommand(a))
	rootCmd.AddCommand(newInitCommand(a))

	return rootCmd
}

// setup loads settings and telemetry before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	s, err := settings.Load(settings.Options{
		ConfigFile: a.configPath,
		EnvFile:    a.envFile,
	})
	if err != nil {
		return err
	}
	if a.verbose {
		s.LogLevel = "debug"
	}
	a.settings = s

	cfg := s.Telemetry(a.version)
	if a.logOutput != nil {
		a.tel, err = telemetry.NewTelemetryWithLogger(cfg, telemetry.NewLoggerWithWriter(a.logOutput, cfg.Logging))
	} else {
		a.tel, err = telemetry.NewTelemetry(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	if a.catalog == nil {
		a.catalog = catalog.Default()
	}

	cmd.SetContext(a.tel.WithContext(cmd.Context()))
	return nil
}

// run wraps a command body with a span, metrics and telemetry shutdown.
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context, logger zerolog.Logger) error) error {
	start := time.Now()
	ctx, span := a.tel.Tracer.StartCommandSpan(cmd.Context(), cmd.Name(), a.tel.RunID)

	logger := a.tel.Logger.NewComponentLogger(cmd.Name()).Zerolog()
	logger.Debug().Str("trace_id", telemetry.TraceID(ctx)).Msg("Command started")

	err := fn(ctx, logger)

	status := "success"
	if err != nil {
		status = "failure"
		telemetry.RecordError(span, err)
	} else {
		telemetry.RecordSuccess(span)
	}
	span.End()
	a.tel.Metrics.RecordCommand(cmd.Name(), status, time.Since(start))

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if serr := a.tel.Shutdown(shutdownCtx); serr != nil {
		logger.Warn().Err(serr).Msg("Telemetry shutdown failed")
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
