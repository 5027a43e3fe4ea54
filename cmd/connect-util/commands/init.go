package commands

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/connect-util/connect-util/pkg/apperr"
	"github.com/connect-util/connect-util/pkg/hcldoc"
	"github.com/connect-util/connect-util/pkg/settings"
	"github.com/connect-util/connect-util/pkg/terraform"
)

func newInitCommand(a *app) *cobra.Command {
	var (
		dir   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write Terraform scaffolding and a default settings file",
		Long: `Write the declarations every generated connector references:

  variables.tf       var.status, var.environment_id, var.kafka_cluster
  locals.tf          local.schema_formats
  ` + settings.DefaultFileName + `  default settings

Existing files are kept unless --force is given.`,
		Example: `  connect-util init --dir ./terraform`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, logger zerolog.Logger) error {
				return initWorkspace(cmd, logger, dir, force)
			})
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "target directory")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")

	return cmd
}

func initWorkspace(cmd *cobra.Command, logger zerolog.Logger, dir string, force bool) error {
	out := cmd.OutOrStdout()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.Wrap(apperr.KindIO, "failed to create directory "+dir, err)
	}

	files, err := terraform.NewGenerator(hcldoc.NewHCL()).GenerateScaffoldFiles()
	if err != nil {
		return err
	}

	for _, name := range slices.Sorted(maps.Keys(files)) {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil && !force {
			fmt.Fprintln(out, renderWarn("Skipped existing file: "+path))
			continue
		}
		if err := os.WriteFile(path, []byte(files[name]), 0o644); err != nil {
			return apperr.Wrap(apperr.KindIO, "failed to write "+path, err)
		}
		logger.Debug().Str("path", path).Msg("Wrote scaffold file")
		fmt.Fprintln(out, renderOK("Created "+path))
	}

	settingsPath := filepath.Join(dir, settings.DefaultFileName)
	if _, err := os.Stat(settingsPath); err == nil && !force {
		fmt.Fprintln(out, renderWarn("Skipped existing file: "+settingsPath))
	} else {
		if err := settings.WriteDefault(settingsPath, true); err != nil {
			return err
		}
		fmt.Fprintln(out, renderOK("Created "+settingsPath))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  connect-util generate -o connector.tf")
	fmt.Fprintln(out, "  connect-util validate -c connector.tf")
	return nil
}
