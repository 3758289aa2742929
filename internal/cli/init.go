package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ifautofab/play-deploy/internal/config"
	"github.com/ifautofab/play-deploy/internal/model"
	"github.com/ifautofab/play-deploy/internal/projectroot"
)

// initFlags holds the flag values for the init command.
type initFlags struct {
	force bool // --force: overwrite an existing config file
}

// NewInitCommand creates the "init" cobra command.
func NewInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented .play-deploy.yaml to the project root",
		Long: `Write a config file with every option and its default value to the
project root (or to the path given with --config).

Examples:
  play-deploy init
  play-deploy init --force
  play-deploy init --config ci/play-deploy.yaml`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.force, "force", false, "Overwrite an existing config file")

	return cmd
}

// runInit writes the default config template.
func runInit(cmd *cobra.Command, flags *initFlags) error {
	cwd, err := os.Getwd()
	if err != nil {
		return model.WrapCLIError(model.ExitConfigError, "failed to get current directory", err)
	}

	path := configFile
	switch {
	case path == "":
		project, findErr := projectroot.NewLocator().Find(cwd)
		if findErr != nil {
			return model.WrapCLIError(model.ExitConfigError, "failed to locate project root", findErr)
		}
		path = filepath.Join(project.Root, config.ConfigFileNames[0])
	case !filepath.IsAbs(path):
		path = filepath.Join(cwd, path)
	}

	if ext := filepath.Ext(path); ext != ".yaml" && ext != ".yml" {
		return model.NewCLIError(model.ExitConfigError, fmt.Sprintf("init writes YAML; %s must end in .yaml or .yml", path))
	}

	if err := config.WriteDefaultConfig(path, flags.force); err != nil {
		return err
	}

	if IsJSONOutput() {
		return writeJSON(cmd.OutOrStdout(), map[string]string{"configFile": path})
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Wrote "+path))
	return nil
}
