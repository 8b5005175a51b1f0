package main

import (
	"fmt"
	"path/filepath"

	"github.com/ludo-technologies/treedit/internal/constants"
	"github.com/ludo-technologies/treedit/service"
	"github.com/spf13/cobra"
)

// InitCommand represents the init command
type InitCommand struct {
	force      bool
	configPath string
}

// NewInitCommand creates a new init command
func NewInitCommand() *InitCommand {
	return &InitCommand{
		force:      false,
		configPath: constants.ConfigFileName,
	}
}

// CreateCobraCommand creates the cobra command for configuration initialization
func (i *InitCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize treedit configuration file",
		Long: `Initialize a treedit configuration file in the current directory.

Creates a .treedit.toml file with every setting commented out at its
default value. treedit finds the file by walking up from the input
directory, so one file can serve a whole project.

The generated configuration includes settings for:
• Solver choice and search bounds
• Delete, insert and relabel costs
• Tree file inclusion/exclusion patterns
• Output formatting and the HTTP listen address

Examples:
  # Create .treedit.toml in current directory
  treedit init

  # Create config file with custom name
  treedit init --config ci/treedit.toml

  # Overwrite existing configuration file
  treedit init --force`,
		Args: cobra.NoArgs,
		RunE: i.runInit,
	}

	cmd.Flags().BoolVarP(&i.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().StringVarP(&i.configPath, "config", "c", i.configPath, "Configuration file path")

	return cmd
}

// runInit executes the init command
func (i *InitCommand) runInit(cmd *cobra.Command, args []string) error {
	configPath, err := filepath.Abs(i.configPath)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}

	if err := service.NewConfigurationLoader().CreateConfigTemplate(configPath, i.force); err != nil {
		return err
	}

	relPath, err := filepath.Rel(".", configPath)
	if err != nil {
		relPath = configPath
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Configuration file created: %s\n", relPath)
	fmt.Fprintf(cmd.OutOrStdout(), "\nTo customize treedit for your project:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  1. Edit %s\n", relPath)
	fmt.Fprintf(cmd.OutOrStdout(), "  2. Uncomment and modify settings as needed\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  3. Run 'treedit batch .' to use your configuration\n")

	return nil
}

// NewInitCmd creates and returns the init cobra command
func NewInitCmd() *cobra.Command {
	return NewInitCommand().CreateCobraCommand()
}
