package commands

import (
	"github.com/spf13/cobra"

	"github.com/nsforge/nsforge/cmd/nsforge/handlers"
	"github.com/nsforge/nsforge/internal/config"
)

// Init returns the command that generates an orchestrator configuration.
//
// The command runs an interactive wizard asking for the workflow engine,
// optional identity directory, and request store, then writes nsforge.yaml.
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an orchestrator configuration interactively",
		Long: `Create an orchestrator configuration interactively.

The wizard asks for the workflow engine endpoint, an optional identity
directory, and the request store backend, then writes the configuration
file used by 'nsforge serve'.

Examples:
  # Write nsforge.yaml in the current directory
  nsforge init

  # Write to a custom location
  nsforge init -o /etc/nsforge/nsforge.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", config.DefaultFileName, "Path to write the configuration file")

	return cmd
}
