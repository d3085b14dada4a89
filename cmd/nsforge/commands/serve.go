package commands

import (
	"github.com/spf13/cobra"

	"github.com/nsforge/nsforge/cmd/nsforge/handlers"
	"github.com/nsforge/nsforge/internal/config"
)

// Serve returns the command that runs the orchestrator API server.
//
// Environment variables:
//
//	NSFORGE_WORKFLOW_TOKEN: bearer token for the workflow engine
//	NSFORGE_DIRECTORY_TOKEN: bearer token for the identity directory
//	NSFORGE_S3_ACCESS_KEY / NSFORGE_S3_SECRET_KEY: S3 store credentials
func Serve() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the provisioning orchestrator",
		Long: `Run the provisioning orchestrator API server.

The server accepts namespace provisioning requests, submits workflows to
the configured workflow engine, and tracks them to completion. It serves
the REST API, Prometheus metrics, and circuit breaker operator endpoints.

Examples:
  # Serve using nsforge.yaml in the current directory
  nsforge serve

  # Serve using a specific config file
  nsforge serve -c /etc/nsforge/nsforge.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Serve(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultFileName, "Path to configuration file")

	return cmd
}
