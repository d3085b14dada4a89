package commands

import (
	"github.com/spf13/cobra"

	"github.com/nsforge/nsforge/cmd/nsforge/handlers"
)

// Status returns the command that shows one provisioning request.
func Status() *cobra.Command {
	var (
		serverURL  string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "status REQUEST_ID",
		Short: "Show the status of a provisioning request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Status(cmd.Context(), serverURL, args[0], jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&serverURL, "server", "s", "", "Orchestrator URL (default: $NSFORGE_SERVER or http://localhost:8080)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
