package commands

import (
	"github.com/spf13/cobra"

	"github.com/nsforge/nsforge/cmd/nsforge/handlers"
)

// List returns the command that lists provisioning requests.
func List() *cobra.Command {
	var (
		serverURL  string
		team       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List provisioning requests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.List(cmd.Context(), serverURL, team, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&serverURL, "server", "s", "", "Orchestrator URL (default: $NSFORGE_SERVER or http://localhost:8080)")
	cmd.Flags().StringVar(&team, "team", "", "Only show requests owned by this team")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
