package commands

import (
	"github.com/spf13/cobra"

	"github.com/nsforge/nsforge/cmd/nsforge/handlers"
)

// Cancel returns the command that cancels a provisioning request.
func Cancel() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "cancel REQUEST_ID",
		Short: "Cancel a provisioning request",
		Long: `Cancel a provisioning request.

A request that already finished is left unchanged. Cancelling a running
request stops its workflow best-effort; the namespace record moves to
CANCELLED immediately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Cancel(cmd.Context(), serverURL, args[0])
		},
	}

	cmd.Flags().StringVarP(&serverURL, "server", "s", "", "Orchestrator URL (default: $NSFORGE_SERVER or http://localhost:8080)")

	return cmd
}
