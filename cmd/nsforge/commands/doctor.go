package commands

import (
	"github.com/spf13/cobra"

	"github.com/nsforge/nsforge/cmd/nsforge/handlers"
)

// Doctor returns the command that diagnoses the orchestrator and cluster.
func Doctor() *cobra.Command {
	var (
		serverURL  string
		kubeconfig string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose orchestrator and cluster health",
		Long: `Diagnose orchestrator and cluster health.

Checks the orchestrator API, reports circuit breaker state for each
external dependency, and, when a kubeconfig is given, verifies that
completed requests actually exist on the cluster with the expected
quota and network policy.

Examples:
  # Check the orchestrator only
  nsforge doctor

  # Also verify provisioned namespaces on the cluster
  nsforge doctor --kubeconfig ~/.kube/config`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), serverURL, kubeconfig, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&serverURL, "server", "s", "", "Orchestrator URL (default: $NSFORGE_SERVER or http://localhost:8080)")
	cmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "Path to kubeconfig for cluster verification")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
