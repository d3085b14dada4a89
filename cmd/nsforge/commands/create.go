package commands

import (
	"github.com/spf13/cobra"

	"github.com/nsforge/nsforge/cmd/nsforge/handlers"
	"github.com/nsforge/nsforge/pkg/nsapi"
)

// Create returns the command that requests a new namespace.
func Create() *cobra.Command {
	var (
		serverURL   string
		team        string
		environment string
		tier        string
		network     string
		features    []string
		requestedBy string
		watch       bool
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Request a new namespace",
		Long: `Request a new namespace from the orchestrator.

The request is accepted asynchronously; use --watch to follow it until
the namespace is provisioned, or 'nsforge status' later.

Examples:
  # Request a small development namespace
  nsforge create payments-dev --team payments

  # Request a production namespace and follow progress
  nsforge create payments --team payments --env production --tier large --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &nsapi.CreateNamespaceRequest{
				NamespaceName: args[0],
				Team:          team,
				Environment:   nsapi.Environment(environment),
				ResourceTier:  nsapi.ResourceTier(tier),
				NetworkPolicy: nsapi.NetworkPolicy(network),
				Features:      features,
				RequestedBy:   requestedBy,
			}
			return handlers.Create(cmd.Context(), serverURL, req, watch, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&serverURL, "server", "s", "", "Orchestrator URL (default: $NSFORGE_SERVER or http://localhost:8080)")
	cmd.Flags().StringVar(&team, "team", "", "Owning team (required)")
	cmd.Flags().StringVar(&environment, "env", "development", "Environment: development, staging, production")
	cmd.Flags().StringVar(&tier, "tier", "small", "Resource tier: micro, small, medium, large")
	cmd.Flags().StringVar(&network, "network", "isolated", "Network policy: isolated, team-shared, open")
	cmd.Flags().StringSliceVar(&features, "feature", nil, "Optional feature to enable (repeatable)")
	cmd.Flags().StringVar(&requestedBy, "requested-by", "", "Principal requesting the namespace")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Follow the request until it finishes")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("team")

	return cmd
}
