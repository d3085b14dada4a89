package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/nsforge/nsforge/cmd/nsforge/handlers"
)

// Watch returns the command that follows a provisioning request live.
func Watch() *cobra.Command {
	var (
		serverURL string
		interval  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch REQUEST_ID",
		Short: "Follow a provisioning request until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Watch(cmd.Context(), serverURL, args[0], interval)
		},
	}

	cmd.Flags().StringVarP(&serverURL, "server", "s", "", "Orchestrator URL (default: $NSFORGE_SERVER or http://localhost:8080)")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Poll interval")

	return cmd
}
