// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated to
// handler functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the nsforge CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nsforge",
		Short: "Self-service Kubernetes namespace provisioning",
	}

	// Server
	cmd.AddCommand(Init())
	cmd.AddCommand(Serve())

	// Client
	cmd.AddCommand(Create())
	cmd.AddCommand(Status())
	cmd.AddCommand(List())
	cmd.AddCommand(Cancel())
	cmd.AddCommand(Watch())
	cmd.AddCommand(Doctor())

	// Utility
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
