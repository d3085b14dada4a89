// Package main is the entry point for the nsforge CLI.
//
// nsforge is a self-service namespace provisioning orchestrator. The serve
// command runs the orchestrator API; the remaining commands are a client for
// it: create namespaces, follow request progress, cancel requests, and
// inspect circuit breaker health.
//
// For detailed usage information, run:
//
//	nsforge --help
package main

import (
	"fmt"
	"os"

	"github.com/nsforge/nsforge/cmd/nsforge/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
