// Package tui provides the Bubble Tea terminal UI for watching a
// provisioning request until it reaches a terminal phase.
package tui

import "github.com/nsforge/nsforge/pkg/nsapi"

// RecordMsg carries the latest request record from the orchestrator.
type RecordMsg struct {
	Record *nsapi.ProvisioningRequest
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries a fatal error.
type ErrMsg struct{ Err error }
