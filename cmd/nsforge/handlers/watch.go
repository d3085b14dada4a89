package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/nsforge/nsforge/internal/ui/tui"
)

// Watch follows a provisioning request until it reaches a terminal phase.
// On an interactive terminal this renders the live TUI; otherwise it polls
// and prints phase transitions as plain lines.
func Watch(ctx context.Context, serverURL, requestID string, interval time.Duration) error {
	client := newAPIClient(resolveServer(serverURL))

	if isInteractiveTTY() {
		record, err := tui.RunWatch(ctx, client, requestID, interval)
		if err != nil {
			return describeAPIError(err)
		}
		if record != nil && record.Phase.Terminal() {
			printRecord(record)
		}
		return nil
	}
	return pollPlain(ctx, client, requestID, interval)
}

func pollPlain(ctx context.Context, client apiClient, requestID string, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastPhase string
	for {
		record, err := client.GetStatus(ctx, requestID)
		if err != nil {
			return describeAPIError(err)
		}
		if string(record.Phase) != lastPhase {
			lastPhase = string(record.Phase)
			fmt.Printf("%s  %s\n", time.Now().Format(time.RFC3339), record.Phase)
		}
		if record.Phase.Terminal() {
			if record.ErrorMessage != "" {
				fmt.Printf("Error: %s\n", record.ErrorMessage)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
