package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/nsforge/nsforge/pkg/nsapi"
)

// Create submits a namespace request to the orchestrator. With watch the
// request is followed until it reaches a terminal phase.
func Create(ctx context.Context, serverURL string, req *nsapi.CreateNamespaceRequest, watch, jsonOutput bool) error {
	client := newAPIClient(resolveServer(serverURL))

	resp, err := client.CreateNamespace(ctx, *req)
	if err != nil {
		return describeAPIError(err)
	}

	if jsonOutput && !watch {
		return printJSON(resp)
	}

	if !jsonOutput {
		fmt.Printf("Request accepted: %s (status %s)\n", resp.RequestID, resp.Status)
	}
	if !watch {
		if !jsonOutput {
			fmt.Printf("\nFollow progress with:\n  nsforge watch %s\n", resp.RequestID)
		}
		return nil
	}

	return Watch(ctx, serverURL, resp.RequestID, 2*time.Second)
}

// describeAPIError adds a retry hint when the orchestrator rejected the
// request because a dependency circuit is open.
func describeAPIError(err error) error {
	if apiErr, ok := err.(*nsapi.APIError); ok && apiErr.RetryAfterSeconds > 0 {
		return fmt.Errorf("%s (retry in %ds)", apiErr.Message, apiErr.RetryAfterSeconds)
	}
	return err
}
