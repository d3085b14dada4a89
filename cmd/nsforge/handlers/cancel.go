package handlers

import (
	"context"
	"fmt"
)

// Cancel asks the orchestrator to cancel a provisioning request.
func Cancel(ctx context.Context, serverURL, requestID string) error {
	client := newAPIClient(resolveServer(serverURL))

	record, err := client.Cancel(ctx, requestID)
	if err != nil {
		return describeAPIError(err)
	}

	fmt.Printf("Request %s is now %s\n", record.RequestID, record.Phase)
	if record.WorkflowRef != "" {
		fmt.Println("The running workflow is being terminated best-effort.")
	}
	return nil
}
