package handlers

import (
	"context"
	"fmt"

	"github.com/nsforge/nsforge/internal/ui/tui"
)

// Status shows the current record for one provisioning request.
func Status(ctx context.Context, serverURL, requestID string, jsonOutput bool) error {
	client := newAPIClient(resolveServer(serverURL))

	record, err := client.GetStatus(ctx, requestID)
	if err != nil {
		return describeAPIError(err)
	}

	if jsonOutput {
		return printJSON(record)
	}
	if isInteractiveTTY() {
		fmt.Println(tui.RenderOnce(record))
		return nil
	}
	printRecord(record)
	return nil
}
