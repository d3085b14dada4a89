package handlers

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/nsforge/nsforge/pkg/nsapi"
)

// List shows all provisioning requests, optionally filtered by team.
func List(ctx context.Context, serverURL, team string, jsonOutput bool) error {
	client := newAPIClient(resolveServer(serverURL))

	var (
		records []nsapi.ProvisioningRequest
		err     error
	)
	if team != "" {
		records, err = client.ListByTeam(ctx, team)
	} else {
		records, err = client.List(ctx)
	}
	if err != nil {
		return describeAPIError(err)
	}

	if jsonOutput {
		return printJSON(records)
	}
	if len(records) == 0 {
		fmt.Println("No provisioning requests found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REQUEST\tNAMESPACE\tTEAM\tTIER\tSTATUS\tAGE")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.RequestID, r.NamespaceName, r.Team, r.ResourceTier, r.Phase,
			time.Since(r.CreatedAt).Round(time.Second))
	}
	return w.Flush()
}
