// Package handlers implements the CLI command logic. Commands parse flags
// and delegate here; handlers talk to the orchestrator API and render output.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/nsforge/nsforge/pkg/nsapi"
)

const defaultServerURL = "http://localhost:8080"

// apiClient is the orchestrator API surface the handlers use.
type apiClient interface {
	CreateNamespace(ctx context.Context, req nsapi.CreateNamespaceRequest) (*nsapi.CreateNamespaceResponse, error)
	GetStatus(ctx context.Context, requestID string) (*nsapi.ProvisioningRequest, error)
	Cancel(ctx context.Context, requestID string) (*nsapi.ProvisioningRequest, error)
	List(ctx context.Context) ([]nsapi.ProvisioningRequest, error)
	ListByTeam(ctx context.Context, team string) ([]nsapi.ProvisioningRequest, error)
	Breakers(ctx context.Context) ([]nsapi.BreakerStatus, error)
}

// Factory function variables - can be replaced in tests.
var newAPIClient = func(baseURL string) apiClient {
	return nsapi.NewClient(baseURL)
}

// resolveServer picks the orchestrator URL: explicit flag, then the
// NSFORGE_SERVER environment variable, then localhost.
func resolveServer(flagValue string) string {
	if flagValue != "" {
		return strings.TrimSuffix(flagValue, "/")
	}
	if env := os.Getenv("NSFORGE_SERVER"); env != "" {
		return strings.TrimSuffix(env, "/")
	}
	return defaultServerURL
}

func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// printJSON outputs any value as indented JSON.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// printRecord outputs one request record as a plain field list.
func printRecord(record *nsapi.ProvisioningRequest) {
	fmt.Printf("Request:    %s\n", record.RequestID)
	fmt.Printf("Namespace:  %s\n", record.NamespaceName)
	fmt.Printf("Team:       %s\n", record.Team)
	fmt.Printf("Status:     %s\n", record.Phase)
	fmt.Printf("Tier:       %s (%s)\n", record.ResourceTier, record.Environment)
	if record.WorkflowRef != "" {
		fmt.Printf("Workflow:   %s\n", record.WorkflowRef)
	}
	if record.ErrorMessage != "" {
		fmt.Printf("Error:      %s\n", record.ErrorMessage)
	}
}

func printRow(name string, ready bool, extra string) {
	indicator := "✅" // green check
	if !ready {
		indicator = "❌" // red X
	}

	if extra != "" {
		fmt.Printf("  %s  %-20s %s\n", indicator, name, extra)
	} else {
		fmt.Printf("  %s  %s\n", indicator, name)
	}
}
