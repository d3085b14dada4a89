package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/nsforge/nsforge/internal/cluster"
	"github.com/nsforge/nsforge/internal/config"
	"github.com/nsforge/nsforge/pkg/nsapi"
)

// namespaceVerifier checks provisioned namespaces against their expected shape.
type namespaceVerifier interface {
	VerifyNamespace(ctx context.Context, record *nsapi.ProvisioningRequest, tier config.TierResources) (*cluster.Report, error)
}

// Factory function variables for doctor - can be replaced in tests.
var newVerifier = func(kubeconfigPath string) (namespaceVerifier, error) {
	return cluster.NewVerifier(kubeconfigPath)
}

// NamespaceHealth is the per-namespace result of a doctor run.
type NamespaceHealth struct {
	RequestID string          `json:"requestId"`
	Namespace string          `json:"namespace"`
	Healthy   bool            `json:"healthy"`
	Checks    []cluster.Check `json:"checks"`
}

// DoctorStatus is the aggregate result of a doctor run.
type DoctorStatus struct {
	ServerReachable bool                  `json:"serverReachable"`
	ServerError     string                `json:"serverError,omitempty"`
	Breakers        []nsapi.BreakerStatus `json:"breakers,omitempty"`
	Namespaces      []NamespaceHealth     `json:"namespaces,omitempty"`
}

// Healthy reports whether every probe passed.
func (s *DoctorStatus) Healthy() bool {
	if !s.ServerReachable {
		return false
	}
	for _, b := range s.Breakers {
		if b.State != "closed" {
			return false
		}
	}
	for _, ns := range s.Namespaces {
		if !ns.Healthy {
			return false
		}
	}
	return true
}

// Doctor probes the orchestrator and, when a kubeconfig is given, verifies
// every completed namespace directly against the cluster.
func Doctor(ctx context.Context, serverURL, kubeconfig string, jsonOutput bool) error {
	client := newAPIClient(resolveServer(serverURL))

	status := &DoctorStatus{ServerReachable: true}
	breakers, err := client.Breakers(ctx)
	if err != nil {
		status.ServerReachable = false
		status.ServerError = err.Error()
	} else {
		status.Breakers = breakers
	}

	if kubeconfig != "" && status.ServerReachable {
		if err := collectNamespaceHealth(ctx, client, kubeconfig, status); err != nil {
			return err
		}
	}

	if jsonOutput {
		return printJSON(status)
	}
	printDoctorReport(status)
	if !status.Healthy() {
		return fmt.Errorf("doctor found problems")
	}
	return nil
}

func collectNamespaceHealth(ctx context.Context, client apiClient, kubeconfig string, status *DoctorStatus) error {
	verifier, err := newVerifier(kubeconfig)
	if err != nil {
		return err
	}

	records, err := client.List(ctx)
	if err != nil {
		return describeAPIError(err)
	}

	cfg := &config.Config{}
	cfg.ApplyDefaults()

	for i := range records {
		record := &records[i]
		if record.Phase != nsapi.PhaseCompleted {
			continue
		}
		tier, _ := cfg.TierFor(record.ResourceTier)
		report, err := verifier.VerifyNamespace(ctx, record, tier)
		if err != nil {
			return fmt.Errorf("failed to verify namespace %s: %w", record.NamespaceName, err)
		}
		status.Namespaces = append(status.Namespaces, NamespaceHealth{
			RequestID: record.RequestID,
			Namespace: record.NamespaceName,
			Healthy:   report.Healthy(),
			Checks:    report.Checks,
		})
	}
	return nil
}

func printDoctorReport(status *DoctorStatus) {
	fmt.Println("\nOrchestrator")
	if status.ServerReachable {
		printRow("API", true, "")
	} else {
		printRow("API", false, status.ServerError)
	}
	for _, b := range status.Breakers {
		extra := b.State
		if b.ConsecutiveFailures > 0 {
			extra = fmt.Sprintf("%s (%d consecutive failures)", b.State, b.ConsecutiveFailures)
		}
		printRow("breaker/"+b.Name, b.State == "closed", extra)
	}

	if len(status.Namespaces) > 0 {
		fmt.Println("\nNamespaces")
		for _, ns := range status.Namespaces {
			var failing []string
			for _, c := range ns.Checks {
				if !c.OK {
					failing = append(failing, c.Name)
				}
			}
			printRow(ns.Namespace, ns.Healthy, strings.Join(failing, ", "))
		}
	}
	fmt.Println()
}
