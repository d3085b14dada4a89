package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsforge/nsforge/internal/cluster"
	"github.com/nsforge/nsforge/internal/config"
	"github.com/nsforge/nsforge/pkg/nsapi"
)

type fakeVerifier struct {
	reports map[string]*cluster.Report
	err     error
}

func (f *fakeVerifier) VerifyNamespace(_ context.Context, record *nsapi.ProvisioningRequest, _ config.TierResources) (*cluster.Report, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.reports[record.NamespaceName], nil
}

func swapVerifier(t *testing.T, v namespaceVerifier, err error) {
	orig := newVerifier
	newVerifier = func(string) (namespaceVerifier, error) { return v, err }
	t.Cleanup(func() { newVerifier = orig })
}

func TestDoctorHealthy(t *testing.T) {
	client := &fakeClient{
		breakers: []nsapi.BreakerStatus{
			{Name: "workflow-engine", State: "closed"},
			{Name: "directory", State: "closed"},
		},
	}
	swapAPIClient(t, client)

	var err error
	output := captureOutput(func() {
		err = Doctor(context.Background(), "", "", false)
	})

	require.NoError(t, err)
	assert.Contains(t, output, "breaker/workflow-engine")
	assert.Contains(t, output, "✅")
	assert.NotContains(t, output, "❌")
}

func TestDoctorOpenBreakerFails(t *testing.T) {
	client := &fakeClient{
		breakers: []nsapi.BreakerStatus{
			{Name: "workflow-engine", State: "open", ConsecutiveFailures: 5},
		},
	}
	swapAPIClient(t, client)

	var err error
	output := captureOutput(func() {
		err = Doctor(context.Background(), "", "", false)
	})

	require.Error(t, err)
	assert.Contains(t, output, "open (5 consecutive failures)")
	assert.Contains(t, output, "❌")
}

func TestDoctorUnreachableServer(t *testing.T) {
	client := &fakeClient{breakersErr: errors.New("connection refused")}
	swapAPIClient(t, client)

	var err error
	output := captureOutput(func() {
		err = Doctor(context.Background(), "", "", false)
	})

	require.Error(t, err)
	assert.Contains(t, output, "connection refused")
}

func TestDoctorVerifiesCompletedNamespaces(t *testing.T) {
	completed := testRecord("req-1", nsapi.PhaseCompleted)
	pending := testRecord("req-2", nsapi.PhasePending)
	pending.NamespaceName = "search-dev"

	client := &fakeClient{
		breakers: []nsapi.BreakerStatus{{Name: "workflow-engine", State: "closed"}},
		records:  []nsapi.ProvisioningRequest{completed, pending},
	}
	swapAPIClient(t, client)
	swapVerifier(t, &fakeVerifier{reports: map[string]*cluster.Report{
		"payments-dev": {
			Namespace: "payments-dev",
			Checks: []cluster.Check{
				{Name: "namespace active", OK: true},
				{Name: "resource quota", OK: false, Detail: "pods 5, want 20"},
			},
		},
	}}, nil)

	var err error
	output := captureOutput(func() {
		err = Doctor(context.Background(), "", "/tmp/kubeconfig", false)
	})

	require.Error(t, err)
	assert.Contains(t, output, "payments-dev")
	assert.Contains(t, output, "resource quota")
	assert.NotContains(t, output, "search-dev")
}

func TestDoctorJSONOutput(t *testing.T) {
	client := &fakeClient{
		breakers: []nsapi.BreakerStatus{{Name: "workflow-engine", State: "closed"}},
	}
	swapAPIClient(t, client)

	var err error
	output := captureOutput(func() {
		err = Doctor(context.Background(), "", "", true)
	})

	require.NoError(t, err)
	assert.Contains(t, output, `"serverReachable": true`)
	assert.Contains(t, output, `"workflow-engine"`)
}
