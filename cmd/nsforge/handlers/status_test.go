package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsforge/nsforge/pkg/nsapi"
)

func TestStatusPrintsRecord(t *testing.T) {
	client := &fakeClient{records: []nsapi.ProvisioningRequest{testRecord("req-1", nsapi.PhaseProvisioning)}}
	swapAPIClient(t, client)

	var err error
	output := captureOutput(func() {
		err = Status(context.Background(), "", "req-1", false)
	})

	require.NoError(t, err)
	assert.Contains(t, output, "req-1")
	assert.Contains(t, output, "payments-dev")
	assert.Contains(t, output, "PROVISIONING")
}

func TestStatusJSON(t *testing.T) {
	client := &fakeClient{records: []nsapi.ProvisioningRequest{testRecord("req-1", nsapi.PhaseCompleted)}}
	swapAPIClient(t, client)

	var err error
	output := captureOutput(func() {
		err = Status(context.Background(), "", "req-1", true)
	})

	require.NoError(t, err)
	assert.Contains(t, output, `"status": "COMPLETED"`)
}

func TestStatusUnknownRequest(t *testing.T) {
	client := &fakeClient{}
	swapAPIClient(t, client)

	err := Status(context.Background(), "", "nope", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request not found")
}
