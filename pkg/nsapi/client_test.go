package nsapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNamespace(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/namespaces", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req CreateNamespaceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "payments-dev", req.NamespaceName)

		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(CreateNamespaceResponse{RequestID: "req-1", Status: PhasePending})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.CreateNamespace(context.Background(), CreateNamespaceRequest{
		NamespaceName: "payments-dev",
		Team:          "payments",
	})
	require.NoError(t, err)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, PhasePending, resp.Status)
}

func TestGetStatusNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "request not found"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.GetStatus(context.Background(), "missing")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "request not found", apiErr.Message)
}

func TestCreateNamespaceOpenBreaker(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "31")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "workflow-engine unavailable", RetryAfterSeconds: 31})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.CreateNamespace(context.Background(), CreateNamespaceRequest{NamespaceName: "x", Team: "t"})
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, 31, apiErr.RetryAfterSeconds)
}

func TestListByTeamEncodesQuery(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "team a", r.URL.Query().Get("team"))
		json.NewEncoder(w).Encode([]ProvisioningRequest{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	records, err := client.ListByTeam(context.Background(), "team a")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestResetBreaker(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	require.NoError(t, client.ResetBreaker(context.Background(), "workflow-engine"))
	assert.Equal(t, "/breakers/workflow-engine/reset", gotPath)
}

func TestPhaseTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, PhasePending.Terminal())
	assert.False(t, PhaseProvisioning.Terminal())
	assert.True(t, PhaseCompleted.Terminal())
	assert.True(t, PhaseFailed.Terminal())
	assert.True(t, PhaseCancelled.Terminal())
}
