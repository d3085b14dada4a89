package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsforge/nsforge/internal/breaker"
	"github.com/nsforge/nsforge/internal/provisioning"
	"github.com/nsforge/nsforge/internal/store"
	"github.com/nsforge/nsforge/pkg/nsapi"
)

// fakeOrchestrator returns scripted results per method.
type fakeOrchestrator struct {
	createRecord *nsapi.ProvisioningRequest
	createErr    error
	statusRecord *nsapi.ProvisioningRequest
	statusErr    error
	cancelRecord *nsapi.ProvisioningRequest
	cancelErr    error
	listRecords  []*nsapi.ProvisioningRequest

	lastTeam string
}

func (f *fakeOrchestrator) CreateNamespace(_ context.Context, _ *nsapi.CreateNamespaceRequest) (*nsapi.ProvisioningRequest, error) {
	return f.createRecord, f.createErr
}

func (f *fakeOrchestrator) GetStatus(_ context.Context, _ string) (*nsapi.ProvisioningRequest, error) {
	return f.statusRecord, f.statusErr
}

func (f *fakeOrchestrator) Cancel(_ context.Context, _ string) (*nsapi.ProvisioningRequest, error) {
	return f.cancelRecord, f.cancelErr
}

func (f *fakeOrchestrator) List(_ context.Context) ([]*nsapi.ProvisioningRequest, error) {
	return f.listRecords, nil
}

func (f *fakeOrchestrator) ListByTeam(_ context.Context, team string) ([]*nsapi.ProvisioningRequest, error) {
	f.lastTeam = team
	return f.listRecords, nil
}

func newTestServer(t *testing.T, orch Orchestrator) (*Server, *breaker.Registry) {
	t.Helper()
	registry := breaker.NewRegistry(logr.Discard(), nil)
	return New(orch, registry, nil, logr.Discard()), registry
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func sampleRecord() *nsapi.ProvisioningRequest {
	return &nsapi.ProvisioningRequest{
		RequestID:     "req-1",
		NamespaceName: "payments-dev",
		Team:          "payments",
		Environment:   nsapi.EnvDevelopment,
		ResourceTier:  nsapi.TierSmall,
		NetworkPolicy: nsapi.NetworkIsolated,
		Phase:         nsapi.PhaseProvisioning,
		WorkflowRef:   "wf-1",
		CreatedAt:     time.Now(),
	}
}

func TestCreateNamespaceAccepted(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, &fakeOrchestrator{createRecord: sampleRecord()})
	rec := doRequest(t, s, http.MethodPost, "/namespaces",
		`{"namespaceName":"payments-dev","team":"payments","resourceTier":"small"}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp nsapi.CreateNamespaceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, nsapi.PhaseProvisioning, resp.Status)
}

func TestCreateNamespaceErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", &provisioning.ValidationError{Field: "namespaceName", Message: "bad"}, http.StatusBadRequest},
		{"conflict", &provisioning.ConflictError{Message: "duplicate"}, http.StatusConflict},
		{"breaker open", &breaker.OpenError{Name: "workflow-engine", RetryAfter: 42 * time.Second}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, _ := newTestServer(t, &fakeOrchestrator{createErr: tt.err})
			rec := doRequest(t, s, http.MethodPost, "/namespaces", `{"namespaceName":"x","team":"y"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestCreateNamespaceOpenBreakerCarriesRetryAfter(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, &fakeOrchestrator{
		createErr: &breaker.OpenError{Name: "workflow-engine", RetryAfter: 42 * time.Second},
	})
	rec := doRequest(t, s, http.MethodPost, "/namespaces", `{"namespaceName":"x","team":"y"}`)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "43", rec.Header().Get("Retry-After"))

	var resp nsapi.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 43, resp.RetryAfterSeconds)
}

func TestCreateNamespaceMalformedBody(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, &fakeOrchestrator{})
	rec := doRequest(t, s, http.MethodPost, "/namespaces", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStatus(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, &fakeOrchestrator{statusRecord: sampleRecord()})
	rec := doRequest(t, s, http.MethodGet, "/namespaces/req-1/status", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var record nsapi.ProvisioningRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, nsapi.PhaseProvisioning, record.Phase)
	assert.Equal(t, "wf-1", record.WorkflowRef)
}

func TestGetStatusNotFound(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, &fakeOrchestrator{statusErr: store.ErrNotFound})
	rec := doRequest(t, s, http.MethodGet, "/namespaces/nope/status", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancel(t *testing.T) {
	t.Parallel()

	cancelled := sampleRecord()
	cancelled.Phase = nsapi.PhaseCancelled
	s, _ := newTestServer(t, &fakeOrchestrator{cancelRecord: cancelled})

	rec := doRequest(t, s, http.MethodDelete, "/namespaces/req-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var record nsapi.ProvisioningRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, nsapi.PhaseCancelled, record.Phase)
}

func TestListFiltersByTeam(t *testing.T) {
	t.Parallel()

	orch := &fakeOrchestrator{listRecords: []*nsapi.ProvisioningRequest{sampleRecord()}}
	s, _ := newTestServer(t, orch)

	rec := doRequest(t, s, http.MethodGet, "/namespaces?team=payments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "payments", orch.lastTeam)

	var records []*nsapi.ProvisioningRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
}

func TestListEmptyIsJSONArray(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, &fakeOrchestrator{})
	rec := doRequest(t, s, http.MethodGet, "/namespaces", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestBreakerEndpoints(t *testing.T) {
	t.Parallel()

	s, registry := newTestServer(t, &fakeOrchestrator{})
	b := registry.GetOrCreate(breaker.Config{Name: "workflow-engine", FailureThreshold: 1})
	b.ForceOpen()

	rec := doRequest(t, s, http.MethodGet, "/breakers", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var statuses []nsapi.BreakerStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &statuses))
	require.Len(t, statuses, 1)
	assert.Equal(t, "workflow-engine", statuses[0].Name)
	assert.Equal(t, "open", statuses[0].State)

	rec = doRequest(t, s, http.MethodPost, "/breakers/workflow-engine/reset", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, breaker.StateClosed, b.Snapshot().State)

	rec = doRequest(t, s, http.MethodPost, "/breakers/unknown/reset", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, &fakeOrchestrator{})
	rec := doRequest(t, s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
