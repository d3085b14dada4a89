// Package server exposes the orchestrator over HTTP: the namespace REST API,
// breaker operator endpoints, health, and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nsforge/nsforge/internal/breaker"
	"github.com/nsforge/nsforge/internal/platform/directory"
	"github.com/nsforge/nsforge/internal/platform/workflow"
	"github.com/nsforge/nsforge/internal/provisioning"
	"github.com/nsforge/nsforge/pkg/nsapi"
)

// Orchestrator is the provisioning surface the HTTP layer serves.
type Orchestrator interface {
	CreateNamespace(ctx context.Context, req *nsapi.CreateNamespaceRequest) (*nsapi.ProvisioningRequest, error)
	GetStatus(ctx context.Context, requestID string) (*nsapi.ProvisioningRequest, error)
	Cancel(ctx context.Context, requestID string) (*nsapi.ProvisioningRequest, error)
	List(ctx context.Context) ([]*nsapi.ProvisioningRequest, error)
	ListByTeam(ctx context.Context, team string) ([]*nsapi.ProvisioningRequest, error)
}

// Server is the nsforge HTTP API.
type Server struct {
	orch     Orchestrator
	breakers *breaker.Registry
	log      logr.Logger
	mux      *http.ServeMux
}

// New wires the API routes. gatherer may be nil to disable /metrics.
func New(orch Orchestrator, breakers *breaker.Registry, gatherer prometheus.Gatherer, log logr.Logger) *Server {
	s := &Server{
		orch:     orch,
		breakers: breakers,
		log:      log.WithName("http"),
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /namespaces", s.handleCreate)
	s.mux.HandleFunc("GET /namespaces", s.handleList)
	s.mux.HandleFunc("GET /namespaces/{id}/status", s.handleStatus)
	s.mux.HandleFunc("DELETE /namespaces/{id}", s.handleCancel)
	s.mux.HandleFunc("GET /breakers", s.handleBreakers)
	s.mux.HandleFunc("POST /breakers/{name}/reset", s.handleBreakerReset)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	if gatherer != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return s
}

// Handler returns the route multiplexer, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req nsapi.CreateNamespaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, &provisioning.ValidationError{Field: "body", Message: "malformed JSON"})
		return
	}

	record, err := s.orch.CreateNamespace(r.Context(), &req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, nsapi.CreateNamespaceResponse{
		RequestID: record.RequestID,
		Status:    record.Phase,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	record, err := s.orch.GetStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	record, err := s.orch.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var (
		records []*nsapi.ProvisioningRequest
		err     error
	)
	if team := r.URL.Query().Get("team"); team != "" {
		records, err = s.orch.ListByTeam(r.Context(), team)
	} else {
		records, err = s.orch.List(r.Context())
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	if records == nil {
		records = []*nsapi.ProvisioningRequest{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleBreakers(w http.ResponseWriter, _ *http.Request) {
	snapshots := s.breakers.Snapshots()
	out := make([]nsapi.BreakerStatus, 0, len(snapshots))
	for _, snap := range snapshots {
		out = append(out, nsapi.BreakerStatus{
			Name:                snap.Name,
			State:               snap.State.String(),
			ConsecutiveFailures: snap.ConsecutiveFailures,
			RequestCount:        snap.RequestCount,
			LastFailureTime:     snap.LastFailureTime,
			NextAttemptAt:       snap.NextAttemptAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBreakerReset(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	b := s.breakers.Get(name)
	if b == nil {
		writeJSON(w, http.StatusNotFound, nsapi.ErrorResponse{Error: fmt.Sprintf("no breaker named %q", name)})
		return
	}
	b.Reset()
	s.log.Info("circuit breaker reset by operator", "dependency", name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the orchestrator's error taxonomy onto HTTP statuses. An
// open circuit surfaces as 503 with a Retry-After hint; upstream failures
// are 502 so clients can tell them apart from orchestrator bugs.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var openErr *breaker.OpenError
	switch {
	case provisioning.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, nsapi.ErrorResponse{Error: err.Error()})
	case provisioning.IsConflict(err):
		writeJSON(w, http.StatusConflict, nsapi.ErrorResponse{Error: err.Error()})
	case provisioning.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, nsapi.ErrorResponse{Error: err.Error()})
	case errors.As(err, &openErr):
		retryAfter := int(openErr.RetryAfter.Seconds()) + 1
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeJSON(w, http.StatusServiceUnavailable, nsapi.ErrorResponse{
			Error:             err.Error(),
			RetryAfterSeconds: retryAfter,
		})
	case isUpstreamError(err):
		writeJSON(w, http.StatusBadGateway, nsapi.ErrorResponse{Error: err.Error()})
	default:
		s.log.Error(err, "request failed")
		writeJSON(w, http.StatusInternalServerError, nsapi.ErrorResponse{Error: "internal error"})
	}
}

func isUpstreamError(err error) bool {
	var engineErr *workflow.EngineError
	var svcErr *directory.ServiceError
	var authErr *directory.AuthError
	return errors.As(err, &engineErr) || errors.As(err, &svcErr) || errors.As(err, &authErr)
}
