// Package provisioning implements the namespace provisioning orchestrator:
// request validation, workflow submission, asynchronous completion tracking,
// and cancellation. All state transitions of a request record flow through
// this package, which guarantees a single writer per request.
package provisioning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nsforge/nsforge/internal/breaker"
	"github.com/nsforge/nsforge/internal/config"
	"github.com/nsforge/nsforge/internal/platform/directory"
	"github.com/nsforge/nsforge/internal/platform/workflow"
	"github.com/nsforge/nsforge/internal/store"
	"github.com/nsforge/nsforge/internal/util/retry"
	"github.com/nsforge/nsforge/pkg/nsapi"
)

// WorkflowEngine is the subset of the workflow client the service depends on.
type WorkflowEngine interface {
	Submit(ctx context.Context, spec *workflow.Spec) (string, error)
	WaitForCompletion(ctx context.Context, ref string, pollInterval, timeout time.Duration) (*workflow.Status, error)
	Terminate(ctx context.Context, ref string) error
}

// PrincipalValidator resolves request principals against the directory.
type PrincipalValidator interface {
	ValidateByID(ctx context.Context, objectID string) (*directory.Principal, error)
}

// errSkipTransition aborts a store update whose guard no longer holds, for
// example a completion racing a cancellation. It never leaves this package.
var errSkipTransition = errors.New("transition guard failed")

// Service orchestrates the namespace provisioning lifecycle.
type Service struct {
	cfg       *config.Config
	store     store.Store
	engine    WorkflowEngine
	directory PrincipalValidator
	log       logr.Logger
	metrics   *metrics

	// createMu serializes the conflict check with the insert so two
	// concurrent creates cannot both claim the same name or the last
	// quota slot.
	createMu sync.Mutex

	// bg outlives individual API requests; completion monitors and
	// best-effort workflow terminations run on it until Close.
	bg     context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService creates the orchestrator. dir may be nil when no directory is
// configured; requestedBy fields are then accepted unverified.
func NewService(cfg *config.Config, st store.Store, engine WorkflowEngine, dir PrincipalValidator, log logr.Logger, reg prometheus.Registerer) *Service {
	bg, cancel := context.WithCancel(context.Background())
	return &Service{
		cfg:       cfg,
		store:     st,
		engine:    engine,
		directory: dir,
		log:       log.WithName("provisioning"),
		metrics:   newMetrics(reg),
		bg:        bg,
		cancel:    cancel,
	}
}

// Close stops all background monitors and waits for them to exit.
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}

// activePhase reports whether a record in this phase occupies its namespace
// name and counts toward the team quota. Failed and cancelled requests
// release both.
func activePhase(p nsapi.Phase) bool {
	switch p {
	case nsapi.PhasePending, nsapi.PhaseProvisioning, nsapi.PhaseCompleted:
		return true
	}
	return false
}

// CreateNamespace validates the request, records it, and submits the
// provisioning workflow. It returns once the workflow is submitted (or
// submission has failed); completion is tracked by a background monitor. A
// failed submission still yields a record, in the FAILED phase, so the caller
// can inspect what went wrong; when the failure was an open circuit the
// breaker error is returned instead so callers learn the retry-after.
func (s *Service) CreateNamespace(ctx context.Context, req *nsapi.CreateNamespaceRequest) (*nsapi.ProvisioningRequest, error) {
	if req.Environment == "" {
		req.Environment = nsapi.EnvDevelopment
	}
	if req.NetworkPolicy == "" {
		req.NetworkPolicy = nsapi.NetworkIsolated
	}

	if err := s.validateRequest(req); err != nil {
		s.metrics.observeRequest("rejected")
		return nil, err
	}
	if err := s.validatePrincipal(ctx, req.RequestedBy); err != nil {
		s.metrics.observeRequest("rejected")
		return nil, err
	}
	record := &nsapi.ProvisioningRequest{
		RequestID:     uuid.NewString(),
		NamespaceName: req.NamespaceName,
		Team:          req.Team,
		Environment:   req.Environment,
		ResourceTier:  req.ResourceTier,
		NetworkPolicy: req.NetworkPolicy,
		Features:      append([]string(nil), req.Features...),
		RequestedBy:   req.RequestedBy,
		Phase:         nsapi.PhasePending,
		CreatedAt:     time.Now(),
	}
	if err := s.reserve(ctx, req, record); err != nil {
		return nil, err
	}

	log := s.log.WithValues("requestId", record.RequestID, "namespace", record.NamespaceName, "team", record.Team)
	log.Info("provisioning request accepted", "tier", record.ResourceTier, "environment", record.Environment)
	s.metrics.observeRequest("accepted")

	tier, fellBack := s.cfg.TierFor(record.ResourceTier)
	if fellBack {
		log.Info("unknown resource tier, using small", "tier", record.ResourceTier)
	}

	ref, err := s.engine.Submit(ctx, workflow.BuildNamespaceSpec(record, tier))
	if err != nil {
		log.Error(err, "workflow submission failed")
		s.metrics.observeRequest("submit_failed")
		failed, markErr := s.markFailed(ctx, record.RequestID, fmt.Sprintf("workflow submission failed: %v", err))
		if markErr != nil {
			return nil, markErr
		}
		// An open circuit is retryable; propagate it so the caller sees the
		// breaker's retry-after instead of a generic failed record.
		if breaker.IsOpen(err) {
			return nil, err
		}
		return failed, nil
	}

	updated, err := s.store.Update(ctx, record.RequestID, func(r *nsapi.ProvisioningRequest) error {
		if r.Phase != nsapi.PhasePending {
			return errSkipTransition
		}
		r.Phase = nsapi.PhaseProvisioning
		r.WorkflowRef = ref
		return nil
	})
	if errors.Is(err, errSkipTransition) {
		// Cancelled while the submission was in flight. The record is already
		// terminal and must stay that way; stop the freshly submitted
		// workflow instead of monitoring it.
		log.Info("request cancelled during submission, terminating workflow", "ref", ref)
		s.wg.Add(1)
		go s.terminateWorkflow(ref, log)
		return s.store.Get(ctx, record.RequestID)
	}
	if err != nil {
		return nil, fmt.Errorf("record workflow submission: %w", err)
	}

	s.wg.Add(1)
	go s.monitor(updated.RequestID, ref, log)

	return updated, nil
}

// GetStatus returns the current record for a request.
func (s *Service) GetStatus(ctx context.Context, requestID string) (*nsapi.ProvisioningRequest, error) {
	return s.store.Get(ctx, requestID)
}

// List returns all request records.
func (s *Service) List(ctx context.Context) ([]*nsapi.ProvisioningRequest, error) {
	return s.store.List(ctx)
}

// ListByTeam returns all request records owned by a team.
func (s *Service) ListByTeam(ctx context.Context, team string) ([]*nsapi.ProvisioningRequest, error) {
	return s.store.ListByTeam(ctx, team)
}

// Cancel moves a non-terminal request to CANCELLED and, when a workflow was
// already submitted, terminates it in the background. Cancelling a request
// that already reached a terminal phase is a no-op returning the unchanged
// record. The record transitions immediately; workflow termination is
// best-effort.
func (s *Service) Cancel(ctx context.Context, requestID string) (*nsapi.ProvisioningRequest, error) {
	var workflowRef string
	updated, err := s.store.Update(ctx, requestID, func(r *nsapi.ProvisioningRequest) error {
		if r.Phase.Terminal() {
			return errSkipTransition
		}
		workflowRef = r.WorkflowRef
		now := time.Now()
		r.Phase = nsapi.PhaseCancelled
		r.CompletedAt = &now
		return nil
	})
	if errors.Is(err, errSkipTransition) {
		return s.store.Get(ctx, requestID)
	}
	if err != nil {
		return nil, err
	}

	log := s.log.WithValues("requestId", requestID)
	log.Info("provisioning request cancelled", "workflowRef", workflowRef)
	s.metrics.observeCompletion(string(nsapi.PhaseCancelled), time.Since(updated.CreatedAt).Seconds())

	if workflowRef != "" {
		s.wg.Add(1)
		go s.terminateWorkflow(workflowRef, log)
	}
	return updated, nil
}

// validatePrincipal resolves requestedBy against the directory when one is
// configured. An unknown principal is a validation failure; directory
// outages propagate as-is so the API surface can signal retryability.
func (s *Service) validatePrincipal(ctx context.Context, requestedBy string) error {
	if s.directory == nil || requestedBy == "" {
		return nil
	}
	principal, err := s.directory.ValidateByID(ctx, requestedBy)
	if err != nil {
		if directory.IsNotFound(err) {
			return &ValidationError{Field: "requestedBy", Message: "principal not found in directory"}
		}
		return fmt.Errorf("validate principal: %w", err)
	}
	s.log.V(1).Info("principal validated",
		"principal", directory.Mask(requestedBy), "type", principal.PrincipalType)
	return nil
}

// reserve atomically checks conflicts and inserts the PENDING record. The
// mutex closes the window between the List scan and the Put where a
// concurrent create could claim the same name or quota slot.
func (s *Service) reserve(ctx context.Context, req *nsapi.CreateNamespaceRequest, record *nsapi.ProvisioningRequest) error {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	if err := s.checkConflicts(ctx, req); err != nil {
		s.metrics.observeRequest("rejected")
		return err
	}
	if err := s.store.Put(ctx, record); err != nil {
		return fmt.Errorf("persist request: %w", err)
	}
	return nil
}

// checkConflicts enforces namespace name uniqueness and the team quota
// ceiling against the current store contents. Callers hold createMu.
func (s *Service) checkConflicts(ctx context.Context, req *nsapi.CreateNamespaceRequest) error {
	all, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list requests: %w", err)
	}

	teamActive := 0
	for _, r := range all {
		if !activePhase(r.Phase) {
			continue
		}
		if r.NamespaceName == req.NamespaceName {
			return &ConflictError{Message: fmt.Sprintf("namespace %q already exists or is being provisioned", req.NamespaceName)}
		}
		if r.Team == req.Team {
			teamActive++
		}
	}
	if teamActive >= s.cfg.Provisioning.TeamQuotaCeiling {
		return &ConflictError{Message: fmt.Sprintf("team %q has reached its quota of %d namespaces", req.Team, s.cfg.Provisioning.TeamQuotaCeiling)}
	}
	return nil
}

// monitor follows a submitted workflow until it reaches a terminal phase,
// then records the outcome. It re-checks the request between waiting passes
// so a cancellation stops the monitor instead of being overwritten.
func (s *Service) monitor(requestID, ref string, log logr.Logger) {
	defer s.wg.Done()

	poll := s.cfg.Provisioning.PollInterval.Std()
	wait := s.cfg.Provisioning.WaitTimeout.Std()

	for {
		status, err := s.engine.WaitForCompletion(s.bg, ref, poll, wait)
		switch {
		case err == nil && status != nil && status.Phase.Terminal():
			s.recordOutcome(requestID, status, log)
			return
		case err == nil:
			// Wait window elapsed without a terminal phase; fall through to
			// the liveness check below and keep waiting.
		case workflow.IsNotFound(err):
			s.finish(requestID, nsapi.PhaseFailed, "workflow no longer exists in the engine", log)
			return
		case s.bg.Err() != nil:
			return
		default:
			log.Error(err, "workflow monitoring failed", "ref", ref)
			return
		}

		current, err := s.store.Get(s.bg, requestID)
		if err != nil || current.Phase != nsapi.PhaseProvisioning {
			return
		}
	}
}

// recordOutcome maps a terminal workflow status onto the request record.
func (s *Service) recordOutcome(requestID string, status *workflow.Status, log logr.Logger) {
	if status.Phase == workflow.PhaseSucceeded {
		s.finish(requestID, nsapi.PhaseCompleted, "", log)
		return
	}
	s.finish(requestID, nsapi.PhaseFailed, failureMessage(status), log)
}

// finish transitions a request out of PROVISIONING. The guard means a
// request cancelled while the workflow was running stays CANCELLED.
func (s *Service) finish(requestID string, phase nsapi.Phase, message string, log logr.Logger) {
	updated, err := s.store.Update(s.bg, requestID, func(r *nsapi.ProvisioningRequest) error {
		if r.Phase != nsapi.PhaseProvisioning {
			return errSkipTransition
		}
		now := time.Now()
		r.Phase = phase
		r.CompletedAt = &now
		r.ErrorMessage = message
		return nil
	})
	if err != nil {
		if !errors.Is(err, errSkipTransition) {
			log.Error(err, "failed to record request outcome", "phase", phase)
		}
		return
	}

	log.Info("provisioning request finished", "phase", phase, "error", message)
	s.metrics.observeCompletion(string(phase), time.Since(updated.CreatedAt).Seconds())
}

// markFailed moves a PENDING request to FAILED during submission, before any
// monitor exists for it. A request cancelled while the submission was in
// flight stays CANCELLED.
func (s *Service) markFailed(ctx context.Context, requestID, message string) (*nsapi.ProvisioningRequest, error) {
	updated, err := s.store.Update(ctx, requestID, func(r *nsapi.ProvisioningRequest) error {
		if r.Phase != nsapi.PhasePending {
			return errSkipTransition
		}
		now := time.Now()
		r.Phase = nsapi.PhaseFailed
		r.CompletedAt = &now
		r.ErrorMessage = message
		return nil
	})
	if errors.Is(err, errSkipTransition) {
		return s.store.Get(ctx, requestID)
	}
	if err != nil {
		return nil, fmt.Errorf("record submission failure: %w", err)
	}
	s.metrics.observeCompletion(string(nsapi.PhaseFailed), time.Since(updated.CreatedAt).Seconds())
	return updated, nil
}

// terminateWorkflow stops a cancelled request's workflow. Failures are
// logged and dropped; the namespace record is already CANCELLED and the
// engine will finish or time the workflow out on its own.
func (s *Service) terminateWorkflow(ref string, log logr.Logger) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(s.bg, time.Minute)
	defer cancel()

	cfg := retry.Defaults()
	cfg.MaxAttempts = 3
	err := retry.Do(ctx, cfg, func() error {
		return s.engine.Terminate(ctx, ref)
	})
	if err != nil {
		log.Info("workflow termination failed, leaving it to the engine", "ref", ref, "error", err.Error())
	}
}

// failureMessage summarizes why a workflow failed from its node statuses.
func failureMessage(status *workflow.Status) string {
	var parts []string
	for _, node := range status.Nodes {
		if (node.Phase == workflow.PhaseFailed || node.Phase == workflow.PhaseError) && node.Message != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", node.Name, node.Message))
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("workflow finished in phase %s", status.Phase)
	}
	return strings.Join(parts, "; ")
}
