// Package nsapi defines the wire types exchanged between the nsforge
// orchestrator, its CLI, and other API consumers.
package nsapi

import "time"

// Environment identifies the deployment stage a namespace belongs to.
type Environment string

// Valid environments.
const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// ResourceTier names a bundle of compute limits applied to a namespace.
type ResourceTier string

// Valid resource tiers.
const (
	TierMicro  ResourceTier = "micro"
	TierSmall  ResourceTier = "small"
	TierMedium ResourceTier = "medium"
	TierLarge  ResourceTier = "large"
)

// NetworkPolicy selects the network isolation profile for a namespace.
type NetworkPolicy string

// Valid network policies.
const (
	NetworkIsolated   NetworkPolicy = "isolated"
	NetworkTeamShared NetworkPolicy = "team-shared"
	NetworkOpen       NetworkPolicy = "open"
)

// Phase is the lifecycle state of a provisioning request.
type Phase string

// Request lifecycle phases. Completed, Failed, and Cancelled are terminal.
const (
	PhasePending      Phase = "PENDING"
	PhaseProvisioning Phase = "PROVISIONING"
	PhaseCompleted    Phase = "COMPLETED"
	PhaseFailed       Phase = "FAILED"
	PhaseCancelled    Phase = "CANCELLED"
)

// Terminal reports whether the phase is final. Once a request reaches a
// terminal phase it never changes again.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseCompleted, PhaseFailed, PhaseCancelled:
		return true
	}
	return false
}

// CreateNamespaceRequest is the body of POST /namespaces.
type CreateNamespaceRequest struct {
	NamespaceName string        `json:"namespaceName"`
	Team          string        `json:"team"`
	Environment   Environment   `json:"environment"`
	ResourceTier  ResourceTier  `json:"resourceTier"`
	NetworkPolicy NetworkPolicy `json:"networkPolicy"`
	Features      []string      `json:"features,omitempty"`

	// RequestedBy is the directory object ID or principal name of the
	// caller. When a directory is configured it is validated before any
	// workflow is submitted.
	RequestedBy string `json:"requestedBy,omitempty"`
}

// ProvisioningRequest is the full record of a namespace provisioning request.
type ProvisioningRequest struct {
	RequestID     string        `json:"requestId"`
	NamespaceName string        `json:"namespaceName"`
	Team          string        `json:"team"`
	Environment   Environment   `json:"environment"`
	ResourceTier  ResourceTier  `json:"resourceTier"`
	NetworkPolicy NetworkPolicy `json:"networkPolicy"`
	Features      []string      `json:"features,omitempty"`
	RequestedBy   string        `json:"requestedBy,omitempty"`

	Phase Phase `json:"status"`

	// WorkflowRef is the identifier of the submitted workflow instance.
	// It is empty until submission succeeds and is set at most once.
	WorkflowRef string `json:"workflowRef,omitempty"`

	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
}

// Clone returns a deep copy of the request record.
func (r *ProvisioningRequest) Clone() *ProvisioningRequest {
	if r == nil {
		return nil
	}
	out := *r
	if r.Features != nil {
		out.Features = append([]string(nil), r.Features...)
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}

// CreateNamespaceResponse is returned by POST /namespaces with status 202.
type CreateNamespaceResponse struct {
	RequestID string `json:"requestId"`
	Status    Phase  `json:"status"`
}

// ErrorResponse is the JSON body of any non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`

	// RetryAfterSeconds is set when a dependency circuit is open and the
	// caller should back off before retrying.
	RetryAfterSeconds int `json:"retryAfterSeconds,omitempty"`
}

// BreakerStatus is the operator-facing snapshot of one circuit breaker,
// served by GET /breakers.
type BreakerStatus struct {
	Name                string    `json:"name"`
	State               string    `json:"state"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	RequestCount        int64     `json:"requestCount"`
	LastFailureTime     time.Time `json:"lastFailureTime,omitzero"`
	NextAttemptAt       time.Time `json:"nextAttemptAt,omitzero"`
}
