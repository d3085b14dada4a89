package workflow

import (
	"strconv"
	"time"

	"github.com/nsforge/nsforge/internal/config"
	"github.com/nsforge/nsforge/pkg/nsapi"
)

// Phase is the engine-reported state of a workflow instance.
type Phase string

// Workflow phases as reported by the engine.
const (
	PhasePending   Phase = "Pending"
	PhaseRunning   Phase = "Running"
	PhaseSucceeded Phase = "Succeeded"
	PhaseFailed    Phase = "Failed"
	PhaseError     Phase = "Error"
)

// Terminal reports whether the engine will make no further progress on a
// workflow in this phase.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseSucceeded, PhaseFailed, PhaseError:
		return true
	}
	return false
}

// StepResources bounds one workflow step's execution.
type StepResources struct {
	CPULimit    string `json:"cpuLimit,omitempty"`
	MemoryLimit string `json:"memoryLimit,omitempty"`
}

// Step is one node of the submitted DAG. Steps with an empty DependsOn list
// are roots; the engine schedules a step once all its dependencies succeed.
type Step struct {
	Name      string            `json:"name"`
	Template  string            `json:"template"`
	DependsOn []string          `json:"dependsOn,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	Resources StepResources     `json:"resources,omitempty"`
}

// Spec is the declarative workflow submitted to the engine. The engine owns
// scheduling and execution; this client only describes the graph.
type Spec struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
	Steps  []Step            `json:"steps"`
}

// NodeStatus is the engine-reported state of one step.
type NodeStatus struct {
	Name    string `json:"name"`
	Phase   Phase  `json:"phase"`
	Message string `json:"message,omitempty"`
}

// Status is the engine-reported state of a workflow instance.
type Status struct {
	Ref        string       `json:"ref"`
	Phase      Phase        `json:"phase"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt *time.Time   `json:"finishedAt,omitempty"`
	Nodes      []NodeStatus `json:"nodes,omitempty"`
}

// stepResources converts the tier bundle into per-step limits. Provisioning
// steps are lightweight API calls; they run well below the namespace's own
// quota.
var provisionStepResources = StepResources{CPULimit: "200m", MemoryLimit: "256Mi"}

// BuildNamespaceSpec constructs the provisioning DAG for one namespace
// request: validate, create the namespace, then four parallel configuration
// steps converging on finalize. The tier's resource values are embedded
// verbatim so later tier-table changes never affect an already-submitted
// workflow.
func BuildNamespaceSpec(req *nsapi.ProvisioningRequest, tier config.TierResources) *Spec {
	params := map[string]string{
		"namespace":     req.NamespaceName,
		"team":          req.Team,
		"environment":   string(req.Environment),
		"networkPolicy": string(req.NetworkPolicy),
		"cpuLimit":      tier.CPULimit,
		"memoryLimit":   tier.MemoryLimit,
		"storageQuota":  tier.StorageQuota,
		"maxPods":       strconv.Itoa(tier.MaxPods),
	}

	step := func(name, template string, deps ...string) Step {
		return Step{
			Name:      name,
			Template:  template,
			DependsOn: deps,
			Params:    params,
			Resources: provisionStepResources,
		}
	}

	configureSteps := []string{"apply-rbac", "set-resource-quotas", "apply-network-policies", "enable-monitoring"}

	steps := []Step{
		step("validate", "validate"),
		step("create-namespace", "create-namespace", "validate"),
	}
	for _, name := range configureSteps {
		steps = append(steps, step(name, name, "create-namespace"))
	}
	steps = append(steps, step("finalize", "finalize", configureSteps...))

	return &Spec{
		Name: "provision-" + req.NamespaceName,
		Labels: map[string]string{
			"nsforge.io/request-id": req.RequestID,
			"nsforge.io/team":       req.Team,
		},
		Steps: steps,
	}
}
