// Package cluster inspects the target Kubernetes cluster to verify that a
// provisioned namespace actually carries the objects the workflow was asked
// to create. It backs the doctor command; the orchestrator itself never
// talks to the cluster.
package cluster

import (
	"context"
	"fmt"
	"os"
	"strconv"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/nsforge/nsforge/internal/config"
	"github.com/nsforge/nsforge/pkg/nsapi"
)

const (
	teamLabel     = "nsforge.io/team"
	requestLabel  = "nsforge.io/request-id"
	quotaName     = "nsforge-quota"
	netPolicyName = "nsforge-network-policy"
)

// Check is the outcome of one verification step.
type Check struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// Report collects all checks for one namespace.
type Report struct {
	Namespace string  `json:"namespace"`
	Checks    []Check `json:"checks"`
}

// Healthy reports whether every check passed.
func (r *Report) Healthy() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// Verifier runs read-only checks against the cluster.
type Verifier struct {
	client kubernetes.Interface
}

// NewVerifier builds a verifier from a kubeconfig file.
func NewVerifier(kubeconfigPath string) (*Verifier, error) {
	if _, err := os.Stat(kubeconfigPath); err != nil {
		return nil, fmt.Errorf("kubeconfig not found at %s", kubeconfigPath)
	}
	restCfg, err := clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	client, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	return &Verifier{client: client}, nil
}

// NewVerifierWithClient builds a verifier around an existing client.
func NewVerifierWithClient(client kubernetes.Interface) *Verifier {
	return &Verifier{client: client}
}

// VerifyNamespace checks that the cluster state matches a completed request:
// the namespace exists with the expected labels, the resource quota carries
// the tier's pod ceiling, and a network policy is present unless the request
// asked for an open namespace.
func (v *Verifier) VerifyNamespace(ctx context.Context, record *nsapi.ProvisioningRequest, tier config.TierResources) (*Report, error) {
	report := &Report{Namespace: record.NamespaceName}

	ns, err := v.client.CoreV1().Namespaces().Get(ctx, record.NamespaceName, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		report.Checks = append(report.Checks, Check{Name: "namespace exists", Detail: "not found"})
		return report, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get namespace %s: %w", record.NamespaceName, err)
	}

	report.Checks = append(report.Checks,
		Check{Name: "namespace exists", OK: true},
		v.checkPhase(ns),
		v.checkLabel(ns, teamLabel, record.Team),
		v.checkLabel(ns, requestLabel, record.RequestID),
	)

	report.Checks = append(report.Checks, v.checkQuota(ctx, record.NamespaceName, tier))

	if record.NetworkPolicy != nsapi.NetworkOpen {
		report.Checks = append(report.Checks, v.checkNetworkPolicy(ctx, record.NamespaceName))
	}
	return report, nil
}

func (v *Verifier) checkPhase(ns *corev1.Namespace) Check {
	if ns.Status.Phase == corev1.NamespaceActive {
		return Check{Name: "namespace active", OK: true}
	}
	return Check{Name: "namespace active", Detail: fmt.Sprintf("phase is %s", ns.Status.Phase)}
}

func (v *Verifier) checkLabel(ns *corev1.Namespace, label, want string) Check {
	name := fmt.Sprintf("label %s", label)
	got, ok := ns.Labels[label]
	switch {
	case !ok:
		return Check{Name: name, Detail: "missing"}
	case got != want:
		return Check{Name: name, Detail: fmt.Sprintf("expected %q, found %q", want, got)}
	}
	return Check{Name: name, OK: true}
}

func (v *Verifier) checkQuota(ctx context.Context, namespace string, tier config.TierResources) Check {
	const name = "resource quota"

	quota, err := v.client.CoreV1().ResourceQuotas(namespace).Get(ctx, quotaName, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return Check{Name: name, Detail: quotaName + " not found"}
	}
	if err != nil {
		return Check{Name: name, Detail: err.Error()}
	}

	pods, ok := quota.Spec.Hard[corev1.ResourcePods]
	if !ok {
		return Check{Name: name, Detail: "no pod ceiling in quota"}
	}
	if pods.String() != strconv.Itoa(tier.MaxPods) {
		return Check{Name: name, Detail: fmt.Sprintf("pod ceiling %s does not match tier value %d", pods.String(), tier.MaxPods)}
	}
	return Check{Name: name, OK: true}
}

func (v *Verifier) checkNetworkPolicy(ctx context.Context, namespace string) Check {
	const name = "network policy"

	_, err := v.client.NetworkingV1().NetworkPolicies(namespace).Get(ctx, netPolicyName, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return Check{Name: name, Detail: netPolicyName + " not found"}
	}
	if err != nil {
		return Check{Name: name, Detail: err.Error()}
	}
	return Check{Name: name, OK: true}
}
