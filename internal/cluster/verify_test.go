package cluster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/nsforge/nsforge/internal/config"
	"github.com/nsforge/nsforge/pkg/nsapi"
)

var smallTier = config.TierResources{CPULimit: "2", MemoryLimit: "4Gi", StorageQuota: "20Gi", MaxPods: 20}

func provisionedRecord() *nsapi.ProvisioningRequest {
	return &nsapi.ProvisioningRequest{
		RequestID:     "req-1",
		NamespaceName: "payments-dev",
		Team:          "payments",
		ResourceTier:  nsapi.TierSmall,
		NetworkPolicy: nsapi.NetworkIsolated,
		Phase:         nsapi.PhaseCompleted,
	}
}

func provisionedObjects() []runtime.Object {
	return []runtime.Object{
		&corev1.Namespace{
			ObjectMeta: metav1.ObjectMeta{
				Name: "payments-dev",
				Labels: map[string]string{
					teamLabel:    "payments",
					requestLabel: "req-1",
				},
			},
			Status: corev1.NamespaceStatus{Phase: corev1.NamespaceActive},
		},
		&corev1.ResourceQuota{
			ObjectMeta: metav1.ObjectMeta{Name: quotaName, Namespace: "payments-dev"},
			Spec: corev1.ResourceQuotaSpec{
				Hard: corev1.ResourceList{
					corev1.ResourcePods: resource.MustParse("20"),
				},
			},
		},
		&networkingv1.NetworkPolicy{
			ObjectMeta: metav1.ObjectMeta{Name: netPolicyName, Namespace: "payments-dev"},
		},
	}
}

func TestVerifyProvisionedNamespace(t *testing.T) {
	t.Parallel()

	v := NewVerifierWithClient(fake.NewSimpleClientset(provisionedObjects()...))
	report, err := v.VerifyNamespace(context.Background(), provisionedRecord(), smallTier)
	require.NoError(t, err)
	assert.True(t, report.Healthy(), "all checks should pass: %+v", report.Checks)
}

func TestVerifyMissingNamespace(t *testing.T) {
	t.Parallel()

	v := NewVerifierWithClient(fake.NewSimpleClientset())
	report, err := v.VerifyNamespace(context.Background(), provisionedRecord(), smallTier)
	require.NoError(t, err)
	require.Len(t, report.Checks, 1)
	assert.False(t, report.Healthy())
}

func TestVerifyDetectsDrift(t *testing.T) {
	t.Parallel()

	objects := provisionedObjects()
	ns := objects[0].(*corev1.Namespace)
	ns.Labels[teamLabel] = "finance"
	quota := objects[1].(*corev1.ResourceQuota)
	quota.Spec.Hard[corev1.ResourcePods] = resource.MustParse("5")

	v := NewVerifierWithClient(fake.NewSimpleClientset(objects...))
	report, err := v.VerifyNamespace(context.Background(), provisionedRecord(), smallTier)
	require.NoError(t, err)
	assert.False(t, report.Healthy())

	failures := map[string]string{}
	for _, c := range report.Checks {
		if !c.OK {
			failures[c.Name] = c.Detail
		}
	}
	assert.Contains(t, failures, "label "+teamLabel)
	assert.Contains(t, failures, "resource quota")
}

func TestVerifyOpenNamespaceSkipsNetworkPolicyCheck(t *testing.T) {
	t.Parallel()

	objects := provisionedObjects()[:2]
	record := provisionedRecord()
	record.NetworkPolicy = nsapi.NetworkOpen

	v := NewVerifierWithClient(fake.NewSimpleClientset(objects...))
	report, err := v.VerifyNamespace(context.Background(), record, smallTier)
	require.NoError(t, err)
	assert.True(t, report.Healthy())
	for _, c := range report.Checks {
		assert.NotEqual(t, "network policy", c.Name)
	}
}
