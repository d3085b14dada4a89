package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nsforge/nsforge/pkg/nsapi"
)

func sampleRequest(id, team string) *nsapi.ProvisioningRequest {
	return &nsapi.ProvisioningRequest{
		RequestID:     id,
		NamespaceName: team + "-" + id,
		Team:          team,
		Environment:   nsapi.EnvDevelopment,
		ResourceTier:  nsapi.TierSmall,
		NetworkPolicy: nsapi.NetworkIsolated,
		Phase:         nsapi.PhasePending,
		CreatedAt:     time.Now(),
	}
}

func TestMemoryGetPut(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	req := sampleRequest("req-1", "demo")
	if err := m.Put(ctx, req); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := m.Get(ctx, "req-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.NamespaceName != "demo-req-1" {
		t.Errorf("unexpected record: %+v", got)
	}

	// Mutating the returned copy must not affect the stored record.
	got.Phase = nsapi.PhaseFailed
	again, _ := m.Get(ctx, "req-1")
	if again.Phase != nsapi.PhasePending {
		t.Error("Get returned a shared reference instead of a copy")
	}
}

func TestMemoryUpdateSerializes(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()
	req := sampleRequest("req-1", "demo")
	req.Features = []string{}
	if err := m.Put(ctx, req); err != nil {
		t.Fatalf("put: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Update(ctx, "req-1", func(r *nsapi.ProvisioningRequest) error {
				r.Features = append(r.Features, "f")
				return nil
			})
		}()
	}
	wg.Wait()

	got, _ := m.Get(ctx, "req-1")
	if len(got.Features) != 50 {
		t.Errorf("lost updates: expected 50 appended features, got %d", len(got.Features))
	}
}

func TestMemoryUpdateAbortsOnError(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()
	if err := m.Put(ctx, sampleRequest("req-1", "demo")); err != nil {
		t.Fatalf("put: %v", err)
	}

	boom := errors.New("rejected")
	_, err := m.Update(ctx, "req-1", func(r *nsapi.ProvisioningRequest) error {
		r.Phase = nsapi.PhaseFailed
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}

	got, _ := m.Get(ctx, "req-1")
	if got.Phase != nsapi.PhasePending {
		t.Error("aborted update must not be persisted")
	}
}

func TestMemoryListByTeam(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()

	for _, r := range []*nsapi.ProvisioningRequest{
		sampleRequest("req-1", "alpha"),
		sampleRequest("req-2", "beta"),
		sampleRequest("req-3", "alpha"),
	} {
		if err := m.Put(ctx, r); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	alpha, err := m.ListByTeam(ctx, "alpha")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(alpha) != 2 {
		t.Errorf("expected 2 alpha records, got %d", len(alpha))
	}

	all, err := m.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 records, got %d", len(all))
	}
}
