package store

import (
	"context"
	"sort"
	"sync"

	"github.com/nsforge/nsforge/pkg/nsapi"
)

// Memory is a map-backed store for single-instance deployments and tests.
type Memory struct {
	mu       sync.RWMutex
	requests map[string]*nsapi.ProvisioningRequest
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{requests: make(map[string]*nsapi.ProvisioningRequest)}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, requestID string) (*nsapi.ProvisioningRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	req, ok := m.requests[requestID]
	if !ok {
		return nil, ErrNotFound
	}
	return req.Clone(), nil
}

// Put implements Store.
func (m *Memory) Put(_ context.Context, req *nsapi.ProvisioningRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests[req.RequestID] = req.Clone()
	return nil
}

// Update implements Store. The write lock is held across fn so concurrent
// updates of the same record serialize.
func (m *Memory) Update(_ context.Context, requestID string, fn func(*nsapi.ProvisioningRequest) error) (*nsapi.ProvisioningRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.requests[requestID]
	if !ok {
		return nil, ErrNotFound
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	m.requests[requestID] = next
	return next.Clone(), nil
}

// List implements Store. Records are sorted by creation time, newest last.
func (m *Memory) List(_ context.Context) ([]*nsapi.ProvisioningRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*nsapi.ProvisioningRequest, 0, len(m.requests))
	for _, req := range m.requests {
		out = append(out, req.Clone())
	}
	sortByCreation(out)
	return out, nil
}

// ListByTeam implements Store.
func (m *Memory) ListByTeam(_ context.Context, team string) ([]*nsapi.ProvisioningRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*nsapi.ProvisioningRequest
	for _, req := range m.requests {
		if req.Team == team {
			out = append(out, req.Clone())
		}
	}
	sortByCreation(out)
	return out, nil
}

func sortByCreation(reqs []*nsapi.ProvisioningRequest) {
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].CreatedAt.Equal(reqs[j].CreatedAt) {
			return reqs[i].RequestID < reqs[j].RequestID
		}
		return reqs[i].CreatedAt.Before(reqs[j].CreatedAt)
	})
}
