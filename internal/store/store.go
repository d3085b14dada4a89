// Package store persists provisioning request records. The orchestrator's
// contract only needs get/put/list semantics; backends are an in-memory map
// for single-instance deployments and an S3-compatible object store for
// durability across restarts.
package store

import (
	"context"
	"errors"

	"github.com/nsforge/nsforge/pkg/nsapi"
)

// ErrNotFound indicates no record exists for the request ID.
var ErrNotFound = errors.New("provisioning request not found")

// Store is the request record repository. Implementations must be safe for
// concurrent use; the provisioning service guarantees a single writer per
// request ID on top of this interface.
type Store interface {
	// Get returns a copy of the record, or ErrNotFound.
	Get(ctx context.Context, requestID string) (*nsapi.ProvisioningRequest, error)

	// Put creates or replaces a record.
	Put(ctx context.Context, req *nsapi.ProvisioningRequest) error

	// Update applies fn to the current record and persists the result
	// atomically with respect to other Updates of the same ID. fn
	// receives a private copy; returning an error aborts the update.
	Update(ctx context.Context, requestID string, fn func(*nsapi.ProvisioningRequest) error) (*nsapi.ProvisioningRequest, error)

	// List returns copies of all records.
	List(ctx context.Context) ([]*nsapi.ProvisioningRequest, error)

	// ListByTeam returns copies of all records owned by a team.
	ListByTeam(ctx context.Context, team string) ([]*nsapi.ProvisioningRequest, error)
}
