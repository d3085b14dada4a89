package provisioning

import (
	"errors"
	"fmt"

	"github.com/nsforge/nsforge/internal/store"
)

// ValidationError rejects a request whose input is malformed or violates
// policy. The workflow engine is never contacted for such requests.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConflictError rejects a request that collides with existing state, such as
// a duplicate namespace name or an exhausted team quota.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// IsConflict reports whether err is a state conflict.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsNotFound reports whether err means no record exists for the request ID.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
