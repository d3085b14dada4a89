package directory

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the principal does not exist in the directory.
var ErrNotFound = errors.New("principal not found")

// AuthError indicates the directory rejected our credentials. This is a
// dependency failure from the orchestrator's point of view: the directory
// is unusable until the token is fixed.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("directory authentication failed (status %d)", e.StatusCode)
}

// ServiceError is any other non-2xx directory response.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("directory service error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a legitimate negative lookup.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthenticated reports whether err is a credential failure.
func IsUnauthenticated(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
