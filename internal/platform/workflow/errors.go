package workflow

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the workflow reference does not exist on the engine.
// It is a legitimate negative result, not an engine failure.
var ErrNotFound = errors.New("workflow not found")

// EngineError is a non-2xx response from the workflow engine.
type EngineError struct {
	StatusCode int
	Message    string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("workflow engine error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err indicates a missing workflow reference.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
