package host

import (
	"errors"
	"fmt"
)

// ErrHostStart matches every LoadError.
var ErrHostStart = errors.New("native host failed to start")

// LoadError represents a failure to start or connect to the host process.
// A host that cannot link the native library exits during the handshake and
// surfaces here.
type LoadError struct {
	// Path is the host binary.
	Path string

	// Reason describes why starting failed.
	Reason string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to start native host %q: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to start native host %q: %s", e.Path, e.Reason)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrHostStart.
func (e *LoadError) Is(target error) bool {
	return target == ErrHostStart
}

func newLoadError(path, reason string, err error) *LoadError {
	return &LoadError{
		Path:   path,
		Reason: reason,
		Err:    err,
	}
}
