package native

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for native linkage failures.
var (
	// ErrUnsatisfiedLink is matched by every load or symbol resolution failure.
	ErrUnsatisfiedLink = errors.New("unsatisfied link")

	// ErrLibraryNotFound is returned when no candidate file could be opened.
	ErrLibraryNotFound = errors.New("native library not found")

	// ErrSymbolNotFound is returned when a bound symbol is missing from the library.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrChecksumMismatch is returned when a candidate file fails checksum verification.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Attempt records one candidate the loader tried to open.
type Attempt struct {
	// Path is the candidate passed to the platform loader.
	Path string

	// Err is why the candidate was rejected.
	Err error
}

// LinkError describes a fatal failure to link the native library or one of its symbols.
type LinkError struct {
	// Name is the logical library name.
	Name string

	// Symbol is set when a symbol could not be resolved.
	Symbol string

	// Tried lists every candidate attempted, in order.
	Tried []Attempt

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *LinkError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "unsatisfied link: library %q", e.Name)
	if e.Symbol != "" {
		fmt.Fprintf(&b, ": symbol %q", e.Symbol)
	}
	if len(e.Tried) > 0 {
		paths := make([]string, 0, len(e.Tried))
		for _, a := range e.Tried {
			paths = append(paths, a.Path)
		}
		fmt.Fprintf(&b, " (tried %s)", strings.Join(paths, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both ErrUnsatisfiedLink and the underlying cause.
func (e *LinkError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUnsatisfiedLink}
	}
	return []error{ErrUnsatisfiedLink, e.Err}
}

// IsUnsatisfiedLink reports whether err is a native linkage failure.
func IsUnsatisfiedLink(err error) bool {
	return errors.Is(err, ErrUnsatisfiedLink)
}
