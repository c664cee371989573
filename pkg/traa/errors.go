package traa

import (
	"errors"
	"fmt"
)

// Code is a result code returned by the native library.
type Code int32

// Result codes reported by the native library.
const (
	CodeNone                 Code = 0
	CodeUnknown              Code = 1
	CodeInvalidArgument      Code = 2
	CodeInvalidState         Code = 3
	CodeNotImplemented       Code = 4
	CodeNotSupported         Code = 5
	CodeOutOfMemory          Code = 6
	CodeOutOfRange           Code = 7
	CodePermissionDenied     Code = 8
	CodeResourceBusy         Code = 9
	CodeResourceExhausted    Code = 10
	CodeResourceUnavailable  Code = 11
	CodeTimedOut             Code = 12
	CodeTooManyRequests      Code = 13
	CodeUnavailable          Code = 14
	CodeUnauthorized         Code = 15
	CodeUnsupportedMediaType Code = 16
	CodeAlreadyExists        Code = 17
	CodeNotFound             Code = 18
)

// Sentinel errors, one per non-zero Code.
var (
	ErrUnknown              = errors.New("unknown error")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrInvalidState         = errors.New("invalid state")
	ErrNotImplemented       = errors.New("not implemented")
	ErrNotSupported         = errors.New("not supported")
	ErrOutOfMemory          = errors.New("out of memory")
	ErrOutOfRange           = errors.New("out of range")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrResourceBusy         = errors.New("resource busy")
	ErrResourceExhausted    = errors.New("resource exhausted")
	ErrResourceUnavailable  = errors.New("resource unavailable")
	ErrTimedOut             = errors.New("timed out")
	ErrTooManyRequests      = errors.New("too many requests")
	ErrUnavailable          = errors.New("unavailable")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrAlreadyExists        = errors.New("already exists")
	ErrNotFound             = errors.New("not found")
)

var codeErrors = map[Code]error{
	CodeUnknown:              ErrUnknown,
	CodeInvalidArgument:      ErrInvalidArgument,
	CodeInvalidState:         ErrInvalidState,
	CodeNotImplemented:       ErrNotImplemented,
	CodeNotSupported:         ErrNotSupported,
	CodeOutOfMemory:          ErrOutOfMemory,
	CodeOutOfRange:           ErrOutOfRange,
	CodePermissionDenied:     ErrPermissionDenied,
	CodeResourceBusy:         ErrResourceBusy,
	CodeResourceExhausted:    ErrResourceExhausted,
	CodeResourceUnavailable:  ErrResourceUnavailable,
	CodeTimedOut:             ErrTimedOut,
	CodeTooManyRequests:      ErrTooManyRequests,
	CodeUnavailable:          ErrUnavailable,
	CodeUnauthorized:         ErrUnauthorized,
	CodeUnsupportedMediaType: ErrUnsupportedMediaType,
	CodeAlreadyExists:        ErrAlreadyExists,
	CodeNotFound:             ErrNotFound,
}

// String returns the human-readable name of the code.
func (c Code) String() string {
	if c == CodeNone {
		return "none"
	}
	if err, ok := codeErrors[c]; ok {
		return err.Error()
	}
	return fmt.Sprintf("code(%d)", int32(c))
}

// Err returns the sentinel for c, or nil for CodeNone.
func (c Code) Err() error {
	if c == CodeNone {
		return nil
	}
	if err, ok := codeErrors[c]; ok {
		return err
	}
	return ErrUnknown
}

// Error is a non-zero result from a native call.
type Error struct {
	// Op is the native operation that failed.
	Op string

	// Code is the native result code.
	Code Code
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("traa %s: %s (code %d)", e.Op, e.Code, int32(e.Code))
}

// Unwrap returns the sentinel matching Code.
func (e *Error) Unwrap() error {
	return e.Code.Err()
}

// CodeOf extracts the native result code from err. Errors that did not
// originate in the native library report CodeUnknown; nil reports CodeNone.
func CodeOf(err error) Code {
	if err == nil {
		return CodeNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

func result(op string, rc int32) error {
	if rc == 0 {
		return nil
	}
	return &Error{Op: op, Code: Code(rc)}
}
