// Package runtime executes native library calls with circuit breakers and metrics.
package runtime

import (
	"context"

	"github.com/felixgeelhaar/traa/pkg/traa"
)

// Backend performs native library calls, either in this process or in an isolated host.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	StringFromJNI(ctx context.Context) (string, error)
	Init(ctx context.Context, cfg traa.Config) error
	Release(ctx context.Context) error
	SetLogLevel(ctx context.Context, level traa.LogLevel) error
	SetLog(ctx context.Context, cfg traa.LogConfig) error
}

// InProcess calls the native library loaded into this process. Native calls
// cannot be interrupted once entered, so ctx is only checked before the call.
type InProcess struct {
	lib *traa.NativeLib
}

// NewInProcess wraps a loaded binding.
func NewInProcess(lib *traa.NativeLib) *InProcess {
	return &InProcess{lib: lib}
}

// Name implements Backend.
func (b *InProcess) Name() string { return "in-process" }

// StringFromJNI implements Backend.
func (b *InProcess) StringFromJNI(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return b.lib.StringFromJNI(), nil
}

// Init implements Backend.
func (b *InProcess) Init(ctx context.Context, cfg traa.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.lib.Init(cfg)
}

// Release implements Backend.
func (b *InProcess) Release(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.lib.Release()
	return nil
}

// SetLogLevel implements Backend.
func (b *InProcess) SetLogLevel(ctx context.Context, level traa.LogLevel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.lib.SetLogLevel(level)
}

// SetLog implements Backend.
func (b *InProcess) SetLog(ctx context.Context, cfg traa.LogConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.lib.SetLog(cfg)
}
