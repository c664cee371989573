// Package runtimetest provides an in-memory runtime.Backend for tests.
package runtimetest

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/traa/pkg/traa"
)

// Backend records calls and returns Err from each of them.
type Backend struct {
	mu sync.Mutex

	Text string
	Err  error

	Calls       []string
	InitConfig  traa.Config
	LogConfig   traa.LogConfig
	Level       traa.LogLevel
	Initialized bool
}

// NewBackend returns a backend that answers StringFromJNI with text.
func NewBackend(text string) *Backend {
	return &Backend{Text: text}
}

func (b *Backend) record(op string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls = append(b.Calls, op)
	return b.Err
}

// CallCount returns how many calls reached the backend.
func (b *Backend) CallCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Calls)
}

// SetErr changes the error returned by later calls.
func (b *Backend) SetErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Err = err
}

// Name implements runtime.Backend.
func (b *Backend) Name() string { return "test" }

// StringFromJNI implements runtime.Backend.
func (b *Backend) StringFromJNI(ctx context.Context) (string, error) {
	if err := b.record("string_from_jni"); err != nil {
		return "", err
	}
	return b.Text, nil
}

// Init implements runtime.Backend.
func (b *Backend) Init(ctx context.Context, cfg traa.Config) error {
	if err := b.record("init"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.InitConfig = cfg
	b.Initialized = true
	return nil
}

// Release implements runtime.Backend.
func (b *Backend) Release(ctx context.Context) error {
	if err := b.record("release"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Initialized = false
	return nil
}

// SetLogLevel implements runtime.Backend. Levels are validated like the native binding does.
func (b *Backend) SetLogLevel(ctx context.Context, level traa.LogLevel) error {
	if !level.IsValid() {
		return &traa.Error{Op: "set_log_level", Code: traa.CodeInvalidArgument}
	}
	if err := b.record("set_log_level"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Level = level
	return nil
}

// SetLog implements runtime.Backend. The configuration is validated like the native binding does.
func (b *Backend) SetLog(ctx context.Context, cfg traa.LogConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := b.record("set_log"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.LogConfig = cfg
	return nil
}
