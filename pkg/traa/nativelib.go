// Package traa binds the native traa library.
//
// The library is loaded on first use, exactly once per Loader, and every
// symbol the binding needs is resolved in the same step. A missing library or
// symbol is a fatal linkage error: it is returned by New, raised as a panic by
// MustNew, and never retried.
//
//	lib := traa.MustNew()
//	fmt.Println(lib.StringFromJNI())
package traa

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"unsafe"

	"github.com/felixgeelhaar/traa/internal/native"
)

// LibraryName is the logical name of the native module.
const LibraryName = "traa"

// Exported C symbols.
const (
	SymbolStringFromJNI   = "traa_string_from_jni"
	SymbolInit            = "traa_init"
	SymbolRelease         = "traa_release"
	SymbolSetEventHandler = "traa_set_event_handler"
	SymbolSetLogLevel     = "traa_set_log_level"
	SymbolSetLog          = "traa_set_log"
)

// ErrUnsatisfiedLink is matched by every linkage failure.
var ErrUnsatisfiedLink = native.ErrUnsatisfiedLink

// symbols holds the foreign functions resolved from the library.
type symbols struct {
	stringFromJNI   func() string
	init            func(config unsafe.Pointer) int32
	release         func()
	setEventHandler func(handler unsafe.Pointer) int32
	setLogLevel     func(level int32)
	setLog          func(config unsafe.Pointer) int32
}

func (s *symbols) bind(lib *native.Library) error {
	bindings := []struct {
		fptr   any
		symbol string
	}{
		{&s.stringFromJNI, SymbolStringFromJNI},
		{&s.init, SymbolInit},
		{&s.release, SymbolRelease},
		{&s.setEventHandler, SymbolSetEventHandler},
		{&s.setLogLevel, SymbolSetLogLevel},
		{&s.setLog, SymbolSetLog},
	}
	for _, b := range bindings {
		if err := lib.Bind(b.fptr, b.symbol); err != nil {
			return err
		}
	}
	return nil
}

// Option configures a Loader.
type Option func(*native.Options)

// WithLibraryName overrides the logical library name.
func WithLibraryName(name string) Option {
	return func(o *native.Options) { o.Name = name }
}

// WithSearchPaths sets directories searched before the platform search path.
func WithSearchPaths(paths ...string) Option {
	return func(o *native.Options) { o.SearchPaths = paths }
}

// WithChecksum pins the library file to a sha256 checksum.
func WithChecksum(checksum string) Option {
	return func(o *native.Options) { o.Checksum = checksum }
}

// WithOpener replaces the platform dynamic loader.
func WithOpener(opener native.Opener) Option {
	return func(o *native.Options) { o.Opener = opener }
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *native.Options) { o.Logger = logger }
}

// Loader owns one load-once state for the native library.
type Loader struct {
	native *native.Loader

	once sync.Once
	lib  *native.Library
	syms *symbols
	err  error
}

// NewLoader creates a loader. Nothing is loaded until Load is called.
func NewLoader(opts ...Option) *Loader {
	o := native.Options{
		Name:        LibraryName,
		SearchPaths: native.DefaultSearchPaths(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Loader{native: native.NewLoader(o)}
}

// SearchPaths returns the directories checked before the platform search path.
func (l *Loader) SearchPaths() []string {
	return l.native.SearchPaths()
}

// Load loads the library and binds its symbols on first call. Every call
// returns a new NativeLib sharing the same resident library.
func (l *Loader) Load() (*NativeLib, error) {
	l.once.Do(func() {
		lib, err := l.native.Load()
		if err != nil {
			l.err = err
			return
		}
		syms := &symbols{}
		if err := syms.bind(lib); err != nil {
			l.err = err
			return
		}
		l.lib, l.syms = lib, syms
	})
	if l.err != nil {
		return nil, l.err
	}
	return &NativeLib{lib: l.lib, syms: l.syms}, nil
}

// MustLoad is like Load but panics on linkage failure.
func (l *Loader) MustLoad() *NativeLib {
	n, err := l.Load()
	if err != nil {
		panic(err)
	}
	return n
}

var defaultLoader = sync.OnceValue(func() *Loader { return NewLoader() })

// Default returns the process-wide loader.
func Default() *Loader {
	return defaultLoader()
}

// New returns a binding backed by the process-wide loader.
func New() (*NativeLib, error) {
	return Default().Load()
}

// MustNew returns a binding backed by the process-wide loader and panics if
// the native library cannot be linked.
func MustNew() *NativeLib {
	return Default().MustLoad()
}

// NativeLib calls into the loaded native library.
type NativeLib struct {
	lib  *native.Library
	syms *symbols
}

// Path returns the file the native library was loaded from.
func (n *NativeLib) Path() string {
	if n.lib == nil {
		return ""
	}
	return n.lib.Path
}

// StringFromJNI calls the native string function. Its content is defined by
// the native implementation.
func (n *NativeLib) StringFromJNI() string {
	return n.syms.stringFromJNI()
}

// Init initialises the native library. Calling it again after a successful
// Init is left to the native library to accept or reject.
func (n *NativeLib) Init(cfg Config) error {
	if err := cfg.Log.Validate(); err != nil {
		return err
	}

	c := cConfig{logConfig: newCLogConfig(cfg.Log)}
	if cfg.Handler != nil {
		handler, err := eventTrampolines()
		if err != nil {
			return fmt.Errorf("traa init: event handler: %w", err)
		}
		c.eventHandler = handler
	}

	var pinner runtime.Pinner
	defer pinner.Unpin()
	pinner.Pin(&c)
	c.logConfig.pin(&pinner)

	installHandler(cfg.Handler)
	if err := result("init", n.syms.init(unsafe.Pointer(&c))); err != nil {
		installHandler(nil)
		return err
	}
	return nil
}

// Release releases all native resources. Unfinished native tasks are canceled.
func (n *NativeLib) Release() {
	n.syms.release()
	installHandler(nil)
}

// SetEventHandler replaces the native event handler.
func (n *NativeLib) SetEventHandler(h EventHandler) error {
	if h == nil {
		return &Error{Op: "set_event_handler", Code: CodeInvalidArgument}
	}

	c, err := eventTrampolines()
	if err != nil {
		return fmt.Errorf("traa set_event_handler: %w", err)
	}

	var pinner runtime.Pinner
	defer pinner.Unpin()
	pinner.Pin(&c)

	previous := installedHandler()
	installHandler(h)
	if err := result("set_event_handler", n.syms.setEventHandler(unsafe.Pointer(&c))); err != nil {
		installHandler(previous)
		return err
	}
	return nil
}

// SetLogLevel sets native log verbosity. It is stateless and may be called at any time.
func (n *NativeLib) SetLogLevel(level LogLevel) error {
	if !level.IsValid() {
		return &Error{Op: "set_log_level", Code: CodeInvalidArgument}
	}
	n.syms.setLogLevel(int32(level))
	return nil
}

// SetLog configures native log output.
func (n *NativeLib) SetLog(cfg LogConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	c := newCLogConfig(cfg)
	var pinner runtime.Pinner
	defer pinner.Unpin()
	pinner.Pin(&c)
	c.pin(&pinner)

	return result("set_log", n.syms.setLog(unsafe.Pointer(&c)))
}

// IsUnsatisfiedLink reports whether err is a native linkage failure.
func IsUnsatisfiedLink(err error) bool {
	return errors.Is(err, ErrUnsatisfiedLink)
}
