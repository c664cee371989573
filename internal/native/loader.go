// Package native resolves, loads and binds the native traa shared library.
//
// Loading happens at most once per Loader. The first call to Load performs
// the resolution; concurrent callers block until it completes and every later
// caller observes the same library or the same linkage error. A failed load is
// never retried.
package native

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/ebitengine/purego"
)

// Opener abstracts the platform dynamic loader.
type Opener interface {
	// Open loads the shared object at path and returns its handle.
	Open(path string) (uintptr, error)

	// Symbol resolves an exported symbol from a loaded handle.
	Symbol(handle uintptr, name string) (uintptr, error)
}

// SystemOpener returns the platform dynamic loader.
func SystemOpener() Opener {
	return systemOpener{}
}

// Options configures a Loader.
type Options struct {
	// Name is the logical library name, without prefix or extension.
	Name string

	// SearchPaths are directories checked before the platform search path.
	SearchPaths []string

	// Checksum optionally pins the library file, as "sha256:HEX" or "HEX".
	Checksum string

	// Opener overrides the platform dynamic loader.
	Opener Opener

	// Logger receives load diagnostics.
	Logger *slog.Logger
}

// Library is a loaded native module.
type Library struct {
	// Name is the logical name the library was requested by.
	Name string

	// Path is the candidate that was actually opened.
	Path string

	// Handle is the platform handle.
	Handle uintptr

	// LoadedAt is when the library became resident.
	LoadedAt time.Time

	opener Opener
}

// Loader loads one native library exactly once.
type Loader struct {
	opts   Options
	logger *slog.Logger

	once sync.Once
	done chan struct{}
	lib  *Library
	err  error
}

// NewLoader creates a loader. Nothing is loaded until Load is called.
func NewLoader(opts Options) *Loader {
	if opts.Opener == nil {
		opts.Opener = SystemOpener()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		opts:   opts,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Name returns the logical library name.
func (l *Loader) Name() string {
	return l.opts.Name
}

// SearchPaths returns a copy of the configured search directories.
func (l *Loader) SearchPaths() []string {
	return slices.Clone(l.opts.SearchPaths)
}

// Load resolves and opens the library on first call and returns the cached
// outcome on every later call.
func (l *Loader) Load() (*Library, error) {
	l.once.Do(func() {
		defer close(l.done)
		l.lib, l.err = l.load()
	})
	return l.lib, l.err
}

// Loaded reports whether Load has completed successfully.
func (l *Loader) Loaded() bool {
	select {
	case <-l.done:
		return l.err == nil
	default:
		return false
	}
}

func (l *Loader) load() (*Library, error) {
	name := l.opts.Name
	if name == "" {
		return nil, &LinkError{Err: errors.New("library name is required")}
	}

	paths := candidates(name, l.opts.SearchPaths)
	var tried []Attempt

	for _, path := range paths {
		// A pinned library is only opened from a file that was hashed. Bare
		// names resolved by the platform loader cannot be verified.
		if l.opts.Checksum != "" {
			err := errUnverifiable
			if onDisk(path) {
				err = verifyChecksum(path, l.opts.Checksum)
			}
			if err != nil {
				l.logger.Warn("native library rejected", "library", name, "path", path, "error", err)
				tried = append(tried, Attempt{Path: path, Err: err})
				continue
			}
		}

		handle, err := l.opts.Opener.Open(path)
		if err != nil {
			l.logger.Debug("native library candidate failed", "library", name, "path", path, "error", err)
			tried = append(tried, Attempt{Path: path, Err: err})
			continue
		}

		l.logger.Info("native library loaded", "library", name, "path", path)
		return &Library{
			Name:     name,
			Path:     path,
			Handle:   handle,
			LoadedAt: time.Now(),
			opener:   l.opts.Opener,
		}, nil
	}

	cause := ErrLibraryNotFound
	for _, a := range tried {
		if errors.Is(a.Err, ErrChecksumMismatch) {
			cause = fmt.Errorf("%w: %w", ErrLibraryNotFound, ErrChecksumMismatch)
			break
		}
	}

	linkErr := &LinkError{Name: name, Tried: tried, Err: cause}
	l.logger.Error("native library could not be loaded", "library", name, "error", linkErr)
	return nil, linkErr
}

// Lookup resolves a symbol address.
func (lib *Library) Lookup(symbol string) (uintptr, error) {
	addr, err := lib.opener.Symbol(lib.Handle, symbol)
	if err == nil && addr == 0 {
		err = errors.New("null address")
	}
	if err != nil {
		return 0, &LinkError{
			Name:   lib.Name,
			Symbol: symbol,
			Err:    fmt.Errorf("%w: %w", ErrSymbolNotFound, err),
		}
	}
	return addr, nil
}

// Bind resolves symbol and stores a Go function calling it into fptr, which
// must be a pointer to a func variable.
func (lib *Library) Bind(fptr any, symbol string) error {
	addr, err := lib.Lookup(symbol)
	if err != nil {
		return err
	}
	purego.RegisterFunc(fptr, addr)
	return nil
}
