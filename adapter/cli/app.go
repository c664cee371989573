package cli

import (
	"context"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/traa/internal/host"
	"github.com/felixgeelhaar/traa/internal/runtime"
	"github.com/felixgeelhaar/traa/pkg/config"
	"github.com/felixgeelhaar/traa/pkg/traa"
)

// Backend modes reported by Probe.
const (
	ModeInProcess = "in-process"
	ModeIsolated  = "isolated"
)

// App holds the CLI application dependencies. The native backend is
// created on first use so commands that never call into the library do not
// load it.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *runtime.MetricsCollector

	loader *traa.Loader
	host   *host.Client

	once     sync.Once
	executor *runtime.Executor
	libPath  string
	err      error

	mu          sync.Mutex
	initialized bool
}

// NewApp creates an application from configuration.
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}

	return &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: runtime.NewMetricsCollector(),
		loader:  traa.NewLoader(cfg.LoaderOptions(logger)...),
	}
}

// NewAppWithBackend creates an application around an existing backend.
func NewAppWithBackend(cfg *config.Config, backend runtime.Backend, logger *slog.Logger) *App {
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: runtime.NewMetricsCollector(),
	}
	if a.Logger == nil {
		a.Logger = slog.Default()
	}
	a.once.Do(func() {
		a.executor = runtime.NewExecutor(backend, a.Metrics, a.Logger, a.executorConfig())
	})
	return a
}

// Mode reports whether native calls run in this process or in the host.
func (a *App) Mode() string {
	if a.Config != nil && a.Config.Isolated {
		return ModeIsolated
	}
	return ModeInProcess
}

func (a *App) executorConfig() runtime.ExecutorConfig {
	ec := runtime.DefaultExecutorConfig()
	if a.Config == nil {
		return ec
	}
	ec.CallTimeout = a.Config.CallTimeout
	if a.Config.BreakerFailures <= 0 {
		ec.CircuitBreakerEnabled = false
	} else {
		ec.FailureThreshold = uint32(a.Config.BreakerFailures)
	}
	if a.Config.BreakerOpenDelay > 0 {
		ec.Timeout = a.Config.BreakerOpenDelay
	}
	return ec
}

// Executor returns the executor for the configured backend.
func (a *App) Executor() (*runtime.Executor, error) {
	a.once.Do(func() {
		var backend runtime.Backend
		if a.Mode() == ModeIsolated {
			a.host = host.NewClient(a.Config.HostBinary, a.Config.StartTimeout, a.Logger)
			backend = a.host
		} else {
			lib, err := a.loader.Load()
			if err != nil {
				a.err = err
				return
			}
			a.libPath = lib.Path()
			backend = runtime.NewInProcess(lib)
		}
		a.executor = runtime.NewExecutor(backend, a.Metrics, a.Logger, a.executorConfig())
	})
	return a.executor, a.err
}

// InitNative initialises the native library with the configured log settings.
// Native errors and device events are forwarded to the application log.
func (a *App) InitNative(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized {
		return nil
	}
	exec, err := a.Executor()
	if err != nil {
		return err
	}

	cfg := traa.Config{Handler: a.eventHandler()}
	if a.Config != nil {
		cfg.Log = a.Config.NativeLog
	} else {
		cfg.Log = traa.DefaultLogConfig()
	}
	if err := exec.Init(ctx, cfg); err != nil {
		return err
	}
	a.initialized = true
	return nil
}

// Close releases the native library if it was initialised and stops the host.
func (a *App) Close(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var err error
	if a.initialized && a.executor != nil {
		err = a.executor.Release(ctx)
		a.initialized = false
	}
	if a.host != nil {
		a.host.Stop()
	}
	return err
}

func (a *App) eventHandler() traa.EventHandler {
	return traa.EventHandlerFuncs{
		Error: func(code traa.Code, message string) {
			a.Logger.Error("native error", "code", code.String(), "message", message)
		},
		DeviceEvent: func(info traa.DeviceInfo, event traa.DeviceEvent) {
			a.Logger.Info("device event",
				"event", int32(event),
				"device_id", info.ID,
				"device_name", info.Name,
				"device_type", int32(info.Type),
			)
		},
	}
}

// ProbeResult reports whether the native library is usable.
type ProbeResult struct {
	Library         string `json:"library"`
	Mode            string `json:"mode"`
	Loaded          bool   `json:"loaded"`
	Path            string `json:"path,omitempty"`
	Message         string `json:"message,omitempty"`
	Error           string `json:"error,omitempty"`
	UnsatisfiedLink bool   `json:"unsatisfied_link,omitempty"`
}

// Probe loads the library and calls its string function.
func (a *App) Probe(ctx context.Context) ProbeResult {
	result := ProbeResult{Mode: a.Mode(), Library: traa.LibraryName}
	if a.Config != nil && a.Config.LibraryName != "" {
		result.Library = a.Config.LibraryName
	}

	exec, err := a.Executor()
	if err == nil {
		result.Message, err = exec.StringFromJNI(ctx)
	}
	if err != nil {
		result.Error = err.Error()
		result.UnsatisfiedLink = traa.IsUnsatisfiedLink(err)
		return result
	}

	result.Loaded = true
	result.Path = a.libPath
	return result
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
