package runtime

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/traa/pkg/observability"
	"github.com/felixgeelhaar/traa/pkg/traa"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker open")

// Executor runs backend calls with circuit breaker protection and metrics.
type Executor struct {
	backend Backend
	breaker *gobreaker.CircuitBreaker[any]
	metrics *MetricsCollector
	logger  *slog.Logger
	config  ExecutorConfig
}

// ExecutorConfig configures the executor behavior.
type ExecutorConfig struct {
	// CircuitBreakerEnabled enables the circuit breaker.
	CircuitBreakerEnabled bool

	// MaxRequests is the maximum number of requests allowed in half-open state.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state.
	Interval time.Duration

	// Timeout is the period of the open state.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that trips the breaker.
	FailureThreshold uint32

	// CallTimeout bounds each call. Zero disables the deadline.
	CallTimeout time.Duration
}

// DefaultExecutorConfig returns a sensible default configuration.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		CircuitBreakerEnabled: true,
		MaxRequests:           1,
		Interval:              time.Minute,
		Timeout:               30 * time.Second,
		FailureThreshold:      5,
		CallTimeout:           10 * time.Second,
	}
}

// NewExecutor creates an executor for backend.
func NewExecutor(backend Backend, metrics *MetricsCollector, logger *slog.Logger, config ExecutorConfig) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetricsCollector()
	}

	e := &Executor{
		backend: backend,
		metrics: metrics,
		logger:  logger,
		config:  config,
	}

	if config.CircuitBreakerEnabled {
		e.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name:        backend.Name(),
			MaxRequests: config.MaxRequests,
			Interval:    config.Interval,
			Timeout:     config.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= config.FailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				e.logger.Info("circuit breaker state changed",
					"backend", name,
					"from", from.String(),
					"to", to.String(),
				)
				e.metrics.RecordCircuitBreakerChange(name, to.String())
			},
			IsSuccessful: countsAsSuccess,
		})
	}

	return e
}

// countsAsSuccess keeps caller mistakes, cancellations and sticky link
// failures from tripping the breaker.
func countsAsSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, traa.ErrInvalidArgument) ||
		errors.Is(err, traa.ErrUnsatisfiedLink) ||
		errors.Is(err, context.Canceled)
}

// Backend returns the wrapped backend.
func (e *Executor) Backend() Backend {
	return e.backend
}

// Metrics returns the metrics collector.
func (e *Executor) Metrics() *MetricsCollector {
	return e.metrics
}

func (e *Executor) execute(ctx context.Context, operation string, fn func(ctx context.Context) (any, error)) (any, error) {
	if e.config.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.CallTimeout)
		defer cancel()
	}

	start := time.Now()
	name := e.backend.Name()

	var result any
	var err error
	if e.breaker != nil {
		result, err = e.breaker.Execute(func() (any, error) {
			return fn(ctx)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			e.metrics.RecordCircuitOpen(name)
			return nil, ErrCircuitOpen
		}
	} else {
		result, err = fn(ctx)
	}

	duration := time.Since(start)
	e.metrics.RecordOperation(name, operation, duration, err)

	log := observability.LogOperation(e.logger, operation, "backend", name)
	if err != nil {
		log.ErrorContext(ctx, "native call failed", "error", err, observability.DurationKey, duration.Milliseconds())
	} else {
		log.DebugContext(ctx, "native call completed", observability.DurationKey, duration.Milliseconds())
	}

	return result, err
}

// StringFromJNI calls the native string function.
func (e *Executor) StringFromJNI(ctx context.Context) (string, error) {
	result, err := e.execute(ctx, "string_from_jni", func(ctx context.Context) (any, error) {
		return e.backend.StringFromJNI(ctx)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// Init initialises the native library.
func (e *Executor) Init(ctx context.Context, cfg traa.Config) error {
	_, err := e.execute(ctx, "init", func(ctx context.Context) (any, error) {
		return nil, e.backend.Init(ctx, cfg)
	})
	return err
}

// Release releases native resources.
func (e *Executor) Release(ctx context.Context) error {
	_, err := e.execute(ctx, "release", func(ctx context.Context) (any, error) {
		return nil, e.backend.Release(ctx)
	})
	return err
}

// SetLogLevel sets native log verbosity.
func (e *Executor) SetLogLevel(ctx context.Context, level traa.LogLevel) error {
	_, err := e.execute(ctx, "set_log_level", func(ctx context.Context) (any, error) {
		return nil, e.backend.SetLogLevel(ctx, level)
	})
	return err
}

// SetLog configures native log output.
func (e *Executor) SetLog(ctx context.Context, cfg traa.LogConfig) error {
	_, err := e.execute(ctx, "set_log", func(ctx context.Context) (any, error) {
		return nil, e.backend.SetLog(ctx, cfg)
	})
	return err
}
