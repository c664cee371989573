package runtime

import (
	"sync"
	"time"
)

// MetricsCollector collects call metrics per backend.
type MetricsCollector struct {
	mu      sync.RWMutex
	metrics map[string]*BackendMetrics
}

// BackendMetrics contains metrics for a single backend.
type BackendMetrics struct {
	// Backend is the backend name.
	Backend string `json:"backend"`

	TotalCalls      int64 `json:"total_calls"`
	SuccessfulCalls int64 `json:"successful_calls"`
	FailedCalls     int64 `json:"failed_calls"`

	// LastError is the last error message, if any.
	LastError string `json:"last_error,omitempty"`

	// CircuitBreakerState is the current circuit breaker state.
	CircuitBreakerState string `json:"circuit_breaker_state"`

	// CircuitOpenCount counts calls rejected by an open breaker.
	CircuitOpenCount int64 `json:"circuit_open_count"`

	// Operations contains per-operation metrics.
	Operations map[string]OperationMetrics `json:"operations"`
}

// OperationMetrics contains metrics for one native operation.
type OperationMetrics struct {
	Operation       string        `json:"operation"`
	TotalCalls      int64         `json:"total_calls"`
	FailedCalls     int64         `json:"failed_calls"`
	TotalDuration   time.Duration `json:"total_duration"`
	AverageDuration time.Duration `json:"average_duration"`
	MinDuration     time.Duration `json:"min_duration"`
	MaxDuration     time.Duration `json:"max_duration"`
	LastCallAt      time.Time     `json:"last_call_at"`
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics: make(map[string]*BackendMetrics),
	}
}

// RecordOperation records the outcome of one call.
func (m *MetricsCollector) RecordOperation(backend, operation string, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics := m.getOrCreate(backend)
	metrics.TotalCalls++
	if err != nil {
		metrics.FailedCalls++
		metrics.LastError = err.Error()
	} else {
		metrics.SuccessfulCalls++
	}

	op := metrics.Operations[operation]
	op.Operation = operation
	op.TotalCalls++
	if err != nil {
		op.FailedCalls++
	}
	op.TotalDuration += duration
	if op.TotalCalls == 1 || duration < op.MinDuration {
		op.MinDuration = duration
	}
	if duration > op.MaxDuration {
		op.MaxDuration = duration
	}
	op.AverageDuration = op.TotalDuration / time.Duration(op.TotalCalls)
	op.LastCallAt = time.Now()
	metrics.Operations[operation] = op
}

// RecordCircuitBreakerChange records a circuit breaker state change.
func (m *MetricsCollector) RecordCircuitBreakerChange(backend, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.getOrCreate(backend).CircuitBreakerState = state
}

// RecordCircuitOpen records a call rejected by an open breaker.
func (m *MetricsCollector) RecordCircuitOpen(backend string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.getOrCreate(backend).CircuitOpenCount++
}

// Get returns a copy of the metrics for backend, or nil.
func (m *MetricsCollector) Get(backend string) *BackendMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metrics, ok := m.metrics[backend]
	if !ok {
		return nil
	}
	return metrics.clone()
}

// GetAll returns copies of all backend metrics.
func (m *MetricsCollector) GetAll() map[string]BackendMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]BackendMetrics, len(m.metrics))
	for name, metrics := range m.metrics {
		result[name] = *metrics.clone()
	}
	return result
}

// Reset clears all metrics.
func (m *MetricsCollector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics = make(map[string]*BackendMetrics)
}

func (m *MetricsCollector) getOrCreate(backend string) *BackendMetrics {
	if metrics, ok := m.metrics[backend]; ok {
		return metrics
	}
	metrics := &BackendMetrics{
		Backend:             backend,
		CircuitBreakerState: "closed",
		Operations:          make(map[string]OperationMetrics),
	}
	m.metrics[backend] = metrics
	return metrics
}

func (b *BackendMetrics) clone() *BackendMetrics {
	c := *b
	c.Operations = make(map[string]OperationMetrics, len(b.Operations))
	for k, v := range b.Operations {
		c.Operations[k] = v
	}
	return &c
}
