package core

import (
	"sync"
	"time"
)

// --- MockMetricsCollector ---

// MockMetricsCollector implements the MetricsCollector interface for testing.
// It records every RecordRequest invocation for assertion purposes.
//
// Usage:
//
//	mock := &MockMetricsCollector{}
//	srv.Metrics = mock
//	// ... drive requests ...
//	calls := mock.Recorded()
type MockMetricsCollector struct {
	// RecordRequestFunc is an optional function that overrides the default
	// behavior. When set, it is invoked in addition to call recording.
	RecordRequestFunc func(method, endpoint, status string, duration time.Duration)

	// mu protects calls for concurrent access.
	mu sync.Mutex

	calls []MetricsCall
}

// MetricsCall records the arguments of a single RecordRequest invocation.
type MetricsCall struct {
	Method   string
	Endpoint string
	Status   string
	Duration time.Duration
}

// RecordRequest implements the MetricsCollector interface.
func (m *MockMetricsCollector) RecordRequest(method, endpoint, status string, duration time.Duration) {
	m.mu.Lock()
	m.calls = append(m.calls, MetricsCall{
		Method:   method,
		Endpoint: endpoint,
		Status:   status,
		Duration: duration,
	})
	m.mu.Unlock()

	if m.RecordRequestFunc != nil {
		m.RecordRequestFunc(method, endpoint, status, duration)
	}
}

// Recorded returns a copy of all recorded calls.
func (m *MockMetricsCollector) Recorded() []MetricsCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MetricsCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Keep the mock aligned with the interface it doubles.
var _ MetricsCollector = (*MockMetricsCollector)(nil)
