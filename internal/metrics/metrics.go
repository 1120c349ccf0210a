// Package metrics collects transport-level counters for the chain-data
// client using atomic counters. This is a lightweight in-process foundation;
// an exporter can wrap Snapshot for external observability.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds chain-data transport metrics, safe for concurrent use.
type Metrics struct {
	requestsTotal atomic.Int64
	errorsTotal   atomic.Int64
	retriesTotal  atomic.Int64
	rateLimited   atomic.Int64
	latencyNanos  atomic.Int64

	mu         sync.Mutex
	byEndpoint map[string]int64
}

// Global is the process-wide metrics instance.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = New()

// New creates an empty metrics collector.
func New() *Metrics {
	return &Metrics{byEndpoint: make(map[string]int64)}
}

// RecordRequest records one gateway request with its duration and outcome.
func (m *Metrics) RecordRequest(endpoint string, duration time.Duration, err error) {
	m.requestsTotal.Add(1)
	m.latencyNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.errorsTotal.Add(1)
	}

	m.mu.Lock()
	m.byEndpoint[endpoint]++
	m.mu.Unlock()
}

// RecordRetry records one retry attempt.
func (m *Metrics) RecordRetry() {
	m.retriesTotal.Add(1)
}

// RecordRateLimited records one 429 response from the gateway.
func (m *Metrics) RecordRateLimited() {
	m.rateLimited.Add(1)
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	RequestsTotal int64
	ErrorsTotal   int64
	RetriesTotal  int64
	RateLimited   int64
	LatencyNanos  int64
	ByEndpoint    map[string]int64
}

// Snapshot returns a point-in-time copy of all counters.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	byEndpoint := make(map[string]int64, len(m.byEndpoint))
	for k, v := range m.byEndpoint {
		byEndpoint[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		RequestsTotal: m.requestsTotal.Load(),
		ErrorsTotal:   m.errorsTotal.Load(),
		RetriesTotal:  m.retriesTotal.Load(),
		RateLimited:   m.rateLimited.Load(),
		LatencyNanos:  m.latencyNanos.Load(),
		ByEndpoint:    byEndpoint,
	}
}

// LatencyAvgMs returns the average request latency in milliseconds,
// or 0 before any request.
func (m *Metrics) LatencyAvgMs() float64 {
	requests := m.requestsTotal.Load()
	if requests == 0 {
		return 0
	}
	return float64(m.latencyNanos.Load()) / float64(requests) / 1e6
}

// Reset zeroes all counters. Useful for testing.
func (m *Metrics) Reset() {
	m.requestsTotal.Store(0)
	m.errorsTotal.Store(0)
	m.retriesTotal.Store(0)
	m.rateLimited.Store(0)
	m.latencyNanos.Store(0)

	m.mu.Lock()
	m.byEndpoint = make(map[string]int64)
	m.mu.Unlock()
}
