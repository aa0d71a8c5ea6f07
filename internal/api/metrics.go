package api

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects in-memory server metrics. Totals are atomic counters;
// per-route counts sit behind a mutex.
type Metrics struct {
	startTime        time.Time
	requests         atomic.Int64
	serverErrors     atomic.Int64
	clientErrors     atomic.Int64
	behaviorsSaved   atomic.Int64
	testDeliveries   atomic.Int64
	failedDeliveries atomic.Int64

	mu     sync.Mutex
	routes map[string]int64
}

// MetricsSnapshot is a point-in-time view of server metrics.
type MetricsSnapshot struct {
	UptimeSeconds    float64          `json:"uptime_seconds"`
	Requests         int64            `json:"requests"`
	ServerErrors     int64            `json:"server_errors"`
	ClientErrors     int64            `json:"client_errors"`
	BehaviorsSaved   int64            `json:"behaviors_saved"`
	TestDeliveries   int64            `json:"test_deliveries"`
	FailedDeliveries int64            `json:"failed_deliveries"`
	Routes           map[string]int64 `json:"routes"`
}

// NewMetrics creates a new Metrics instance with the current time as start.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now(), routes: make(map[string]int64)}
}

// RecordRequest counts a finished request against its route and status class.
func (m *Metrics) RecordRequest(route string, status int) {
	m.requests.Add(1)
	switch {
	case status >= 500:
		m.serverErrors.Add(1)
	case status >= 400:
		m.clientErrors.Add(1)
	}

	m.mu.Lock()
	m.routes[route]++
	m.mu.Unlock()
}

// RecordBehaviorSaved counts a stored notification or default behavior.
func (m *Metrics) RecordBehaviorSaved() {
	m.behaviorsSaved.Add(1)
}

// RecordTestDelivery counts an integration test and whether it failed.
func (m *Metrics) RecordTestDelivery(failed bool) {
	m.testDeliveries.Add(1)
	if failed {
		m.failedDeliveries.Add(1)
	}
}

// Snapshot returns a point-in-time copy of the metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	routes := make(map[string]int64, len(m.routes))
	for k, v := range m.routes {
		routes[k] = v
	}
	m.mu.Unlock()

	return MetricsSnapshot{
		UptimeSeconds:    time.Since(m.startTime).Seconds(),
		Requests:         m.requests.Load(),
		ServerErrors:     m.serverErrors.Load(),
		ClientErrors:     m.clientErrors.Load(),
		BehaviorsSaved:   m.behaviorsSaved.Load(),
		TestDeliveries:   m.testDeliveries.Load(),
		FailedDeliveries: m.failedDeliveries.Load(),
		Routes:           routes,
	}
}
