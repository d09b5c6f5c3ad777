package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	ticksSimulated  atomic.Uint64
	ordersPlaced    atomic.Uint64
	ordersFilled    atomic.Uint64
	ordersCancelled atomic.Uint64
	ordersRejected  atomic.Uint64
	alertsFired     atomic.Uint64

	// Gauges
	wsClients atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordTick records one simulation step.
func (m *Metrics) RecordTick() {
	m.ticksSimulated.Add(1)
}

// RecordOrderPlaced records an accepted order.
func (m *Metrics) RecordOrderPlaced() {
	m.ordersPlaced.Add(1)
}

// RecordOrderFilled records a filled order.
func (m *Metrics) RecordOrderFilled() {
	m.ordersFilled.Add(1)
}

// RecordOrderCancelled records a cancelled order.
func (m *Metrics) RecordOrderCancelled() {
	m.ordersCancelled.Add(1)
}

// RecordOrderRejected records an order the engine refused.
func (m *Metrics) RecordOrderRejected() {
	m.ordersRejected.Add(1)
}

// RecordAlertFired records a fired price alert.
func (m *Metrics) RecordAlertFired() {
	m.alertsFired.Add(1)
}

// IncrementWSClients increments connected WebSocket clients by 1.
func (m *Metrics) IncrementWSClients() {
	m.wsClients.Add(1)
}

// DecrementWSClients decrements connected WebSocket clients by 1.
func (m *Metrics) DecrementWSClients() {
	m.wsClients.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	TicksSimulated  uint64    `json:"ticks_simulated"`
	OrdersPlaced    uint64    `json:"orders_placed"`
	OrdersFilled    uint64    `json:"orders_filled"`
	OrdersCancelled uint64    `json:"orders_cancelled"`
	OrdersRejected  uint64    `json:"orders_rejected"`
	AlertsFired     uint64    `json:"alerts_fired"`
	WSClients       int32     `json:"ws_clients"`
	Timestamp       time.Time `json:"timestamp"`
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		TicksSimulated:  m.ticksSimulated.Load(),
		OrdersPlaced:    m.ordersPlaced.Load(),
		OrdersFilled:    m.ordersFilled.Load(),
		OrdersCancelled: m.ordersCancelled.Load(),
		OrdersRejected:  m.ordersRejected.Load(),
		AlertsFired:     m.alertsFired.Load(),
		WSClients:       m.wsClients.Load(),
		Timestamp:       time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.ticksSimulated.Store(0)
	m.ordersPlaced.Store(0)
	m.ordersFilled.Store(0)
	m.ordersCancelled.Store(0)
	m.ordersRejected.Store(0)
	m.alertsFired.Store(0)
	m.wsClients.Store(0)
}
