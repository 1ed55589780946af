package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	offersMade      atomic.Uint64
	offersTaken     atomic.Uint64
	offersFulfilled atomic.Uint64
	offersCancelled atomic.Uint64
	rejectedOps     atomic.Uint64

	// Gauges
	wsClients atomic.Int32

	startedAt time.Time
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = NewMetrics()

// NewMetrics creates a fresh metrics set.
func NewMetrics() *Metrics {
	return &Metrics{startedAt: time.Now()}
}

// RecordOfferMade counts a successful creation.
func (m *Metrics) RecordOfferMade() { m.offersMade.Add(1) }

// RecordOfferTaken counts a fill, partial or full.
func (m *Metrics) RecordOfferTaken() { m.offersTaken.Add(1) }

// RecordOfferFulfilled counts an offer emptied by a fill.
func (m *Metrics) RecordOfferFulfilled() { m.offersFulfilled.Add(1) }

// RecordOfferCancelled counts a maker cancellation.
func (m *Metrics) RecordOfferCancelled() { m.offersCancelled.Add(1) }

// RecordRejected counts an operation that failed validation.
func (m *Metrics) RecordRejected() { m.rejectedOps.Add(1) }

// IncrementClients increments connected websocket clients by 1.
func (m *Metrics) IncrementClients() { m.wsClients.Add(1) }

// DecrementClients decrements connected websocket clients by 1.
func (m *Metrics) DecrementClients() { m.wsClients.Add(-1) }

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	OffersMade      uint64  `json:"offers_made"`
	OffersTaken     uint64  `json:"offers_taken"`
	OffersFulfilled uint64  `json:"offers_fulfilled"`
	OffersCancelled uint64  `json:"offers_cancelled"`
	RejectedOps     uint64  `json:"rejected_ops"`
	WsClients       int32   `json:"ws_clients"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
}

// Snapshot returns the current metric values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		OffersMade:      m.offersMade.Load(),
		OffersTaken:     m.offersTaken.Load(),
		OffersFulfilled: m.offersFulfilled.Load(),
		OffersCancelled: m.offersCancelled.Load(),
		RejectedOps:     m.rejectedOps.Load(),
		WsClients:       m.wsClients.Load(),
		UptimeSeconds:   time.Since(m.startedAt).Seconds(),
	}
}
