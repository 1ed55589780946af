package infra

import "testing"

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()

	m.RecordOfferMade()
	m.RecordOfferMade()
	m.RecordOfferTaken()
	m.RecordOfferFulfilled()
	m.RecordOfferCancelled()
	m.RecordRejected()
	m.IncrementClients()
	m.IncrementClients()
	m.DecrementClients()

	snap := m.Snapshot()
	if snap.OffersMade != 2 {
		t.Errorf("OffersMade = %d, want 2", snap.OffersMade)
	}
	if snap.OffersTaken != 1 || snap.OffersFulfilled != 1 || snap.OffersCancelled != 1 {
		t.Errorf("unexpected counters: %+v", snap)
	}
	if snap.RejectedOps != 1 {
		t.Errorf("RejectedOps = %d, want 1", snap.RejectedOps)
	}
	if snap.WsClients != 1 {
		t.Errorf("WsClients = %d, want 1", snap.WsClients)
	}
}
