package storage

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"otc_go/internal/domain"
	"otc_go/internal/event"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(filepath.Join(t.TempDir(), "otc.db"))
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	return s
}

func TestOfferRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	off := &domain.Offer{
		ID:              1,
		Maker:           "0xalice",
		AssetOffered:    "0xweth",
		AssetWanted:     "0xdai",
		AmountRemaining: decimal.NewFromInt(10),
		DiscountBps:     -5000,
	}
	if err := s.SaveOffer(off); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Upsert on partial fill.
	off.AmountRemaining = decimal.NewFromInt(4)
	if err := s.SaveOffer(off); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	offers, err := s.LoadOffers()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("got %d offers, want 1", len(offers))
	}
	got := offers[0]
	if got.ID != 1 || got.Maker != "0xalice" || got.DiscountBps != -5000 {
		t.Errorf("unexpected record: %+v", got)
	}
	if !got.AmountRemaining.Equal(decimal.NewFromInt(4)) {
		t.Errorf("remaining = %s, want 4", got.AmountRemaining)
	}
}

func TestStateRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	state, err := s.LoadState()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if state != nil {
		t.Fatalf("expected no state on fresh DB, got %+v", state)
	}

	if err := s.SaveState("0xowner", "oracle-1", 7, 12); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.SaveState("0xowner", "oracle-2", 9, 15); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	state, err = s.LoadState()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if state == nil || state.OracleAddress != "oracle-2" || state.OfferCounter != 9 || state.EventSeq != 15 {
		t.Errorf("unexpected state: %+v", state)
	}
}

func TestJournalAppend(t *testing.T) {
	s := newTestStorage(t)

	if err := s.AppendEvent(&event.OfferMadeEvent{
		BaseEvent: event.BaseEvent{Seq: 1, Ts: 1000},
		OfferID:   1,
		Maker:     "0xalice",
		Amount:    decimal.NewFromInt(10),
	}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := s.AppendEvent(&event.OfferFulfilledEvent{
		BaseEvent: event.BaseEvent{Seq: 2, Ts: 1001},
		OfferID:   1,
	}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	entries, err := s.Journal()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Type != "offer_made" || entries[1].Type != "offer_fulfilled" {
		t.Errorf("types = %s, %s", entries[0].Type, entries[1].Type)
	}
	if entries[0].Seq != 1 || entries[1].Seq != 2 {
		t.Errorf("seqs = %d, %d", entries[0].Seq, entries[1].Seq)
	}
}
