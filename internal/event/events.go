package event

import "github.com/shopspring/decimal"

// Event is the common interface for all market notifications.
type Event interface {
	GetType() string
	GetSeq() uint64
	GetTs() int64
}

// BaseEvent carries the fields shared by every notification.
type BaseEvent struct {
	Seq uint64 `json:"seq"` // market-local monotonic sequence
	Ts  int64  `json:"ts"`  // unix microseconds
}

func (e *BaseEvent) GetSeq() uint64 { return e.Seq }
func (e *BaseEvent) GetTs() int64   { return e.Ts }

// OfferMadeEvent fires once per successful offer creation.
type OfferMadeEvent struct {
	BaseEvent
	OfferID      uint64          `json:"offer_id"`
	Maker        string          `json:"maker"`
	AssetOffered string          `json:"asset_offered"`
	AssetWanted  string          `json:"asset_wanted"`
	Amount       decimal.Decimal `json:"amount"`
	DiscountBps  int64           `json:"discount_bps"`
}

func (e *OfferMadeEvent) GetType() string { return "offer_made" }

// OfferTakenEvent fires on every take, partial or full.
type OfferTakenEvent struct {
	BaseEvent
	OfferID      uint64          `json:"offer_id"`
	AssetOffered string          `json:"asset_offered"`
	AssetWanted  string          `json:"asset_wanted"`
	AmountOut    decimal.Decimal `json:"amount_out"`
	AmountIn     decimal.Decimal `json:"amount_in"`
}

func (e *OfferTakenEvent) GetType() string { return "offer_taken" }

// OfferFulfilledEvent fires after the take that empties an offer, in
// addition to that take's OfferTakenEvent.
type OfferFulfilledEvent struct {
	BaseEvent
	OfferID uint64 `json:"offer_id"`
}

func (e *OfferFulfilledEvent) GetType() string { return "offer_fulfilled" }

// OfferCancelledEvent fires once when a maker cancels an open offer.
type OfferCancelledEvent struct {
	BaseEvent
	OfferID uint64 `json:"offer_id"`
}

func (e *OfferCancelledEvent) GetType() string { return "offer_cancelled" }

// OracleUpdatedEvent fires when the owner repoints the price oracle.
type OracleUpdatedEvent struct {
	BaseEvent
	OldAddress string `json:"old_address"`
	NewAddress string `json:"new_address"`
}

func (e *OracleUpdatedEvent) GetType() string { return "oracle_updated" }
