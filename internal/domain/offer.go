package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BpsDenominator is the fixed-point denominator for discounts and fees.
// One basis point in this system is 1/100000, not the conventional 1/10000.
const BpsDenominator int64 = 100000

// Offer is an escrowed, partially-fillable sell order: the maker locks
// AmountRemaining of AssetOffered and sells it for AssetWanted at the oracle
// rate adjusted by DiscountBps.
//
// Offer ids start at 1; id 0 is reserved as the "not found" sentinel.
// Records are never deleted — a fulfilled or cancelled offer persists
// with AmountRemaining == 0.
type Offer struct {
	ID              uint64          `gorm:"primaryKey" json:"id"`
	Maker           string          `gorm:"index" json:"maker"`
	AssetOffered    string          `json:"asset_offered"`
	AssetWanted     string          `json:"asset_wanted"`
	AmountRemaining decimal.Decimal `gorm:"type:text" json:"amount_remaining"`
	// DiscountBps is signed: negative discounts the price in the taker's
	// favor, positive surcharges it. Bounded below by -BpsDenominator
	// (exclusive) so the effective multiplier stays positive.
	DiscountBps int64     `json:"discount_bps"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsOpen reports whether the offer can still be taken or cancelled.
// Closed covers fulfilled, cancelled and never-existed uniformly.
func (o *Offer) IsOpen() bool {
	return o.AmountRemaining.IsPositive()
}
