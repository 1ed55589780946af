package event

import (
	"sync"

	"github.com/shopspring/decimal"
)

// OfferTakenEvent is the only high-rate notification (a busy offer sees many
// partial fills), so it is pooled to reduce GC pressure. Consumers must not
// retain the event past the emit call.
//
// Usage:
//
//	ev := AcquireOfferTakenEvent()
//	ev.OfferID = id
//	// ... emit ...
//	ReleaseOfferTakenEvent(ev)
var offerTakenPool = sync.Pool{
	New: func() interface{} {
		return &OfferTakenEvent{}
	},
}

// AcquireOfferTakenEvent gets an OfferTakenEvent from the pool.
// The returned event has zero values and must be initialized.
func AcquireOfferTakenEvent() *OfferTakenEvent {
	return offerTakenPool.Get().(*OfferTakenEvent)
}

// ReleaseOfferTakenEvent returns an OfferTakenEvent to the pool.
// The event is reset to zero values before being pooled.
func ReleaseOfferTakenEvent(ev *OfferTakenEvent) {
	if ev == nil {
		return
	}
	ev.Seq = 0
	ev.Ts = 0
	ev.OfferID = 0
	ev.AssetOffered = ""
	ev.AssetWanted = ""
	ev.AmountOut = decimal.Decimal{}
	ev.AmountIn = decimal.Decimal{}

	offerTakenPool.Put(ev)
}

// Warmup pre-allocates taken events to reduce GC pressure at startup.
func Warmup() {
	const batchSize = 256

	evs := make([]*OfferTakenEvent, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		evs = append(evs, AcquireOfferTakenEvent())
	}
	for _, ev := range evs {
		ReleaseOfferTakenEvent(ev)
	}
}
