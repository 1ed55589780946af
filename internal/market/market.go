package market

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"otc_go/internal/domain"
	"otc_go/internal/event"
)

// Store is the durable side of the offer ledger. The in-memory ledger stays
// authoritative; persistence is write-behind and failures are logged, not
// surfaced to callers.
type Store interface {
	SaveOffer(off *domain.Offer) error
	SaveState(owner, oracleAddress string, offerCounter, eventSeq uint64) error
	AppendEvent(ev event.Event) error
}

// Market is the OTC settlement core: the authoritative offer ledger, the
// monotonic id counter, and the operations that move escrowed assets.
//
// A single mutex serializes every operation, so each one runs to completion
// as an atomic unit. Inside an operation the discipline is
// checks-effects-interactions: ledger mutations commit before any token
// transfer, and a failed transfer rolls the mutation back so callers observe
// all-or-nothing behavior.
type Market struct {
	mu sync.Mutex

	address string // custody account holding escrow and fee residue
	owner   string // sole authority for oracle repointing
	oracle  domain.PriceOracle
	tokens  domain.TokenResolver

	// store and emit are optional; emit must not retain pooled events.
	store Store
	emit  func(event.Event)

	offers       map[uint64]*domain.Offer
	offerCounter uint64
	accruedFees  map[string]decimal.Decimal // asset address -> fee residue
	eventSeq     uint64
}

// New creates an empty market. store and emit may be nil.
func New(address, owner string, oracle domain.PriceOracle, tokens domain.TokenResolver, store Store, emit func(event.Event)) *Market {
	return &Market{
		address:     address,
		owner:       owner,
		oracle:      oracle,
		tokens:      tokens,
		store:       store,
		emit:        emit,
		offers:      make(map[uint64]*domain.Offer),
		accruedFees: make(map[string]decimal.Decimal),
	}
}

// Restore loads previously persisted offers, the last-assigned id and the
// last-emitted notification sequence. Call once at boot, before serving
// operations; without the sequence the journal would reuse numbers across
// restarts.
func (m *Market) Restore(offers []*domain.Offer, offerCounter, eventSeq uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, off := range offers {
		m.offers[off.ID] = off
		if off.ID > m.offerCounter {
			m.offerCounter = off.ID
		}
	}
	if offerCounter > m.offerCounter {
		m.offerCounter = offerCounter
	}
	if eventSeq > m.eventSeq {
		m.eventSeq = eventSeq
	}
}

// Address returns the market's custody account.
func (m *Market) Address() string { return m.address }

// Owner returns the owner account.
func (m *Market) Owner() string { return m.owner }

// Offer escrows amount of assetOffered from maker and opens an offer to sell
// it for assetWanted at the oracle rate adjusted by discountBps. Returns the
// newly assigned offer id.
//
// Nothing observable happens before the escrow pull succeeds.
func (m *Market) Offer(maker, assetOffered, assetWanted string, amount decimal.Decimal, discountBps int64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !amount.IsPositive() {
		return 0, domain.ErrZeroAmount
	}
	if _, err := m.oracle.Price(assetOffered, assetWanted); err != nil {
		return 0, fmt.Errorf("%w: %s/%s", domain.ErrInvalidPair, assetOffered, assetWanted)
	}
	if discountBps <= -domain.BpsDenominator {
		return 0, domain.ErrDiscountUnderflow
	}

	tok, err := m.resolve(assetOffered, "escrow")
	if err != nil {
		return 0, err
	}
	if err := transferOK(tok.TransferFrom(m.address, maker, m.address, amount)); err != nil {
		return 0, &domain.TransferError{Op: "escrow", Asset: assetOffered, Err: err}
	}

	m.offerCounter++
	now := time.Now()
	off := &domain.Offer{
		ID:              m.offerCounter,
		Maker:           maker,
		AssetOffered:    assetOffered,
		AssetWanted:     assetWanted,
		AmountRemaining: amount,
		DiscountBps:     discountBps,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	m.offers[off.ID] = off
	m.persist(off)

	m.publish(&event.OfferMadeEvent{
		BaseEvent:    m.nextBase(),
		OfferID:      off.ID,
		Maker:        maker,
		AssetOffered: assetOffered,
		AssetWanted:  assetWanted,
		Amount:       amount,
		DiscountBps:  discountBps,
	})
	return off.ID, nil
}

// Take fills amountOut of the offer against payment of the computed
// amountIn. Both legs settle net of fees; the deducted remainders stay in
// custody. Emits OfferTaken, plus OfferFulfilled when the fill empties the
// offer.
func (m *Market) Take(taker string, id uint64, amountOut decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	off, ok := m.offers[id]
	if !ok || !off.IsOpen() {
		return domain.ErrOfferClosed
	}
	if !amountOut.IsPositive() {
		return domain.ErrZeroAmount
	}
	if amountOut.GreaterThan(off.AmountRemaining) {
		return domain.ErrHigherThanOffer
	}

	amountIn, err := m.amountInLocked(off, amountOut)
	if err != nil {
		return err
	}
	wantTok, err := m.resolve(off.AssetWanted, "pull")
	if err != nil {
		return err
	}
	offTok, err := m.resolve(off.AssetOffered, "payout")
	if err != nil {
		return err
	}

	// Checks done. Commit the decrement before calling out to tokens so a
	// reentrant call cannot double-spend this offer.
	off.AmountRemaining = off.AmountRemaining.Sub(amountOut)

	if err := transferOK(wantTok.TransferFrom(m.address, taker, m.address, amountIn)); err != nil {
		off.AmountRemaining = off.AmountRemaining.Add(amountOut)
		return &domain.TransferError{Op: "pull", Asset: off.AssetWanted, Err: err}
	}

	makerPayout := payoutAfterFee(amountIn, MakerFeeBps)
	if err := transferOK(wantTok.Transfer(m.address, off.Maker, makerPayout)); err != nil {
		m.undo(wantTok, m.address, taker, amountIn, "pull")
		off.AmountRemaining = off.AmountRemaining.Add(amountOut)
		return &domain.TransferError{Op: "payout", Asset: off.AssetWanted, Err: err}
	}

	takerPayout := payoutAfterFee(amountOut, TakerFeeBps)
	if err := transferOK(offTok.Transfer(m.address, taker, takerPayout)); err != nil {
		// Claw the maker payout back into custody before returning the
		// taker's payment; custody cannot cover the refund otherwise.
		m.undo(wantTok, off.Maker, m.address, makerPayout, "maker payout")
		m.undo(wantTok, m.address, taker, amountIn, "pull")
		off.AmountRemaining = off.AmountRemaining.Add(amountOut)
		return &domain.TransferError{Op: "payout", Asset: off.AssetOffered, Err: err}
	}

	m.accrueFee(off.AssetWanted, amountIn.Sub(makerPayout))
	m.accrueFee(off.AssetOffered, amountOut.Sub(takerPayout))
	off.UpdatedAt = time.Now()
	m.persist(off)

	taken := event.AcquireOfferTakenEvent()
	taken.BaseEvent = m.nextBase()
	taken.OfferID = off.ID
	taken.AssetOffered = off.AssetOffered
	taken.AssetWanted = off.AssetWanted
	taken.AmountOut = amountOut
	taken.AmountIn = amountIn
	m.publish(taken)
	event.ReleaseOfferTakenEvent(taken)

	if !off.IsOpen() {
		m.publish(&event.OfferFulfilledEvent{BaseEvent: m.nextBase(), OfferID: off.ID})
	}
	return nil
}

// Cancel closes an open offer and refunds the full remaining escrow to the
// maker, fee-free. A second cancel on the same id fails with ErrOfferClosed.
func (m *Market) Cancel(caller string, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	off, ok := m.offers[id]
	if !ok || !off.IsOpen() {
		return domain.ErrOfferClosed
	}
	if caller != off.Maker {
		return domain.ErrOnlyMaker
	}

	tok, err := m.resolve(off.AssetOffered, "refund")
	if err != nil {
		return err
	}

	refund := off.AmountRemaining
	off.AmountRemaining = decimal.Zero

	if err := transferOK(tok.Transfer(m.address, off.Maker, refund)); err != nil {
		off.AmountRemaining = refund
		return &domain.TransferError{Op: "refund", Asset: off.AssetOffered, Err: err}
	}

	off.UpdatedAt = time.Now()
	m.persist(off)
	m.publish(&event.OfferCancelledEvent{BaseEvent: m.nextBase(), OfferID: off.ID})
	return nil
}

// SetOracle repoints the price source. Owner only. Existing offers keep
// their discounts; the next pricing call reads the new oracle.
func (m *Market) SetOracle(caller string, newOracle domain.PriceOracle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if caller != m.owner {
		return domain.ErrUnauthorized
	}

	old := m.oracle.Address()
	m.oracle = newOracle
	m.persistState()
	m.publish(&event.OracleUpdatedEvent{
		BaseEvent:  m.nextBase(),
		OldAddress: old,
		NewAddress: newOracle.Address(),
	})
	return nil
}

// GetOfferID returns the last-assigned offer id, 0 if none was ever made.
func (m *Market) GetOfferID() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offerCounter
}

// GetOffer returns a copy of the offer record. Closed offers remain
// retrievable; only never-assigned ids fail.
func (m *Market) GetOffer(id uint64) (domain.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	off, ok := m.offers[id]
	if !ok {
		return domain.Offer{}, domain.ErrOfferClosed
	}
	return *off, nil
}

// GetAmountInForOffer computes the payment required to take amountOut of the
// offer at the current oracle rate. Pure probe, no state change.
func (m *Market) GetAmountInForOffer(id uint64, amountOut decimal.Decimal) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	off, ok := m.offers[id]
	if !ok {
		return decimal.Decimal{}, domain.ErrOfferClosed
	}
	return m.amountInLocked(off, amountOut)
}

// OpenOffers returns copies of all offers with remaining escrow, ordered by id.
func (m *Market) OpenOffers() []domain.Offer {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Offer, 0, len(m.offers))
	for _, off := range m.offers {
		if off.IsOpen() {
			out = append(out, *off)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AccruedFees reports the fee residue retained in custody for an asset.
// Observability only — no operation disburses it.
func (m *Market) AccruedFees(asset string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accruedFees[asset]
}

func (m *Market) amountInLocked(off *domain.Offer, amountOut decimal.Decimal) (decimal.Decimal, error) {
	rate, err := m.oracle.Price(off.AssetOffered, off.AssetWanted)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s/%s", domain.ErrInvalidPair, off.AssetOffered, off.AssetWanted)
	}
	return amountInAtRate(amountOut, rate, off.DiscountBps), nil
}

func (m *Market) resolve(asset, op string) (domain.Token, error) {
	tok, ok := m.tokens.Resolve(asset)
	if !ok {
		return nil, &domain.TransferError{Op: op, Asset: asset, Err: domain.ErrTransferRejected}
	}
	return tok, nil
}

func (m *Market) accrueFee(asset string, fee decimal.Decimal) {
	m.accruedFees[asset] = m.accruedFees[asset].Add(fee)
}

// undo reverses an already-settled leg during rollback, in the direction
// opposite the original transfer. The funds are present by construction, so
// a failure here means a misbehaving token; it is logged and the rollback
// continues.
func (m *Market) undo(tok domain.Token, from, to string, amount decimal.Decimal, leg string) {
	if err := transferOK(tok.Transfer(from, to, amount)); err != nil {
		slog.Error("rollback transfer failed", slog.String("leg", leg), slog.Any("error", err))
	}
}

func (m *Market) nextBase() event.BaseEvent {
	m.eventSeq++
	return event.BaseEvent{Seq: m.eventSeq, Ts: time.Now().UnixMicro()}
}

func (m *Market) publish(ev event.Event) {
	if m.store != nil {
		if err := m.store.AppendEvent(ev); err != nil {
			slog.Error("journal append failed", slog.String("type", ev.GetType()), slog.Any("error", err))
		}
	}
	if m.emit != nil {
		m.emit(ev)
	}
}

func (m *Market) persist(off *domain.Offer) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveOffer(off); err != nil {
		slog.Error("offer persist failed", slog.Uint64("id", off.ID), slog.Any("error", err))
	}
	m.persistState()
}

func (m *Market) persistState() {
	if m.store == nil {
		return
	}
	if err := m.store.SaveState(m.owner, m.oracle.Address(), m.offerCounter, m.eventSeq); err != nil {
		slog.Error("state persist failed", slog.Any("error", err))
	}
}

// transferOK collapses the two token failure styles: an explicit error and a
// false success indicator both mean the transfer did not happen.
func transferOK(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrTransferRejected
	}
	return nil
}
