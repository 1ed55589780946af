package oracle

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

// ErrNoLiquidity is returned when no pool (or an empty pool) backs the
// requested pair. The market surfaces it as an invalid-pair failure.
var ErrNoLiquidity = errors.New("no liquidity for pair")

// ratePrecision is the number of fractional digits kept when dividing pool
// reserves. 28 digits comfortably exceeds the precision of any asset with
// up to 18 decimals.
const ratePrecision = 28

// Pool holds the reserves of a two-asset liquidity pool, in base units.
type Pool struct {
	AssetA   string
	AssetB   string
	ReserveA decimal.Decimal
	ReserveB decimal.Decimal
}

// PoolOracle prices pairs from liquidity-pool reserve ratios, spot-price
// style: the fair rate for (offered, wanted) is reserveWanted/reserveOffered.
// One pool is kept per unordered pair.
type PoolOracle struct {
	mu      sync.RWMutex
	address string
	pools   map[pairKey]*Pool
}

type pairKey struct {
	lo, hi string
}

func keyFor(a, b string) pairKey {
	if a < b {
		return pairKey{lo: a, hi: b}
	}
	return pairKey{lo: b, hi: a}
}

// NewPoolOracle creates an empty oracle identified by address.
func NewPoolOracle(address string) *PoolOracle {
	return &PoolOracle{
		address: address,
		pools:   make(map[pairKey]*Pool),
	}
}

// Address implements domain.PriceOracle.
func (o *PoolOracle) Address() string { return o.address }

// SetPool installs or replaces the pool for a pair.
func (o *PoolOracle) SetPool(p Pool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pools[keyFor(p.AssetA, p.AssetB)] = &p
}

// UpdateReserves adjusts an existing pool's reserves, keeping the asset
// orientation of the stored pool.
func (o *PoolOracle) UpdateReserves(assetA, assetB string, reserveA, reserveB decimal.Decimal) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	p, ok := o.pools[keyFor(assetA, assetB)]
	if !ok {
		return ErrNoLiquidity
	}
	if p.AssetA == assetA {
		p.ReserveA, p.ReserveB = reserveA, reserveB
	} else {
		p.ReserveA, p.ReserveB = reserveB, reserveA
	}
	return nil
}

// Price implements domain.PriceOracle. The rate is base units of assetWanted
// per one base unit of assetOffered. Identical or unpooled assets, and pools
// with an empty side, are unpriceable.
func (o *PoolOracle) Price(assetOffered, assetWanted string) (decimal.Decimal, error) {
	if assetOffered == assetWanted {
		return decimal.Decimal{}, ErrNoLiquidity
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	p, ok := o.pools[keyFor(assetOffered, assetWanted)]
	if !ok {
		return decimal.Decimal{}, ErrNoLiquidity
	}

	reserveOffered, reserveWanted := p.ReserveA, p.ReserveB
	if p.AssetA != assetOffered {
		reserveOffered, reserveWanted = p.ReserveB, p.ReserveA
	}
	if !reserveOffered.IsPositive() || !reserveWanted.IsPositive() {
		return decimal.Decimal{}, ErrNoLiquidity
	}

	return reserveWanted.DivRound(reserveOffered, ratePrecision), nil
}
