package domain

import "github.com/shopspring/decimal"

// Token is the fungible-asset collaborator the market settles through.
// Transfer-style methods return (ok, err): some tokens reject a transfer
// abruptly with an error, others report failure through a false success
// indicator. Callers must treat both as failure.
type Token interface {
	// Transfer moves amount from `from` to `to`. The caller vouches for
	// `from`'s authority.
	Transfer(from, to string, amount decimal.Decimal) (bool, error)
	// TransferFrom moves amount from `from` to `to` on behalf of
	// `spender`, consuming allowance.
	TransferFrom(spender, from, to string, amount decimal.Decimal) (bool, error)
	Approve(owner, spender string, amount decimal.Decimal)
	BalanceOf(account string) decimal.Decimal
	Allowance(owner, spender string) decimal.Decimal
	Decimals() int32
}

// TokenResolver maps an asset address to its token contract.
type TokenResolver interface {
	Resolve(address string) (Token, bool)
}

// PriceOracle is the pluggable fair-price source. Implementations may read
// liquidity-pool reserves, external APIs, or fixed tables.
type PriceOracle interface {
	// Price returns the fair rate in base units of assetWanted per one base
	// unit of assetOffered, or an error when the pair is unpriceable.
	Price(assetOffered, assetWanted string) (decimal.Decimal, error)
	// Address identifies this oracle instance for repointing notifications.
	Address() string
}
