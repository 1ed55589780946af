package market

import (
	"github.com/shopspring/decimal"

	"otc_go/internal/domain"
)

// Fixed fee schedule, basis points out of domain.BpsDenominator.
const (
	MakerFeeBps int64 = 500  // 0.5% of amountIn, deducted from the maker payout
	TakerFeeBps int64 = 1500 // 1.5% of amountOut, deducted from the taker payout
)

// amountInAtRate computes the wanted-asset amount a taker must pay for
// amountOut of the offered asset:
//
//	amountIn = floor(amountOut * rate * (100000 + discountBps) / 100000)
//
// All multiplications happen before the division. decimal.Decimal is backed
// by big.Int, so intermediates never overflow; the /100000 is an exact
// base-10 exponent shift, and the only rounding is the final floor to whole
// base units.
func amountInAtRate(amountOut, rate decimal.Decimal, discountBps int64) decimal.Decimal {
	gross := amountOut.Mul(rate)
	return gross.Mul(decimal.New(domain.BpsDenominator+discountBps, -5)).Floor()
}

// feeOn returns floor(amount * feeBps / 100000).
func feeOn(amount decimal.Decimal, feeBps int64) decimal.Decimal {
	return amount.Mul(decimal.New(feeBps, -5)).Floor()
}

// payoutAfterFee returns amount minus its fee deduction. The deducted
// remainder stays in custody as fee residue.
func payoutAfterFee(amount decimal.Decimal, feeBps int64) decimal.Decimal {
	return amount.Sub(feeOn(amount, feeBps))
}
