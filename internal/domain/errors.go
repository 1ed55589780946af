package domain

import "errors"

// Market operation failures. Every operation either fully commits or fails
// with one of these and no state change.
var (
	// ErrZeroAmount is returned when a quantity argument is zero where a
	// positive quantity is required.
	ErrZeroAmount = errors.New("zero amount")

	// ErrInvalidPair is returned when the oracle cannot price the requested
	// asset pair.
	ErrInvalidPair = errors.New("invalid pair")

	// ErrDiscountUnderflow is returned when a discount at or below -100%
	// would make the effective price multiplier non-positive.
	ErrDiscountUnderflow = errors.New("discount underflow")

	// ErrOfferClosed is returned when the target offer does not exist, was
	// fulfilled, or was cancelled. Id 0 is always closed.
	ErrOfferClosed = errors.New("offer closed")

	// ErrOnlyMaker is returned when a cancel comes from anyone but the
	// offer's maker.
	ErrOnlyMaker = errors.New("only maker")

	// ErrHigherThanOffer is returned when a take requests more than the
	// offer's remaining amount.
	ErrHigherThanOffer = errors.New("higher than offer")

	// ErrUnauthorized is returned for owner-only actions from a non-owner.
	ErrUnauthorized = errors.New("unauthorized")
)

// Token transfer failures.
var (
	// ErrInsufficientBalance is returned when an account's balance cannot
	// cover a transfer.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientAllowance is returned when a spender's allowance
	// cannot cover a transferFrom.
	ErrInsufficientAllowance = errors.New("insufficient allowance")

	// ErrTransferRejected is returned when a token signals failure through
	// a false success indicator rather than an error.
	ErrTransferRejected = errors.New("transfer rejected")
)

// TransferError wraps a token transfer failure with the operation and asset
// it occurred on. The underlying cause is preserved for errors.Is checks.
type TransferError struct {
	Op    string // "escrow", "pull", "payout", "refund"
	Asset string
	Err   error
}

func (e *TransferError) Error() string {
	return e.Op + " " + e.Asset + ": " + e.Err.Error()
}

func (e *TransferError) Unwrap() error {
	return e.Err
}
