package pairengine

import "github.com/shopspring/decimal"

// MintCallback is implemented by a mint's caller to pay the amounts Mint
// computes are owed. A callback-based token pull is expressed as an
// explicit Go interface here since there is no on-chain `msg.sender` to
// call back into.
type MintCallback interface {
	PairMintCallback(amount0Owed, amount1Owed decimal.Decimal, data []byte) error
}

// SwapCallback is implemented by a swap's caller to settle the amount the
// pair is owed (or to receive the amount it owes) once Swap has
// determined the exact input/output split.
type SwapCallback interface {
	PairSwapCallback(amount0Delta, amount1Delta decimal.Decimal, data []byte) error
}

// Burns never pull tokens in (the position already holds its principal),
// so they need no callback; Collect and CollectProtocol pay out
// synchronously without one.

// verifyCallbackBalance checks that a callback paid at least the amount it
// was told it owed, by comparing a balance reader taken before and after
// the callback ran. before/after are whatever unit the caller's balance
// reader returns (typically the caller's own ledger, not an on-chain
// balance); insufficientErr names which sentinel to return if the check
// fails (ErrMint0Underpaid, ErrMint1Underpaid, ErrSwapUnderpaid).
func verifyCallbackBalance(before, after, owed decimal.Decimal, insufficientErr error) error {
	delta := after.Sub(before)
	if delta.LessThan(owed) {
		return insufficientErr
	}
	return nil
}
