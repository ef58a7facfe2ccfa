package pairengine

import "errors"

// Sentinel errors carry stable short codes so callers can match with
// errors.Is against a known vocabulary.
var (
	ErrLocked              = errors.New("LOK: pair is reentered")
	ErrAlreadyInitialized  = errors.New("AI: pair already initialized")
	ErrPriceTooLow         = errors.New("MIN: starting price below MIN_SQRT_RATIO")
	ErrPriceTooHigh        = errors.New("MAX: starting price at or above MAX_SQRT_RATIO")
	ErrTickLowerUpper      = errors.New("TLU: tickLower must be less than tickUpper")
	ErrTickLowerOutOfRange = errors.New("TLM: tickLower below MIN_TICK")
	ErrTickUpperOutOfRange = errors.New("TUM: tickUpper above MAX_TICK")
	ErrTickNotOnSpacing    = errors.New("TS: tick is not a multiple of tickSpacing")
	ErrLiquidityOverflow   = errors.New("LO: liquidityGross would exceed maxLiquidityPerTick")
	ErrNoPosition          = errors.New("NP: liquidity update on a position with no existing liquidity")
	ErrCannotBurnMore      = errors.New("CP: cannot burn more than the position holds")
	ErrMint0Underpaid      = errors.New("M0: mint callback underpaid token0")
	ErrMint1Underpaid      = errors.New("M1: mint callback underpaid token1")
	ErrSwapUnderpaid       = errors.New("IIA: swap callback underpaid")
	ErrPriceLimitWrongSide = errors.New("SPL: sqrtPriceLimitX96 on the wrong side of current price")
	ErrZeroAmountSpecified = errors.New("AS: amountSpecified must not be zero")
	ErrOracleTooOld        = errors.New("OLD: observation older than the oldest recorded observation")
	ErrOracleUninitialized = errors.New("I: oracle observation not yet initialized")
	ErrTickRangeExceeded   = errors.New("TN: swap would cross past MIN_TICK/MAX_TICK")
	ErrNotOwner            = errors.New("NOT_OWNER: caller is not the fee-protocol owner")
	ErrInvalidFeeProtocol  = errors.New("feeProtocol must be 0 or in [4,10]")
	ErrInvalidTickSpacing  = errors.New("tickSpacing must be a positive integer")
	ErrAmountTooLarge      = errors.New("amount must be less than 2^127")
)
