package pairengine

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Tick bounds for the usable price range, matching Uniswap V3's
// MIN_TICK/MAX_TICK.
const (
	MinTick = -887272
	MaxTick = 887272
)

var (
	// ZERO and ONE are the decimal constants the liquidity and fee-growth
	// arithmetic (AddDelta, Position.Update, ...) is written against.
	ZERO = decimal.Zero
	ONE  = decimal.NewFromInt(1)

	// Q96 / Q128 are the fixed-point scaling factors used throughout
	// SqrtPriceMath (Q64.96) and fee-growth accounting (Q128.128).
	q96Big  = new(big.Int).Lsh(big.NewInt(1), 96)
	q128Big = new(big.Int).Lsh(big.NewInt(1), 128)
	Q96     = decimal.NewFromBigInt(q96Big, 0)
	Q128    = decimal.NewFromBigInt(q128Big, 0)

	// MinSqrtRatio / MaxSqrtRatio bound the Q64.96 sqrt-price domain.
	MinSqrtRatio, _ = new(big.Int).SetString("4295128739", 10)
	MaxSqrtRatio, _ = new(big.Int).SetString("1461446703485210103287273052203988822378723970342", 10)

	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	// maxLiquidity is the u128 ceiling every gross/active liquidity value
	// must respect.
	maxLiquidity = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

	// maxLiquidityDelta bounds a single mint's requested amount to less
	// than 2^127.
	maxLiquidityDelta = new(big.Int).Lsh(big.NewInt(1), 127)
)

// FeeAmount is a fee tier expressed in hundredths of a basis point
// (pips), e.g. 3000 == 0.30%.
type FeeAmount uint32

// Common fee tiers and their conventional tick spacings.
const (
	FeeLow    FeeAmount = 500
	FeeMedium FeeAmount = 3000
	FeeHigh   FeeAmount = 10000
)

// defaultTickSpacings is a convenience lookup for the common tiers; a pair
// may be constructed with any positive tick spacing regardless of fee tier.
var defaultTickSpacings = map[FeeAmount]int{
	FeeLow:    10,
	FeeMedium: 60,
	FeeHigh:   200,
}

// DefaultTickSpacing returns the tick spacing conventionally associated
// with a fee tier, or ok=false for a tier with no convention on file.
func DefaultTickSpacing(fee FeeAmount) (spacing int, ok bool) {
	spacing, ok = defaultTickSpacings[fee]
	return
}

const feeDenominator = 1_000_000
