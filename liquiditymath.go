package pairengine

import "github.com/shopspring/decimal"

// AddDelta adds a signed liquidity delta to an unsigned liquidity value,
// failing on underflow (negative result) or overflow past the u128 range.
func AddDelta(x, y decimal.Decimal) (decimal.Decimal, error) {
	result := x.Add(y)
	if result.IsNegative() {
		return ZERO, ErrCannotBurnMore
	}
	if fromBig(maxLiquidity).LessThan(result) {
		return ZERO, ErrLiquidityOverflow
	}
	return result, nil
}

// LiquidityAddDelta is an alias matching the name used at per-position
// call sites.
func LiquidityAddDelta(x, y decimal.Decimal) (decimal.Decimal, error) {
	return AddDelta(x, y)
}
