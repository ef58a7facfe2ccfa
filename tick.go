package pairengine

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// TickInfo holds the per-tick accounting: gross/net liquidity referencing
// the tick, and the fee-growth/seconds "outside" snapshots used to derive
// the fee growth inside any range spanning it.
type TickInfo struct {
	LiquidityGross            decimal.Decimal
	LiquidityNet              decimal.Decimal
	FeeGrowthOutside0X128     decimal.Decimal
	FeeGrowthOutside1X128     decimal.Decimal
	TickCumulativeOutside     int64
	SecondsPerLiquidityOutside decimal.Decimal
	SecondsOutside            uint32
	Initialized               bool
}

func newTickInfo() *TickInfo {
	return &TickInfo{
		LiquidityGross:             ZERO,
		LiquidityNet:               ZERO,
		FeeGrowthOutside0X128:      ZERO,
		FeeGrowthOutside1X128:      ZERO,
		SecondsPerLiquidityOutside: ZERO,
	}
}

func (t *TickInfo) clone() *TickInfo {
	cp := *t
	return &cp
}

// Update applies a liquidity delta referencing this tick and reports
// whether the tick flipped from uninitialized to initialized or vice
// versa.
func (t *TickInfo) Update(
	liquidityDelta decimal.Decimal,
	tickCurrent int,
	tickIndex int,
	feeGrowthGlobal0, feeGrowthGlobal1 decimal.Decimal,
	secondsPerLiquidityCumulative decimal.Decimal,
	tickCumulative int64,
	time uint32,
	isUpper bool,
	maxLiquidityPerTick *big.Int,
) (flipped bool, err error) {
	liquidityGrossBefore := t.LiquidityGross
	liquidityGrossAfter, err := AddDelta(liquidityGrossBefore, liquidityDelta)
	if err != nil {
		return false, err
	}
	if fromBig(maxLiquidityPerTick).LessThan(liquidityGrossAfter) {
		return false, ErrLiquidityOverflow
	}

	flipped = liquidityGrossAfter.IsZero() != liquidityGrossBefore.IsZero()

	if liquidityGrossBefore.IsZero() {
		// Newly initialized: snapshot "outside" accumulators as if all
		// growth had occurred below the current tick.
		if tickIndex <= tickCurrent {
			t.FeeGrowthOutside0X128 = feeGrowthGlobal0
			t.FeeGrowthOutside1X128 = feeGrowthGlobal1
			t.SecondsPerLiquidityOutside = secondsPerLiquidityCumulative
			t.TickCumulativeOutside = tickCumulative
			t.SecondsOutside = time
		}
		t.Initialized = true
	}

	t.LiquidityGross = liquidityGrossAfter
	if isUpper {
		t.LiquidityNet = t.LiquidityNet.Sub(liquidityDelta)
	} else {
		t.LiquidityNet = t.LiquidityNet.Add(liquidityDelta)
	}
	return flipped, nil
}

// Cross flips every "outside" accumulator (outside <- global - outside),
// called exactly once each time a swap's price sweeps through this tick.
func (t *TickInfo) Cross(
	feeGrowthGlobal0, feeGrowthGlobal1 decimal.Decimal,
	secondsPerLiquidityCumulative decimal.Decimal,
	tickCumulative int64,
	time uint32,
) decimal.Decimal {
	t.FeeGrowthOutside0X128 = feeGrowthGlobal0.Sub(t.FeeGrowthOutside0X128)
	t.FeeGrowthOutside1X128 = feeGrowthGlobal1.Sub(t.FeeGrowthOutside1X128)
	t.SecondsPerLiquidityOutside = secondsPerLiquidityCumulative.Sub(t.SecondsPerLiquidityOutside)
	t.TickCumulativeOutside = tickCumulative - t.TickCumulativeOutside
	t.SecondsOutside = time - t.SecondsOutside
	return t.LiquidityNet
}

// Clear removes all accounting for a tick once LiquidityGross returns to
// zero.
func (t *TickInfo) clear() {
	*t = TickInfo{
		LiquidityGross:             ZERO,
		LiquidityNet:               ZERO,
		FeeGrowthOutside0X128:      ZERO,
		FeeGrowthOutside1X128:      ZERO,
		SecondsPerLiquidityOutside: ZERO,
	}
}
