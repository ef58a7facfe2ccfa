package pairengine

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSqrtRatioAtTickZero(t *testing.T) {
	ratio, err := GetSqrtRatioAtTick(0)
	require.NoError(t, err)
	require.Equal(t, new(big.Int).Set(q96Big), ratio) // 1.0001^0 == 1, scaled by Q96
}

func TestGetSqrtRatioAtTickOutOfRange(t *testing.T) {
	_, err := GetSqrtRatioAtTick(MinTick - 1)
	require.ErrorIs(t, err, ErrTickRangeExceeded)

	_, err = GetSqrtRatioAtTick(MaxTick + 1)
	require.ErrorIs(t, err, ErrTickRangeExceeded)
}

func TestGetSqrtRatioAtTickBounds(t *testing.T) {
	atMin, err := GetSqrtRatioAtTick(MinTick)
	require.NoError(t, err)
	require.Equal(t, MinSqrtRatio, atMin)

	atMax, err := GetSqrtRatioAtTick(MaxTick)
	require.NoError(t, err)
	require.Equal(t, MaxSqrtRatio, atMax)
}

func TestGetSqrtRatioAtTickMonotonic(t *testing.T) {
	ticks := []int{MinTick, -500000, -1, 0, 1, 500000, MaxTick}
	var prev *big.Int
	for _, tick := range ticks {
		ratio, err := GetSqrtRatioAtTick(tick)
		require.NoError(t, err)
		if prev != nil {
			require.Equal(t, -1, prev.Cmp(ratio), "ratio must strictly increase with tick")
		}
		prev = ratio
	}
}

func TestGetTickAtSqrtRatioRoundTrip(t *testing.T) {
	for _, tick := range []int{MinTick, -443636, -1, 0, 1, 443636, MaxTick - 1} {
		ratio, err := GetSqrtRatioAtTick(tick)
		require.NoError(t, err)
		gotTick, err := GetTickAtSqrtRatio(ratio)
		require.NoError(t, err)
		require.Equal(t, tick, gotTick)
	}
}

func TestGetTickAtSqrtRatioInvariant(t *testing.T) {
	// sqrtRatioAtTick(result) <= sqrtP < sqrtRatioAtTick(result+1)
	tick, err := GetTickAtSqrtRatio(q96Big)
	require.NoError(t, err)
	require.Equal(t, 0, tick)

	// nudge the price up slightly without crossing the next tick boundary.
	nudged := new(big.Int).Add(q96Big, big.NewInt(1))
	tick, err = GetTickAtSqrtRatio(nudged)
	require.NoError(t, err)
	require.Equal(t, 0, tick)
}

func TestGetTickAtSqrtRatioOutOfRange(t *testing.T) {
	tooLow := new(big.Int).Sub(MinSqrtRatio, big.NewInt(1))
	_, err := GetTickAtSqrtRatio(tooLow)
	require.ErrorIs(t, err, ErrPriceTooLow)

	_, err = GetTickAtSqrtRatio(MaxSqrtRatio)
	require.ErrorIs(t, err, ErrPriceTooHigh)
}

func TestTickSpacingToMaxLiquidityPerTick(t *testing.T) {
	max, err := TickSpacingToMaxLiquidityPerTick(60)
	require.NoError(t, err)
	require.True(t, max.Sign() > 0)
	require.True(t, max.Cmp(maxLiquidity) < 0)
}

func TestTickSpacingToMaxLiquidityPerTickInvalid(t *testing.T) {
	_, err := TickSpacingToMaxLiquidityPerTick(0)
	require.ErrorIs(t, err, ErrInvalidTickSpacing)

	_, err = TickSpacingToMaxLiquidityPerTick(-10)
	require.ErrorIs(t, err, ErrInvalidTickSpacing)
}

func TestUsableMinMaxTick(t *testing.T) {
	minT, maxT := UsableMinMaxTick(60)
	require.Equal(t, 0, minT%60)
	require.Equal(t, 0, maxT%60)
	require.True(t, minT >= MinTick)
	require.True(t, maxT <= MaxTick)
}
