package pairengine

import (
	"math/big"

	"github.com/holiman/uint256"
)

// ratioConstants are Q128.128 values: index 0 is 1/sqrt(1.0001) (bit 0 of
// |tick| set), index 1 is 1.0 (bit 0 clear), indices 2..20 are
// 1/sqrt(1.0001^2^k) for bits k = 1..19, and index 21 is the mask for the
// final rounding. Ported bit-for-bit from
// other_examples/374675e7_defistate-defistate-client-go__...tickmath.go,
// itself the standard Uniswap V3 TickMath constant table.
var ratioConstants [22]*uint256.Int

func init() {
	hex := [22]string{
		"0xfffcb933bd6fad37aa2d162d1a594001",
		"0x100000000000000000000000000000000",
		"0xfff97272373d413259a46990580e213a",
		"0xfff2e50f5f656932ef12357cf3c7fdcc",
		"0xffe5caca7e10e4e61c3624eaa0941cd0",
		"0xffcb9843d60f6159c9db58835c926644",
		"0xff973b41fa98c081472e6896dfb254c0",
		"0xff2ea16466c96a3843ec78b326b52861",
		"0xfe5dee046a99a2a811c461f1969c3053",
		"0xfcbe86c7900a88aedcffc83b479aa3a4",
		"0xf987a7253ac413176f2b074cf7815e54",
		"0xf3392b0822b70005940c7a398e4b70f3",
		"0xe7159475a2c29b7443b29c7fa6e889d9",
		"0xd097f3bdfd2022b8845ad8f792aa5825",
		"0xa9f746462d870fdf8a65dc1f90e061e5",
		"0x70d869a156d2a1b890bb3df62baf32f7",
		"0x31be135f97d08fd981231505542fcfa6",
		"0x9aa508b5b7a84e1c677de54f3e99bc9",
		"0x5d6af8dedb81196699c329225ee604",
		"0x2216e584f5fa1ea926041bedfe98",
		"0x48a170391f7dc42444e8fa2",
		"0xffffffff",
	}
	for i, h := range hex {
		n, _ := new(big.Int).SetString(h[2:], 16)
		ratioConstants[i] = uint256.MustFromBig(n)
	}
}

var u256One = uint256.NewInt(1)

// maxUint256U is the 256-bit all-ones value used as the reciprocal's
// numerator for positive ticks.
var maxUint256U = uint256.MustFromBig(maxUint256)

// GetSqrtRatioAtTick computes sqrt(1.0001^tick) * 2^96 as a Q64.96 value.
// Ported from the same bit-chain as
// other_examples/374675e7_defistate-defistate-client-go__...tickmath.go.
func GetSqrtRatioAtTick(tick int) (*big.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, ErrTickRangeExceeded
	}

	absTick := tick
	if tick < 0 {
		absTick = -tick
	}

	ratio := new(uint256.Int)
	if absTick&0x1 != 0 {
		ratio.Set(ratioConstants[0])
	} else {
		ratio.Set(ratioConstants[1])
	}

	for i := 2; i < 21; i++ {
		if absTick&(1<<(i-1)) != 0 {
			ratio.Mul(ratio, ratioConstants[i])
			ratio.Rsh(ratio, 128)
		}
	}

	if tick > 0 {
		ratio = new(uint256.Int).Div(maxUint256U, ratio)
	}

	// Final rounding: divide by 2^32, rounding up on a nonzero remainder.
	rem := new(uint256.Int).And(ratio, ratioConstants[21])
	ratio.Rsh(ratio, 32)
	if rem.Sign() > 0 {
		ratio.Add(ratio, u256One)
	}

	return ratio.ToBig(), nil
}

// GetTickAtSqrtRatio returns the greatest tick such that
// GetSqrtRatioAtTick(tick) <= sqrtPriceX96, via binary search over the
// (monotonically increasing) GetSqrtRatioAtTick. This satisfies the
// invariant sqrtRatioAtTick(result) <= sqrtP < sqrtRatioAtTick(result+1) by
// construction rather than by a log2-approximation-plus-refinement step.
func GetTickAtSqrtRatio(sqrtPriceX96 *big.Int) (int, error) {
	if sqrtPriceX96.Cmp(MinSqrtRatio) < 0 {
		return 0, ErrPriceTooLow
	}
	if sqrtPriceX96.Cmp(MaxSqrtRatio) >= 0 {
		return 0, ErrPriceTooHigh
	}

	low, high := MinTick, MaxTick
	tick := low
	for low <= high {
		mid := (low + high) / 2
		ratio, err := GetSqrtRatioAtTick(mid)
		if err != nil {
			return 0, err
		}
		if ratio.Cmp(sqrtPriceX96) <= 0 {
			tick = mid
			low = mid + 1
		} else {
			high = mid - 1
		}
	}
	return tick, nil
}

// TickSpacingToMaxLiquidityPerTick computes (2^128-1) / usableTickCount,
// the per-tick liquidity ceiling no single tick's gross liquidity may
// exceed.
func TickSpacingToMaxLiquidityPerTick(tickSpacing int) (*big.Int, error) {
	if tickSpacing <= 0 {
		return nil, ErrInvalidTickSpacing
	}
	minUsable := (MinTick / tickSpacing) * tickSpacing
	maxUsable := (MaxTick / tickSpacing) * tickSpacing
	numTicks := (maxUsable-minUsable)/tickSpacing + 1
	return new(big.Int).Div(maxLiquidity, big.NewInt(int64(numTicks))), nil
}

// UsableMinMaxTick returns the grid-aligned tick bounds for a given
// spacing: minTick = ceil(MIN_TICK/s)*s, maxTick = floor(MAX_TICK/s)*s.
func UsableMinMaxTick(tickSpacing int) (minT, maxT int) {
	minT = -((-MinTick / tickSpacing) * tickSpacing)
	maxT = (MaxTick / tickSpacing) * tickSpacing
	return
}
