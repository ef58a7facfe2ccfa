package pairengine

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeSwapStepExactInNoTargetReached(t *testing.T) {
	sqrtCurrent, _ := GetSqrtRatioAtTick(0)
	sqrtTarget, _ := GetSqrtRatioAtTick(1000)
	liquidity := big.NewInt(1_000_000_000_000)
	amountRemaining := big.NewInt(1_000) // tiny relative to the full step

	res, err := ComputeSwapStep(sqrtCurrent, sqrtTarget, liquidity, amountRemaining, 3000)
	require.NoError(t, err)

	// all input consumed without reaching target: amountIn + fee == amountRemaining exactly.
	sum := new(big.Int).Add(res.AmountIn, res.FeeAmount)
	require.Equal(t, amountRemaining, sum)
	require.NotEqual(t, 0, sqrtTarget.Cmp(res.SqrtPriceNextX96))
}

func TestComputeSwapStepExactInReachesTarget(t *testing.T) {
	sqrtCurrent, _ := GetSqrtRatioAtTick(0)
	sqrtTarget, _ := GetSqrtRatioAtTick(1)
	liquidity := big.NewInt(1_000_000_000_000)
	amountRemaining := new(big.Int).Lsh(big.NewInt(1), 100) // plenty to reach the target

	res, err := ComputeSwapStep(sqrtCurrent, sqrtTarget, liquidity, amountRemaining, 3000)
	require.NoError(t, err)
	require.Equal(t, 0, sqrtTarget.Cmp(res.SqrtPriceNextX96))
	// reaching the target under exact-input must still report the real
	// amountIn/feeAmount for that step, not zero.
	require.True(t, res.AmountIn.Sign() > 0)
	require.True(t, res.FeeAmount.Sign() > 0)
	require.True(t, res.AmountOut.Sign() > 0)
}

func TestComputeSwapStepExactOut(t *testing.T) {
	sqrtCurrent, _ := GetSqrtRatioAtTick(0)
	sqrtTarget, _ := GetSqrtRatioAtTick(1000)
	liquidity := big.NewInt(1_000_000_000_000)
	amountRemaining := big.NewInt(-500) // negative: exact output requested

	res, err := ComputeSwapStep(sqrtCurrent, sqrtTarget, liquidity, amountRemaining, 3000)
	require.NoError(t, err)
	require.True(t, res.AmountOut.Cmp(big.NewInt(500)) <= 0)
}

func TestComputeSwapStepExactOutReachesTarget(t *testing.T) {
	sqrtCurrent, _ := GetSqrtRatioAtTick(0)
	sqrtTarget, _ := GetSqrtRatioAtTick(1)
	liquidity := big.NewInt(1_000_000_000_000)
	amountRemaining := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 100)) // plenty to reach the target

	res, err := ComputeSwapStep(sqrtCurrent, sqrtTarget, liquidity, amountRemaining, 3000)
	require.NoError(t, err)
	require.Equal(t, 0, sqrtTarget.Cmp(res.SqrtPriceNextX96))
	// reaching the target under exact-output must still report the real
	// amountOut for that step, not zero.
	require.True(t, res.AmountOut.Sign() > 0)
	require.True(t, res.AmountIn.Sign() > 0)
}

func TestComputeSwapStepZeroFeeNoFeeCharged(t *testing.T) {
	sqrtCurrent, _ := GetSqrtRatioAtTick(0)
	sqrtTarget, _ := GetSqrtRatioAtTick(1)
	liquidity := big.NewInt(1_000_000_000_000)
	amountRemaining := new(big.Int).Lsh(big.NewInt(1), 100)

	res, err := ComputeSwapStep(sqrtCurrent, sqrtTarget, liquidity, amountRemaining, 0)
	require.NoError(t, err)
	require.Equal(t, 0, res.FeeAmount.Sign())
}

func TestComputeSwapStepDirectionFromPrices(t *testing.T) {
	sqrtCurrent, _ := GetSqrtRatioAtTick(1000)
	sqrtTarget, _ := GetSqrtRatioAtTick(0) // target below current => zeroForOne
	liquidity := big.NewInt(1_000_000_000_000)
	amountRemaining := big.NewInt(1_000)

	res, err := ComputeSwapStep(sqrtCurrent, sqrtTarget, liquidity, amountRemaining, 3000)
	require.NoError(t, err)
	require.True(t, res.SqrtPriceNextX96.Cmp(sqrtCurrent) <= 0)
}
