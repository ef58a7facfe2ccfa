package pairengine

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetAmount0DeltaRoundingDirection(t *testing.T) {
	sqrtA, _ := GetSqrtRatioAtTick(0)
	sqrtB, _ := GetSqrtRatioAtTick(1000)
	liquidity := big.NewInt(1_000_000_000)

	roundedDown, err := GetAmount0Delta(sqrtA, sqrtB, liquidity, false)
	require.NoError(t, err)
	roundedUp, err := GetAmount0Delta(sqrtA, sqrtB, liquidity, true)
	require.NoError(t, err)

	require.True(t, roundedUp.Cmp(roundedDown) >= 0)
	require.True(t, new(big.Int).Sub(roundedUp, roundedDown).Cmp(big.NewInt(1)) <= 0)
}

func TestGetAmount1DeltaRoundingDirection(t *testing.T) {
	sqrtA, _ := GetSqrtRatioAtTick(-1000)
	sqrtB, _ := GetSqrtRatioAtTick(0)
	liquidity := big.NewInt(1_000_000_000)

	roundedDown, err := GetAmount1Delta(sqrtA, sqrtB, liquidity, false)
	require.NoError(t, err)
	roundedUp, err := GetAmount1Delta(sqrtA, sqrtB, liquidity, true)
	require.NoError(t, err)

	require.True(t, roundedUp.Cmp(roundedDown) >= 0)
}

func TestGetAmount0DeltaOrderIndependent(t *testing.T) {
	sqrtA, _ := GetSqrtRatioAtTick(0)
	sqrtB, _ := GetSqrtRatioAtTick(1000)
	liquidity := big.NewInt(500_000)

	forward, err := GetAmount0Delta(sqrtA, sqrtB, liquidity, true)
	require.NoError(t, err)
	backward, err := GetAmount0Delta(sqrtB, sqrtA, liquidity, true)
	require.NoError(t, err)
	require.Equal(t, forward, backward)
}

func TestGetNextSqrtPriceFromAmount0RoundingUpZeroAmount(t *testing.T) {
	sqrtP, _ := GetSqrtRatioAtTick(0)
	next, err := GetNextSqrtPriceFromAmount0RoundingUp(sqrtP, big.NewInt(1000), big.NewInt(0), true)
	require.NoError(t, err)
	require.Equal(t, sqrtP, next)
}

func TestGetNextSqrtPriceFromAmount0RoundingUpAddingDecreasesPrice(t *testing.T) {
	sqrtP, _ := GetSqrtRatioAtTick(0)
	liquidity := big.NewInt(1_000_000_000_000)
	next, err := GetNextSqrtPriceFromAmount0RoundingUp(sqrtP, liquidity, big.NewInt(1_000_000), true)
	require.NoError(t, err)
	// adding token0 makes it more abundant, so price of token0 in terms of
	// token1 (sqrtP) must fall.
	require.True(t, next.Cmp(sqrtP) < 0)
}

func TestGetNextSqrtPriceFromAmount1RoundingDownAddingIncreasesPrice(t *testing.T) {
	sqrtP, _ := GetSqrtRatioAtTick(0)
	liquidity := big.NewInt(1_000_000_000_000)
	next, err := GetNextSqrtPriceFromAmount1RoundingDown(sqrtP, liquidity, big.NewInt(1_000_000), true)
	require.NoError(t, err)
	require.True(t, next.Cmp(sqrtP) > 0)
}

func TestGetNextSqrtPriceFromOutputInsufficientLiquidity(t *testing.T) {
	sqrtP, _ := GetSqrtRatioAtTick(0)
	liquidity := big.NewInt(1)
	_, err := GetNextSqrtPriceFromOutput(sqrtP, liquidity, big.NewInt(1_000_000_000), false)
	require.Error(t, err)
}

func TestGetNextSqrtPriceFromInputRejectsZeroLiquidity(t *testing.T) {
	sqrtP, _ := GetSqrtRatioAtTick(0)
	_, err := GetNextSqrtPriceFromInput(sqrtP, big.NewInt(0), big.NewInt(100), true)
	require.Error(t, err)
}
