package pairengine

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMulDiv(t *testing.T) {
	got, err := MulDiv(big.NewInt(10), big.NewInt(3), big.NewInt(4))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(7), got) // floor(30/4) == 7

	got, err = MulDiv(big.NewInt(10), big.NewInt(4), big.NewInt(5))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(8), got)
}

func TestMulDivDivisionByZero(t *testing.T) {
	_, err := MulDiv(big.NewInt(1), big.NewInt(1), big.NewInt(0))
	require.Error(t, err)
}

func TestMulDivOverflow(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 200)
	_, err := MulDiv(huge, huge, big.NewInt(1))
	require.ErrorIs(t, err, ErrMulDivOverflow)
}

func TestMulDivRoundingUp(t *testing.T) {
	got, err := MulDivRoundingUp(big.NewInt(10), big.NewInt(3), big.NewInt(4))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(8), got) // ceil(30/4) == 8

	got, err = MulDivRoundingUp(big.NewInt(10), big.NewInt(4), big.NewInt(5))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(8), got) // exact, no rounding
}

func TestMulDivRoundingUpOverflowAtBoundary(t *testing.T) {
	// 3*maxUint256/2 is about 1.5*2^256, already past the 256-bit ceiling
	// before any rounding up.
	_, err := MulDivRoundingUp(maxUint256, big.NewInt(3), big.NewInt(2))
	require.ErrorIs(t, err, ErrMulDivOverflow)
}
