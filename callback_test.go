package pairengine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestVerifyCallbackBalanceExactPaymentPasses(t *testing.T) {
	before := decimal.NewFromInt(100)
	after := decimal.NewFromInt(150)
	owed := decimal.NewFromInt(50)
	require.NoError(t, verifyCallbackBalance(before, after, owed, ErrMint0Underpaid))
}

func TestVerifyCallbackBalanceOverpaymentPasses(t *testing.T) {
	before := decimal.NewFromInt(100)
	after := decimal.NewFromInt(200)
	owed := decimal.NewFromInt(50)
	require.NoError(t, verifyCallbackBalance(before, after, owed, ErrMint0Underpaid))
}

func TestVerifyCallbackBalanceUnderpaymentFails(t *testing.T) {
	before := decimal.NewFromInt(100)
	after := decimal.NewFromInt(149)
	owed := decimal.NewFromInt(50)
	err := verifyCallbackBalance(before, after, owed, ErrMint1Underpaid)
	require.ErrorIs(t, err, ErrMint1Underpaid)
}

func TestVerifyCallbackBalanceNoPaymentFails(t *testing.T) {
	before := decimal.NewFromInt(100)
	after := decimal.NewFromInt(100)
	owed := decimal.NewFromInt(1)
	err := verifyCallbackBalance(before, after, owed, ErrSwapUnderpaid)
	require.ErrorIs(t, err, ErrSwapUnderpaid)
}

func TestVerifyCallbackBalanceZeroOwedAllowsZeroDelta(t *testing.T) {
	before := decimal.NewFromInt(100)
	after := decimal.NewFromInt(100)
	owed := decimal.Zero
	require.NoError(t, verifyCallbackBalance(before, after, owed, ErrMint0Underpaid))
}

func TestVerifyCallbackBalanceNegativeDeltaFails(t *testing.T) {
	before := decimal.NewFromInt(100)
	after := decimal.NewFromInt(90)
	owed := decimal.Zero
	err := verifyCallbackBalance(before, after, owed, ErrMint0Underpaid)
	require.ErrorIs(t, err, ErrMint0Underpaid)
}
