package pairengine

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// bi converts a decimal to its big.Int value, truncating any fractional
// component. Every decimal flowing through the fixed-point math in this
// package is an integer-valued Q-number, so truncation never discards
// information in practice.
func bi(d decimal.Decimal) *big.Int {
	return d.BigInt()
}

// fromBig wraps a big.Int back into a decimal, the dual of bi.
func fromBig(x *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(x, 0)
}
