package pairengine

import (
	"errors"
	"math/big"
)

// ErrMulDivOverflow is returned when a full-precision mulDiv's mathematical
// result would not fit in 256 bits.
var ErrMulDivOverflow = errors.New("mulDiv: result overflows 256 bits")

// MulDiv computes floor(a*b/denom) using a 512-bit-safe intermediate. With
// math/big's arbitrary precision, a*b never itself overflows; the only
// failure modes are denom == 0, or the quotient exceeding the 256-bit
// range any on-chain accumulator must fit in.
func MulDiv(a, b, denom *big.Int) (*big.Int, error) {
	if denom.Sign() == 0 {
		return nil, errors.New("mulDiv: division by zero")
	}
	product := new(big.Int).Mul(a, b)
	result := new(big.Int).Div(product, denom)
	if result.CmpAbs(maxUint256) > 0 {
		return nil, ErrMulDivOverflow
	}
	return result, nil
}

// MulDivRoundingUp computes ceil(a*b/denom): MulDiv, plus one if the
// division left a nonzero remainder and the result still fits in 256 bits.
func MulDivRoundingUp(a, b, denom *big.Int) (*big.Int, error) {
	if denom.Sign() == 0 {
		return nil, errors.New("mulDivRoundingUp: division by zero")
	}
	product := new(big.Int).Mul(a, b)
	result, rem := new(big.Int).QuoRem(product, denom, new(big.Int))
	if result.CmpAbs(maxUint256) > 0 {
		return nil, ErrMulDivOverflow
	}
	if rem.Sign() != 0 {
		if result.Cmp(maxUint256) >= 0 {
			return nil, ErrMulDivOverflow
		}
		result.Add(result, big.NewInt(1))
	}
	return result, nil
}
