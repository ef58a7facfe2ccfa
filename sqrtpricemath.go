package pairengine

import "math/big"

// SqrtPriceMath converts between Q64.96 sqrt-price, liquidity and token
// amounts. Grounded on
// other_examples/23e0a5b9_defistate-defistate-client-go__...swap_math.go,
// which calls exactly this API (sqrtpricemath.GetAmount0Delta, ...) from
// its own package of the same family.

// GetAmount0Delta returns ceil-or-floor(L*(sqrtA-sqrtB)*2^96 / (sqrtA*sqrtB))
// for sqrtA >= sqrtB, using MulDiv throughout to survive the full range.
func GetAmount0Delta(sqrtA, sqrtB, liquidity *big.Int, roundUp bool) (*big.Int, error) {
	if sqrtA.Cmp(sqrtB) > 0 {
		sqrtA, sqrtB = sqrtB, sqrtA
	}
	if sqrtA.Sign() <= 0 {
		return nil, ErrPriceTooLow
	}

	numerator1 := new(big.Int).Lsh(liquidity, 96)
	numerator2 := new(big.Int).Sub(sqrtB, sqrtA)

	if roundUp {
		inner, err := mulDivRoundingUpBig(numerator1, numerator2, sqrtB)
		if err != nil {
			return nil, err
		}
		return divRoundingUp(inner, sqrtA), nil
	}
	inner, err := MulDiv(numerator1, numerator2, sqrtB)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Div(inner, sqrtA), nil
}

// GetAmount1Delta returns L*(sqrtB-sqrtA)/2^96 for sqrtB >= sqrtA.
func GetAmount1Delta(sqrtA, sqrtB, liquidity *big.Int, roundUp bool) (*big.Int, error) {
	if sqrtA.Cmp(sqrtB) > 0 {
		sqrtA, sqrtB = sqrtB, sqrtA
	}
	diff := new(big.Int).Sub(sqrtB, sqrtA)
	if roundUp {
		return mulDivRoundingUpBig(liquidity, diff, q96Big)
	}
	return MulDiv(liquidity, diff, q96Big)
}

// mulDivRoundingUpBig is a thin alias of MulDivRoundingUp, with the same
// overflow check, used by the helpers in this file.
func mulDivRoundingUpBig(a, b, denom *big.Int) (*big.Int, error) {
	return MulDivRoundingUp(a, b, denom)
}

func divRoundingUp(a, b *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// GetNextSqrtPriceFromAmount0RoundingUp solves sqrt' = L*sqrt / (L +- amt*sqrt)
// for the new sqrt price after swapping amt of token0 in (add=true) or out
// (add=false), rounding up.
func GetNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amount *big.Int, add bool) (*big.Int, error) {
	if amount.Sign() == 0 {
		return new(big.Int).Set(sqrtPX96), nil
	}
	numerator1 := new(big.Int).Lsh(liquidity, 96)

	if add {
		product := new(big.Int).Mul(amount, sqrtPX96)
		if new(big.Int).Div(product, amount).Cmp(sqrtPX96) == 0 {
			denominator := new(big.Int).Add(numerator1, product)
			if denominator.Cmp(numerator1) >= 0 {
				return mulDivRoundingUpBig(numerator1, sqrtPX96, denominator)
			}
		}
		denom := new(big.Int).Add(new(big.Int).Div(numerator1, sqrtPX96), amount)
		return divRoundingUp(numerator1, denom), nil
	}

	product := new(big.Int).Mul(amount, sqrtPX96)
	if new(big.Int).Div(product, amount).Cmp(sqrtPX96) != 0 || numerator1.Cmp(product) <= 0 {
		return nil, ErrTickRangeExceeded
	}
	denominator := new(big.Int).Sub(numerator1, product)
	return mulDivRoundingUpBig(numerator1, sqrtPX96, denominator)
}

// GetNextSqrtPriceFromAmount1RoundingDown solves
// sqrt' = sqrt +- amt*2^96/L, rounding down.
func GetNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amount *big.Int, add bool) (*big.Int, error) {
	if add {
		var quotient *big.Int
		if amount.Cmp(maxUint256) <= 0 {
			quotient = new(big.Int).Div(new(big.Int).Lsh(amount, 96), liquidity)
		} else {
			q, err := MulDiv(amount, q96Big, liquidity)
			if err != nil {
				return nil, err
			}
			quotient = q
		}
		return new(big.Int).Add(sqrtPX96, quotient), nil
	}

	quotient, err := mulDivRoundingUpBig(amount, q96Big, liquidity)
	if err != nil {
		return nil, err
	}
	if sqrtPX96.Cmp(quotient) <= 0 {
		return nil, ErrTickRangeExceeded
	}
	return new(big.Int).Sub(sqrtPX96, quotient), nil
}

// GetNextSqrtPriceFromInput picks the amount0/amount1 variant and rounding
// direction so the result never overshoots the true price in the direction
// of the swap.
func GetNextSqrtPriceFromInput(sqrtPX96, liquidity, amountIn *big.Int, zeroForOne bool) (*big.Int, error) {
	if sqrtPX96.Sign() <= 0 || liquidity.Sign() <= 0 {
		return nil, ErrPriceTooLow
	}
	if zeroForOne {
		return GetNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountIn, true)
	}
	return GetNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountIn, true)
}

// GetNextSqrtPriceFromOutput is the dual of GetNextSqrtPriceFromInput.
func GetNextSqrtPriceFromOutput(sqrtPX96, liquidity, amountOut *big.Int, zeroForOne bool) (*big.Int, error) {
	if sqrtPX96.Sign() <= 0 || liquidity.Sign() <= 0 {
		return nil, ErrPriceTooLow
	}
	if zeroForOne {
		return GetNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountOut, false)
	}
	return GetNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountOut, false)
}
