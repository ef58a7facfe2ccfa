package pairengine

import "math/big"

// SwapStepResult is the outcome of one computeSwapStep call.
type SwapStepResult struct {
	SqrtPriceNextX96 *big.Int
	AmountIn         *big.Int
	AmountOut        *big.Int
	FeeAmount        *big.Int
}

// ComputeSwapStep computes one step of a swap within a constant-liquidity
// segment: the resulting sqrt price, amountIn, amountOut and fee. Adapted
// from other_examples/23e0a5b9_defistate-defistate-client-go__...swap_math.go
// (itself a 1:1 port of Uniswap's SwapMath.sol), simplified from that
// file's destination-pointer/sync.Pool style to plain return values.
func ComputeSwapStep(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, amountRemaining *big.Int, feePips uint32) (*SwapStepResult, error) {
	zeroForOne := sqrtRatioCurrentX96.Cmp(sqrtRatioTargetX96) >= 0
	exactIn := amountRemaining.Sign() >= 0

	feePipsBig := big.NewInt(int64(feePips))
	feeComplement := new(big.Int).Sub(big.NewInt(feeDenominator), feePipsBig)

	res := &SwapStepResult{AmountIn: big.NewInt(0), AmountOut: big.NewInt(0), FeeAmount: big.NewInt(0)}

	// amountIn/amountOut carry the full-step amount computed below forward
	// into the reachedTarget reuse below, mirroring the Solidity source's
	// reuse of its own amountIn/amountOut return variables instead of
	// recomputing (or dropping) them.
	var amountIn, amountOut *big.Int

	if exactIn {
		amountRemainingLessFee, err := MulDiv(amountRemaining, feeComplement, big.NewInt(feeDenominator))
		if err != nil {
			return nil, err
		}

		var err2 error
		if zeroForOne {
			amountIn, err2 = GetAmount0Delta(sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, true)
		} else {
			amountIn, err2 = GetAmount1Delta(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, true)
		}
		if err2 != nil {
			return nil, err2
		}

		if amountRemainingLessFee.Cmp(amountIn) >= 0 {
			res.SqrtPriceNextX96 = new(big.Int).Set(sqrtRatioTargetX96)
		} else {
			next, err2 := GetNextSqrtPriceFromInput(sqrtRatioCurrentX96, liquidity, amountRemainingLessFee, zeroForOne)
			if err2 != nil {
				return nil, err2
			}
			res.SqrtPriceNextX96 = next
		}
	} else {
		amountRemainingAbs := new(big.Int).Neg(amountRemaining)

		var err2 error
		if zeroForOne {
			amountOut, err2 = GetAmount1Delta(sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, false)
		} else {
			amountOut, err2 = GetAmount0Delta(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, false)
		}
		if err2 != nil {
			return nil, err2
		}

		if amountRemainingAbs.Cmp(amountOut) >= 0 {
			res.SqrtPriceNextX96 = new(big.Int).Set(sqrtRatioTargetX96)
		} else {
			next, err2 := GetNextSqrtPriceFromOutput(sqrtRatioCurrentX96, liquidity, amountRemainingAbs, zeroForOne)
			if err2 != nil {
				return nil, err2
			}
			res.SqrtPriceNextX96 = next
		}
	}

	reachedTarget := sqrtRatioTargetX96.Cmp(res.SqrtPriceNextX96) == 0

	var err error
	if zeroForOne {
		if reachedTarget && exactIn {
			res.AmountIn = amountIn
		} else {
			res.AmountIn, err = GetAmount0Delta(res.SqrtPriceNextX96, sqrtRatioCurrentX96, liquidity, true)
			if err != nil {
				return nil, err
			}
		}
		if reachedTarget && !exactIn {
			res.AmountOut = amountOut
		} else {
			res.AmountOut, err = GetAmount1Delta(res.SqrtPriceNextX96, sqrtRatioCurrentX96, liquidity, false)
			if err != nil {
				return nil, err
			}
		}
	} else {
		if reachedTarget && exactIn {
			res.AmountIn = amountIn
		} else {
			res.AmountIn, err = GetAmount1Delta(sqrtRatioCurrentX96, res.SqrtPriceNextX96, liquidity, true)
			if err != nil {
				return nil, err
			}
		}
		if reachedTarget && !exactIn {
			res.AmountOut = amountOut
		} else {
			res.AmountOut, err = GetAmount0Delta(sqrtRatioCurrentX96, res.SqrtPriceNextX96, liquidity, false)
			if err != nil {
				return nil, err
			}
		}
	}

	if !exactIn {
		amountRemainingAbs := new(big.Int).Neg(amountRemaining)
		if res.AmountOut.Cmp(amountRemainingAbs) > 0 {
			res.AmountOut = new(big.Int).Set(amountRemainingAbs)
		}
	}

	if exactIn && res.SqrtPriceNextX96.Cmp(sqrtRatioTargetX96) != 0 {
		// Consumed the whole input without reaching the target: the fee is
		// whatever remains after amountIn, so amountIn+fee==amountRemaining
		// holds exactly.
		res.FeeAmount = new(big.Int).Sub(amountRemaining, res.AmountIn)
	} else {
		fee, err := MulDivRoundingUp(res.AmountIn, feePipsBig, feeComplement)
		if err != nil {
			return nil, err
		}
		res.FeeAmount = fee
	}

	return res, nil
}
