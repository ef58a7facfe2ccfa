package pairengine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/shopspring/decimal"
)

// swapGuess is one (amountSpecified, sqrtPriceLimitX96) pair tried against
// an observed Swap event by ResolveInputFromSwapResultEvent.
type swapGuess struct {
	amountSpecified decimal.Decimal
	limit           *decimal.Decimal
}

// matchesObservedSwap replays a static swap with the given parameters and
// reports whether the result reproduces the observed event's amount0,
// amount1 and sqrtPriceX96.
// The direction is read off the sign of the event's own amount0, since a
// caller reconstructing a router call only has the event to go on.
func (p *PairCore) matchesObservedSwap(event *UniV3SwapEvent, guess swapGuess) bool {
	zeroForOne := event.Amount0.IsPositive()

	amount0, amount1, priceX96, err := p.SimulateSwap(zeroForOne, guess.amountSpecified, guess.limit, 0)
	if err != nil {
		if logrus.GetLevel() >= logrus.DebugLevel {
			logrus.Debugf("reconciliation guess amountSpecified=%s limit=%v rejected for tx=%s: %s",
				guess.amountSpecified, guess.limit, event.RawEvent.TxHash, err)
		}
		return false
	}

	return amount0.Equal(event.Amount0) &&
		amount1.Equal(event.Amount1) &&
		priceX96.Equal(event.SqrtPriceX96)
}

// ResolveInputFromSwapResultEvent recovers the (amountSpecified,
// sqrtPriceLimitX96) a caller must have passed to Swap to produce the
// observed event. The swap math can't be inverted directly: the event only
// records what actually moved, and once a price limit cuts a swap short,
// any amountSpecified large enough to reach that limit produces an
// identical result, so the original magnitude is unrecoverable — only
// its direction and the fact that a limit existed can be recovered. The
// search tries, in order:
//
//  1. no price limit, amountSpecified equal to the event's own amount0 or
//     amount1 (the common case: the swap consumed its whole specified
//     amount without ever touching a price boundary);
//  2. a price limit pinned at the event's resulting sqrtPriceX96, with
//     amountSpecified pushed to the u128 ceiling in both the exact-input
//     and exact-output direction (whatever the original caller actually
//     specified, this guarantees hitting the same limit first).
//
// The first guess whose static replay reproduces amount0/amount1/price
// exactly is returned.
func (p *PairCore) ResolveInputFromSwapResultEvent(event *UniV3SwapEvent) (decimal.Decimal, *decimal.Decimal, error) {
	if event == nil {
		return ZERO, nil, fmt.Errorf("pairengine: swap event is nil")
	}

	guesses := []swapGuess{
		{amountSpecified: event.Amount0},
		{amountSpecified: event.Amount1},
	}

	ceiling := fromBig(maxLiquidity)
	guesses = append(guesses,
		swapGuess{amountSpecified: ceiling, limit: &event.SqrtPriceX96},
		swapGuess{amountSpecified: ceiling.Neg(), limit: &event.SqrtPriceX96},
	)

	for i, guess := range guesses {
		if p.matchesObservedSwap(event, guess) {
			if logrus.GetLevel() >= logrus.DebugLevel {
				logrus.Debugf("resolved swap input via guess %d/%d for tx=%s pair=%s", i+1, len(guesses), event.RawEvent.TxHash, p.PairAddress)
			}
			return guess.amountSpecified, guess.limit, nil
		}
	}

	err := fmt.Errorf("pairengine: no swap solution reproduces tx=%s pair=%s amount0=%s amount1=%s sqrtPrice=%s",
		event.RawEvent.TxHash, p.PairAddress, event.Amount0, event.Amount1, event.SqrtPriceX96)
	logrus.Error(err)
	return ZERO, nil, err
}
