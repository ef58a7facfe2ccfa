package pairengine

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestResolveInputFromSwapResultEventRecoversExactInputSwap(t *testing.T) {
	pair, ledger0, ledger1, _ := newTestPair(t)
	minT, maxT := UsableMinMaxTick(pair.TickSpacing)
	mintCb := &testMintCallback{pairAddress: pair.PairAddress, ledger0: ledger0, ledger1: ledger1}
	_, _, err := pair.Mint("alice", minT, maxT, decimal.NewFromInt(1_000_000), nil, mintCb, 1000)
	require.NoError(t, err)

	preSwap := pair.Clone()

	swapCb := &testSwapCallback{pairAddress: pair.PairAddress, ledger0: ledger0, ledger1: ledger1}
	amount0, amount1, err := pair.Swap("alice", true, decimal.NewFromInt(1000), nil, nil, swapCb, 2000)
	require.NoError(t, err)

	event := &UniV3SwapEvent{
		RawEvent:     &types.Log{TxHash: common.HexToHash("0xabc")},
		Sender:       "alice",
		Recipient:    "alice",
		Amount0:      amount0,
		Amount1:      amount1,
		SqrtPriceX96: pair.SqrtPriceX96,
		Liquidity:    pair.Liquidity,
		Tick:         pair.TickCurrent,
	}

	amountSpecified, sqrtPriceLimit, err := preSwap.ResolveInputFromSwapResultEvent(event)
	require.NoError(t, err)

	replayed := preSwap.Clone()
	gotAmount0, gotAmount1, gotPrice, err := replayed.SimulateSwap(true, amountSpecified, sqrtPriceLimit, 0)
	require.NoError(t, err)
	require.True(t, gotAmount0.Equal(event.Amount0))
	require.True(t, gotAmount1.Equal(event.Amount1))
	require.True(t, gotPrice.Equal(event.SqrtPriceX96))
}

func TestResolveInputFromSwapResultEventNilEventFails(t *testing.T) {
	pair, _, _, _ := newTestPair(t)
	_, _, err := pair.ResolveInputFromSwapResultEvent(nil)
	require.Error(t, err)
}

func TestResolveInputFromSwapResultEventNoSolutionFails(t *testing.T) {
	pair, ledger0, ledger1, _ := newTestPair(t)
	minT, maxT := UsableMinMaxTick(pair.TickSpacing)
	mintCb := &testMintCallback{pairAddress: pair.PairAddress, ledger0: ledger0, ledger1: ledger1}
	_, _, err := pair.Mint("alice", minT, maxT, decimal.NewFromInt(1_000_000), nil, mintCb, 1000)
	require.NoError(t, err)

	event := &UniV3SwapEvent{
		RawEvent:     &types.Log{TxHash: common.HexToHash("0xdead")},
		Amount0:      decimal.NewFromInt(123456789),
		Amount1:      decimal.NewFromInt(-987654321),
		SqrtPriceX96: pair.SqrtPriceX96.Add(decimal.NewFromInt(7)),
		Liquidity:    pair.Liquidity,
		Tick:         pair.TickCurrent,
	}

	_, _, err = pair.ResolveInputFromSwapResultEvent(event)
	require.Error(t, err)
}

func TestResolveInputFromSwapResultEventRecoversPriceLimitedSwap(t *testing.T) {
	pair, ledger0, ledger1, _ := newTestPair(t)
	minT, maxT := UsableMinMaxTick(pair.TickSpacing)
	mintCb := &testMintCallback{pairAddress: pair.PairAddress, ledger0: ledger0, ledger1: ledger1}
	_, _, err := pair.Mint("alice", minT, maxT, decimal.NewFromInt(1_000_000), nil, mintCb, 1000)
	require.NoError(t, err)

	preSwap := pair.Clone()

	target, err := GetSqrtRatioAtTick(-60)
	require.NoError(t, err)
	limit := fromBig(target)

	swapCb := &testSwapCallback{pairAddress: pair.PairAddress, ledger0: ledger0, ledger1: ledger1}
	huge := decimal.NewFromBigInt(maxLiquidity, 0)
	amount0, amount1, err := pair.Swap("alice", true, huge, &limit, nil, swapCb, 2000)
	require.NoError(t, err)

	event := &UniV3SwapEvent{
		RawEvent:     &types.Log{TxHash: common.HexToHash("0xfeed")},
		Sender:       "alice",
		Recipient:    "alice",
		Amount0:      amount0,
		Amount1:      amount1,
		SqrtPriceX96: pair.SqrtPriceX96,
		Liquidity:    pair.Liquidity,
		Tick:         pair.TickCurrent,
	}

	amountSpecified, sqrtPriceLimit, err := preSwap.ResolveInputFromSwapResultEvent(event)
	require.NoError(t, err)
	require.NotNil(t, sqrtPriceLimit)

	replayed := preSwap.Clone()
	gotAmount0, gotAmount1, gotPrice, err := replayed.SimulateSwap(true, amountSpecified, sqrtPriceLimit, 0)
	require.NoError(t, err)
	require.True(t, gotAmount0.Equal(event.Amount0))
	require.True(t, gotAmount1.Equal(event.Amount1))
	require.True(t, gotPrice.Equal(event.SqrtPriceX96))
}
