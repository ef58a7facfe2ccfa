package pairengine

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TokenLedger is the balance/transfer collaborator a PairCore moves tokens
// through. The pair never calls transferFrom on a user wallet directly — it
// always settles through a callback — so this only needs to read and move
// the pair's own balance.
type TokenLedger interface {
	BalanceOf(owner string) (decimal.Decimal, error)
	Transfer(to string, amount decimal.Decimal) error
}

// EventSink receives the lifecycle events PairCore emits. A nil sink is
// valid; events are simply dropped, since NewPairFromConfig never
// requires one.
type EventSink interface {
	OnInitialize(pairAddress string, sqrtPriceX96 decimal.Decimal, tick int)
	OnMint(pairAddress, recipient string, tickLower, tickUpper int, amount, amount0, amount1 decimal.Decimal)
	OnBurn(pairAddress, owner string, tickLower, tickUpper int, amount, amount0, amount1 decimal.Decimal)
	OnCollect(pairAddress, recipient string, tickLower, tickUpper int, amount0, amount1 decimal.Decimal)
	OnSwap(pairAddress, recipient string, amount0, amount1 decimal.Decimal, sqrtPriceX96 decimal.Decimal, liquidity decimal.Decimal, tick int)
}

// PairConfig carries the parameters fixed at pair creation.
type PairConfig struct {
	TickSpacing int
	Token0      string
	Token1      string
	Fee         FeeAmount
}

func NewPairConfig(tickSpacing int, token0, token1 string, fee FeeAmount) *PairConfig {
	return &PairConfig{TickSpacing: tickSpacing, Token0: token0, Token1: token1, Fee: fee}
}

// PairCore is the concentrated-liquidity engine for one token pair: slot0,
// the active liquidity/fee-growth accumulators, the tick graph, the
// position table and the oracle ring buffer. A flat gorm.Model-embedding
// persistence shape, calling the natively implemented
// TickMath/SqrtPriceMath/SwapMath rather than delegating to an external
// SDK, and carrying a reentrancy lock, protocol fee split and oracle
// writes alongside the core swap loop.
type PairCore struct {
	gorm.Model
	PairAddress string `gorm:"index"`
	HasCreated  bool
	Owner       string

	Token0              string
	Token1              string
	Fee                 FeeAmount
	TickSpacing         int
	MaxLiquidityPerTick decimal.Decimal

	SqrtPriceX96 decimal.Decimal
	TickCurrent  int
	Liquidity    decimal.Decimal

	FeeGrowthGlobal0X128 decimal.Decimal
	FeeGrowthGlobal1X128 decimal.Decimal
	ProtocolFees0        decimal.Decimal
	ProtocolFees1        decimal.Decimal
	FeeProtocol          uint8
	Unlocked             bool

	TickManager     *TickManager
	PositionManager *PositionManager
	Oracle          *Oracle

	Token0Ledger TokenLedger `gorm:"-"`
	Token1Ledger TokenLedger `gorm:"-"`
	Sink         EventSink   `gorm:"-"`

	// lastSimulatedSqrtPriceX96 holds the resulting price of the most
	// recent SimulateSwap dry run; never persisted, never read by a
	// mutating operation.
	lastSimulatedSqrtPriceX96 decimal.Decimal `gorm:"-"`
}

// NewPairFromConfig constructs an uninitialized pair at the given address.
func NewPairFromConfig(addr string, config PairConfig) (*PairCore, error) {
	maxLiq, err := TickSpacingToMaxLiquidityPerTick(config.TickSpacing)
	if err != nil {
		return nil, err
	}
	return &PairCore{
		PairAddress:          addr,
		Token0:               config.Token0,
		Token1:               config.Token1,
		Fee:                  config.Fee,
		TickSpacing:          config.TickSpacing,
		MaxLiquidityPerTick:  fromBig(maxLiq),
		SqrtPriceX96:         ZERO,
		Liquidity:            ZERO,
		FeeGrowthGlobal0X128: ZERO,
		FeeGrowthGlobal1X128: ZERO,
		ProtocolFees0:        ZERO,
		ProtocolFees1:        ZERO,
		Unlocked:             true,
		TickManager:          NewTickManager(config.TickSpacing),
		PositionManager:      NewPositionManager(),
		Oracle:               NewOracle(),
	}, nil
}

// Clone returns a deep copy, used by dry-run replay paths that need to
// probe candidate swap parameters without mutating the live pair.
func (p *PairCore) Clone() *PairCore {
	return &PairCore{
		PairAddress:          p.PairAddress,
		HasCreated:           p.HasCreated,
		Owner:                p.Owner,
		Token0:               p.Token0,
		Token1:               p.Token1,
		Fee:                  p.Fee,
		TickSpacing:          p.TickSpacing,
		MaxLiquidityPerTick:  p.MaxLiquidityPerTick,
		SqrtPriceX96:         p.SqrtPriceX96,
		TickCurrent:          p.TickCurrent,
		Liquidity:            p.Liquidity,
		FeeGrowthGlobal0X128: p.FeeGrowthGlobal0X128,
		FeeGrowthGlobal1X128: p.FeeGrowthGlobal1X128,
		ProtocolFees0:        p.ProtocolFees0,
		ProtocolFees1:        p.ProtocolFees1,
		FeeProtocol:          p.FeeProtocol,
		Unlocked:             p.Unlocked,
		TickManager:          p.TickManager.Clone(),
		PositionManager:      p.PositionManager.Clone(),
		Oracle:               p.Oracle.Clone(),
	}
}

// lock acquires the reentrancy flag (slot0.unlocked), failing with LOK if
// a mutating operation is already in flight.
func (p *PairCore) lock() error {
	if !p.Unlocked {
		return ErrLocked
	}
	p.Unlocked = false
	return nil
}

func (p *PairCore) unlock() { p.Unlocked = true }

// Initialize sets the starting price and derives the starting tick.
func (p *PairCore) Initialize(sqrtPriceX96 decimal.Decimal, time uint32) error {
	if !p.SqrtPriceX96.IsZero() {
		return ErrAlreadyInitialized
	}
	tick, err := GetTickAtSqrtRatio(bi(sqrtPriceX96))
	if err != nil {
		return err
	}
	p.SqrtPriceX96 = sqrtPriceX96
	p.TickCurrent = tick
	p.Unlocked = true
	p.Oracle.Initialize(time)
	if p.Sink != nil {
		p.Sink.OnInitialize(p.PairAddress, sqrtPriceX96, tick)
	}
	return nil
}

func (p *PairCore) checkTicks(tickLower, tickUpper int) error {
	if !(tickLower < tickUpper) {
		return ErrTickLowerUpper
	}
	if tickLower < MinTick {
		return ErrTickLowerOutOfRange
	}
	if tickUpper > MaxTick {
		return ErrTickUpperOutOfRange
	}
	if tickLower%p.TickSpacing != 0 || tickUpper%p.TickSpacing != 0 {
		return ErrTickNotOnSpacing
	}
	return nil
}

// Mint adds liquidity to [tickLower, tickUpper], settling the owed amounts
// through cb.
func (p *PairCore) Mint(recipient string, tickLower, tickUpper int, amount decimal.Decimal, data []byte, cb MintCallback, time uint32) (decimal.Decimal, decimal.Decimal, error) {
	if !amount.IsPositive() {
		return ZERO, ZERO, ErrZeroAmountSpecified
	}
	if fromBig(maxLiquidityDelta).LessThanOrEqual(amount) {
		return ZERO, ZERO, ErrAmountTooLarge
	}
	if err := p.lock(); err != nil {
		return ZERO, ZERO, err
	}
	defer p.unlock()

	_, amount0, amount1, err := p.modifyPosition(recipient, tickLower, tickUpper, amount, time)
	if err != nil {
		return ZERO, ZERO, err
	}

	if err := p.settleCallback(amount0, amount1, cb, data, true); err != nil {
		return ZERO, ZERO, err
	}

	if p.Sink != nil {
		p.Sink.OnMint(p.PairAddress, recipient, tickLower, tickUpper, amount, amount0, amount1)
	}
	return amount0, amount1, nil
}

// settleCallback invokes the mint callback and verifies the ledger balance
// covers what was quoted.
func (p *PairCore) settleCallback(amount0, amount1 decimal.Decimal, cb MintCallback, data []byte, isMint bool) error {
	if cb == nil {
		return nil
	}
	var before0, before1 decimal.Decimal
	var err error
	if p.Token0Ledger != nil {
		if before0, err = p.Token0Ledger.BalanceOf(p.PairAddress); err != nil {
			return err
		}
	}
	if p.Token1Ledger != nil {
		if before1, err = p.Token1Ledger.BalanceOf(p.PairAddress); err != nil {
			return err
		}
	}

	if err := cb.PairMintCallback(amount0, amount1, data); err != nil {
		return err
	}

	if p.Token0Ledger != nil {
		after0, err := p.Token0Ledger.BalanceOf(p.PairAddress)
		if err != nil {
			return err
		}
		if err := verifyCallbackBalance(before0, after0, amount0, ErrMint0Underpaid); err != nil {
			return err
		}
	}
	if p.Token1Ledger != nil {
		after1, err := p.Token1Ledger.BalanceOf(p.PairAddress)
		if err != nil {
			return err
		}
		if err := verifyCallbackBalance(before1, after1, amount1, ErrMint1Underpaid); err != nil {
			return err
		}
	}
	return nil
}

// Burn removes liquidity from [tickLower, tickUpper], moving the computed
// amounts into tokensOwed rather than transferring them immediately, the
// dual of Mint.
func (p *PairCore) Burn(owner string, tickLower, tickUpper int, amount decimal.Decimal, time uint32) (decimal.Decimal, decimal.Decimal, error) {
	if amount.IsNegative() {
		return ZERO, ZERO, ErrZeroAmountSpecified
	}
	if err := p.lock(); err != nil {
		return ZERO, ZERO, err
	}
	defer p.unlock()

	position, amount0, amount1, err := p.modifyPosition(owner, tickLower, tickUpper, amount.Neg(), time)
	if err != nil {
		return ZERO, ZERO, err
	}
	amount0 = amount0.Neg()
	amount1 = amount1.Neg()
	if amount0.IsPositive() || amount1.IsPositive() {
		position.UpdateBurn(position.TokensOwed0.Add(amount0), position.TokensOwed1.Add(amount1))
	}
	if p.Sink != nil {
		p.Sink.OnBurn(p.PairAddress, owner, tickLower, tickUpper, amount, amount0, amount1)
	}
	return amount0, amount1, nil
}

// Collect transfers up to the requested caps out of a position's
// tokensOwed.
func (p *PairCore) Collect(recipient, owner string, tickLower, tickUpper int, amount0Req, amount1Req decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if err := p.checkTicks(tickLower, tickUpper); err != nil {
		return ZERO, ZERO, err
	}
	amount0, amount1, err := p.PositionManager.CollectPosition(owner, tickLower, tickUpper, amount0Req, amount1Req)
	if err != nil {
		return ZERO, ZERO, err
	}
	if amount0.IsPositive() && p.Token0Ledger != nil {
		if err := p.Token0Ledger.Transfer(recipient, amount0); err != nil {
			return ZERO, ZERO, err
		}
	}
	if amount1.IsPositive() && p.Token1Ledger != nil {
		if err := p.Token1Ledger.Transfer(recipient, amount1); err != nil {
			return ZERO, ZERO, err
		}
	}
	if p.Sink != nil {
		p.Sink.OnCollect(p.PairAddress, recipient, tickLower, tickUpper, amount0, amount1)
	}
	return amount0, amount1, nil
}

// modifyPosition applies liquidityDelta to (owner, lower, upper) and
// returns the token amounts owed, choosing the amount0/amount1 formula
// by where tickCurrent sits relative to the range. Calls the native
// TickMath/SqrtPriceMath helpers (which return *big.Int/error) rather
// than an external SDK.
func (p *PairCore) modifyPosition(owner string, tickLower, tickUpper int, liquidityDelta decimal.Decimal, time uint32) (*Position, decimal.Decimal, decimal.Decimal, error) {
	if err := p.checkTicks(tickLower, tickUpper); err != nil {
		return nil, ZERO, ZERO, err
	}

	if liquidityDelta.IsNegative() {
		view := p.PositionManager.GetPositionReadonly(owner, tickLower, tickUpper)
		if view.Liquidity.LessThan(liquidityDelta.Neg()) {
			return nil, ZERO, ZERO, ErrCannotBurnMore
		}
	}

	position, err := p.updatePosition(owner, tickLower, tickUpper, liquidityDelta, time)
	if err != nil {
		return nil, ZERO, ZERO, err
	}

	amount0, amount1 := ZERO, ZERO
	if liquidityDelta.IsZero() {
		return position, amount0, amount1, nil
	}

	sqrtA, err := GetSqrtRatioAtTick(tickLower)
	if err != nil {
		return nil, ZERO, ZERO, err
	}
	sqrtB, err := GetSqrtRatioAtTick(tickUpper)
	if err != nil {
		return nil, ZERO, ZERO, err
	}
	liq := bi(liquidityDelta.Abs())
	roundUp := liquidityDelta.IsPositive()

	switch {
	case p.TickCurrent < tickLower:
		a0, err := GetAmount0Delta(sqrtA, sqrtB, liq, roundUp)
		if err != nil {
			return nil, ZERO, ZERO, err
		}
		amount0 = signedAmount(a0, liquidityDelta)
	case p.TickCurrent < tickUpper:
		sqrtCurrent := bi(p.SqrtPriceX96)
		a0, err := GetAmount0Delta(sqrtCurrent, sqrtB, liq, roundUp)
		if err != nil {
			return nil, ZERO, ZERO, err
		}
		a1, err := GetAmount1Delta(sqrtA, sqrtCurrent, liq, roundUp)
		if err != nil {
			return nil, ZERO, ZERO, err
		}
		amount0 = signedAmount(a0, liquidityDelta)
		amount1 = signedAmount(a1, liquidityDelta)

		p.Oracle.Write(time, p.TickCurrent, p.Liquidity)
		p.Liquidity, err = AddDelta(p.Liquidity, liquidityDelta)
		if err != nil {
			return nil, ZERO, ZERO, err
		}
	default:
		a1, err := GetAmount1Delta(sqrtA, sqrtB, liq, roundUp)
		if err != nil {
			return nil, ZERO, ZERO, err
		}
		amount1 = signedAmount(a1, liquidityDelta)
	}

	return position, amount0, amount1, nil
}

// signedAmount reapplies liquidityDelta's sign to a magnitude computed from
// its absolute value, so burns (negative delta) yield amounts the caller
// negates back to a credit.
func signedAmount(magnitude *big.Int, liquidityDelta decimal.Decimal) decimal.Decimal {
	amt := fromBig(magnitude)
	if liquidityDelta.IsNegative() {
		return amt.Neg()
	}
	return amt
}

// updatePosition folds liquidityDelta into the tick graph and the
// position's fee-growth snapshot.
func (p *PairCore) updatePosition(owner string, lower, upper int, delta decimal.Decimal, time uint32) (*Position, error) {
	position := p.PositionManager.GetPositionAndInitIfAbsent(GetPositionKey(owner, lower, upper))

	flippedLower, flippedUpper := false, false
	if !delta.IsZero() {
		tickCumulative, secondsPerLiquidityCumulative, err := p.Oracle.ObserveNow(time, p.TickCurrent, p.Liquidity)
		if err != nil {
			return nil, err
		}
		flippedLower, err = p.TickManager.Update(
			lower, p.TickCurrent, delta,
			p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128,
			secondsPerLiquidityCumulative, tickCumulative, time, false, bi(p.MaxLiquidityPerTick),
		)
		if err != nil {
			return nil, err
		}
		flippedUpper, err = p.TickManager.Update(
			upper, p.TickCurrent, delta,
			p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128,
			secondsPerLiquidityCumulative, tickCumulative, time, true, bi(p.MaxLiquidityPerTick),
		)
		if err != nil {
			return nil, err
		}
	}

	fi0, fi1, err := p.TickManager.GetFeeGrowthInside(lower, upper, p.TickCurrent, p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128)
	if err != nil {
		return nil, err
	}
	if err := position.Update(delta, fi0, fi1); err != nil {
		return nil, err
	}

	if delta.IsNegative() {
		if flippedLower {
			p.TickManager.Clear(lower)
		}
		if flippedUpper {
			p.TickManager.Clear(upper)
		}
	}
	return position, nil
}

// swapState tracks the running totals across a swap's stepping loop.
type swapState struct {
	amountSpecifiedRemaining decimal.Decimal
	amountCalculated         decimal.Decimal
	sqrtPriceX96             decimal.Decimal
	tick                     int
	liquidity                decimal.Decimal
	feeGrowthGlobalX128      decimal.Decimal
	protocolFee              decimal.Decimal
}

type stepComputations struct {
	sqrtPriceStartX96 *big.Int
	tickNext          int
	initialized       bool
	sqrtPriceNextX96  *big.Int
	amountIn          *big.Int
	amountOut         *big.Int
	feeAmount         *big.Int
}

// Swap runs the price-stepping loop, crossing initialized ticks one at a
// time until amountSpecified is exhausted or the caller's price limit is
// reached, then settles the callback and emits the Swap event.
func (p *PairCore) Swap(recipient string, zeroForOne bool, amountSpecified decimal.Decimal, sqrtPriceLimitX96 *decimal.Decimal, data []byte, cb SwapCallback, time uint32) (decimal.Decimal, decimal.Decimal, error) {
	if err := p.lock(); err != nil {
		return ZERO, ZERO, err
	}
	defer p.unlock()

	amount0, amount1, err := p.swapCore(zeroForOne, amountSpecified, sqrtPriceLimitX96, time, false)
	if err != nil {
		return ZERO, ZERO, err
	}
	if err := p.settleSwap(recipient, amount0, amount1, data, cb); err != nil {
		return ZERO, ZERO, err
	}
	if p.Sink != nil {
		p.Sink.OnSwap(p.PairAddress, recipient, amount0, amount1, p.SqrtPriceX96, p.Liquidity, p.TickCurrent)
	}
	return amount0, amount1, nil
}

// SimulateSwap runs the identical stepping loop without committing any
// state or invoking a callback (the isStatic branch of swapCore); used by
// a dry-run solver to test candidate (amountSpecified, sqrtPriceLimit)
// pairs against an observed Swap event without mutating the live pair.
func (p *PairCore) SimulateSwap(zeroForOne bool, amountSpecified decimal.Decimal, sqrtPriceLimitX96 *decimal.Decimal, time uint32) (amount0, amount1, sqrtPriceX96After decimal.Decimal, err error) {
	amount0, amount1, err = p.swapCore(zeroForOne, amountSpecified, sqrtPriceLimitX96, time, true)
	if err != nil {
		return ZERO, ZERO, ZERO, err
	}
	return amount0, amount1, p.lastSimulatedSqrtPriceX96, nil
}

// settleSwap transfers the output leg, invokes the swap callback, and
// verifies the pair's balance covers the input leg.
func (p *PairCore) settleSwap(recipient string, amount0, amount1 decimal.Decimal, data []byte, cb SwapCallback) error {
	if amount1.IsNegative() && p.Token1Ledger != nil {
		if err := p.Token1Ledger.Transfer(recipient, amount1.Neg()); err != nil {
			return err
		}
	}
	if amount0.IsNegative() && p.Token0Ledger != nil {
		if err := p.Token0Ledger.Transfer(recipient, amount0.Neg()); err != nil {
			return err
		}
	}
	if cb == nil {
		return nil
	}
	var before0, before1 decimal.Decimal
	var err error
	if p.Token0Ledger != nil {
		if before0, err = p.Token0Ledger.BalanceOf(p.PairAddress); err != nil {
			return err
		}
	}
	if p.Token1Ledger != nil {
		if before1, err = p.Token1Ledger.BalanceOf(p.PairAddress); err != nil {
			return err
		}
	}
	if err := cb.PairSwapCallback(amount0, amount1, data); err != nil {
		return err
	}
	if amount0.IsPositive() && p.Token0Ledger != nil {
		after0, err := p.Token0Ledger.BalanceOf(p.PairAddress)
		if err != nil {
			return err
		}
		if err := verifyCallbackBalance(before0, after0, amount0, ErrSwapUnderpaid); err != nil {
			return err
		}
	}
	if amount1.IsPositive() && p.Token1Ledger != nil {
		after1, err := p.Token1Ledger.BalanceOf(p.PairAddress)
		if err != nil {
			return err
		}
		if err := verifyCallbackBalance(before1, after1, amount1, ErrSwapUnderpaid); err != nil {
			return err
		}
	}
	return nil
}

// swapCore runs the price-stepping loop itself. When isStatic is false it
// commits slot0/liquidity/fee-growth/protocol-fees/oracle writes to p;
// when true (a dry run) it leaves p untouched and records the resulting
// price in p.lastSimulatedSqrtPriceX96 for the caller to read.
func (p *PairCore) swapCore(zeroForOne bool, amountSpecified decimal.Decimal, sqrtPriceLimitX96 *decimal.Decimal, time uint32, isStatic bool) (decimal.Decimal, decimal.Decimal, error) {
	if amountSpecified.IsZero() {
		return ZERO, ZERO, ErrZeroAmountSpecified
	}

	var limit decimal.Decimal
	if sqrtPriceLimitX96 != nil {
		limit = *sqrtPriceLimitX96
	} else if zeroForOne {
		limit = fromBig(MinSqrtRatio).Add(ONE)
	} else {
		limit = fromBig(MaxSqrtRatio).Sub(ONE)
	}

	if zeroForOne {
		if !limit.LessThan(p.SqrtPriceX96) || !limit.GreaterThan(fromBig(MinSqrtRatio)) {
			return ZERO, ZERO, ErrPriceLimitWrongSide
		}
	} else {
		if !limit.GreaterThan(p.SqrtPriceX96) || !limit.LessThan(fromBig(MaxSqrtRatio)) {
			return ZERO, ZERO, ErrPriceLimitWrongSide
		}
	}

	exactInput := amountSpecified.GreaterThan(ZERO)
	startTick := p.TickCurrent
	startLiquidity := p.Liquidity

	state := swapState{
		amountSpecifiedRemaining: amountSpecified,
		amountCalculated:         ZERO,
		sqrtPriceX96:             p.SqrtPriceX96,
		tick:                     p.TickCurrent,
		liquidity:                p.Liquidity,
		protocolFee:              ZERO,
	}
	if zeroForOne {
		state.feeGrowthGlobalX128 = p.FeeGrowthGlobal0X128
	} else {
		state.feeGrowthGlobalX128 = p.FeeGrowthGlobal1X128
	}

	if logrus.GetLevel() >= logrus.DebugLevel {
		logrus.Debugf("swap start pair=%s zeroForOne=%t exactInput=%t amountSpecified=%s price=%s limit=%s",
			p.PairAddress, zeroForOne, exactInput, amountSpecified, p.SqrtPriceX96, limit)
	}

	observationComputed := false
	var tickCumulative int64
	var secondsPerLiquidityCumulativeX128 decimal.Decimal
	loopGuard := 0
	for !state.amountSpecifiedRemaining.IsZero() && !state.sqrtPriceX96.Equal(limit) {
		loopGuard++
		if loopGuard > 1_000_000 {
			return ZERO, ZERO, fmt.Errorf("pairengine: swap exceeded loop bound")
		}

		step := stepComputations{sqrtPriceStartX96: bi(state.sqrtPriceX96)}

		tickNext, initialized, err := p.TickManager.GetNextInitializedTick(state.tick, p.TickSpacing, zeroForOne)
		if err != nil {
			return ZERO, ZERO, err
		}
		if tickNext < MinTick {
			tickNext = MinTick
		} else if tickNext > MaxTick {
			tickNext = MaxTick
		}
		step.tickNext = tickNext
		step.initialized = initialized

		sqrtPriceNext, err := GetSqrtRatioAtTick(step.tickNext)
		if err != nil {
			return ZERO, ZERO, err
		}
		step.sqrtPriceNextX96 = sqrtPriceNext

		target := step.sqrtPriceNextX96
		if zeroForOne {
			if bi(limit).Cmp(step.sqrtPriceNextX96) > 0 {
				target = bi(limit)
			}
		} else {
			if bi(limit).Cmp(step.sqrtPriceNextX96) < 0 {
				target = bi(limit)
			}
		}

		res, err := ComputeSwapStep(bi(state.sqrtPriceX96), target, bi(state.liquidity), bi(state.amountSpecifiedRemaining), uint32(p.Fee))
		if err != nil {
			return ZERO, ZERO, err
		}
		state.sqrtPriceX96 = fromBig(res.SqrtPriceNextX96)
		step.amountIn = res.AmountIn
		step.amountOut = res.AmountOut
		step.feeAmount = res.FeeAmount

		if exactInput {
			state.amountSpecifiedRemaining = state.amountSpecifiedRemaining.Sub(fromBig(step.amountIn).Add(fromBig(step.feeAmount)))
			state.amountCalculated = state.amountCalculated.Sub(fromBig(step.amountOut))
		} else {
			state.amountSpecifiedRemaining = state.amountSpecifiedRemaining.Add(fromBig(step.amountOut))
			state.amountCalculated = state.amountCalculated.Add(fromBig(step.amountIn).Add(fromBig(step.feeAmount)))
		}

		stepFee := fromBig(step.feeAmount)
		if p.FeeProtocol > 0 && stepFee.IsPositive() {
			delta := stepFee.Div(decimal.NewFromInt(int64(p.FeeProtocol))).Truncate(0)
			state.protocolFee = state.protocolFee.Add(delta)
			stepFee = stepFee.Sub(delta)
		}
		if state.liquidity.IsPositive() {
			state.feeGrowthGlobalX128 = state.feeGrowthGlobalX128.Add(stepFee.Mul(Q128).Div(state.liquidity).Truncate(0))
		}

		if bi(state.sqrtPriceX96).Cmp(step.sqrtPriceNextX96) == 0 {
			if step.initialized {
				var liquidityNet decimal.Decimal
				if isStatic {
					liquidityNet = p.TickManager.GetTickReadonly(step.tickNext).LiquidityNet
				} else {
					if !observationComputed {
						tickCumulative, secondsPerLiquidityCumulativeX128, err = p.Oracle.ObserveNow(time, startTick, startLiquidity)
						if err != nil {
							return ZERO, ZERO, err
						}
						observationComputed = true
					}
					if zeroForOne {
						liquidityNet = p.TickManager.Cross(step.tickNext, state.feeGrowthGlobalX128, p.FeeGrowthGlobal1X128, secondsPerLiquidityCumulativeX128, tickCumulative, time)
					} else {
						liquidityNet = p.TickManager.Cross(step.tickNext, p.FeeGrowthGlobal0X128, state.feeGrowthGlobalX128, secondsPerLiquidityCumulativeX128, tickCumulative, time)
					}
				}
				if zeroForOne {
					liquidityNet = liquidityNet.Neg()
				}
				state.liquidity, err = AddDelta(state.liquidity, liquidityNet)
				if err != nil {
					return ZERO, ZERO, err
				}
			}
			if zeroForOne {
				state.tick = step.tickNext - 1
			} else {
				state.tick = step.tickNext
			}
		} else if bi(state.sqrtPriceX96).Cmp(step.sqrtPriceStartX96) != 0 {
			state.tick, err = GetTickAtSqrtRatio(bi(state.sqrtPriceX96))
			if err != nil {
				return ZERO, ZERO, err
			}
		}

		if logrus.GetLevel() >= logrus.TraceLevel {
			logrus.Tracef("swap step tick=%d price=%s in=%s out=%s fee=%s liquidity=%s",
				state.tick, state.sqrtPriceX96, fromBig(step.amountIn), fromBig(step.amountOut), fromBig(step.feeAmount), state.liquidity)
		}
	}

	var amount0, amount1 decimal.Decimal
	if zeroForOne == exactInput {
		amount0 = amountSpecified.Sub(state.amountSpecifiedRemaining)
		amount1 = state.amountCalculated
	} else {
		amount0 = state.amountCalculated
		amount1 = amountSpecified.Sub(state.amountSpecifiedRemaining)
	}

	if isStatic {
		// Dry run: report the resulting price without touching any
		// committed field, callback, or ledger transfer. The caller
		// (settleSwap, invoked from Swap) owns settlement for the live path.
		p.lastSimulatedSqrtPriceX96 = state.sqrtPriceX96
		return amount0, amount1, nil
	}

	p.SqrtPriceX96 = state.sqrtPriceX96
	if state.tick != startTick {
		p.Oracle.Write(time, startTick, startLiquidity)
		p.TickCurrent = state.tick
	}
	p.Liquidity = state.liquidity
	if zeroForOne {
		p.FeeGrowthGlobal0X128 = state.feeGrowthGlobalX128
		p.ProtocolFees0 = p.ProtocolFees0.Add(state.protocolFee)
	} else {
		p.FeeGrowthGlobal1X128 = state.feeGrowthGlobalX128
		p.ProtocolFees1 = p.ProtocolFees1.Add(state.protocolFee)
	}

	if logrus.GetLevel() >= logrus.DebugLevel {
		logrus.Debugf("swap done pair=%s amount0=%s amount1=%s price=%s tick=%d", p.PairAddress, amount0, amount1, p.SqrtPriceX96, p.TickCurrent)
	}
	return amount0, amount1, nil
}

// Observe returns the cumulative tick / seconds-per-liquidity values at
// each requested age.
func (p *PairCore) Observe(time uint32, secondsAgos []uint32) ([]int64, []decimal.Decimal, error) {
	return p.Oracle.Observe(time, secondsAgos, p.TickCurrent, p.Liquidity)
}

// IncreaseObservationCardinalityNext grows the oracle's ring buffer,
// returning the new target cardinality.
func (p *PairCore) IncreaseObservationCardinalityNext(target uint16) uint16 {
	return p.Oracle.Grow(target)
}

// SetFeeProtocol is owner-gated.
func (p *PairCore) SetFeeProtocol(caller string, feeProtocol uint8) error {
	if caller != p.Owner {
		return ErrNotOwner
	}
	if feeProtocol != 0 && (feeProtocol < 4 || feeProtocol > 10) {
		return ErrInvalidFeeProtocol
	}
	p.FeeProtocol = feeProtocol
	return nil
}

// CollectProtocol is owner-gated.
func (p *PairCore) CollectProtocol(caller, recipient string, amount0Req, amount1Req decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if caller != p.Owner {
		return ZERO, ZERO, ErrNotOwner
	}
	amount0 := amount0Req
	if amount0.GreaterThan(p.ProtocolFees0) {
		amount0 = p.ProtocolFees0
	}
	amount1 := amount1Req
	if amount1.GreaterThan(p.ProtocolFees1) {
		amount1 = p.ProtocolFees1
	}
	p.ProtocolFees0 = p.ProtocolFees0.Sub(amount0)
	p.ProtocolFees1 = p.ProtocolFees1.Sub(amount1)
	if amount0.IsPositive() && p.Token0Ledger != nil {
		if err := p.Token0Ledger.Transfer(recipient, amount0); err != nil {
			return ZERO, ZERO, err
		}
	}
	if amount1.IsPositive() && p.Token1Ledger != nil {
		if err := p.Token1Ledger.Transfer(recipient, amount1); err != nil {
			return ZERO, ZERO, err
		}
	}
	return amount0, amount1, nil
}

// Flush persists the pair, creating it on first save and updating the
// mutable columns thereafter.
func (p *PairCore) Flush(db *gorm.DB) error {
	if p.HasCreated {
		return db.Model(p).Updates(map[string]interface{}{
			"sqrt_price_x96":          p.SqrtPriceX96,
			"tick_current":            p.TickCurrent,
			"liquidity":               p.Liquidity,
			"fee_growth_global0_x128": p.FeeGrowthGlobal0X128,
			"fee_growth_global1_x128": p.FeeGrowthGlobal1X128,
			"protocol_fees0":          p.ProtocolFees0,
			"protocol_fees1":          p.ProtocolFees1,
			"fee_protocol":            p.FeeProtocol,
			"unlocked":                p.Unlocked,
			"tick_manager":            p.TickManager,
			"position_manager":        p.PositionManager,
			"oracle":                  p.Oracle,
		}).Error
	}
	p.HasCreated = true
	return db.Create(p).Error
}
