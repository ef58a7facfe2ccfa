package pairengine

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Observation is one slot of the oracle ring buffer, built around
// Uniswap V3's TWAP design, using the same decimal.Decimal-throughout
// style as every other accumulator in this package.
type Observation struct {
	BlockTimestamp     uint32
	TickCumulative     int64
	SecondsPerLiquidityCumulativeX128 decimal.Decimal
	Initialized        bool
}

// Oracle is the fixed-capacity, growable ring buffer of Observations a pool
// appends to once per block. Cardinality is the number of slots the ring
// currently cycles through; CardinalityNext is the number of slots Grow has
// allocated, which Cardinality advances to once a write wraps past the old
// last slot.
type Oracle struct {
	Observations    []Observation
	Index           uint16
	Cardinality     uint16
	CardinalityNext uint16
}

// NewOracle returns an uninitialized oracle with a single unwritten slot,
// matching Uniswap V3's slot0 default (cardinality = cardinalityNext = 1).
func NewOracle() *Oracle {
	return &Oracle{
		Observations:    make([]Observation, 1),
		Cardinality:     1,
		CardinalityNext: 1,
	}
}

// Initialize writes the first observation at pool creation.
func (o *Oracle) Initialize(time uint32) {
	o.Observations[0] = Observation{
		BlockTimestamp: time,
		Initialized:    true,
	}
	o.Cardinality = 1
	o.CardinalityNext = 1
}

// Clone returns a deep copy, used by PairCore.Clone.
func (o *Oracle) Clone() *Oracle {
	out := &Oracle{
		Observations:    make([]Observation, len(o.Observations)),
		Index:           o.Index,
		Cardinality:     o.Cardinality,
		CardinalityNext: o.CardinalityNext,
	}
	copy(out.Observations, o.Observations)
	return out
}

// GormDataType / Scan / Value give Oracle the same JSON-blob GORM
// persistence shape used across the pair's other blob-backed fields.
func (o *Oracle) GormDataType() string { return "LONGTEXT" }

func (o *Oracle) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, o)
	case string:
		return json.Unmarshal([]byte(v), o)
	case nil:
		return nil
	default:
		return fmt.Errorf("failed to unmarshal Oracle value: %v", value)
	}
}

func (o *Oracle) Value() (driver.Value, error) {
	bs, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(bs), nil
}

// Grow extends the ring buffer's backing storage up to next slots. Unwritten
// slots are pre-allocated with Initialized=false so Write's wraparound index
// math never has to special-case array growth mid-cycle.
func (o *Oracle) Grow(next uint16) uint16 {
	if next <= o.CardinalityNext {
		return o.CardinalityNext
	}
	for len(o.Observations) < int(next) {
		o.Observations = append(o.Observations, Observation{})
	}
	o.CardinalityNext = next
	return next
}

// Write appends a new observation if time has advanced past the most
// recent one, folding tickCumulative and secondsPerLiquidityCumulative
// forward and growing cardinality toward cardinalityNext as slots become
// due. Returns the (possibly unchanged) index/cardinality pair, matching
// Uniswap V3's `Oracle.write`.
func (o *Oracle) Write(blockTimestamp uint32, tick int, liquidity decimal.Decimal) (indexUpdated uint16, cardinalityUpdated uint16) {
	last := o.Observations[o.Index]
	if last.BlockTimestamp == blockTimestamp {
		return o.Index, o.Cardinality
	}

	cardinalityUpdated = o.Cardinality
	if o.CardinalityNext > o.Cardinality && o.Index == o.Cardinality-1 {
		cardinalityUpdated = o.CardinalityNext
	}

	indexUpdated = (o.Index + 1) % cardinalityUpdated
	o.Observations[indexUpdated] = o.transform(last, blockTimestamp, tick, liquidity)
	o.Index = indexUpdated
	o.Cardinality = cardinalityUpdated
	return indexUpdated, cardinalityUpdated
}

// transform derives the next observation from the last one, accumulating
// tick*delta and 1/liquidity*delta<<128 since the last write. Liquidity is
// treated as at-least-1 for the seconds-per-liquidity term so an empty
// pool never divides by zero, matching Uniswap V3's `max(liquidity, 1)`.
func (o *Oracle) transform(last Observation, blockTimestamp uint32, tick int, liquidity decimal.Decimal) Observation {
	delta := int64(wrapSub32(blockTimestamp, last.BlockTimestamp))

	l := liquidity
	if l.IsZero() {
		l = decimal.NewFromInt(1)
	}

	tickCumulative := last.TickCumulative + int64(tick)*delta
	tickCumulative = wrapTickCumulative(tickCumulative)

	secondsPerLiquidity := last.SecondsPerLiquidityCumulativeX128.Add(
		decimal.NewFromInt(delta).Shift(0).Mul(Q128).Div(l).Truncate(0),
	)

	return Observation{
		BlockTimestamp:                     blockTimestamp,
		TickCumulative:                     tickCumulative,
		SecondsPerLiquidityCumulativeX128:  secondsPerLiquidity,
		Initialized:                        true,
	}
}

// Observe returns the cumulative tick and seconds-per-liquidity values
// `secondsAgo` in the past for each entry in secondsAgos, extrapolating
// counterfactually past the most recent observation when secondsAgo==0.
func (o *Oracle) Observe(time uint32, secondsAgos []uint32, tick int, liquidity decimal.Decimal) ([]int64, []decimal.Decimal, error) {
	if o.Cardinality == 0 {
		return nil, nil, ErrOracleUninitialized
	}

	tickCumulatives := make([]int64, len(secondsAgos))
	secondsPerLiqCumulatives := make([]decimal.Decimal, len(secondsAgos))
	for i, agoSecs := range secondsAgos {
		tc, spl, err := o.observeSingle(time, agoSecs, tick, liquidity)
		if err != nil {
			return nil, nil, err
		}
		tickCumulatives[i] = tc
		secondsPerLiqCumulatives[i] = spl
	}
	return tickCumulatives, secondsPerLiqCumulatives, nil
}

// ObserveNow returns the tickCumulative/secondsPerLiquidityCumulativeX128
// the most recent observation would carry if transformed forward to time,
// without writing a new ring entry. Used by TickManager.Update/Cross call
// sites, which need the current cumulative values to snapshot or invert a
// tick's "outside" accumulators but must not themselves advance the ring
// (only the swap loop's single post-loop write and mint/burn's in-range
// write do that).
func (o *Oracle) ObserveNow(time uint32, tick int, liquidity decimal.Decimal) (int64, decimal.Decimal, error) {
	return o.observeSingle(time, 0, tick, liquidity)
}

func (o *Oracle) observeSingle(time uint32, secondsAgo uint32, tick int, liquidity decimal.Decimal) (int64, decimal.Decimal, error) {
	if secondsAgo == 0 {
		last := o.Observations[o.Index]
		if last.BlockTimestamp != time {
			last = o.transform(last, time, tick, liquidity)
		}
		return last.TickCumulative, last.SecondsPerLiquidityCumulativeX128, nil
	}

	target := wrapSub32(time, secondsAgo)

	// Counterfactual extrapolation: if target is at or after the newest
	// recorded observation, synthesize it by transforming the
	// newest observation forward instead of searching the ring — there is
	// nothing newer on record to straddle it with.
	newest := o.Observations[o.Index]
	if lteWrap(time, newest.BlockTimestamp, target) {
		if newest.BlockTimestamp == target {
			return newest.TickCumulative, newest.SecondsPerLiquidityCumulativeX128, nil
		}
		extrapolated := o.transform(newest, target, tick, liquidity)
		return extrapolated.TickCumulative, extrapolated.SecondsPerLiquidityCumulativeX128, nil
	}

	beforeOrAt, atOrAfter, err := o.binarySearch(time, target)
	if err != nil {
		return 0, ZERO, err
	}

	if target == beforeOrAt.BlockTimestamp {
		return beforeOrAt.TickCumulative, beforeOrAt.SecondsPerLiquidityCumulativeX128, nil
	}
	if target == atOrAfter.BlockTimestamp {
		return atOrAfter.TickCumulative, atOrAfter.SecondsPerLiquidityCumulativeX128, nil
	}

	observationTimeDelta := int64(wrapSub32(atOrAfter.BlockTimestamp, beforeOrAt.BlockTimestamp))
	targetDelta := int64(wrapSub32(target, beforeOrAt.BlockTimestamp))
	if observationTimeDelta == 0 {
		return beforeOrAt.TickCumulative, beforeOrAt.SecondsPerLiquidityCumulativeX128, nil
	}

	tickCum := beforeOrAt.TickCumulative +
		(atOrAfter.TickCumulative-beforeOrAt.TickCumulative)/observationTimeDelta*targetDelta
	splCum := beforeOrAt.SecondsPerLiquidityCumulativeX128.Add(
		atOrAfter.SecondsPerLiquidityCumulativeX128.
			Sub(beforeOrAt.SecondsPerLiquidityCumulativeX128).
			Mul(decimal.NewFromInt(targetDelta)).
			Div(decimal.NewFromInt(observationTimeDelta)).
			Truncate(0),
	)
	return tickCum, splCum, nil
}

// binarySearch locates the observation pair (beforeOrAt, atOrAfter)
// straddling target within the ring buffer, treating the buffer as a
// logical array rotated at index+1 (the oldest observation).
func (o *Oracle) binarySearch(time uint32, target uint32) (beforeOrAt, atOrAfter Observation, err error) {
	l := uint16(0)
	r := o.Cardinality - 1
	oldestIndex := (o.Index + 1) % o.Cardinality

	oldest := o.Observations[oldestIndex]
	if !oldest.Initialized {
		oldest = o.Observations[0]
		oldestIndex = 0
		l = 0
		r = o.Cardinality - 1
	}

	if !lteWrap(time, oldest.BlockTimestamp, target) {
		return Observation{}, Observation{}, ErrOracleTooOld
	}
	if oldest.BlockTimestamp == target {
		return oldest, oldest, nil
	}

	for {
		i := (l + r) / 2
		beforeOrAt = o.Observations[(oldestIndex+i)%o.Cardinality]
		if !beforeOrAt.Initialized {
			l = i + 1
			continue
		}
		atOrAfter = o.Observations[(oldestIndex+i+1)%o.Cardinality]

		targetAtOrAfter := lteWrap(time, beforeOrAt.BlockTimestamp, target)

		if targetAtOrAfter && lteWrap(time, target, atOrAfter.BlockTimestamp) {
			return beforeOrAt, atOrAfter, nil
		}
		if !targetAtOrAfter {
			r = i - 1
		} else {
			l = i + 1
		}
		if l > r {
			return beforeOrAt, atOrAfter, nil
		}
	}
}

// lteWrap reports whether a <= b, both "ago" timestamps relative to time,
// honoring wraparound mod 2^32 the way Solidity's uint32 comparisons would.
func lteWrap(time, a, b uint32) bool {
	aAdj := int64(a)
	bAdj := int64(b)
	if a > time {
		aAdj -= int64(1) << 32
	}
	if b > time {
		bAdj -= int64(1) << 32
	}
	return aAdj <= bAdj
}

// wrapSub32 computes a-b mod 2^32 as a uint32, matching unchecked Solidity
// subtraction on a uint32 block timestamp.
func wrapSub32(a, b uint32) uint32 {
	return a - b
}

// wrapTickCumulative wraps v into a signed 56-bit range.
func wrapTickCumulative(v int64) int64 {
	const bits = 56
	const mod = int64(1) << bits
	v = v % mod
	if v >= mod/2 {
		v -= mod
	}
	if v < -mod/2 {
		v += mod
	}
	return v
}
