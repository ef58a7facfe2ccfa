package pairengine

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// TickManager owns the tick-indexed liquidity graph and the bitmap that
// locates initialized ticks within it.
type TickManager struct {
	Ticks       map[int]*TickInfo
	Bitmap      *TickBitmap
	TickSpacing int
}

// NewTickManager returns an empty tick table for the given spacing.
func NewTickManager(tickSpacing int) *TickManager {
	return &TickManager{
		Ticks:       make(map[int]*TickInfo),
		Bitmap:      NewTickBitmap(),
		TickSpacing: tickSpacing,
	}
}

// Clone returns a deep copy.
func (tm *TickManager) Clone() *TickManager {
	out := NewTickManager(tm.TickSpacing)
	for idx, info := range tm.Ticks {
		out.Ticks[idx] = info.clone()
	}
	out.Bitmap = tm.Bitmap.Clone()
	return out
}

// GetTickAndInitIfAbsent returns the TickInfo at idx, creating a zeroed
// entry on first reference.
func (tm *TickManager) GetTickAndInitIfAbsent(idx int) *TickInfo {
	info, ok := tm.Ticks[idx]
	if !ok {
		info = newTickInfo()
		tm.Ticks[idx] = info
	}
	return info
}

// GetTickReadonly returns the TickInfo at idx without creating it,
// returning a zeroed view if absent.
func (tm *TickManager) GetTickReadonly(idx int) *TickInfo {
	if info, ok := tm.Ticks[idx]; ok {
		return info
	}
	return newTickInfo()
}

// Update applies a liquidity delta to the tick at idx, flipping the
// bitmap bit if the tick's initialized state changed.
func (tm *TickManager) Update(
	idx, tickCurrent int,
	liquidityDelta decimal.Decimal,
	feeGrowthGlobal0, feeGrowthGlobal1 decimal.Decimal,
	secondsPerLiquidityCumulative decimal.Decimal,
	tickCumulative int64,
	time uint32,
	isUpper bool,
	maxLiquidityPerTick *big.Int,
) (flipped bool, err error) {
	info := tm.GetTickAndInitIfAbsent(idx)
	flipped, err = info.Update(
		liquidityDelta, tickCurrent, idx,
		feeGrowthGlobal0, feeGrowthGlobal1,
		secondsPerLiquidityCumulative, tickCumulative, time,
		isUpper, maxLiquidityPerTick,
	)
	if err != nil {
		return false, err
	}
	if flipped {
		tm.Bitmap.FlipTick(idx, tm.TickSpacing)
	}
	return flipped, nil
}

// Clear removes a tick's accounting once its liquidityGross has returned
// to zero.
func (tm *TickManager) Clear(idx int) {
	delete(tm.Ticks, idx)
}

// Cross applies the tick-crossing transform to the tick at idx and
// returns its liquidityNet.
func (tm *TickManager) Cross(
	idx int,
	feeGrowthGlobal0, feeGrowthGlobal1 decimal.Decimal,
	secondsPerLiquidityCumulative decimal.Decimal,
	tickCumulative int64,
	time uint32,
) decimal.Decimal {
	info := tm.GetTickAndInitIfAbsent(idx)
	return info.Cross(feeGrowthGlobal0, feeGrowthGlobal1, secondsPerLiquidityCumulative, tickCumulative, time)
}

// GetNextInitializedTick is a thin wrapper over the bitmap search.
func (tm *TickManager) GetNextInitializedTick(tick int, tickSpacing int, lte bool) (next int, initialized bool, err error) {
	if tickSpacing != tm.TickSpacing {
		return 0, false, errors.New("ticktable: spacing mismatch")
	}
	next, initialized = tm.Bitmap.NextInitializedTickWithinOneWord(tick, tickSpacing, lte)
	return next, initialized, nil
}

// GetFeeGrowthInside returns global - outside(lo) - outside(hi), adjusted
// for which side of tickCurrent each boundary tick sits on. All
// subtractions are via decimal.Decimal; see DESIGN.md for why this engine
// does not wrap these accumulators mod 2^256 the way an authoritative
// on-chain contract would.
func (tm *TickManager) GetFeeGrowthInside(lo, hi, tickCurrent int, feeGrowthGlobal0, feeGrowthGlobal1 decimal.Decimal) (inside0, inside1 decimal.Decimal, err error) {
	lower := tm.GetTickReadonly(lo)
	upper := tm.GetTickReadonly(hi)

	var below0, below1 decimal.Decimal
	if tickCurrent >= lo {
		below0, below1 = lower.FeeGrowthOutside0X128, lower.FeeGrowthOutside1X128
	} else {
		below0 = feeGrowthGlobal0.Sub(lower.FeeGrowthOutside0X128)
		below1 = feeGrowthGlobal1.Sub(lower.FeeGrowthOutside1X128)
	}

	var above0, above1 decimal.Decimal
	if tickCurrent < hi {
		above0, above1 = upper.FeeGrowthOutside0X128, upper.FeeGrowthOutside1X128
	} else {
		above0 = feeGrowthGlobal0.Sub(upper.FeeGrowthOutside0X128)
		above1 = feeGrowthGlobal1.Sub(upper.FeeGrowthOutside1X128)
	}

	inside0 = feeGrowthGlobal0.Sub(below0).Sub(above0)
	inside1 = feeGrowthGlobal1.Sub(below1).Sub(above1)
	return inside0, inside1, nil
}

// GormDataType / Scan / Value give TickManager the same JSON-blob GORM
// persistence shape used across the pair's other blob-backed fields.
func (tm *TickManager) GormDataType() string { return "LONGTEXT" }

func (tm *TickManager) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, tm)
	case string:
		return json.Unmarshal([]byte(v), tm)
	case nil:
		return nil
	default:
		return fmt.Errorf("failed to unmarshal TickManager value: %v", value)
	}
}

func (tm *TickManager) Value() (driver.Value, error) {
	bs, err := json.Marshal(tm)
	if err != nil {
		return nil, err
	}
	return string(bs), nil
}
