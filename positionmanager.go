package pairengine

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PositionManager owns every Position in a pair, keyed by (owner, lower,
// upper).
type PositionManager struct {
	Positions map[PositionKey]*Position
}

// NewPositionManager returns an empty position table.
func NewPositionManager() *PositionManager {
	return &PositionManager{Positions: make(map[PositionKey]*Position)}
}

// Clone returns a deep copy.
func (pm *PositionManager) Clone() *PositionManager {
	out := NewPositionManager()
	for k, v := range pm.Positions {
		out.Positions[k] = v.clone()
	}
	return out
}

// GetPositionReadonly returns the position at key, or a zeroed view if it
// does not yet exist, without creating an entry.
func (pm *PositionManager) GetPositionReadonly(owner string, tickLower, tickUpper int) *Position {
	key := GetPositionKey(owner, tickLower, tickUpper)
	if pos, ok := pm.Positions[key]; ok {
		return pos
	}
	return newPosition()
}

// GetPositionAndInitIfAbsent returns the position at key, creating it with
// zero liquidity on first reference. Positions persist at zero liquidity
// to hold owed tokens until collected.
func (pm *PositionManager) GetPositionAndInitIfAbsent(key PositionKey) *Position {
	pos, ok := pm.Positions[key]
	if !ok {
		pos = newPosition()
		pm.Positions[key] = pos
	}
	return pos
}

// CollectPosition transfers up to the requested caps out of the named
// position's tokensOwed.
func (pm *PositionManager) CollectPosition(owner string, tickLower, tickUpper int, amount0Req, amount1Req decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	key := GetPositionKey(owner, tickLower, tickUpper)
	pos, ok := pm.Positions[key]
	if !ok {
		return ZERO, ZERO, nil
	}
	amount0, amount1 := pos.Collect(amount0Req, amount1Req)
	return amount0, amount1, nil
}

func (pm *PositionManager) GormDataType() string { return "LONGTEXT" }

func (pm *PositionManager) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, pm)
	case string:
		return json.Unmarshal([]byte(v), pm)
	case nil:
		return nil
	default:
		return fmt.Errorf("failed to unmarshal PositionManager value: %v", value)
	}
}

func (pm *PositionManager) Value() (driver.Value, error) {
	bs, err := json.Marshal(pm)
	if err != nil {
		return nil, err
	}
	return string(bs), nil
}

// MarshalJSON renders Positions with a string-encoded key, since PositionKey
// is a struct and cannot be a JSON object key directly.
func (pm *PositionManager) MarshalJSON() ([]byte, error) {
	out := make(map[string]*Position, len(pm.Positions))
	for k, v := range pm.Positions {
		out[fmt.Sprintf("%s|%d|%d", k.Owner, k.TickLower, k.TickUpper)] = v
	}
	return json.Marshal(out)
}

func (pm *PositionManager) UnmarshalJSON(data []byte) error {
	var in map[string]*Position
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	positions := make(map[PositionKey]*Position, len(in))
	for k, v := range in {
		owner, lower, upper := splitPositionKey(k)
		positions[PositionKey{Owner: owner, TickLower: lower, TickUpper: upper}] = v
	}
	pm.Positions = positions
	return nil
}

func splitPositionKey(k string) (owner string, lower, upper int) {
	parts := make([]string, 0, 3)
	start := 0
	for i := 0; i < len(k); i++ {
		if k[i] == '|' {
			parts = append(parts, k[start:i])
			start = i + 1
		}
	}
	parts = append(parts, k[start:])
	if len(parts) != 3 {
		return "", 0, 0
	}
	owner = parts[0]
	fmt.Sscanf(parts[1], "%d", &lower)
	fmt.Sscanf(parts[2], "%d", &upper)
	return
}
