package pairengine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestPositionManagerGetPositionReadonlyDoesNotCreate(t *testing.T) {
	pm := NewPositionManager()
	view := pm.GetPositionReadonly("alice", -60, 60)
	require.True(t, view.Liquidity.IsZero())
	require.Len(t, pm.Positions, 0)
}

func TestPositionManagerGetPositionAndInitIfAbsentPersists(t *testing.T) {
	pm := NewPositionManager()
	key := GetPositionKey("alice", -60, 60)
	pos := pm.GetPositionAndInitIfAbsent(key)
	pos.Liquidity = decimal.NewFromInt(500)
	require.True(t, pm.GetPositionAndInitIfAbsent(key).Liquidity.Equal(decimal.NewFromInt(500)))
}

func TestPositionManagerCollectPositionUnknownKeyIsZero(t *testing.T) {
	pm := NewPositionManager()
	amount0, amount1, err := pm.CollectPosition("alice", -60, 60, decimal.NewFromInt(100), decimal.NewFromInt(100))
	require.NoError(t, err)
	require.True(t, amount0.IsZero())
	require.True(t, amount1.IsZero())
}

func TestPositionManagerCollectPosition(t *testing.T) {
	pm := NewPositionManager()
	key := GetPositionKey("alice", -60, 60)
	pos := pm.GetPositionAndInitIfAbsent(key)
	pos.TokensOwed0 = decimal.NewFromInt(50)

	amount0, _, err := pm.CollectPosition("alice", -60, 60, decimal.NewFromInt(20), ZERO)
	require.NoError(t, err)
	require.True(t, amount0.Equal(decimal.NewFromInt(20)))
	require.True(t, pm.Positions[key].TokensOwed0.Equal(decimal.NewFromInt(30)))
}

func TestPositionManagerCloneIsIndependent(t *testing.T) {
	pm := NewPositionManager()
	key := GetPositionKey("alice", -60, 60)
	pm.GetPositionAndInitIfAbsent(key).Liquidity = decimal.NewFromInt(100)

	clone := pm.Clone()
	clone.Positions[key].Liquidity = decimal.NewFromInt(999)
	require.True(t, pm.Positions[key].Liquidity.Equal(decimal.NewFromInt(100)))
}

func TestPositionManagerValueScanRoundTrip(t *testing.T) {
	pm := NewPositionManager()
	key := GetPositionKey("alice", -60, 60)
	pm.GetPositionAndInitIfAbsent(key).Liquidity = decimal.NewFromInt(777)

	raw, err := pm.Value()
	require.NoError(t, err)

	restored := NewPositionManager()
	require.NoError(t, restored.Scan(raw))
	require.True(t, restored.Positions[key].Liquidity.Equal(decimal.NewFromInt(777)))
}

func TestSplitPositionKeyRoundTrip(t *testing.T) {
	owner, lower, upper := splitPositionKey("alice|-60|60")
	require.Equal(t, "alice", owner)
	require.Equal(t, -60, lower)
	require.Equal(t, 60, upper)
}
