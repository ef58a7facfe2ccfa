package pairengine

import "github.com/shopspring/decimal"

// Position holds the liquidity and uncollected fees belonging to one
// (owner, tickLower, tickUpper).
type Position struct {
	Liquidity                decimal.Decimal
	FeeGrowthInside0LastX128 decimal.Decimal
	FeeGrowthInside1LastX128 decimal.Decimal
	TokensOwed0              decimal.Decimal
	TokensOwed1              decimal.Decimal
}

func newPosition() *Position {
	return &Position{
		Liquidity:                ZERO,
		FeeGrowthInside0LastX128: ZERO,
		FeeGrowthInside1LastX128: ZERO,
		TokensOwed0:              ZERO,
		TokensOwed1:              ZERO,
	}
}

func (p *Position) clone() *Position {
	cp := *p
	return &cp
}

// Update attributes fee growth accrued since the position's last touch,
// then applies liquidityDelta.
func (p *Position) Update(liquidityDelta decimal.Decimal, feeGrowthInside0X128, feeGrowthInside1X128 decimal.Decimal) error {
	if liquidityDelta.IsZero() && p.Liquidity.IsZero() {
		return ErrNoPosition
	}

	tokensOwed0 := feeGrowthInside0X128.Sub(p.FeeGrowthInside0LastX128).Mul(p.Liquidity).Div(Q128).Truncate(0)
	tokensOwed1 := feeGrowthInside1X128.Sub(p.FeeGrowthInside1LastX128).Mul(p.Liquidity).Div(Q128).Truncate(0)

	if !liquidityDelta.IsZero() {
		next, err := AddDelta(p.Liquidity, liquidityDelta)
		if err != nil {
			return err
		}
		p.Liquidity = next
	}

	p.FeeGrowthInside0LastX128 = feeGrowthInside0X128
	p.FeeGrowthInside1LastX128 = feeGrowthInside1X128

	if tokensOwed0.IsPositive() || tokensOwed1.IsPositive() {
		p.TokensOwed0 = p.TokensOwed0.Add(tokensOwed0)
		p.TokensOwed1 = p.TokensOwed1.Add(tokensOwed1)
	}
	return nil
}

// UpdateBurn overwrites tokensOwed with the given totals; the caller passes
// the existing balances with the withdrawn principal already added (fee
// attribution already happened inside Update).
func (p *Position) UpdateBurn(tokensOwed0, tokensOwed1 decimal.Decimal) {
	p.TokensOwed0 = tokensOwed0
	p.TokensOwed1 = tokensOwed1
}

// Collect transfers up to the requested caps out of tokensOwed.
func (p *Position) Collect(amount0Requested, amount1Requested decimal.Decimal) (amount0, amount1 decimal.Decimal) {
	amount0 = amount0Requested
	if amount0.GreaterThan(p.TokensOwed0) {
		amount0 = p.TokensOwed0
	}
	amount1 = amount1Requested
	if amount1.GreaterThan(p.TokensOwed1) {
		amount1 = p.TokensOwed1
	}
	p.TokensOwed0 = p.TokensOwed0.Sub(amount0)
	p.TokensOwed1 = p.TokensOwed1.Sub(amount1)
	return amount0, amount1
}

// PositionKey identifies a position by owner and tick range.
type PositionKey struct {
	Owner      string
	TickLower  int
	TickUpper  int
}

// GetPositionKey builds the map key a PositionManager indexes on.
func GetPositionKey(owner string, tickLower, tickUpper int) PositionKey {
	return PositionKey{Owner: owner, TickLower: tickLower, TickUpper: tickUpper}
}
