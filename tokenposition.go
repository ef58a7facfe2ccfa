package pairengine

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TokenPosition is a wallet/router-facing handle on one (owner, tickLower,
// tickUpper) position, identified by a synthetic ID rather than the raw
// tuple a caller would otherwise have to keep track of themselves. Unlike
// an on-chain NonfungiblePositionManager, which mints an ERC-721 tokenID,
// this issues its own synthetic ID locally — an NFT wrapper sits outside
// this engine's scope, which only needs a collaborator identity (a
// wallet, router, or smart contract) calling the pair.
type TokenPosition struct {
	TokenID     string
	Owner       string
	PairAddress string
	TickLower   int
	TickUpper   int
}

// TokenPositionRegistry issues and tracks TokenPositions against one
// PairCore, the way a thin position-manager collaborator would sit in
// front of the pair without being part of its own state.
type TokenPositionRegistry struct {
	pair    *PairCore
	byID    map[string]*TokenPosition
	byOwner map[string][]string
}

// NewTokenPositionRegistry returns a registry fronting pair.
func NewTokenPositionRegistry(pair *PairCore) *TokenPositionRegistry {
	return &TokenPositionRegistry{
		pair:    pair,
		byID:    make(map[string]*TokenPosition),
		byOwner: make(map[string][]string),
	}
}

// Mint adds liquidity through the underlying pair and issues a fresh
// TokenPosition ID for the resulting (owner, lower, upper) position,
// settling owed amounts through cb exactly as PairCore.Mint does.
func (r *TokenPositionRegistry) Mint(owner string, tickLower, tickUpper int, amount decimal.Decimal, data []byte, cb MintCallback, time uint32) (*TokenPosition, decimal.Decimal, decimal.Decimal, error) {
	amount0, amount1, err := r.pair.Mint(owner, tickLower, tickUpper, amount, data, cb, time)
	if err != nil {
		return nil, ZERO, ZERO, err
	}
	tp := &TokenPosition{
		TokenID:     uuid.NewString(),
		Owner:       owner,
		PairAddress: r.pair.PairAddress,
		TickLower:   tickLower,
		TickUpper:   tickUpper,
	}
	r.byID[tp.TokenID] = tp
	r.byOwner[owner] = append(r.byOwner[owner], tp.TokenID)
	return tp, amount0, amount1, nil
}

// GetTokenPosition returns the TokenPosition for tokenID, or nil if unknown.
func (r *TokenPositionRegistry) GetTokenPosition(tokenID string) *TokenPosition {
	return r.byID[tokenID]
}

// PositionsOf lists every TokenPosition ID minted to owner.
func (r *TokenPositionRegistry) PositionsOf(owner string) []string {
	return r.byOwner[owner]
}

// Burn removes liquidity from the position named by tokenID, the dual of
// Mint; the TokenPosition itself is not deleted, since the underlying pair
// position (and any owed tokens it still holds) survives at zero
// liquidity until collected.
func (r *TokenPositionRegistry) Burn(tokenID string, amount decimal.Decimal, time uint32) (decimal.Decimal, decimal.Decimal, error) {
	tp := r.byID[tokenID]
	if tp == nil {
		return ZERO, ZERO, ErrNoPosition
	}
	return r.pair.Burn(tp.Owner, tp.TickLower, tp.TickUpper, amount, time)
}

// Collect transfers up to the requested caps out of the position named by
// tokenID.
func (r *TokenPositionRegistry) Collect(tokenID, recipient string, amount0Req, amount1Req decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	tp := r.byID[tokenID]
	if tp == nil {
		return ZERO, ZERO, ErrNoPosition
	}
	return r.pair.Collect(recipient, tp.Owner, tp.TickLower, tp.TickUpper, amount0Req, amount1Req)
}
