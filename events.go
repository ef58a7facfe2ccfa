package pairengine

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

// Log structs and ABI decoders for this pair's own emitted events: a
// RawEvent/topic/data decoding shape applied to a pair's
// Initialize/Mint/Burn/Collect/Swap events rather than a position
// manager's NFT-keyed events.

type InitializeEvent struct {
	RawEvent     *types.Log      `json:"raw_event"`
	SqrtPriceX96 decimal.Decimal `json:"sqrt_price_x96"`
	Tick         int             `json:"tick"`
}

type MintEvent struct {
	RawEvent  *types.Log      `json:"raw_event"`
	Sender    string          `json:"sender"`
	Owner     string          `json:"owner"`
	TickLower int             `json:"tick_lower"`
	TickUpper int             `json:"tick_upper"`
	Amount    decimal.Decimal `json:"amount"`
	Amount0   decimal.Decimal `json:"amount0"`
	Amount1   decimal.Decimal `json:"amount1"`
}

type BurnEvent struct {
	RawEvent  *types.Log      `json:"raw_event"`
	Owner     string          `json:"owner"`
	TickLower int             `json:"tick_lower"`
	TickUpper int             `json:"tick_upper"`
	Amount    decimal.Decimal `json:"amount"`
	Amount0   decimal.Decimal `json:"amount0"`
	Amount1   decimal.Decimal `json:"amount1"`
}

type CollectEvent struct {
	RawEvent  *types.Log      `json:"raw_event"`
	Owner     string          `json:"owner"`
	Recipient string          `json:"recipient"`
	TickLower int             `json:"tick_lower"`
	TickUpper int             `json:"tick_upper"`
	Amount0   decimal.Decimal `json:"amount0"`
	Amount1   decimal.Decimal `json:"amount1"`
}

// UniV3SwapEvent names the field shape a dry-run solver keys off of; kept
// separate from a bare "SwapEvent" name since Swap is already the
// operation name on PairCore.
type UniV3SwapEvent struct {
	RawEvent     *types.Log      `json:"raw_event"`
	Sender       string          `json:"sender"`
	Recipient    string          `json:"recipient"`
	Amount0      decimal.Decimal `json:"amount0"`
	Amount1      decimal.Decimal `json:"amount1"`
	SqrtPriceX96 decimal.Decimal `json:"sqrt_price_x96"`
	Liquidity    decimal.Decimal `json:"liquidity"`
	Tick         int             `json:"tick"`
}

// Event topic0 signatures, computed the way go-ethereum itself derives them
// (keccak256 of the canonical Solidity event signature) rather than
// hardcoded as opaque hex, so the declared signature string is checkable
// against the struct it decodes.
var (
	initializeSig = crypto.Keccak256Hash([]byte("Initialize(uint160,int24)"))
	mintSig       = crypto.Keccak256Hash([]byte("Mint(address,address,int24,int24,uint128,uint256,uint256)"))
	burnSig       = crypto.Keccak256Hash([]byte("Burn(address,int24,int24,uint128,uint256,uint256)"))
	collectSig    = crypto.Keccak256Hash([]byte("Collect(address,address,int24,int24,uint128,uint128)"))
	swapSig       = crypto.Keccak256Hash([]byte("Swap(address,address,int256,int256,uint160,uint128,int24)"))

	int24Type, _ = abi.NewType("int24", "", nil)
)

// EventTopic0 exposes the precomputed signatures for a log filter's Topics[0].
func EventTopic0() map[string]common.Hash {
	return map[string]common.Hash{
		"Initialize": initializeSig,
		"Mint":       mintSig,
		"Burn":       burnSig,
		"Collect":    collectSig,
		"Swap":       swapSig,
	}
}

func readTickTopic(topic common.Hash) (int, error) {
	raw, err := abi.ReadInteger(int24Type, topic.Bytes())
	if err != nil {
		return 0, err
	}
	v, ok := raw.(*big.Int)
	if !ok {
		return 0, fmt.Errorf("pairengine: tick topic decoded to unexpected type %T", raw)
	}
	return int(v.Int64()), nil
}

// ParseInitializeEvent decodes `Initialize(uint160 sqrtPriceX96, int24 tick)`.
func ParseInitializeEvent(log *types.Log) (*InitializeEvent, error) {
	if len(log.Data) < 64 {
		return nil, fmt.Errorf("pairengine: short data for Initialize event")
	}
	sqrtPriceX96 := decimal.NewFromBigInt(new(big.Int).SetBytes(log.Data[:32]), 0)
	tick := signed256(log.Data[32:64])
	return &InitializeEvent{RawEvent: log, SqrtPriceX96: sqrtPriceX96, Tick: int(tick.Int64())}, nil
}

// ParseMintEvent decodes `Mint(sender, owner indexed, tickLower indexed,
// tickUpper indexed, amount, amount0, amount1)`.
func ParseMintEvent(log *types.Log) (*MintEvent, error) {
	if len(log.Topics) < 4 {
		return nil, fmt.Errorf("pairengine: not enough topics for Mint event")
	}
	if len(log.Data) < 32+96 {
		return nil, fmt.Errorf("pairengine: short data for Mint event")
	}
	owner := common.BytesToAddress(log.Topics[1].Bytes())
	tickLower, err := readTickTopic(log.Topics[2])
	if err != nil {
		return nil, err
	}
	tickUpper, err := readTickTopic(log.Topics[3])
	if err != nil {
		return nil, err
	}
	sender := common.BytesToAddress(log.Data[:32])
	amount := decimal.NewFromBigInt(new(big.Int).SetBytes(log.Data[32:64]), 0)
	amount0 := decimal.NewFromBigInt(new(big.Int).SetBytes(log.Data[64:96]), 0)
	amount1 := decimal.NewFromBigInt(new(big.Int).SetBytes(log.Data[96:128]), 0)
	return &MintEvent{
		RawEvent:  log,
		Sender:    strings.ToLower(sender.Hex()),
		Owner:     strings.ToLower(owner.Hex()),
		TickLower: tickLower,
		TickUpper: tickUpper,
		Amount:    amount,
		Amount0:   amount0,
		Amount1:   amount1,
	}, nil
}

// ParseBurnEvent decodes `Burn(owner indexed, tickLower indexed, tickUpper
// indexed, amount, amount0, amount1)`.
func ParseBurnEvent(log *types.Log) (*BurnEvent, error) {
	if len(log.Topics) < 4 {
		return nil, fmt.Errorf("pairengine: not enough topics for Burn event")
	}
	if len(log.Data) < 96 {
		return nil, fmt.Errorf("pairengine: short data for Burn event")
	}
	owner := common.BytesToAddress(log.Topics[1].Bytes())
	tickLower, err := readTickTopic(log.Topics[2])
	if err != nil {
		return nil, err
	}
	tickUpper, err := readTickTopic(log.Topics[3])
	if err != nil {
		return nil, err
	}
	amount := decimal.NewFromBigInt(new(big.Int).SetBytes(log.Data[:32]), 0)
	amount0 := decimal.NewFromBigInt(new(big.Int).SetBytes(log.Data[32:64]), 0)
	amount1 := decimal.NewFromBigInt(new(big.Int).SetBytes(log.Data[64:96]), 0)
	return &BurnEvent{
		RawEvent:  log,
		Owner:     strings.ToLower(owner.Hex()),
		TickLower: tickLower,
		TickUpper: tickUpper,
		Amount:    amount,
		Amount0:   amount0,
		Amount1:   amount1,
	}, nil
}

// ParseCollectEvent decodes `Collect(owner indexed, recipient, tickLower
// indexed, tickUpper indexed, amount0, amount1)`.
func ParseCollectEvent(log *types.Log) (*CollectEvent, error) {
	if len(log.Topics) < 4 {
		return nil, fmt.Errorf("pairengine: not enough topics for Collect event")
	}
	if len(log.Data) < 32+64 {
		return nil, fmt.Errorf("pairengine: short data for Collect event")
	}
	owner := common.BytesToAddress(log.Topics[1].Bytes())
	tickLower, err := readTickTopic(log.Topics[2])
	if err != nil {
		return nil, err
	}
	tickUpper, err := readTickTopic(log.Topics[3])
	if err != nil {
		return nil, err
	}
	recipient := common.BytesToAddress(log.Data[:32])
	amount0 := decimal.NewFromBigInt(new(big.Int).SetBytes(log.Data[32:64]), 0)
	amount1 := decimal.NewFromBigInt(new(big.Int).SetBytes(log.Data[64:96]), 0)
	return &CollectEvent{
		RawEvent:  log,
		Owner:     strings.ToLower(owner.Hex()),
		Recipient: strings.ToLower(recipient.Hex()),
		TickLower: tickLower,
		TickUpper: tickUpper,
		Amount0:   amount0,
		Amount1:   amount1,
	}, nil
}

// signed256 reinterprets a 32-byte big-endian word as a two's-complement
// signed integer, needed for Swap's signed amount0/amount1.
func signed256(word []byte) *big.Int {
	v := new(big.Int).SetBytes(word)
	if word[0]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), 256))
	}
	return v
}

// ParseSwapEvent decodes `Swap(sender indexed, recipient indexed, amount0,
// amount1, sqrtPriceX96, liquidity, tick)`.
func ParseSwapEvent(log *types.Log) (*UniV3SwapEvent, error) {
	if len(log.Topics) < 3 {
		return nil, fmt.Errorf("pairengine: not enough topics for Swap event")
	}
	if len(log.Data) < 160 {
		return nil, fmt.Errorf("pairengine: short data for Swap event")
	}
	sender := common.BytesToAddress(log.Topics[1].Bytes())
	recipient := common.BytesToAddress(log.Topics[2].Bytes())
	amount0 := decimal.NewFromBigInt(signed256(log.Data[0:32]), 0)
	amount1 := decimal.NewFromBigInt(signed256(log.Data[32:64]), 0)
	sqrtPriceX96 := decimal.NewFromBigInt(new(big.Int).SetBytes(log.Data[64:96]), 0)
	liquidity := decimal.NewFromBigInt(new(big.Int).SetBytes(log.Data[96:128]), 0)
	tick := signed256(log.Data[128:160])
	return &UniV3SwapEvent{
		RawEvent:     log,
		Sender:       strings.ToLower(sender.Hex()),
		Recipient:    strings.ToLower(recipient.Hex()),
		Amount0:      amount0,
		Amount1:      amount1,
		SqrtPriceX96: sqrtPriceX96,
		Liquidity:    liquidity,
		Tick:         int(tick.Int64()),
	}, nil
}
