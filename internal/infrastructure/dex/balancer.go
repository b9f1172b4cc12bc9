package dex

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
	ethclient "github.com/bimakw/swap-quoter/internal/infrastructure/ethereum"
)

// Balancer V2 contract addresses (Ethereum mainnet)
var (
	BalancerVaultAddress = common.HexToAddress("0xBA12222222228d8Ba445958a75a0704d566BF2C8")
)

var (
	// getPoolTokens(bytes32 poolId) returns (address[] tokens, uint256[] balances, uint256 lastChangeBlock)
	getPoolTokensSelector = common.Hex2Bytes("f94d4668")
)

// BalancerPool describes a two-token weighted pool. Only pools whose weights
// are equal are served, since those price exactly as x*y=k.
type BalancerPool struct {
	PoolID  [32]byte
	Address common.Address
	Tokens  []common.Address
	Weights []uint64 // basis points, e.g. 5000 = 50%
	SwapFee uint64   // basis points
	Name    string
}

// EqualWeight reports whether every token in the pool carries the same weight.
func (p BalancerPool) EqualWeight() bool {
	if len(p.Weights) != len(p.Tokens) || len(p.Weights) == 0 {
		return false
	}
	for _, w := range p.Weights[1:] {
		if w != p.Weights[0] {
			return false
		}
	}
	return true
}

func (p BalancerPool) indexOf(token common.Address) int {
	for i, t := range p.Tokens {
		if t == token {
			return i
		}
	}
	return -1
}

// DefaultBalancerPools are the mainnet pools quoted by default.
var DefaultBalancerPools = []BalancerPool{
	{
		PoolID:  hexToBytes32("0x96646936b91d6b9d7d0c47c496afbf3d6ec7b6f8000200000000000000000019"),
		Address: common.HexToAddress("0x96646936b91d6B9D7D0c47C496AfBF3D6ec7B6f8"),
		Tokens: []common.Address{
			entities.WETH.Address,
			entities.USDC.Address,
		},
		Weights: []uint64{5000, 5000},
		SwapFee: 30,
		Name:    "WETH/USDC 50/50",
	},
}

// BalancerClient reads snapshots of equal-weight Balancer V2 pools from the vault
type BalancerClient struct {
	caller ContractCaller
	vault  common.Address
	pools  []BalancerPool
	now    func() time.Time
}

// NewBalancerClient creates a client over pools; unequal-weight pools are dropped.
func NewBalancerClient(caller ContractCaller, pools []BalancerPool) *BalancerClient {
	served := make([]BalancerPool, 0, len(pools))
	for _, p := range pools {
		if p.EqualWeight() {
			served = append(served, p)
		}
	}
	return &BalancerClient{
		caller: caller,
		vault:  BalancerVaultAddress,
		pools:  served,
		now:    time.Now,
	}
}

// Pools returns the pools this client serves.
func (c *BalancerClient) Pools() []BalancerPool {
	return c.pools
}

func (c *BalancerClient) findPool(tokenA, tokenB common.Address) (*BalancerPool, int, int) {
	for i := range c.pools {
		idxA, idxB := c.pools[i].indexOf(tokenA), c.pools[i].indexOf(tokenB)
		if idxA >= 0 && idxB >= 0 && idxA != idxB {
			return &c.pools[i], idxA, idxB
		}
	}
	return nil, -1, -1
}

// GetPairByTokens returns the pool holding both tokens as a constant-product pair
func (c *BalancerClient) GetPairByTokens(ctx context.Context, tokenA, tokenB entities.Token) (*entities.Pair, error) {
	pool, idxA, idxB := c.findPool(tokenA.Address, tokenB.Address)
	if pool == nil {
		return nil, fmt.Errorf("balancer %s/%s: %w", tokenA.Symbol, tokenB.Symbol, ErrPairNotFound)
	}

	balances, err := c.getPoolTokens(ctx, pool.PoolID)
	if err != nil {
		return nil, fmt.Errorf("balancer %s: %w", pool.Name, err)
	}
	if idxA >= len(balances) || idxB >= len(balances) {
		return nil, fmt.Errorf("balancer %s: vault returned %d balances", pool.Name, len(balances))
	}

	token0, token1 := sortTokens(tokenA, tokenB)
	reserve0, reserve1 := balances[idxA], balances[idxB]
	if token0.Address != tokenA.Address {
		reserve0, reserve1 = reserve1, reserve0
	}

	feeNum, feeDen := entities.FeeFromBps(pool.SwapFee)
	return &entities.Pair{
		Address:        pool.Address,
		Token0:         token0,
		Token1:         token1,
		Reserve0:       reserve0,
		Reserve1:       reserve1,
		DEX:            entities.DEXBalancer,
		FeeNumerator:   feeNum,
		FeeDenominator: feeDen,
		UpdatedAt:      c.now().Unix(),
	}, nil
}

// DEXType returns the DEX type
func (c *BalancerClient) DEXType() entities.DEXType {
	return entities.DEXBalancer
}

// getPoolTokens fetches token balances from the vault
func (c *BalancerClient) getPoolTokens(ctx context.Context, poolID [32]byte) ([]*big.Int, error) {
	data := make([]byte, 36)
	copy(data[0:4], getPoolTokensSelector)
	copy(data[4:36], poolID[:])

	result, err := c.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &c.vault,
		Data: data,
	})
	if err != nil {
		return nil, fmt.Errorf("getPoolTokens: %w", err)
	}

	// (address[] tokens, uint256[] balances, uint256 lastChangeBlock)
	if len(result) < 3*ethclient.WordSize {
		return nil, fmt.Errorf("getPoolTokens: invalid response length %d", len(result))
	}

	offset, err := ethclient.Word(result, 1)
	if err != nil {
		return nil, err
	}
	if !offset.IsInt64() || offset.Int64()%ethclient.WordSize != 0 {
		return nil, fmt.Errorf("getPoolTokens: invalid balances offset %s", offset)
	}
	base := int(offset.Int64() / ethclient.WordSize)

	count, err := ethclient.Word(result, base)
	if err != nil {
		return nil, fmt.Errorf("getPoolTokens: %w", err)
	}
	if !count.IsInt64() || count.Int64() > int64(len(result)/ethclient.WordSize) {
		return nil, fmt.Errorf("getPoolTokens: invalid balances length %s", count)
	}

	balances := make([]*big.Int, count.Int64())
	for i := range balances {
		balances[i], err = ethclient.Word(result, base+1+i)
		if err != nil {
			return nil, fmt.Errorf("getPoolTokens: %w", err)
		}
	}

	return balances, nil
}

// hexToBytes32 converts a hex string to [32]byte
func hexToBytes32(hex string) [32]byte {
	var result [32]byte
	copy(result[:], common.FromHex(hex))
	return result
}
