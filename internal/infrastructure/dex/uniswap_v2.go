package dex

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
	ethclient "github.com/bimakw/swap-quoter/internal/infrastructure/ethereum"
)

// UniswapV2 ABI function signatures (keccak256 hash of function signature)
var (
	// getReserves() returns (uint112 reserve0, uint112 reserve1, uint32 blockTimestampLast)
	getReservesSelector = common.Hex2Bytes("0902f1ac")
	// getPair(address,address) returns (address)
	getPairSelector = common.Hex2Bytes("e6a43905")
	// token0() and token1() return (address)
	token0Selector = common.Hex2Bytes("0dfe1681")
	token1Selector = common.Hex2Bytes("d21220a7")
)

// UniswapV2Factory addresses
var (
	UniswapV2FactoryAddress = common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f")
	SushiswapFactoryAddress = common.HexToAddress("0xC0AEe478e3658e2610c5F7A4A2E1777cE9e4f2Ac")
)

// UniswapV2Client reads reserve snapshots from Uniswap V2 compatible DEXes
type UniswapV2Client struct {
	caller  ContractCaller
	factory common.Address
	dexType entities.DEXType
	feeNum  uint64
	feeDen  uint64
	now     func() time.Time
}

// NewUniswapV2Client creates a new Uniswap V2 client
func NewUniswapV2Client(caller ContractCaller) *UniswapV2Client {
	return &UniswapV2Client{
		caller:  caller,
		factory: UniswapV2FactoryAddress,
		dexType: entities.DEXUniswapV2,
		feeNum:  entities.V2FeeNumerator,
		feeDen:  entities.V2FeeDenominator,
		now:     time.Now,
	}
}

// NewSushiswapClient creates a new Sushiswap client (same pair contracts as Uniswap V2)
func NewSushiswapClient(caller ContractCaller) *UniswapV2Client {
	c := NewUniswapV2Client(caller)
	c.factory = SushiswapFactoryAddress
	c.dexType = entities.DEXSushiswap
	return c
}

// GetPairAddress returns the pair address for two tokens
func (c *UniswapV2Client) GetPairAddress(ctx context.Context, tokenA, tokenB common.Address) (common.Address, error) {
	token0, token1 := SortAddresses(tokenA, tokenB)

	// Encode getPair(token0, token1)
	data := make([]byte, 68)
	copy(data[0:4], getPairSelector)
	copy(data[16:36], token0.Bytes())
	copy(data[48:68], token1.Bytes())

	result, err := c.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &c.factory,
		Data: data,
	})
	if err != nil {
		return common.Address{}, fmt.Errorf("%s getPair: %w", c.dexType, err)
	}

	pair, err := ethclient.AddressWord(result, 0)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s getPair: %w", c.dexType, err)
	}
	return pair, nil
}

// GetPairByTokens resolves the pair and reads its current reserves
func (c *UniswapV2Client) GetPairByTokens(ctx context.Context, tokenA, tokenB entities.Token) (*entities.Pair, error) {
	token0, token1 := sortTokens(tokenA, tokenB)

	pairAddress, err := c.GetPairAddress(ctx, token0.Address, token1.Address)
	if err != nil {
		return nil, err
	}
	if pairAddress == ethclient.ZeroAddress {
		return nil, fmt.Errorf("%s %s/%s: %w", c.dexType, token0.Symbol, token1.Symbol, ErrPairNotFound)
	}

	return c.GetPair(ctx, pairAddress, token0, token1)
}

// GetPair reads reserves for a known pair address; token0 must sort below token1.
func (c *UniswapV2Client) GetPair(ctx context.Context, pairAddress common.Address, token0, token1 entities.Token) (*entities.Pair, error) {
	result, err := c.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &pairAddress,
		Data: getReservesSelector,
	})
	if err != nil {
		return nil, fmt.Errorf("%s getReserves %s: %w", c.dexType, pairAddress.Hex(), err)
	}

	reserve0, err := ethclient.Word(result, 0)
	if err != nil {
		return nil, fmt.Errorf("%s getReserves %s: %w", c.dexType, pairAddress.Hex(), err)
	}
	reserve1, err := ethclient.Word(result, 1)
	if err != nil {
		return nil, fmt.Errorf("%s getReserves %s: %w", c.dexType, pairAddress.Hex(), err)
	}

	return &entities.Pair{
		Address:        pairAddress,
		Token0:         token0,
		Token1:         token1,
		Reserve0:       reserve0,
		Reserve1:       reserve1,
		DEX:            c.dexType,
		FeeNumerator:   c.feeNum,
		FeeDenominator: c.feeDen,
		UpdatedAt:      c.now().Unix(),
	}, nil
}

// Snapshots reads token0, token1 and reserves of every pair in one batch and
// returns them in wire form, in the order given.
func (c *UniswapV2Client) Snapshots(ctx context.Context, pairs []common.Address) ([]entities.PairSnapshot, error) {
	calls := make([]ethereum.CallMsg, 0, 3*len(pairs))
	for i := range pairs {
		to := &pairs[i]
		calls = append(calls,
			ethereum.CallMsg{To: to, Data: token0Selector},
			ethereum.CallMsg{To: to, Data: token1Selector},
			ethereum.CallMsg{To: to, Data: getReservesSelector},
		)
	}

	results, err := ethclient.Multicall(ctx, c.caller, calls)
	if err != nil {
		return nil, fmt.Errorf("%s snapshots: %w", c.dexType, err)
	}

	updatedAt := c.now().Unix()
	snaps := make([]entities.PairSnapshot, len(pairs))
	for i, addr := range pairs {
		r := results[3*i : 3*i+3]
		token0, err := ethclient.AddressWord(r[0], 0)
		if err != nil {
			return nil, fmt.Errorf("%s token0 %s: %w", c.dexType, addr.Hex(), err)
		}
		token1, err := ethclient.AddressWord(r[1], 0)
		if err != nil {
			return nil, fmt.Errorf("%s token1 %s: %w", c.dexType, addr.Hex(), err)
		}
		reserve0, err := ethclient.Word(r[2], 0)
		if err != nil {
			return nil, fmt.Errorf("%s getReserves %s: %w", c.dexType, addr.Hex(), err)
		}
		reserve1, err := ethclient.Word(r[2], 1)
		if err != nil {
			return nil, fmt.Errorf("%s getReserves %s: %w", c.dexType, addr.Hex(), err)
		}

		snaps[i] = entities.PairSnapshot{
			Address:        addr.Hex(),
			Token0:         token0.Hex(),
			Token1:         token1.Hex(),
			Reserve0:       reserve0.String(),
			Reserve1:       reserve1.String(),
			FeeNumerator:   c.feeNum,
			FeeDenominator: c.feeDen,
			UpdatedAt:      updatedAt,
		}
	}
	return snaps, nil
}

// DEXType returns the DEX type
func (c *UniswapV2Client) DEXType() entities.DEXType {
	return c.dexType
}
