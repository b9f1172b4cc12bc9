package cache

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
)

func testPair() *entities.Pair {
	return &entities.Pair{
		Address:        common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		Token0:         entities.USDC,
		Token1:         entities.WETH,
		Reserve0:       big.NewInt(2000),
		Reserve1:       big.NewInt(1),
		DEX:            entities.DEXUniswapV2,
		FeeNumerator:   3,
		FeeDenominator: 1000,
	}
}

func TestInMemoryCachePairTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1700000000, 0)
	c := NewInMemoryCache()
	c.now = func() time.Time { return now }

	pair := testPair()
	require.NoError(t, c.SetPair(ctx, "k", pair, 10*time.Second))

	// the cache holds its own copy
	pair.DEX = entities.DEXSushiswap

	got, err := c.GetPair(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entities.DEXUniswapV2, got.DEX)

	now = now.Add(10 * time.Second)
	got, err = c.GetPair(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got, "entry should expire at its deadline")
}

func TestInMemoryCachePrice(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1700000000, 0)
	c := NewInMemoryCache()
	c.now = func() time.Time { return now }

	got, err := c.GetPrice(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, c.SetPrice(ctx, "p", "1992.01", time.Minute))
	got, _ = c.GetPrice(ctx, "p")
	assert.Equal(t, "1992.01", got)

	require.NoError(t, c.Delete(ctx, "p"))
	got, _ = c.GetPrice(ctx, "p")
	assert.Empty(t, got)
}

func TestCacheKeys(t *testing.T) {
	weth := entities.WETH.Address.Hex()
	usdc := entities.USDC.Address.Hex()

	assert.Equal(t, PairCacheKey(entities.DEXUniswapV2, weth, usdc), PairCacheKey(entities.DEXUniswapV2, usdc, weth))
	assert.NotEqual(t, PairCacheKey(entities.DEXUniswapV2, weth, usdc), PairCacheKey(entities.DEXSushiswap, weth, usdc))
	assert.Equal(t,
		"pair:balancer:0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48:0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
		PairCacheKey(entities.DEXBalancer, weth, usdc))
	assert.Equal(t, "price:0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", PriceCacheKey(weth))
}

func TestRedisCacheUnavailable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// nothing listens on port 1
	_, err := NewRedisCache(ctx, "127.0.0.1:1", "", 0)
	assert.ErrorContains(t, err, "failed to connect to redis")
}
