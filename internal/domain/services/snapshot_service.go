package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
	"github.com/bimakw/swap-quoter/internal/infrastructure/cache"
	"github.com/bimakw/swap-quoter/internal/infrastructure/dex"
	"github.com/bimakw/swap-quoter/internal/metrics"
)

// maxConcurrentFetches bounds in-flight provider requests per GetPairs call.
const maxConcurrentFetches = 8

// PricePrecision is the number of fractional digits kept for USD prices.
const PricePrecision = 6

// SnapshotResult is one provider's answer for a token pair.
type SnapshotResult struct {
	DEX   entities.DEXType
	Pair  *entities.Pair
	Error error
}

// SnapshotSource supplies reserve snapshots for a token pair from every known DEX.
type SnapshotSource interface {
	GetPairs(ctx context.Context, tokenA, tokenB entities.Token) []SnapshotResult
}

// SnapshotService fetches pair snapshots from all DEX clients, cache first.
type SnapshotService struct {
	dexClients []dex.DEXClient
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     zerolog.Logger
}

func NewSnapshotService(dexClients []dex.DEXClient, c cache.Cache, ttl time.Duration, logger zerolog.Logger) *SnapshotService {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &SnapshotService{
		dexClients: dexClients,
		cache:      c,
		cacheTTL:   ttl,
		logger:     logger.With().Str("component", "snapshots").Logger(),
	}
}

// GetPairs queries every DEX concurrently. Results keep the client order;
// a failing provider only marks its own entry.
func (s *SnapshotService) GetPairs(ctx context.Context, tokenA, tokenB entities.Token) []SnapshotResult {
	results := make([]SnapshotResult, len(s.dexClients))

	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for i, client := range s.dexClients {
		g.Go(func() error {
			pair, err := s.fetchPair(ctx, client, tokenA, tokenB)
			results[i] = SnapshotResult{DEX: client.DEXType(), Pair: pair, Error: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *SnapshotService) fetchPair(ctx context.Context, c dex.DEXClient, tokenA, tokenB entities.Token) (*entities.Pair, error) {
	cacheKey := cache.PairCacheKey(c.DEXType(), tokenA.Address.Hex(), tokenB.Address.Hex())

	if s.cache != nil {
		cached, err := s.cache.GetPair(ctx, cacheKey)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", cacheKey).Msg("snapshot cache read failed")
		} else if cached != nil {
			metrics.SnapshotCacheHits.Inc()
			return cached, nil
		}
	}
	metrics.SnapshotCacheMisses.Inc()

	pair, err := c.GetPairByTokens(ctx, tokenA, tokenB)
	if err != nil {
		if !errors.Is(err, dex.ErrPairNotFound) {
			metrics.SnapshotErrors.WithLabelValues(string(c.DEXType())).Inc()
			s.logger.Debug().Err(err).Str("dex", string(c.DEXType())).
				Str("tokenA", tokenA.Symbol).Str("tokenB", tokenB.Symbol).Msg("snapshot fetch failed")
		}
		return nil, err
	}
	if pair == nil {
		return nil, fmt.Errorf("%s %s/%s: %w", c.DEXType(), tokenA.Symbol, tokenB.Symbol, dex.ErrPairNotFound)
	}
	if err := pair.Validate(); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetPair(ctx, cacheKey, pair, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("key", cacheKey).Msg("snapshot cache write failed")
		}
	}
	return pair, nil
}

// bestOutput returns the largest output any DEX gives for amountIn of tokenIn.
func (s *SnapshotService) bestOutput(ctx context.Context, tokenIn, tokenOut entities.Token, amountIn *big.Int) (*big.Int, error) {
	var best *big.Int
	var errs []error
	for _, res := range s.GetPairs(ctx, tokenIn, tokenOut) {
		if res.Error != nil {
			errs = append(errs, res.Error)
			continue
		}
		out, err := res.Pair.AmountOut(amountIn, tokenIn.Address)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if best == nil || out.Cmp(best) > 0 {
			best = out
		}
	}
	if best == nil || best.Sign() == 0 {
		return nil, fmt.Errorf("%w: %s -> %s: %w", entities.ErrNoRouteAvailable, tokenIn.Symbol, tokenOut.Symbol, errors.Join(errs...))
	}
	return best, nil
}

// GetTokenPrice returns the USD price of one whole token, taken from a direct
// USDC pool or, failing that, bridged through WETH.
func (s *SnapshotService) GetTokenPrice(ctx context.Context, token entities.Token) (decimal.Decimal, error) {
	if token.Address == entities.USDC.Address {
		return decimal.NewFromInt(1), nil
	}

	cacheKey := cache.PriceCacheKey(token.Address.Hex())
	if s.cache != nil {
		if cached, err := s.cache.GetPrice(ctx, cacheKey); err == nil && cached != "" {
			if price, err := decimal.NewFromString(cached); err == nil {
				return price, nil
			}
		}
	}

	usdcOut, err := s.bestOutput(ctx, token, entities.USDC, token.One())
	if err != nil && token.Address != entities.WETH.Address {
		var wethOut *big.Int
		wethOut, err = s.bestOutput(ctx, token, entities.WETH, token.One())
		if err == nil {
			usdcOut, err = s.bestOutput(ctx, entities.WETH, entities.USDC, wethOut)
		}
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("price for %s: %w", token.Symbol, err)
	}

	price := decimal.NewFromBigInt(usdcOut, -int32(entities.USDC.Decimals)).Truncate(PricePrecision)
	if s.cache != nil {
		if err := s.cache.SetPrice(ctx, cacheKey, price.String(), s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("key", cacheKey).Msg("price cache write failed")
		}
	}
	return price, nil
}
