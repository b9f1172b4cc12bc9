package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
	"github.com/bimakw/swap-quoter/internal/infrastructure/dex"
	"github.com/bimakw/swap-quoter/internal/metrics"
)

// QuoteRequest asks for the best route between two tokens. Amount is the
// input in exact-input mode and the desired output in exact-output mode.
// A null SlippagePercent means the service default.
type QuoteRequest struct {
	TokenIn         entities.Token
	TokenOut        entities.Token
	Amount          *big.Int
	Mode            entities.SwapMode
	SlippagePercent decimal.NullDecimal
}

// RouterService handles route finding and quote generation
type RouterService struct {
	snapshots       SnapshotSource
	intermediates   []entities.Token
	defaultSlippage decimal.Decimal
	logger          zerolog.Logger
}

// NewRouterService creates a new router service. intermediates are the
// junction tokens tried for two-hop routes.
func NewRouterService(snapshots SnapshotSource, intermediates []entities.Token, defaultSlippage decimal.Decimal, logger zerolog.Logger) *RouterService {
	return &RouterService{
		snapshots:       snapshots,
		intermediates:   intermediates,
		defaultSlippage: defaultSlippage,
		logger:          logger.With().Str("component", "router").Logger(),
	}
}

// CandidatePlans returns every direct plan followed by the two-hop plans
// through each intermediate, in a stable order. Provider failures other than
// a missing pool or an unusable snapshot are joined into the returned error;
// plans built from the providers that did answer are still returned.
func (s *RouterService) CandidatePlans(ctx context.Context, tokenIn, tokenOut entities.Token) ([]entities.RoutePlan, error) {
	var bridges []entities.Token
	for _, m := range s.intermediates {
		if m.Address != tokenIn.Address && m.Address != tokenOut.Address {
			bridges = append(bridges, m)
		}
	}

	var direct []SnapshotResult
	firstLegs := make([][]SnapshotResult, len(bridges))
	secondLegs := make([][]SnapshotResult, len(bridges))

	var g errgroup.Group
	g.Go(func() error {
		direct = s.snapshots.GetPairs(ctx, tokenIn, tokenOut)
		return nil
	})
	for i, m := range bridges {
		g.Go(func() error {
			firstLegs[i] = s.snapshots.GetPairs(ctx, tokenIn, m)
			return nil
		})
		g.Go(func() error {
			secondLegs[i] = s.snapshots.GetPairs(ctx, m, tokenOut)
			return nil
		})
	}
	_ = g.Wait()

	var failures []error
	usable := func(results []SnapshotResult) []entities.Pair {
		pairs := make([]entities.Pair, 0, len(results))
		for _, res := range results {
			if res.Error != nil {
				if isProviderFailure(res.Error) {
					failures = append(failures, fmt.Errorf("%s: %w", res.DEX, res.Error))
				}
				continue
			}
			if res.Pair != nil {
				pairs = append(pairs, *res.Pair)
			}
		}
		return pairs
	}

	var plans []entities.RoutePlan
	for _, pair := range usable(direct) {
		if plan, err := entities.NewRoutePlan(tokenIn.Address, pair); err == nil {
			plans = append(plans, plan)
		}
	}
	for i := range bridges {
		firsts, seconds := usable(firstLegs[i]), usable(secondLegs[i])
		for _, first := range firsts {
			for _, second := range seconds {
				if plan, err := entities.NewRoutePlan(tokenIn.Address, first, second); err == nil {
					plans = append(plans, plan)
				}
			}
		}
	}
	return plans, errors.Join(failures...)
}

// isProviderFailure reports whether a snapshot error came from the provider
// itself rather than from a missing pool or a pool that cannot be priced.
func isProviderFailure(err error) bool {
	return !errors.Is(err, dex.ErrPairNotFound) &&
		!errors.Is(err, entities.ErrInsufficientLiquidity) &&
		!errors.Is(err, entities.ErrInvalidAmount)
}

// GetQuote finds the best route and returns a quote
func (s *RouterService) GetQuote(ctx context.Context, req QuoteRequest) (*entities.Quote, error) {
	start := time.Now()
	mode := req.Mode
	if mode == "" {
		mode = entities.ExactInput
	}

	quote, err := s.getQuote(ctx, req, mode)

	status := "ok"
	if err != nil {
		status = errorStatus(err)
	}
	metrics.QuoteRequests.WithLabelValues(string(mode), status).Inc()
	metrics.QuoteDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	return quote, err
}

func (s *RouterService) getQuote(ctx context.Context, req QuoteRequest, mode entities.SwapMode) (*entities.Quote, error) {
	if req.TokenIn.Address == req.TokenOut.Address {
		return nil, fmt.Errorf("%w: tokenIn and tokenOut are the same", entities.ErrInvalidRoute)
	}
	if !entities.IsPositive(req.Amount) {
		return nil, fmt.Errorf("%w: amount must be positive", entities.ErrInvalidAmount)
	}
	if err := entities.CheckAmount(req.Amount); err != nil {
		return nil, err
	}
	slippage := s.defaultSlippage
	if req.SlippagePercent.Valid {
		slippage = req.SlippagePercent.Decimal
	}
	if err := checkPercent(slippage); err != nil {
		return nil, err
	}

	plans, fetchErr := s.CandidatePlans(ctx, req.TokenIn, req.TokenOut)
	if fetchErr != nil {
		s.logger.Warn().Err(fetchErr).Str("tokenIn", req.TokenIn.Symbol).Str("tokenOut", req.TokenOut.Symbol).
			Int("candidates", len(plans)).Msg("snapshot providers failed")
	}
	if len(plans) == 0 {
		if fetchErr != nil {
			return nil, fmt.Errorf("fetch pools for %s -> %s: %w", req.TokenIn.Symbol, req.TokenOut.Symbol, fetchErr)
		}
		return nil, fmt.Errorf("%w: no pools for %s -> %s", entities.ErrNoRouteAvailable, req.TokenIn.Symbol, req.TokenOut.Symbol)
	}

	outcome, err := EvaluatePlans(mode, req.Amount, slippage, plans)
	metrics.RoutesEvaluated.Add(float64(len(plans)))
	if err != nil {
		metrics.RoutesRejected.Add(float64(len(plans)))
		if errors.Is(err, entities.ErrArithmetic) {
			s.logger.Error().Err(err).Str("tokenIn", req.TokenIn.Symbol).Str("tokenOut", req.TokenOut.Symbol).
				Msg("route evaluation aborted")
		}
		return nil, err
	}
	metrics.RoutesRejected.Add(float64(len(plans) - len(outcome.Ranked)))

	best := outcome.Best
	quote := &entities.Quote{
		TokenIn:                  req.TokenIn,
		TokenOut:                 req.TokenOut,
		Mode:                     outcome.Mode,
		AmountIn:                 best.AmountIn,
		AmountOut:                best.FinalOutputAmount,
		MinAmountOut:             outcome.MinAmountOut,
		MaxAmountIn:              outcome.MaxAmountIn,
		SlippagePercent:          slippage,
		EffectiveSlippagePercent: outcome.EffectiveSlippagePercent,
		BestRoute:                best,
		PriceImpact:              best.CompoundedPriceImpactPercent,
		PriceWarning:             outcome.PriceWarning,
		GasEstimate:              estimateGas(best.HopCount()),
		Sources:                  make(map[string]string),
		SnapshotAt:               best.Plan.OldestSnapshot(),
	}

	// ranked is best-first, so the first route per label is that source's best
	for _, eval := range outcome.Ranked {
		label := routeLabel(eval)
		if _, seen := quote.Sources[label]; seen {
			continue
		}
		if mode == entities.ExactInput {
			quote.Sources[label] = eval.FinalOutputAmount.String()
		} else {
			quote.Sources[label] = eval.AmountIn.String()
		}
	}

	s.logger.Debug().
		Str("tokenIn", req.TokenIn.Symbol).
		Str("tokenOut", req.TokenOut.Symbol).
		Str("mode", string(mode)).
		Int("candidates", len(plans)).
		Int("hops", best.HopCount()).
		Str("route", routeLabel(best)).
		Msg("quote")

	return quote, nil
}

// routeLabel names a route by its DEXes and junction tokens,
// e.g. "uniswap_v2" or "uniswap_v2>sushiswap via WETH".
func routeLabel(eval *entities.RouteEvaluation) string {
	dexes := make([]string, len(eval.Plan.Hops))
	junctions := make([]string, 0, len(eval.Plan.Hops))
	for i, hop := range eval.Plan.Hops {
		dexes[i] = string(hop.Pair.DEX)
		if i > 0 {
			junction, _ := hop.Pair.Other(hop.TokenOut)
			junctions = append(junctions, junction.Symbol)
		}
	}
	label := strings.Join(dexes, ">")
	if len(junctions) > 0 {
		label += " via " + strings.Join(junctions, ",")
	}
	return label
}

func errorStatus(err error) string {
	switch {
	case errors.Is(err, entities.ErrNoRouteAvailable):
		return "no_route"
	case errors.Is(err, entities.ErrInvalidAmount), errors.Is(err, entities.ErrInvalidRoute):
		return "invalid"
	case errors.Is(err, entities.ErrInsufficientLiquidity):
		return "no_route"
	default:
		return "error"
	}
}

// estimateGas estimates gas for a route with the given number of hops
func estimateGas(hops int) uint64 {
	if hops <= 0 {
		return 150000 // Default single swap estimate
	}

	// Base gas + gas per hop
	baseGas := uint64(21000)
	gasPerHop := uint64(100000) // Approximate gas for a Uniswap V2 swap

	return baseGas + uint64(hops)*gasPerHop
}
