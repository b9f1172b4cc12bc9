package services

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
)

// EvaluateRoute walks plan forward with amountIn. Any hop failure rejects the
// whole route; no partial result is returned.
func EvaluateRoute(amountIn *big.Int, plan entities.RoutePlan) (*entities.RouteEvaluation, error) {
	if !entities.IsPositive(amountIn) {
		return nil, fmt.Errorf("%w: source amount must be positive", entities.ErrInvalidAmount)
	}
	if err := plan.Validate(plan.Source(), plan.Target()); err != nil {
		return nil, err
	}

	hops := make([]entities.HopEvaluation, 0, len(plan.Hops))
	impacts := make([]decimal.Decimal, 0, len(plan.Hops))
	current := amountIn

	for i, hop := range plan.Hops {
		inputIsLeft, err := hop.InputIsLeft()
		if err != nil {
			return nil, fmt.Errorf("hop %d: %w", i, err)
		}

		res, err := hop.Pair.ExpectedOutputForInput(current, inputIsLeft)
		if err != nil {
			return nil, fmt.Errorf("hop %d (%s): %w", i, hop.Pair.Address.Hex(), err)
		}
		if res.AmountOut.Sign() == 0 {
			return nil, fmt.Errorf("%w: hop %d (%s) yields no output for %s",
				entities.ErrInsufficientLiquidity, i, hop.Pair.Address.Hex(), current)
		}

		impact, err := hop.Pair.PriceImpact(res.AmountIn, res.AmountOut, inputIsLeft)
		if err != nil {
			return nil, fmt.Errorf("hop %d (%s): %w", i, hop.Pair.Address.Hex(), err)
		}

		hops = append(hops, hopEvaluation(hop, res, impact))
		impacts = append(impacts, impact)
		current = res.AmountOut
	}

	return &entities.RouteEvaluation{
		Plan:                         plan,
		AmountIn:                     new(big.Int).Set(amountIn),
		FinalOutputAmount:            current,
		CompoundedFeeAmount:          compoundedFee(hops),
		CompoundedPriceImpactPercent: compoundPercents(impacts).RoundCeil(2),
		Hops:                         hops,
	}, nil
}

// RankRoutes evaluates every plan and returns the surviving evaluations
// best-first. All plans must run between the same two tokens. Routes that
// fail liquidity or shape checks are skipped; if none survive the result is
// ErrNoRouteAvailable wrapping each rejection.
func RankRoutes(amountIn *big.Int, plans []entities.RoutePlan) ([]*entities.RouteEvaluation, error) {
	if !entities.IsPositive(amountIn) {
		return nil, fmt.Errorf("%w: source amount must be positive", entities.ErrInvalidAmount)
	}
	if err := entities.CheckAmount(amountIn); err != nil {
		return nil, err
	}
	if err := sameEndpoints(plans); err != nil {
		return nil, err
	}

	evals := make([]*entities.RouteEvaluation, 0, len(plans))
	var rejected []error
	for i, plan := range plans {
		eval, err := EvaluateRoute(amountIn, plan)
		if err != nil {
			if errors.Is(err, entities.ErrArithmetic) {
				return nil, fmt.Errorf("route %d: %w", i, err)
			}
			rejected = append(rejected, fmt.Errorf("route %d: %w", i, err))
			continue
		}
		eval.Index = i
		evals = append(evals, eval)
	}

	if len(evals) == 0 {
		return nil, noRoute(len(plans), rejected)
	}

	sort.SliceStable(evals, func(i, j int) bool {
		return evals[i].Better(evals[j])
	})
	return evals, nil
}

// EvaluateRoutes returns the best route for amountIn among plans.
func EvaluateRoutes(amountIn *big.Int, plans []entities.RoutePlan) (*entities.RouteEvaluation, error) {
	ranked, err := RankRoutes(amountIn, plans)
	if err != nil {
		return nil, err
	}
	return ranked[0], nil
}

// RequiredInputForRoute walks plan backwards from amountOut, asking each hop
// for the input that covers the next hop's requirement. Feeding the returned
// AmountIn forward delivers at least amountOut.
func RequiredInputForRoute(amountOut *big.Int, plan entities.RoutePlan) (*entities.RouteEvaluation, error) {
	if !entities.IsPositive(amountOut) {
		return nil, fmt.Errorf("%w: target amount must be positive", entities.ErrInvalidAmount)
	}
	if err := plan.Validate(plan.Source(), plan.Target()); err != nil {
		return nil, err
	}

	hops := make([]entities.HopEvaluation, len(plan.Hops))
	impacts := make([]decimal.Decimal, len(plan.Hops))
	current := amountOut

	for i := len(plan.Hops) - 1; i >= 0; i-- {
		hop := plan.Hops[i]
		inputIsLeft, err := hop.InputIsLeft()
		if err != nil {
			return nil, fmt.Errorf("hop %d: %w", i, err)
		}

		res, err := hop.Pair.RequiredInputForOutput(current, !inputIsLeft)
		if err != nil {
			return nil, fmt.Errorf("hop %d (%s): %w", i, hop.Pair.Address.Hex(), err)
		}

		impact, err := hop.Pair.PriceImpact(res.AmountIn, res.AmountOut, inputIsLeft)
		if err != nil {
			return nil, fmt.Errorf("hop %d (%s): %w", i, hop.Pair.Address.Hex(), err)
		}

		hops[i] = hopEvaluation(hop, res, impact)
		impacts[i] = impact
		current = res.AmountIn
	}

	return &entities.RouteEvaluation{
		Plan:                         plan,
		AmountIn:                     current,
		FinalOutputAmount:            new(big.Int).Set(amountOut),
		CompoundedFeeAmount:          compoundedFee(hops),
		CompoundedPriceImpactPercent: compoundPercents(impacts).RoundCeil(2),
		Hops:                         hops,
	}, nil
}

// RankByInput prices amountOut over every plan and returns the surviving
// evaluations cheapest-first (smallest input, then fewer hops, then lower fee).
func RankByInput(amountOut *big.Int, plans []entities.RoutePlan) ([]*entities.RouteEvaluation, error) {
	if !entities.IsPositive(amountOut) {
		return nil, fmt.Errorf("%w: target amount must be positive", entities.ErrInvalidAmount)
	}
	if err := entities.CheckAmount(amountOut); err != nil {
		return nil, err
	}
	if err := sameEndpoints(plans); err != nil {
		return nil, err
	}

	evals := make([]*entities.RouteEvaluation, 0, len(plans))
	var rejected []error
	for i, plan := range plans {
		eval, err := RequiredInputForRoute(amountOut, plan)
		if err != nil {
			if errors.Is(err, entities.ErrArithmetic) {
				return nil, fmt.Errorf("route %d: %w", i, err)
			}
			rejected = append(rejected, fmt.Errorf("route %d: %w", i, err))
			continue
		}
		eval.Index = i
		evals = append(evals, eval)
	}

	if len(evals) == 0 {
		return nil, noRoute(len(plans), rejected)
	}

	sort.SliceStable(evals, func(i, j int) bool {
		a, b := evals[i], evals[j]
		if c := a.AmountIn.Cmp(b.AmountIn); c != 0 {
			return c < 0
		}
		if a.HopCount() != b.HopCount() {
			return a.HopCount() < b.HopCount()
		}
		return a.CompoundedFeeAmount.Cmp(b.CompoundedFeeAmount) < 0
	})
	return evals, nil
}

// SelectCheapestInput returns the plan needing the least input to deliver amountOut.
func SelectCheapestInput(amountOut *big.Int, plans []entities.RoutePlan) (*entities.RouteEvaluation, error) {
	ranked, err := RankByInput(amountOut, plans)
	if err != nil {
		return nil, err
	}
	return ranked[0], nil
}

// sameEndpoints checks that every non-empty plan starts and ends on the tokens
// of the first non-empty one. Outputs in different tokens cannot be ranked.
func sameEndpoints(plans []entities.RoutePlan) error {
	ref := -1
	for i, plan := range plans {
		if len(plan.Hops) == 0 {
			continue
		}
		if ref < 0 {
			ref = i
			continue
		}
		want := plans[ref]
		if plan.Source() != want.Source() || plan.Target() != want.Target() {
			return fmt.Errorf("%w: route %d runs %s -> %s but route %d runs %s -> %s",
				entities.ErrInvalidRoute, i, plan.Source().Hex(), plan.Target().Hex(),
				ref, want.Source().Hex(), want.Target().Hex())
		}
	}
	return nil
}

func noRoute(candidates int, rejected []error) error {
	if len(rejected) == 0 {
		return fmt.Errorf("%w: no candidate routes", entities.ErrNoRouteAvailable)
	}
	return fmt.Errorf("%w: all %d candidate routes rejected: %w",
		entities.ErrNoRouteAvailable, candidates, errors.Join(rejected...))
}

func hopEvaluation(hop entities.Hop, res entities.SwapResult, impact decimal.Decimal) entities.HopEvaluation {
	return entities.HopEvaluation{
		Pair:               hop.Pair.Address,
		DEX:                hop.Pair.DEX,
		TokenIn:            hop.TokenIn,
		TokenOut:           hop.TokenOut,
		AmountIn:           res.AmountIn,
		AmountOut:          res.AmountOut,
		Fee:                res.Fee,
		PriceImpactPercent: impact,
	}
}

// compoundedFee sums per-hop fees in source-token units. Walking from the last
// hop back, the running total is carried across each hop at that hop's
// realized rate amountIn/amountOut before the hop's own fee is added.
// The total is rounded up.
func compoundedFee(hops []entities.HopEvaluation) *big.Int {
	acc := new(big.Rat)
	for i := len(hops) - 1; i >= 0; i-- {
		h := hops[i]
		if acc.Sign() != 0 {
			acc.Mul(acc, new(big.Rat).SetFrac(h.AmountIn, h.AmountOut))
		}
		acc.Add(acc, new(big.Rat).SetInt(h.Fee))
	}

	q, r := new(big.Int).QuoRem(acc.Num(), acc.Denom(), new(big.Int))
	if r.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}
