package entities

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PairSnapshot is the wire form of a reserve snapshot supplied by a caller.
// Amounts are base-10 integer strings. An omitted fee means 3/1000.
type PairSnapshot struct {
	Address        string `json:"address"`
	Token0         string `json:"token0"`
	Token1         string `json:"token1"`
	Reserve0       string `json:"reserve0"`
	Reserve1       string `json:"reserve1"`
	FeeNumerator   uint64 `json:"feeNumerator"`
	FeeDenominator uint64 `json:"feeDenominator"`
	UpdatedAt      int64  `json:"updatedAt"`
}

// RouteSpec lists the pair addresses a route walks, starting at TokenIn.
type RouteSpec struct {
	TokenIn string   `json:"tokenIn"`
	Pairs   []string `json:"pairs"`
}

// PlanSet is a self-contained set of snapshots and the routes over them.
type PlanSet struct {
	Pairs  []PairSnapshot `json:"pairs"`
	Routes []RouteSpec    `json:"routes"`
}

// Pair converts the snapshot; lookup supplies token metadata.
func (ps PairSnapshot) Pair(lookup func(common.Address) Token) (Pair, error) {
	for _, addr := range []string{ps.Address, ps.Token0, ps.Token1} {
		if !common.IsHexAddress(addr) {
			return Pair{}, fmt.Errorf("%w: invalid address %q", ErrInvalidRoute, addr)
		}
	}
	reserve0, ok0 := new(big.Int).SetString(ps.Reserve0, 10)
	reserve1, ok1 := new(big.Int).SetString(ps.Reserve1, 10)
	if !ok0 || !ok1 {
		return Pair{}, fmt.Errorf("%w: reserves must be integers", ErrInvalidAmount)
	}
	if ps.FeeNumerator == 0 && ps.FeeDenominator == 0 {
		ps.FeeNumerator, ps.FeeDenominator = V2FeeNumerator, V2FeeDenominator
	}
	return Pair{
		Address:        common.HexToAddress(ps.Address),
		Token0:         lookup(common.HexToAddress(ps.Token0)),
		Token1:         lookup(common.HexToAddress(ps.Token1)),
		Reserve0:       reserve0,
		Reserve1:       reserve1,
		DEX:            DEXCustom,
		FeeNumerator:   ps.FeeNumerator,
		FeeDenominator: ps.FeeDenominator,
		UpdatedAt:      ps.UpdatedAt,
	}, nil
}

// Plans resolves every route against the set's pairs. A nil lookup uses
// UnknownToken metadata.
func (s PlanSet) Plans(lookup func(common.Address) Token) ([]RoutePlan, error) {
	if lookup == nil {
		lookup = UnknownToken
	}

	pairs := make(map[common.Address]Pair, len(s.Pairs))
	for i, ps := range s.Pairs {
		pair, err := ps.Pair(lookup)
		if err != nil {
			return nil, fmt.Errorf("pair %d: %w", i, err)
		}
		pairs[pair.Address] = pair
	}

	plans := make([]RoutePlan, 0, len(s.Routes))
	for i, spec := range s.Routes {
		if !common.IsHexAddress(spec.TokenIn) {
			return nil, fmt.Errorf("%w: route %d: invalid tokenIn %q", ErrInvalidRoute, i, spec.TokenIn)
		}
		hops := make([]Pair, 0, len(spec.Pairs))
		for _, addr := range spec.Pairs {
			pair, ok := pairs[common.HexToAddress(addr)]
			if !common.IsHexAddress(addr) || !ok {
				return nil, fmt.Errorf("%w: route %d: unknown pair %q", ErrInvalidRoute, i, addr)
			}
			hops = append(hops, pair)
		}
		plan, err := NewRoutePlan(common.HexToAddress(spec.TokenIn), hops...)
		if err != nil {
			return nil, fmt.Errorf("route %d: %w", i, err)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}
