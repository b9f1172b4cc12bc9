package entities

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// MaxHops bounds the length of a route plan.
const MaxHops = 5

// SwapMode selects which side of a swap the caller fixes.
type SwapMode string

const (
	ExactInput  SwapMode = "exact_in"
	ExactOutput SwapMode = "exact_out"
)

// ParseSwapMode accepts "exact_in"/"exact_out" and treats an empty string as exact input.
func ParseSwapMode(s string) (SwapMode, error) {
	switch SwapMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ExactInput:
		return ExactInput, nil
	case ExactOutput:
		return ExactOutput, nil
	default:
		return "", fmt.Errorf("unknown swap mode %q", s)
	}
}

// Hop represents a single swap step in a route
type Hop struct {
	Pair     Pair           `json:"pair"`
	TokenIn  common.Address `json:"tokenIn"`
	TokenOut common.Address `json:"tokenOut"`
}

// InputIsLeft returns the hop's orientation within its pair.
func (h Hop) InputIsLeft() (bool, error) {
	isLeft, err := h.Pair.Side(h.TokenIn)
	if err != nil {
		return false, err
	}
	other, _ := h.Pair.Other(h.TokenIn)
	if other.Address != h.TokenOut {
		return false, fmt.Errorf("%w: token %s not opposite %s in pair %s",
			ErrInvalidRoute, h.TokenOut.Hex(), h.TokenIn.Hex(), h.Pair.Address.Hex())
	}
	return isLeft, nil
}

// RoutePlan is an ordered list of hops walking from a source token to a target token.
type RoutePlan struct {
	Hops []Hop `json:"hops"`
}

// NewRoutePlan builds a plan by walking pairs from source, orienting every
// hop on the token left over from the previous one.
func NewRoutePlan(source common.Address, pairs ...Pair) (RoutePlan, error) {
	hops := make([]Hop, 0, len(pairs))
	current := source
	for i, pair := range pairs {
		next, ok := pair.Other(current)
		if !ok {
			return RoutePlan{}, fmt.Errorf("%w: hop %d: token %s not in pair %s",
				ErrInvalidRoute, i, current.Hex(), pair.Address.Hex())
		}
		hops = append(hops, Hop{Pair: pair, TokenIn: current, TokenOut: next.Address})
		current = next.Address
	}
	return RoutePlan{Hops: hops}, nil
}

// Source returns the token entering the first hop.
func (r RoutePlan) Source() common.Address {
	if len(r.Hops) == 0 {
		return common.Address{}
	}
	return r.Hops[0].TokenIn
}

// Target returns the token leaving the last hop.
func (r RoutePlan) Target() common.Address {
	if len(r.Hops) == 0 {
		return common.Address{}
	}
	return r.Hops[len(r.Hops)-1].TokenOut
}

// Validate checks that the plan connects source to target through shared
// junction tokens and that every hop is oriented inside its pair.
func (r RoutePlan) Validate(source, target common.Address) error {
	if len(r.Hops) == 0 {
		return fmt.Errorf("%w: route has no hops", ErrInvalidRoute)
	}
	if len(r.Hops) > MaxHops {
		return fmt.Errorf("%w: %d hops exceeds maximum of %d", ErrInvalidRoute, len(r.Hops), MaxHops)
	}
	if r.Source() != source {
		return fmt.Errorf("%w: route starts at %s, want %s", ErrInvalidRoute, r.Source().Hex(), source.Hex())
	}
	if r.Target() != target {
		return fmt.Errorf("%w: route ends at %s, want %s", ErrInvalidRoute, r.Target().Hex(), target.Hex())
	}

	for i, hop := range r.Hops {
		if _, err := hop.InputIsLeft(); err != nil {
			return fmt.Errorf("hop %d: %w", i, err)
		}
		if i > 0 && r.Hops[i-1].TokenOut != hop.TokenIn {
			return fmt.Errorf("%w: hop chain broken at hop %d: %s != %s",
				ErrInvalidRoute, i, r.Hops[i-1].TokenOut.Hex(), hop.TokenIn.Hex())
		}
	}
	return nil
}

// OldestSnapshot returns the earliest UpdatedAt among the plan's pairs.
func (r RoutePlan) OldestSnapshot() int64 {
	var oldest int64
	for i, hop := range r.Hops {
		if i == 0 || hop.Pair.UpdatedAt < oldest {
			oldest = hop.Pair.UpdatedAt
		}
	}
	return oldest
}

// HopEvaluation records what happened at one hop of an evaluated route.
type HopEvaluation struct {
	Pair               common.Address  `json:"pair"`
	DEX                DEXType         `json:"dex"`
	TokenIn            common.Address  `json:"tokenIn"`
	TokenOut           common.Address  `json:"tokenOut"`
	AmountIn           *big.Int        `json:"amountIn"`
	AmountOut          *big.Int        `json:"amountOut"`
	Fee                *big.Int        `json:"fee"`
	PriceImpactPercent decimal.Decimal `json:"priceImpactPercent"`
}

// RouteEvaluation is the result of walking one RoutePlan with a concrete amount.
// CompoundedFeeAmount is expressed in source-token units.
type RouteEvaluation struct {
	Plan                         RoutePlan       `json:"-"`
	Index                        int             `json:"index"`
	AmountIn                     *big.Int        `json:"amountIn"`
	FinalOutputAmount            *big.Int        `json:"finalOutputAmount"`
	CompoundedFeeAmount          *big.Int        `json:"compoundedFeeAmount"`
	CompoundedPriceImpactPercent decimal.Decimal `json:"compoundedPriceImpactPercent"`
	Hops                         []HopEvaluation `json:"hops"`
}

// HopCount returns the number of hops in the evaluated route.
func (e *RouteEvaluation) HopCount() int {
	return len(e.Hops)
}

// Better reports whether e ranks above other: larger output first, then
// fewer hops, then a smaller compounded fee.
func (e *RouteEvaluation) Better(other *RouteEvaluation) bool {
	if other == nil {
		return true
	}
	if c := e.FinalOutputAmount.Cmp(other.FinalOutputAmount); c != 0 {
		return c > 0
	}
	if e.HopCount() != other.HopCount() {
		return e.HopCount() < other.HopCount()
	}
	return e.CompoundedFeeAmount.Cmp(other.CompoundedFeeAmount) < 0
}

// SwapQuote is the priced outcome of a single-pair swap. In exact-output mode
// RequiredInputAmount carries the input to send and InputAmount mirrors it.
type SwapQuote struct {
	Mode                SwapMode        `json:"mode"`
	InputAmount         *big.Int        `json:"inputAmount"`
	OutputAmount        *big.Int        `json:"outputAmount"`
	RequiredInputAmount *big.Int        `json:"requiredInputAmount,omitempty"`
	Fee                 *big.Int        `json:"fee"`
	PriceImpactPercent  decimal.Decimal `json:"priceImpactPercent"`
}

// Quote represents the result of a price quote request
type Quote struct {
	TokenIn                  Token             `json:"tokenIn"`
	TokenOut                 Token             `json:"tokenOut"`
	Mode                     SwapMode          `json:"mode"`
	AmountIn                 *big.Int          `json:"amountIn"`
	AmountOut                *big.Int          `json:"amountOut"`
	MinAmountOut             *big.Int          `json:"minAmountOut,omitempty"`
	MaxAmountIn              *big.Int          `json:"maxAmountIn,omitempty"`
	SlippagePercent          decimal.Decimal   `json:"slippagePercent"`
	EffectiveSlippagePercent decimal.Decimal   `json:"effectiveSlippagePercent"`
	BestRoute                *RouteEvaluation  `json:"bestRoute"`
	PriceImpact              decimal.Decimal   `json:"priceImpact"`
	PriceWarning             string            `json:"priceWarning,omitempty"`
	GasEstimate              uint64            `json:"gasEstimate"`
	Sources                  map[string]string `json:"sources"`
	SnapshotAt               int64             `json:"snapshotAt"`
}
