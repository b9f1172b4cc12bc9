package services

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
)

// Outcome is a ranked set of routes together with the slippage bound on the best one.
type Outcome struct {
	Mode                     entities.SwapMode           `json:"mode"`
	Best                     *entities.RouteEvaluation   `json:"best"`
	Ranked                   []*entities.RouteEvaluation `json:"ranked"`
	SlippagePercent          decimal.Decimal             `json:"slippagePercent"`
	EffectiveSlippagePercent decimal.Decimal             `json:"effectiveSlippagePercent"`
	MinAmountOut             *big.Int                    `json:"minAmountOut,omitempty"`
	MaxAmountIn              *big.Int                    `json:"maxAmountIn,omitempty"`
	PriceWarning             string                      `json:"priceWarning,omitempty"`
}

// EvaluatePlans ranks plans for amount in the given mode and bounds the best
// route with slippagePercent compounded over its hop count. In exact-input
// mode amount is the input; in exact-output mode it is the desired output.
func EvaluatePlans(mode entities.SwapMode, amount *big.Int, slippagePercent decimal.Decimal, plans []entities.RoutePlan) (*Outcome, error) {
	if err := checkPercent(slippagePercent); err != nil {
		return nil, err
	}

	var ranked []*entities.RouteEvaluation
	var err error
	switch mode {
	case entities.ExactInput, "":
		mode = entities.ExactInput
		ranked, err = RankRoutes(amount, plans)
	case entities.ExactOutput:
		ranked, err = RankByInput(amount, plans)
	default:
		return nil, fmt.Errorf("%w: unknown swap mode %q", entities.ErrInvalidAmount, mode)
	}
	if err != nil {
		return nil, err
	}

	best := ranked[0]
	effective, err := CompoundSlippage(slippagePercent, best.HopCount())
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Mode:                     mode,
		Best:                     best,
		Ranked:                   ranked,
		SlippagePercent:          slippagePercent,
		EffectiveSlippagePercent: effective,
		PriceWarning:             ImpactWarning(best.CompoundedPriceImpactPercent),
	}
	if mode == entities.ExactInput {
		out.MinAmountOut, err = MinAcceptableOutput(best.FinalOutputAmount, effective)
	} else {
		out.MaxAmountIn, err = MaxAcceptableInput(best.AmountIn, effective)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
