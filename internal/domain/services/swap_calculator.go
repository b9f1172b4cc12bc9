package services

import (
	"math/big"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
)

// QuoteExactInput prices a one-hop swap of amountIn through pair.
func QuoteExactInput(pair *entities.Pair, amountIn *big.Int, inputIsLeft bool) (*entities.SwapQuote, error) {
	res, err := pair.ExpectedOutputForInput(amountIn, inputIsLeft)
	if err != nil {
		return nil, err
	}

	impact, err := pair.PriceImpact(res.AmountIn, res.AmountOut, inputIsLeft)
	if err != nil {
		return nil, err
	}

	return &entities.SwapQuote{
		Mode:               entities.ExactInput,
		InputAmount:        res.AmountIn,
		OutputAmount:       res.AmountOut,
		Fee:                res.Fee,
		PriceImpactPercent: impact,
	}, nil
}

// QuoteExactOutput prices a one-hop swap that must deliver amountOut of the
// token on the outputIsLeft side.
func QuoteExactOutput(pair *entities.Pair, amountOut *big.Int, outputIsLeft bool) (*entities.SwapQuote, error) {
	res, err := pair.RequiredInputForOutput(amountOut, outputIsLeft)
	if err != nil {
		return nil, err
	}

	// impact is measured in the direction of the trade, input on the other side
	impact, err := pair.PriceImpact(res.AmountIn, res.AmountOut, !outputIsLeft)
	if err != nil {
		return nil, err
	}

	return &entities.SwapQuote{
		Mode:                entities.ExactOutput,
		InputAmount:         res.AmountIn,
		OutputAmount:        res.AmountOut,
		RequiredInputAmount: res.AmountIn,
		Fee:                 res.Fee,
		PriceImpactPercent:  impact,
	}, nil
}
