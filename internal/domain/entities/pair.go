package entities

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// DEXType represents the type of decentralized exchange
type DEXType string

const (
	DEXUniswapV2 DEXType = "uniswap_v2"
	DEXSushiswap DEXType = "sushiswap"
	DEXBalancer  DEXType = "balancer"
	// DEXCustom marks snapshots supplied directly by API callers.
	DEXCustom DEXType = "custom"
)

// Uniswap V2 style pools charge 0.3% of the input.
const (
	V2FeeNumerator   uint64 = 3
	V2FeeDenominator uint64 = 1000
)

// SpotPricePrecision is the number of fractional digits reported by SpotPrice.
const SpotPricePrecision = 18

// Pair is a point-in-time reserve snapshot of a constant-product pool.
// Token0 is the "left" side and Token1 the "right" side. The fee rate is
// FeeNumerator/FeeDenominator of the gross input.
type Pair struct {
	Address        common.Address `json:"address"`
	Token0         Token          `json:"token0"`
	Token1         Token          `json:"token1"`
	Reserve0       *big.Int       `json:"reserve0"`
	Reserve1       *big.Int       `json:"reserve1"`
	DEX            DEXType        `json:"dex"`
	FeeNumerator   uint64         `json:"feeNumerator"`
	FeeDenominator uint64         `json:"feeDenominator"`
	UpdatedAt      int64          `json:"updatedAt"`
}

// SwapResult is the raw outcome of one constant-product swap.
// AmountIn is gross (fee included); NetInput is what reaches the reserves.
type SwapResult struct {
	AmountIn  *big.Int
	NetInput  *big.Int
	AmountOut *big.Int
	Fee       *big.Int
}

// FeeFromBps converts a basis-point fee to a numerator/denominator pair.
func FeeFromBps(bps uint64) (numerator, denominator uint64) {
	return bps, 10000
}

// Validate checks the fee fraction and that both reserves are positive.
func (p *Pair) Validate() error {
	if err := p.validateFee(); err != nil {
		return err
	}
	if !IsPositive(p.Reserve0) || !IsPositive(p.Reserve1) {
		return fmt.Errorf("%w: pair %s has an empty reserve", ErrInsufficientLiquidity, p.Address.Hex())
	}
	return nil
}

func (p *Pair) validateFee() error {
	if p.FeeDenominator == 0 || p.FeeNumerator >= p.FeeDenominator {
		return fmt.Errorf("%w: fee %d/%d on pair %s", ErrInvalidAmount, p.FeeNumerator, p.FeeDenominator, p.Address.Hex())
	}
	return nil
}

// Side reports whether token is the left token of the pair.
func (p *Pair) Side(token common.Address) (bool, error) {
	switch token {
	case p.Token0.Address:
		return true, nil
	case p.Token1.Address:
		return false, nil
	default:
		return false, fmt.Errorf("%w: token %s not in pair %s", ErrInvalidRoute, token.Hex(), p.Address.Hex())
	}
}

// Other returns the token on the opposite side of token. ok is false when
// token is not part of the pair.
func (p *Pair) Other(token common.Address) (Token, bool) {
	switch token {
	case p.Token0.Address:
		return p.Token1, true
	case p.Token1.Address:
		return p.Token0, true
	default:
		return Token{}, false
	}
}

// reserves returns (reserveIn, reserveOut) for a swap whose input is the
// left token when inputIsLeft is set.
func (p *Pair) reserves(inputIsLeft bool) (*big.Int, *big.Int, error) {
	reserveIn, reserveOut := p.Reserve1, p.Reserve0
	if inputIsLeft {
		reserveIn, reserveOut = p.Reserve0, p.Reserve1
	}
	if !IsPositive(reserveIn) || !IsPositive(reserveOut) {
		return nil, nil, fmt.Errorf("%w: pair %s has an empty reserve", ErrInsufficientLiquidity, p.Address.Hex())
	}
	return reserveIn, reserveOut, nil
}

func (p *Pair) feeFraction() (keep, den *big.Int) {
	return new(big.Int).SetUint64(p.FeeDenominator - p.FeeNumerator), new(big.Int).SetUint64(p.FeeDenominator)
}

// ExpectedOutputForInput applies x*y=k net of the fee:
//
//	netInput = floor(amountIn * (D - N) / D)
//	out      = floor(reserveOut * netInput / (reserveIn + netInput))
//
// Both divisions round down so the pool is never shorted.
func (p *Pair) ExpectedOutputForInput(amountIn *big.Int, inputIsLeft bool) (SwapResult, error) {
	if !IsPositive(amountIn) {
		return SwapResult{}, fmt.Errorf("%w: amount in must be positive", ErrInvalidAmount)
	}
	if err := CheckAmount(amountIn); err != nil {
		return SwapResult{}, err
	}
	if err := p.validateFee(); err != nil {
		return SwapResult{}, err
	}
	reserveIn, reserveOut, err := p.reserves(inputIsLeft)
	if err != nil {
		return SwapResult{}, err
	}

	keep, den := p.feeFraction()
	netInput, err := MulDiv(amountIn, keep, den, RoundDown)
	if err != nil {
		return SwapResult{}, err
	}

	amountOut, err := MulDiv(reserveOut, netInput, new(big.Int).Add(reserveIn, netInput), RoundDown)
	if err != nil {
		return SwapResult{}, err
	}
	if amountOut.Cmp(reserveOut) >= 0 {
		return SwapResult{}, fmt.Errorf("%w: output %s would drain reserve %s", ErrInsufficientLiquidity, amountOut, reserveOut)
	}

	return SwapResult{
		AmountIn:  new(big.Int).Set(amountIn),
		NetInput:  netInput,
		AmountOut: amountOut,
		Fee:       new(big.Int).Sub(amountIn, netInput),
	}, nil
}

// RequiredInputForOutput solves for the gross input that yields at least
// amountOut. Every division rounds up:
//
//	netInput = ceil(reserveIn * amountOut / (reserveOut - amountOut))
//	amountIn = ceil(netInput * D / (D - N))
func (p *Pair) RequiredInputForOutput(amountOut *big.Int, outputIsLeft bool) (SwapResult, error) {
	if !IsPositive(amountOut) {
		return SwapResult{}, fmt.Errorf("%w: amount out must be positive", ErrInvalidAmount)
	}
	if err := CheckAmount(amountOut); err != nil {
		return SwapResult{}, err
	}
	if err := p.validateFee(); err != nil {
		return SwapResult{}, err
	}
	reserveIn, reserveOut, err := p.reserves(!outputIsLeft)
	if err != nil {
		return SwapResult{}, err
	}
	if amountOut.Cmp(reserveOut) >= 0 {
		return SwapResult{}, fmt.Errorf("%w: requested %s but reserve holds %s", ErrInsufficientLiquidity, amountOut, reserveOut)
	}

	netNeeded, err := MulDiv(reserveIn, amountOut, new(big.Int).Sub(reserveOut, amountOut), RoundUp)
	if err != nil {
		return SwapResult{}, err
	}

	keep, den := p.feeFraction()
	amountIn, err := MulDiv(netNeeded, den, keep, RoundUp)
	if err != nil {
		return SwapResult{}, err
	}

	// The fee actually withheld from amountIn, as the forward swap computes it.
	netInput, err := MulDiv(amountIn, keep, den, RoundDown)
	if err != nil {
		return SwapResult{}, err
	}

	return SwapResult{
		AmountIn:  amountIn,
		NetInput:  netInput,
		AmountOut: new(big.Int).Set(amountOut),
		Fee:       new(big.Int).Sub(amountIn, netInput),
	}, nil
}

// PriceImpact compares the pre-trade spot price reserveOut/reserveIn with the
// realized price amountOut/amountIn and returns |spot-effective|/spot*100,
// rounded up to two decimals.
func (p *Pair) PriceImpact(amountIn, amountOut *big.Int, inputIsLeft bool) (decimal.Decimal, error) {
	if !IsPositive(amountIn) {
		return decimal.Zero, fmt.Errorf("%w: amount in must be positive", ErrInvalidAmount)
	}
	if amountOut == nil || amountOut.Sign() < 0 {
		return decimal.Zero, fmt.Errorf("%w: amount out must not be negative", ErrInvalidAmount)
	}
	reserveIn, reserveOut, err := p.reserves(inputIsLeft)
	if err != nil {
		return decimal.Zero, err
	}

	// spot/effective scaled by amountIn*reserveIn to stay in integers
	spot := new(big.Int).Mul(amountIn, reserveOut)
	realized := new(big.Int).Mul(amountOut, reserveIn)
	diff := new(big.Int).Sub(spot, realized)
	diff.Abs(diff)
	diff.Mul(diff, big.NewInt(100))

	return DivideWithRounding(diff, spot, 2, RoundUp)
}

// SpotPrice returns the raw-unit price of the input token in output-token units.
func (p *Pair) SpotPrice(inputIsLeft bool) (decimal.Decimal, error) {
	reserveIn, reserveOut, err := p.reserves(inputIsLeft)
	if err != nil {
		return decimal.Zero, err
	}
	return DivideWithRounding(reserveOut, reserveIn, SpotPricePrecision, RoundDown)
}

// AmountOut orients the pair by tokenIn and returns the expected output.
func (p *Pair) AmountOut(amountIn *big.Int, tokenIn common.Address) (*big.Int, error) {
	isLeft, err := p.Side(tokenIn)
	if err != nil {
		return nil, err
	}
	res, err := p.ExpectedOutputForInput(amountIn, isLeft)
	if err != nil {
		return nil, err
	}
	return res.AmountOut, nil
}
