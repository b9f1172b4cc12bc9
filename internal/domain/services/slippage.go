package services

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
)

var (
	hundred    = decimal.NewFromInt(100)
	bigHundred = big.NewInt(100)
)

// DefaultSlippagePercent is used when a caller does not state a tolerance.
var DefaultSlippagePercent = decimal.RequireFromString("0.5")

// MaxPercentPlaces is the finest precision a parsed percentage may carry.
const MaxPercentPlaces = 18

// ParsePercent parses a slippage tolerance such as "0.5" and checks it lies in
// [0, 100) with at most MaxPercentPlaces fractional digits.
func ParsePercent(s string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", entities.ErrInvalidAmount, s)
	}
	// the exponent is checked before any comparison, which would rescale the coefficient
	if exp := p.Exponent(); exp < -MaxPercentPlaces || exp > 2 {
		return decimal.Zero, fmt.Errorf("%w: %q must be a percentage below 100 with at most %d decimal places",
			entities.ErrInvalidAmount, s, MaxPercentPlaces)
	}
	if err := checkPercent(p); err != nil {
		return decimal.Zero, err
	}
	return p, nil
}

func checkPercent(p decimal.Decimal) error {
	if p.IsNegative() {
		return fmt.Errorf("%w: slippage %s%% is negative", entities.ErrInvalidAmount, p)
	}
	if p.GreaterThanOrEqual(hundred) {
		return fmt.Errorf("%w: slippage %s%% must be below 100%%", entities.ErrInvalidAmount, p)
	}
	return nil
}

// MinAcceptableOutput returns floor(expected * (100 - slippage) / 100), the
// smallest output a trade may deliver before it should revert.
func MinAcceptableOutput(expected *big.Int, slippagePercent decimal.Decimal) (*big.Int, error) {
	if err := entities.CheckAmount(expected); err != nil {
		return nil, err
	}
	if err := checkPercent(slippagePercent); err != nil {
		return nil, err
	}
	num, den := entities.Ratio(hundred.Sub(slippagePercent))
	return entities.MulDiv(expected, num, den.Mul(den, bigHundred), entities.RoundDown)
}

// MaxAcceptableInput returns ceil(expected * (100 + slippage) / 100), the
// most an exact-output trade may spend.
func MaxAcceptableInput(expected *big.Int, slippagePercent decimal.Decimal) (*big.Int, error) {
	if err := entities.CheckAmount(expected); err != nil {
		return nil, err
	}
	if err := checkPercent(slippagePercent); err != nil {
		return nil, err
	}
	num, den := entities.Ratio(hundred.Add(slippagePercent))
	return entities.MulDiv(expected, num, den.Mul(den, bigHundred), entities.RoundUp)
}

// CompoundSlippage returns ((1 + p/100)^hopCount - 1) * 100 exactly.
// hopCount is limited to entities.MaxHops, the longest route a plan may have.
func CompoundSlippage(perHopPercent decimal.Decimal, hopCount int) (decimal.Decimal, error) {
	if hopCount < 0 || hopCount > entities.MaxHops {
		return decimal.Zero, fmt.Errorf("%w: hop count %d outside [0, %d]", entities.ErrInvalidAmount, hopCount, entities.MaxHops)
	}
	if err := checkPercent(perHopPercent); err != nil {
		return decimal.Zero, err
	}
	percents := make([]decimal.Decimal, hopCount)
	for i := range percents {
		percents[i] = perHopPercent
	}
	return compoundPercents(percents), nil
}

// compoundPercents multiplies (1 + p_i/100) over all p_i and converts back to
// a percentage. Shift keeps every step exact.
func compoundPercents(percents []decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1)
	for _, p := range percents {
		factor = factor.Mul(decimal.NewFromInt(1).Add(p.Shift(-2)))
	}
	return factor.Sub(decimal.NewFromInt(1)).Shift(2)
}

// ImpactSeverity buckets a price impact percentage
type ImpactSeverity string

const (
	SeverityNone     ImpactSeverity = "none"     // < 1%
	SeverityLow      ImpactSeverity = "low"      // 1-3%
	SeverityModerate ImpactSeverity = "moderate" // 3-5%
	SeverityHigh     ImpactSeverity = "high"     // 5-10%
	SeverityExtreme  ImpactSeverity = "extreme"  // > 10%
)

var (
	impactLow      = decimal.NewFromInt(1)
	impactModerate = decimal.NewFromInt(3)
	impactHigh     = decimal.NewFromInt(5)
	impactExtreme  = decimal.NewFromInt(10)
)

// SeverityOf returns the severity bucket for a price impact percentage.
func SeverityOf(impactPercent decimal.Decimal) ImpactSeverity {
	switch {
	case impactPercent.LessThan(impactLow):
		return SeverityNone
	case impactPercent.LessThan(impactModerate):
		return SeverityLow
	case impactPercent.LessThan(impactHigh):
		return SeverityModerate
	case impactPercent.LessThan(impactExtreme):
		return SeverityHigh
	default:
		return SeverityExtreme
	}
}

// ImpactWarning returns a user-facing warning, or "" below 1%.
func ImpactWarning(impactPercent decimal.Decimal) string {
	switch SeverityOf(impactPercent) {
	case SeverityLow:
		return "Low price impact"
	case SeverityModerate:
		return "Moderate price impact - consider reducing trade size"
	case SeverityHigh:
		return "High price impact - you may receive significantly less tokens"
	case SeverityExtreme:
		return "EXTREME price impact - this trade will severely impact the market price"
	default:
		return ""
	}
}
