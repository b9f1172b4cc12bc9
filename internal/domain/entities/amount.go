package entities

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// MaxDecimals is the largest display precision a token may declare.
const MaxDecimals = 36

// RoundingMode selects the direction of integer division.
type RoundingMode int

const (
	// RoundDown truncates toward zero. Used for amounts paid out to the user.
	RoundDown RoundingMode = iota
	// RoundUp rounds any remainder away from zero. Used for amounts charged
	// to the user and for reported costs.
	RoundUp
)

func (m RoundingMode) String() string {
	if m == RoundUp {
		return "up"
	}
	return "down"
}

var bigOne = big.NewInt(1)

// TokenAmount is a raw on-chain integer amount together with the token's
// display decimals. Arithmetic always uses Raw; Decimals only affects String.
type TokenAmount struct {
	Raw      *big.Int `json:"raw"`
	Decimals uint8    `json:"decimals"`
}

// NewTokenAmount validates raw and decimals and returns an immutable copy.
func NewTokenAmount(raw *big.Int, decimals uint8) (TokenAmount, error) {
	if err := CheckAmount(raw); err != nil {
		return TokenAmount{}, err
	}
	if decimals > MaxDecimals {
		return TokenAmount{}, fmt.Errorf("%w: decimals %d exceeds %d", ErrInvalidAmount, decimals, MaxDecimals)
	}
	return TokenAmount{Raw: new(big.Int).Set(raw), Decimals: decimals}, nil
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a TokenAmount) IsPositive() bool {
	return IsPositive(a.Raw)
}

// String renders the display-scaled amount, e.g. 1500000 with 6 decimals is "1.5".
func (a TokenAmount) String() string {
	if a.Raw == nil {
		return "0"
	}
	return decimal.NewFromBigInt(a.Raw, -int32(a.Decimals)).String()
}

// FormatAmount renders raw scaled down by decimals with exactly places
// fractional digits, truncating the rest.
func FormatAmount(raw *big.Int, decimals uint8, places int32) string {
	if raw == nil {
		return decimal.Zero.StringFixed(places)
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).Truncate(places).StringFixed(places)
}

// CheckAmount rejects nil, negative and larger-than-uint256 amounts.
func CheckAmount(amount *big.Int) error {
	if amount == nil {
		return fmt.Errorf("%w: amount is nil", ErrInvalidAmount)
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("%w: amount %s is negative", ErrInvalidAmount, amount)
	}
	if _, overflow := uint256.FromBig(amount); overflow {
		return fmt.Errorf("%w: amount exceeds 256 bits", ErrInvalidAmount)
	}
	return nil
}

// IsPositive reports whether amount is non-nil and strictly greater than zero.
func IsPositive(amount *big.Int) bool {
	return amount != nil && amount.Sign() > 0
}

// Shift multiplies amount by 10^exponent, or divides (rounding down) when
// exponent is negative.
func Shift(amount *big.Int, exponent int) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: cannot shift a nil or negative amount", ErrInvalidAmount)
	}
	if exponent >= 0 {
		return new(big.Int).Mul(amount, pow10(exponent)), nil
	}
	return new(big.Int).Quo(amount, pow10(-exponent)), nil
}

// MulDiv returns a*b/den rounded according to mode. The product is formed
// before dividing so no precision is lost in between.
func MulDiv(a, b, den *big.Int, mode RoundingMode) (*big.Int, error) {
	if den == nil || den.Sign() == 0 {
		return nil, fmt.Errorf("%w: division by zero", ErrArithmetic)
	}
	if a == nil || b == nil || a.Sign() < 0 || b.Sign() < 0 || den.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative or nil operand", ErrInvalidAmount)
	}

	num := new(big.Int).Mul(a, b)
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if mode == RoundUp && r.Sign() > 0 {
		q.Add(q, bigOne)
	}
	return q, nil
}

// DivideWithRounding returns num/den with exactly decimalPlaces fractional
// digits, rounded according to mode.
func DivideWithRounding(num, den *big.Int, decimalPlaces int, mode RoundingMode) (decimal.Decimal, error) {
	if decimalPlaces < 0 {
		return decimal.Zero, fmt.Errorf("%w: negative decimal places", ErrInvalidAmount)
	}
	q, err := MulDiv(num, pow10(decimalPlaces), den, mode)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromBigInt(q, -int32(decimalPlaces)), nil
}

// Ratio splits a non-negative decimal into an exact integer fraction num/den.
func Ratio(d decimal.Decimal) (num, den *big.Int) {
	coef := d.Coefficient()
	exp := int(d.Exponent())
	if exp >= 0 {
		return coef.Mul(coef, pow10(exp)), big.NewInt(1)
	}
	return coef, pow10(-exp)
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
