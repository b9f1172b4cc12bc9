package entities

import "errors"

// Pricing errors. Every failure returned by the pricing code wraps one of these,
// so callers match them with errors.Is.
var (
	// ErrInvalidAmount is returned for non-positive, negative or out-of-range
	// numeric arguments, including slippage percentages outside [0, 100).
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientLiquidity is returned when a trade would drain a reserve
	// or a reserve is empty.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")

	// ErrArithmetic is returned on division by zero inside the decimal helpers.
	ErrArithmetic = errors.New("arithmetic error")

	// ErrNoRouteAvailable is returned when every candidate route was rejected.
	ErrNoRouteAvailable = errors.New("no route available")

	// ErrInvalidRoute is returned when a route's hops do not connect.
	ErrInvalidRoute = errors.New("invalid route")
)
