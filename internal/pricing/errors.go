package pricing

import (
	"errors"
	"fmt"
)

// Typed errors allow callers to detect failure categories with errors.Is
// instead of matching on message text.
var (
	// ErrInvalidParameter is returned when an input leaves d1/d2 undefined:
	// non-positive spot, strike, time to expiry or volatility, or a
	// non-finite value anywhere.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNumericOverflow is returned when an intermediate or final value
	// leaves the float64 range, e.g. a discount exponent beyond
	// MaxDiscountExponent.
	ErrNumericOverflow = errors.New("numeric overflow")
)

// ParameterError names the offending input. It unwraps to ErrInvalidParameter.
type ParameterError struct {
	Name  string
	Value float64
	Rule  string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s=%g %s", ErrInvalidParameter, e.Name, e.Value, e.Rule)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}
