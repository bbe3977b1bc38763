// Package pricing values European options under the Black-Scholes model.
//
// Responsibilities:
//   - Standard normal statistics (NormCDF, NormPDF, NormInv)
//   - A validated, immutable OptionContract carrying the five market inputs
//   - Closed-form price and Greeks for calls and puts, selected by type tag
//   - Supporting estimators: historical volatility, strike from delta,
//     a seeded Monte Carlo cross-check and concurrent batch valuation
//
// Design notes:
//   - Every function is pure; nothing here keeps package-level mutable state
//   - Invalid inputs are rejected at construction with ErrInvalidParameter,
//     so a constructed contract never produces NaN or Inf from d1/d2
//   - Presentation (rounding, display) belongs to callers
package pricing

import (
	"fmt"
	"math"
	"strings"
)

// MaxDiscountExponent bounds |riskFreeRate * timeToExpiry|. exp(±700) is the
// last comfortably representable magnitude for float64; beyond it the
// discount factor would silently become Inf or 0.
const MaxDiscountExponent = 700.0

// OptionType tags a contract as a call or a put. It is fixed at construction.
type OptionType uint8

const (
	Call OptionType = iota + 1
	Put
)

// ParseOptionType accepts "call", "c", "put" and "p" (case-insensitive).
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return 0, fmt.Errorf("%w: unknown option type %q", ErrInvalidParameter, s)
}

func (t OptionType) String() string {
	switch t {
	case Call:
		return "call"
	case Put:
		return "put"
	}
	return fmt.Sprintf("OptionType(%d)", uint8(t))
}

// MarshalText encodes the type as "call" or "put".
func (t OptionType) MarshalText() ([]byte, error) {
	if t != Call && t != Put {
		return nil, fmt.Errorf("%w: option type %d", ErrInvalidParameter, uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes anything ParseOptionType accepts.
func (t *OptionType) UnmarshalText(b []byte) error {
	parsed, err := ParseOptionType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// OptionContract holds the Black-Scholes inputs of one European option.
// It has no mutators; construct a new contract to change an input.
type OptionContract struct {
	optionType   OptionType
	spot         float64 // current price of the underlying
	strike       float64 // exercise price
	timeToExpiry float64 // years
	riskFreeRate float64 // annual, continuously compounded
	volatility   float64 // annualized stdev of log returns
}

// NewOptionContract validates the inputs and returns an immutable contract.
//
// Parameters:
//   - typ: Call or Put
//   - spot: spot price of the underlying asset, > 0
//   - strike: strike price of the option, > 0
//   - timeToExpiry: time to expiry in years, > 0
//   - riskFreeRate: risk-free interest rate (annual), any sign
//   - volatility: volatility of the underlying (annual, as a decimal), > 0
//
// Returns ErrInvalidParameter (as a *ParameterError) for any input that would
// leave d1/d2 undefined, and ErrNumericOverflow when |riskFreeRate*timeToExpiry|
// exceeds MaxDiscountExponent.
func NewOptionContract(typ OptionType, spot, strike, timeToExpiry, riskFreeRate, volatility float64) (OptionContract, error) {
	if typ != Call && typ != Put {
		return OptionContract{}, fmt.Errorf("%w: option type %d", ErrInvalidParameter, uint8(typ))
	}

	checks := []struct {
		name  string
		value float64
		pos   bool
	}{
		{"spot", spot, true},
		{"strike", strike, true},
		{"timeToExpiry", timeToExpiry, true},
		{"riskFreeRate", riskFreeRate, false},
		{"volatility", volatility, true},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return OptionContract{}, &ParameterError{Name: c.name, Value: c.value, Rule: "must be finite"}
		}
		if c.pos && c.value <= 0 {
			return OptionContract{}, &ParameterError{Name: c.name, Value: c.value, Rule: "must be positive"}
		}
	}

	if exp := riskFreeRate * timeToExpiry; math.Abs(exp) > MaxDiscountExponent {
		return OptionContract{}, fmt.Errorf("%w: discount exponent r*T=%g exceeds %g", ErrNumericOverflow, exp, MaxDiscountExponent)
	}

	return OptionContract{
		optionType:   typ,
		spot:         spot,
		strike:       strike,
		timeToExpiry: timeToExpiry,
		riskFreeRate: riskFreeRate,
		volatility:   volatility,
	}, nil
}

func (c OptionContract) Type() OptionType      { return c.optionType }
func (c OptionContract) Spot() float64         { return c.spot }
func (c OptionContract) Strike() float64       { return c.strike }
func (c OptionContract) TimeToExpiry() float64 { return c.timeToExpiry }
func (c OptionContract) RiskFreeRate() float64 { return c.riskFreeRate }
func (c OptionContract) Volatility() float64   { return c.volatility }

// IsZero reports whether c is the zero value, i.e. was never constructed.
func (c OptionContract) IsZero() bool { return c.optionType == 0 }

func (c OptionContract) String() string {
	return fmt.Sprintf("%s S=%g K=%g T=%g r=%g v=%g",
		c.optionType, c.spot, c.strike, c.timeToExpiry, c.riskFreeRate, c.volatility)
}

// d1 is the risk-adjusted distance
//
//	(ln(S/K) + T(r + σ²/2)) / (σ√T)
//
// Callers must reject the zero contract first; Valuation carries D1 and D2.
func (c OptionContract) d1() float64 {
	return (math.Log(c.spot/c.strike) + c.timeToExpiry*(c.riskFreeRate+c.volatility*c.volatility/2)) /
		(c.volatility * math.Sqrt(c.timeToExpiry))
}

// DiscountFactor is exp(-rT). Construction bounds the exponent, so the
// result is always finite and non-zero.
func (c OptionContract) DiscountFactor() float64 {
	return math.Exp(-c.riskFreeRate * c.timeToExpiry)
}

// Intrinsic returns the exercise value at the current spot: max(S-K, 0) for a
// call, max(K-S, 0) for a put.
func (c OptionContract) Intrinsic() float64 {
	if c.optionType == Put {
		return math.Max(c.strike-c.spot, 0)
	}
	return math.Max(c.spot-c.strike, 0)
}
