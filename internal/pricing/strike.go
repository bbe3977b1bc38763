package pricing

import (
	"fmt"
	"math"
)

// StrikeFromDelta returns the strike whose Black-Scholes delta equals
// targetDelta for the given spot, expiry, rate and volatility.
//
// Calls take targetDelta in (0, 1) and puts in (-1, 0). The delta formula is
// inverted in closed form:
//
//	d1 = N⁻¹(Δ)       (call)
//	d1 = N⁻¹(Δ + 1)   (put)
//	K  = S·exp(−d1·σ√T + (r + σ²/2)·T)
func StrikeFromDelta(typ OptionType, spot, targetDelta, timeToExpiry, riskFreeRate, volatility float64) (float64, error) {
	// validate everything except the strike with a placeholder
	if _, err := NewOptionContract(typ, spot, spot, timeToExpiry, riskFreeRate, volatility); err != nil {
		return 0, err
	}

	p := targetDelta
	switch typ {
	case Call:
		if !(targetDelta > 0 && targetDelta < 1) {
			return 0, &ParameterError{Name: "delta", Value: targetDelta, Rule: "must be in (0,1) for a call"}
		}
	case Put:
		if !(targetDelta > -1 && targetDelta < 0) {
			return 0, &ParameterError{Name: "delta", Value: targetDelta, Rule: "must be in (-1,0) for a put"}
		}
		p = targetDelta + 1
	}

	d1, err := NormInv(p)
	if err != nil {
		return 0, err
	}

	volSqrtT := volatility * math.Sqrt(timeToExpiry)
	strike := spot * math.Exp(-d1*volSqrtT+(riskFreeRate+volatility*volatility/2)*timeToExpiry)
	if math.IsInf(strike, 0) || strike <= 0 {
		return 0, fmt.Errorf("%w: strike for delta %g", ErrNumericOverflow, targetDelta)
	}
	return strike, nil
}
