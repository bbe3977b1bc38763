package pricing

import (
	"fmt"
	"math"
)

// Valuation is the closed-form Black-Scholes output for one contract.
//
// Units:
//   - Theta is per year. Divide by 365 for decay per calendar day.
//   - Vega is per 1.00 change in volatility (0.01 → 0.02 is a change of
//     0.01), NOT per percentage point. Use VegaPerPoint for the latter.
//   - Rho is per 1.00 change in the risk-free rate. Use RhoPerPoint for
//     the per-percentage-point figure.
type Valuation struct {
	Price float64 `json:"price"`
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
	D1    float64 `json:"d1"`
	D2    float64 `json:"d2"`
}

// VegaPerPoint is the price change for a one percentage point move in
// volatility (e.g. 20% → 21%).
func (v Valuation) VegaPerPoint() float64 { return v.Vega / 100 }

// RhoPerPoint is the price change for a one percentage point move in the rate.
func (v Valuation) RhoPerPoint() float64 { return v.Rho / 100 }

// ThetaPerDay is theta expressed per calendar day.
func (v Valuation) ThetaPerDay() float64 { return v.Theta / 365 }

type namedValue struct {
	name  string
	value float64
}

// Valuate computes price and all Greeks for c in one pass.
//
//	d2    = d1 − σ√T
//	price call: S·N(d1) − K·e^(−rT)·N(d2)
//	      put:  K·e^(−rT)·N(−d2) − S·N(−d1)
//	delta call: N(d1)          put: N(d1) − 1
//	gamma φ(d1) / (S·σ·√T)     (both)
//	vega  S·√T·φ(d1)           (both, per 1.00 vol)
//	theta call: −S·φ(d1)·σ/(2√T) − r·K·e^(−rT)·N(d2)
//	      put:  −S·φ(d1)·σ/(2√T) + r·K·e^(−rT)·N(−d2)
//	rho   call: K·T·e^(−rT)·N(d2)   put: −K·T·e^(−rT)·N(−d2)
//
// It returns ErrInvalidParameter for a contract that did not come from
// NewOptionContract and ErrNumericOverflow if any output is not finite.
func Valuate(c OptionContract) (Valuation, error) {
	if c.IsZero() {
		return Valuation{}, fmt.Errorf("%w: contract was not constructed", ErrInvalidParameter)
	}

	sqrtT := math.Sqrt(c.timeToExpiry)
	d1 := c.d1()
	d2 := d1 - c.volatility*sqrtT
	df := c.DiscountFactor()
	pdf := NormPDF(d1)

	v := Valuation{
		Gamma: pdf / (c.spot * c.volatility * sqrtT),
		Vega:  c.spot * sqrtT * pdf,
		D1:    d1,
		D2:    d2,
	}

	decay := -(c.spot * pdf * c.volatility) / (2 * sqrtT)
	switch c.optionType {
	case Call:
		v.Price = c.spot*NormCDF(d1) - c.strike*df*NormCDF(d2)
		v.Delta = NormCDF(d1)
		v.Theta = decay - c.riskFreeRate*c.strike*df*NormCDF(d2)
		v.Rho = c.strike * c.timeToExpiry * df * NormCDF(d2)
	case Put:
		v.Price = c.strike*df*NormCDF(-d2) - c.spot*NormCDF(-d1)
		v.Delta = NormCDF(d1) - 1
		v.Theta = decay + c.riskFreeRate*c.strike*df*NormCDF(-d2)
		v.Rho = -c.strike * c.timeToExpiry * df * NormCDF(-d2)
	}

	for _, out := range [...]namedValue{
		{"price", v.Price},
		{"delta", v.Delta},
		{"gamma", v.Gamma},
		{"theta", v.Theta},
		{"vega", v.Vega},
		{"rho", v.Rho},
	} {
		if math.IsNaN(out.value) || math.IsInf(out.value, 0) {
			return Valuation{}, fmt.Errorf("%w: %s is %g for %s", ErrNumericOverflow, out.name, out.value, c)
		}
	}

	return v, nil
}

// Price constructs a contract and values it in one call.
func Price(typ OptionType, spot, strike, timeToExpiry, riskFreeRate, volatility float64) (Valuation, error) {
	c, err := NewOptionContract(typ, spot, strike, timeToExpiry, riskFreeRate, volatility)
	if err != nil {
		return Valuation{}, err
	}
	return Valuate(c)
}
