package pricing

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// MonteCarloResult is a simulated price with its 95% confidence interval.
type MonteCarloResult struct {
	Price  float64 `json:"price"`
	StdErr float64 `json:"std_err"`
	Low    float64 `json:"low"`
	High   float64 `json:"high"`
	Paths  int     `json:"paths"`
}

// Contains reports whether x lies inside the confidence interval.
func (r MonteCarloResult) Contains(x float64) bool {
	return x >= r.Low && x <= r.High
}

// MonteCarlo prices c by simulating terminal prices under geometric Brownian
// motion with antithetic pairs. It is a cross-check for the closed form, not
// an alternative model.
//
// The generator is passed in so that valuations stay reproducible and safe to
// run in parallel: the same seed always yields the same result, and rng must
// not be shared between goroutines.
func MonteCarlo(c OptionContract, paths int, rng *rand.Rand) (MonteCarloResult, error) {
	if c.IsZero() {
		return MonteCarloResult{}, fmt.Errorf("%w: contract was not constructed", ErrInvalidParameter)
	}
	if paths < 4 {
		return MonteCarloResult{}, &ParameterError{Name: "paths", Value: float64(paths), Rule: "must be at least 4"}
	}
	if rng == nil {
		return MonteCarloResult{}, fmt.Errorf("%w: nil random generator", ErrInvalidParameter)
	}

	T := c.timeToExpiry
	drift := (c.riskFreeRate - c.volatility*c.volatility/2) * T
	diffusion := c.volatility * math.Sqrt(T)
	df := c.DiscountFactor()

	payoff := func(z float64) float64 {
		st := c.spot * math.Exp(drift+diffusion*z)
		if c.optionType == Put {
			return math.Max(c.strike-st, 0)
		}
		return math.Max(st-c.strike, 0)
	}

	pairs := paths / 2
	samples := make(stats.Float64Data, 0, pairs)
	for i := 0; i < pairs; i++ {
		z := rng.NormFloat64()
		// average each antithetic pair into one independent sample
		samples = append(samples, df*(payoff(z)+payoff(-z))/2)
	}

	mean, err := stats.Mean(samples)
	if err != nil {
		return MonteCarloResult{}, fmt.Errorf("monte carlo mean: %w", err)
	}
	sd, err := stats.StandardDeviationSample(samples)
	if err != nil {
		return MonteCarloResult{}, fmt.Errorf("monte carlo deviation: %w", err)
	}

	stderr := sd / math.Sqrt(float64(len(samples)))
	z := distuv.UnitNormal.Quantile(0.975)

	return MonteCarloResult{
		Price:  mean,
		StdErr: stderr,
		Low:    mean - z*stderr,
		High:   mean + z*stderr,
		Paths:  pairs * 2,
	}, nil
}
