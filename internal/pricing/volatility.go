package pricing

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// TradingDaysPerYear annualizes daily close series.
const TradingDaysPerYear = 252.0

// HistoricalVolatility estimates annualized volatility from a close series
// ordered oldest to newest: the sample standard deviation of log returns
// scaled by sqrt(periodsPerYear). periodsPerYear <= 0 means daily closes.
//
// At least 3 closes are required: a sample deviation needs two returns.
func HistoricalVolatility(closes []float64, periodsPerYear float64) (float64, error) {
	if len(closes) < 3 {
		return 0, fmt.Errorf("%w: need at least 3 closes, got %d", ErrInvalidParameter, len(closes))
	}
	if periodsPerYear <= 0 {
		periodsPerYear = TradingDaysPerYear
	}

	rets := make(stats.Float64Data, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			return 0, &ParameterError{Name: fmt.Sprintf("closes[%d]", i), Value: math.Min(closes[i-1], closes[i]), Rule: "must be positive"}
		}
		rets = append(rets, math.Log(closes[i]/closes[i-1]))
	}

	sd, err := stats.StandardDeviationSample(rets)
	if err != nil {
		return 0, fmt.Errorf("historical volatility: %w", err)
	}
	return sd * math.Sqrt(periodsPerYear), nil
}
