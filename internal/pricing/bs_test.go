package pricing

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-pricer/internal/testutil"
)

type inputs struct {
	spot, strike, T, r, vol float64
}

// grid of valid contracts spanning moneyness, expiry, rate sign and volatility
func validGrid() []inputs {
	var out []inputs
	for _, spot := range []float64{50, 100, 150} {
		for _, strike := range []float64{80, 100, 120} {
			for _, T := range []float64{1.0 / 365, 0.25, 1, 5} {
				for _, r := range []float64{-0.01, 0, 0.05} {
					for _, vol := range []float64{0.05, 0.2, 0.8} {
						out = append(out, inputs{spot, strike, T, r, vol})
					}
				}
			}
		}
	}
	return out
}

func valuatePair(t *testing.T, in inputs) (Valuation, Valuation) {
	t.Helper()
	call, err := Price(Call, in.spot, in.strike, in.T, in.r, in.vol)
	require.NoError(t, err, "%+v", in)
	put, err := Price(Put, in.spot, in.strike, in.T, in.r, in.vol)
	require.NoError(t, err, "%+v", in)
	return call, put
}

func TestWorkedExampleCall(t *testing.T) {
	v, err := Price(Call, 100, 105, 1, 0.05, 0.1985)
	require.NoError(t, err)

	assert.InDelta(t, 7.9619, v.Price, testutil.ScenarioTol)
	assert.InDelta(t, 0.5419, v.Delta, testutil.ScenarioTol)
	assert.InDelta(t, 0.105345, v.D1, 1e-6)
	assert.InDelta(t, 0.019987, v.Gamma, 1e-6)
	assert.InDelta(t, -6.249245, v.Theta, 1e-6)
	assert.InDelta(t, 39.673477, v.Vega, 1e-6)
	assert.InDelta(t, 46.233049, v.Rho, 1e-6)
}

func TestWorkedExamplePut(t *testing.T) {
	// put on the same contract as the call example
	v, err := Price(Put, 100, 105, 1, 0.05, 0.1985)
	require.NoError(t, err)
	assert.InDelta(t, 7.8410, v.Price, testutil.ScenarioTol)
	assert.Less(t, v.Delta, 0.0)
	assert.InDelta(t, -0.458051, v.Delta, 1e-6)

	// strike 95 mirror
	v, err = Price(Put, 100, 95, 1, 0.05, 0.1985)
	require.NoError(t, err)
	assert.InDelta(t, 3.663518, v.Price, 1e-6)
	assert.InDelta(t, -0.271082, v.Delta, 1e-6)
	assert.InDelta(t, -1.749634, v.Theta, 1e-6)
	assert.InDelta(t, -30.771724, v.Rho, 1e-6)
}

func TestReferenceCase(t *testing.T) {
	call, put := valuatePair(t, inputs{100, 100, 1, 0.05, 0.2})

	assert.InDelta(t, 10.450583572185565, call.Price, 1e-9)
	assert.InDelta(t, 5.573526022256971, put.Price, 1e-9)
}

func TestPutCallParity(t *testing.T) {
	for _, in := range validGrid() {
		call, put := valuatePair(t, in)
		rhs := in.spot - in.strike*math.Exp(-in.r*in.T)
		assert.InDelta(t, rhs, call.Price-put.Price, testutil.ParityTol, "%+v", in)
	}
}

func TestDeltaParity(t *testing.T) {
	for _, in := range validGrid() {
		call, put := valuatePair(t, in)
		assert.InDelta(t, 1.0, call.Delta-put.Delta, testutil.Tol, "%+v", in)
		assert.LessOrEqual(t, put.Delta, 0.0, "%+v", in)
		assert.GreaterOrEqual(t, call.Delta, 0.0, "%+v", in)
	}
}

func TestGammaVegaSymmetric(t *testing.T) {
	for _, in := range validGrid() {
		call, put := valuatePair(t, in)
		assert.Equal(t, call.Gamma, put.Gamma, "%+v", in)
		assert.Equal(t, call.Vega, put.Vega, "%+v", in)
	}
}

func TestRhoParity(t *testing.T) {
	for _, in := range validGrid() {
		call, put := valuatePair(t, in)
		expected := in.strike * in.T * math.Exp(-in.r*in.T)
		assert.InDelta(t, expected, call.Rho-put.Rho, 1e-9*math.Max(1, expected), "%+v", in)
	}
}

func TestCallThetaNegative(t *testing.T) {
	v, err := Price(Call, 100, 105, 1, 0.05, 0.1985)
	require.NoError(t, err)
	assert.Less(t, v.Theta, 0.0)

	for _, in := range validGrid() {
		if in.r < 0 {
			// with a negative rate the carry term can outweigh decay
			continue
		}
		call, _ := valuatePair(t, in)
		// deep out of the money both terms underflow to zero
		assert.LessOrEqual(t, call.Theta, 0.0, "%+v", in)
	}
}

func TestIntrinsicConvergence(t *testing.T) {
	tests := []struct {
		spot, strike float64
	}{
		{110, 100},
		{90, 100},
		{100, 100},
	}

	for _, test := range tests {
		call, err := Price(Call, test.spot, test.strike, 1e-10, 0.05, 0.2)
		require.NoError(t, err)
		put, err := Price(Put, test.spot, test.strike, 1e-10, 0.05, 0.2)
		require.NoError(t, err)

		assert.InDelta(t, math.Max(test.spot-test.strike, 0), call.Price, 1e-3, "%+v", test)
		assert.InDelta(t, math.Max(test.strike-test.spot, 0), put.Price, 1e-3, "%+v", test)
	}
}

func TestValuateFinite(t *testing.T) {
	for _, in := range validGrid() {
		call, put := valuatePair(t, in)
		for _, x := range []float64{call.Price, call.Delta, call.Gamma, call.Theta, call.Vega, call.Rho,
			put.Price, put.Delta, put.Gamma, put.Theta, put.Vega, put.Rho} {
			assert.False(t, math.IsNaN(x) || math.IsInf(x, 0), "%+v", in)
		}
	}
}

func TestZeroContractNeverYieldsNaN(t *testing.T) {
	var c OptionContract

	v, err := Valuate(c)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	assert.Equal(t, Valuation{}, v)

	results := ValuateBatch(context.Background(), []OptionContract{c}, 1)
	assert.True(t, errors.Is(results[0].Err, ErrInvalidParameter))
	assert.Equal(t, Valuation{}, results[0].Valuation)

	_, err = MonteCarlo(c, 100, rand.New(rand.NewSource(1)))
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	for name, x := range map[string]float64{
		"discount":  c.DiscountFactor(),
		"intrinsic": c.Intrinsic(),
	} {
		assert.False(t, math.IsNaN(x) || math.IsInf(x, 0), name)
	}
}

func TestValuateOverflowNamesFirstField(t *testing.T) {
	// vega and rho both overflow here; price, delta, gamma and theta stay finite
	c := mustContract(t, Call, 1e308, 1e308, 100, 0, 0.01)

	for i := 0; i < 20; i++ {
		_, err := Valuate(c)
		require.True(t, errors.Is(err, ErrNumericOverflow), "got %v", err)
		assert.Contains(t, err.Error(), "vega is +Inf")
	}
}

func TestPriceRejectsInvalidInputs(t *testing.T) {
	tests := []inputs{
		{100, 105, 1, 0.05, 0},
		{100, 105, 0, 0.05, 0.1985},
		{-5, 105, 1, 0.05, 0.1985},
	}
	for _, in := range tests {
		v, err := Price(Call, in.spot, in.strike, in.T, in.r, in.vol)
		assert.True(t, errors.Is(err, ErrInvalidParameter), "%+v", in)
		assert.False(t, math.IsNaN(v.Price), "%+v", in)
	}
}

func TestUnitConversions(t *testing.T) {
	v, err := Price(Call, 100, 105, 1, 0.05, 0.1985)
	require.NoError(t, err)

	assert.InDelta(t, v.Vega/100, v.VegaPerPoint(), 1e-12)
	assert.InDelta(t, v.Rho/100, v.RhoPerPoint(), 1e-12)
	assert.InDelta(t, v.Theta/365, v.ThetaPerDay(), 1e-12)

	// vega per unit: a 0.0001 bump in volatility moves the price by ~vega*0.0001
	bumped, err := Price(Call, 100, 105, 1, 0.05, 0.1986)
	require.NoError(t, err)
	assert.InDelta(t, v.Vega*0.0001, bumped.Price-v.Price, 1e-6)
}

func TestGreeksMatchFiniteDifferences(t *testing.T) {
	const h = 1e-4
	for _, typ := range []OptionType{Call, Put} {
		base := mustContract(t, typ, 100, 105, 1, 0.05, 0.1985)
		v, err := Valuate(base)
		require.NoError(t, err)

		price := func(spot, T, r, vol float64) float64 {
			pv, err := Valuate(mustContract(t, typ, spot, 105, T, r, vol))
			require.NoError(t, err)
			return pv.Price
		}

		dS := (price(100+h, 1, 0.05, 0.1985) - price(100-h, 1, 0.05, 0.1985)) / (2 * h)
		d2S := (price(100+h, 1, 0.05, 0.1985) - 2*v.Price + price(100-h, 1, 0.05, 0.1985)) / (h * h)
		dT := -(price(100, 1+h, 0.05, 0.1985) - price(100, 1-h, 0.05, 0.1985)) / (2 * h)
		dV := (price(100, 1, 0.05, 0.1985+h) - price(100, 1, 0.05, 0.1985-h)) / (2 * h)
		dR := (price(100, 1, 0.05+h, 0.1985) - price(100, 1, 0.05-h, 0.1985)) / (2 * h)

		assert.InDelta(t, dS, v.Delta, 1e-6, "delta %s", typ)
		assert.InDelta(t, d2S, v.Gamma, 1e-4, "gamma %s", typ)
		assert.InDelta(t, dT, v.Theta, 1e-5, "theta %s", typ)
		assert.InDelta(t, dV, v.Vega, 1e-5, "vega %s", typ)
		assert.InDelta(t, dR, v.Rho, 1e-5, "rho %s", typ)
	}
}
