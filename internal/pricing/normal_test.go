package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/contactkeval/option-pricer/internal/testutil"
)

func zGrid() []float64 {
	var zs []float64
	for z := -8.0; z <= 8.0; z += 0.25 {
		zs = append(zs, z)
	}
	return append(zs, 1e-12, -1e-12, 37.5, -37.5)
}

func TestNormCDFSymmetry(t *testing.T) {
	for _, z := range zGrid() {
		assert.InDelta(t, 1.0, NormCDF(z)+NormCDF(-z), testutil.Tol, "z=%g", z)
	}
}

func TestNormCDFAtZero(t *testing.T) {
	assert.InDelta(t, 0.5, NormCDF(0), testutil.Tol)
}

func TestNormCDFRange(t *testing.T) {
	for _, z := range zGrid() {
		n := NormCDF(z)
		assert.GreaterOrEqual(t, n, 0.0, "z=%g", z)
		assert.LessOrEqual(t, n, 1.0, "z=%g", z)
	}
	// extreme tails collapse to the bounds without NaN
	assert.Equal(t, 0.0, NormCDF(math.Inf(-1)))
	assert.Equal(t, 1.0, NormCDF(math.Inf(1)))
}

func TestNormPDFEven(t *testing.T) {
	for _, z := range zGrid() {
		assert.InDelta(t, NormPDF(z), NormPDF(-z), testutil.Tol, "z=%g", z)
	}
	assert.InDelta(t, 1/math.Sqrt(2*math.Pi), NormPDF(0), testutil.Tol)
	assert.Equal(t, 0.0, NormPDF(1e3))
}

func TestNormAgainstGonum(t *testing.T) {
	for _, z := range zGrid() {
		assert.InDelta(t, distuv.UnitNormal.CDF(z), NormCDF(z), 1e-12, "cdf z=%g", z)
		assert.InDelta(t, distuv.UnitNormal.Prob(z), NormPDF(z), 1e-12, "pdf z=%g", z)
	}
}

func TestNormCDFKnownValues(t *testing.T) {
	tests := []struct {
		z        float64
		expected float64
	}{
		{-3, 0.0013498980316301},
		{-1.96, 0.0249978951482204},
		{-1, 0.1586552539314571},
		{1, 0.8413447460685429},
		{1.96, 0.9750021048517795},
		{3, 0.9986501019683699},
	}

	for _, test := range tests {
		assert.InDelta(t, test.expected, NormCDF(test.z), 1e-10, "z=%g", test.z)
	}
}

func TestNormInvRoundTrip(t *testing.T) {
	for _, p := range []float64{1e-10, 0.001, 0.02, 0.02425, 0.1, 0.3, 0.5, 0.7, 0.975, 0.99, 0.999999} {
		x, err := NormInv(p)
		require.NoError(t, err, "p=%g", p)
		assert.InDelta(t, p, NormCDF(x), 1e-12*math.Max(1, p/1e-3), "p=%g", p)
	}

	x, err := NormInv(0.975)
	require.NoError(t, err)
	assert.InDelta(t, 1.959963984540054, x, 1e-9)
}

func TestNormInvRejectsOutOfRange(t *testing.T) {
	for _, p := range []float64{0, 1, -0.5, 1.5, math.NaN()} {
		_, err := NormInv(p)
		assert.True(t, errors.Is(err, ErrInvalidParameter), "p=%g err=%v", p, err)
	}
}
