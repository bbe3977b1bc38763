package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorDeterministic(t *testing.T) {
	a := NewGenerator(99, DefaultRanges()).Scenario("gen", 25)
	b := NewGenerator(99, DefaultRanges()).Scenario("gen", 25)
	c := NewGenerator(100, DefaultRanges()).Scenario("gen", 25)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGeneratorRespectsRanges(t *testing.T) {
	r := DefaultRanges()
	sc := NewGenerator(1, r).Scenario("gen", 200)
	require.Len(t, sc.Contracts, 200)
	assert.Equal(t, "gen-1", sc.Contracts[0].Name)

	for _, spec := range sc.Contracts {
		assert.GreaterOrEqual(t, spec.Spot, r.SpotMin)
		assert.LessOrEqual(t, spec.Spot, r.SpotMax)
		assert.GreaterOrEqual(t, spec.Volatility, r.VolMin)
		assert.LessOrEqual(t, spec.Volatility, r.VolMax)
		assert.Greater(t, spec.Years, 0.0)
		assert.Contains(t, []string{"call", "put"}, spec.Type)
	}

	// every generated contract must be priceable
	legs, err := sc.Resolve(0.05)
	require.NoError(t, err)
	assert.Len(t, legs, 200)
}
