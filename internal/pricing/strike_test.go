package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrikeFromDeltaRoundTrip(t *testing.T) {
	tests := []struct {
		typ   OptionType
		delta float64
	}{
		{Call, 0.5},
		{Call, 0.25},
		{Call, 0.9},
		{Put, -0.5},
		{Put, -0.25},
		{Put, -0.05},
	}

	for _, test := range tests {
		strike, err := StrikeFromDelta(test.typ, 100, test.delta, 0.5, 0.03, 0.25)
		require.NoError(t, err)

		v, err := Valuate(mustContract(t, test.typ, 100, strike, 0.5, 0.03, 0.25))
		require.NoError(t, err)
		assert.InDelta(t, test.delta, v.Delta, 1e-9, "%s delta=%g strike=%g", test.typ, test.delta, strike)
	}
}

func TestStrikeFromDeltaOrdering(t *testing.T) {
	// lower call delta means further out of the money, i.e. a higher strike
	k25, err := StrikeFromDelta(Call, 100, 0.25, 1, 0.05, 0.2)
	require.NoError(t, err)
	k50, err := StrikeFromDelta(Call, 100, 0.50, 1, 0.05, 0.2)
	require.NoError(t, err)
	assert.Greater(t, k25, k50)
}

func TestStrikeFromDeltaRejects(t *testing.T) {
	tests := []struct {
		name  string
		typ   OptionType
		delta float64
		vol   float64
	}{
		{"call delta above one", Call, 1.2, 0.2},
		{"call delta negative", Call, -0.3, 0.2},
		{"put delta positive", Put, 0.3, 0.2},
		{"put delta below minus one", Put, -1, 0.2},
		{"zero volatility", Call, 0.5, 0},
	}

	for _, test := range tests {
		_, err := StrikeFromDelta(test.typ, 100, test.delta, 1, 0.05, test.vol)
		assert.True(t, errors.Is(err, ErrInvalidParameter), "%s: %v", test.name, err)
	}
}
