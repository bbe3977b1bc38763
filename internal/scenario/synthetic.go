package scenario

import (
	"fmt"
	"math"
	"math/rand"
)

// Ranges bounds the inputs a Generator draws. Moneyness is strike/spot.
type Ranges struct {
	SpotMin, SpotMax           float64
	MoneynessMin, MoneynessMax float64
	YearsMin, YearsMax         float64
	RateMin, RateMax           float64
	VolMin, VolMax             float64
}

// DefaultRanges covers liquid equity-option territory.
func DefaultRanges() Ranges {
	return Ranges{
		SpotMin: 20, SpotMax: 500,
		MoneynessMin: 0.8, MoneynessMax: 1.2,
		YearsMin: 7.0 / DaysPerYear, YearsMax: 2,
		RateMin: 0, RateMax: 0.08,
		VolMin: 0.05, VolMax: 0.8,
	}
}

// Generator produces random contract specs. It owns its random source, so
// two generators built with the same seed and ranges yield the same
// sequence. A Generator is not safe for concurrent use.
type Generator struct {
	rng    *rand.Rand
	ranges Ranges
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(seed int64, ranges Ranges) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed)), ranges: ranges}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// Next draws one contract spec with a fixed ABS strike.
func (g *Generator) Next() ContractSpec {
	r := g.ranges
	spot := math.Round(g.uniform(r.SpotMin, r.SpotMax)*100) / 100
	strike := math.Round(spot*g.uniform(r.MoneynessMin, r.MoneynessMax)*100) / 100
	rate := math.Round(g.uniform(r.RateMin, r.RateMax)*1e4) / 1e4

	typ := "call"
	if g.rng.Intn(2) == 1 {
		typ = "put"
	}

	return ContractSpec{
		Type:       typ,
		Spot:       spot,
		Strike:     StrikeRule(fmt.Sprintf("ABS:%.2f", strike)),
		Years:      math.Round(g.uniform(r.YearsMin, r.YearsMax)*1e4) / 1e4,
		Rate:       &rate,
		Volatility: math.Round(g.uniform(r.VolMin, r.VolMax)*1e4) / 1e4,
	}
}

// Scenario draws n contracts into a named scenario.
func (g *Generator) Scenario(name string, n int) Scenario {
	sc := Scenario{Name: name, Contracts: make([]ContractSpec, 0, n)}
	for i := 0; i < n; i++ {
		spec := g.Next()
		spec.Name = fmt.Sprintf("%s-%d", name, i+1)
		sc.Contracts = append(sc.Contracts, spec)
	}
	return sc
}
