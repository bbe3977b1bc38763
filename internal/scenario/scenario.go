// Package scenario turns user-supplied contract definitions into validated
// pricing inputs.
//
// Responsibilities:
//   - Describe contracts as specs with strike rules (ATM, ATM:+10, DELTA:0.3,
//     {LEG1.STRIKE}+5, ...) rather than fixed numbers
//   - Load specs from JSON, YAML or CSV files
//   - Generate random, reproducible scenarios from an explicitly seeded generator
//
// Design notes:
//   - Specs are priced in order so that later legs can reference earlier ones
//   - Errors are typed where useful and wrapped with the leg position
package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// DaysPerYear converts ContractSpec.Days to years.
const DaysPerYear = 365.0

// Typed errors allow callers and tests to detect failure categories
// without string matching.
var (
	ErrInvalidStrikeExpression = errors.New("invalid strike expression")
	ErrLegIndexOutOfRange      = errors.New("leg index out of range")
	ErrMissingExpiry           = errors.New("missing time to expiry")
)

// StrikeRule is a strike expression. In JSON it may be written as a string
// ("ATM:+5") or a bare number (105).
type StrikeRule string

// UnmarshalJSON accepts both strings and numbers.
func (r *StrikeRule) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = StrikeRule(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidStrikeExpression, string(b))
	}
	*r = StrikeRule(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// ContractSpec defines a single option as provided by the user or a scenario file.
//
// This struct represents *intent*; Resolve turns it into a pricing.OptionContract.
type ContractSpec struct {
	Name       string     `json:"name,omitempty" yaml:"name,omitempty"`
	Type       string     `json:"type" yaml:"type"`                       // call or put
	Spot       float64    `json:"spot" yaml:"spot"`                       // underlying price
	Strike     StrikeRule `json:"strike" yaml:"strike"`                   // ATM, ATM:+10, ABS:105, DELTA:0.3, {SPOT}*1.05 ...
	Years      float64    `json:"years,omitempty" yaml:"years,omitempty"` // time to expiry in years
	Days       float64    `json:"days,omitempty" yaml:"days,omitempty"`   // calendar days, used when Years is 0
	Rate       *float64   `json:"rate,omitempty" yaml:"rate,omitempty"`   // overrides the scenario rate
	Volatility float64    `json:"volatility" yaml:"volatility"`
}

// TimeToExpiry returns Years, or Days/365 when Years is unset.
func (s ContractSpec) TimeToExpiry() (float64, error) {
	switch {
	case s.Years != 0:
		return s.Years, nil
	case s.Days != 0:
		return s.Days / DaysPerYear, nil
	}
	return 0, ErrMissingExpiry
}

// Scenario groups contracts that share a rate and strike grid.
type Scenario struct {
	Name           string         `json:"name,omitempty" yaml:"name,omitempty"`
	Rate           *float64       `json:"rate,omitempty" yaml:"rate,omitempty"`                       // default rate for the contracts
	StrikeInterval float64        `json:"strike_interval,omitempty" yaml:"strike_interval,omitempty"` // strike grid, 0 = no rounding
	Contracts      []ContractSpec `json:"contracts" yaml:"contracts"`
}

// Resolved is a spec with its concrete contract and valuation.
type Resolved struct {
	Spec      ContractSpec
	Contract  pricing.OptionContract
	Valuation pricing.Valuation
}

// Resolve converts every spec into a contract and values it.
//
// The rate for a contract is, in order of precedence, its own Rate, the
// scenario Rate, then defaultRate. Contracts are resolved in order so that
// strike expressions can refer to earlier legs; the first failure aborts and
// is returned wrapped with the leg position.
func (sc Scenario) Resolve(defaultRate float64) ([]Resolved, error) {
	logger.Infof("event=resolve_scenario name=%s contracts=%d", sc.Name, len(sc.Contracts))

	rate := defaultRate
	if sc.Rate != nil {
		rate = *sc.Rate
	}

	out := make([]Resolved, 0, len(sc.Contracts))
	for i, spec := range sc.Contracts {
		logger.Debugf("event=resolve_leg index=%d spec=%+v", i+1, spec)

		r, err := resolveOne(spec, rate, sc.StrikeInterval, out)
		if err != nil {
			logger.Errorf("event=resolve_leg_failed leg=%d err=%v", i+1, err)
			return nil, fmt.Errorf("leg %d (%s): %w", i+1, spec.label(), err)
		}

		logger.Infof(
			"event=leg_resolved leg=%d type=%s strike=%.2f price=%.6f",
			i+1,
			r.Contract.Type(),
			r.Contract.Strike(),
			r.Valuation.Price,
		)
		out = append(out, r)
	}
	return out, nil
}

func resolveOne(spec ContractSpec, rate, interval float64, legs []Resolved) (Resolved, error) {
	c, err := buildOne(spec, rate, interval, legs)
	if err != nil {
		return Resolved{}, err
	}

	v, err := pricing.Valuate(c)
	if err != nil {
		return Resolved{}, err
	}

	return Resolved{Spec: spec, Contract: c, Valuation: v}, nil
}

func buildOne(spec ContractSpec, rate, interval float64, legs []Resolved) (pricing.OptionContract, error) {
	typ, err := pricing.ParseOptionType(spec.Type)
	if err != nil {
		return pricing.OptionContract{}, err
	}

	T, err := spec.TimeToExpiry()
	if err != nil {
		return pricing.OptionContract{}, err
	}

	if spec.Rate != nil {
		rate = *spec.Rate
	}

	strike, err := ResolveStrike(string(spec.Strike), StrikeContext{
		Type:         typ,
		Spot:         spec.Spot,
		TimeToExpiry: T,
		Rate:         rate,
		Volatility:   spec.Volatility,
		Interval:     interval,
		Legs:         legs,
	})
	if err != nil {
		return pricing.OptionContract{}, err
	}

	return pricing.NewOptionContract(typ, spec.Spot, strike, T, rate, spec.Volatility)
}

func (s ContractSpec) label() string {
	if s.Name != "" {
		return s.Name
	}
	return strings.TrimSpace(s.Type + " " + string(s.Strike))
}

// Default returns the worked example: a one-year call struck at 105 and
// its put mirror on a 100 spot, 5% rate and 19.85% volatility.
func Default() Scenario {
	rate := 0.05
	return Scenario{
		Name: "worked-example",
		Rate: &rate,
		Contracts: []ContractSpec{
			{Name: "euro-call", Type: "call", Spot: 100, Strike: "105", Years: 1, Volatility: 0.1985},
			{Name: "euro-put", Type: "put", Spot: 100, Strike: "105", Years: 1, Volatility: 0.1985},
			{Name: "euro-put-95", Type: "put", Spot: 100, Strike: "95", Years: 1, Volatility: 0.1985},
		},
	}
}

// Build constructs a contract for every spec independently, without
// valuing it, for callers that value in parallel. Strike rules that refer
// to other legs fail here; use Resolve for those. errs[i] is non-nil when
// contracts[i] could not be built.
func (sc Scenario) Build(defaultRate float64) (names []string, contracts []pricing.OptionContract, errs []error) {
	rate := defaultRate
	if sc.Rate != nil {
		rate = *sc.Rate
	}

	names = make([]string, len(sc.Contracts))
	contracts = make([]pricing.OptionContract, len(sc.Contracts))
	errs = make([]error, len(sc.Contracts))

	for i, spec := range sc.Contracts {
		names[i] = spec.Name
		c, err := buildOne(spec, rate, sc.StrikeInterval, nil)
		if err != nil {
			errs[i] = fmt.Errorf("leg %d (%s): %w", i+1, spec.label(), err)
			continue
		}
		contracts[i] = c
	}
	return names, contracts, errs
}
