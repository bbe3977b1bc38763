package scenario

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// StrikeContext carries what a strike rule may refer to.
type StrikeContext struct {
	Type         pricing.OptionType
	Spot         float64
	TimeToExpiry float64
	Rate         float64
	Volatility   float64
	Interval     float64    // strike grid, 0 = no rounding
	Legs         []Resolved // previously resolved contracts
}

var placeholderRe = regexp.MustCompile(`\{(SPOT|LEG(\d+)\.(STRIKE|PRICE))\}`)

// ResolveStrike converts a strike expression into a concrete strike price.
//
// Supported formats:
//   - 105, ABS:105 (absolute, never rounded)
//   - ATM
//   - ATM:+10, ATM:-5%
//   - DELTA:0.3, DELTA:-0.25
//   - {SPOT}*1.05, {LEG1.STRIKE}+{LEG1.PRICE}
//
// Every rule except the absolute ones is rounded to ctx.Interval when it is
// positive.
func ResolveStrike(strikeExpr string, ctx StrikeContext) (float64, error) {
	strikeExpr = strings.TrimSpace(strings.ToUpper(strikeExpr))
	logger.Debugf("event=resolve_strike expr=%s", strikeExpr)

	if strikeExpr == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidStrikeExpression)
	}

	if strikeExpr == "ATM" {
		return roundToInterval(ctx.Spot, ctx.Interval), nil
	}

	if strings.HasPrefix(strikeExpr, "ATM:") {
		target, err := resolveATMOffset(strikeExpr[len("ATM:"):], ctx.Spot)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidStrikeExpression, strikeExpr, err)
		}
		return roundToInterval(target, ctx.Interval), nil
	}

	if strings.HasPrefix(strikeExpr, "ABS:") {
		abs, err := strconv.ParseFloat(strings.TrimPrefix(strikeExpr, "ABS:"), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidStrikeExpression, strikeExpr, err)
		}
		return abs, nil
	}

	if strings.HasPrefix(strikeExpr, "DELTA:") {
		deltaStr := strings.TrimPrefix(strikeExpr, "DELTA:")
		targetDelta, err := strconv.ParseFloat(deltaStr, 64)
		if err != nil {
			logger.Errorf("parse float failed for DELTA expression:%s, %v", deltaStr, err)
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidStrikeExpression, strikeExpr, err)
		}
		target, err := pricing.StrikeFromDelta(ctx.Type, ctx.Spot, targetDelta, ctx.TimeToExpiry, ctx.Rate, ctx.Volatility)
		if err != nil {
			return 0, err
		}
		logger.Tracef("event=delta_strike delta=%.4f strike=%.4f", targetDelta, target)
		return roundToInterval(target, ctx.Interval), nil
	}

	if strings.Contains(strikeExpr, "{") {
		target, err := evaluateExpression(strikeExpr, ctx)
		if err != nil {
			return 0, err
		}
		return roundToInterval(target, ctx.Interval), nil
	}

	if abs, err := strconv.ParseFloat(strikeExpr, 64); err == nil {
		return abs, nil
	}

	return 0, fmt.Errorf("%w: %s", ErrInvalidStrikeExpression, strikeExpr)
}

// resolveATMOffset applies an absolute or percentage offset to a price and
// rounds the result to cents.
func resolveATMOffset(offset string, asOfPrice float64) (float64, error) {

	if strings.HasSuffix(offset, "%") {
		pct, err := strconv.ParseFloat(strings.TrimSuffix(offset, "%"), 64)
		if err != nil {
			return 0, err
		}
		return math.Round((asOfPrice+asOfPrice*pct/100)*100) / 100, nil
	}

	abs, err := strconv.ParseFloat(offset, 64)
	if err != nil {
		return 0, err
	}

	return math.Round((asOfPrice+abs)*100) / 100, nil
}

// evaluateExpression substitutes {SPOT} and {LEGn.STRIKE|PRICE} with their
// values and evaluates the arithmetic with govaluate.
func evaluateExpression(expr string, ctx StrikeContext) (float64, error) {
	matches := placeholderRe.FindAllStringSubmatch(expr, -1)
	if matches == nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidStrikeExpression, expr)
	}

	evalStr := expr

	for _, match := range matches {
		var value float64
		if match[1] == "SPOT" {
			value = ctx.Spot
		} else {
			idx, _ := strconv.Atoi(match[2])
			idx-- // LEG1 → index 0

			if idx < 0 || idx >= len(ctx.Legs) {
				return 0, fmt.Errorf("%w: %s (have %d)", ErrLegIndexOutOfRange, match[0], len(ctx.Legs))
			}

			if match[3] == "STRIKE" {
				value = ctx.Legs[idx].Contract.Strike()
			} else {
				value = ctx.Legs[idx].Valuation.Price
			}
		}

		evalStr = strings.Replace(evalStr, match[0], "("+strconv.FormatFloat(value, 'f', -1, 64)+")", 1)
	}

	evalExpr, err := govaluate.NewEvaluableExpression(evalStr)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidStrikeExpression, expr, err)
	}

	result, err := evalExpr.Evaluate(nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidStrikeExpression, expr, err)
	}

	f, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: %s is not numeric", ErrInvalidStrikeExpression, expr)
	}

	return f, nil
}

// roundToInterval rounds v to the nearest multiple of interval; a
// non-positive interval leaves v unchanged.
func roundToInterval(v, interval float64) float64 {
	if interval <= 0 {
		return v
	}
	return math.Round(v/interval) * interval
}
