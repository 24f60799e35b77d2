/*
engine.go - Rule applicability and the price fold

PURPOSE:
  The two-step heart of pricing: decide which rules apply to a booking, then
  fold the survivors into a unit price and a full calculation.

APPLICABILITY:
  A rule applies when ALL of its present filters match the booking:
  - actor filter (absent = every actor)
  - day-of-week filter (absent = every day)
  - time window (absent = any time; present = the booking START time must
    fall inside it)
  Inactive rules never apply, regardless of filters.

SCOPING:
  Facility-level rules (empty ZoneID) apply to every zone of the facility
  unless a zone-specific rule of the same type and priority band overrides
  them by simply applying later in the fold.

FAILURE SEMANTICS:
  The fold itself never fails. Rule RETRIEVAL can fail (storage is an
  external collaborator); that failure belongs to the caller, who may still
  fold over an empty list and get a zero price.

SEE ALSO:
  - types.go: Rule and Context
  - calculation.go: The breakdown the fold feeds
*/
package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Engine computes prices. It holds no request state; one instance may be
// shared by concurrent callers.
type Engine struct{}

// Applies reports whether a rule applies to the booking in ctx.
func (e *Engine) Applies(rule Rule, ctx Context) bool {
	if !rule.IsActive {
		return false
	}
	if rule.ActorType != "" && rule.ActorType != ctx.ActorType {
		return false
	}
	if len(rule.DaysOfWeek) > 0 {
		found := false
		for _, d := range rule.DaysOfWeek {
			if d == ctx.Date.Weekday() {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if rule.Window != nil && !rule.Window.Contains(ctx.Window.Start) {
		return false
	}
	return true
}

// applicable filters and priority-sorts the rules for ctx. The sort is
// stable so rules sharing a priority keep their input order.
func (e *Engine) applicable(rules []Rule, ctx Context) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if e.Applies(r, ctx) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// UnitPrice folds the applicable rules for ctx, in ascending priority order,
// into an hourly unit price. With no applicable BASE rule the price starts
// and may stay at zero; a free booking is a valid outcome.
func (e *Engine) UnitPrice(rules []Rule, ctx Context) (decimal.Decimal, []Line) {
	price := decimal.Zero
	var lines []Line

	for _, rule := range e.applicable(rules, ctx) {
		before := price
		switch rule.Type {
		case RuleBase:
			price = rule.Price
		case RuleSurcharge:
			price = price.Mul(decimal.NewFromInt(1).Add(rule.Percent.Div(hundred)))
		case RuleDiscount:
			price = price.Mul(decimal.NewFromInt(1).Sub(rule.Percent.Div(hundred)))
		case RuleOverride:
			price = rule.Price
		}
		lines = append(lines, Line{
			RuleID:   rule.ID,
			RuleType: rule.Type,
			Percent:  rule.Percent,
			Before:   before,
			After:    price,
		})
	}
	return price, lines
}

// Calculate prices one booking: unit price folded from the rules, multiplied
// by duration hours and the occurrence count (1 for a single booking, N for
// a recurring series priced as a block). requiresApproval is supplied by the
// domain layer's actor/mode classification.
func (e *Engine) Calculate(ctx Context, rules []Rule, hours float64, occurrences int, requiresApproval bool) Calculation {
	if occurrences < 1 {
		occurrences = 1
	}
	if hours <= 0 {
		hours = ctx.Window.Hours()
	}

	unit, lines := e.UnitPrice(rules, ctx)
	hoursDec := decimal.NewFromFloat(hours)
	subtotal := unit.Mul(hoursDec)
	total := subtotal.Mul(decimal.NewFromInt(int64(occurrences)))

	calc := Calculation{
		Context:          ctx,
		UnitPrice:        unit,
		Hours:            hours,
		Occurrences:      occurrences,
		Subtotal:         subtotal,
		FinalPrice:       total,
		TotalPrice:       total,
		Currency:         Currency,
		RequiresApproval: requiresApproval,
		Breakdown:        lines,
	}
	for _, line := range lines {
		switch line.RuleType {
		case RuleDiscount:
			calc.Discounts = append(calc.Discounts, line)
		case RuleSurcharge:
			calc.Surcharges = append(calc.Surcharges, line)
		}
	}
	return calc
}
