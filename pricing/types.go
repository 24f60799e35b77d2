/*
Package pricing computes deterministic prices for facility bookings from
ordered rule lists.

PURPOSE:
  Municipal facilities price the same hall differently for a sports club, a
  private company, and an umbrella organization, on weekends versus weekdays,
  and in evening versus daytime slots. Administrators express all of that as
  PRICE RULES; this package selects the rules that apply to one booking and
  folds them, in priority order, into a price with an itemized breakdown.

KEY CONCEPTS IN THIS FILE (types.go):
  - Rule: One pricing directive (base price, surcharge, discount, override)
  - RuleType: How a rule transforms the running price
  - Context: The booking being priced (who, where, when, how)
  - ActorFilter / day / window filters: When a rule applies

DESIGN PRINCIPLES:
  1. Precision: shopspring/decimal for all money, never floats
  2. Typed configs: A BASE rule carries a price, a SURCHARGE a percent;
     constructors enforce the pairing so nonsense rules cannot be built
  3. Degrade, don't throw: Zero applicable rules price to zero - a free
     booking is a valid outcome, not an error

RULE FOLD (engine.go):
  Sort applicable rules ascending by priority, start from zero:
    BASE      price = rule price   (replace)
    SURCHARGE price = price * (1 + percent/100)
    DISCOUNT  price = price * (1 - percent/100)
    OVERRIDE  price = rule price   (replace)
  A later BASE replaces an earlier one: last writer wins within ascending
  priority, intentionally.

SEE ALSO:
  - engine.go: Applicability filter and fold
  - calculation.go: Breakdown output and manual overrides
*/
package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/civica/booking-engine/recurrence"
)

// Currency for all municipal facility pricing.
const Currency = "NOK"

// =============================================================================
// RULE TYPES
// =============================================================================

type RuleType string

const (
	RuleBase      RuleType = "BASE"
	RuleSurcharge RuleType = "SURCHARGE"
	RuleDiscount  RuleType = "DISCOUNT"
	RuleOverride  RuleType = "OVERRIDE"
)

// =============================================================================
// RULE - One pricing directive
// =============================================================================

// Rule is one pricing directive scoped to a facility and optionally a zone.
// Rules apply in ascending Priority order; a rule with no actor, day, or
// window filter is a wildcard on that axis.
type Rule struct {
	ID         string
	FacilityID string
	ZoneID     string // empty = facility-wide
	Type       RuleType
	Priority   int

	// ActorType restricts the rule to one actor classification; empty
	// matches every actor.
	ActorType string

	// DaysOfWeek restricts the rule to given weekdays (0 = Sunday); empty
	// matches every day.
	DaysOfWeek []time.Weekday

	// Window restricts the rule to bookings starting within the window;
	// nil matches any time of day.
	Window *recurrence.ClockRange

	// Price is the absolute hourly price for BASE and OVERRIDE rules.
	Price decimal.Decimal

	// Percent is the surcharge or discount percentage for SURCHARGE and
	// DISCOUNT rules.
	Percent decimal.Decimal

	IsActive bool
}

// NewBaseRule builds a BASE rule carrying an absolute price.
func NewBaseRule(id, facilityID, zoneID string, priority int, price decimal.Decimal) Rule {
	return Rule{
		ID: id, FacilityID: facilityID, ZoneID: zoneID,
		Type: RuleBase, Priority: priority, Price: price, IsActive: true,
	}
}

// NewSurchargeRule builds a SURCHARGE rule carrying a percentage.
func NewSurchargeRule(id, facilityID, zoneID string, priority int, percent decimal.Decimal) Rule {
	return Rule{
		ID: id, FacilityID: facilityID, ZoneID: zoneID,
		Type: RuleSurcharge, Priority: priority, Percent: percent, IsActive: true,
	}
}

// NewDiscountRule builds a DISCOUNT rule carrying a percentage.
func NewDiscountRule(id, facilityID, zoneID string, priority int, percent decimal.Decimal) Rule {
	return Rule{
		ID: id, FacilityID: facilityID, ZoneID: zoneID,
		Type: RuleDiscount, Priority: priority, Percent: percent, IsActive: true,
	}
}

// NewOverrideRule builds an OVERRIDE rule carrying an absolute price.
// Overrides typically sit at the highest priority so they apply last.
func NewOverrideRule(id, facilityID, zoneID string, priority int, price decimal.Decimal) Rule {
	return Rule{
		ID: id, FacilityID: facilityID, ZoneID: zoneID,
		Type: RuleOverride, Priority: priority, Price: price, IsActive: true,
	}
}

// ForActor returns a copy of the rule restricted to one actor type.
func (r Rule) ForActor(actorType string) Rule {
	r.ActorType = actorType
	return r
}

// OnDays returns a copy of the rule restricted to the given weekdays.
func (r Rule) OnDays(days ...time.Weekday) Rule {
	r.DaysOfWeek = days
	return r
}

// Between returns a copy of the rule restricted to bookings starting within
// the given same-day window.
func (r Rule) Between(window recurrence.ClockRange) Rule {
	r.Window = &window
	return r
}

// Validate checks the rule's type/payload pairing and filter sanity.
func (r Rule) Validate() error {
	switch r.Type {
	case RuleBase, RuleOverride:
		if r.Price.IsNegative() {
			return fmt.Errorf("rule %s: %s price must not be negative", r.ID, r.Type)
		}
	case RuleSurcharge, RuleDiscount:
		if r.Percent.IsZero() {
			return fmt.Errorf("rule %s: %s requires a percent", r.ID, r.Type)
		}
		if r.Percent.IsNegative() {
			return fmt.Errorf("rule %s: %s percent must not be negative", r.ID, r.Type)
		}
	default:
		return fmt.Errorf("rule %s: unknown type %q", r.ID, r.Type)
	}
	for _, d := range r.DaysOfWeek {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("rule %s: weekday %d out of range", r.ID, d)
		}
	}
	return nil
}

// =============================================================================
// CONTEXT - The booking being priced
// =============================================================================

// Context identifies one booking for rule matching: who books, where, when,
// and under which booking mode. EventType and AgeGroup are optional
// attributes some municipalities use in discount rules.
type Context struct {
	FacilityID string
	ZoneID     string
	Date       recurrence.Date
	Window     recurrence.ClockRange
	ActorType  string
	Mode       string
	EventType  string
	AgeGroup   string
}
