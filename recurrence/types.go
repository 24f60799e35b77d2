/*
Package recurrence expands recurring-booking patterns into concrete dated
occurrences.

PURPOSE:
  A citizen booking a gym hall every Monday and Wednesday submits ONE pattern;
  the booking flow needs the concrete list of dated time slots that pattern
  implies, bounded so a missing end date can never expand forever. This
  package owns that expansion plus the small date/clock value types shared
  with the pricing rules.

KEY CONCEPTS IN THIS FILE (types.go):
  - Pattern: How a booking repeats (weekday set, cadence, slots, bounds)
  - PatternType: single, weekly, biweekly, monthly, custom
  - MonthlyOrdinal: "first Monday", "last Friday" selectors
  - Occurrence: One concrete (zone, date, slot, duration) result

DESIGN PRINCIPLES:
  1. Pure computation: No I/O, no clocks read inside the engine
  2. Immutability: Occurrences are values; a change is a new value
  3. Degrade, don't throw: An incomplete pattern yields zero occurrences,
     a malformed slot string yields a default duration plus a diagnostic

WEEKDAY ENCODING:
  Weekdays are 0-6 with 0 = Sunday, matching time.Weekday and the weekday
  encoding used by the rule storage.

SEE ALSO:
  - engine.go: The expansion algorithm
  - clock.go: ClockTime/ClockRange value types
  - date.go: Date value type and month-ordinal helpers
*/
package recurrence

import (
	"time"
)

// =============================================================================
// PATTERN - How a booking repeats
// =============================================================================

type PatternType string

const (
	PatternSingle   PatternType = "single"
	PatternWeekly   PatternType = "weekly"
	PatternBiweekly PatternType = "biweekly"
	PatternMonthly  PatternType = "monthly"
	PatternCustom   PatternType = "custom"
)

// MonthlyOrdinal selects which occurrence of a weekday within a month a
// monthly pattern targets.
type MonthlyOrdinal string

const (
	OrdinalFirst  MonthlyOrdinal = "first"
	OrdinalSecond MonthlyOrdinal = "second"
	OrdinalThird  MonthlyOrdinal = "third"
	OrdinalFourth MonthlyOrdinal = "fourth"
	OrdinalLast   MonthlyOrdinal = "last"
)

// week returns the 1-based week number the ordinal targets, or 0 for "last".
func (o MonthlyOrdinal) week() int {
	switch o {
	case OrdinalFirst:
		return 1
	case OrdinalSecond:
		return 2
	case OrdinalThird:
		return 3
	case OrdinalFourth:
		return 4
	default:
		return 0
	}
}

// Pattern describes how a booking repeats.
//
// Weekdays must be non-empty for weekly/biweekly/custom patterns, and
// MonthlyWeekday must be set for monthly patterns; an incomplete pattern is
// not an error but matches no dates (see engine.go failure semantics).
//
// NOTE: weekly and biweekly share the same expansion behavior. The walk
// advances one day at a time and the predicate is pure weekday membership,
// so "every other week" is only as biweekly as the caller's weekday set and
// bounds make it. Kept as-is pending a product decision on true
// alternate-week cadence.
type Pattern struct {
	Type PatternType

	// Days of week occurrences land on (0 = Sunday). Used by weekly,
	// biweekly and custom patterns.
	Weekdays []time.Weekday

	// Time slots as "HH:MM-HH:MM" strings, in display order. Each slot
	// produces one occurrence per matching date.
	TimeSlots []string

	// Step size in days for custom patterns (every N days). Zero means 1.
	Interval int

	// Optional bounds. A zero StartDate defers to the generation start; a
	// zero EndDate leaves the occurrence count as the only terminator.
	StartDate Date
	EndDate   Date

	// Monthly selectors, used only when Type is PatternMonthly.
	MonthlyOrdinal MonthlyOrdinal
	MonthlyWeekday time.Weekday
	// monthlyWeekdaySet distinguishes "Sunday" from "not set", since
	// time.Weekday zero-values to Sunday.
	monthlyWeekdaySet bool
}

// WithMonthly returns a copy of the pattern with the monthly selectors set.
func (p Pattern) WithMonthly(ordinal MonthlyOrdinal, weekday time.Weekday) Pattern {
	p.Type = PatternMonthly
	p.MonthlyOrdinal = ordinal
	p.MonthlyWeekday = weekday
	p.monthlyWeekdaySet = true
	return p
}

// HasMonthlyWeekday reports whether the monthly weekday selector was set.
func (p Pattern) HasMonthlyWeekday() bool { return p.monthlyWeekdaySet }

// hasWeekday reports whether wd is in the pattern's weekday set.
func (p Pattern) hasWeekday(wd time.Weekday) bool {
	for _, w := range p.Weekdays {
		if w == wd {
			return true
		}
	}
	return false
}

// step returns how many days the expansion walk advances after examining a
// date. Cadence for non-custom patterns is enforced by the match predicate,
// not the step.
func (p Pattern) step() int {
	if p.Type == PatternCustom && p.Interval > 1 {
		return p.Interval
	}
	return 1
}

// =============================================================================
// OCCURRENCE - One concrete expansion result
// =============================================================================

// Occurrence is one dated time slot for one zone. Occurrences are created by
// the engine and never mutated afterwards; conflict filtering and pricing
// treat them as values.
type Occurrence struct {
	ZoneID string
	Date   Date

	// Slot is the original "HH:MM-HH:MM" string for display and persistence.
	Slot string

	// Hours is the slot length, or DefaultSlotHours when Slot was unparsable.
	Hours float64
}

// DefaultSlotHours is the duration assigned to an occurrence whose slot
// string could not be parsed.
const DefaultSlotHours = 2.0
