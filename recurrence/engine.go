/*
engine.go - Pattern expansion

PURPOSE:
  Turns a Pattern into the bounded, chronologically ordered list of
  Occurrences the booking flow shows on the calendar and eventually persists.

ALGORITHM:
  Walk forward from the effective start one step at a time (one day for all
  pattern types except custom, which steps by Interval). For every date the
  pattern matches, emit one occurrence per time slot, in slot order. Stop when
  either maxOccurrences matching dates have been emitted or the pattern's end
  date is passed. With no end date the count bound is the only terminator, so
  callers must pass a sane maximum.

  Cadence is a property of the MATCH PREDICATE, not the step size: weekly and
  monthly patterns still examine every day and rely on the predicate to pick
  the right ones. Only custom patterns change the step.

FAILURE SEMANTICS:
  - Monthly pattern without a weekday selector: matches nothing, returns an
    empty result. Validate patterns upstream; an empty result from a
    non-single pattern is the signal to re-check the input.
  - Unparsable slot string: the occurrence is still emitted with
    DefaultSlotHours, and a diagnostic is recorded on the result so degraded
    output is distinguishable from valid output.

SEE ALSO:
  - types.go: Pattern and Occurrence definitions
  - calendar.go: Optional holiday exclusion
*/
package recurrence

import (
	"fmt"
	"strings"
	"time"
)

// DefaultMaxOccurrences bounds expansion when the caller does not say
// otherwise: one year of weekly bookings.
const DefaultMaxOccurrences = 52

// maxScanDays caps how far the walk looks for matching dates, so a pattern
// that matches nothing (or almost nothing) terminates even without an end
// date. Ten years covers every pattern the booking UI can express.
const maxScanDays = 3660

// Engine expands patterns. It holds no request state; one instance may be
// shared by concurrent callers.
type Engine struct {
	// Holidays, when set, excludes matching dates that fall on a holiday.
	// Nil means no exclusion.
	Holidays HolidayCalendar

	// FacilityID scopes holiday lookups when Holidays is set.
	FacilityID string
}

// Result is an expansion outcome: the occurrences plus any diagnostics
// recorded on degraded paths.
type Result struct {
	Occurrences []Occurrence
	Diagnostics []string
}

// Generate expands pattern into occurrences for one zone, starting at start
// (or the pattern's own start date when set) and emitting at most
// maxOccurrences matching DATES. The occurrence count is the matching dates
// times the number of time slots. maxOccurrences <= 0 falls back to
// DefaultMaxOccurrences.
func (e *Engine) Generate(pattern Pattern, start Date, zoneID string, maxOccurrences int) Result {
	if maxOccurrences <= 0 {
		maxOccurrences = DefaultMaxOccurrences
	}

	effectiveStart := start
	if !pattern.StartDate.IsZero() {
		effectiveStart = pattern.StartDate
	}

	slots, diagnostics := parseSlots(pattern.TimeSlots)

	var occurrences []Occurrence
	matched := 0
	current := effectiveStart

	for scanned := 0; matched < maxOccurrences && scanned < maxScanDays; scanned += pattern.step() {
		if !pattern.EndDate.IsZero() && current.After(pattern.EndDate) {
			break
		}

		if e.matches(pattern, current) {
			for _, slot := range slots {
				occurrences = append(occurrences, Occurrence{
					ZoneID: zoneID,
					Date:   current,
					Slot:   slot.raw,
					Hours:  slot.hours,
				})
			}
			matched++
		}

		current = current.AddDays(pattern.step())
	}

	return Result{Occurrences: occurrences, Diagnostics: diagnostics}
}

// matches is the date-match predicate, per pattern type.
func (e *Engine) matches(pattern Pattern, date Date) bool {
	if e.Holidays != nil && e.Holidays.IsHoliday(e.FacilityID, date) {
		return false
	}

	switch pattern.Type {
	case PatternSingle:
		// Every date matches; the caller bounds via maxOccurrences.
		return true

	case PatternWeekly, PatternBiweekly, PatternCustom:
		return pattern.hasWeekday(date.Weekday())

	case PatternMonthly:
		if !pattern.HasMonthlyWeekday() {
			return false
		}
		if date.Weekday() != pattern.MonthlyWeekday {
			return false
		}
		if pattern.MonthlyOrdinal == OrdinalLast {
			return date.IsLastWeekdayOfMonth()
		}
		week := pattern.MonthlyOrdinal.week()
		if week == 0 {
			return false
		}
		return date.WeekdayOrdinal() == week

	default:
		return false
	}
}

// parsedSlot pairs a slot's original string with its resolved duration.
type parsedSlot struct {
	raw   string
	hours float64
}

// parseSlots resolves slot durations up front so a pattern's slots are parsed
// once per expansion, not once per matching date.
func parseSlots(timeSlots []string) ([]parsedSlot, []string) {
	slots := make([]parsedSlot, 0, len(timeSlots))
	var diagnostics []string

	for _, raw := range timeSlots {
		r, err := ParseSlot(raw)
		if err != nil {
			slots = append(slots, parsedSlot{raw: raw, hours: DefaultSlotHours})
			diagnostics = append(diagnostics,
				fmt.Sprintf("slot %q: %v; using default %g hour duration", raw, err, DefaultSlotHours))
			continue
		}
		slots = append(slots, parsedSlot{raw: raw, hours: r.Hours()})
	}
	return slots, diagnostics
}

// =============================================================================
// PATTERN DESCRIPTION
// =============================================================================

// Description is a structured rendering of a pattern for non-UI consumers;
// Label is a ready-made English string for display.
type Description struct {
	Type     PatternType
	Weekdays []string
	Label    string
}

// Describe renders a human-readable description of the pattern. Pure
// formatting; locale-specific wording belongs to the presentation layer,
// which can rebuild it from the structured fields.
func (e *Engine) Describe(pattern Pattern) Description {
	names := weekdayNames(pattern.Weekdays)

	var label string
	switch pattern.Type {
	case PatternSingle:
		label = "One-time booking"
	case PatternWeekly:
		label = "Weekly on " + strings.Join(names, ", ")
	case PatternBiweekly:
		label = "Every other week on " + strings.Join(names, ", ")
	case PatternMonthly:
		label = fmt.Sprintf("Monthly on the %s %s", pattern.MonthlyOrdinal, pattern.MonthlyWeekday)
	case PatternCustom:
		interval := pattern.Interval
		if interval <= 1 {
			label = "Daily on " + strings.Join(names, ", ")
		} else {
			label = fmt.Sprintf("Every %d days on %s", interval, strings.Join(names, ", "))
		}
	default:
		label = string(pattern.Type)
	}

	return Description{Type: pattern.Type, Weekdays: names, Label: label}
}

func weekdayNames(weekdays []time.Weekday) []string {
	names := make([]string, 0, len(weekdays))
	for _, wd := range weekdays {
		names = append(names, wd.String())
	}
	return names
}
