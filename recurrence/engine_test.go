package recurrence_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/civica/booking-engine/recurrence"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func weeklyPattern(slots ...string) recurrence.Pattern {
	return recurrence.Pattern{
		Type:      recurrence.PatternWeekly,
		Weekdays:  []time.Weekday{time.Monday, time.Wednesday},
		TimeSlots: slots,
	}
}

func dates(occurrences []recurrence.Occurrence) []string {
	var out []string
	for _, occ := range occurrences {
		out = append(out, occ.Date.String())
	}
	return out
}

// =============================================================================
// WEEKLY EXPANSION
// =============================================================================

func TestGenerate_Weekly_MondayWednesday(t *testing.T) {
	// GIVEN: Weekly pattern on Monday+Wednesday with one 2-hour slot
	// WHEN: Expanding from Monday 2025-01-06 for 4 matching dates
	// THEN: Occurrences land on Mon 6th, Wed 8th, Mon 13th, Wed 15th

	engine := &recurrence.Engine{}
	pattern := weeklyPattern("10:00-12:00")
	start := recurrence.NewDate(2025, time.January, 6)

	result := engine.Generate(pattern, start, "hall-a", 4)

	want := []string{"2025-01-06", "2025-01-08", "2025-01-13", "2025-01-15"}
	if got := dates(result.Occurrences); !reflect.DeepEqual(got, want) {
		t.Errorf("expected dates %v, got %v", want, got)
	}
	for _, occ := range result.Occurrences {
		if occ.Hours != 2 {
			t.Errorf("expected 2-hour duration, got %v", occ.Hours)
		}
		if occ.ZoneID != "hall-a" {
			t.Errorf("expected zone hall-a, got %s", occ.ZoneID)
		}
	}
	if len(result.Diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got %v", result.Diagnostics)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	// GIVEN: Any valid pattern
	// WHEN: Generating twice with identical inputs
	// THEN: Results are identical

	engine := &recurrence.Engine{}
	pattern := weeklyPattern("09:00-11:00", "18:00-20:00")
	start := recurrence.NewDate(2025, time.March, 3)

	first := engine.Generate(pattern, start, "z", 10)
	second := engine.Generate(pattern, start, "z", 10)

	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical results for identical inputs")
	}
}

func TestGenerate_CountBound_AndSlotMultiplication(t *testing.T) {
	// GIVEN: A pattern with 3 time slots
	// WHEN: Expanding with maxOccurrences = 5
	// THEN: 5 distinct dates, 15 occurrences

	engine := &recurrence.Engine{}
	pattern := weeklyPattern("08:00-09:00", "09:00-11:00", "11:00-12:00")

	result := engine.Generate(pattern, recurrence.NewDate(2025, time.June, 2), "z", 5)

	if len(result.Occurrences) != 15 {
		t.Fatalf("expected 15 occurrences (5 dates x 3 slots), got %d", len(result.Occurrences))
	}
	distinct := map[string]bool{}
	for _, occ := range result.Occurrences {
		distinct[occ.Date.String()] = true
	}
	if len(distinct) != 5 {
		t.Errorf("expected 5 distinct dates, got %d", len(distinct))
	}
}

func TestGenerate_ChronologicalOrder(t *testing.T) {
	// GIVEN: Multiple slots per date
	// WHEN: Expanding
	// THEN: Dates are non-decreasing, and slots keep input order within a date

	engine := &recurrence.Engine{}
	pattern := weeklyPattern("18:00-20:00", "08:00-10:00") // deliberately unsorted

	result := engine.Generate(pattern, recurrence.NewDate(2025, time.January, 6), "z", 3)

	for i := 1; i < len(result.Occurrences); i++ {
		prev, cur := result.Occurrences[i-1], result.Occurrences[i]
		if cur.Date.Before(prev.Date) {
			t.Fatalf("dates out of order: %s before %s", cur.Date, prev.Date)
		}
		if cur.Date.Equal(prev.Date) && prev.Slot != "18:00-20:00" {
			t.Errorf("slots within a date must keep input order")
		}
	}
}

func TestGenerate_EndDateBound(t *testing.T) {
	// GIVEN: A pattern ending 2025-01-10
	// WHEN: Expanding with a generous count bound
	// THEN: No occurrence falls after the end date

	engine := &recurrence.Engine{}
	pattern := weeklyPattern("10:00-12:00")
	pattern.EndDate = recurrence.NewDate(2025, time.January, 10)

	result := engine.Generate(pattern, recurrence.NewDate(2025, time.January, 6), "z", 52)

	want := []string{"2025-01-06", "2025-01-08"}
	if got := dates(result.Occurrences); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestGenerate_PatternStartDateWins(t *testing.T) {
	// GIVEN: A pattern with its own start date
	// WHEN: Generating with an earlier start argument
	// THEN: Expansion starts at the pattern's start date

	engine := &recurrence.Engine{}
	pattern := weeklyPattern("10:00-12:00")
	pattern.StartDate = recurrence.NewDate(2025, time.February, 3) // a Monday

	result := engine.Generate(pattern, recurrence.NewDate(2025, time.January, 1), "z", 1)

	if len(result.Occurrences) != 1 || result.Occurrences[0].Date.String() != "2025-02-03" {
		t.Errorf("expected single occurrence on 2025-02-03, got %v", dates(result.Occurrences))
	}
}

// =============================================================================
// MONTHLY EXPANSION
// =============================================================================

func TestGenerate_MonthlyLastFriday(t *testing.T) {
	// GIVEN: Monthly pattern targeting the last Friday
	// WHEN: Expanding January 2025 (a 31-day month) only
	// THEN: Exactly one occurrence, on 2025-01-31 (the last Friday)

	engine := &recurrence.Engine{}
	pattern := recurrence.Pattern{
		Type:      recurrence.PatternMonthly,
		TimeSlots: []string{"09:00-11:00"},
		EndDate:   recurrence.NewDate(2025, time.January, 31),
	}.WithMonthly(recurrence.OrdinalLast, time.Friday)

	result := engine.Generate(pattern, recurrence.NewDate(2025, time.January, 1), "z", 52)

	if len(result.Occurrences) != 1 {
		t.Fatalf("expected exactly one occurrence, got %d (%v)", len(result.Occurrences), dates(result.Occurrences))
	}
	if got := result.Occurrences[0].Date.String(); got != "2025-01-31" {
		t.Errorf("expected last Friday 2025-01-31, got %s", got)
	}
}

func TestGenerate_MonthlySecondTuesday(t *testing.T) {
	// GIVEN: Monthly pattern targeting the second Tuesday
	// WHEN: Expanding three months
	// THEN: One occurrence per month on the second Tuesday

	engine := &recurrence.Engine{}
	pattern := recurrence.Pattern{
		Type:      recurrence.PatternMonthly,
		TimeSlots: []string{"12:00-14:00"},
	}.WithMonthly(recurrence.OrdinalSecond, time.Tuesday)

	result := engine.Generate(pattern, recurrence.NewDate(2025, time.January, 1), "z", 3)

	want := []string{"2025-01-14", "2025-02-11", "2025-03-11"}
	if got := dates(result.Occurrences); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestGenerate_MonthlyWithoutWeekday_ProducesNothing(t *testing.T) {
	// GIVEN: Monthly pattern missing its weekday selector
	// WHEN: Expanding
	// THEN: Zero occurrences, no panic - validation belongs upstream

	engine := &recurrence.Engine{}
	pattern := recurrence.Pattern{
		Type:           recurrence.PatternMonthly,
		TimeSlots:      []string{"09:00-11:00"},
		MonthlyOrdinal: recurrence.OrdinalFirst,
	}

	result := engine.Generate(pattern, recurrence.NewDate(2025, time.January, 1), "z", 10)

	if len(result.Occurrences) != 0 {
		t.Errorf("expected no occurrences, got %d", len(result.Occurrences))
	}
}

// =============================================================================
// OTHER CADENCES
// =============================================================================

func TestGenerate_BiweeklyBehavesLikeWeekly(t *testing.T) {
	// Biweekly and weekly share step and predicate; the distinction lives in
	// the caller's weekday/bounds choice. Pin that equivalence down so a
	// future change is deliberate.

	engine := &recurrence.Engine{}
	weekly := weeklyPattern("10:00-12:00")
	biweekly := weekly
	biweekly.Type = recurrence.PatternBiweekly
	start := recurrence.NewDate(2025, time.January, 6)

	w := engine.Generate(weekly, start, "z", 6)
	b := engine.Generate(biweekly, start, "z", 6)

	if !reflect.DeepEqual(dates(w.Occurrences), dates(b.Occurrences)) {
		t.Errorf("biweekly diverged from weekly: %v vs %v", dates(b.Occurrences), dates(w.Occurrences))
	}
}

func TestGenerate_CustomInterval_StepsOverDays(t *testing.T) {
	// GIVEN: Custom pattern, every 14 days, Mondays only
	// WHEN: Expanding from a Monday
	// THEN: Every other Monday matches (the 14-day step keeps landing on Mondays)

	engine := &recurrence.Engine{}
	pattern := recurrence.Pattern{
		Type:      recurrence.PatternCustom,
		Weekdays:  []time.Weekday{time.Monday},
		TimeSlots: []string{"10:00-12:00"},
		Interval:  14,
	}

	result := engine.Generate(pattern, recurrence.NewDate(2025, time.January, 6), "z", 3)

	want := []string{"2025-01-06", "2025-01-20", "2025-02-03"}
	if got := dates(result.Occurrences); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestGenerate_Single_FirstDateOnly(t *testing.T) {
	// GIVEN: A single pattern (every date matches)
	// WHEN: Expanding with maxOccurrences = 1
	// THEN: One date, starting date itself

	engine := &recurrence.Engine{}
	pattern := recurrence.Pattern{
		Type:      recurrence.PatternSingle,
		TimeSlots: []string{"10:00-12:00"},
	}

	result := engine.Generate(pattern, recurrence.NewDate(2025, time.May, 9), "z", 1)

	if len(result.Occurrences) != 1 || result.Occurrences[0].Date.String() != "2025-05-09" {
		t.Errorf("expected one occurrence on 2025-05-09, got %v", dates(result.Occurrences))
	}
}

// =============================================================================
// DEGRADED SLOTS AND HOLIDAYS
// =============================================================================

func TestGenerate_UnparsableSlot_DefaultsWithDiagnostic(t *testing.T) {
	// GIVEN: A slot string without a separator
	// WHEN: Expanding
	// THEN: The occurrence is still emitted with the default duration, and
	//       the degradation is visible on the diagnostics list

	engine := &recurrence.Engine{}
	pattern := weeklyPattern("morning session")

	result := engine.Generate(pattern, recurrence.NewDate(2025, time.January, 6), "z", 1)

	if len(result.Occurrences) != 1 {
		t.Fatalf("expected the degraded occurrence to be emitted, got %d", len(result.Occurrences))
	}
	if result.Occurrences[0].Hours != recurrence.DefaultSlotHours {
		t.Errorf("expected default %g hours, got %g", recurrence.DefaultSlotHours, result.Occurrences[0].Hours)
	}
	if len(result.Diagnostics) != 1 {
		t.Errorf("expected one diagnostic, got %v", result.Diagnostics)
	}
}

func TestGenerate_HolidaysExcluded(t *testing.T) {
	// GIVEN: A calendar marking 2025-01-06 as a holiday
	// WHEN: Expanding a Monday pattern from that date
	// THEN: The holiday Monday is skipped; the next Monday still matches

	calendar := &recurrence.StaticCalendar{Entries: []recurrence.Holiday{
		{ID: "h1", Date: recurrence.NewDate(2025, time.January, 6), Name: "Closed"},
	}}
	engine := &recurrence.Engine{Holidays: calendar}
	pattern := recurrence.Pattern{
		Type:      recurrence.PatternWeekly,
		Weekdays:  []time.Weekday{time.Monday},
		TimeSlots: []string{"10:00-12:00"},
	}

	result := engine.Generate(pattern, recurrence.NewDate(2025, time.January, 6), "z", 2)

	want := []string{"2025-01-13", "2025-01-20"}
	if got := dates(result.Occurrences); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

// =============================================================================
// DESCRIPTION
// =============================================================================

func TestDescribe(t *testing.T) {
	engine := &recurrence.Engine{}

	cases := []struct {
		name    string
		pattern recurrence.Pattern
		want    string
	}{
		{"weekly", weeklyPattern("10:00-12:00"), "Weekly on Monday, Wednesday"},
		{"single", recurrence.Pattern{Type: recurrence.PatternSingle}, "One-time booking"},
		{
			"monthly",
			recurrence.Pattern{}.WithMonthly(recurrence.OrdinalLast, time.Friday),
			"Monthly on the last Friday",
		},
		{
			"custom",
			recurrence.Pattern{Type: recurrence.PatternCustom, Weekdays: []time.Weekday{time.Tuesday}, Interval: 3},
			"Every 3 days on Tuesday",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := engine.Describe(tc.pattern).Label; got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
