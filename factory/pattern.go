/*
pattern.go - Recurrence pattern conversion and validation

JSON SCHEMA (pattern):
  {
    "type": "weekly",
    "weekdays": [1, 3],
    "time_slots": ["09:00-11:00", "18:00-20:00"],
    "interval": 2,
    "start_date": "2025-01-06",
    "end_date": "2025-06-30",
    "monthly_pattern": "last",
    "monthly_weekday": 5
  }

VALIDATION:
  The engine degrades an incomplete pattern to zero occurrences instead of
  erroring, so the factory is the place incompleteness is rejected:
  - weekly/biweekly/custom require a non-empty weekday set
  - monthly requires monthly_weekday (and a known monthly_pattern)
  - at least one time slot is required
  Slot strings are NOT validated here: an unparsable slot is an engine-level
  degradation the product tolerates (default duration plus a diagnostic).
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/civica/booking-engine/recurrence"
)

// PatternJSON is the JSON representation of a recurrence pattern.
type PatternJSON struct {
	Type           string   `json:"type"`
	Weekdays       []int    `json:"weekdays,omitempty"` // 0 = Sunday
	TimeSlots      []string `json:"time_slots"`
	Interval       int      `json:"interval,omitempty"`
	StartDate      string   `json:"start_date,omitempty"` // "2006-01-02"
	EndDate        string   `json:"end_date,omitempty"`
	MonthlyPattern string   `json:"monthly_pattern,omitempty"` // first..fourth, last
	MonthlyWeekday *int     `json:"monthly_weekday,omitempty"` // 0 = Sunday
}

// PatternFactory converts JSON recurrence patterns to recurrence.Pattern
// values.
type PatternFactory struct{}

func NewPatternFactory() *PatternFactory {
	return &PatternFactory{}
}

// ParsePattern parses a JSON string into a validated recurrence.Pattern.
func (f *PatternFactory) ParsePattern(jsonStr string) (recurrence.Pattern, error) {
	var pj PatternJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return recurrence.Pattern{}, fmt.Errorf("failed to parse pattern JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON converts PatternJSON to a validated recurrence.Pattern.
func (f *PatternFactory) FromJSON(pj PatternJSON) (recurrence.Pattern, error) {
	pattern := recurrence.Pattern{
		Type:     recurrence.PatternType(pj.Type),
		Interval: pj.Interval,
	}

	switch pattern.Type {
	case recurrence.PatternSingle, recurrence.PatternWeekly, recurrence.PatternBiweekly,
		recurrence.PatternMonthly, recurrence.PatternCustom:
	default:
		return recurrence.Pattern{}, fmt.Errorf("unknown pattern type %q", pj.Type)
	}

	for _, d := range pj.Weekdays {
		if d < 0 || d > 6 {
			return recurrence.Pattern{}, fmt.Errorf("weekday %d out of range", d)
		}
		pattern.Weekdays = append(pattern.Weekdays, time.Weekday(d))
	}

	if len(pj.TimeSlots) == 0 {
		return recurrence.Pattern{}, fmt.Errorf("pattern requires at least one time slot")
	}
	pattern.TimeSlots = pj.TimeSlots

	if pj.StartDate != "" {
		start, err := recurrence.ParseDate(pj.StartDate)
		if err != nil {
			return recurrence.Pattern{}, fmt.Errorf("invalid start_date: %w", err)
		}
		pattern.StartDate = start
	}
	if pj.EndDate != "" {
		end, err := recurrence.ParseDate(pj.EndDate)
		if err != nil {
			return recurrence.Pattern{}, fmt.Errorf("invalid end_date: %w", err)
		}
		pattern.EndDate = end
	}
	if !pattern.StartDate.IsZero() && !pattern.EndDate.IsZero() && pattern.EndDate.Before(pattern.StartDate) {
		return recurrence.Pattern{}, fmt.Errorf("end_date before start_date")
	}

	switch pattern.Type {
	case recurrence.PatternWeekly, recurrence.PatternBiweekly, recurrence.PatternCustom:
		if len(pattern.Weekdays) == 0 {
			return recurrence.Pattern{}, fmt.Errorf("%s pattern requires a non-empty weekday set", pattern.Type)
		}
	case recurrence.PatternMonthly:
		if pj.MonthlyWeekday == nil {
			return recurrence.Pattern{}, fmt.Errorf("monthly pattern requires monthly_weekday")
		}
		if *pj.MonthlyWeekday < 0 || *pj.MonthlyWeekday > 6 {
			return recurrence.Pattern{}, fmt.Errorf("monthly_weekday %d out of range", *pj.MonthlyWeekday)
		}
		ordinal := recurrence.MonthlyOrdinal(pj.MonthlyPattern)
		switch ordinal {
		case recurrence.OrdinalFirst, recurrence.OrdinalSecond, recurrence.OrdinalThird,
			recurrence.OrdinalFourth, recurrence.OrdinalLast:
		default:
			return recurrence.Pattern{}, fmt.Errorf("unknown monthly_pattern %q", pj.MonthlyPattern)
		}
		pattern = pattern.WithMonthly(ordinal, time.Weekday(*pj.MonthlyWeekday))
	}

	return pattern, nil
}
