package recurrence

// =============================================================================
// HOLIDAY CALENDAR - Facility closing days
// =============================================================================

// Holiday is a date a facility is closed for regular booking.
type Holiday struct {
	ID         string
	FacilityID string // Empty string = municipality-wide holidays
	Date       Date
	Name       string // e.g. "Constitution Day", "Easter Monday"
	Recurring  bool   // true = same month/day every year
}

// HolidayCalendar provides holiday lookup.
type HolidayCalendar interface {
	// IsHoliday checks if a date is a holiday for the given facility.
	// Facility-specific holidays are checked first, then municipality-wide
	// ones.
	IsHoliday(facilityID string, date Date) bool

	// Holidays returns all holidays for a facility in a given year, both
	// facility-specific and municipality-wide.
	Holidays(facilityID string, year int) []Holiday
}

// NoHolidays is the calendar used when holiday exclusion is disabled.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(facilityID string, date Date) bool { return false }
func (NoHolidays) Holidays(facilityID string, year int) []Holiday { return nil }

// StaticCalendar is a fixed in-memory holiday calendar.
type StaticCalendar struct {
	Entries []Holiday
}

func (c *StaticCalendar) IsHoliday(facilityID string, date Date) bool {
	for _, h := range c.Entries {
		if h.FacilityID != "" && h.FacilityID != facilityID {
			continue
		}
		if h.Recurring {
			if h.Date.Month() == date.Month() && h.Date.Day() == date.Day() {
				return true
			}
			continue
		}
		if h.Date.Equal(date) {
			return true
		}
	}
	return false
}

func (c *StaticCalendar) Holidays(facilityID string, year int) []Holiday {
	var out []Holiday
	for _, h := range c.Entries {
		if h.FacilityID != "" && h.FacilityID != facilityID {
			continue
		}
		if h.Recurring || h.Date.Year() == year {
			out = append(out, h)
		}
	}
	return out
}
