/*
clock.go - Time-of-day value types

PURPOSE:
  Booking time slots arrive from the UI as "HH:MM-HH:MM" strings. Inside the
  engine they are a ClockRange: a pair of minutes-since-midnight values. The
  string format exists only at the boundary; all comparison and duration math
  happens on minutes, which sidesteps the cross-midnight bugs that come with
  comparing "22:00" < "02:00" lexicographically.

KEY TYPES:
  ClockTime:  Minutes since midnight (0..1439)
  ClockRange: Half-open [Start, End) window within a single day

INVARIANTS:
  - A ClockRange always has Start < End. Cross-midnight windows are rejected
    at construction; a rule or slot that needs one must be split into two
    same-day ranges by the caller.

PARSING POLICY:
  ParseSlot is strict. The occurrence engine layers its own fallback on top
  (a slot string it cannot parse still produces an occurrence with a default
  duration) - see engine.go.

SEE ALSO:
  - engine.go: Uses ClockRange for occurrence durations
  - pricing package: Uses ClockRange for rule time windows
*/
package recurrence

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// CLOCK TIME - Minutes since midnight
// =============================================================================

type ClockTime int

// NewClockTime builds a ClockTime from an hour and minute.
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClockTime parses "HH:MM" (a trailing seconds component is tolerated
// and ignored).
func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 3)
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return NewClockTime(hour, minute), nil
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) Before(other ClockTime) bool        { return c < other }
func (c ClockTime) After(other ClockTime) bool         { return c > other }
func (c ClockTime) BeforeOrEqual(other ClockTime) bool { return c <= other }
func (c ClockTime) AfterOrEqual(other ClockTime) bool  { return c >= other }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// =============================================================================
// CLOCK RANGE - Same-day [Start, End) window
// =============================================================================

type ClockRange struct {
	Start ClockTime
	End   ClockTime
}

// NewClockRange builds a validated range. End must be strictly after Start;
// cross-midnight windows are not representable.
func NewClockRange(start, end ClockTime) (ClockRange, error) {
	if end <= start {
		return ClockRange{}, fmt.Errorf("clock range %s-%s: end must be after start", start, end)
	}
	return ClockRange{Start: start, End: end}, nil
}

// ParseSlot parses a "HH:MM-HH:MM" slot string into a ClockRange.
func ParseSlot(s string) (ClockRange, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return ClockRange{}, fmt.Errorf("invalid slot %q: missing separator", s)
	}
	start, err := ParseClockTime(parts[0])
	if err != nil {
		return ClockRange{}, err
	}
	end, err := ParseClockTime(parts[1])
	if err != nil {
		return ClockRange{}, err
	}
	return NewClockRange(start, end)
}

// Hours returns the range length in hours.
func (r ClockRange) Hours() float64 {
	return float64(r.End-r.Start) / 60
}

// Contains reports whether t falls within [Start, End).
func (r ClockRange) Contains(t ClockTime) bool {
	return t >= r.Start && t < r.End
}

// Overlaps reports whether two ranges share any time.
func (r ClockRange) Overlaps(other ClockRange) bool {
	return r.Start < other.End && other.Start < r.End
}

func (r ClockRange) String() string {
	return r.Start.String() + "-" + r.End.String()
}
