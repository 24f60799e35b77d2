/*
store.go - Persistence contracts for rules, bookings, and blackouts

PURPOSE:
  The engines are pure; everything they consume comes through these
  interfaces. A rule-fetch failure is surfaced here, at retrieval - the
  pricing fold itself never fails and degrades to a zero price when handed
  an empty list.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - booking/store: In-memory for tests and dev
*/
package booking

import (
	"context"
	"errors"

	"github.com/civica/booking-engine/pricing"
	"github.com/civica/booking-engine/recurrence"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrRuleFetch wraps a rule-storage failure. Callers may still price
	// against an empty rule set; the error tells them the quote is degraded.
	ErrRuleFetch = errors.New("price rule retrieval failed")

	// ErrBookingNotFound is returned when a referenced booking doesn't exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrRuleNotFound is returned when a referenced rule doesn't exist.
	ErrRuleNotFound = errors.New("price rule not found")

	// ErrNoOccurrences is returned when a series expands to nothing, which
	// for a non-single pattern usually means an incomplete pattern.
	ErrNoOccurrences = errors.New("pattern produced no occurrences")

	// ErrAllConflicted is returned when every generated occurrence collides
	// with existing bookings or blackouts.
	ErrAllConflicted = errors.New("all occurrences conflict with existing bookings")
)

// =============================================================================
// STORES
// =============================================================================

// RuleStore supplies active price rules. ActiveRules returns rules scoped to
// the facility, both facility-wide and zone-specific for the given zone,
// pre-filtered to IsActive.
type RuleStore interface {
	ActiveRules(ctx context.Context, facilityID, zoneID string) ([]pricing.Rule, error)
	SaveRule(ctx context.Context, rule pricing.Rule) error
	Rule(ctx context.Context, id string) (pricing.Rule, error)
	ListRules(ctx context.Context, facilityID string) ([]pricing.Rule, error)
}

// BookingStore persists booking occurrences and supplies conflict inputs.
type BookingStore interface {
	// BookingsInRange returns bookings for a zone whose date falls in
	// [from, to], ordered by date.
	BookingsInRange(ctx context.Context, zoneID string, from, to recurrence.Date) ([]Booking, error)

	// BlackoutsInRange returns blackout periods touching [from, to].
	BlackoutsInRange(ctx context.Context, zoneID string, from, to recurrence.Date) ([]Blackout, error)

	// SaveBookings persists one row per accepted occurrence, atomically.
	SaveBookings(ctx context.Context, bookings []Booking) error

	SaveBlackout(ctx context.Context, blackout Blackout) error
}

// HolidayStore persists the holiday calendar.
type HolidayStore interface {
	recurrence.HolidayCalendar
	SaveHoliday(ctx context.Context, h recurrence.Holiday) error
	DeleteHoliday(ctx context.Context, id string) error
}
