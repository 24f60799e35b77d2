/*
conflict.go - Occurrence conflict filtering

PURPOSE:
  The recurrence engine generates occurrences without looking at existing
  bookings; that is this collaborator's job. Given the zone's existing
  bookings and blackout periods, it splits a generated occurrence list into
  the slots that are still free and the ones that collide, with the reason
  for each collision.

OVERLAP SEMANTICS:
  Two slots on the same date conflict when their clock ranges overlap, not
  only when the strings are identical - "09:00-11:00" collides with
  "10:00-12:00". An occurrence whose slot string cannot be parsed is treated
  conservatively: it conflicts with any blocking booking on the same date.
*/
package booking

import (
	"github.com/civica/booking-engine/recurrence"
)

// Conflict pairs a rejected occurrence with what it collided with.
type Conflict struct {
	Occurrence recurrence.Occurrence
	BookingID  string // set when the collision is an existing booking
	BlackoutID string // set when the collision is a blackout period
	Reason     string
}

// ConflictChecker filters occurrences against existing bookings and
// blackouts. It performs no storage access; callers supply the data.
type ConflictChecker struct{}

// Filter splits occurrences into available and conflicted. Ordering is
// preserved.
func (cc *ConflictChecker) Filter(
	occurrences []recurrence.Occurrence,
	existing []Booking,
	blackouts []Blackout,
) (available []recurrence.Occurrence, conflicts []Conflict) {
	for _, occ := range occurrences {
		if c, conflicted := cc.check(occ, existing, blackouts); conflicted {
			conflicts = append(conflicts, c)
			continue
		}
		available = append(available, occ)
	}
	return available, conflicts
}

func (cc *ConflictChecker) check(occ recurrence.Occurrence, existing []Booking, blackouts []Blackout) (Conflict, bool) {
	for _, bl := range blackouts {
		if bl.ZoneID == occ.ZoneID && bl.Covers(occ.Date) {
			return Conflict{
				Occurrence: occ,
				BlackoutID: bl.ID,
				Reason:     "zone blocked: " + bl.Reason,
			}, true
		}
	}

	occRange, occErr := recurrence.ParseSlot(occ.Slot)
	for _, b := range existing {
		if !b.Blocks() || b.ZoneID != occ.ZoneID || !b.Date.Equal(occ.Date) {
			continue
		}
		if occErr != nil {
			// Unparsable slot: any blocking booking on the date collides.
			return Conflict{Occurrence: occ, BookingID: b.ID, Reason: "slot already booked"}, true
		}
		bRange, err := recurrence.ParseSlot(b.Slot)
		if err != nil {
			if b.Slot == occ.Slot {
				return Conflict{Occurrence: occ, BookingID: b.ID, Reason: "slot already booked"}, true
			}
			continue
		}
		if occRange.Overlaps(bRange) {
			return Conflict{Occurrence: occ, BookingID: b.ID, Reason: "slot already booked"}, true
		}
	}
	return Conflict{}, false
}
