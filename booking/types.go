// Package booking ties the recurrence and pricing engines into the municipal
// facility-booking domain: actor classification, booking modes, conflict
// filtering against existing bookings, and series quoting.
package booking

import (
	"github.com/civica/booking-engine/recurrence"
)

// =============================================================================
// ACTOR TYPES - Who is booking
// =============================================================================

// ActorType classifies the party making a booking. Pricing rules filter on
// it and some classifications always require manual approval.
type ActorType string

const (
	ActorPrivatePerson ActorType = "private-person"
	ActorSportsClub    ActorType = "lag-foreninger"
	ActorUmbrella      ActorType = "paraply"
	ActorCompany       ActorType = "private-firma"
	ActorMunicipalUnit ActorType = "kommunale-enheter"
)

// RequiresApproval reports whether bookings from this actor type need manual
// approval before confirmation. Sports clubs and umbrella organizations book
// subsidized allotments that an administrator signs off on.
func (a ActorType) RequiresApproval() bool {
	return a == ActorSportsClub || a == ActorUmbrella
}

// =============================================================================
// BOOKING MODES - How the time is booked
// =============================================================================

type Mode string

const (
	ModeOneTime   Mode = "engangs"   // single booking
	ModeSeasonal  Mode = "fastlan"   // recurring seasonal lease
	ModeAllotment Mode = "rammetid"  // allocated block time
	ModeDropIn    Mode = "strotimer" // drop-in hours
)

// RequiresApproval reports whether the booking mode itself needs manual
// approval. Seasonal leases and allotments bind a zone for months and are
// always reviewed.
func (m Mode) RequiresApproval() bool {
	return m == ModeSeasonal || m == ModeAllotment
}

// =============================================================================
// BOOKINGS AND BLACKOUTS - Conflict inputs
// =============================================================================

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusRejected  BookingStatus = "rejected"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking is one persisted occurrence of a booking series.
type Booking struct {
	ID       string
	SeriesID string
	ZoneID   string
	Date     recurrence.Date
	Slot     string
	Actor    ActorType
	Mode     Mode
	Status   BookingStatus
}

// Blocks reports whether this booking blocks new bookings of the same slot.
// Rejected and cancelled bookings free their slot.
func (b Booking) Blocks() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// Blackout is a period a zone cannot be booked (maintenance, municipal
// events).
type Blackout struct {
	ID     string
	ZoneID string
	From   recurrence.Date
	To     recurrence.Date
	Reason string
}

// Covers reports whether the blackout covers the given date.
func (b Blackout) Covers(date recurrence.Date) bool {
	return date.AfterOrEqual(b.From) && date.BeforeOrEqual(b.To)
}
