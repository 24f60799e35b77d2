/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine types from the external API contract: money travels as strings
  (decimal-exact), dates as "YYYY-MM-DD", time windows as "HH:MM" pairs.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and the factory, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/rule.go, factory/pattern.go: JSON schemas shared with DTOs
*/
package api

import (
	"github.com/civica/booking-engine/booking"
	"github.com/civica/booking-engine/factory"
	"github.com/civica/booking-engine/pricing"
	"github.com/civica/booking-engine/recurrence"
)

// =============================================================================
// OCCURRENCE PREVIEW
// =============================================================================

// PreviewRequest expands a pattern without persisting anything.
type PreviewRequest struct {
	Pattern        factory.PatternJSON `json:"pattern"`
	StartDate      string              `json:"start_date"` // "YYYY-MM-DD", defaults to today
	ZoneID         string              `json:"zone_id"`
	MaxOccurrences int                 `json:"max_occurrences,omitempty"`
	SkipHolidays   bool                `json:"skip_holidays,omitempty"`
	FacilityID     string              `json:"facility_id,omitempty"` // scope for holiday lookup
}

// OccurrenceDTO is one expanded occurrence.
type OccurrenceDTO struct {
	ZoneID string  `json:"zone_id"`
	Date   string  `json:"date"`
	Slot   string  `json:"time_slot"`
	Hours  float64 `json:"duration_hours"`
}

// PreviewResponse carries the expansion result plus its description.
type PreviewResponse struct {
	Occurrences []OccurrenceDTO `json:"occurrences"`
	Description string          `json:"description"`
	PatternType string          `json:"pattern_type"`
	Weekdays    []string        `json:"weekdays,omitempty"`
	Diagnostics []string        `json:"diagnostics,omitempty"`
}

// =============================================================================
// QUOTES
// =============================================================================

// QuoteRequest quotes a recurring series (or a single booking via a
// single-type pattern).
type QuoteRequest struct {
	Pattern        factory.PatternJSON `json:"pattern"`
	StartDate      string              `json:"start_date"`
	FacilityID     string              `json:"facility_id"`
	ZoneID         string              `json:"zone_id"`
	ActorType      string              `json:"actor_type"`
	Mode           string              `json:"booking_mode"`
	EventType      string              `json:"event_type,omitempty"`
	AgeGroup       string              `json:"age_group,omitempty"`
	MaxOccurrences int                 `json:"max_occurrences,omitempty"`
}

// LineDTO is one rule application in a price breakdown.
type LineDTO struct {
	RuleID   string `json:"rule_id"`
	RuleType string `json:"rule_type"`
	Percent  string `json:"percent,omitempty"`
	Before   string `json:"before"`
	After    string `json:"after"`
}

// CalculationDTO is a full price breakdown.
type CalculationDTO struct {
	UnitPrice        string    `json:"unit_price"`
	Hours            float64   `json:"hours"`
	Occurrences      int       `json:"occurrences"`
	Subtotal         string    `json:"subtotal"`
	FinalPrice       string    `json:"final_price"`
	TotalPrice       string    `json:"total_price"`
	Currency         string    `json:"currency"`
	RequiresApproval bool      `json:"requires_approval"`
	Breakdown        []LineDTO `json:"breakdown,omitempty"`
	Discounts        []LineDTO `json:"discounts,omitempty"`
	Surcharges       []LineDTO `json:"surcharges,omitempty"`
	ComputedPrice    *string   `json:"computed_price,omitempty"`
	Overrides        []OverrideDTO `json:"overrides,omitempty"`
}

// OverrideDTO is one manual override entry in the audit trail.
type OverrideDTO struct {
	Amount    string `json:"amount"`
	Reason    string `json:"reason"`
	AppliedAt string `json:"applied_at"`
}

// QuoteLineDTO pairs an occurrence with its calculation.
type QuoteLineDTO struct {
	Occurrence  OccurrenceDTO  `json:"occurrence"`
	Calculation CalculationDTO `json:"calculation"`
}

// ConflictDTO describes one rejected occurrence.
type ConflictDTO struct {
	Occurrence OccurrenceDTO `json:"occurrence"`
	BookingID  string        `json:"booking_id,omitempty"`
	BlackoutID string        `json:"blackout_id,omitempty"`
	Reason     string        `json:"reason"`
}

// QuoteDTO is the priced view of a series.
type QuoteDTO struct {
	SeriesID         string         `json:"series_id"`
	Description      string         `json:"description"`
	Lines            []QuoteLineDTO `json:"lines"`
	Conflicts        []ConflictDTO  `json:"conflicts,omitempty"`
	Total            string         `json:"total"`
	Currency         string         `json:"currency"`
	RequiresApproval bool           `json:"requires_approval"`
	Diagnostics      []string       `json:"diagnostics,omitempty"`
}

// PriceRequest prices one booking context (the one-time / drop-in checkout
// path).
type PriceRequest struct {
	FacilityID string `json:"facility_id"`
	ZoneID     string `json:"zone_id"`
	Date       string `json:"date"`
	TimeSlot   string `json:"time_slot"`
	ActorType  string `json:"actor_type"`
	Mode       string `json:"booking_mode"`
	EventType  string `json:"event_type,omitempty"`
	AgeGroup   string `json:"age_group,omitempty"`
}

// OverrideRequest applies a manual override to a single-booking calculation.
type OverrideRequest struct {
	PriceRequest
	Amount string `json:"amount"`
	Reason string `json:"reason"`
}

// =============================================================================
// BOOKING SUBMISSION
// =============================================================================

// SubmitRequest quotes and persists a series in one call.
type SubmitRequest QuoteRequest

// BookingDTO is one persisted booking occurrence.
type BookingDTO struct {
	ID       string `json:"id"`
	SeriesID string `json:"series_id"`
	ZoneID   string `json:"zone_id"`
	Date     string `json:"date"`
	Slot     string `json:"time_slot"`
	Actor    string `json:"actor_type"`
	Mode     string `json:"booking_mode"`
	Status   string `json:"status"`
}

// SubmitResponse is the submission outcome: what was booked and the quote
// it was booked under.
type SubmitResponse struct {
	Bookings []BookingDTO `json:"bookings"`
	Quote    QuoteDTO     `json:"quote"`
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// HolidayDTO represents a holiday in API requests and responses.
type HolidayDTO struct {
	ID         string `json:"id"`
	FacilityID string `json:"facility_id,omitempty"`
	Date       string `json:"date"`
	Name       string `json:"name"`
	Recurring  bool   `json:"recurring,omitempty"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// DTO CONVERSIONS
// =============================================================================

func occurrenceDTO(occ recurrence.Occurrence) OccurrenceDTO {
	return OccurrenceDTO{
		ZoneID: occ.ZoneID,
		Date:   occ.Date.String(),
		Slot:   occ.Slot,
		Hours:  occ.Hours,
	}
}

func lineDTOs(lines []pricing.Line) []LineDTO {
	out := make([]LineDTO, 0, len(lines))
	for _, l := range lines {
		dto := LineDTO{
			RuleID:   l.RuleID,
			RuleType: string(l.RuleType),
			Before:   l.Before.String(),
			After:    l.After.String(),
		}
		if !l.Percent.IsZero() {
			dto.Percent = l.Percent.String()
		}
		out = append(out, dto)
	}
	return out
}

func calculationDTO(calc pricing.Calculation) CalculationDTO {
	dto := CalculationDTO{
		UnitPrice:        calc.UnitPrice.String(),
		Hours:            calc.Hours,
		Occurrences:      calc.Occurrences,
		Subtotal:         calc.Subtotal.String(),
		FinalPrice:       calc.FinalPrice.String(),
		TotalPrice:       calc.TotalPrice.String(),
		Currency:         calc.Currency,
		RequiresApproval: calc.RequiresApproval,
		Breakdown:        lineDTOs(calc.Breakdown),
		Discounts:        lineDTOs(calc.Discounts),
		Surcharges:       lineDTOs(calc.Surcharges),
	}
	if calc.ComputedPrice != nil {
		s := calc.ComputedPrice.String()
		dto.ComputedPrice = &s
	}
	for _, o := range calc.Overrides {
		dto.Overrides = append(dto.Overrides, OverrideDTO{
			Amount:    o.Amount.String(),
			Reason:    o.Reason,
			AppliedAt: o.AppliedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return dto
}

func quoteDTO(q *booking.Quote) QuoteDTO {
	dto := QuoteDTO{
		SeriesID:         q.SeriesID,
		Description:      q.Description.Label,
		Total:            q.Total.String(),
		Currency:         q.Currency,
		RequiresApproval: q.RequiresApproval,
		Diagnostics:      q.Diagnostics,
	}
	for _, line := range q.Lines {
		dto.Lines = append(dto.Lines, QuoteLineDTO{
			Occurrence:  occurrenceDTO(line.Occurrence),
			Calculation: calculationDTO(line.Calculation),
		})
	}
	for _, c := range q.Conflicts {
		dto.Conflicts = append(dto.Conflicts, ConflictDTO{
			Occurrence: occurrenceDTO(c.Occurrence),
			BookingID:  c.BookingID,
			BlackoutID: c.BlackoutID,
			Reason:     c.Reason,
		})
	}
	return dto
}

func bookingDTO(b booking.Booking) BookingDTO {
	return BookingDTO{
		ID:       b.ID,
		SeriesID: b.SeriesID,
		ZoneID:   b.ZoneID,
		Date:     b.Date.String(),
		Slot:     b.Slot,
		Actor:    string(b.Actor),
		Mode:     string(b.Mode),
		Status:   string(b.Status),
	}
}
