/*
series.go - Recurring-series quoting and submission

PURPOSE:
  Orchestrates the full recurring-booking flow the UI drives:

    Pattern ──▶ expand ──▶ conflict filter ──▶ price each slot ──▶ Quote
                                                                    │
                                                     Submit ◀───────┘
                                              (one row per accepted slot)

  Expansion and pricing are pure engine calls; this service owns the
  orchestration and the storage round-trips for conflict data and
  persistence.

PRICING A SERIES:
  Each occurrence is priced independently - a Friday-evening slot in the
  series can carry a weekend surcharge its Tuesday sibling doesn't. The
  quote total is the sum of the per-occurrence finals, and the series
  requires approval when the actor type or booking mode is flagged.

FAILURE SEMANTICS:
  Rule-fetch failure does not abort the quote: the quote is computed over an
  empty rule set (zero prices) and the retrieval error is attached to the
  quote as a degradation signal. Storage failures on SUBMIT do abort - we
  never persist half a series (the store's SaveBookings is atomic).
*/
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/civica/booking-engine/pricing"
	"github.com/civica/booking-engine/recurrence"
)

// QuoteLine pairs one available occurrence with its price calculation.
type QuoteLine struct {
	Occurrence  recurrence.Occurrence
	Calculation pricing.Calculation
}

// Quote is the priced view of a requested series before submission.
type Quote struct {
	SeriesID         string
	Pattern          recurrence.Pattern
	Description      recurrence.Description
	Lines            []QuoteLine
	Conflicts        []Conflict
	Total            decimal.Decimal
	Currency         string
	RequiresApproval bool

	// Diagnostics carries expansion warnings (e.g. unparsable slot strings)
	// and a rule-retrieval failure note when pricing was degraded.
	Diagnostics []string
}

// SeriesRequest is the input to quoting: the pattern plus the booking
// context it will be priced under.
type SeriesRequest struct {
	Pattern        recurrence.Pattern
	Start          recurrence.Date
	FacilityID     string
	ZoneID         string
	Actor          ActorType
	Mode           Mode
	EventType      string
	AgeGroup       string
	MaxOccurrences int
}

// SeriesService quotes and submits recurring booking series.
type SeriesService struct {
	Recurrence *recurrence.Engine
	Pricing    *pricing.Engine
	Conflicts  *ConflictChecker
	Rules      RuleStore
	Bookings   BookingStore
}

// Quote expands, conflict-filters, and prices a series without persisting
// anything. Returns ErrNoOccurrences when the pattern expands to nothing.
func (s *SeriesService) Quote(ctx context.Context, req SeriesRequest) (*Quote, error) {
	result := s.Recurrence.Generate(req.Pattern, req.Start, req.ZoneID, req.MaxOccurrences)
	if len(result.Occurrences) == 0 {
		return nil, ErrNoOccurrences
	}

	quote := &Quote{
		SeriesID:    newSeriesID(),
		Pattern:     req.Pattern,
		Description: s.Recurrence.Describe(req.Pattern),
		Total:       decimal.Zero,
		Currency:    pricing.Currency,
		Diagnostics: result.Diagnostics,
	}

	available, conflicts, err := s.filterConflicts(ctx, req, result.Occurrences)
	if err != nil {
		return nil, err
	}
	quote.Conflicts = conflicts
	if len(available) == 0 {
		return quote, ErrAllConflicted
	}

	rules, err := s.Rules.ActiveRules(ctx, req.FacilityID, req.ZoneID)
	if err != nil {
		// Degrade to an empty rule set; flag the quote rather than fail it.
		rules = nil
		quote.Diagnostics = append(quote.Diagnostics,
			fmt.Errorf("%w: %v", ErrRuleFetch, err).Error())
	}

	requiresApproval := req.Actor.RequiresApproval() || req.Mode.RequiresApproval()
	quote.RequiresApproval = requiresApproval

	for _, occ := range available {
		calc := s.priceOccurrence(occ, req, rules, requiresApproval)
		quote.Lines = append(quote.Lines, QuoteLine{Occurrence: occ, Calculation: calc})
		quote.Total = quote.Total.Add(calc.FinalPrice)
	}
	return quote, nil
}

// Submit persists one booking row per quoted line, pending when approval is
// required and confirmed otherwise.
func (s *SeriesService) Submit(ctx context.Context, quote *Quote, req SeriesRequest) ([]Booking, error) {
	if quote == nil || len(quote.Lines) == 0 {
		return nil, ErrNoOccurrences
	}

	status := StatusConfirmed
	if quote.RequiresApproval {
		status = StatusPending
	}

	bookings := make([]Booking, 0, len(quote.Lines))
	for i, line := range quote.Lines {
		bookings = append(bookings, Booking{
			ID:       fmt.Sprintf("%s-%d", quote.SeriesID, i),
			SeriesID: quote.SeriesID,
			ZoneID:   line.Occurrence.ZoneID,
			Date:     line.Occurrence.Date,
			Slot:     line.Occurrence.Slot,
			Actor:    req.Actor,
			Mode:     req.Mode,
			Status:   status,
		})
	}

	if err := s.Bookings.SaveBookings(ctx, bookings); err != nil {
		return nil, fmt.Errorf("failed to persist series %s: %w", quote.SeriesID, err)
	}
	return bookings, nil
}

// PriceSingle prices one booking context without a series: the checkout path
// for one-time and drop-in bookings.
func (s *SeriesService) PriceSingle(ctx context.Context, pctx pricing.Context, actor ActorType, mode Mode) (pricing.Calculation, error) {
	rules, err := s.Rules.ActiveRules(ctx, pctx.FacilityID, pctx.ZoneID)
	if err != nil {
		calc := s.Pricing.Calculate(pctx, nil, 0, 1, actor.RequiresApproval() || mode.RequiresApproval())
		return calc, fmt.Errorf("%w: %v", ErrRuleFetch, err)
	}
	return s.Pricing.Calculate(pctx, rules, 0, 1, actor.RequiresApproval() || mode.RequiresApproval()), nil
}

func (s *SeriesService) filterConflicts(ctx context.Context, req SeriesRequest, occurrences []recurrence.Occurrence) ([]recurrence.Occurrence, []Conflict, error) {
	first := occurrences[0].Date
	last := occurrences[len(occurrences)-1].Date

	existing, err := s.Bookings.BookingsInRange(ctx, req.ZoneID, first, last)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load existing bookings: %w", err)
	}
	blackouts, err := s.Bookings.BlackoutsInRange(ctx, req.ZoneID, first, last)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load blackouts: %w", err)
	}

	available, conflicts := s.Conflicts.Filter(occurrences, existing, blackouts)
	return available, conflicts, nil
}

func (s *SeriesService) priceOccurrence(occ recurrence.Occurrence, req SeriesRequest, rules []pricing.Rule, requiresApproval bool) pricing.Calculation {
	window, err := recurrence.ParseSlot(occ.Slot)
	if err != nil {
		// Degraded slot: window stays zero; day filters still apply.
		window = recurrence.ClockRange{}
	}
	pctx := pricing.Context{
		FacilityID: req.FacilityID,
		ZoneID:     occ.ZoneID,
		Date:       occ.Date,
		Window:     window,
		ActorType:  string(req.Actor),
		Mode:       string(req.Mode),
		EventType:  req.EventType,
		AgeGroup:   req.AgeGroup,
	}
	return s.Pricing.Calculate(pctx, rules, occ.Hours, 1, requiresApproval)
}

// IsClientError reports whether the error is due to invalid client input
// rather than a system failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNoOccurrences) ||
		errors.Is(err, ErrAllConflicted) ||
		errors.Is(err, ErrRuleNotFound) ||
		errors.Is(err, ErrBookingNotFound)
}

func newSeriesID() string {
	return fmt.Sprintf("series-%d", time.Now().UnixNano())
}
