/*
seed.go - Demo data loader

PURPOSE:
  Loads a realistic demo rule set for local development and frontend work:
  one facility ("idrettshall-sentrum") with two zones, a typical municipal
  pricing ladder (commercial base rate, subsidized club rate, evening
  surcharge, weekend surcharge, youth discount), a maintenance blackout,
  and the fixed Norwegian public holidays.

  Idempotent: rules upsert by ID and holidays are unique per
  (facility, date, name), so reloading is safe.
*/
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/civica/booking-engine/booking"
	"github.com/civica/booking-engine/pricing"
	"github.com/civica/booking-engine/recurrence"
)

const demoFacility = "idrettshall-sentrum"

// SeedDemoData loads the demo facility's rules, blackout, and holidays.
func (h *Handler) SeedDemoData(ctx context.Context) error {
	evening, err := recurrence.ParseSlot("17:00-23:00")
	if err != nil {
		return err
	}

	rules := []pricing.Rule{
		// Commercial base rate, facility-wide.
		pricing.NewBaseRule("demo-base-standard", demoFacility, "", 1, decimal.NewFromInt(450)),
		// Subsidized hourly rate for registered sports clubs.
		pricing.NewBaseRule("demo-base-club", demoFacility, "", 2, decimal.NewFromInt(150)).
			ForActor(string(booking.ActorSportsClub)),
		// Evening surcharge on the main hall.
		pricing.NewSurchargeRule("demo-evening", demoFacility, "hall-a", 10, decimal.NewFromInt(15)).
			Between(evening),
		// Weekend surcharge, facility-wide.
		pricing.NewSurchargeRule("demo-weekend", demoFacility, "", 11, decimal.NewFromInt(25)).
			OnDays(time.Saturday, time.Sunday),
		// Youth sport discount for clubs.
		pricing.NewDiscountRule("demo-youth", demoFacility, "", 20, decimal.NewFromInt(50)).
			ForActor(string(booking.ActorSportsClub)),
	}
	for _, rule := range rules {
		if err := h.Rules.SaveRule(ctx, rule); err != nil {
			return fmt.Errorf("failed to seed rule %s: %w", rule.ID, err)
		}
	}

	blackout := booking.Blackout{
		ID:     "demo-maintenance",
		ZoneID: "hall-a",
		From:   recurrence.NewDate(2025, time.July, 1),
		To:     recurrence.NewDate(2025, time.July, 14),
		Reason: "floor refinishing",
	}
	if err := h.Bookings.SaveBlackout(ctx, blackout); err != nil {
		return fmt.Errorf("failed to seed blackout: %w", err)
	}

	holidays := []recurrence.Holiday{
		{ID: "holiday-new-year", Date: recurrence.NewDate(2025, time.January, 1), Name: "New Year's Day", Recurring: true},
		{ID: "holiday-labour-day", Date: recurrence.NewDate(2025, time.May, 1), Name: "Labour Day", Recurring: true},
		{ID: "holiday-constitution-day", Date: recurrence.NewDate(2025, time.May, 17), Name: "Constitution Day", Recurring: true},
		{ID: "holiday-christmas", Date: recurrence.NewDate(2025, time.December, 25), Name: "Christmas Day", Recurring: true},
		{ID: "holiday-boxing-day", Date: recurrence.NewDate(2025, time.December, 26), Name: "Boxing Day", Recurring: true},
	}
	for _, holiday := range holidays {
		if err := h.Holidays.SaveHoliday(ctx, holiday); err != nil {
			// Unique index makes reseeding a duplicate; not an error worth
			// failing startup over.
			continue
		}
	}
	return nil
}
