/*
calculation.go - Price breakdown and manual overrides

PURPOSE:
  The Calculation is what the checkout summary and the invoicing flow
  consume: not just a number, but how the number came to be. Manual overrides
  ("manager discount for the school group") never destroy the computed
  baseline - the override and its reason sit NEXT TO the computed price, so
  an auditor can always see both.

OVERRIDE SEMANTICS:
  ApplyOverride returns a NEW Calculation. The first override snapshots the
  computed final price; every override appends a reason-stamped entry to the
  audit trail. Overriding twice keeps the original computed price and the
  full reason history.
*/
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LINE - One rule application within the fold
// =============================================================================

// Line records one rule's effect on the running unit price.
type Line struct {
	RuleID   string
	RuleType RuleType
	Percent  decimal.Decimal
	Before   decimal.Decimal
	After    decimal.Decimal
}

// Delta returns how much the rule moved the running price.
func (l Line) Delta() decimal.Decimal { return l.After.Sub(l.Before) }

// =============================================================================
// CALCULATION - Full price breakdown for one booking or series
// =============================================================================

// Calculation is the structured output of pricing one booking context.
// Produced fresh per calculation and treated as immutable; ApplyOverride
// returns a modified copy.
type Calculation struct {
	Context Context

	UnitPrice   decimal.Decimal
	Hours       float64
	Occurrences int

	Subtotal   decimal.Decimal
	FinalPrice decimal.Decimal
	TotalPrice decimal.Decimal
	Currency   string

	RequiresApproval bool

	Breakdown  []Line
	Discounts  []Line
	Surcharges []Line

	// ComputedPrice is the engine-computed final price, snapshotted by the
	// first manual override so it survives any number of later overrides.
	// Zero-valued until an override is applied (FinalPrice is the computed
	// value until then).
	ComputedPrice *decimal.Decimal

	// Overrides is the audit trail of manual price overrides, oldest first.
	Overrides []Override
}

// Override is one manual price override with its audit reason.
type Override struct {
	Amount    decimal.Decimal
	Reason    string
	AppliedAt time.Time
}

// IsOverridden reports whether a manual override is in effect.
func (c Calculation) IsOverridden() bool { return len(c.Overrides) > 0 }

// ApplyOverride returns a copy of the calculation with FinalPrice replaced
// by amount and the reason recorded on the audit trail. The computed
// baseline is retained: the first override snapshots it into ComputedPrice.
func ApplyOverride(c Calculation, amount decimal.Decimal, reason string) Calculation {
	if c.ComputedPrice == nil {
		computed := c.FinalPrice
		c.ComputedPrice = &computed
	}

	// Copy the trail so the input calculation is untouched.
	trail := make([]Override, len(c.Overrides), len(c.Overrides)+1)
	copy(trail, c.Overrides)
	c.Overrides = append(trail, Override{
		Amount:    amount,
		Reason:    reason,
		AppliedAt: time.Now().UTC(),
	})

	c.FinalPrice = amount
	c.TotalPrice = amount
	return c
}
