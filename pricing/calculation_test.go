package pricing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civica/booking-engine/pricing"
)

func computedCalculation(t *testing.T) pricing.Calculation {
	t.Helper()
	engine := &pricing.Engine{}
	rules := []pricing.Rule{
		pricing.NewBaseRule("base", "f", "", 1, money("450")),
	}
	return engine.Calculate(eveningContext(t), rules, 2, 1, false)
}

func TestApplyOverride_KeepsComputedBaseline(t *testing.T) {
	// GIVEN: A computed calculation of 900 (450 x 2h)
	// WHEN: A manager overrides to 500 with a reason
	// THEN: FinalPrice is 500 but the 900 baseline and the reason survive

	calc := computedCalculation(t)
	require.True(t, calc.FinalPrice.Equal(money("900")))
	require.False(t, calc.IsOverridden())

	overridden := pricing.ApplyOverride(calc, money("500"), "school group rate")

	assert.True(t, overridden.FinalPrice.Equal(money("500")))
	assert.True(t, overridden.TotalPrice.Equal(money("500")))
	require.NotNil(t, overridden.ComputedPrice)
	assert.True(t, overridden.ComputedPrice.Equal(money("900")))
	require.Len(t, overridden.Overrides, 1)
	assert.Equal(t, "school group rate", overridden.Overrides[0].Reason)
	assert.True(t, overridden.IsOverridden())
}

func TestApplyOverride_SecondOverrideKeepsFullTrail(t *testing.T) {
	// GIVEN: A calculation already overridden once
	// WHEN: Overriding again
	// THEN: The original computed price and BOTH reasons remain

	first := pricing.ApplyOverride(computedCalculation(t), money("500"), "school group rate")
	second := pricing.ApplyOverride(first, money("300"), "equipment failure, partial refund")

	require.NotNil(t, second.ComputedPrice)
	assert.True(t, second.ComputedPrice.Equal(money("900")), "the first snapshot must survive later overrides")
	require.Len(t, second.Overrides, 2)
	assert.Equal(t, "school group rate", second.Overrides[0].Reason)
	assert.Equal(t, "equipment failure, partial refund", second.Overrides[1].Reason)
	assert.True(t, second.FinalPrice.Equal(money("300")))
}

func TestApplyOverride_DoesNotMutateInput(t *testing.T) {
	calc := computedCalculation(t)

	_ = pricing.ApplyOverride(calc, money("1"), "test")

	assert.True(t, calc.FinalPrice.Equal(money("900")), "input calculation must be untouched")
	assert.Nil(t, calc.ComputedPrice)
	assert.Empty(t, calc.Overrides)
}

func TestOverride_TimestampIsUTC(t *testing.T) {
	overridden := pricing.ApplyOverride(computedCalculation(t), money("500"), "r")

	applied := overridden.Overrides[0].AppliedAt
	assert.Equal(t, time.UTC, applied.Location())
	assert.WithinDuration(t, time.Now().UTC(), applied, time.Minute)
}

func TestLineDelta(t *testing.T) {
	line := pricing.Line{Before: money("100"), After: money("110")}
	assert.True(t, line.Delta().Equal(money("10")))
}
