/*
Package factory provides JSON to Go conversion for price rules and
recurrence patterns.

PURPOSE:
  Administrators configure pricing in JSON through the admin UI, and the
  booking UI submits recurrence patterns as JSON. The factory converts both
  into validated engine types, catching misconfiguration (a discount without
  a percent, a monthly pattern without a weekday, an inverted time window)
  as close to input assembly as possible - the engines themselves degrade
  silently by design, so this is where bad input gets rejected.

JSON SCHEMA (rule):
  {
    "id": "gym-base-club",
    "facility_id": "fac-1",
    "zone_id": "zone-a",
    "type": "BASE",
    "priority": 1,
    "actor_type": "lag-foreninger",
    "config": {
      "days_of_week": [5, 6],
      "start_time": "17:00",
      "end_time": "23:00",
      "percent": 10
    },
    "price": 250,
    "is_active": true
  }

SEE ALSO:
  - pattern.go: Recurrence pattern conversion
  - pricing/types.go: Rule validation rules
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/civica/booking-engine/pricing"
	"github.com/civica/booking-engine/recurrence"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RuleJSON is the JSON representation of a price rule.
type RuleJSON struct {
	ID         string          `json:"id"`
	FacilityID string          `json:"facility_id"`
	ZoneID     string          `json:"zone_id,omitempty"`
	Type       string          `json:"type"`
	Priority   int             `json:"priority"`
	ActorType  string          `json:"actor_type,omitempty"`
	Config     *RuleConfigJSON `json:"config,omitempty"`
	Price      *float64        `json:"price,omitempty"`
	IsActive   *bool           `json:"is_active,omitempty"` // default true
}

// RuleConfigJSON carries the rule's applicability filters and percentage.
type RuleConfigJSON struct {
	DaysOfWeek []int    `json:"days_of_week,omitempty"` // 0 = Sunday
	StartTime  string   `json:"start_time,omitempty"`   // "HH:MM"
	EndTime    string   `json:"end_time,omitempty"`
	Percent    *float64 `json:"percent,omitempty"`
}

// =============================================================================
// RULE FACTORY
// =============================================================================

// RuleFactory converts JSON price rules to pricing.Rule values.
type RuleFactory struct{}

func NewRuleFactory() *RuleFactory {
	return &RuleFactory{}
}

// ParseRule parses a JSON string into a validated pricing.Rule.
func (f *RuleFactory) ParseRule(jsonStr string) (pricing.Rule, error) {
	var rj RuleJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return pricing.Rule{}, fmt.Errorf("failed to parse rule JSON: %w", err)
	}
	return f.FromJSON(rj)
}

// FromJSON converts RuleJSON to a validated pricing.Rule.
func (f *RuleFactory) FromJSON(rj RuleJSON) (pricing.Rule, error) {
	rule := pricing.Rule{
		ID:         rj.ID,
		FacilityID: rj.FacilityID,
		ZoneID:     rj.ZoneID,
		Type:       pricing.RuleType(rj.Type),
		Priority:   rj.Priority,
		ActorType:  rj.ActorType,
		IsActive:   true,
	}
	if rj.IsActive != nil {
		rule.IsActive = *rj.IsActive
	}
	if rj.Price != nil {
		rule.Price = decimal.NewFromFloat(*rj.Price)
	}

	if rj.Config != nil {
		for _, d := range rj.Config.DaysOfWeek {
			if d < 0 || d > 6 {
				return pricing.Rule{}, fmt.Errorf("rule %s: day_of_week %d out of range", rj.ID, d)
			}
			rule.DaysOfWeek = append(rule.DaysOfWeek, time.Weekday(d))
		}
		if rj.Config.Percent != nil {
			rule.Percent = decimal.NewFromFloat(*rj.Config.Percent)
		}
		window, err := parseWindow(rj.Config.StartTime, rj.Config.EndTime)
		if err != nil {
			return pricing.Rule{}, fmt.Errorf("rule %s: %w", rj.ID, err)
		}
		rule.Window = window
	}

	if err := rule.Validate(); err != nil {
		return pricing.Rule{}, err
	}
	return rule, nil
}

// ToJSON converts a pricing.Rule back to its JSON representation.
func (f *RuleFactory) ToJSON(rule pricing.Rule) RuleJSON {
	rj := RuleJSON{
		ID:         rule.ID,
		FacilityID: rule.FacilityID,
		ZoneID:     rule.ZoneID,
		Type:       string(rule.Type),
		Priority:   rule.Priority,
		ActorType:  rule.ActorType,
		IsActive:   boolPtr(rule.IsActive),
	}
	switch rule.Type {
	case pricing.RuleBase, pricing.RuleOverride:
		price, _ := rule.Price.Float64()
		rj.Price = &price
	}

	config := RuleConfigJSON{}
	hasConfig := false
	for _, d := range rule.DaysOfWeek {
		config.DaysOfWeek = append(config.DaysOfWeek, int(d))
		hasConfig = true
	}
	if rule.Window != nil {
		config.StartTime = rule.Window.Start.String()
		config.EndTime = rule.Window.End.String()
		hasConfig = true
	}
	if !rule.Percent.IsZero() {
		percent, _ := rule.Percent.Float64()
		config.Percent = &percent
		hasConfig = true
	}
	if hasConfig {
		rj.Config = &config
	}
	return rj
}

// parseWindow builds the optional time window, rejecting inverted and
// cross-midnight configurations at assembly time.
func parseWindow(startTime, endTime string) (*recurrence.ClockRange, error) {
	if startTime == "" && endTime == "" {
		return nil, nil
	}
	if startTime == "" || endTime == "" {
		return nil, fmt.Errorf("time window requires both start_time and end_time")
	}
	start, err := recurrence.ParseClockTime(startTime)
	if err != nil {
		return nil, err
	}
	end, err := recurrence.ParseClockTime(endTime)
	if err != nil {
		return nil, err
	}
	window, err := recurrence.NewClockRange(start, end)
	if err != nil {
		return nil, err
	}
	return &window, nil
}

func boolPtr(b bool) *bool { return &b }
