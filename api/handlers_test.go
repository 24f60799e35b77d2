package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/civica/booking-engine/api"
	"github.com/civica/booking-engine/booking"
	"github.com/civica/booking-engine/booking/store"
	"github.com/civica/booking-engine/pricing"
	"github.com/civica/booking-engine/recurrence"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	srv := httptest.NewServer(api.NewRouter(api.NewHandler(mem, mem, mem)))
	t.Cleanup(srv.Close)
	return srv, mem
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatal(err)
	}
}

func seedBase(t *testing.T, mem *store.Memory, price string) {
	t.Helper()
	rule := pricing.NewBaseRule("base", "fac-1", "", 1, decimal.RequireFromString(price))
	if err := mem.SaveRule(context.Background(), rule); err != nil {
		t.Fatal(err)
	}
}

func weeklyQuoteBody() map[string]any {
	return map[string]any{
		"pattern": map[string]any{
			"type":       "weekly",
			"weekdays":   []int{1, 3},
			"time_slots": []string{"18:00-20:00"},
		},
		"start_date":      "2025-01-06",
		"facility_id":     "fac-1",
		"zone_id":         "hall-a",
		"actor_type":      "private-person",
		"booking_mode":    "engangs",
		"max_occurrences": 4,
	}
}

// =============================================================================
// OCCURRENCE PREVIEW
// =============================================================================

func TestPreviewOccurrences(t *testing.T) {
	// GIVEN: A weekly Monday+Wednesday pattern
	// WHEN: Previewing 4 occurrences from 2025-01-06
	// THEN: 200 with the four dates and a description

	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/occurrences/preview", map[string]any{
		"pattern": map[string]any{
			"type":       "weekly",
			"weekdays":   []int{1, 3},
			"time_slots": []string{"10:00-12:00"},
		},
		"start_date":      "2025-01-06",
		"zone_id":         "hall-a",
		"max_occurrences": 4,
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var preview api.PreviewResponse
	decode(t, resp, &preview)

	if len(preview.Occurrences) != 4 {
		t.Fatalf("expected 4 occurrences, got %d", len(preview.Occurrences))
	}
	if preview.Occurrences[0].Date != "2025-01-06" || preview.Occurrences[3].Date != "2025-01-15" {
		t.Errorf("unexpected dates %v", preview.Occurrences)
	}
	if preview.Description != "Weekly on Monday, Wednesday" {
		t.Errorf("unexpected description %q", preview.Description)
	}
}

func TestPreviewOccurrences_SkipsHolidays(t *testing.T) {
	srv, mem := newTestServer(t)
	if err := mem.SaveHoliday(context.Background(), recurrence.Holiday{
		ID: "h1", Date: recurrence.NewDate(2025, time.January, 6), Name: "Closed",
	}); err != nil {
		t.Fatal(err)
	}

	resp := postJSON(t, srv.URL+"/api/occurrences/preview", map[string]any{
		"pattern": map[string]any{
			"type":       "weekly",
			"weekdays":   []int{1},
			"time_slots": []string{"10:00-12:00"},
		},
		"start_date":      "2025-01-06",
		"zone_id":         "hall-a",
		"facility_id":     "fac-1",
		"max_occurrences": 1,
		"skip_holidays":   true,
	})

	var preview api.PreviewResponse
	decode(t, resp, &preview)
	if len(preview.Occurrences) != 1 || preview.Occurrences[0].Date != "2025-01-13" {
		t.Errorf("expected the holiday Monday skipped, got %v", preview.Occurrences)
	}
}

func TestPreviewOccurrences_InvalidPattern(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/occurrences/preview", map[string]any{
		"pattern": map[string]any{"type": "weekly", "time_slots": []string{"10:00-12:00"}},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for a weekly pattern without weekdays, got %d", resp.StatusCode)
	}
}

// =============================================================================
// QUOTES
// =============================================================================

func TestCreateQuote(t *testing.T) {
	srv, mem := newTestServer(t)
	seedBase(t, mem, "100")

	resp := postJSON(t, srv.URL+"/api/quotes", weeklyQuoteBody())

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var quote api.QuoteDTO
	decode(t, resp, &quote)

	if len(quote.Lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(quote.Lines))
	}
	if quote.Total != "800" {
		t.Errorf("expected total 800, got %s", quote.Total)
	}
	if quote.Currency != "NOK" || quote.RequiresApproval {
		t.Errorf("unexpected quote header %+v", quote)
	}
}

func TestCreateQuote_AllConflictedReturns409WithDetails(t *testing.T) {
	srv, mem := newTestServer(t)
	seedBase(t, mem, "100")
	if err := mem.SaveBlackout(context.Background(), booking.Blackout{
		ID: "bl1", ZoneID: "hall-a",
		From:   recurrence.NewDate(2025, time.January, 1),
		To:     recurrence.NewDate(2025, time.December, 31),
		Reason: "renovation",
	}); err != nil {
		t.Fatal(err)
	}

	resp := postJSON(t, srv.URL+"/api/quotes", weeklyQuoteBody())

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	var quote api.QuoteDTO
	decode(t, resp, &quote)
	if len(quote.Conflicts) != 4 {
		t.Errorf("expected the 409 body to carry all 4 conflicts, got %d", len(quote.Conflicts))
	}
}

func TestPriceBooking(t *testing.T) {
	srv, mem := newTestServer(t)
	seedBase(t, mem, "450")

	resp := postJSON(t, srv.URL+"/api/quotes/price", map[string]any{
		"facility_id":  "fac-1",
		"zone_id":      "hall-a",
		"date":         "2025-01-06",
		"time_slot":    "10:00-12:00",
		"actor_type":   "private-person",
		"booking_mode": "strotimer",
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var calc api.CalculationDTO
	decode(t, resp, &calc)

	if calc.FinalPrice != "900" {
		t.Errorf("expected 900 (450 x 2h), got %s", calc.FinalPrice)
	}
	if calc.Hours != 2 || calc.RequiresApproval {
		t.Errorf("unexpected calculation %+v", calc)
	}
}

func TestOverridePrice(t *testing.T) {
	// GIVEN: A computed 900 calculation
	// WHEN: Overriding to 500 with a reason
	// THEN: final 500, computed_price 900, and the reason on the trail

	srv, mem := newTestServer(t)
	seedBase(t, mem, "450")

	resp := postJSON(t, srv.URL+"/api/quotes/override", map[string]any{
		"facility_id":  "fac-1",
		"zone_id":      "hall-a",
		"date":         "2025-01-06",
		"time_slot":    "10:00-12:00",
		"actor_type":   "private-person",
		"booking_mode": "strotimer",
		"amount":       "500",
		"reason":       "school group rate",
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var calc api.CalculationDTO
	decode(t, resp, &calc)

	if calc.FinalPrice != "500" {
		t.Errorf("expected overridden 500, got %s", calc.FinalPrice)
	}
	if calc.ComputedPrice == nil || *calc.ComputedPrice != "900" {
		t.Errorf("expected computed baseline 900, got %v", calc.ComputedPrice)
	}
	if len(calc.Overrides) != 1 || calc.Overrides[0].Reason != "school group rate" {
		t.Errorf("expected the override reason on the trail, got %v", calc.Overrides)
	}
}

func TestOverridePrice_RequiresReason(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/quotes/override", map[string]any{
		"facility_id":  "fac-1",
		"zone_id":      "hall-a",
		"date":         "2025-01-06",
		"time_slot":    "10:00-12:00",
		"actor_type":   "private-person",
		"booking_mode": "strotimer",
		"amount":       "500",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 without a reason, got %d", resp.StatusCode)
	}
}

// =============================================================================
// BOOKING SUBMISSION
// =============================================================================

func TestSubmitBooking_PersistsAndLists(t *testing.T) {
	srv, _ := newTestServer(t)

	body := weeklyQuoteBody()
	body["actor_type"] = "lag-foreninger"
	body["booking_mode"] = "fastlan"

	resp := postJSON(t, srv.URL+"/api/bookings", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var submitted api.SubmitResponse
	decode(t, resp, &submitted)

	if len(submitted.Bookings) != 4 {
		t.Fatalf("expected 4 bookings, got %d", len(submitted.Bookings))
	}
	for _, b := range submitted.Bookings {
		if b.Status != "pending" {
			t.Errorf("club seasonal bookings must persist pending, got %s", b.Status)
		}
	}
	if !submitted.Quote.RequiresApproval {
		t.Error("expected the quote flagged for approval")
	}

	// The persisted series shows up in the zone listing.
	listResp, err := http.Get(srv.URL + "/api/zones/hall-a/bookings?from=2025-01-01&to=2025-02-01")
	if err != nil {
		t.Fatal(err)
	}
	var listed []api.BookingDTO
	decode(t, listResp, &listed)
	if len(listed) != 4 {
		t.Errorf("expected 4 listed bookings, got %d", len(listed))
	}
}

// =============================================================================
// RULES
// =============================================================================

func TestRuleEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	createResp := postJSON(t, srv.URL+"/api/rules", map[string]any{
		"id":          "evening",
		"facility_id": "fac-1",
		"zone_id":     "hall-a",
		"type":        "SURCHARGE",
		"priority":    2,
		"config": map[string]any{
			"start_time": "17:00",
			"end_time":   "23:00",
			"percent":    15,
		},
	})
	if createResp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", createResp.StatusCode)
	}
	createResp.Body.Close()

	getResp, err := http.Get(srv.URL + "/api/rules/evening")
	if err != nil {
		t.Fatal(err)
	}
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", getResp.StatusCode)
	}
	var rule map[string]any
	decode(t, getResp, &rule)
	if rule["type"] != "SURCHARGE" {
		t.Errorf("unexpected rule %v", rule)
	}

	listResp, err := http.Get(srv.URL + "/api/rules?facility_id=fac-1")
	if err != nil {
		t.Fatal(err)
	}
	var rules []map[string]any
	decode(t, listResp, &rules)
	if len(rules) != 1 {
		t.Errorf("expected 1 rule, got %d", len(rules))
	}

	missingResp, err := http.Get(srv.URL + "/api/rules/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer missingResp.Body.Close()
	if missingResp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", missingResp.StatusCode)
	}
}

func TestCreateRule_Invalid(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/rules", map[string]any{
		"id": "bad", "facility_id": "fac-1", "type": "SURCHARGE", "priority": 1,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for a surcharge without a percent, got %d", resp.StatusCode)
	}
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestHolidayEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	createResp := postJSON(t, srv.URL+"/api/holidays", map[string]any{
		"id":        "h1",
		"date":      "2025-05-17",
		"name":      "Constitution Day",
		"recurring": true,
	})
	if createResp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", createResp.StatusCode)
	}
	createResp.Body.Close()

	listResp, err := http.Get(srv.URL + "/api/holidays?facility_id=fac-1&year=2025")
	if err != nil {
		t.Fatal(err)
	}
	var holidays []api.HolidayDTO
	decode(t, listResp, &holidays)
	if len(holidays) != 1 || holidays[0].Name != "Constitution Day" {
		t.Fatalf("unexpected holidays %v", holidays)
	}

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/holidays/h1", nil)
	if err != nil {
		t.Fatal(err)
	}
	deleteResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	deleteResp.Body.Close()
	if deleteResp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", deleteResp.StatusCode)
	}

	afterResp, err := http.Get(srv.URL + "/api/holidays?facility_id=fac-1&year=2025")
	if err != nil {
		t.Fatal(err)
	}
	var after []api.HolidayDTO
	decode(t, afterResp, &after)
	if len(after) != 0 {
		t.Errorf("expected no holidays after deletion, got %v", after)
	}
}
