/*
handlers.go - HTTP API handlers for the booking engine

PURPOSE:
  Exposes the recurrence and pricing engines via REST. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Occurrences:
    POST   /api/occurrences/preview  Expand a pattern (no persistence)

  Quotes:
    POST   /api/quotes               Quote a series (expand + conflicts + price)
    POST   /api/quotes/price         Price one booking context
    POST   /api/quotes/override      Price with a manual override

  Bookings:
    POST   /api/bookings             Quote and persist a series
    GET    /api/zones/{id}/bookings  Existing bookings (conflict input)

  Rules:
    GET    /api/rules?facility_id=   List rules for a facility
    POST   /api/rules                Create/update a rule from JSON
    GET    /api/rules/{id}           Get one rule

  Holidays:
    GET    /api/holidays?facility_id=&year=
    POST   /api/holidays
    DELETE /api/holidays/{id}

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (every requested occurrence collides)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/civica/booking-engine/booking"
	"github.com/civica/booking-engine/factory"
	"github.com/civica/booking-engine/pricing"
	"github.com/civica/booking-engine/recurrence"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Rules    booking.RuleStore
	Bookings booking.BookingStore
	Holidays booking.HolidayStore

	Series   *booking.SeriesService
	Patterns *factory.PatternFactory
	RuleConv *factory.RuleFactory
}

// NewHandler wires a handler around one storage backend implementing all
// three store interfaces.
func NewHandler(rules booking.RuleStore, bookings booking.BookingStore, holidays booking.HolidayStore) *Handler {
	return &Handler{
		Rules:    rules,
		Bookings: bookings,
		Holidays: holidays,
		Series: &booking.SeriesService{
			Recurrence: &recurrence.Engine{},
			Pricing:    &pricing.Engine{},
			Conflicts:  &booking.ConflictChecker{},
			Rules:      rules,
			Bookings:   bookings,
		},
		Patterns: factory.NewPatternFactory(),
		RuleConv: factory.NewRuleFactory(),
	}
}

// =============================================================================
// OCCURRENCE PREVIEW
// =============================================================================

func (h *Handler) PreviewOccurrences(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	pattern, err := h.Patterns.FromJSON(req.Pattern)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pattern", err)
		return
	}
	start, err := parseStartDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}

	engine := recurrence.Engine{}
	if req.SkipHolidays {
		engine.Holidays = h.Holidays
		engine.FacilityID = req.FacilityID
	}

	result := engine.Generate(pattern, start, req.ZoneID, req.MaxOccurrences)
	for _, d := range result.Diagnostics {
		log.Printf("preview %s: %s", req.ZoneID, d)
	}
	desc := engine.Describe(pattern)

	resp := PreviewResponse{
		Occurrences: make([]OccurrenceDTO, 0, len(result.Occurrences)),
		Description: desc.Label,
		PatternType: string(desc.Type),
		Weekdays:    desc.Weekdays,
		Diagnostics: result.Diagnostics,
	}
	for _, occ := range result.Occurrences {
		resp.Occurrences = append(resp.Occurrences, occurrenceDTO(occ))
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// QUOTES
// =============================================================================

func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	quote, err := h.quoteSeries(r, req)
	if err != nil {
		writeQuoteError(w, quote, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteDTO(quote))
}

func (h *Handler) PriceBooking(w http.ResponseWriter, r *http.Request) {
	var req PriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	calc, err := h.priceSingle(r, req)
	if err != nil {
		if errors.Is(err, booking.ErrRuleFetch) {
			// Degraded quote: report it but still return the calculation.
			log.Printf("price: %v", err)
		} else {
			writeError(w, http.StatusBadRequest, "Invalid booking context", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, calculationDTO(calc))
}

func (h *Handler) OverridePrice(w http.ResponseWriter, r *http.Request) {
	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "Override requires a reason", nil)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid override amount", err)
		return
	}

	calc, err := h.priceSingle(r, req.PriceRequest)
	if err != nil && !errors.Is(err, booking.ErrRuleFetch) {
		writeError(w, http.StatusBadRequest, "Invalid booking context", err)
		return
	}

	overridden := pricing.ApplyOverride(calc, amount, req.Reason)
	writeJSON(w, http.StatusOK, calculationDTO(overridden))
}

// =============================================================================
// BOOKINGS
// =============================================================================

func (h *Handler) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	quote, err := h.quoteSeries(r, QuoteRequest(req))
	if err != nil {
		writeQuoteError(w, quote, err)
		return
	}

	seriesReq, err := h.seriesRequest(QuoteRequest(req))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err)
		return
	}

	bookings, err := h.Series.Submit(r.Context(), quote, seriesReq)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist booking", err)
		return
	}

	resp := SubmitResponse{Quote: quoteDTO(quote)}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, bookingDTO(b))
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) ListZoneBookings(w http.ResponseWriter, r *http.Request) {
	zoneID := chi.URLParam(r, "id")
	from, err := parseStartDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date", err)
		return
	}
	to := from.AddDays(365)
	if toParam := r.URL.Query().Get("to"); toParam != "" {
		if to, err = recurrence.ParseDate(toParam); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date", err)
			return
		}
	}

	bookings, err := h.Bookings.BookingsInRange(r.Context(), zoneID, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bookings", err)
		return
	}

	dtos := make([]BookingDTO, 0, len(bookings))
	for _, b := range bookings {
		dtos = append(dtos, bookingDTO(b))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PRICE RULES
// =============================================================================

func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	facilityID := r.URL.Query().Get("facility_id")
	if facilityID == "" {
		writeError(w, http.StatusBadRequest, "facility_id query parameter required", nil)
		return
	}

	rules, err := h.Rules.ListRules(r.Context(), facilityID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rules", err)
		return
	}

	dtos := make([]factory.RuleJSON, 0, len(rules))
	for _, rule := range rules {
		dtos = append(dtos, h.RuleConv.ToJSON(rule))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var rj factory.RuleJSON
	if err := json.NewDecoder(r.Body).Decode(&rj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rule, err := h.RuleConv.FromJSON(rj)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rule", err)
		return
	}
	if err := h.Rules.SaveRule(r.Context(), rule); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save rule", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.RuleConv.ToJSON(rule))
}

func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.Rules.Rule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, booking.ErrRuleNotFound) {
			writeError(w, http.StatusNotFound, "Rule not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get rule", err)
		return
	}
	writeJSON(w, http.StatusOK, h.RuleConv.ToJSON(rule))
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	facilityID := r.URL.Query().Get("facility_id")
	year := time.Now().Year()
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}

	holidays := h.Holidays.Holidays(facilityID, year)
	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, HolidayDTO{
			ID:         hol.ID,
			FacilityID: hol.FacilityID,
			Date:       hol.Date.String(),
			Name:       hol.Name,
			Recurring:  hol.Recurring,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var dto HolidayDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := recurrence.ParseDate(dto.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	if dto.ID == "" {
		dto.ID = "holiday-" + dto.Date + "-" + dto.Name
	}

	holiday := recurrence.Holiday{
		ID:         dto.ID,
		FacilityID: dto.FacilityID,
		Date:       date,
		Name:       dto.Name,
		Recurring:  dto.Recurring,
	}
	if err := h.Holidays.SaveHoliday(r.Context(), holiday); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Holidays.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete holiday", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

// invalidInput marks request-assembly failures so they map to 400.
type invalidInput struct{ err error }

func (e *invalidInput) Error() string { return e.err.Error() }
func (e *invalidInput) Unwrap() error { return e.err }

func (h *Handler) quoteSeries(r *http.Request, req QuoteRequest) (*booking.Quote, error) {
	seriesReq, err := h.seriesRequest(req)
	if err != nil {
		return nil, &invalidInput{err: err}
	}
	return h.Series.Quote(r.Context(), seriesReq)
}

func (h *Handler) seriesRequest(req QuoteRequest) (booking.SeriesRequest, error) {
	pattern, err := h.Patterns.FromJSON(req.Pattern)
	if err != nil {
		return booking.SeriesRequest{}, err
	}
	start, err := parseStartDate(req.StartDate)
	if err != nil {
		return booking.SeriesRequest{}, err
	}
	return booking.SeriesRequest{
		Pattern:        pattern,
		Start:          start,
		FacilityID:     req.FacilityID,
		ZoneID:         req.ZoneID,
		Actor:          booking.ActorType(req.ActorType),
		Mode:           booking.Mode(req.Mode),
		EventType:      req.EventType,
		AgeGroup:       req.AgeGroup,
		MaxOccurrences: req.MaxOccurrences,
	}, nil
}

func (h *Handler) priceSingle(r *http.Request, req PriceRequest) (pricing.Calculation, error) {
	date, err := parseStartDate(req.Date)
	if err != nil {
		return pricing.Calculation{}, err
	}
	window, err := recurrence.ParseSlot(req.TimeSlot)
	if err != nil {
		return pricing.Calculation{}, err
	}

	pctx := pricing.Context{
		FacilityID: req.FacilityID,
		ZoneID:     req.ZoneID,
		Date:       date,
		Window:     window,
		ActorType:  req.ActorType,
		Mode:       req.Mode,
		EventType:  req.EventType,
		AgeGroup:   req.AgeGroup,
	}
	return h.Series.PriceSingle(r.Context(), pctx,
		booking.ActorType(req.ActorType), booking.Mode(req.Mode))
}

func parseStartDate(s string) (recurrence.Date, error) {
	if s == "" {
		return recurrence.Today(), nil
	}
	return recurrence.ParseDate(s)
}

func writeQuoteError(w http.ResponseWriter, quote *booking.Quote, err error) {
	var bad *invalidInput
	switch {
	case errors.Is(err, booking.ErrAllConflicted) && quote != nil:
		// The quote still carries the conflict details; return it with 409.
		writeJSON(w, http.StatusConflict, quoteDTO(quote))
	case errors.As(err, &bad), booking.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid booking request", err)
	default:
		writeError(w, http.StatusInternalServerError, "Failed to quote booking", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
