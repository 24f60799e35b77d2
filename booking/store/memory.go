// Package store provides in-memory implementations of the booking storage
// interfaces, for tests and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/civica/booking-engine/booking"
	"github.com/civica/booking-engine/pricing"
	"github.com/civica/booking-engine/recurrence"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	rules     map[string]pricing.Rule
	bookings  map[string][]booking.Booking // keyed by zone
	blackouts map[string][]booking.Blackout
	holidays  map[string]recurrence.Holiday
}

func NewMemory() *Memory {
	return &Memory{
		rules:     make(map[string]pricing.Rule),
		bookings:  make(map[string][]booking.Booking),
		blackouts: make(map[string][]booking.Blackout),
		holidays:  make(map[string]recurrence.Holiday),
	}
}

// Compile-time interface checks
var (
	_ booking.RuleStore    = (*Memory)(nil)
	_ booking.BookingStore = (*Memory)(nil)
	_ booking.HolidayStore = (*Memory)(nil)
)

// -----------------------------------------------------------------------------
// RuleStore
// -----------------------------------------------------------------------------

func (m *Memory) ActiveRules(_ context.Context, facilityID, zoneID string) ([]pricing.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []pricing.Rule
	for _, r := range m.rules {
		if !r.IsActive || r.FacilityID != facilityID {
			continue
		}
		// Facility-wide rules (empty zone) apply to every zone.
		if r.ZoneID != "" && r.ZoneID != zoneID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

func (m *Memory) SaveRule(_ context.Context, rule pricing.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[rule.ID] = rule
	return nil
}

func (m *Memory) Rule(_ context.Context, id string) (pricing.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rules[id]
	if !ok {
		return pricing.Rule{}, booking.ErrRuleNotFound
	}
	return r, nil
}

func (m *Memory) ListRules(_ context.Context, facilityID string) ([]pricing.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []pricing.Rule
	for _, r := range m.rules {
		if r.FacilityID == facilityID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

// -----------------------------------------------------------------------------
// BookingStore
// -----------------------------------------------------------------------------

func (m *Memory) BookingsInRange(_ context.Context, zoneID string, from, to recurrence.Date) ([]booking.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []booking.Booking
	for _, b := range m.bookings[zoneID] {
		if b.Date.AfterOrEqual(from) && b.Date.BeforeOrEqual(to) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) BlackoutsInRange(_ context.Context, zoneID string, from, to recurrence.Date) ([]booking.Blackout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []booking.Blackout
	for _, bl := range m.blackouts[zoneID] {
		if bl.From.BeforeOrEqual(to) && bl.To.AfterOrEqual(from) {
			out = append(out, bl)
		}
	}
	return out, nil
}

func (m *Memory) SaveBookings(_ context.Context, bookings []booking.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range bookings {
		m.bookings[b.ZoneID] = append(m.bookings[b.ZoneID], b)
	}
	return nil
}

func (m *Memory) SaveBlackout(_ context.Context, blackout booking.Blackout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blackouts[blackout.ZoneID] = append(m.blackouts[blackout.ZoneID], blackout)
	return nil
}

// -----------------------------------------------------------------------------
// HolidayStore
// -----------------------------------------------------------------------------

func (m *Memory) IsHoliday(facilityID string, date recurrence.Date) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cal := recurrence.StaticCalendar{Entries: m.holidaySlice()}
	return cal.IsHoliday(facilityID, date)
}

func (m *Memory) Holidays(facilityID string, year int) []recurrence.Holiday {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cal := recurrence.StaticCalendar{Entries: m.holidaySlice()}
	return cal.Holidays(facilityID, year)
}

func (m *Memory) SaveHoliday(_ context.Context, h recurrence.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[h.ID] = h
	return nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.holidays, id)
	return nil
}

// holidaySlice must be called with the lock held.
func (m *Memory) holidaySlice() []recurrence.Holiday {
	out := make([]recurrence.Holiday, 0, len(m.holidays))
	for _, h := range m.holidays {
		out = append(out, h)
	}
	return out
}
