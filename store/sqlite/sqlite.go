/*
Package sqlite provides a SQLite-backed implementation of the booking
storage interfaces.

PURPOSE:
  Implements RuleStore, BookingStore, and HolidayStore using SQLite. In
  production the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

KEY TABLES:
  price_rules:  Pricing directives scoped by facility/zone
  bookings:     One row per accepted occurrence, linked by series_id
  blackouts:    Zone closure periods
  holidays:     Facility-specific and municipality-wide holidays

INDEXES:
  - idx_rules_facility_active: Rule selection (quote hot path)
  - idx_bookings_zone_date: Conflict lookups
  - idx_holidays_facility_date: Holiday checks during expansion

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's WAL mode. In
  production with PostgreSQL, database-level concurrency control handles
  this instead.

USAGE:
  store, err := sqlite.New("./data/booking.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - booking/store.go: Interface definitions
  - booking/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/civica/booking-engine/booking"
	"github.com/civica/booking-engine/pricing"
	"github.com/civica/booking-engine/recurrence"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Compile-time interface checks
var (
	_ booking.RuleStore    = (*Store)(nil)
	_ booking.BookingStore = (*Store)(nil)
	_ booking.HolidayStore = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A ":memory:" database exists per connection; one pooled connection
	// keeps the schema visible everywhere. Access is serialized by the
	// store's mutex anyway.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Price rules
	CREATE TABLE IF NOT EXISTS price_rules (
		id TEXT PRIMARY KEY,
		facility_id TEXT NOT NULL,
		zone_id TEXT NOT NULL DEFAULT '',
		rule_type TEXT NOT NULL,
		priority INTEGER NOT NULL,
		actor_type TEXT NOT NULL DEFAULT '',
		days_of_week TEXT NOT NULL DEFAULT '',
		window_start INTEGER,
		window_end INTEGER,
		price TEXT NOT NULL DEFAULT '0',
		percent TEXT NOT NULL DEFAULT '0',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rules_facility_active
		ON price_rules(facility_id, is_active, priority);
	CREATE INDEX IF NOT EXISTS idx_rules_zone
		ON price_rules(zone_id);

	-- Bookings (one row per accepted occurrence)
	CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		series_id TEXT NOT NULL,
		zone_id TEXT NOT NULL,
		booking_date TEXT NOT NULL,
		slot TEXT NOT NULL,
		actor_type TEXT NOT NULL,
		mode TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bookings_zone_date
		ON bookings(zone_id, booking_date);
	CREATE INDEX IF NOT EXISTS idx_bookings_series
		ON bookings(series_id);
	CREATE INDEX IF NOT EXISTS idx_bookings_status
		ON bookings(status);

	-- Blackout periods
	CREATE TABLE IF NOT EXISTS blackouts (
		id TEXT PRIMARY KEY,
		zone_id TEXT NOT NULL,
		from_date TEXT NOT NULL,
		to_date TEXT NOT NULL,
		reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_blackouts_zone
		ON blackouts(zone_id, from_date, to_date);

	-- Holidays (facility-specific and municipality-wide)
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		facility_id TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		recurring BOOLEAN DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_facility_date
		ON holidays(facility_id, date);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_unique
		ON holidays(facility_id, date, name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RULE STORE (booking.RuleStore interface)
// =============================================================================

func (s *Store) SaveRule(ctx context.Context, rule pricing.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var windowStart, windowEnd sql.NullInt64
	if rule.Window != nil {
		windowStart = sql.NullInt64{Int64: int64(rule.Window.Start), Valid: true}
		windowEnd = sql.NullInt64{Int64: int64(rule.Window.End), Valid: true}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO price_rules
		(id, facility_id, zone_id, rule_type, priority, actor_type, days_of_week,
		 window_start, window_end, price, percent, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			facility_id = excluded.facility_id,
			zone_id = excluded.zone_id,
			rule_type = excluded.rule_type,
			priority = excluded.priority,
			actor_type = excluded.actor_type,
			days_of_week = excluded.days_of_week,
			window_start = excluded.window_start,
			window_end = excluded.window_end,
			price = excluded.price,
			percent = excluded.percent,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		rule.ID, rule.FacilityID, rule.ZoneID, rule.Type, rule.Priority,
		rule.ActorType, encodeDays(rule.DaysOfWeek),
		windowStart, windowEnd,
		rule.Price.String(), rule.Percent.String(), rule.IsActive,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}
	return nil
}

func (s *Store) Rule(ctx context.Context, id string) (pricing.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules, err := s.queryRules(ctx, ruleColumns+" FROM price_rules WHERE id = ?", id)
	if err != nil {
		return pricing.Rule{}, err
	}
	if len(rules) == 0 {
		return pricing.Rule{}, booking.ErrRuleNotFound
	}
	return rules[0], nil
}

func (s *Store) ActiveRules(ctx context.Context, facilityID, zoneID string) ([]pricing.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := ruleColumns + `
		FROM price_rules
		WHERE facility_id = ? AND is_active = TRUE
		  AND (zone_id = '' OR zone_id = ?)
		ORDER BY priority ASC
	`
	return s.queryRules(ctx, query, facilityID, zoneID)
}

func (s *Store) ListRules(ctx context.Context, facilityID string) ([]pricing.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := ruleColumns + `
		FROM price_rules
		WHERE facility_id = ?
		ORDER BY priority ASC
	`
	return s.queryRules(ctx, query, facilityID)
}

const ruleColumns = `
	SELECT id, facility_id, zone_id, rule_type, priority, actor_type, days_of_week,
	       window_start, window_end, price, percent, is_active`

func (s *Store) queryRules(ctx context.Context, query string, args ...any) ([]pricing.Rule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var rules []pricing.Rule
	for rows.Next() {
		var (
			rule                   pricing.Rule
			ruleType               string
			days                   string
			windowStart, windowEnd sql.NullInt64
			price, percent         string
		)
		if err := rows.Scan(
			&rule.ID, &rule.FacilityID, &rule.ZoneID, &ruleType, &rule.Priority,
			&rule.ActorType, &days, &windowStart, &windowEnd, &price, &percent,
			&rule.IsActive,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}

		rule.Type = pricing.RuleType(ruleType)
		rule.DaysOfWeek = decodeDays(days)
		if windowStart.Valid && windowEnd.Valid {
			window := recurrence.ClockRange{
				Start: recurrence.ClockTime(windowStart.Int64),
				End:   recurrence.ClockTime(windowEnd.Int64),
			}
			rule.Window = &window
		}
		if rule.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("failed to parse rule price: %w", err)
		}
		if rule.Percent, err = decimal.NewFromString(percent); err != nil {
			return nil, fmt.Errorf("failed to parse rule percent: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// =============================================================================
// BOOKING STORE (booking.BookingStore interface)
// =============================================================================

func (s *Store) SaveBookings(ctx context.Context, bookings []booking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO bookings
		(id, series_id, zone_id, booking_date, slot, actor_type, mode, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, b := range bookings {
		if _, err := sqlTx.ExecContext(ctx, query,
			b.ID, b.SeriesID, b.ZoneID, b.Date.String(), b.Slot,
			b.Actor, b.Mode, b.Status, now,
		); err != nil {
			return fmt.Errorf("failed to save booking %s: %w", b.ID, err)
		}
	}
	return sqlTx.Commit()
}

func (s *Store) BookingsInRange(ctx context.Context, zoneID string, from, to recurrence.Date) ([]booking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, series_id, zone_id, booking_date, slot, actor_type, mode, status
		FROM bookings
		WHERE zone_id = ? AND booking_date >= ? AND booking_date <= ?
		ORDER BY booking_date ASC, slot ASC
	`
	rows, err := s.db.QueryContext(ctx, query, zoneID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []booking.Booking
	for rows.Next() {
		var (
			b    booking.Booking
			date string
		)
		if err := rows.Scan(&b.ID, &b.SeriesID, &b.ZoneID, &date, &b.Slot,
			&b.Actor, &b.Mode, &b.Status); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		if b.Date, err = recurrence.ParseDate(date); err != nil {
			return nil, fmt.Errorf("failed to parse booking date: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (s *Store) SaveBlackout(ctx context.Context, bl booking.Blackout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blackouts (id, zone_id, from_date, to_date, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, bl.ID, bl.ZoneID, bl.From.String(), bl.To.String(), bl.Reason, now)
	if err != nil {
		return fmt.Errorf("failed to save blackout: %w", err)
	}
	return nil
}

func (s *Store) BlackoutsInRange(ctx context.Context, zoneID string, from, to recurrence.Date) ([]booking.Blackout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, zone_id, from_date, to_date, reason
		FROM blackouts
		WHERE zone_id = ? AND from_date <= ? AND to_date >= ?
	`
	rows, err := s.db.QueryContext(ctx, query, zoneID, to.String(), from.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query blackouts: %w", err)
	}
	defer rows.Close()

	var blackouts []booking.Blackout
	for rows.Next() {
		var (
			bl         booking.Blackout
			fromS, toS string
		)
		if err := rows.Scan(&bl.ID, &bl.ZoneID, &fromS, &toS, &bl.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan blackout: %w", err)
		}
		if bl.From, err = recurrence.ParseDate(fromS); err != nil {
			return nil, err
		}
		if bl.To, err = recurrence.ParseDate(toS); err != nil {
			return nil, err
		}
		blackouts = append(blackouts, bl)
	}
	return blackouts, rows.Err()
}

// =============================================================================
// HOLIDAY STORE (booking.HolidayStore interface)
// =============================================================================

func (s *Store) SaveHoliday(ctx context.Context, h recurrence.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, facility_id, date, name, recurring, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, h.ID, h.FacilityID, h.Date.String(), h.Name, h.Recurring, now)
	if err != nil {
		return fmt.Errorf("failed to save holiday: %w", err)
	}
	return nil
}

func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM holidays WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	return nil
}

// IsHoliday implements recurrence.HolidayCalendar. Lookup failures report
// "not a holiday"; pattern expansion must not fail on a storage hiccup.
func (s *Store) IsHoliday(facilityID string, date recurrence.Date) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT COUNT(*) FROM holidays
		WHERE (facility_id = '' OR facility_id = ?)
		  AND (date = ? OR (recurring AND substr(date, 6) = ?))
	`
	var count int
	err := s.db.QueryRow(query, facilityID, date.String(), date.String()[5:]).Scan(&count)
	return err == nil && count > 0
}

// Holidays implements recurrence.HolidayCalendar.
func (s *Store) Holidays(facilityID string, year int) []recurrence.Holiday {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, facility_id, date, name, recurring
		FROM holidays
		WHERE (facility_id = '' OR facility_id = ?)
		  AND (recurring OR substr(date, 1, 4) = ?)
		ORDER BY date ASC
	`
	rows, err := s.db.Query(query, facilityID, fmt.Sprintf("%04d", year))
	if err != nil {
		return nil
	}
	defer rows.Close()

	var holidays []recurrence.Holiday
	for rows.Next() {
		var (
			h    recurrence.Holiday
			date string
		)
		if err := rows.Scan(&h.ID, &h.FacilityID, &date, &h.Name, &h.Recurring); err != nil {
			return holidays
		}
		if h.Date, err = recurrence.ParseDate(date); err != nil {
			continue
		}
		holidays = append(holidays, h)
	}
	return holidays
}

// =============================================================================
// HELPERS
// =============================================================================

// encodeDays serializes a weekday filter as a comma-joined list ("0,5,6").
func encodeDays(days []time.Weekday) string {
	if len(days) == 0 {
		return ""
	}
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = fmt.Sprintf("%d", int(d))
	}
	return strings.Join(parts, ",")
}

func decodeDays(s string) []time.Weekday {
	if s == "" {
		return nil
	}
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		var d int
		if _, err := fmt.Sscanf(part, "%d", &d); err == nil {
			days = append(days, time.Weekday(d))
		}
	}
	return days
}
