// Package calendar fixes the shop's notion of "today".
//
// Invoice numbers, due dates and daily snapshots are all keyed by a calendar
// date in the shop's time zone, never by the server's local zone.
package calendar

import (
	"fmt"
	"sync"
	"time"
)

// DateLayout is the canonical date format used in keys and URLs.
const DateLayout = "2006-01-02"

// Clock supplies the current instant and the shop time zone.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type systemClock struct {
	loc *time.Location
}

// NewSystemClock returns a wall clock bound to loc (UTC when nil).
func NewSystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

// LoadClock resolves an IANA zone name.
func LoadClock(zone string) (Clock, error) {
	if zone == "" {
		return NewSystemClock(time.UTC), nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", zone, err)
	}
	return NewSystemClock(loc), nil
}

func (c systemClock) Now() time.Time           { return time.Now().In(c.loc) }
func (c systemClock) Location() *time.Location { return c.loc }

// ManualClock is a settable clock for tests and seeding.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
	loc *time.Location
}

// NewManualClock starts at now in loc (UTC when nil).
func NewManualClock(now time.Time, loc *time.Location) *ManualClock {
	if loc == nil {
		loc = time.UTC
	}
	return &ManualClock{now: now, loc: loc}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.In(c.loc)
}

func (c *ManualClock) Location() *time.Location { return c.loc }

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Today returns midnight of the current shop date.
func Today(c Clock) time.Time {
	return StartOfDay(c.Now(), c.Location())
}

// StartOfDay truncates t to midnight of its date in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayRange returns [start, end) covering the calendar date of day in loc.
func DayRange(day time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(day, loc)
	return start, start.AddDate(0, 0, 1)
}

// ParseDate parses YYYY-MM-DD as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween counts whole calendar days from a to b (negative when b is earlier).
func DaysBetween(a, b time.Time, loc *time.Location) int {
	a0, b0 := StartOfDay(a, loc), StartOfDay(b, loc)
	// calendar arithmetic to stay correct across DST shifts
	ua := time.Date(a0.Year(), a0.Month(), a0.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b0.Year(), b0.Month(), b0.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// PeriodRange returns [start, end) of the named period (day, week, month, year)
// containing anchor. Weeks start on Monday.
func PeriodRange(period string, anchor time.Time, loc *time.Location) (time.Time, time.Time, error) {
	day := StartOfDay(anchor, loc)
	switch period {
	case "day", "":
		return day, day.AddDate(0, 0, 1), nil
	case "week":
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7), nil
	case "month":
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0), nil
	case "year":
		start := time.Date(day.Year(), 1, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown period %q", period)
	}
}
