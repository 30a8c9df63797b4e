// Package calendar answers trading-day questions for US equity markets.
package calendar

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
)

// MaxLookbackDays bounds the backward walk in LastTradingDay.
const MaxLookbackDays = 30

const dateLayout = "2006-01-02"

var (
	// ErrNoTradingDay is returned when no trading day exists within MaxLookbackDays.
	ErrNoTradingDay = errors.New("no trading day within lookback window")
	// ErrInvalidHolidays is returned when the holiday source fails validation.
	ErrInvalidHolidays = errors.New("invalid holiday data")
)

// Market statuses accepted in the holiday source.
const (
	StatusClosed     = "Closed"
	StatusEarlyClose = "Early Close"
)

type holidayRow struct {
	Date   string `csv:"Date"`
	Status string `csv:"Market Status"`
}

// Calendar is immutable after construction and safe for concurrent use.
type Calendar struct {
	closed     map[string]struct{}
	earlyClose map[string]struct{}
}

// New builds a calendar from explicit closed and early-close dates.
func New(closed, earlyClose []time.Time) *Calendar {
	c := &Calendar{
		closed:     make(map[string]struct{}, len(closed)),
		earlyClose: make(map[string]struct{}, len(earlyClose)),
	}
	for _, d := range closed {
		c.closed[key(d)] = struct{}{}
	}
	for _, d := range earlyClose {
		c.earlyClose[key(d)] = struct{}{}
	}
	return c
}

// Load reads and validates a holiday CSV file.
func Load(path string) (*Calendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open holidays: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a CSV with header "Date,Market Status". Any bad row rejects
// the whole source.
func Parse(r io.Reader) (*Calendar, error) {
	var rows []*holidayRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHolidays, err)
	}
	c := New(nil, nil)
	for i, row := range rows {
		line := i + 2
		d, err := time.Parse(dateLayout, strings.TrimSpace(row.Date))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad date %q", ErrInvalidHolidays, line, row.Date)
		}
		switch strings.TrimSpace(row.Status) {
		case StatusClosed:
			c.closed[key(d)] = struct{}{}
		case StatusEarlyClose, "EarlyClose":
			c.earlyClose[key(d)] = struct{}{}
		default:
			return nil, fmt.Errorf("%w: line %d: unknown market status %q", ErrInvalidHolidays, line, row.Status)
		}
	}
	return c, nil
}

// IsTradingDay is false on weekends and full-closure holidays.
// Early-close days are trading days.
func (c *Calendar) IsTradingDay(d time.Time) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	_, closed := c.closed[key(d)]
	return !closed
}

// IsEarlyClose reports whether d is a shortened session.
func (c *Calendar) IsEarlyClose(d time.Time) bool {
	_, ok := c.earlyClose[key(d)]
	return ok
}

// LastTradingDay returns the closest trading day strictly before d.
func (c *Calendar) LastTradingDay(d time.Time) (time.Time, error) {
	day := Day(d)
	for i := 1; i <= MaxLookbackDays; i++ {
		prev := day.AddDate(0, 0, -i)
		if c.IsTradingDay(prev) {
			return prev, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: before %s", ErrNoTradingDay, day.Format(dateLayout))
}

// TradingDaysBetween lists trading days in [start, end], oldest first.
func (c *Calendar) TradingDaysBetween(start, end time.Time) []time.Time {
	var days []time.Time
	for d := Day(start); !d.After(Day(end)); d = d.AddDate(0, 0, 1) {
		if c.IsTradingDay(d) {
			days = append(days, d)
		}
	}
	return days
}

// Day truncates t to its calendar date at midnight UTC, keeping the
// year, month and day as seen in t's own location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a Day.
func ParseDay(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

// Format renders a day as YYYY-MM-DD.
func Format(d time.Time) string { return d.Format(dateLayout) }

func key(d time.Time) string { return d.Format(dateLayout) }
