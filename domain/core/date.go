package core

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical on-disk form of a Date
const DateLayout = "2006-01-02"

// Date is a calendar day, always held at midnight UTC so that two dates
// built from different sources compare equal.
type Date time.Time

// NewDate creates a date from its calendar parts
func NewDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf truncates t to its calendar day in t's own location
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses an ISO date (2006-01-02)
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Time returns the underlying time.Time
func (d Date) Time() time.Time { return time.Time(d) }

// IsZero checks if the date is unset
func (d Date) IsZero() bool { return time.Time(d).IsZero() }

func (d Date) String() string { return d.Time().Format(DateLayout) }

func (d Date) Before(o Date) bool { return d.Time().Before(o.Time()) }
func (d Date) After(o Date) bool  { return d.Time().After(o.Time()) }
func (d Date) Equal(o Date) bool  { return d.Time().Equal(o.Time()) }

// Compare returns -1, 0 or +1
func (d Date) Compare(o Date) int { return d.Time().Compare(o.Time()) }

// AddDays moves the date by n calendar days
func (d Date) AddDays(n int) Date { return Date(d.Time().AddDate(0, 0, n)) }

func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }

// IsWeekend reports Saturday or Sunday
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ISOWeek returns the ISO 8601 year and week number
func (d Date) ISOWeek() (year, week int) { return d.Time().ISOWeek() }

// DayIndex returns 0 for Monday through 6 for Sunday
func (d Date) DayIndex() int {
	return (int(d.Weekday()) + 6) % 7
}

// DaysInclusive counts calendar days from..to, both ends included.
// Returns 0 when to is before from.
func DaysInclusive(from, to Date) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Time().Sub(from.Time()).Hours()/24) + 1
}

// MarshalText renders the date as 2006-01-02
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses 2006-01-02
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
