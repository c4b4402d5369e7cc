package calendar

import (
	"fmt"
	"time"
)

// Date is a timezone-free calendar day. It is pinned to midnight UTC so the
// same "YYYY-MM-DD" string always maps to the same weekday regardless of the
// host timezone.
type Date struct {
	t time.Time
}

// FormatError reports a string that is not a well-formed or possible calendar
// date. It carries the offending input so callers can render a field-level
// message.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("calendar: invalid date %q, want YYYY-MM-DD", e.Input)
}

// Parse reads a "YYYY-MM-DD" string into a Date. Impossible dates such as
// month 13 or February 30 are rejected, not normalized.
func Parse(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, &FormatError{Input: s}
	}
	return Date{t: t.UTC()}, nil
}

// MustParse is Parse that panics; for tests and fixtures.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FromTime truncates a timestamp to its UTC calendar day.
func FromTime(t time.Time) Date {
	t = t.UTC()
	return Date{t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// String renders the date back to "YYYY-MM-DD". Round-trip law:
// Parse(d.String()) == d for every valid d.
func (d Date) String() string {
	return d.t.Format(time.DateOnly)
}

// AddDays returns the date n whole days later (earlier when negative),
// carrying correctly across month, year and leap-day boundaries.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// DaysBetween counts whole days from a to b; negative when b precedes a.
// Both dates sit at midnight UTC so the division is exact.
func DaysBetween(a, b Date) int {
	return int(b.t.Sub(a.t) / (24 * time.Hour))
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func (d Date) IsWeekend() bool {
	wd := d.t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

func (d Date) After(other Date) bool { return d.t.After(other.t) }

func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

func (d Date) IsZero() bool { return d.t.IsZero() }

// Time exposes the underlying midnight-UTC instant for persistence layers.
func (d Date) Time() time.Time { return d.t }

// MarshalJSON renders the date as a quoted "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return &FormatError{Input: s}
	}
	parsed, err := Parse(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
