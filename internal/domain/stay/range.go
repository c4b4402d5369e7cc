package stay

import (
	"errors"

	"innkeep/internal/domain/calendar"
)

var (
	// ErrInvalidRange is returned when checkout precedes checkin, or when an
	// overnight stay has zero nights.
	ErrInvalidRange = errors.New("stay: checkout must not precede checkin")
)

// Range is a half-open stay interval [CheckIn, CheckOut). A range with
// CheckIn == CheckOut is a day-stay: a same-day booking with zero nights,
// billed at a flat day rate rather than per night.
type Range struct {
	CheckIn  calendar.Date
	CheckOut calendar.Date
}

// New builds a range, accepting day-stays (checkin == checkout) and rejecting
// inverted intervals.
func New(checkIn, checkOut calendar.Date) (Range, error) {
	r := Range{CheckIn: checkIn, CheckOut: checkOut}
	if checkIn.IsZero() || checkOut.IsZero() || checkOut.Before(checkIn) {
		return Range{}, ErrInvalidRange
	}
	return r, nil
}

// Overnight builds a range that must span at least one night.
func Overnight(checkIn, checkOut calendar.Date) (Range, error) {
	r, err := New(checkIn, checkOut)
	if err != nil {
		return Range{}, err
	}
	if r.IsDayStay() {
		return Range{}, ErrInvalidRange
	}
	return r, nil
}

// Nights counts the whole nights in the range; zero for a day-stay.
func (r Range) Nights() int {
	return calendar.DaysBetween(r.CheckIn, r.CheckOut)
}

// IsDayStay reports whether the range is a zero-night same-day stay.
func (r Range) IsDayStay() bool {
	return r.CheckIn.Equal(r.CheckOut)
}

// ContainsDate reports whether d falls inside the half-open interval.
func (r Range) ContainsDate(d calendar.Date) bool {
	return !d.Before(r.CheckIn) && d.Before(r.CheckOut)
}

// Overlaps implements the half-open interval rule for two overnight ranges:
// [a1,a2) and [b1,b2) overlap iff a1 < b2 && b1 < a2. A checkout on the same
// day as another check-in is not an overlap; the room frees up on checkout day.
func (r Range) Overlaps(other Range) bool {
	return r.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(r.CheckOut)
}

// Conflicts decides whether two stays on the same room collide. Day-stays are
// zero-width intervals at their check-in date: they collide with any overnight
// range covering that date, and two day-stays on the same date collide only
// when sameDayStayConflicts is set (hotel policy, see availability.Policy).
func Conflicts(a, b Range, sameDayStayConflicts bool) bool {
	switch {
	case a.IsDayStay() && b.IsDayStay():
		return sameDayStayConflicts && a.CheckIn.Equal(b.CheckIn)
	case a.IsDayStay():
		return b.ContainsDate(a.CheckIn)
	case b.IsDayStay():
		return a.ContainsDate(b.CheckIn)
	default:
		return a.Overlaps(b)
	}
}
