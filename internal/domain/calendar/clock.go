package calendar

import "time"

// Clock supplies "now" to operations that need it. Handlers receive a Clock
// instead of reading the wall clock so tests can pin time.
type Clock func() time.Time

// SystemClock reads the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// Today resolves the clock's current calendar day.
func Today(clock Clock) Date {
	if clock == nil {
		clock = SystemClock
	}
	return FromTime(clock())
}
