package rates

import (
	"errors"

	"innkeep/internal/domain/calendar"
	"innkeep/internal/domain/shared/money"
	"innkeep/internal/domain/stay"
)

var (
	// ErrNegativeRate is returned when a configured rate is below zero.
	ErrNegativeRate = errors.New("rates: configured rate must not be negative")
	// ErrMissingDayStayRate is returned for a day-stay quote against a card
	// with no day rate configured.
	ErrMissingDayStayRate = errors.New("rates: room has no day-stay rate configured")
	// ErrCardNotFound is returned by repositories when a room has no card.
	ErrCardNotFound = errors.New("rates: rate card not found")
)

// Card holds a room's configured prices. Weekday and Weekend override Base
// per night when present; DayStay applies only to zero-night same-day stays.
type Card struct {
	RoomID  string
	Base    money.Money
	Weekday *money.Money
	Weekend *money.Money
	DayStay *money.Money
}

// Validate checks that every configured rate is non-negative and shares the
// base currency.
func (c Card) Validate() error {
	if c.Base.Currency == "" {
		return money.ErrInvalidCurrency
	}
	for _, rate := range []*money.Money{&c.Base, c.Weekday, c.Weekend, c.DayStay} {
		if rate == nil {
			continue
		}
		if rate.IsNegative() {
			return ErrNegativeRate
		}
		if rate.Currency != c.Base.Currency {
			return money.ErrCurrencyMismatch
		}
	}
	return nil
}

// nightlyRate selects the price for a single night: weekend override on
// Saturday/Sunday, weekday override otherwise, base as the fallback.
func (c Card) nightlyRate(night calendar.Date) money.Money {
	if night.IsWeekend() && c.Weekend != nil {
		return *c.Weekend
	}
	if !night.IsWeekend() && c.Weekday != nil {
		return *c.Weekday
	}
	return c.Base
}

// NightRate is one line of a quote's per-night breakdown.
type NightRate struct {
	Date calendar.Date
	Rate money.Money
}

// Breakdown is the resolved base charge for a stay before adjustments.
type Breakdown struct {
	Nights []NightRate
	Total  money.Money
}

// Resolve computes the base amount for a stay on the given card, returning a
// per-night breakdown for display and audit. Day-stays bill the flat day rate
// as a single line on the check-in date.
func Resolve(card Card, r stay.Range) (Breakdown, error) {
	if err := card.Validate(); err != nil {
		return Breakdown{}, err
	}
	if r.IsDayStay() {
		if card.DayStay == nil {
			return Breakdown{}, ErrMissingDayStayRate
		}
		return Breakdown{
			Nights: []NightRate{{Date: r.CheckIn, Rate: *card.DayStay}},
			Total:  *card.DayStay,
		}, nil
	}

	nights := r.Nights()
	if nights < 1 {
		return Breakdown{}, stay.ErrInvalidRange
	}
	out := Breakdown{
		Nights: make([]NightRate, 0, nights),
		Total:  money.Zero(card.Base.Currency),
	}
	for i := 0; i < nights; i++ {
		night := r.CheckIn.AddDays(i)
		rate := card.nightlyRate(night)
		out.Nights = append(out.Nights, NightRate{Date: night, Rate: rate})
		total, err := out.Total.Add(rate)
		if err != nil {
			return Breakdown{}, err
		}
		out.Total = total
	}
	return out, nil
}
