package booking

import (
	"context"

	"innkeep/internal/app/queries"
	"innkeep/internal/app/uow"
	"innkeep/internal/domain/availability"
	"innkeep/internal/domain/calendar"
	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/rates"
	"innkeep/internal/domain/shared/money"
	"innkeep/internal/domain/stay"
)

const quoteKey = "booking.quote"

// QuoteQuery prices a prospective stay without persisting anything.
type QuoteQuery struct {
	RoomID    string `validate:"required"`
	CheckIn   calendar.Date
	CheckOut  calendar.Date
	DayStay   bool
	Guests    int `validate:"gte=1"`
	ExtraBeds int `validate:"gte=0"`
	ExtraWood int `validate:"gte=0"`
	// Discount and TopUp are minor units in the room's currency.
	Discount int64 `validate:"gte=0"`
	TopUp    int64 `validate:"gte=0"`
}

func (q QuoteQuery) Key() string { return quoteKey }

// NightLine is one night of the quote's audit breakdown.
type NightLine struct {
	Date calendar.Date `json:"date"`
	Rate money.Money   `json:"rate"`
}

// Quote is the transient pricing result returned to the caller; it is never
// persisted and its total is recomputed server-side on confirm.
type Quote struct {
	RoomID   string          `json:"room_id"`
	CheckIn  calendar.Date   `json:"check_in"`
	CheckOut calendar.Date   `json:"check_out"`
	Nights   int             `json:"nights"`
	DayStay  bool            `json:"day_stay"`
	Lines    []NightLine     `json:"nightly_breakdown"`
	Base     money.Money     `json:"base_amount"`
	Extras   money.Money     `json:"extras_amount"`
	Discount money.Money     `json:"discount_amount"`
	TopUp    money.Money     `json:"top_up_amount"`
	Total    money.Money     `json:"total_amount"`
	Amounts  pricing.Outcome `json:"-"`
	Stay     stay.Range      `json:"-"`
}

// QuoteHandler answers pricing/availability questions against the latest
// reservation set supplied by the storage collaborator.
type QuoteHandler struct {
	UoW    uow.Factory
	Tariff pricing.Tariff
	Policy availability.Policy
	Clock  calendar.Clock
}

func (h *QuoteHandler) Handle(ctx context.Context, q QuoteQuery) (*Quote, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	if !ok {
		if h.UoW == nil {
			return nil, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoW.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return nil, wrapStorage(err)
		}
		managed = true
	}
	if managed {
		defer func() { _ = unit.Rollback(ctx) }()
	}
	return computeQuote(ctx, unit, q, h.Tariff, h.Policy, h.Clock)
}

// computeQuote is the single pricing path: range validation, availability,
// rate resolution, adjustments. Confirm replays it inside its transaction so
// a caller-supplied total never reaches storage.
func computeQuote(
	ctx context.Context,
	unit uow.UnitOfWork,
	q QuoteQuery,
	tariff pricing.Tariff,
	policy availability.Policy,
	clock calendar.Clock,
) (*Quote, error) {
	r, err := buildRange(q)
	if err != nil {
		return nil, err
	}
	if r.CheckIn.Before(calendar.Today(clock)) {
		return nil, ErrCheckInInPast
	}

	existing, err := unit.Reservations().ListByRoom(ctx, q.RoomID)
	if err != nil {
		return nil, wrapStorage(err)
	}
	decision := availability.Check(q.RoomID, r, existing, policy)
	if err := decision.Err(q.RoomID); err != nil {
		// Unavailable rooms are never priced.
		return nil, err
	}

	card, err := unit.RateCards().ByRoom(ctx, q.RoomID)
	if err != nil {
		return nil, wrapStorage(err)
	}
	breakdown, err := rates.Resolve(card, r)
	if err != nil {
		return nil, err
	}

	currency := card.Base.Currency
	amounts, err := pricing.Apply(breakdown.Total, pricing.Adjustment{
		ExtraBeds: q.ExtraBeds,
		ExtraWood: q.ExtraWood,
		Discount:  money.Money{Amount: q.Discount, Currency: currency},
		TopUp:     money.Money{Amount: q.TopUp, Currency: currency},
	}, tariff)
	if err != nil {
		return nil, err
	}

	lines := make([]NightLine, 0, len(breakdown.Nights))
	for _, night := range breakdown.Nights {
		lines = append(lines, NightLine{Date: night.Date, Rate: night.Rate})
	}
	return &Quote{
		RoomID:   q.RoomID,
		CheckIn:  r.CheckIn,
		CheckOut: r.CheckOut,
		Nights:   r.Nights(),
		DayStay:  r.IsDayStay(),
		Lines:    lines,
		Base:     amounts.Base,
		Extras:   amounts.Extras,
		Discount: amounts.Discount,
		TopUp:    amounts.TopUp,
		Total:    amounts.Total,
		Amounts:  amounts,
		Stay:     r,
	}, nil
}

// buildRange interprets the explicit day-stay flag: a day-stay is anchored at
// the check-in date only, everything else must span at least one night.
func buildRange(q QuoteQuery) (stay.Range, error) {
	if q.DayStay {
		return stay.New(q.CheckIn, q.CheckIn)
	}
	return stay.Overnight(q.CheckIn, q.CheckOut)
}

var _ queries.Handler[QuoteQuery, *Quote] = (*QuoteHandler)(nil)
