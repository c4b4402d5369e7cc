package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innkeep/internal/domain/availability"
	"innkeep/internal/domain/calendar"
	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/rates"
	"innkeep/internal/domain/reservation"
	"innkeep/internal/domain/shared/money"
	"innkeep/internal/infra/storage/memory"
)

// fixedClock pins "now" well before every stay used in these tests.
func fixedClock() time.Time {
	return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
}

type fixture struct {
	reservations *memory.ReservationRepository
	rateCards    *memory.RateCardRepository
	uow          memory.Factory
	outbox       *memory.Outbox
	tariff       pricing.Tariff
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		reservations: memory.NewReservationRepository(),
		rateCards:    memory.NewRateCardRepository(),
		outbox:       memory.NewOutbox(),
		tariff:       pricing.DefaultTariff("USD"),
	}
	f.uow = memory.NewFactory(f.reservations, f.rateCards)

	weekday := money.Must(10000, "USD")
	weekend := money.Must(15000, "USD")
	day := money.Must(5000, "USD")
	require.NoError(t, f.rateCards.Save(context.Background(), rates.Card{
		RoomID:  "r-101",
		Base:    money.Must(12000, "USD"),
		Weekday: &weekday,
		Weekend: &weekend,
		DayStay: &day,
	}))
	return f
}

func (f *fixture) quoteHandler() *QuoteHandler {
	return &QuoteHandler{UoW: f.uow, Tariff: f.tariff, Policy: availability.Policy{}, Clock: fixedClock}
}

func (f *fixture) confirmHandler() *ConfirmHandler {
	return &ConfirmHandler{UoW: f.uow, Tariff: f.tariff, Policy: availability.Policy{}, Clock: fixedClock, Outbox: f.outbox}
}

func (f *fixture) confirm(t *testing.T, id, in, out string) *ConfirmResult {
	t.Helper()
	res, err := f.confirmHandler().Handle(context.Background(), ConfirmCommand{
		CommandID: id,
		RoomID:    "r-101",
		GuestName: "A. Guest",
		Guests:    2,
		CheckIn:   calendar.MustParse(in),
		CheckOut:  calendar.MustParse(out),
	})
	require.NoError(t, err)
	return res
}

func TestQuoteFridayToMonday(t *testing.T) {
	f := newFixture(t)
	q, err := f.quoteHandler().Handle(context.Background(), QuoteQuery{
		RoomID:   "r-101",
		CheckIn:  calendar.MustParse("2024-03-01"), // Friday
		CheckOut: calendar.MustParse("2024-03-04"), // Monday
		Guests:   2,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, q.Nights)
	require.Len(t, q.Lines, 3)
	assert.Equal(t, int64(10000), q.Lines[0].Rate.Amount) // Fri: weekday
	assert.Equal(t, int64(15000), q.Lines[1].Rate.Amount) // Sat
	assert.Equal(t, int64(15000), q.Lines[2].Rate.Amount) // Sun
	assert.Equal(t, int64(40000), q.Base.Amount)
	assert.Equal(t, int64(40000), q.Total.Amount)
}

func TestQuoteWithAdjustments(t *testing.T) {
	f := newFixture(t)
	q, err := f.quoteHandler().Handle(context.Background(), QuoteQuery{
		RoomID:    "r-101",
		CheckIn:   calendar.MustParse("2024-03-04"), // Mon -> Thu, 3 weekday nights
		CheckOut:  calendar.MustParse("2024-03-07"),
		Guests:    2,
		ExtraBeds: 2,
		ExtraWood: 1,
		Discount:  5000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(30000), q.Base.Amount)
	assert.Equal(t, int64(5500), q.Extras.Amount)
	assert.Equal(t, int64(30500), q.Total.Amount)
}

func TestQuoteDayStay(t *testing.T) {
	f := newFixture(t)
	q, err := f.quoteHandler().Handle(context.Background(), QuoteQuery{
		RoomID:  "r-101",
		CheckIn: calendar.MustParse("2024-03-02"),
		DayStay: true,
		Guests:  1,
	})
	require.NoError(t, err)
	assert.True(t, q.DayStay)
	assert.Equal(t, 0, q.Nights)
	assert.Equal(t, int64(5000), q.Total.Amount)
}

func TestQuoteRejectsPastCheckIn(t *testing.T) {
	f := newFixture(t)
	_, err := f.quoteHandler().Handle(context.Background(), QuoteQuery{
		RoomID:   "r-101",
		CheckIn:  calendar.MustParse("2023-12-01"),
		CheckOut: calendar.MustParse("2023-12-05"),
		Guests:   1,
	})
	require.ErrorIs(t, err, ErrCheckInInPast)
}

func TestQuoteConflictSkipsPricing(t *testing.T) {
	f := newFixture(t)
	confirmed := f.confirm(t, "res-1", "2024-03-01", "2024-03-05")

	_, err := f.quoteHandler().Handle(context.Background(), QuoteQuery{
		RoomID:   "r-101",
		CheckIn:  calendar.MustParse("2024-03-04"),
		CheckOut: calendar.MustParse("2024-03-06"),
		Guests:   1,
	})
	var unavailable *availability.RoomUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, reservation.ID(confirmed.ReservationID), unavailable.ConflictingID)

	// Back-to-back stays do not conflict.
	q, err := f.quoteHandler().Handle(context.Background(), QuoteQuery{
		RoomID:   "r-101",
		CheckIn:  calendar.MustParse("2024-03-05"),
		CheckOut: calendar.MustParse("2024-03-07"),
		Guests:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, q.Nights)
}

func TestQuoteIgnoresCancelledReservations(t *testing.T) {
	f := newFixture(t)
	confirmed := f.confirm(t, "res-1", "2024-03-01", "2024-03-05")

	status := &ChangeStatusHandler{UoW: f.uow, Clock: fixedClock, Outbox: f.outbox}
	_, err := status.Handle(context.Background(), ChangeStatusCommand{
		ReservationID: confirmed.ReservationID,
		NewStatus:     string(reservation.StatusCancelled),
	})
	require.NoError(t, err)

	_, err = f.quoteHandler().Handle(context.Background(), QuoteQuery{
		RoomID:   "r-101",
		CheckIn:  calendar.MustParse("2024-03-02"),
		CheckOut: calendar.MustParse("2024-03-06"),
		Guests:   1,
	})
	require.NoError(t, err)
}

func TestConfirmRecomputesServerSide(t *testing.T) {
	f := newFixture(t)
	res := f.confirm(t, "res-1", "2024-03-01", "2024-03-04")

	assert.Equal(t, reservation.StatusConfirmed, res.Status)
	assert.Equal(t, int64(40000), res.Quote.Total.Amount)

	stored, err := f.reservations.ByID(context.Background(), reservation.ID(res.ReservationID))
	require.NoError(t, err)
	assert.Equal(t, int64(40000), stored.Amounts.Total.Amount)
	assert.Equal(t, reservation.StatusConfirmed, stored.Status)

	// The created event reached the outbox.
	records := f.outbox.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "reservation.created", records[0].Name)
}

// laggyReservations adds storage latency between the availability read and
// the insert that follows it, widening the race window.
type laggyReservations struct {
	reservation.Repository
	delay time.Duration
}

func (l laggyReservations) ListByRoom(ctx context.Context, roomID string) ([]*reservation.Reservation, error) {
	recs, err := l.Repository.ListByRoom(ctx, roomID)
	time.Sleep(l.delay)
	return recs, err
}

func TestConcurrentConfirmsSingleWinner(t *testing.T) {
	f := newFixture(t)
	slow := laggyReservations{Repository: f.reservations, delay: 20 * time.Millisecond}
	factory := memory.NewFactory(slow, f.rateCards)
	handler := &ConfirmHandler{UoW: factory, Tariff: f.tariff, Policy: availability.Policy{}, Clock: fixedClock, Outbox: f.outbox}

	type outcome struct {
		res *ConfirmResult
		err error
	}
	results := make(chan outcome, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			res, err := handler.Handle(context.Background(), ConfirmCommand{
				CommandID: fmt.Sprintf("race-%d", n),
				RoomID:    "r-101",
				GuestName: "B. Guest",
				Guests:    1,
				CheckIn:   calendar.MustParse("2024-03-01"),
				CheckOut:  calendar.MustParse("2024-03-05"),
			})
			results <- outcome{res: res, err: err}
		}(i)
	}
	wg.Wait()
	close(results)

	var confirmed, blocked int
	for out := range results {
		if out.err == nil {
			confirmed++
			continue
		}
		var unavailable *availability.RoomUnavailableError
		require.ErrorAs(t, out.err, &unavailable)
		blocked++
	}
	assert.Equal(t, 1, confirmed)
	assert.Equal(t, 1, blocked)

	stored, err := f.reservations.ListByRoom(context.Background(), "r-101")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestConfirmDetectsConflictIntroducedAfterQuote(t *testing.T) {
	f := newFixture(t)

	// A quote for the window succeeds while the room is free.
	_, err := f.quoteHandler().Handle(context.Background(), QuoteQuery{
		RoomID:   "r-101",
		CheckIn:  calendar.MustParse("2024-03-01"),
		CheckOut: calendar.MustParse("2024-03-05"),
		Guests:   1,
	})
	require.NoError(t, err)

	// Another booking lands before the confirm.
	f.confirm(t, "res-other", "2024-03-03", "2024-03-06")

	_, err = f.confirmHandler().Handle(context.Background(), ConfirmCommand{
		CommandID: "res-late",
		RoomID:    "r-101",
		GuestName: "B. Guest",
		Guests:    1,
		CheckIn:   calendar.MustParse("2024-03-01"),
		CheckOut:  calendar.MustParse("2024-03-05"),
	})
	var unavailable *availability.RoomUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, reservation.ID("res-other"), unavailable.ConflictingID)
}

func TestConfirmAsPending(t *testing.T) {
	f := newFixture(t)
	res, err := f.confirmHandler().Handle(context.Background(), ConfirmCommand{
		CommandID: "res-1",
		RoomID:    "r-101",
		GuestName: "A. Guest",
		Guests:    1,
		CheckIn:   calendar.MustParse("2024-03-01"),
		CheckOut:  calendar.MustParse("2024-03-02"),
		AsPending: true,
	})
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusPending, res.Status)
}

func TestChangeStatusEnforcesStateMachine(t *testing.T) {
	f := newFixture(t)
	res := f.confirm(t, "res-1", "2024-03-01", "2024-03-04")
	status := &ChangeStatusHandler{UoW: f.uow, Clock: fixedClock, Outbox: f.outbox}

	for _, next := range []reservation.Status{reservation.StatusCheckedIn, reservation.StatusCheckedOut} {
		got, err := status.Handle(context.Background(), ChangeStatusCommand{
			ReservationID: res.ReservationID,
			NewStatus:     string(next),
		})
		require.NoError(t, err)
		assert.Equal(t, next, got.Status)
	}

	// CHECKED_OUT is terminal.
	_, err := status.Handle(context.Background(), ChangeStatusCommand{
		ReservationID: res.ReservationID,
		NewStatus:     string(reservation.StatusPending),
	})
	var ite *reservation.InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, reservation.StatusCheckedOut, ite.From)
	assert.Equal(t, reservation.StatusPending, ite.To)

	_, err = status.Handle(context.Background(), ChangeStatusCommand{
		ReservationID: res.ReservationID,
		NewStatus:     "LOST",
	})
	require.Error(t, err)
}

func TestRecomputeAdjustments(t *testing.T) {
	f := newFixture(t)
	res, err := f.confirmHandler().Handle(context.Background(), ConfirmCommand{
		CommandID: "res-1",
		RoomID:    "r-101",
		GuestName: "A. Guest",
		Guests:    2,
		CheckIn:   calendar.MustParse("2024-03-04"),
		CheckOut:  calendar.MustParse("2024-03-07"),
		ExtraBeds: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(32000), res.Quote.Total.Amount) // 30000 base + one bed

	recompute := &RecomputeAdjustmentsHandler{UoW: f.uow, Tariff: f.tariff, Clock: fixedClock, Outbox: f.outbox}
	got, err := recompute.Handle(context.Background(), RecomputeAdjustmentsCommand{
		ReservationID: res.ReservationID,
		ExtraBeds:     2,
		ExtraWood:     1,
		Discount:      5000,
	})
	require.NoError(t, err)
	// Base recovered to 30000, then 2 beds + 1 wood - discount.
	assert.Equal(t, int64(30000+5500-5000), got.Total.Amount)

	stored, err := f.reservations.ByID(context.Background(), reservation.ID(res.ReservationID))
	require.NoError(t, err)
	assert.Equal(t, got.Total.Amount, stored.Amounts.Total.Amount)
	assert.Equal(t, int64(30000), stored.Amounts.Base.Amount)
}

func TestRecomputeGuardsCorruptedState(t *testing.T) {
	f := newFixture(t)
	res := f.confirm(t, "res-1", "2024-03-04", "2024-03-05")

	stored, err := f.reservations.ByID(context.Background(), reservation.ID(res.ReservationID))
	require.NoError(t, err)
	stored.Amounts.Extras = money.Must(999999, "USD") // breaks reconciliation
	require.NoError(t, f.reservations.Save(context.Background(), stored))

	recompute := &RecomputeAdjustmentsHandler{UoW: f.uow, Tariff: f.tariff, Clock: fixedClock, Outbox: f.outbox}
	_, err = recompute.Handle(context.Background(), RecomputeAdjustmentsCommand{ReservationID: res.ReservationID})
	require.ErrorIs(t, err, reservation.ErrCorruptedState)
}

func TestLookupHandlers(t *testing.T) {
	f := newFixture(t)
	f.confirm(t, "res-1", "2024-03-01", "2024-03-04")
	f.confirm(t, "res-2", "2024-03-10", "2024-03-12")
	lookup := &LookupHandler{UoW: f.uow}

	items, err := lookup.RoomReservations(context.Background(), RoomReservationsQuery{RoomID: "r-101"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, reservation.ID("res-1"), items[0].ID)

	card, err := lookup.RateCard(context.Background(), RateCardQuery{RoomID: "r-101"})
	require.NoError(t, err)
	assert.Equal(t, int64(12000), card.Base.Amount)

	_, err = lookup.RateCard(context.Background(), RateCardQuery{RoomID: "missing"})
	require.ErrorIs(t, err, rates.ErrCardNotFound)

	rec, err := lookup.ReservationByID(context.Background(), ReservationByIDQuery{ReservationID: "res-2"})
	require.NoError(t, err)
	assert.Equal(t, "r-101", rec.RoomID)

	_, err = lookup.ReservationByID(context.Background(), ReservationByIDQuery{ReservationID: "ghost"})
	require.ErrorIs(t, err, reservation.ErrNotFound)
}
