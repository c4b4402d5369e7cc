package booking

import (
	"context"

	"innkeep/internal/app/queries"
	"innkeep/internal/app/uow"
	"innkeep/internal/domain/rates"
	"innkeep/internal/domain/reservation"
)

const (
	roomReservationsKey = "booking.room_reservations"
	rateCardKey         = "booking.rate_card"
	reservationByIDKey  = "booking.reservation_by_id"
)

// RoomReservationsQuery lists a room's records for the calendar board.
type RoomReservationsQuery struct {
	RoomID string `validate:"required"`
}

func (q RoomReservationsQuery) Key() string { return roomReservationsKey }

// RateCardQuery fetches the configured rates the booking widget renders.
type RateCardQuery struct {
	RoomID string `validate:"required"`
}

func (q RateCardQuery) Key() string { return rateCardKey }

// ReservationByIDQuery fetches one record.
type ReservationByIDQuery struct {
	ReservationID string `validate:"required"`
}

func (q ReservationByIDQuery) Key() string { return reservationByIDKey }

// LookupHandler serves the read-only lookups around the booking flow.
type LookupHandler struct {
	UoW uow.Factory
}

func (h *LookupHandler) withUnit(ctx context.Context) (uow.UnitOfWork, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, func() {}, nil
	}
	if h.UoW == nil {
		return nil, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := h.UoW.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, nil, wrapStorage(err)
	}
	return unit, func() { _ = unit.Rollback(ctx) }, nil
}

func (h *LookupHandler) RoomReservations(ctx context.Context, q RoomReservationsQuery) ([]*reservation.Reservation, error) {
	unit, done, err := h.withUnit(ctx)
	if err != nil {
		return nil, err
	}
	defer done()
	items, err := unit.Reservations().ListByRoom(ctx, q.RoomID)
	if err != nil {
		return nil, wrapStorage(err)
	}
	return items, nil
}

func (h *LookupHandler) RateCard(ctx context.Context, q RateCardQuery) (rates.Card, error) {
	unit, done, err := h.withUnit(ctx)
	if err != nil {
		return rates.Card{}, err
	}
	defer done()
	card, err := unit.RateCards().ByRoom(ctx, q.RoomID)
	if err != nil {
		return rates.Card{}, wrapStorage(err)
	}
	return card, nil
}

func (h *LookupHandler) ReservationByID(ctx context.Context, q ReservationByIDQuery) (*reservation.Reservation, error) {
	unit, done, err := h.withUnit(ctx)
	if err != nil {
		return nil, err
	}
	defer done()
	rec, err := unit.Reservations().ByID(ctx, reservation.ID(q.ReservationID))
	if err != nil {
		return nil, wrapStorage(err)
	}
	return rec, nil
}

// Adapters so the lookups register on the query bus.

type RoomReservationsHandler struct{ Lookup *LookupHandler }

func (h RoomReservationsHandler) Handle(ctx context.Context, q RoomReservationsQuery) ([]*reservation.Reservation, error) {
	return h.Lookup.RoomReservations(ctx, q)
}

type RateCardHandler struct{ Lookup *LookupHandler }

func (h RateCardHandler) Handle(ctx context.Context, q RateCardQuery) (rates.Card, error) {
	return h.Lookup.RateCard(ctx, q)
}

type ReservationByIDHandler struct{ Lookup *LookupHandler }

func (h ReservationByIDHandler) Handle(ctx context.Context, q ReservationByIDQuery) (*reservation.Reservation, error) {
	return h.Lookup.ReservationByID(ctx, q)
}

var (
	_ queries.Handler[RoomReservationsQuery, []*reservation.Reservation] = RoomReservationsHandler{}
	_ queries.Handler[RateCardQuery, rates.Card]                         = RateCardHandler{}
	_ queries.Handler[ReservationByIDQuery, *reservation.Reservation]    = ReservationByIDHandler{}
)
