package booking

import (
	"context"
	"time"

	"innkeep/internal/app/commands"
	"innkeep/internal/app/middleware"
	"innkeep/internal/app/outbox"
	"innkeep/internal/app/uow"
	"innkeep/internal/domain/availability"
	"innkeep/internal/domain/calendar"
	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/reservation"
)

const confirmKey = "booking.confirm"

// ConfirmCommand persists a reservation. The quote computation is replayed
// against the latest reservation set inside the storage transaction, so a
// conflict introduced between quoting and confirming surfaces here instead of
// double-booking, and the caller's displayed total is never trusted.
type ConfirmCommand struct {
	CommandID string `validate:"required"`
	RoomID    string `validate:"required"`
	GuestName string `validate:"required"`
	Guests    int    `validate:"gte=1"`
	CheckIn   calendar.Date
	CheckOut  calendar.Date
	DayStay   bool
	ExtraBeds int   `validate:"gte=0"`
	ExtraWood int   `validate:"gte=0"`
	Discount  int64 `validate:"gte=0"`
	TopUp     int64 `validate:"gte=0"`
	// AsPending creates the record in PENDING instead of CONFIRMED.
	AsPending       bool
	IdempotencyKeyV string
}

func (c ConfirmCommand) Key() string { return confirmKey }

func (c ConfirmCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c ConfirmCommand) ResultPrototype() any { return &ConfirmResult{} }

type ConfirmResult struct {
	ReservationID string             `json:"reservation_id"`
	Status        reservation.Status `json:"status"`
	Quote         *Quote             `json:"quote"`
}

type ConfirmHandler struct {
	UoW    uow.Factory
	Tariff pricing.Tariff
	Policy availability.Policy
	Clock  calendar.Clock
	Outbox outbox.Outbox
}

func (h *ConfirmHandler) Handle(ctx context.Context, cmd ConfirmCommand) (*ConfirmResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoW == nil {
			return nil, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoW.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, wrapStorage(err)
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	quote, err := computeQuote(ctx, unit, ConfirmCommandQuote(cmd), h.Tariff, h.Policy, h.Clock)
	if err != nil {
		return nil, err
	}

	status := reservation.StatusConfirmed
	if cmd.AsPending {
		status = reservation.StatusPending
	}
	rec, err := reservation.New(reservation.CreateParams{
		ID:        reservation.ID(cmd.CommandID),
		RoomID:    cmd.RoomID,
		GuestName: cmd.GuestName,
		Guests:    cmd.Guests,
		Stay:      quote.Stay,
		Status:    status,
		Amounts:   quote.Amounts,
		CreatedAt: h.now(),
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Reservations().Save(ctx, rec); err != nil {
		return nil, wrapStorage(err)
	}

	pending := rec.PendingEvents()
	rec.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, pending); err != nil {
		return nil, wrapStorage(err)
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, wrapStorage(err)
		}
		committed = true
	}

	return &ConfirmResult{
		ReservationID: string(rec.ID),
		Status:        rec.Status,
		Quote:         quote,
	}, nil
}

func (h *ConfirmHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return calendar.SystemClock()
}

// ConfirmCommandQuote projects a confirm command onto the quote input it
// replays.
func ConfirmCommandQuote(cmd ConfirmCommand) QuoteQuery {
	return QuoteQuery{
		RoomID:    cmd.RoomID,
		CheckIn:   cmd.CheckIn,
		CheckOut:  cmd.CheckOut,
		DayStay:   cmd.DayStay,
		Guests:    cmd.Guests,
		ExtraBeds: cmd.ExtraBeds,
		ExtraWood: cmd.ExtraWood,
		Discount:  cmd.Discount,
		TopUp:     cmd.TopUp,
	}
}

var _ commands.Handler[ConfirmCommand, *ConfirmResult] = (*ConfirmHandler)(nil)
var _ middleware.IdempotentCommand = (*ConfirmCommand)(nil)
