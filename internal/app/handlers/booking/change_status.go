package booking

import (
	"context"
	"time"

	"innkeep/internal/app/commands"
	"innkeep/internal/app/outbox"
	"innkeep/internal/app/uow"
	"innkeep/internal/domain/calendar"
	"innkeep/internal/domain/reservation"
)

const changeStatusKey = "booking.change_status"

// ChangeStatusCommand moves a reservation through its lifecycle, enforcing
// the forward-only state machine.
type ChangeStatusCommand struct {
	ReservationID string `validate:"required"`
	NewStatus     string `validate:"required"`
}

func (c ChangeStatusCommand) Key() string { return changeStatusKey }

type ChangeStatusResult struct {
	ReservationID string             `json:"reservation_id"`
	Status        reservation.Status `json:"status"`
}

type ChangeStatusHandler struct {
	UoW    uow.Factory
	Clock  calendar.Clock
	Outbox outbox.Outbox
}

func (h *ChangeStatusHandler) Handle(ctx context.Context, cmd ChangeStatusCommand) (*ChangeStatusResult, error) {
	target, err := reservation.ParseStatus(cmd.NewStatus)
	if err != nil {
		return nil, err
	}

	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoW == nil {
			return nil, uow.ErrUnitOfWorkMissing
		}
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

	rec, err := unit.Reservations().ByID(ctx, reservation.ID(cmd.ReservationID))
	if err != nil {
		return nil, wrapStorage(err)
	}
	if err := rec.Transition(target, h.now()); err != nil {
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
	return &ChangeStatusResult{ReservationID: cmd.ReservationID, Status: rec.Status}, nil
}

func (h *ChangeStatusHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return calendar.SystemClock()
}

var _ commands.Handler[ChangeStatusCommand, *ChangeStatusResult] = (*ChangeStatusHandler)(nil)
