package booking

import (
	"context"
	"time"

	"innkeep/internal/app/commands"
	"innkeep/internal/app/outbox"
	"innkeep/internal/app/uow"
	"innkeep/internal/domain/calendar"
	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/reservation"
	"innkeep/internal/domain/shared/money"
)

const recomputeKey = "booking.recompute_adjustments"

// RecomputeAdjustmentsCommand swaps a reservation's add-ons. The base amount
// is recovered from the stored components (base = total - extras + discount -
// topUp, the edit-addons approach) and the new total derived from it; the
// nightly rates are never re-resolved here.
type RecomputeAdjustmentsCommand struct {
	ReservationID string `validate:"required"`
	ExtraBeds     int    `validate:"gte=0"`
	ExtraWood     int    `validate:"gte=0"`
	Discount      int64  `validate:"gte=0"`
	TopUp         int64  `validate:"gte=0"`
}

func (c RecomputeAdjustmentsCommand) Key() string { return recomputeKey }

type RecomputeAdjustmentsResult struct {
	ReservationID string      `json:"reservation_id"`
	Total         money.Money `json:"total_amount"`
}

type RecomputeAdjustmentsHandler struct {
	UoW    uow.Factory
	Tariff pricing.Tariff
	Clock  calendar.Clock
	Outbox outbox.Outbox
}

func (h *RecomputeAdjustmentsHandler) Handle(ctx context.Context, cmd RecomputeAdjustmentsCommand) (*RecomputeAdjustmentsResult, error) {
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

	rec, err := unit.Reservations().ByID(ctx, reservation.ID(cmd.ReservationID))
	if err != nil {
		return nil, wrapStorage(err)
	}
	base, err := rec.RecoverBase()
	if err != nil {
		return nil, err
	}

	amounts, err := pricing.Apply(base, pricing.Adjustment{
		ExtraBeds: cmd.ExtraBeds,
		ExtraWood: cmd.ExtraWood,
		Discount:  money.Money{Amount: cmd.Discount, Currency: base.Currency},
		TopUp:     money.Money{Amount: cmd.TopUp, Currency: base.Currency},
	}, h.Tariff)
	if err != nil {
		return nil, err
	}
	rec.ReplaceAdjustments(amounts, h.now())

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
	return &RecomputeAdjustmentsResult{ReservationID: cmd.ReservationID, Total: amounts.Total}, nil
}

func (h *RecomputeAdjustmentsHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return calendar.SystemClock()
}

var _ commands.Handler[RecomputeAdjustmentsCommand, *RecomputeAdjustmentsResult] = (*RecomputeAdjustmentsHandler)(nil)
