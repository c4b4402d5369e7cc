package uow

import (
	"context"
	"errors"

	"innkeep/internal/domain/rates"
	"innkeep/internal/domain/reservation"
)

// UnitOfWork coordinates the storage collaborator's repositories inside one
// transaction boundary. Confirm relies on this: the availability re-check and
// the insert commit or fail together.
type UnitOfWork interface {
	Reservations() reservation.Repository
	RateCards() rates.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory starts unit of work instances.
type Factory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}

// ErrUnitOfWorkMissing is returned by a handler that needs a storage boundary
// but finds none on the context and has no factory to open its own.
var ErrUnitOfWorkMissing = errors.New("uow: no unit of work available")

type unitKey struct{}

// ContextWithUnitOfWork hands an open unit to downstream handlers. The
// transaction middleware stores the unit it began so a command handler joins
// the bus's boundary instead of opening a second one.
func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, unitKey{}, unit)
}

// FromContext reports the unit stored by the transaction middleware, if any.
func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(unitKey{}).(UnitOfWork)
	return unit, ok
}
