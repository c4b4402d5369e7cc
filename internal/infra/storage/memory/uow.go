package memory

import (
	"context"
	"errors"
	"sync"

	"innkeep/internal/app/uow"
	"innkeep/internal/domain/rates"
	"innkeep/internal/domain/reservation"
)

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires the in-memory repositories into a unit-of-work boundary.
// A store-wide gate is held from Begin until Commit or Rollback, so a
// confirm's availability re-read and its insert cannot interleave with
// another writer's. That is the same atomicity the Mongo factory gets from
// a session transaction.
type Factory struct {
	reservations reservation.Repository
	rateCards    rates.Repository
	gate         *sync.Mutex
}

func NewFactory(reservations reservation.Repository, rateCards rates.Repository) Factory {
	return Factory{
		reservations: reservations,
		rateCards:    rateCards,
		gate:         &sync.Mutex{},
	}
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.reservations == nil || f.rateCards == nil || f.gate == nil {
		return nil, ErrFactoryMisconfigured
	}
	f.gate.Lock()
	return &Unit{reservations: f.reservations, rateCards: f.rateCards, gate: f.gate}, nil
}

type Unit struct {
	reservations reservation.Repository
	rateCards    rates.Repository
	gate         *sync.Mutex
	release      sync.Once
}

func (u *Unit) Reservations() reservation.Repository { return u.reservations }

func (u *Unit) RateCards() rates.Repository { return u.rateCards }

func (u *Unit) Commit(ctx context.Context) error {
	u.close()
	return nil
}

// Rollback has nothing to undo; writes land directly in the repositories.
// It still must release the gate exactly once.
func (u *Unit) Rollback(ctx context.Context) error {
	u.close()
	return nil
}

func (u *Unit) close() {
	u.release.Do(u.gate.Unlock)
}
