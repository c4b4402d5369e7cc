package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"innkeep/internal/app/uow"
	"innkeep/internal/domain/rates"
	"innkeep/internal/domain/reservation"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo sessions into the generic UnitOfWork interface. The
// confirm flow depends on this: the availability re-read and the insert run
// in one transaction, and the reservation repository touches a shared
// per-room claim document on every save, so two racing confirms collide on
// that document and one of the transactions aborts.
type Factory struct {
	DB *mongo.Database

	ReservationsRepo reservation.Repository
	RateCardsRepo    rates.Repository
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().
		SetReadConcern(f.DB.ReadConcern()).
		SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:      session,
		reservations: f.ReservationsRepo,
		rateCards:    f.RateCardsRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

	reservations reservation.Repository
	rateCards    rates.Repository
}

func (u *Unit) Reservations() reservation.Repository {
	return u.reservations
}

func (u *Unit) RateCards() rates.Repository {
	return u.rateCards
}

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if err := u.session.CommitTransaction(ctx); err != nil {
		if isWriteConflict(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext makes the session visible to the repositories, which operate
// on whatever session the context carries.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
