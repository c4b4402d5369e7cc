package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"innkeep/internal/domain/calendar"
	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/reservation"
	"innkeep/internal/domain/shared/money"
	"innkeep/internal/domain/stay"
)

// ErrConcurrentUpdate surfaces a lost optimistic-lock race; callers re-read
// and retry or give up.
var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type ReservationRepository struct {
	col   *mongo.Collection
	rooms *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	col := db.Collection("reservations")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "check_in", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &ReservationRepository{col: col, rooms: db.Collection("room_claims")}
}

func (r *ReservationRepository) ByID(ctx context.Context, id reservation.ID) (*reservation.Reservation, error) {
	var doc reservationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservation.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReservationRepository) ListByRoom(ctx context.Context, roomID string) ([]*reservation.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "check_in", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"room_id": roomID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*reservation.Reservation
	for cur.Next(ctx) {
		var doc reservationDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

// Save upserts with an optimistic version filter: a concurrent writer that
// bumped the version first wins and this save fails instead of overwriting.
//
// It also bumps the room's claim document. Transactions run on a snapshot
// and only abort on a write to the same document, so two racing confirms
// inserting distinct reservation documents would otherwise both commit.
// Writing the shared room document makes them collide: one transaction
// aborts with a write conflict and retries against the committed state,
// where the availability re-read sees the winner.
func (r *ReservationRepository) Save(ctx context.Context, rec *reservation.Reservation) error {
	claim := bson.M{"$inc": bson.M{"writes": 1}}
	if _, err := r.rooms.UpdateOne(ctx, bson.M{"_id": rec.RoomID}, claim, options.Update().SetUpsert(true)); err != nil {
		if isWriteConflict(err) {
			return ErrConcurrentUpdate
		}
		return err
	}

	doc := newReservationDocument(rec)
	filter := bson.M{"_id": doc.ID, "version": rec.Version}
	doc.Version = rec.Version + 1
	// _id stays out of $set: updates may not touch the immutable field, and
	// the upsert path takes it from the filter.
	update := bson.M{"$set": doc.setFields()}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) || isWriteConflict(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	rec.Version = doc.Version
	return nil
}

// isWriteConflict recognizes the server aborting a transaction because two
// sessions wrote the same document.
func isWriteConflict(err error) bool {
	var srv mongo.ServerError
	if !errors.As(err, &srv) {
		return false
	}
	const writeConflictCode = 112
	return srv.HasErrorCode(writeConflictCode) || srv.HasErrorLabel("TransientTransactionError")
}

type amountsDocument struct {
	Base     int64  `bson:"base"`
	Extras   int64  `bson:"extras"`
	Discount int64  `bson:"discount"`
	TopUp    int64  `bson:"top_up"`
	Total    int64  `bson:"total"`
	Currency string `bson:"currency"`
}

type reservationDocument struct {
	ID        string          `bson:"_id"`
	RoomID    string          `bson:"room_id"`
	GuestName string          `bson:"guest_name"`
	Guests    int             `bson:"guests"`
	CheckIn   string          `bson:"check_in"`
	CheckOut  string          `bson:"check_out"`
	Status    string          `bson:"status"`
	Amounts   amountsDocument `bson:"amounts"`
	CreatedAt int64           `bson:"created_at"`
	UpdatedAt int64           `bson:"updated_at"`
	Version   int64           `bson:"version"`
}

func (d reservationDocument) setFields() bson.M {
	return bson.M{
		"room_id":    d.RoomID,
		"guest_name": d.GuestName,
		"guests":     d.Guests,
		"check_in":   d.CheckIn,
		"check_out":  d.CheckOut,
		"status":     d.Status,
		"amounts":    d.Amounts,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
		"version":    d.Version,
	}
}

func newReservationDocument(rec *reservation.Reservation) reservationDocument {
	return reservationDocument{
		ID:        string(rec.ID),
		RoomID:    rec.RoomID,
		GuestName: rec.GuestName,
		Guests:    rec.Guests,
		CheckIn:   rec.Stay.CheckIn.String(),
		CheckOut:  rec.Stay.CheckOut.String(),
		Status:    string(rec.Status),
		Amounts: amountsDocument{
			Base:     rec.Amounts.Base.Amount,
			Extras:   rec.Amounts.Extras.Amount,
			Discount: rec.Amounts.Discount.Amount,
			TopUp:    rec.Amounts.TopUp.Amount,
			Total:    rec.Amounts.Total.Amount,
			Currency: rec.Amounts.Total.Currency,
		},
		CreatedAt: rec.CreatedAt.UnixMilli(),
		UpdatedAt: rec.UpdatedAt.UnixMilli(),
		Version:   rec.Version,
	}
}

func (d reservationDocument) toAggregate() *reservation.Reservation {
	checkIn, _ := calendar.Parse(d.CheckIn)
	checkOut, _ := calendar.Parse(d.CheckOut)
	cur := d.Amounts.Currency
	return &reservation.Reservation{
		ID:        reservation.ID(d.ID),
		RoomID:    d.RoomID,
		GuestName: d.GuestName,
		Guests:    d.Guests,
		Stay:      stay.Range{CheckIn: checkIn, CheckOut: checkOut},
		Status:    reservation.Status(d.Status),
		Amounts: pricing.Outcome{
			Base:     money.Money{Amount: d.Amounts.Base, Currency: cur},
			Extras:   money.Money{Amount: d.Amounts.Extras, Currency: cur},
			Discount: money.Money{Amount: d.Amounts.Discount, Currency: cur},
			TopUp:    money.Money{Amount: d.Amounts.TopUp, Currency: cur},
			Total:    money.Money{Amount: d.Amounts.Total, Currency: cur},
		},
		CreatedAt: time.UnixMilli(d.CreatedAt).UTC(),
		UpdatedAt: time.UnixMilli(d.UpdatedAt).UTC(),
		Version:   d.Version,
	}
}
