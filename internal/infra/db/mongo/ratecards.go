package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"innkeep/internal/domain/rates"
	"innkeep/internal/domain/shared/money"
)

type RateCardRepository struct {
	col *mongo.Collection
}

func NewRateCardRepository(db *mongo.Database) *RateCardRepository {
	return &RateCardRepository{col: db.Collection("rate_cards")}
}

func (r *RateCardRepository) ByRoom(ctx context.Context, roomID string) (rates.Card, error) {
	var doc rateCardDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": roomID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return rates.Card{}, rates.ErrCardNotFound
		}
		return rates.Card{}, err
	}
	return doc.toCard(), nil
}

func (r *RateCardRepository) Save(ctx context.Context, card rates.Card) error {
	if err := card.Validate(); err != nil {
		return err
	}
	doc := newRateCardDocument(card)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

type rateCardDocument struct {
	ID       string `bson:"_id"`
	Currency string `bson:"currency"`
	Base     int64  `bson:"base"`
	Weekday  *int64 `bson:"weekday,omitempty"`
	Weekend  *int64 `bson:"weekend,omitempty"`
	DayStay  *int64 `bson:"day_stay,omitempty"`
}

func newRateCardDocument(card rates.Card) rateCardDocument {
	doc := rateCardDocument{
		ID:       card.RoomID,
		Currency: card.Base.Currency,
		Base:     card.Base.Amount,
	}
	if card.Weekday != nil {
		doc.Weekday = &card.Weekday.Amount
	}
	if card.Weekend != nil {
		doc.Weekend = &card.Weekend.Amount
	}
	if card.DayStay != nil {
		doc.DayStay = &card.DayStay.Amount
	}
	return doc
}

func (d rateCardDocument) toCard() rates.Card {
	card := rates.Card{
		RoomID: d.ID,
		Base:   money.Money{Amount: d.Base, Currency: d.Currency},
	}
	if d.Weekday != nil {
		m := money.Money{Amount: *d.Weekday, Currency: d.Currency}
		card.Weekday = &m
	}
	if d.Weekend != nil {
		m := money.Money{Amount: *d.Weekend, Currency: d.Currency}
		card.Weekend = &m
	}
	if d.DayStay != nil {
		m := money.Money{Amount: *d.DayStay, Currency: d.Currency}
		card.DayStay = &m
	}
	return card
}
