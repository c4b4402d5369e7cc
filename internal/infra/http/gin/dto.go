package ginserver

import (
	"time"

	"innkeep/internal/domain/calendar"
	"innkeep/internal/domain/rates"
	"innkeep/internal/domain/reservation"
	"innkeep/internal/domain/shared/money"
)

type reservationResponse struct {
	ID        string        `json:"id"`
	RoomID    string        `json:"room_id"`
	GuestName string        `json:"guest_name"`
	Guests    int           `json:"guests"`
	CheckIn   calendar.Date `json:"check_in"`
	CheckOut  calendar.Date `json:"check_out"`
	DayStay   bool          `json:"day_stay"`
	Status    string        `json:"status"`
	Base      money.Money   `json:"base_amount"`
	Extras    money.Money   `json:"extras_amount"`
	Discount  money.Money   `json:"discount_amount"`
	TopUp     money.Money   `json:"top_up_amount"`
	Total     money.Money   `json:"total_amount"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Version   int64         `json:"version"`
}

func newReservationResponse(rec *reservation.Reservation) reservationResponse {
	return reservationResponse{
		ID:        string(rec.ID),
		RoomID:    rec.RoomID,
		GuestName: rec.GuestName,
		Guests:    rec.Guests,
		CheckIn:   rec.Stay.CheckIn,
		CheckOut:  rec.Stay.CheckOut,
		DayStay:   rec.Stay.IsDayStay(),
		Status:    string(rec.Status),
		Base:      rec.Amounts.Base,
		Extras:    rec.Amounts.Extras,
		Discount:  rec.Amounts.Discount,
		TopUp:     rec.Amounts.TopUp,
		Total:     rec.Amounts.Total,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		Version:   rec.Version,
	}
}

func newReservationResponses(recs []*reservation.Reservation) []reservationResponse {
	out := make([]reservationResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, newReservationResponse(rec))
	}
	return out
}

type rateCardResponse struct {
	RoomID   string `json:"room_id"`
	Currency string `json:"currency"`
	Base     int64  `json:"base"`
	Weekday  *int64 `json:"weekday,omitempty"`
	Weekend  *int64 `json:"weekend,omitempty"`
	DayStay  *int64 `json:"day_stay,omitempty"`
}

func newRateCardResponse(card rates.Card) rateCardResponse {
	resp := rateCardResponse{
		RoomID:   card.RoomID,
		Currency: card.Base.Currency,
		Base:     card.Base.Amount,
	}
	if card.Weekday != nil {
		resp.Weekday = &card.Weekday.Amount
	}
	if card.Weekend != nil {
		resp.Weekend = &card.Weekend.Amount
	}
	if card.DayStay != nil {
		resp.DayStay = &card.DayStay.Amount
	}
	return resp
}
