package reservation

import (
	"time"

	"innkeep/internal/domain/shared/money"
	"innkeep/internal/domain/stay"
)

// Created is published when a reservation is persisted via confirm.
type Created struct {
	ReservationID ID          `json:"reservation_id"`
	RoomID        string      `json:"room_id"`
	Stay          stay.Range  `json:"stay"`
	Status        Status      `json:"status"`
	Total         money.Money `json:"total"`
	At            time.Time   `json:"at"`
}

func (e Created) EventName() string     { return "reservation.created" }
func (e Created) AggregateID() string   { return string(e.ReservationID) }
func (e Created) OccurredAt() time.Time { return e.At }

// StatusChanged is published on every state machine transition so the
// housekeeping and sales boards can refresh.
type StatusChanged struct {
	ReservationID ID        `json:"reservation_id"`
	RoomID        string    `json:"room_id"`
	From          Status    `json:"from"`
	To            Status    `json:"to"`
	At            time.Time `json:"at"`
}

func (e StatusChanged) EventName() string     { return "reservation.status_changed" }
func (e StatusChanged) AggregateID() string   { return string(e.ReservationID) }
func (e StatusChanged) OccurredAt() time.Time { return e.At }

// AdjustmentsRecomputed is published when add-ons on an existing record are
// edited and the total re-derived.
type AdjustmentsRecomputed struct {
	ReservationID ID          `json:"reservation_id"`
	RoomID        string      `json:"room_id"`
	Total         money.Money `json:"total"`
	At            time.Time   `json:"at"`
}

func (e AdjustmentsRecomputed) EventName() string     { return "reservation.adjustments_recomputed" }
func (e AdjustmentsRecomputed) AggregateID() string   { return string(e.ReservationID) }
func (e AdjustmentsRecomputed) OccurredAt() time.Time { return e.At }
