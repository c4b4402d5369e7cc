package memory

import (
	"context"
	"sort"
	"sync"

	"innkeep/internal/domain/reservation"
)

// ReservationRepository is an in-memory store used by tests and the `memory`
// storage mode.
type ReservationRepository struct {
	mu    sync.RWMutex
	items map[reservation.ID]reservation.Reservation
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{items: make(map[reservation.ID]reservation.Reservation)}
}

func (r *ReservationRepository) ByID(ctx context.Context, id reservation.ID) (*reservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.items[id]
	if !ok {
		return nil, reservation.ErrNotFound
	}
	copied := rec
	return &copied, nil
}

func (r *ReservationRepository) ListByRoom(ctx context.Context, roomID string) ([]*reservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*reservation.Reservation
	for _, rec := range r.items {
		if rec.RoomID != roomID {
			continue
		}
		copied := rec
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Stay.CheckIn.Before(out[j].Stay.CheckIn)
	})
	return out, nil
}

func (r *ReservationRepository) Save(ctx context.Context, rec *reservation.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.Version++
	r.items[rec.ID] = *rec
	return nil
}
