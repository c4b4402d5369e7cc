package memory

import (
	"context"
	"sync"

	"innkeep/internal/domain/rates"
)

// RateCardRepository keeps room rate cards in memory.
type RateCardRepository struct {
	mu    sync.RWMutex
	items map[string]rates.Card
}

func NewRateCardRepository() *RateCardRepository {
	return &RateCardRepository{items: make(map[string]rates.Card)}
}

func (r *RateCardRepository) ByRoom(ctx context.Context, roomID string) (rates.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	card, ok := r.items[roomID]
	if !ok {
		return rates.Card{}, rates.ErrCardNotFound
	}
	return card, nil
}

func (r *RateCardRepository) Save(ctx context.Context, card rates.Card) error {
	if err := card.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[card.RoomID] = card
	return nil
}
