package rates

import "context"

// Repository fetches rate cards from the storage collaborator.
type Repository interface {
	ByRoom(ctx context.Context, roomID string) (Card, error)
	Save(ctx context.Context, card Card) error
}
