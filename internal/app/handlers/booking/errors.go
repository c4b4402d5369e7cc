package booking

import (
	"errors"
	"fmt"

	"innkeep/internal/domain/rates"
	"innkeep/internal/domain/reservation"
)

var (
	// ErrCheckInInPast rejects stays starting before the clock's today.
	ErrCheckInInPast = errors.New("booking: check-in date is in the past")
	// ErrStorage wraps storage collaborator failures so callers can tell an
	// infrastructure fault from a validation failure. The orchestrator never
	// retries these itself.
	ErrStorage = errors.New("booking: storage failure")
)

// wrapStorage keeps domain-meaningful repository errors intact and tags
// everything else as a storage failure.
func wrapStorage(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, reservation.ErrNotFound) || errors.Is(err, rates.ErrCardNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
