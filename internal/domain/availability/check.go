package availability

import (
	"fmt"

	"innkeep/internal/domain/reservation"
	"innkeep/internal/domain/stay"
)

// Policy configures the one ambiguous case: whether two day-stays on the same
// date may share a room. The conservative default is that they conflict.
type Policy struct {
	AllowSharedDayStay bool
}

// RoomUnavailableError carries the blocking reservation so the caller can
// point at it.
type RoomUnavailableError struct {
	RoomID        string
	ConflictingID reservation.ID
}

func (e *RoomUnavailableError) Error() string {
	return fmt.Sprintf("availability: room %s is blocked by reservation %s", e.RoomID, e.ConflictingID)
}

// Decision is the outcome of an availability check.
type Decision struct {
	Available     bool
	ConflictingID reservation.ID
}

// Check decides whether the proposed stay collides with any of the supplied
// records. It is a pure function: records come from the storage collaborator,
// and nothing is mutated. Cancelled and no-show records never block, and
// records for other rooms are skipped.
func Check(roomID string, proposed stay.Range, records []*reservation.Reservation, policy Policy) Decision {
	for _, rec := range records {
		if rec == nil || rec.RoomID != roomID {
			continue
		}
		if !rec.Status.CountsTowardAvailability() {
			continue
		}
		if stay.Conflicts(proposed, rec.Stay, !policy.AllowSharedDayStay) {
			return Decision{ConflictingID: rec.ID}
		}
	}
	return Decision{Available: true}
}

// Err converts a blocking decision into a RoomUnavailableError, nil otherwise.
func (d Decision) Err(roomID string) error {
	if d.Available {
		return nil
	}
	return &RoomUnavailableError{RoomID: roomID, ConflictingID: d.ConflictingID}
}
