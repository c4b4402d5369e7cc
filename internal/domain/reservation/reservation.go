package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/shared/events"
	"innkeep/internal/domain/shared/money"
	"innkeep/internal/domain/stay"
)

var (
	ErrNotFound = errors.New("reservation: not found")
	// ErrCorruptedState is returned when the stored amount components no
	// longer reconcile, e.g. a recovered base below zero.
	ErrCorruptedState = errors.New("reservation: stored amounts do not reconcile")
)

type ID string

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusCheckedOut Status = "CHECKED_OUT"
	StatusCancelled  Status = "CANCELLED"
	StatusNoShow     Status = "NO_SHOW"
)

// ParseStatus maps a wire string onto a known status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled, StatusNoShow:
		return Status(s), nil
	}
	return "", fmt.Errorf("reservation: unknown status %q", s)
}

// IsTerminal reports whether no further transition is permitted.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCheckedOut, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// CountsTowardAvailability reports whether the record blocks its room's
// dates. Cancelled and no-show records free the room.
func (s Status) CountsTowardAvailability() bool {
	return s != StatusCancelled && s != StatusNoShow
}

// transitions is the forward state machine: PENDING and CONFIRMED may divert
// to CANCELLED/NO_SHOW; CHECKED_IN can only complete.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed: {StatusCheckedIn, StatusCancelled, StatusNoShow},
	StatusCheckedIn: {StatusCheckedOut},
}

// InvalidTransitionError reports a disallowed status change, carrying both
// ends so callers can render a precise message.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("reservation: invalid transition %s -> %s", e.From, e.To)
}

// Reservation is the persisted booking record. Amount components are stored
// individually so the base can be recovered when add-ons are edited later.
type Reservation struct {
	ID        ID
	RoomID    string
	GuestName string
	Guests    int
	Stay      stay.Range
	Status    Status
	Amounts   pricing.Outcome
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.Recorder
}

// CreateParams collects everything needed to mint a new record.
type CreateParams struct {
	ID        ID
	RoomID    string
	GuestName string
	Guests    int
	Stay      stay.Range
	Status    Status
	Amounts   pricing.Outcome
	CreatedAt time.Time
}

// New builds a reservation in PENDING or CONFIRMED state with a
// server-computed amount breakdown. Caller-supplied totals are never
// accepted here.
func New(params CreateParams) (*Reservation, error) {
	if params.Status != StatusPending && params.Status != StatusConfirmed {
		return nil, &InvalidTransitionError{From: "", To: params.Status}
	}
	if params.RoomID == "" {
		return nil, errors.New("reservation: room id required")
	}
	if params.Guests <= 0 {
		return nil, errors.New("reservation: guests count must be positive")
	}
	now := params.CreatedAt.UTC()
	r := &Reservation{
		ID:        params.ID,
		RoomID:    params.RoomID,
		GuestName: params.GuestName,
		Guests:    params.Guests,
		Stay:      params.Stay,
		Status:    params.Status,
		Amounts:   params.Amounts,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.Record(Created{
		ReservationID: r.ID,
		RoomID:        r.RoomID,
		Stay:          r.Stay,
		Status:        r.Status,
		Total:         r.Amounts.Total,
		At:            now,
	})
	return r, nil
}

// Transition moves the record to a new status, enforcing the state machine.
func (r *Reservation) Transition(to Status, now time.Time) error {
	for _, allowed := range transitions[r.Status] {
		if allowed == to {
			from := r.Status
			r.Status = to
			r.UpdatedAt = now.UTC()
			r.Record(StatusChanged{ReservationID: r.ID, RoomID: r.RoomID, From: from, To: to, At: r.UpdatedAt})
			return nil
		}
	}
	return &InvalidTransitionError{From: r.Status, To: to}
}

// RecoverBase derives the original base amount from the stored components:
// base = total - extras + discount - topUp. A negative result means the
// stored fields no longer reconcile and is reported as corrupted state.
func (r *Reservation) RecoverBase() (money.Money, error) {
	base, err := r.Amounts.Total.Sub(r.Amounts.Extras)
	if err != nil {
		return money.Money{}, fmt.Errorf("%w: %w", ErrCorruptedState, err)
	}
	base, err = base.Add(r.Amounts.Discount)
	if err != nil {
		return money.Money{}, fmt.Errorf("%w: %w", ErrCorruptedState, err)
	}
	base, err = base.Sub(r.Amounts.TopUp)
	if err != nil {
		return money.Money{}, fmt.Errorf("%w: %w", ErrCorruptedState, err)
	}
	if base.IsNegative() {
		return money.Money{}, ErrCorruptedState
	}
	return base, nil
}

// ReplaceAdjustments swaps in a freshly computed amount breakdown after an
// add-on edit.
func (r *Reservation) ReplaceAdjustments(amounts pricing.Outcome, now time.Time) {
	r.Amounts = amounts
	r.UpdatedAt = now.UTC()
	r.Record(AdjustmentsRecomputed{ReservationID: r.ID, RoomID: r.RoomID, Total: amounts.Total, At: r.UpdatedAt})
}

// Repository is the storage collaborator port for reservation records.
type Repository interface {
	ByID(ctx context.Context, id ID) (*Reservation, error)
	ListByRoom(ctx context.Context, roomID string) ([]*Reservation, error)
	Save(ctx context.Context, r *Reservation) error
}
