package reservation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innkeep/internal/domain/calendar"
	"innkeep/internal/domain/pricing"
	"innkeep/internal/domain/shared/money"
	"innkeep/internal/domain/stay"
)

func usd(amount int64) money.Money { return money.Must(amount, "USD") }

func newTestReservation(t *testing.T, status Status) *Reservation {
	t.Helper()
	r, err := stay.New(calendar.MustParse("2024-03-01"), calendar.MustParse("2024-03-05"))
	require.NoError(t, err)
	res, err := New(CreateParams{
		ID:        "res-1",
		RoomID:    "r-101",
		GuestName: "A. Guest",
		Guests:    2,
		Stay:      r,
		Status:    StatusConfirmed,
		Amounts: pricing.Outcome{
			Base:     usd(30000),
			Extras:   usd(5500),
			Discount: usd(5000),
			TopUp:    usd(0),
			Total:    usd(30500),
		},
		CreatedAt: time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	res.Status = status
	res.ClearEvents()
	return res
}

func TestNewRejectsNonInitialStatus(t *testing.T) {
	_, err := New(CreateParams{RoomID: "r-101", Guests: 1, Status: StatusCheckedIn})
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
}

func TestTransitionTable(t *testing.T) {
	allowed := []struct {
		from, to Status
	}{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusPending, StatusNoShow},
		{StatusConfirmed, StatusCheckedIn},
		{StatusConfirmed, StatusCancelled},
		{StatusConfirmed, StatusNoShow},
		{StatusCheckedIn, StatusCheckedOut},
	}
	now := time.Now()
	for _, tc := range allowed {
		res := newTestReservation(t, tc.from)
		require.NoError(t, res.Transition(tc.to, now), "%s -> %s", tc.from, tc.to)
		assert.Equal(t, tc.to, res.Status)
		require.Len(t, res.PendingEvents(), 1)
	}

	denied := []struct {
		from, to Status
	}{
		{StatusCheckedOut, StatusPending},
		{StatusCheckedOut, StatusCheckedIn},
		{StatusCancelled, StatusConfirmed},
		{StatusNoShow, StatusPending},
		{StatusCheckedIn, StatusCancelled},
		{StatusCheckedIn, StatusNoShow},
		{StatusPending, StatusCheckedIn},
		{StatusPending, StatusCheckedOut},
		{StatusConfirmed, StatusCheckedOut},
		{StatusConfirmed, StatusPending},
	}
	for _, tc := range denied {
		res := newTestReservation(t, tc.from)
		err := res.Transition(tc.to, now)
		var ite *InvalidTransitionError
		require.ErrorAs(t, err, &ite, "%s -> %s", tc.from, tc.to)
		assert.Equal(t, tc.from, ite.From)
		assert.Equal(t, tc.to, ite.To)
		assert.Equal(t, tc.from, res.Status, "status must not move on failure")
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusCheckedOut.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusNoShow.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusCheckedIn.IsTerminal())
}

func TestCountsTowardAvailability(t *testing.T) {
	assert.False(t, StatusCancelled.CountsTowardAvailability())
	assert.False(t, StatusNoShow.CountsTowardAvailability())
	assert.True(t, StatusPending.CountsTowardAvailability())
	assert.True(t, StatusConfirmed.CountsTowardAvailability())
	assert.True(t, StatusCheckedIn.CountsTowardAvailability())
	assert.True(t, StatusCheckedOut.CountsTowardAvailability())
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus("CHECKED_IN")
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, got)

	_, err = ParseStatus("checked_in")
	require.Error(t, err)
	_, err = ParseStatus("ARCHIVED")
	require.Error(t, err)
}

func TestRecoverBase(t *testing.T) {
	res := newTestReservation(t, StatusConfirmed)
	base, err := res.RecoverBase()
	require.NoError(t, err)
	assert.Equal(t, int64(30000), base.Amount)

	// total - extras + discount - topUp below zero is corrupted state.
	res.Amounts = pricing.Outcome{
		Base:     usd(0),
		Extras:   usd(9000),
		Discount: usd(0),
		TopUp:    usd(0),
		Total:    usd(100),
	}
	_, err = res.RecoverBase()
	require.ErrorIs(t, err, ErrCorruptedState)
}
