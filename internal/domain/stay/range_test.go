package stay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innkeep/internal/domain/calendar"
)

func mustRange(t *testing.T, in, out string) Range {
	t.Helper()
	r, err := New(calendar.MustParse(in), calendar.MustParse(out))
	require.NoError(t, err)
	return r
}

func TestNewRejectsInvertedRange(t *testing.T) {
	_, err := New(calendar.MustParse("2024-03-05"), calendar.MustParse("2024-03-01"))
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(calendar.Date{}, calendar.MustParse("2024-03-01"))
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestOvernightRejectsDayStay(t *testing.T) {
	_, err := Overnight(calendar.MustParse("2024-03-01"), calendar.MustParse("2024-03-01"))
	require.ErrorIs(t, err, ErrInvalidRange)

	r, err := Overnight(calendar.MustParse("2024-03-01"), calendar.MustParse("2024-03-02"))
	require.NoError(t, err)
	assert.Equal(t, 1, r.Nights())
}

func TestNightsInvariant(t *testing.T) {
	tests := []struct {
		in, out string
		nights  int
		dayStay bool
	}{
		{"2024-03-01", "2024-03-05", 4, false},
		{"2024-03-01", "2024-03-02", 1, false},
		{"2024-03-01", "2024-03-01", 0, true},
		{"2024-02-28", "2024-03-01", 2, false},
	}
	for _, tc := range tests {
		r := mustRange(t, tc.in, tc.out)
		assert.Equal(t, tc.nights, r.Nights())
		assert.Equal(t, tc.dayStay, r.IsDayStay())
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	a := mustRange(t, "2024-03-01", "2024-03-05")

	assert.True(t, a.Overlaps(mustRange(t, "2024-03-04", "2024-03-06")))
	assert.True(t, a.Overlaps(mustRange(t, "2024-02-28", "2024-03-02")))
	assert.True(t, a.Overlaps(mustRange(t, "2024-03-02", "2024-03-03")))

	// Checkout day equals the next check-in: no overlap.
	assert.False(t, a.Overlaps(mustRange(t, "2024-03-05", "2024-03-07")))
	assert.False(t, a.Overlaps(mustRange(t, "2024-02-25", "2024-03-01")))
}

func TestConflictSymmetry(t *testing.T) {
	ranges := []Range{
		mustRange(t, "2024-03-01", "2024-03-05"),
		mustRange(t, "2024-03-04", "2024-03-06"),
		mustRange(t, "2024-03-05", "2024-03-07"),
		mustRange(t, "2024-03-03", "2024-03-03"),
		mustRange(t, "2024-03-06", "2024-03-06"),
	}
	for _, a := range ranges {
		for _, b := range ranges {
			assert.Equal(t, Conflicts(a, b, true), Conflicts(b, a, true))
			assert.Equal(t, Conflicts(a, b, false), Conflicts(b, a, false))
		}
	}
}

func TestDayStayConflicts(t *testing.T) {
	overnight := mustRange(t, "2024-03-01", "2024-03-05")
	inside := mustRange(t, "2024-03-03", "2024-03-03")
	checkoutDay := mustRange(t, "2024-03-05", "2024-03-05")

	// A day-stay inside an overnight range collides with it.
	assert.True(t, Conflicts(overnight, inside, false))
	// A day-stay on the checkout day does not: the interval is half-open.
	assert.False(t, Conflicts(overnight, checkoutDay, false))

	same := mustRange(t, "2024-03-03", "2024-03-03")
	assert.True(t, Conflicts(inside, same, true))
	assert.False(t, Conflicts(inside, same, false))
	assert.False(t, Conflicts(inside, checkoutDay, true))
}
