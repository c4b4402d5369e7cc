package rates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innkeep/internal/domain/calendar"
	"innkeep/internal/domain/shared/money"
	"innkeep/internal/domain/stay"
)

func usd(amount int64) money.Money { return money.Must(amount, "USD") }

func usdp(amount int64) *money.Money {
	m := usd(amount)
	return &m
}

func testRange(t *testing.T, in, out string) stay.Range {
	t.Helper()
	r, err := stay.New(calendar.MustParse(in), calendar.MustParse(out))
	require.NoError(t, err)
	return r
}

func TestResolveWeekdayWeekendSplit(t *testing.T) {
	card := Card{
		RoomID:  "r-101",
		Base:    usd(12000),
		Weekday: usdp(10000),
		Weekend: usdp(15000),
	}
	// Friday 2024-03-01 -> Monday 2024-03-04: Fri, Sat, Sun.
	got, err := Resolve(card, testRange(t, "2024-03-01", "2024-03-04"))
	require.NoError(t, err)
	require.Len(t, got.Nights, 3)

	assert.Equal(t, "2024-03-01", got.Nights[0].Date.String())
	assert.Equal(t, int64(10000), got.Nights[0].Rate.Amount) // Friday is a weekday
	assert.Equal(t, int64(15000), got.Nights[1].Rate.Amount) // Saturday
	assert.Equal(t, int64(15000), got.Nights[2].Rate.Amount) // Sunday
	assert.Equal(t, int64(40000), got.Total.Amount)
}

func TestResolveFallsBackToBase(t *testing.T) {
	card := Card{RoomID: "r-101", Base: usd(9000)}
	got, err := Resolve(card, testRange(t, "2024-03-01", "2024-03-04"))
	require.NoError(t, err)
	assert.Equal(t, int64(27000), got.Total.Amount)
	for _, night := range got.Nights {
		assert.Equal(t, int64(9000), night.Rate.Amount)
	}

	// Weekend override only: weekday nights keep the base rate.
	card.Weekend = usdp(14000)
	got, err = Resolve(card, testRange(t, "2024-03-01", "2024-03-04"))
	require.NoError(t, err)
	assert.Equal(t, int64(9000+14000+14000), got.Total.Amount)
}

func TestResolveDayStay(t *testing.T) {
	card := Card{RoomID: "r-101", Base: usd(9000), DayStay: usdp(5000)}
	got, err := Resolve(card, testRange(t, "2024-03-02", "2024-03-02"))
	require.NoError(t, err)
	require.Len(t, got.Nights, 1)
	assert.Equal(t, int64(5000), got.Total.Amount)

	card.DayStay = nil
	_, err = Resolve(card, testRange(t, "2024-03-02", "2024-03-02"))
	require.ErrorIs(t, err, ErrMissingDayStayRate)
}

func TestResolveRejectsNegativeRates(t *testing.T) {
	card := Card{RoomID: "r-101", Base: usd(9000), Weekend: usdp(-100)}
	_, err := Resolve(card, testRange(t, "2024-03-01", "2024-03-04"))
	require.ErrorIs(t, err, ErrNegativeRate)

	card = Card{RoomID: "r-101", Base: usd(-1)}
	_, err = Resolve(card, testRange(t, "2024-03-01", "2024-03-04"))
	require.ErrorIs(t, err, ErrNegativeRate)
}

func TestResolveRejectsMixedCurrencies(t *testing.T) {
	eur := money.Must(8000, "EUR")
	card := Card{RoomID: "r-101", Base: usd(9000), Weekend: &eur}
	_, err := Resolve(card, testRange(t, "2024-03-01", "2024-03-04"))
	require.ErrorIs(t, err, money.ErrCurrencyMismatch)
}
