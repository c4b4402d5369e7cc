package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innkeep/internal/domain/shared/money"
)

func usd(amount int64) money.Money { return money.Must(amount, "USD") }

func TestApplyScenario(t *testing.T) {
	// base 300.00, 2 extra beds @20.00, 1 extra wood @15.00, discount 50.00.
	out, err := Apply(usd(30000), Adjustment{
		ExtraBeds: 2,
		ExtraWood: 1,
		Discount:  usd(5000),
	}, DefaultTariff("USD"))
	require.NoError(t, err)

	assert.Equal(t, int64(5500), out.Extras.Amount)
	assert.Equal(t, int64(30500), out.Total.Amount)
	assert.Equal(t, int64(30000), out.Base.Amount)
	assert.Equal(t, int64(5000), out.Discount.Amount)
	assert.True(t, out.TopUp.IsZero())
}

func TestApplyTopUp(t *testing.T) {
	out, err := Apply(usd(10000), Adjustment{TopUp: usd(2500)}, DefaultTariff("USD"))
	require.NoError(t, err)
	assert.Equal(t, int64(12500), out.Total.Amount)
}

func TestApplyClampsTotalAtZero(t *testing.T) {
	tests := []struct {
		name     string
		base     int64
		discount int64
	}{
		{"discount exceeds base", 10000, 99999},
		{"discount equals base", 10000, 10000},
		{"huge discount on zero base", 0, 1 << 40},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Apply(usd(tc.base), Adjustment{Discount: usd(tc.discount)}, DefaultTariff("USD"))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, out.Total.Amount, int64(0))
		})
	}
}

func TestApplyRejectsNegativeInputs(t *testing.T) {
	tariff := DefaultTariff("USD")

	_, err := Apply(usd(100), Adjustment{ExtraBeds: -1}, tariff)
	require.ErrorIs(t, err, ErrNegativeCount)

	_, err = Apply(usd(100), Adjustment{ExtraWood: -2}, tariff)
	require.ErrorIs(t, err, ErrNegativeCount)

	_, err = Apply(usd(100), Adjustment{Discount: usd(-1)}, tariff)
	require.ErrorIs(t, err, ErrNegativeAmount)

	_, err = Apply(usd(100), Adjustment{TopUp: usd(-1)}, tariff)
	require.ErrorIs(t, err, ErrNegativeAmount)

	_, err = Apply(usd(-100), Adjustment{}, tariff)
	require.ErrorIs(t, err, ErrNegativeAmount)
}

func TestApplyZeroAdjustmentKeepsBase(t *testing.T) {
	out, err := Apply(usd(30000), Adjustment{}, DefaultTariff("USD"))
	require.NoError(t, err)
	assert.Equal(t, int64(30000), out.Total.Amount)
	assert.True(t, out.Extras.IsZero())
}
