package pricing

import (
	"errors"

	"innkeep/internal/domain/shared/money"
)

var (
	// ErrNegativeCount is returned for negative extra-bed/extra-wood counts.
	ErrNegativeCount = errors.New("pricing: add-on counts must not be negative")
	// ErrNegativeAmount is returned for negative discount or top-up amounts.
	ErrNegativeAmount = errors.New("pricing: discount and top-up must not be negative")
)

// Default per-unit add-on prices in minor units; overridable through config.
const (
	DefaultExtraBedPrice  = 2000
	DefaultExtraWoodPrice = 1500
)

// Tariff holds the process-wide per-unit add-on prices. Charges are flat per
// reservation, not per night.
type Tariff struct {
	ExtraBed  money.Money
	ExtraWood money.Money
}

// DefaultTariff returns the standard add-on prices in the given currency.
func DefaultTariff(currency string) Tariff {
	return Tariff{
		ExtraBed:  money.Must(DefaultExtraBedPrice, currency),
		ExtraWood: money.Must(DefaultExtraWoodPrice, currency),
	}
}

// Adjustment captures the caller-chosen add-ons and manual amount tweaks for
// one reservation.
type Adjustment struct {
	ExtraBeds int
	ExtraWood int
	Discount  money.Money
	TopUp     money.Money
}

// Validate rejects negative counts and negative manual amounts.
func (a Adjustment) Validate() error {
	if a.ExtraBeds < 0 || a.ExtraWood < 0 {
		return ErrNegativeCount
	}
	if a.Discount.IsNegative() || a.TopUp.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// Outcome is the priced result of applying an adjustment to a base amount.
type Outcome struct {
	Base     money.Money
	Extras   money.Money
	Discount money.Money
	TopUp    money.Money
	Total    money.Money
}

// Apply layers add-ons, discount and top-up over the base amount:
//
//	total = max(0, base + extras - discount + topUp)
//
// The clamp is a business rule: over-discounting floors the total to free,
// never to a credit.
func Apply(base money.Money, adj Adjustment, tariff Tariff) (Outcome, error) {
	if base.IsNegative() {
		return Outcome{}, ErrNegativeAmount
	}
	if err := adj.Validate(); err != nil {
		return Outcome{}, err
	}
	currency := base.Currency

	extras, err := tariff.ExtraBed.Scale(int64(adj.ExtraBeds)).
		Add(tariff.ExtraWood.Scale(int64(adj.ExtraWood)))
	if err != nil {
		return Outcome{}, err
	}
	discount := adj.Discount
	if discount.Currency == "" {
		discount = money.Zero(currency)
	}
	topUp := adj.TopUp
	if topUp.Currency == "" {
		topUp = money.Zero(currency)
	}

	total, err := base.Add(extras)
	if err != nil {
		return Outcome{}, err
	}
	total, err = total.Sub(discount)
	if err != nil {
		return Outcome{}, err
	}
	total, err = total.Add(topUp)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{
		Base:     base,
		Extras:   extras,
		Discount: discount,
		TopUp:    topUp,
		Total:    total.ClampZero(),
	}, nil
}
