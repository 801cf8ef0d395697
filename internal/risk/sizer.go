package risk

import (
	"math"

	"signal_bot/internal/models"

	"github.com/pkg/errors"
)

const DefaultFraction = 0.05

// Sizer ограничивает размер позиции долей buying power.
type Sizer struct {
	Fraction float64
}

func NewSizer(fraction float64) Sizer {
	if fraction <= 0 {
		fraction = DefaultFraction
	}
	return Sizer{Fraction: fraction}
}

// Quantity = floor(buyingPower*Fraction/lastPrice), но не меньше 1 акции:
// если доля меньше цены одной акции, всё равно берём одну.
func (s Sizer) Quantity(buyingPower, lastPrice float64) (int64, error) {
	if math.IsNaN(lastPrice) || lastPrice <= 0 {
		return 0, errors.Wrapf(models.ErrInvalidPrice, "last price %.4f", lastPrice)
	}
	qty := math.Floor(buyingPower * s.Fraction / lastPrice)
	if math.IsNaN(qty) || qty < 1 {
		return 1, nil
	}
	if qty > math.MaxInt64/2 {
		return 0, errors.Errorf("quantity overflow: bp=%.2f px=%.4f", buyingPower, lastPrice)
	}
	return int64(qty), nil
}
