package engine

import (
	"fmt"

	"github.com/kashyapn/inrhedge/internal/domain"
)

// ToForeign converts a local-currency (INR) amount to foreign currency (USD)
// at the given USDINR rate.
func ToForeign(localAmount, rate float64) (float64, error) {
	if rate <= 0 {
		return 0, fmt.Errorf("engine: rate %.4f: %w", rate, domain.ErrInvalidRate)
	}
	return localAmount / rate, nil
}

// ToLocal converts a foreign-currency (USD) amount to local currency (INR)
// at the given USDINR rate. ToLocal(ToForeign(x, r), r) == x for any r > 0,
// within floating-point tolerance.
func ToLocal(foreignAmount, rate float64) (float64, error) {
	if rate <= 0 {
		return 0, fmt.Errorf("engine: rate %.4f: %w", rate, domain.ErrInvalidRate)
	}
	return foreignAmount * rate, nil
}
