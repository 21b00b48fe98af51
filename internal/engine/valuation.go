package engine

import (
	"fmt"
	"math"

	"github.com/kashyapn/inrhedge/internal/domain"
)

// FutureValue projects the value of principal after the given number of whole
// years, compounding at the bond's annual coupon rate (in percent) with the
// per-period schedule implied by the frequency label:
//
//	n      = PeriodsPerYear(freqLabel)
//	result = principal * (1 + (couponPct/100)/n)^(years*n)
//
// This models reinvested coupon income, not a discounted-cash-flow valuation
// at market yield. A zero coupon returns the principal exactly.
func FutureValue(principal, couponPct float64, freqLabel string, years int) (float64, error) {
	if principal <= 0 {
		return 0, fmt.Errorf("engine: non-positive principal %.2f: %w", principal, domain.ErrInvalidInput)
	}
	if couponPct < 0 {
		return 0, fmt.Errorf("engine: negative coupon %.4f: %w", couponPct, domain.ErrInvalidInput)
	}
	if years < 1 {
		return 0, fmt.Errorf("engine: horizon %d years, need >= 1: %w", years, domain.ErrInvalidInput)
	}

	n := PeriodsPerYear(freqLabel)
	periodicRate := couponPct / 100 / float64(n)
	totalPeriods := float64(years * n)

	return principal * math.Pow(1+periodicRate, totalPeriods), nil
}
