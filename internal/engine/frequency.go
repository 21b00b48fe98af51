// Package engine implements the bond valuation and currency-hedge
// calculations. Everything in this package is pure: no I/O, no clock, no
// shared state, so every function is deterministic and safe to call
// concurrently.
package engine

// Recognized interest payment frequency labels.
const (
	FreqMonthly    = "Monthly"
	FreqQuarterly  = "Quarterly"
	FreqSemiAnnual = "Semi-Annual"
	FreqAnnual     = "Annual"
)

// PeriodsPerYear maps an interest payment frequency label to the number of
// compounding periods per year. Unrecognized or empty labels fall back to 1
// (annual). That fallback is deliberate policy: a row with a misspelled
// frequency still yields a usable, if conservative, valuation instead of
// halting the calculation.
func PeriodsPerYear(label string) int {
	switch label {
	case FreqMonthly:
		return 12
	case FreqQuarterly:
		return 4
	case FreqSemiAnnual:
		return 2
	case FreqAnnual:
		return 1
	default:
		return 1
	}
}
