package domain

import (
	"fmt"
	"time"
)

// InvestmentScenario captures one user query: an INR amount invested in a
// bond for a whole number of years, entered at EntryRate USDINR and evaluated
// at a (possibly hypothetical) ExitRate. It is immutable once constructed and
// lives only for the duration of a single calculation.
type InvestmentScenario struct {
	ISIN        string    `json:"isin"`
	AmountINR   float64   `json:"amount_inr"`
	EntryRate   float64   `json:"entry_rate"`
	ExitRate    float64   `json:"exit_rate"`
	Years       int       `json:"years"`
	EvaluatedAt time.Time `json:"evaluated_at,omitzero"`
}

// Validate enforces the engine preconditions: positive amount and rates, and
// a horizon of at least one whole year (the annualized-return exponent is
// undefined at zero years).
func (s InvestmentScenario) Validate() error {
	if s.AmountINR <= 0 {
		return fmt.Errorf("scenario: non-positive amount %.2f: %w", s.AmountINR, ErrInvalidInput)
	}
	if s.EntryRate <= 0 {
		return fmt.Errorf("scenario: non-positive entry rate %.4f: %w", s.EntryRate, ErrInvalidRate)
	}
	if s.ExitRate <= 0 {
		return fmt.Errorf("scenario: non-positive exit rate %.4f: %w", s.ExitRate, ErrInvalidRate)
	}
	if s.Years < 1 {
		return fmt.Errorf("scenario: horizon %d years, need >= 1: %w", s.Years, ErrInvalidInput)
	}
	return nil
}

// HedgePosition is the computed long USDINR futures position that offsets the
// currency exposure of an INR bond bought with USD. It is derived, never
// constructed directly, and recomputed fresh for every (scenario, exit rate)
// pair.
type HedgePosition struct {
	Contracts    int     `json:"contracts"`
	ContractSize float64 `json:"contract_size"` // USD notional per contract
	PointValue   float64 `json:"point_value"`   // INR P&L per 1.0 rate move per contract
	EntryRate    float64 `json:"entry_rate"`
	PnLINR       float64 `json:"pnl_inr"` // realized P&L at the scenario exit rate
}

// ScenarioResult bundles the hedged and unhedged outcomes of one scenario.
// Pure output: no identity beyond the generated ID, no mutation.
type ScenarioResult struct {
	ID       string             `json:"id"`
	Scenario InvestmentScenario `json:"scenario"`

	FutureValueINR float64       `json:"future_value_inr"`
	InvestmentUSD  float64       `json:"investment_usd"`
	Hedge          HedgePosition `json:"hedge"`

	UnhedgedUSD float64 `json:"unhedged_usd"`
	HedgedINR   float64 `json:"hedged_inr"`
	HedgedUSD   float64 `json:"hedged_usd"`

	// Annualized returns in percent, (final/initial)^(1/years) - 1.
	AnnualizedINRPct         float64 `json:"annualized_inr_pct"`
	UnhedgedAnnualizedUSDPct float64 `json:"unhedged_annualized_usd_pct"`
	HedgedAnnualizedUSDPct   float64 `json:"hedged_annualized_usd_pct"`
}

// SweepPoint is one sample of the hedge-effectiveness curve: the hedged and
// unhedged USD outcomes at a hypothetical exit rate. The sweep output is
// ordered by ExitRate ascending and is plot-ready as-is.
type SweepPoint struct {
	ExitRate    float64 `json:"exit_rate"`
	UnhedgedUSD float64 `json:"unhedged_usd"`
	HedgedUSD   float64 `json:"hedged_usd"`
}
