package engine

import (
	"fmt"
	"iter"
	"math"

	"github.com/kashyapn/inrhedge/internal/domain"
)

// SweepConfig controls the rate-sensitivity sweep.
type SweepConfig struct {
	// Band is the symmetric relative band around the entry rate, e.g. 0.20
	// sweeps exit rates in [entry*0.8, entry*1.2].
	Band float64
	// Points is the number of evenly spaced samples across the band.
	Points int
}

// DefaultSweepConfig returns a ±20% band sampled at 21 points, which puts the
// entry rate itself at the midpoint of the curve.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{Band: 0.20, Points: 21}
}

// Analyzer composes valuation, conversion, and hedge sizing into
// investor-facing comparisons. It is stateless apart from its configuration
// and safe for concurrent use.
type Analyzer struct {
	hedge HedgeConfig
	sweep SweepConfig
}

// NewAnalyzer creates an Analyzer, substituting defaults for zero-valued
// configuration fields.
func NewAnalyzer(hedge HedgeConfig, sweep SweepConfig) *Analyzer {
	def := DefaultHedgeConfig()
	if hedge.ContractSize <= 0 {
		hedge.ContractSize = def.ContractSize
	}
	if hedge.PointValue <= 0 {
		hedge.PointValue = def.PointValue
	}
	defSweep := DefaultSweepConfig()
	if sweep.Band <= 0 {
		sweep.Band = defSweep.Band
	}
	if sweep.Points < 2 {
		sweep.Points = defSweep.Points
	}
	return &Analyzer{hedge: hedge, sweep: sweep}
}

// HedgeConfig returns the analyzer's contract parameters.
func (a *Analyzer) HedgeConfig() HedgeConfig { return a.hedge }

// SweepConfig returns the analyzer's sweep parameters.
func (a *Analyzer) SweepConfig() SweepConfig { return a.sweep }

// Evaluate runs the single-point comparison for one scenario against one
// bond: it projects the bond's INR future value, sizes the whole-contract
// hedge at the entry rate, marks the futures position at the exit rate, and
// reports hedged and unhedged outcomes in both currencies with annualized
// returns. The returned result has no ID; the caller assigns identity.
func (a *Analyzer) Evaluate(sc domain.InvestmentScenario, bond domain.Bond) (domain.ScenarioResult, error) {
	if err := sc.Validate(); err != nil {
		return domain.ScenarioResult{}, err
	}

	fv, err := FutureValue(sc.AmountINR, bond.CouponPct, bond.Frequency, sc.Years)
	if err != nil {
		return domain.ScenarioResult{}, err
	}

	investmentUSD, err := ToForeign(sc.AmountINR, sc.EntryRate)
	if err != nil {
		return domain.ScenarioResult{}, err
	}

	contracts, err := ContractsNeeded(investmentUSD, a.hedge.ContractSize)
	if err != nil {
		return domain.ScenarioResult{}, err
	}

	pnl := FuturesPnL(sc.EntryRate, sc.ExitRate, a.hedge.PointValue, contracts)
	hedgedINR := fv + pnl

	unhedgedUSD, err := ToForeign(fv, sc.ExitRate)
	if err != nil {
		return domain.ScenarioResult{}, err
	}
	hedgedUSD, err := ToForeign(hedgedINR, sc.ExitRate)
	if err != nil {
		return domain.ScenarioResult{}, err
	}

	return domain.ScenarioResult{
		Scenario:       sc,
		FutureValueINR: fv,
		InvestmentUSD:  investmentUSD,
		Hedge: domain.HedgePosition{
			Contracts:    contracts,
			ContractSize: a.hedge.ContractSize,
			PointValue:   a.hedge.PointValue,
			EntryRate:    sc.EntryRate,
			PnLINR:       pnl,
		},
		UnhedgedUSD:              unhedgedUSD,
		HedgedINR:                hedgedINR,
		HedgedUSD:                hedgedUSD,
		AnnualizedINRPct:         annualizedPct(fv, sc.AmountINR, sc.Years),
		UnhedgedAnnualizedUSDPct: annualizedPct(unhedgedUSD, investmentUSD, sc.Years),
		HedgedAnnualizedUSDPct:   annualizedPct(hedgedUSD, investmentUSD, sc.Years),
	}, nil
}

// Sweep returns the hedge-effectiveness curve: Points evenly spaced exit
// rates spanning [entry*(1-Band), entry*(1+Band)], each paired with the
// unhedged and hedged USD value of the given INR future value and contract
// count. The sequence is lazy and restartable -- ranging over it again
// replays the same points -- and strictly increasing in exit rate. With an
// odd point count the midpoint is the entry rate exactly.
func (a *Analyzer) Sweep(entryRate, futureValueINR float64, contracts int) (iter.Seq[domain.SweepPoint], error) {
	if entryRate <= 0 {
		return nil, fmt.Errorf("engine: non-positive entry rate %.4f: %w", entryRate, domain.ErrInvalidRate)
	}
	if futureValueINR <= 0 {
		return nil, fmt.Errorf("engine: non-positive future value %.2f: %w", futureValueINR, domain.ErrInvalidInput)
	}
	if contracts < 0 {
		return nil, fmt.Errorf("engine: negative contract count %d: %w", contracts, domain.ErrInvalidInput)
	}

	band := a.sweep.Band
	n := a.sweep.Points
	pointValue := a.hedge.PointValue

	return func(yield func(domain.SweepPoint) bool) {
		for i := 0; i < n; i++ {
			// Offset in [-1, 1]; exactly 0 at the midpoint of an odd
			// count, so that sample lands on the entry rate itself.
			offset := 2*float64(i)/float64(n-1) - 1
			exit := entryRate * (1 + band*offset)

			hedgedINR := futureValueINR + FuturesPnL(entryRate, exit, pointValue, contracts)
			p := domain.SweepPoint{
				ExitRate:    exit,
				UnhedgedUSD: futureValueINR / exit,
				HedgedUSD:   hedgedINR / exit,
			}
			if !yield(p) {
				return
			}
		}
	}, nil
}

// annualizedPct converts a growth multiple over a whole-year horizon to an
// annualized percentage return. Callers guarantee initial > 0 and years >= 1.
func annualizedPct(final, initial float64, years int) float64 {
	return (math.Pow(final/initial, 1/float64(years)) - 1) * 100
}
