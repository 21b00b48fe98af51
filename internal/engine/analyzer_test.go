package engine

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/kashyapn/inrhedge/internal/domain"
)

func testBond(couponPct float64, freq string) domain.Bond {
	return domain.Bond{
		ISIN:           "IN1234567890",
		Issuer:         "ABC Corporation",
		CouponPct:      couponPct,
		RedemptionDate: time.Date(2028, 9, 30, 0, 0, 0, 0, time.UTC),
		FaceValue:      1000,
		CreditRating:   "AA",
		Frequency:      freq,
		Security:       domain.Secured,
	}
}

// TestEvaluateDepreciationScenario walks the full worked example: ₹1,000,000
// into an 8% annual bond for 1 year, entered at 85.00 with a 5% rupee
// depreciation to 89.25 at exit.
func TestEvaluateDepreciationScenario(t *testing.T) {
	a := NewAnalyzer(DefaultHedgeConfig(), DefaultSweepConfig())

	res, err := a.Evaluate(domain.InvestmentScenario{
		ISIN:      "IN1234567890",
		AmountINR: 1_000_000,
		EntryRate: 85.0,
		ExitRate:  89.25,
		Years:     1,
	}, testBond(8, FreqAnnual))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if !approx(res.FutureValueINR, 1_080_000) {
		t.Errorf("FutureValueINR = %v, want 1080000", res.FutureValueINR)
	}
	if !approx(res.InvestmentUSD, 11764.705882352941) {
		t.Errorf("InvestmentUSD = %v", res.InvestmentUSD)
	}
	if res.Hedge.Contracts != 12 {
		t.Errorf("Contracts = %d, want 12", res.Hedge.Contracts)
	}
	if !approx(res.Hedge.PnLINR, 51_000) {
		t.Errorf("PnLINR = %v, want 51000", res.Hedge.PnLINR)
	}
	if !approx(res.HedgedINR, 1_131_000) {
		t.Errorf("HedgedINR = %v, want 1131000", res.HedgedINR)
	}
	if !approx(res.UnhedgedUSD, 1_080_000/89.25) {
		t.Errorf("UnhedgedUSD = %v, want %v", res.UnhedgedUSD, 1_080_000/89.25)
	}
	if !approx(res.HedgedUSD, 1_131_000/89.25) {
		t.Errorf("HedgedUSD = %v, want %v", res.HedgedUSD, 1_131_000/89.25)
	}

	// When the rupee depreciates, the hedge must leave the investor better
	// off in USD terms than the unhedged position.
	if res.HedgedUSD <= res.UnhedgedUSD {
		t.Errorf("HedgedUSD %v <= UnhedgedUSD %v in depreciation scenario", res.HedgedUSD, res.UnhedgedUSD)
	}

	if !approx(res.AnnualizedINRPct, 8.0) {
		t.Errorf("AnnualizedINRPct = %v, want 8", res.AnnualizedINRPct)
	}
}

// TestEvaluateNeutralExit verifies hedge neutrality: at an unchanged exit
// rate the futures leg contributes nothing and both outcomes coincide.
func TestEvaluateNeutralExit(t *testing.T) {
	a := NewAnalyzer(DefaultHedgeConfig(), DefaultSweepConfig())

	res, err := a.Evaluate(domain.InvestmentScenario{
		ISIN:      "IN1234567890",
		AmountINR: 1_000_000,
		EntryRate: 85.0,
		ExitRate:  85.0,
		Years:     3,
	}, testBond(7.5, FreqQuarterly))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if res.Hedge.PnLINR != 0 {
		t.Errorf("PnLINR = %v, want 0", res.Hedge.PnLINR)
	}
	if !approx(res.HedgedUSD, res.UnhedgedUSD) {
		t.Errorf("HedgedUSD %v != UnhedgedUSD %v at neutral exit", res.HedgedUSD, res.UnhedgedUSD)
	}
	if !approx(res.HedgedAnnualizedUSDPct, res.UnhedgedAnnualizedUSDPct) {
		t.Errorf("annualized returns diverge at neutral exit: %v vs %v",
			res.HedgedAnnualizedUSDPct, res.UnhedgedAnnualizedUSDPct)
	}
}

func TestEvaluateRejectsBadScenarios(t *testing.T) {
	a := NewAnalyzer(DefaultHedgeConfig(), DefaultSweepConfig())
	bond := testBond(8, FreqAnnual)

	tests := []struct {
		name string
		sc   domain.InvestmentScenario
		want error
	}{
		{"zero years", domain.InvestmentScenario{AmountINR: 1000, EntryRate: 85, ExitRate: 85, Years: 0}, domain.ErrInvalidInput},
		{"zero amount", domain.InvestmentScenario{AmountINR: 0, EntryRate: 85, ExitRate: 85, Years: 1}, domain.ErrInvalidInput},
		{"zero entry rate", domain.InvestmentScenario{AmountINR: 1000, EntryRate: 0, ExitRate: 85, Years: 1}, domain.ErrInvalidRate},
		{"negative exit rate", domain.InvestmentScenario{AmountINR: 1000, EntryRate: 85, ExitRate: -1, Years: 1}, domain.ErrInvalidRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Evaluate(tt.sc, bond); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSweepInvariants(t *testing.T) {
	a := NewAnalyzer(DefaultHedgeConfig(), SweepConfig{Band: 0.20, Points: 21})

	seq, err := a.Sweep(85.0, 1_080_000, 12)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	var points []domain.SweepPoint
	for p := range seq {
		points = append(points, p)
	}

	if len(points) != 21 {
		t.Fatalf("sweep produced %d points, want 21", len(points))
	}

	// Strictly increasing in exit rate, spanning the full band.
	for i := 1; i < len(points); i++ {
		if points[i].ExitRate <= points[i-1].ExitRate {
			t.Errorf("exit rates not increasing at %d: %v <= %v", i, points[i].ExitRate, points[i-1].ExitRate)
		}
	}
	if !approx(points[0].ExitRate, 85.0*0.8) {
		t.Errorf("first exit rate = %v, want %v", points[0].ExitRate, 85.0*0.8)
	}
	if !approx(points[len(points)-1].ExitRate, 85.0*1.2) {
		t.Errorf("last exit rate = %v, want %v", points[len(points)-1].ExitRate, 85.0*1.2)
	}

	// Odd point count: the midpoint is the entry rate, exactly.
	mid := points[len(points)/2]
	if mid.ExitRate != 85.0 {
		t.Errorf("midpoint exit rate = %v, want exactly 85", mid.ExitRate)
	}
	// At the entry rate the hedge is neutral.
	if !approx(mid.HedgedUSD, mid.UnhedgedUSD) {
		t.Errorf("midpoint hedged %v != unhedged %v", mid.HedgedUSD, mid.UnhedgedUSD)
	}

	// Above the entry rate the hedged value dominates; below, it trails.
	for _, p := range points {
		switch {
		case p.ExitRate > 85.0 && p.HedgedUSD <= p.UnhedgedUSD:
			t.Errorf("at %v hedged %v <= unhedged %v", p.ExitRate, p.HedgedUSD, p.UnhedgedUSD)
		case p.ExitRate < 85.0 && p.HedgedUSD >= p.UnhedgedUSD:
			t.Errorf("at %v hedged %v >= unhedged %v", p.ExitRate, p.HedgedUSD, p.UnhedgedUSD)
		}
	}
}

// TestSweepRestartable ranges the same sequence twice and expects identical
// output both times.
func TestSweepRestartable(t *testing.T) {
	a := NewAnalyzer(DefaultHedgeConfig(), SweepConfig{Band: 0.10, Points: 5})

	seq, err := a.Sweep(80.0, 500_000, 6)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	collect := func() []domain.SweepPoint {
		var out []domain.SweepPoint
		for p := range seq {
			out = append(out, p)
		}
		return out
	}

	first, second := collect(), collect()
	if len(first) != 5 || len(second) != 5 {
		t.Fatalf("collected %d and %d points, want 5 each", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("replay diverged at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

// TestSweepEarlyBreak confirms the sequence is truly lazy: breaking out stops
// iteration without producing further points.
func TestSweepEarlyBreak(t *testing.T) {
	a := NewAnalyzer(DefaultHedgeConfig(), SweepConfig{Band: 0.20, Points: 21})

	seq, err := a.Sweep(85.0, 1_080_000, 12)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	n := 0
	for range seq {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("consumed %d points, want 3", n)
	}
}

func TestSweepInvalidInput(t *testing.T) {
	a := NewAnalyzer(DefaultHedgeConfig(), DefaultSweepConfig())

	if _, err := a.Sweep(0, 1_080_000, 12); !errors.Is(err, domain.ErrInvalidRate) {
		t.Errorf("zero entry rate error = %v, want ErrInvalidRate", err)
	}
	if _, err := a.Sweep(85, 0, 12); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("zero future value error = %v, want ErrInvalidInput", err)
	}
	if _, err := a.Sweep(85, 1_080_000, -1); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("negative contracts error = %v, want ErrInvalidInput", err)
	}
}

func TestAnnualizedPct(t *testing.T) {
	if got := annualizedPct(1_080_000, 1_000_000, 1); !approx(got, 8) {
		t.Errorf("annualizedPct 1y = %v, want 8", got)
	}
	// Two years of compounding at 8%: (1.08^2)^(1/2) - 1 = 8%.
	if got := annualizedPct(1_000_000*math.Pow(1.08, 2), 1_000_000, 2); !approx(got, 8) {
		t.Errorf("annualizedPct 2y = %v, want 8", got)
	}
}
