// Package service contains the application services that coordinate the
// valuation engine, stores, caches, and signal bus.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kashyapn/inrhedge/internal/domain"
	"github.com/kashyapn/inrhedge/internal/engine"
)

// usdinrPair is the currency pair the evaluation flow quotes from when a
// request omits the entry rate.
const usdinrPair = "USDINR"

// exitRateDefaultFactor prefills the exit rate at 5% INR depreciation when a
// request omits it.
const exitRateDefaultFactor = 1.05

// ScenarioService evaluates hedged bond investment scenarios: it resolves the
// bond and spot rate, runs the analyzer, persists the result, and announces
// it on the signal bus.
type ScenarioService struct {
	bonds    domain.BondStore
	results  domain.ScenarioResultStore
	rates    domain.RateCache
	bus      domain.SignalBus
	analyzer *engine.Analyzer
	logger   *slog.Logger
}

// NewScenarioService creates a ScenarioService with all required dependencies.
func NewScenarioService(
	bonds domain.BondStore,
	results domain.ScenarioResultStore,
	rates domain.RateCache,
	bus domain.SignalBus,
	analyzer *engine.Analyzer,
	logger *slog.Logger,
) *ScenarioService {
	return &ScenarioService{
		bonds:    bonds,
		results:  results,
		rates:    rates,
		bus:      bus,
		analyzer: analyzer,
		logger:   logger,
	}
}

// resolveRates fills in the entry and exit rates a request omitted. A missing
// entry rate falls back to the cached USDINR spot; a missing exit rate
// defaults to 5% INR depreciation from the entry.
func (s *ScenarioService) resolveRates(ctx context.Context, sc domain.InvestmentScenario) (domain.InvestmentScenario, error) {
	if sc.EntryRate == 0 {
		rate, ts, err := s.rates.GetRate(ctx, usdinrPair)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return sc, fmt.Errorf("scenario_service: no entry rate given and no cached %s spot: %w", usdinrPair, domain.ErrInvalidRate)
			}
			return sc, fmt.Errorf("scenario_service: resolve entry rate: %w", err)
		}
		s.logger.InfoContext(ctx, "using cached spot as entry rate",
			slog.String("pair", usdinrPair),
			slog.Float64("rate", rate),
			slog.Time("quoted_at", ts),
		)
		sc.EntryRate = rate
	}
	if sc.ExitRate == 0 {
		sc.ExitRate = sc.EntryRate * exitRateDefaultFactor
	}
	return sc, nil
}

// Evaluate runs a single hedged-versus-unhedged comparison for the scenario,
// persists the result, and publishes it on the "scenarios" channel.
func (s *ScenarioService) Evaluate(ctx context.Context, sc domain.InvestmentScenario) (domain.ScenarioResult, error) {
	sc, err := s.resolveRates(ctx, sc)
	if err != nil {
		return domain.ScenarioResult{}, err
	}

	bond, err := s.bonds.GetByISIN(ctx, sc.ISIN)
	if err != nil {
		return domain.ScenarioResult{}, fmt.Errorf("scenario_service: lookup bond %q: %w", sc.ISIN, err)
	}

	sc.EvaluatedAt = time.Now().UTC()

	res, err := s.analyzer.Evaluate(sc, bond)
	if err != nil {
		return domain.ScenarioResult{}, fmt.Errorf("scenario_service: evaluate %q: %w", sc.ISIN, err)
	}
	res.ID = uuid.NewString()

	if err := s.results.Insert(ctx, res); err != nil {
		return domain.ScenarioResult{}, fmt.Errorf("scenario_service: persist result: %w", err)
	}

	evt, _ := json.Marshal(map[string]any{
		"event":        "scenario_evaluated",
		"id":           res.ID,
		"isin":         sc.ISIN,
		"entry_rate":   sc.EntryRate,
		"exit_rate":    sc.ExitRate,
		"hedged_usd":   res.HedgedUSD,
		"unhedged_usd": res.UnhedgedUSD,
		"evaluated_at": sc.EvaluatedAt.Format(time.RFC3339Nano),
	})
	if pubErr := s.bus.Publish(ctx, "scenarios", evt); pubErr != nil {
		s.logger.WarnContext(ctx, "scenario_service: publish evaluation event failed",
			slog.String("id", res.ID),
			slog.String("error", pubErr.Error()),
		)
	}

	return res, nil
}

// Sweep evaluates the scenario, then walks the exit-rate band around the
// entry rate and returns the comparison at each point. The sweep itself is
// not persisted; only the anchor evaluation is.
func (s *ScenarioService) Sweep(ctx context.Context, sc domain.InvestmentScenario) (domain.ScenarioResult, []domain.SweepPoint, error) {
	res, err := s.Evaluate(ctx, sc)
	if err != nil {
		return domain.ScenarioResult{}, nil, err
	}

	seq, err := s.analyzer.Sweep(res.Scenario.EntryRate, res.FutureValueINR, res.Hedge.Contracts)
	if err != nil {
		return domain.ScenarioResult{}, nil, fmt.Errorf("scenario_service: sweep %q: %w", sc.ISIN, err)
	}

	points := make([]domain.SweepPoint, 0, s.analyzer.SweepConfig().Points)
	for p := range seq {
		points = append(points, p)
	}
	return res, points, nil
}

// History returns previously evaluated results, newest first.
func (s *ScenarioService) History(ctx context.Context, opts domain.ListOpts) ([]domain.ScenarioResult, error) {
	results, err := s.results.ListRecent(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("scenario_service: list history: %w", err)
	}
	return results, nil
}

// GetResult returns a single stored evaluation by ID.
func (s *ScenarioService) GetResult(ctx context.Context, id string) (domain.ScenarioResult, error) {
	res, err := s.results.GetByID(ctx, id)
	if err != nil {
		return domain.ScenarioResult{}, fmt.Errorf("scenario_service: get result %q: %w", id, err)
	}
	return res, nil
}
