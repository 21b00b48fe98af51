package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/kashyapn/inrhedge/internal/domain"
	"github.com/kashyapn/inrhedge/internal/engine"
)

// ---------------------------------------------------------------------------
// in-memory fakes
// ---------------------------------------------------------------------------

type fakeBondStore struct {
	mu    sync.Mutex
	bonds map[string]domain.Bond
}

func newFakeBondStore(bonds ...domain.Bond) *fakeBondStore {
	s := &fakeBondStore{bonds: make(map[string]domain.Bond)}
	for _, b := range bonds {
		s.bonds[b.ISIN] = b
	}
	return s
}

func (s *fakeBondStore) Upsert(_ context.Context, bond domain.Bond) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bonds[bond.ISIN] = bond
	return nil
}

func (s *fakeBondStore) UpsertBatch(ctx context.Context, bonds []domain.Bond) error {
	for _, b := range bonds {
		if err := s.Upsert(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeBondStore) GetByISIN(_ context.Context, isin string) (domain.Bond, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bonds[isin]
	if !ok {
		return domain.Bond{}, domain.ErrNotFound
	}
	return b, nil
}

func (s *fakeBondStore) List(_ context.Context, _ domain.BondFilter, _ domain.ListOpts) ([]domain.Bond, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Bond, 0, len(s.bonds))
	for _, b := range s.bonds {
		out = append(out, b)
	}
	return out, nil
}

func (s *fakeBondStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.bonds)), nil
}

type fakeResultStore struct {
	mu      sync.Mutex
	results []domain.ScenarioResult
}

func (s *fakeResultStore) Insert(_ context.Context, res domain.ScenarioResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, res)
	return nil
}

func (s *fakeResultStore) GetByID(_ context.Context, id string) (domain.ScenarioResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.results {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.ScenarioResult{}, domain.ErrNotFound
}

func (s *fakeResultStore) ListRecent(_ context.Context, opts domain.ListOpts) ([]domain.ScenarioResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ScenarioResult, len(s.results))
	copy(out, s.results)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *fakeResultStore) ListBefore(_ context.Context, before time.Time) ([]domain.ScenarioResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ScenarioResult
	for _, r := range s.results {
		if r.Scenario.EvaluatedAt.Before(before) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeResultStore) DeleteBefore(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []domain.ScenarioResult
	var deleted int64
	for _, r := range s.results {
		if r.Scenario.EvaluatedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.results = kept
	return deleted, nil
}

type fakeRateCache struct {
	mu    sync.Mutex
	rates map[string]float64
	times map[string]time.Time
}

func newFakeRateCache() *fakeRateCache {
	return &fakeRateCache{
		rates: make(map[string]float64),
		times: make(map[string]time.Time),
	}
}

func (c *fakeRateCache) SetRate(_ context.Context, pair string, rate float64, ts time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates[pair] = rate
	c.times[pair] = ts
	return nil
}

func (c *fakeRateCache) GetRate(_ context.Context, pair string) (float64, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rate, ok := c.rates[pair]
	if !ok {
		return 0, time.Time{}, domain.ErrNotFound
	}
	return rate, c.times[pair], nil
}

type fakeBus struct {
	mu        sync.Mutex
	published map[string][][]byte
}

func newFakeBus() *fakeBus {
	return &fakeBus{published: make(map[string][][]byte)}
}

func (b *fakeBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published[channel] = append(b.published[channel], payload)
	return nil
}

func (b *fakeBus) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, nil
}

func (b *fakeBus) count(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published[channel])
}

// ---------------------------------------------------------------------------
// fixtures
// ---------------------------------------------------------------------------

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testBond() domain.Bond {
	return domain.Bond{
		ISIN:           "IN1234567890",
		Issuer:         "ABC Corporation",
		CouponPct:      8,
		RedemptionDate: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		FaceValue:      1000,
		Frequency:      engine.FreqAnnual,
		Security:       domain.Secured,
	}
}

func newTestScenarioService(bonds *fakeBondStore, results *fakeResultStore, rates *fakeRateCache, bus *fakeBus) *ScenarioService {
	analyzer := engine.NewAnalyzer(engine.DefaultHedgeConfig(), engine.DefaultSweepConfig())
	return NewScenarioService(bonds, results, rates, bus, analyzer, testLogger())
}

func approx(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}

// ---------------------------------------------------------------------------
// tests
// ---------------------------------------------------------------------------

func TestEvaluatePersistsAndPublishes(t *testing.T) {
	bonds := newFakeBondStore(testBond())
	results := &fakeResultStore{}
	bus := newFakeBus()
	svc := newTestScenarioService(bonds, results, newFakeRateCache(), bus)

	res, err := svc.Evaluate(context.Background(), domain.InvestmentScenario{
		ISIN:      "IN1234567890",
		AmountINR: 1_000_000,
		EntryRate: 85,
		ExitRate:  89.25,
		Years:     1,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if res.ID == "" {
		t.Error("result ID not assigned")
	}
	if res.Scenario.EvaluatedAt.IsZero() {
		t.Error("EvaluatedAt not stamped")
	}
	if !approx(res.FutureValueINR, 1_080_000) {
		t.Errorf("FutureValueINR = %v, want 1080000", res.FutureValueINR)
	}
	if res.Hedge.Contracts != 12 {
		t.Errorf("Contracts = %d, want 12", res.Hedge.Contracts)
	}
	if !approx(res.Hedge.PnLINR, 51_000) {
		t.Errorf("PnLINR = %v, want 51000", res.Hedge.PnLINR)
	}

	if len(results.results) != 1 {
		t.Fatalf("persisted %d results, want 1", len(results.results))
	}
	if results.results[0].ID != res.ID {
		t.Errorf("persisted ID %q != returned ID %q", results.results[0].ID, res.ID)
	}
	if bus.count("scenarios") != 1 {
		t.Errorf("published %d scenario events, want 1", bus.count("scenarios"))
	}
}

func TestEvaluateEntryRateFromCache(t *testing.T) {
	rates := newFakeRateCache()
	if err := rates.SetRate(context.Background(), "USDINR", 85, time.Now()); err != nil {
		t.Fatal(err)
	}
	svc := newTestScenarioService(newFakeBondStore(testBond()), &fakeResultStore{}, rates, newFakeBus())

	res, err := svc.Evaluate(context.Background(), domain.InvestmentScenario{
		ISIN:      "IN1234567890",
		AmountINR: 1_000_000,
		ExitRate:  89.25,
		Years:     1,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Scenario.EntryRate != 85 {
		t.Errorf("EntryRate = %v, want cached spot 85", res.Scenario.EntryRate)
	}
}

func TestEvaluateEntryRateMissingEverywhere(t *testing.T) {
	svc := newTestScenarioService(newFakeBondStore(testBond()), &fakeResultStore{}, newFakeRateCache(), newFakeBus())

	_, err := svc.Evaluate(context.Background(), domain.InvestmentScenario{
		ISIN:      "IN1234567890",
		AmountINR: 1_000_000,
		ExitRate:  89.25,
		Years:     1,
	})
	if !errors.Is(err, domain.ErrInvalidRate) {
		t.Errorf("error = %v, want ErrInvalidRate when no entry rate is available", err)
	}
}

func TestEvaluateExitRateDefault(t *testing.T) {
	svc := newTestScenarioService(newFakeBondStore(testBond()), &fakeResultStore{}, newFakeRateCache(), newFakeBus())

	res, err := svc.Evaluate(context.Background(), domain.InvestmentScenario{
		ISIN:      "IN1234567890",
		AmountINR: 1_000_000,
		EntryRate: 80,
		Years:     1,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !approx(res.Scenario.ExitRate, 84) {
		t.Errorf("ExitRate = %v, want default 80*1.05 = 84", res.Scenario.ExitRate)
	}
}

func TestEvaluateUnknownISIN(t *testing.T) {
	svc := newTestScenarioService(newFakeBondStore(), &fakeResultStore{}, newFakeRateCache(), newFakeBus())

	_, err := svc.Evaluate(context.Background(), domain.InvestmentScenario{
		ISIN:      "IN0000000000",
		AmountINR: 1_000_000,
		EntryRate: 85,
		ExitRate:  89.25,
		Years:     1,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound for unknown ISIN", err)
	}
}

func TestSweepReturnsFullCurve(t *testing.T) {
	results := &fakeResultStore{}
	svc := newTestScenarioService(newFakeBondStore(testBond()), results, newFakeRateCache(), newFakeBus())

	res, points, err := svc.Sweep(context.Background(), domain.InvestmentScenario{
		ISIN:      "IN1234567890",
		AmountINR: 1_000_000,
		EntryRate: 85,
		ExitRate:  89.25,
		Years:     1,
	})
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	want := engine.DefaultSweepConfig().Points
	if len(points) != want {
		t.Fatalf("got %d sweep points, want %d", len(points), want)
	}
	if !approx(points[0].ExitRate, 85*0.8) || !approx(points[len(points)-1].ExitRate, 85*1.2) {
		t.Errorf("sweep endpoints = %v .. %v, want 68 .. 102", points[0].ExitRate, points[len(points)-1].ExitRate)
	}
	// Only the anchor evaluation is persisted, not the sweep samples.
	if len(results.results) != 1 {
		t.Errorf("persisted %d results, want 1", len(results.results))
	}
	if res.ID == "" {
		t.Error("anchor result ID not assigned")
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	results := &fakeResultStore{}
	svc := newTestScenarioService(newFakeBondStore(testBond()), results, newFakeRateCache(), newFakeBus())

	ctx := context.Background()
	for _, exit := range []float64{86, 88, 90} {
		if _, err := svc.Evaluate(ctx, domain.InvestmentScenario{
			ISIN:      "IN1234567890",
			AmountINR: 1_000_000,
			EntryRate: 85,
			ExitRate:  exit,
			Years:     1,
		}); err != nil {
			t.Fatalf("Evaluate(exit=%v): %v", exit, err)
		}
	}

	history, err := svc.History(ctx, domain.ListOpts{Limit: 2})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d history entries, want 2", len(history))
	}
	if history[0].Scenario.ExitRate != 90 {
		t.Errorf("newest entry exit rate = %v, want 90", history[0].Scenario.ExitRate)
	}
}

func TestGetResult(t *testing.T) {
	results := &fakeResultStore{}
	svc := newTestScenarioService(newFakeBondStore(testBond()), results, newFakeRateCache(), newFakeBus())

	res, err := svc.Evaluate(context.Background(), domain.InvestmentScenario{
		ISIN:      "IN1234567890",
		AmountINR: 1_000_000,
		EntryRate: 85,
		ExitRate:  89.25,
		Years:     1,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	got, err := svc.GetResult(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if got.ID != res.ID {
		t.Errorf("GetResult ID = %q, want %q", got.ID, res.ID)
	}

	if _, err := svc.GetResult(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetResult(nope) error = %v, want ErrNotFound", err)
	}
}
