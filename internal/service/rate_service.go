package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kashyapn/inrhedge/internal/domain"
)

// RateService manages spot rate quotes: it validates and caches operator
// supplied rates and announces updates on the signal bus.
type RateService struct {
	rates  domain.RateCache
	bus    domain.SignalBus
	logger *slog.Logger
}

// NewRateService creates a RateService.
func NewRateService(rates domain.RateCache, bus domain.SignalBus, logger *slog.Logger) *RateService {
	return &RateService{
		rates:  rates,
		bus:    bus,
		logger: logger,
	}
}

// SetRate stores a new spot quote for the pair and publishes a rate update
// event on the "rates" channel.
func (s *RateService) SetRate(ctx context.Context, pair string, rate float64) error {
	if pair == "" {
		return fmt.Errorf("rate_service: empty pair: %w", domain.ErrInvalidInput)
	}
	if rate <= 0 {
		return fmt.Errorf("rate_service: rate %v for %s: %w", rate, pair, domain.ErrInvalidRate)
	}

	ts := time.Now().UTC()
	if err := s.rates.SetRate(ctx, pair, rate, ts); err != nil {
		return fmt.Errorf("rate_service: cache rate %s: %w", pair, err)
	}

	evt, _ := json.Marshal(map[string]any{
		"event":     "rate_update",
		"pair":      pair,
		"rate":      rate,
		"timestamp": ts.Format(time.RFC3339Nano),
	})
	if pubErr := s.bus.Publish(ctx, "rates", evt); pubErr != nil {
		s.logger.WarnContext(ctx, "rate_service: publish rate update failed",
			slog.String("pair", pair),
			slog.String("error", pubErr.Error()),
		)
	}

	return nil
}

// GetRate returns the cached spot quote and its timestamp for the pair.
func (s *RateService) GetRate(ctx context.Context, pair string) (float64, time.Time, error) {
	rate, ts, err := s.rates.GetRate(ctx, pair)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("rate_service: get rate %s: %w", pair, err)
	}
	return rate, ts, nil
}
