package domain

import (
	"context"
	"time"
)

// RateCache provides fast access to the latest spot exchange rates, keyed by
// currency pair (e.g. "USDINR").
type RateCache interface {
	SetRate(ctx context.Context, pair string, rate float64, ts time.Time) error
	GetRate(ctx context.Context, pair string) (float64, time.Time, error)
}

// SignalBus provides pub/sub fan-out of calculation events to live consumers
// (the WebSocket hub).
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
