package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and time filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// BondFilter narrows catalog listings. Zero-value fields are ignored, so an
// empty filter lists the whole catalog.
type BondFilter struct {
	Security      SecurityStatus
	Ratings       []string
	Frequencies   []string
	MinOfferYield *float64
	MaxOfferYield *float64
}

// BondStore persists the bond catalog.
type BondStore interface {
	Upsert(ctx context.Context, bond Bond) error
	UpsertBatch(ctx context.Context, bonds []Bond) error
	GetByISIN(ctx context.Context, isin string) (Bond, error)
	List(ctx context.Context, filter BondFilter, opts ListOpts) ([]Bond, error)
	Count(ctx context.Context) (int64, error)
}

// ScenarioResultStore persists evaluated scenarios for history and archival.
type ScenarioResultStore interface {
	Insert(ctx context.Context, res ScenarioResult) error
	GetByID(ctx context.Context, id string) (ScenarioResult, error)
	ListRecent(ctx context.Context, opts ListOpts) ([]ScenarioResult, error)
	ListBefore(ctx context.Context, before time.Time) ([]ScenarioResult, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}
