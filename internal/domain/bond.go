package domain

import (
	"fmt"
	"strings"
	"time"
)

// SecurityStatus classifies a bond as secured or unsecured.
type SecurityStatus string

const (
	Secured   SecurityStatus = "Secured"
	Unsecured SecurityStatus = "Unsecured"
)

// Bond is a single record from the bond catalog. Optional sheet columns
// (offer yield, credit rating, call/put date, special feature) may be absent;
// absence is represented explicitly rather than with ambiguous zero values.
type Bond struct {
	ISIN           string
	Issuer         string
	CouponPct      float64 // annual coupon rate in percent
	RedemptionDate time.Time
	CallPutDate    *time.Time // nil when the bond has no call/put feature
	FaceValue      float64
	CreditRating   string // empty when unrated / unknown
	Outlook        string
	Frequency      string // interest payment frequency label, e.g. "Quarterly"
	Security       SecurityStatus
	SpecialFeature string
	TradableQty    int64
	TradableFV     float64
	OfferYieldPct  *float64 // annual offer yield in percent; nil when not quoted
	Redemption     string   // principal redemption style, e.g. "Bullet"
}

// Validate checks catalog-boundary invariants. It is called once when a bond
// enters the system; downstream code may assume a validated Bond. An
// unrecognized Frequency is NOT an error: the engine degrades it to annual
// compounding by policy.
func (b Bond) Validate() error {
	if strings.TrimSpace(b.ISIN) == "" {
		return fmt.Errorf("bond: missing ISIN: %w", ErrInvalidInput)
	}
	if b.CouponPct < 0 {
		return fmt.Errorf("bond %s: negative coupon %.4f: %w", b.ISIN, b.CouponPct, ErrInvalidInput)
	}
	if b.OfferYieldPct != nil && *b.OfferYieldPct < 0 {
		return fmt.Errorf("bond %s: negative offer yield %.4f: %w", b.ISIN, *b.OfferYieldPct, ErrInvalidInput)
	}
	if b.FaceValue <= 0 {
		return fmt.Errorf("bond %s: non-positive face value %.2f: %w", b.ISIN, b.FaceValue, ErrInvalidInput)
	}
	if b.RedemptionDate.IsZero() {
		return fmt.Errorf("bond %s: missing redemption date: %w", b.ISIN, ErrInvalidInput)
	}
	switch b.Security {
	case Secured, Unsecured, "":
	default:
		return fmt.Errorf("bond %s: unknown security status %q: %w", b.ISIN, b.Security, ErrInvalidInput)
	}
	return nil
}

// ResidualTenure returns the time remaining until redemption, in years
// (actual/365 simplification).
func (b Bond) ResidualTenure(now time.Time) float64 {
	return b.RedemptionDate.Sub(now).Hours() / 24 / 365
}
