// Package catalog parses the tabular bond sheet into validated domain.Bond
// records. Parsing is the single validation boundary: downstream code never
// re-checks row-level invariants.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/kashyapn/inrhedge/internal/domain"
	"github.com/kashyapn/inrhedge/internal/engine"
)

// Column headers as they appear in the bond sheet.
const (
	colISIN       = "ISIN"
	colIssuer     = "Issuer Name"
	colCoupon     = "Coupon"
	colRedemption = "Redemption Date"
	colCallPut    = "Call/Put Date"
	colFaceValue  = "Face Value"
	colSecurity   = "Secured / Unsecured"
	colFeature    = "Special Feature"
	colQty        = "Total Tradable Qty"
	colTradableFV = "Total Tradable FV"
	colOfferYield = "Offer Yield"
	colRating     = "Credit Rating"
	colOutlook    = "Outlook"
	colFrequency  = "Interest Payment Frequency"
	colPrincipal  = "Principal Redemption"
)

const dateLayout = "2006-01-02"

// requiredColumns must be present in the header row; the remaining columns
// are optional and tolerated when blank or missing entirely.
var requiredColumns = []string{colISIN, colIssuer, colCoupon, colRedemption, colFaceValue, colFrequency}

// ParseSheet reads a header-mapped CSV bond sheet and returns the valid
// records. Rows that fail validation are skipped with a warning rather than
// aborting the whole ingest; a malformed file (bad CSV, missing required
// columns) is an error.
func ParseSheet(r io.Reader, logger *slog.Logger) ([]domain.Bond, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("catalog: read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("catalog: missing required column %q: %w", col, domain.ErrInvalidInput)
		}
	}

	var bonds []domain.Bond
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catalog: read row %d: %w", line, err)
		}

		bond, err := parseRow(record, idx)
		if err == nil {
			err = bond.Validate()
		}
		if err != nil {
			logger.Warn("catalog: skipping invalid row",
				slog.Int("line", line),
				slog.String("error", err.Error()),
			)
			continue
		}

		if !knownFrequency(bond.Frequency) {
			logger.Debug("catalog: unrecognized payment frequency, will compound annually",
				slog.String("isin", bond.ISIN),
				slog.String("frequency", bond.Frequency),
			)
		}

		bonds = append(bonds, bond)
	}

	return bonds, nil
}

// knownFrequency reports whether the label is one the engine recognizes.
// Unknown labels still work (annual fallback); this only exists so ingest
// can surface them.
func knownFrequency(label string) bool {
	switch label {
	case engine.FreqMonthly, engine.FreqQuarterly, engine.FreqSemiAnnual, engine.FreqAnnual:
		return true
	default:
		return false
	}
}

func parseRow(record []string, idx map[string]int) (domain.Bond, error) {
	cell := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	coupon, err := parseFloat(cell(colCoupon), colCoupon)
	if err != nil {
		return domain.Bond{}, err
	}
	faceValue, err := parseFloat(cell(colFaceValue), colFaceValue)
	if err != nil {
		return domain.Bond{}, err
	}
	redemption, err := time.Parse(dateLayout, cell(colRedemption))
	if err != nil {
		return domain.Bond{}, fmt.Errorf("catalog: bad %s %q: %w", colRedemption, cell(colRedemption), domain.ErrInvalidInput)
	}

	bond := domain.Bond{
		ISIN:           cell(colISIN),
		Issuer:         cell(colIssuer),
		CouponPct:      coupon,
		RedemptionDate: redemption,
		FaceValue:      faceValue,
		CreditRating:   cell(colRating),
		Outlook:        cell(colOutlook),
		Frequency:      cell(colFrequency),
		Security:       domain.SecurityStatus(cell(colSecurity)),
		SpecialFeature: cell(colFeature),
		Redemption:     cell(colPrincipal),
	}

	// Optional columns: blank cells mean absent, not zero.
	if v := cell(colCallPut); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return domain.Bond{}, fmt.Errorf("catalog: bad %s %q: %w", colCallPut, v, domain.ErrInvalidInput)
		}
		bond.CallPutDate = &t
	}
	if v := cell(colOfferYield); v != "" {
		y, err := parseFloat(v, colOfferYield)
		if err != nil {
			return domain.Bond{}, err
		}
		bond.OfferYieldPct = &y
	}
	if v := cell(colQty); v != "" {
		q, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return domain.Bond{}, fmt.Errorf("catalog: bad %s %q: %w", colQty, v, domain.ErrInvalidInput)
		}
		bond.TradableQty = q
	}
	if v := cell(colTradableFV); v != "" {
		fv, err := parseFloat(v, colTradableFV)
		if err != nil {
			return domain.Bond{}, err
		}
		bond.TradableFV = fv
	}

	return bond, nil
}

func parseFloat(v, col string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("catalog: bad %s %q: %w", col, v, domain.ErrInvalidInput)
	}
	return f, nil
}
