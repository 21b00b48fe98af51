package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kashyapn/inrhedge/internal/domain"
)

const bondColumns = `isin, issuer, coupon_pct, redemption_date, call_put_date, face_value,
	credit_rating, outlook, frequency, security, special_feature,
	tradable_qty, tradable_fv, offer_yield_pct, redemption`

// BondStore implements domain.BondStore using PostgreSQL.
type BondStore struct {
	pool *pgxpool.Pool
}

// NewBondStore creates a new BondStore.
func NewBondStore(pool *pgxpool.Pool) *BondStore {
	return &BondStore{pool: pool}
}

// Upsert inserts or replaces a catalog record keyed by ISIN.
func (s *BondStore) Upsert(ctx context.Context, bond domain.Bond) error {
	const query = `
		INSERT INTO bonds (` + bondColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (isin) DO UPDATE SET
			issuer = EXCLUDED.issuer,
			coupon_pct = EXCLUDED.coupon_pct,
			redemption_date = EXCLUDED.redemption_date,
			call_put_date = EXCLUDED.call_put_date,
			face_value = EXCLUDED.face_value,
			credit_rating = EXCLUDED.credit_rating,
			outlook = EXCLUDED.outlook,
			frequency = EXCLUDED.frequency,
			security = EXCLUDED.security,
			special_feature = EXCLUDED.special_feature,
			tradable_qty = EXCLUDED.tradable_qty,
			tradable_fv = EXCLUDED.tradable_fv,
			offer_yield_pct = EXCLUDED.offer_yield_pct,
			redemption = EXCLUDED.redemption,
			updated_at = NOW()`
	_, err := s.pool.Exec(ctx, query,
		bond.ISIN, bond.Issuer, bond.CouponPct, bond.RedemptionDate, bond.CallPutDate,
		bond.FaceValue, bond.CreditRating, bond.Outlook, bond.Frequency, string(bond.Security),
		bond.SpecialFeature, bond.TradableQty, bond.TradableFV, bond.OfferYieldPct, bond.Redemption,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert bond %s: %w", bond.ISIN, err)
	}
	return nil
}

// UpsertBatch upserts a full catalog load inside one transaction.
func (s *BondStore) UpsertBatch(ctx context.Context, bonds []domain.Bond) error {
	if len(bonds) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin bond batch: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, b := range bonds {
		const query = `
			INSERT INTO bonds (` + bondColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			ON CONFLICT (isin) DO UPDATE SET
				issuer = EXCLUDED.issuer,
				coupon_pct = EXCLUDED.coupon_pct,
				redemption_date = EXCLUDED.redemption_date,
				call_put_date = EXCLUDED.call_put_date,
				face_value = EXCLUDED.face_value,
				credit_rating = EXCLUDED.credit_rating,
				outlook = EXCLUDED.outlook,
				frequency = EXCLUDED.frequency,
				security = EXCLUDED.security,
				special_feature = EXCLUDED.special_feature,
				tradable_qty = EXCLUDED.tradable_qty,
				tradable_fv = EXCLUDED.tradable_fv,
				offer_yield_pct = EXCLUDED.offer_yield_pct,
				redemption = EXCLUDED.redemption,
				updated_at = NOW()`
		if _, err := tx.Exec(ctx, query,
			b.ISIN, b.Issuer, b.CouponPct, b.RedemptionDate, b.CallPutDate,
			b.FaceValue, b.CreditRating, b.Outlook, b.Frequency, string(b.Security),
			b.SpecialFeature, b.TradableQty, b.TradableFV, b.OfferYieldPct, b.Redemption,
		); err != nil {
			return fmt.Errorf("postgres: upsert bond %s in batch: %w", b.ISIN, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit bond batch: %w", err)
	}
	return nil
}

// GetByISIN returns a single catalog record. Returns domain.ErrNotFound when
// the ISIN is unknown.
func (s *BondStore) GetByISIN(ctx context.Context, isin string) (domain.Bond, error) {
	const query = `SELECT ` + bondColumns + ` FROM bonds WHERE isin = $1`

	bond, err := scanBond(s.pool.QueryRow(ctx, query, isin))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Bond{}, fmt.Errorf("postgres: bond %s: %w", isin, domain.ErrNotFound)
		}
		return domain.Bond{}, fmt.Errorf("postgres: get bond %s: %w", isin, err)
	}
	return bond, nil
}

// List returns catalog records matching the filter, ordered by ISIN.
// Zero-value filter fields are ignored.
func (s *BondStore) List(ctx context.Context, filter domain.BondFilter, opts domain.ListOpts) ([]domain.Bond, error) {
	query := `SELECT ` + bondColumns + ` FROM bonds WHERE 1=1`
	args := []any{}
	argIdx := 1

	if filter.Security != "" {
		query += fmt.Sprintf(" AND security = $%d", argIdx)
		args = append(args, string(filter.Security))
		argIdx++
	}
	if len(filter.Ratings) > 0 {
		query += fmt.Sprintf(" AND credit_rating = ANY($%d)", argIdx)
		args = append(args, filter.Ratings)
		argIdx++
	}
	if len(filter.Frequencies) > 0 {
		query += fmt.Sprintf(" AND frequency = ANY($%d)", argIdx)
		args = append(args, filter.Frequencies)
		argIdx++
	}
	if filter.MinOfferYield != nil {
		query += fmt.Sprintf(" AND offer_yield_pct >= $%d", argIdx)
		args = append(args, *filter.MinOfferYield)
		argIdx++
	}
	if filter.MaxOfferYield != nil {
		query += fmt.Sprintf(" AND offer_yield_pct <= $%d", argIdx)
		args = append(args, *filter.MaxOfferYield)
		argIdx++
	}

	query += " ORDER BY isin"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list bonds: %w", err)
	}
	defer rows.Close()

	var bonds []domain.Bond
	for rows.Next() {
		bond, err := scanBond(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan bond: %w", err)
		}
		bonds = append(bonds, bond)
	}
	return bonds, rows.Err()
}

// Count returns the catalog size.
func (s *BondStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bonds`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count bonds: %w", err)
	}
	return n, nil
}

func scanBond(row pgx.Row) (domain.Bond, error) {
	var b domain.Bond
	var security string
	err := row.Scan(
		&b.ISIN, &b.Issuer, &b.CouponPct, &b.RedemptionDate, &b.CallPutDate, &b.FaceValue,
		&b.CreditRating, &b.Outlook, &b.Frequency, &security, &b.SpecialFeature,
		&b.TradableQty, &b.TradableFV, &b.OfferYieldPct, &b.Redemption,
	)
	if err != nil {
		return domain.Bond{}, err
	}
	b.Security = domain.SecurityStatus(security)
	return b, nil
}

// Compile-time interface check.
var _ domain.BondStore = (*BondStore)(nil)
