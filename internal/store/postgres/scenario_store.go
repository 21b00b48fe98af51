package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kashyapn/inrhedge/internal/domain"
)

const scenarioColumns = `id, isin, amount_inr, entry_rate, exit_rate, years,
	future_value_inr, investment_usd, contracts, contract_size, point_value,
	futures_pnl_inr, unhedged_usd, hedged_inr, hedged_usd,
	annualized_inr_pct, unhedged_annualized_usd_pct, hedged_annualized_usd_pct,
	evaluated_at`

// ScenarioStore implements domain.ScenarioResultStore using PostgreSQL.
type ScenarioStore struct {
	pool *pgxpool.Pool
}

// NewScenarioStore creates a new ScenarioStore.
func NewScenarioStore(pool *pgxpool.Pool) *ScenarioStore {
	return &ScenarioStore{pool: pool}
}

// Insert persists an evaluated scenario result.
func (s *ScenarioStore) Insert(ctx context.Context, res domain.ScenarioResult) error {
	const query = `
		INSERT INTO scenario_results (` + scenarioColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := s.pool.Exec(ctx, query,
		res.ID, res.Scenario.ISIN, res.Scenario.AmountINR, res.Scenario.EntryRate,
		res.Scenario.ExitRate, res.Scenario.Years,
		res.FutureValueINR, res.InvestmentUSD,
		res.Hedge.Contracts, res.Hedge.ContractSize, res.Hedge.PointValue, res.Hedge.PnLINR,
		res.UnhedgedUSD, res.HedgedINR, res.HedgedUSD,
		res.AnnualizedINRPct, res.UnhedgedAnnualizedUSDPct, res.HedgedAnnualizedUSDPct,
		res.Scenario.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert scenario result %s: %w", res.ID, err)
	}
	return nil
}

// GetByID returns a single stored result. Returns domain.ErrNotFound when the
// ID is unknown.
func (s *ScenarioStore) GetByID(ctx context.Context, id string) (domain.ScenarioResult, error) {
	const query = `SELECT ` + scenarioColumns + ` FROM scenario_results WHERE id = $1`

	res, err := scanScenarioResult(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ScenarioResult{}, fmt.Errorf("postgres: scenario result %s: %w", id, domain.ErrNotFound)
		}
		return domain.ScenarioResult{}, fmt.Errorf("postgres: get scenario result %s: %w", id, err)
	}
	return res, nil
}

// ListRecent returns stored results newest first, bounded by opts.
func (s *ScenarioStore) ListRecent(ctx context.Context, opts domain.ListOpts) ([]domain.ScenarioResult, error) {
	query := `SELECT ` + scenarioColumns + ` FROM scenario_results WHERE 1=1`
	args := []any{}
	argIdx := 1

	if opts.Since != nil {
		query += fmt.Sprintf(" AND evaluated_at >= $%d", argIdx)
		args = append(args, *opts.Since)
		argIdx++
	}
	if opts.Until != nil {
		query += fmt.Sprintf(" AND evaluated_at < $%d", argIdx)
		args = append(args, *opts.Until)
		argIdx++
	}

	query += " ORDER BY evaluated_at DESC"

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
		return nil, fmt.Errorf("postgres: list scenario results: %w", err)
	}
	defer rows.Close()

	return collectScenarioResults(rows)
}

// ListBefore returns all results evaluated strictly before the cutoff, oldest
// first. Used by the archiver.
func (s *ScenarioStore) ListBefore(ctx context.Context, before time.Time) ([]domain.ScenarioResult, error) {
	const query = `SELECT ` + scenarioColumns + ` FROM scenario_results
		WHERE evaluated_at < $1 ORDER BY evaluated_at ASC`

	rows, err := s.pool.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list scenario results before %s: %w", before.Format(time.RFC3339), err)
	}
	defer rows.Close()

	return collectScenarioResults(rows)
}

// DeleteBefore removes results evaluated strictly before the cutoff and
// returns the number of rows deleted.
func (s *ScenarioStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM scenario_results WHERE evaluated_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete scenario results before %s: %w", before.Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}

func collectScenarioResults(rows pgx.Rows) ([]domain.ScenarioResult, error) {
	var results []domain.ScenarioResult
	for rows.Next() {
		res, err := scanScenarioResult(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan scenario result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func scanScenarioResult(row pgx.Row) (domain.ScenarioResult, error) {
	var res domain.ScenarioResult
	err := row.Scan(
		&res.ID, &res.Scenario.ISIN, &res.Scenario.AmountINR, &res.Scenario.EntryRate,
		&res.Scenario.ExitRate, &res.Scenario.Years,
		&res.FutureValueINR, &res.InvestmentUSD,
		&res.Hedge.Contracts, &res.Hedge.ContractSize, &res.Hedge.PointValue, &res.Hedge.PnLINR,
		&res.UnhedgedUSD, &res.HedgedINR, &res.HedgedUSD,
		&res.AnnualizedINRPct, &res.UnhedgedAnnualizedUSDPct, &res.HedgedAnnualizedUSDPct,
		&res.Scenario.EvaluatedAt,
	)
	if err != nil {
		return domain.ScenarioResult{}, err
	}
	res.Hedge.EntryRate = res.Scenario.EntryRate
	return res, nil
}

// Compile-time interface check.
var _ domain.ScenarioResultStore = (*ScenarioStore)(nil)
