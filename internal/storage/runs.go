package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/transparencia-labs/saldo/internal/common"
	"github.com/transparencia-labs/saldo/internal/model"
)

// SaveRun records a completed reconciliation run and its balances in a
// single transaction.
func (s *Store) SaveRun(ctx context.Context, run *model.BatchRun, balances []model.CommitmentBalance) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}
	if err := validateBalances(balances); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveRunTx(ctx, tx, run, balances); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) saveRunTx(ctx context.Context, tx *sql.Tx, run *model.BatchRun, balances []model.CommitmentBalance) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, year, started_at, finished_at, succeeded, failed)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Year, run.StartedAt, run.FinishedAt, run.Succeeded, run.Failed)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_balances (
			run_id, commitment, initial_amount, reinforced, cancelled,
			current, total_settled, total_paid, balance
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, b := range balances {
		// Decimal columns hold canonical strings so values round-trip exactly.
		_, err = stmt.ExecContext(ctx,
			run.ID,
			b.Commitment,
			b.Initial.String(),
			b.Reinforced.String(),
			b.Cancelled.String(),
			b.Current.String(),
			b.TotalSettled.String(),
			b.TotalPaid.String(),
			b.Balance.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to save balance for %s: %w", b.Commitment, err)
		}
	}

	return nil
}

// ListRuns retrieves run history, newest first. A zero year returns runs
// for every year.
func (s *Store) ListRuns(ctx context.Context, year int) ([]model.BatchRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, year, started_at, finished_at, succeeded, failed
		FROM runs
		ORDER BY started_at DESC
	`
	args := []any{}
	if year != 0 {
		query = `
			SELECT id, year, started_at, finished_at, succeeded, failed
			FROM runs
			WHERE year = ?
			ORDER BY started_at DESC
		`
		args = append(args, year)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.BatchRun
	for rows.Next() {
		var run model.BatchRun
		err := rows.Scan(
			&run.ID,
			&run.Year,
			&run.StartedAt,
			&run.FinishedAt,
			&run.Succeeded,
			&run.Failed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetRun retrieves a single run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (*model.BatchRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(runID, "runID"); err != nil {
		return nil, err
	}

	var run model.BatchRun
	err := s.db.QueryRowContext(ctx, `
		SELECT id, year, started_at, finished_at, succeeded, failed
		FROM runs
		WHERE id = ?
	`, runID).Scan(
		&run.ID,
		&run.Year,
		&run.StartedAt,
		&run.FinishedAt,
		&run.Succeeded,
		&run.Failed,
	)

	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return &run, nil
}

// RunBalances retrieves the balances recorded for a run, ordered by
// commitment code.
func (s *Store) RunBalances(ctx context.Context, runID string) ([]model.CommitmentBalance, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(runID, "runID"); err != nil {
		return nil, err
	}

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM runs WHERE id = ?)
	`, runID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check run existence: %w", err)
	}
	if !exists {
		return nil, common.ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT commitment, initial_amount, reinforced, cancelled,
		       current, total_settled, total_paid, balance
		FROM run_balances
		WHERE run_id = ?
		ORDER BY commitment
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var balances []model.CommitmentBalance
	for rows.Next() {
		balance, scanErr := scanBalance(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		balances = append(balances, balance)
	}

	return balances, rows.Err()
}

func scanBalance(rows *sql.Rows) (model.CommitmentBalance, error) {
	var b model.CommitmentBalance
	var initial, reinforced, cancelled, current, settled, paid, balance string

	err := rows.Scan(&b.Commitment, &initial, &reinforced, &cancelled, &current, &settled, &paid, &balance)
	if err != nil {
		return b, fmt.Errorf("failed to scan balance: %w", err)
	}

	fields := []struct {
		dst    *decimal.Decimal
		column string
		value  string
	}{
		{&b.Initial, "initial_amount", initial},
		{&b.Reinforced, "reinforced", reinforced},
		{&b.Cancelled, "cancelled", cancelled},
		{&b.Current, "current", current},
		{&b.TotalSettled, "total_settled", settled},
		{&b.TotalPaid, "total_paid", paid},
		{&b.Balance, "balance", balance},
	}
	for _, f := range fields {
		d, parseErr := decimal.NewFromString(f.value)
		if parseErr != nil {
			return b, fmt.Errorf("failed to parse %s for %s: %w", f.column, b.Commitment, parseErr)
		}
		*f.dst = d
	}

	return b, nil
}
