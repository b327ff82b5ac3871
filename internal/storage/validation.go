// Package storage persists reconciliation run history. Balances are always
// recomputed from the live portal; this layer records what each run produced
// so results can be compared across time.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/transparencia-labs/saldo/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidRun     = errors.New("invalid run")
	ErrInvalidBalance = errors.New("invalid balance")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRun validates a batch run record.
func validateRun(run *model.BatchRun) error {
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if run.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRun)
	}
	if run.Year == 0 {
		return fmt.Errorf("%w: missing year", ErrInvalidRun)
	}
	if run.StartedAt.IsZero() {
		return fmt.Errorf("%w: missing start time", ErrInvalidRun)
	}
	return nil
}

// validateBalances validates a slice of reconciled balances.
func validateBalances(balances []model.CommitmentBalance) error {
	if balances == nil {
		return fmt.Errorf("%w: balances", ErrNilParameter)
	}
	for i, b := range balances {
		if strings.TrimSpace(b.Commitment) == "" {
			return fmt.Errorf("balance at index %d: %w: missing commitment code", i, ErrInvalidBalance)
		}
	}
	return nil
}
