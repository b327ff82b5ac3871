package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/transparencia-labs/saldo/internal/model"
	"github.com/transparencia-labs/saldo/internal/money"
)

// ProcessError describes a failure while reconciling one commitment.
type ProcessError struct {
	Err        error
	Commitment string
	Step       string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("processing commitment %s (%s): %v", e.Commitment, e.Step, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// Balance reconciles one commitment: aggregates its amendment history,
// resolves its related documents, and attributes each settlement and
// payment document back to the commitment.
func (c *Calculator) Balance(ctx context.Context, commitmentCode string) (model.CommitmentBalance, error) {
	c.logger.Info("Reconciling commitment", "commitment", commitmentCode)

	breakdown, err := c.Aggregate(ctx, commitmentCode)
	if err != nil {
		return model.CommitmentBalance{}, &ProcessError{Commitment: commitmentCode, Step: "history", Err: err}
	}
	if c.archiver != nil {
		if err := c.archiver.WriteHistory(commitmentCode, breakdown.History); err != nil {
			c.logger.Warn("Failed to archive ledger history",
				"commitment", commitmentCode,
				"error", err)
		}
	}

	docs, err := c.querier.RelatedDocuments(ctx, commitmentCode)
	if err != nil {
		return model.CommitmentBalance{}, &ProcessError{Commitment: commitmentCode, Step: "related documents", Err: err}
	}
	if c.archiver != nil {
		if err := c.archiver.WriteRelatedDocuments(commitmentCode, docs); err != nil {
			c.logger.Warn("Failed to archive related documents",
				"commitment", commitmentCode,
				"error", err)
		}
	}

	totalSettled := decimal.Zero
	totalPaid := decimal.Zero
	for _, doc := range docs {
		switch doc.Phase {
		case model.PhaseSettlement:
			amount, err := c.Attribute(ctx, doc.DocumentCode, model.PhaseSettlement, commitmentCode)
			if err != nil {
				return model.CommitmentBalance{}, &ProcessError{Commitment: commitmentCode, Step: "attribution", Err: err}
			}
			totalSettled = totalSettled.Add(amount)
		case model.PhasePayment:
			amount, err := c.Attribute(ctx, doc.DocumentCode, model.PhasePayment, commitmentCode)
			if err != nil {
				return model.CommitmentBalance{}, &ProcessError{Commitment: commitmentCode, Step: "attribution", Err: err}
			}
			totalPaid = totalPaid.Add(amount)
		}
	}

	balance := model.CommitmentBalance{
		Commitment:   commitmentCode,
		Initial:      breakdown.Initial,
		Reinforced:   breakdown.Reinforced,
		Cancelled:    breakdown.Cancelled,
		Current:      breakdown.Current,
		TotalSettled: totalSettled,
		TotalPaid:    totalPaid,
		Balance:      breakdown.Current.Sub(totalPaid),
	}

	c.logger.Info("Commitment reconciled",
		"commitment", commitmentCode,
		"current", money.Format(balance.Current),
		"paid", money.Format(balance.TotalPaid),
		"balance", money.Format(balance.Balance))

	return balance, nil
}

// BatchResult tallies a year-wide reconciliation run.
type BatchResult struct {
	Balances []model.CommitmentBalance
	Failed   []string
	Total    int
}

// BalancesForYear reconciles every commitment issued to the recipient
// in the given year. A failure of one commitment is logged and tallied
// without aborting the batch; cancellation stops the run after the
// in-flight commitment completes.
func (c *Calculator) BalancesForYear(ctx context.Context, recipientCode string, year int, progress func(done, total int)) (*BatchResult, error) {
	c.logger.Info("Listing commitments", "recipient", recipientCode, "year", year)

	docs, err := c.querier.DocumentsByRecipient(ctx, recipientCode, model.PhaseCommitment, year)
	if err != nil {
		if len(docs) == 0 {
			return nil, fmt.Errorf("listing commitments for %d: %w", year, err)
		}
		c.logger.Warn("Commitment listing incomplete, proceeding with partial universe",
			"year", year,
			"commitments", len(docs),
			"error", err)
	}

	result := &BatchResult{Total: len(docs)}
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		balance, err := c.Balance(ctx, doc.Document)
		switch {
		case err != nil && ctx.Err() != nil:
			return result, ctx.Err()
		case err != nil:
			c.logger.Error("Failed to reconcile commitment",
				"commitment", doc.Document,
				"error", err)
			result.Failed = append(result.Failed, doc.Document)
		default:
			result.Balances = append(result.Balances, balance)
		}

		if progress != nil {
			progress(i+1, len(docs))
		}
	}

	c.logger.Info("Batch reconciliation finished",
		"year", year,
		"succeeded", len(result.Balances),
		"failed", len(result.Failed))

	return result, nil
}
