package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/transparencia-labs/saldo/internal/common"
	"github.com/transparencia-labs/saldo/internal/model"
	"github.com/transparencia-labs/saldo/internal/money"
	"github.com/transparencia-labs/saldo/internal/portal"
)

// Attribute returns how much of one settlement or payment document was
// drawn against the target commitment. A document that does not name
// the commitment legitimately contributes zero; a query failure is
// fatal to the call, never coerced to zero, since that would silently
// understate the commitment's executed total.
func (c *Calculator) Attribute(ctx context.Context, documentCode string, phase model.Phase, commitmentCode string) (decimal.Decimal, error) {
	if phase != model.PhaseSettlement && phase != model.PhasePayment {
		return decimal.Zero, nil
	}

	var impacted []model.ImpactedCommitment
	err := common.WithRetry(ctx, func() error {
		var qerr error
		impacted, qerr = c.querier.ImpactedCommitments(ctx, documentCode, phase)
		if qerr == nil {
			return nil
		}
		var queryErr *portal.QueryError
		if errors.As(qerr, &queryErr) && !queryErr.Retryable() {
			return &common.RetryableError{Err: qerr, Retryable: false}
		}
		return qerr
	}, c.retry)
	if err != nil {
		return decimal.Zero, fmt.Errorf("attributing document %s to commitment %s: %w", documentCode, commitmentCode, err)
	}

	for _, imp := range impacted {
		if imp.Commitment != commitmentCode {
			continue
		}
		switch phase {
		case model.PhasePayment:
			return c.sumAmounts(commitmentCode, imp.PaidValue, imp.PaidArrearsValue), nil
		default:
			return c.sumAmounts(commitmentCode, imp.SettledValue), nil
		}
	}

	c.logger.Debug("Document does not name commitment",
		"document", documentCode,
		"phase", phase.String(),
		"commitment", commitmentCode)
	return decimal.Zero, nil
}

// sumAmounts parses and adds localized value fields, skipping empty and
// literal-zero fields. An unparseable field is logged and contributes
// zero.
func (c *Calculator) sumAmounts(commitmentCode string, values ...string) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		if v == "" || v == "0,00" {
			continue
		}
		amount, err := money.Parse(v)
		if err != nil {
			c.logger.Warn("Discarding unparseable attribution amount",
				"commitment", commitmentCode,
				"value", v,
				"error", err)
			continue
		}
		total = total.Add(amount)
	}
	return total
}
