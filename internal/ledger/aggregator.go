package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/transparencia-labs/saldo/internal/model"
	"github.com/transparencia-labs/saldo/internal/money"
)

const (
	// MaxSequentials bounds the item-sequential scan of one commitment.
	MaxSequentials = 20
	// missLimit is the number of consecutive empty sequentials after
	// which the scan stops early. Sequentials are not necessarily
	// dense, so a single gap must not end the scan.
	missLimit = 3
)

// Breakdown carries the aggregated amendment totals of one commitment
// plus the full per-sequential event history for the audit archive.
type Breakdown struct {
	History    map[int][]model.LedgerEvent
	Initial    decimal.Decimal
	Reinforced decimal.Decimal
	Cancelled  decimal.Decimal
	Current    decimal.Decimal
}

// Aggregate scans the commitment's item sequentials and folds every
// amendment operation into the component totals. Inclusions and
// reinforcements add, cancellations subtract; unknown operation types
// are skipped so new portal codes do not break the fold.
//
// A failed sequential query is logged and treated like the empty
// result the portal would otherwise have returned; any records
// fetched before the failure still count.
func (c *Calculator) Aggregate(ctx context.Context, commitmentCode string) (Breakdown, error) {
	breakdown := Breakdown{
		History:    make(map[int][]model.LedgerEvent),
		Initial:    decimal.Zero,
		Reinforced: decimal.Zero,
		Cancelled:  decimal.Zero,
		Current:    decimal.Zero,
	}

	misses := 0
	for seq := 1; seq <= MaxSequentials; seq++ {
		if seq > 1 {
			if err := c.clock.Sleep(ctx, c.delay); err != nil {
				return breakdown, err
			}
		}

		events, err := c.querier.LedgerHistory(ctx, commitmentCode, seq)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return breakdown, ctxErr
			}
			c.logger.Warn("Ledger history query failed",
				"commitment", commitmentCode,
				"sequential", seq,
				"partial_events", len(events),
				"error", err)
		}

		if len(events) == 0 {
			misses++
			if misses >= missLimit {
				c.logger.Debug("Stopping sequential scan",
					"commitment", commitmentCode,
					"sequential", seq,
					"consecutive_misses", misses)
				break
			}
			continue
		}
		misses = 0

		breakdown.History[seq] = events
		for _, ev := range events {
			c.fold(&breakdown, commitmentCode, ev)
		}
	}

	breakdown.Current = breakdown.Initial.Add(breakdown.Reinforced).Sub(breakdown.Cancelled)
	return breakdown, nil
}

func (c *Calculator) fold(b *Breakdown, commitmentCode string, ev model.LedgerEvent) {
	amount, err := money.Parse(ev.Amount)
	if err != nil {
		c.logger.Warn("Discarding unparseable operation amount",
			"commitment", commitmentCode,
			"sequential", ev.Sequential,
			"value", ev.Amount,
			"error", err)
		return
	}

	switch ev.OperationType {
	case model.OperationInclusion:
		b.Initial = b.Initial.Add(amount)
	case model.OperationReinforcement:
		b.Reinforced = b.Reinforced.Add(amount)
	case model.OperationCancellation:
		b.Cancelled = b.Cancelled.Add(amount)
	default:
		c.logger.Debug("Ignoring unknown operation type",
			"commitment", commitmentCode,
			"operation", string(ev.OperationType))
	}
}
