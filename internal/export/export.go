// Package export writes reconciled balance records and extracted
// spending documents to their output destinations: CSV, Excel
// workbooks, Google Sheets, and the raw-payload audit archive.
package export

import (
	"context"

	"github.com/transparencia-labs/saldo/internal/model"
)

// BalanceWriter writes one year's balance records to a destination.
type BalanceWriter interface {
	Write(ctx context.Context, year int, balances []model.CommitmentBalance) error
}

// balanceHeader returns the output column names, matching the layout
// downstream consumers of the balance files already rely on.
func balanceHeader() []string {
	return []string{
		"codigo_empenho",
		"valor_inicial",
		"valor_reforco",
		"valor_anulado",
		"valor_atualizado",
		"total_liquidado",
		"total_pago",
		"saldo",
	}
}

func balanceRow(b model.CommitmentBalance) []string {
	return []string{
		b.Commitment,
		b.Initial.StringFixed(2),
		b.Reinforced.StringFixed(2),
		b.Cancelled.StringFixed(2),
		b.Current.StringFixed(2),
		b.TotalSettled.StringFixed(2),
		b.TotalPaid.StringFixed(2),
		b.Balance.StringFixed(2),
	}
}
