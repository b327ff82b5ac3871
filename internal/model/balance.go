package model

import "github.com/shopspring/decimal"

// CommitmentBalance is the reconciled position of one commitment: its
// amendment history folded into a current value, and the settlement/payment
// documents attributed back to it. JSON keys match the original dataset's
// column names so archived records line up with the published CSVs.
type CommitmentBalance struct {
	Commitment   string          `json:"codigo_empenho"`
	Initial      decimal.Decimal `json:"valor_inicial"`
	Reinforced   decimal.Decimal `json:"valor_reforco"`
	Cancelled    decimal.Decimal `json:"valor_anulado"`
	Current      decimal.Decimal `json:"valor_atualizado"`
	TotalSettled decimal.Decimal `json:"total_liquidado"`
	TotalPaid    decimal.Decimal `json:"total_pago"`
	Balance      decimal.Decimal `json:"saldo"`
}

// Consistent reports whether the arithmetic invariants hold:
// Current = Initial + Reinforced - Cancelled and Balance = Current - TotalPaid.
// Both are established by construction in the calculator; this exists for
// tests and for validating records read back from storage.
func (b CommitmentBalance) Consistent() bool {
	return b.Current.Equal(b.Initial.Add(b.Reinforced).Sub(b.Cancelled)) &&
		b.Balance.Equal(b.Current.Sub(b.TotalPaid))
}

// Overexecuted reports whether more was paid than the commitment currently
// holds. A negative balance is a valid, reportable state, not an error.
func (b CommitmentBalance) Overexecuted() bool {
	return b.Balance.IsNegative()
}
