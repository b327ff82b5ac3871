package model

import "encoding/json"

// OperationType labels one amendment operation in a commitment item's ledger
// history. The portal emits the uppercase Portuguese names.
type OperationType string

// Ledger operation types.
const (
	OperationInclusion     OperationType = "INCLUSAO"
	OperationReinforcement OperationType = "REFORCO"
	OperationCancellation  OperationType = "ANULACAO"
)

// Known reports whether the operation type is one this tool understands.
// Unknown types are ignored during aggregation so new portal operation
// codes do not break the fold.
func (o OperationType) Known() bool {
	switch o {
	case OperationInclusion, OperationReinforcement, OperationCancellation:
		return true
	}
	return false
}

// LedgerEvent is one amendment record from the itens-de-empenho/historico
// endpoint. Amount stays in the portal's localized string form ("1.234,56")
// until the aggregation fold parses it.
type LedgerEvent struct {
	OperationDate string        `json:"dataOperacao,omitempty"`
	OperationType OperationType `json:"tipoOperacao"`
	Amount        string        `json:"valorOperacao"`
	Sequential    int           `json:"-"`

	// Raw preserves the record exactly as the portal returned it, for the
	// audit archive. Never re-marshaled into output rows.
	Raw json.RawMessage `json:"-"`
}

// RelatedDocument is one entry from documentos-relacionados: a settlement or
// payment document linked to a commitment. DocumentCode plus Phase is all the
// attribution step needs.
type RelatedDocument struct {
	DocumentCode string          `json:"codigoDocumento"`
	Document     string          `json:"documento,omitempty"`
	Date         string          `json:"data,omitempty"`
	Species      string          `json:"especie,omitempty"`
	Phase        Phase           `json:"fase"`
	Amount       string          `json:"valor,omitempty"`
	Raw          json.RawMessage `json:"-"`
}

// ImpactedCommitment is one entry of a document's per-commitment breakdown
// from empenhos-impactados. A settlement or payment document may fund several
// commitments; the value fields say how much of it touched Commitment.
// Value fields are localized strings and may legitimately be "0,00".
type ImpactedCommitment struct {
	Commitment       string `json:"empenho"`
	ExpenseNature    string `json:"naturezaDespesa,omitempty"`
	Subitem          string `json:"subitem,omitempty"`
	SettledValue     string `json:"valorLiquidado,omitempty"`
	PaidValue        string `json:"valorPago,omitempty"`
	PaidArrearsValue string `json:"valorRestoPago,omitempty"`
}

// DocumentSummary is one row of the documentos-por-favorecido bulk listing,
// used to enumerate a year's documents for a recipient. Phase is stamped from
// the query that produced the row rather than decoded from the response.
type DocumentSummary struct {
	Document        string          `json:"documento"`
	DocumentResumed string          `json:"documentoResumido,omitempty"`
	Date            string          `json:"data,omitempty"`
	Species         string          `json:"especie,omitempty"`
	Recipient       string          `json:"favorecido,omitempty"`
	RecipientCode   string          `json:"codigoFavorecido,omitempty"`
	ManagementUnit  string          `json:"unidadeGestora,omitempty"`
	Amount          string          `json:"valor,omitempty"`
	Phase           Phase           `json:"-"`
	Raw             json.RawMessage `json:"-"`
}
