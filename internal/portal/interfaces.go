package portal

import (
	"context"

	"github.com/transparencia-labs/saldo/internal/model"
)

// Querier defines the contract for querying the portal's expense
// endpoints. This interface allows for easy mocking in tests and
// swapping data sources.
type Querier interface {
	DocumentsByRecipient(ctx context.Context, recipientCode string, phase model.Phase, year int) ([]model.DocumentSummary, error)
	LedgerHistory(ctx context.Context, documentCode string, sequential int) ([]model.LedgerEvent, error)
	RelatedDocuments(ctx context.Context, documentCode string) ([]model.RelatedDocument, error)
	ImpactedCommitments(ctx context.Context, documentCode string, phase model.Phase) ([]model.ImpactedCommitment, error)
}
