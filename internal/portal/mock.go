package portal

import (
	"context"

	"github.com/transparencia-labs/saldo/internal/model"
)

// MockQuerier is a mock implementation of Querier for testing.
type MockQuerier struct {
	// Functions that can be set by tests to control behavior
	DocumentsByRecipientFn func(ctx context.Context, recipientCode string, phase model.Phase, year int) ([]model.DocumentSummary, error)
	LedgerHistoryFn        func(ctx context.Context, documentCode string, sequential int) ([]model.LedgerEvent, error)
	RelatedDocumentsFn     func(ctx context.Context, documentCode string) ([]model.RelatedDocument, error)
	ImpactedCommitmentsFn  func(ctx context.Context, documentCode string, phase model.Phase) ([]model.ImpactedCommitment, error)

	// Call tracking
	DocumentsByRecipientCalls []DocumentsByRecipientCall
	LedgerHistoryCalls        []LedgerHistoryCall
	RelatedDocumentsCalls     []string
	ImpactedCommitmentsCalls  []ImpactedCommitmentsCall
}

// DocumentsByRecipientCall records the parameters of a DocumentsByRecipient call.
type DocumentsByRecipientCall struct {
	RecipientCode string
	Phase         model.Phase
	Year          int
}

// LedgerHistoryCall records the parameters of a LedgerHistory call.
type LedgerHistoryCall struct {
	DocumentCode string
	Sequential   int
}

// ImpactedCommitmentsCall records the parameters of an ImpactedCommitments call.
type ImpactedCommitmentsCall struct {
	DocumentCode string
	Phase        model.Phase
}

// NewMockQuerier creates a new mock portal querier.
func NewMockQuerier() *MockQuerier {
	return &MockQuerier{
		DocumentsByRecipientCalls: []DocumentsByRecipientCall{},
		LedgerHistoryCalls:        []LedgerHistoryCall{},
		RelatedDocumentsCalls:     []string{},
		ImpactedCommitmentsCalls:  []ImpactedCommitmentsCall{},
	}
}

// DocumentsByRecipient implements Querier.DocumentsByRecipient.
func (m *MockQuerier) DocumentsByRecipient(ctx context.Context, recipientCode string, phase model.Phase, year int) ([]model.DocumentSummary, error) {
	m.DocumentsByRecipientCalls = append(m.DocumentsByRecipientCalls, DocumentsByRecipientCall{
		RecipientCode: recipientCode,
		Phase:         phase,
		Year:          year,
	})

	if m.DocumentsByRecipientFn != nil {
		return m.DocumentsByRecipientFn(ctx, recipientCode, phase, year)
	}

	// Default behavior: return empty slice
	return []model.DocumentSummary{}, nil
}

// LedgerHistory implements Querier.LedgerHistory.
func (m *MockQuerier) LedgerHistory(ctx context.Context, documentCode string, sequential int) ([]model.LedgerEvent, error) {
	m.LedgerHistoryCalls = append(m.LedgerHistoryCalls, LedgerHistoryCall{
		DocumentCode: documentCode,
		Sequential:   sequential,
	})

	if m.LedgerHistoryFn != nil {
		return m.LedgerHistoryFn(ctx, documentCode, sequential)
	}

	// Default behavior: return empty slice
	return []model.LedgerEvent{}, nil
}

// RelatedDocuments implements Querier.RelatedDocuments.
func (m *MockQuerier) RelatedDocuments(ctx context.Context, documentCode string) ([]model.RelatedDocument, error) {
	m.RelatedDocumentsCalls = append(m.RelatedDocumentsCalls, documentCode)

	if m.RelatedDocumentsFn != nil {
		return m.RelatedDocumentsFn(ctx, documentCode)
	}

	// Default behavior: return empty slice
	return []model.RelatedDocument{}, nil
}

// ImpactedCommitments implements Querier.ImpactedCommitments.
func (m *MockQuerier) ImpactedCommitments(ctx context.Context, documentCode string, phase model.Phase) ([]model.ImpactedCommitment, error) {
	m.ImpactedCommitmentsCalls = append(m.ImpactedCommitmentsCalls, ImpactedCommitmentsCall{
		DocumentCode: documentCode,
		Phase:        phase,
	})

	if m.ImpactedCommitmentsFn != nil {
		return m.ImpactedCommitmentsFn(ctx, documentCode, phase)
	}

	// Default behavior: return empty slice
	return []model.ImpactedCommitment{}, nil
}

// Reset clears all call tracking.
func (m *MockQuerier) Reset() {
	m.DocumentsByRecipientCalls = []DocumentsByRecipientCall{}
	m.LedgerHistoryCalls = []LedgerHistoryCall{}
	m.RelatedDocumentsCalls = []string{}
	m.ImpactedCommitmentsCalls = []ImpactedCommitmentsCall{}
}

// Ensure MockQuerier implements the Querier interface.
var _ Querier = (*MockQuerier)(nil)
