// Package portal provides a client for the Portal da Transparência
// public spending API.
package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/transparencia-labs/saldo/internal/common"
	"github.com/transparencia-labs/saldo/internal/model"
)

// Portal API endpoints, relative to the base URL.
const (
	endpointDocumentsByRecipient = "despesas/documentos-por-favorecido"
	endpointLedgerHistory        = "despesas/itens-de-empenho/historico"
	endpointRelatedDocuments     = "despesas/documentos-relacionados"
	endpointImpactedCommitments  = "despesas/empenhos-impactados"
)

// Client queries the Portal da Transparência data API. All queries send
// the API key in the chave-api-dados header and walk paginated result
// sets one page at a time, pacing requests to stay under the portal's
// rate limits.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	clock      common.Clock
	cfg        Config
}

// NewClient creates a new portal client with the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clock := cfg.Clock
	if clock == nil {
		clock = common.RealClock{}
	}

	return &Client{
		cfg:    cfg,
		clock:  clock,
		logger: slog.Default().With("component", "portal"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config {
	return c.cfg
}

// DocumentsByRecipient fetches every spending document issued to the
// recipient in the given year and phase. On failure the documents
// gathered before the failing page are returned alongside the error.
func (c *Client) DocumentsByRecipient(ctx context.Context, recipientCode string, phase model.Phase, year int) ([]model.DocumentSummary, error) {
	if !phase.Valid() {
		return nil, fmt.Errorf("invalid expense phase %d", int(phase))
	}

	c.logger.Info("Fetching documents by recipient",
		"recipient", recipientCode,
		"phase", phase.String(),
		"year", year)

	params := url.Values{}
	params.Set("codigoPessoa", recipientCode)
	params.Set("fase", strconv.Itoa(int(phase)))
	params.Set("ano", strconv.Itoa(year))
	params.Set("ordenacaoResultado", strconv.Itoa(c.cfg.SortOrder))

	raw, fetchErr := c.fetchPages(ctx, endpointDocumentsByRecipient, params)

	docs := make([]model.DocumentSummary, 0, len(raw))
	for _, item := range raw {
		var doc model.DocumentSummary
		if err := json.Unmarshal(item, &doc); err != nil {
			return docs, &QueryError{
				Endpoint: endpointDocumentsByRecipient,
				Err:      fmt.Errorf("decoding document record: %w", err),
			}
		}
		doc.Phase = phase
		doc.Raw = item
		docs = append(docs, doc)
	}

	return docs, fetchErr
}

// LedgerHistory fetches the operation history of one item sequential of
// a commitment document. An empty slice with a nil error means the
// sequential has no recorded operations.
func (c *Client) LedgerHistory(ctx context.Context, documentCode string, sequential int) ([]model.LedgerEvent, error) {
	params := url.Values{}
	params.Set("codigoDocumento", documentCode)
	params.Set("sequencial", strconv.Itoa(sequential))

	raw, fetchErr := c.fetchPages(ctx, endpointLedgerHistory, params)

	events := make([]model.LedgerEvent, 0, len(raw))
	for _, item := range raw {
		var ev model.LedgerEvent
		if err := json.Unmarshal(item, &ev); err != nil {
			return events, &QueryError{
				Endpoint: endpointLedgerHistory,
				Err:      fmt.Errorf("decoding history record: %w", err),
			}
		}
		ev.Sequential = sequential
		ev.Raw = item
		events = append(events, ev)
	}

	return events, fetchErr
}

// RelatedDocuments fetches the settlement and payment documents linked
// to a commitment. The portal only serves this listing for the
// commitment phase, so fase is fixed at 1.
func (c *Client) RelatedDocuments(ctx context.Context, documentCode string) ([]model.RelatedDocument, error) {
	params := url.Values{}
	params.Set("codigoDocumento", documentCode)
	params.Set("fase", strconv.Itoa(int(model.PhaseCommitment)))

	raw, fetchErr := c.fetchPages(ctx, endpointRelatedDocuments, params)

	docs := make([]model.RelatedDocument, 0, len(raw))
	for _, item := range raw {
		var doc model.RelatedDocument
		if err := json.Unmarshal(item, &doc); err != nil {
			return docs, &QueryError{
				Endpoint: endpointRelatedDocuments,
				Err:      fmt.Errorf("decoding related document: %w", err),
			}
		}
		doc.Raw = item
		docs = append(docs, doc)
	}

	return docs, fetchErr
}

// ImpactedCommitments fetches the commitments a settlement or payment
// document drew from, with the amount attributed to each. The portal
// serves this listing as a single page.
func (c *Client) ImpactedCommitments(ctx context.Context, documentCode string, phase model.Phase) ([]model.ImpactedCommitment, error) {
	if !phase.Valid() {
		return nil, fmt.Errorf("invalid expense phase %d", int(phase))
	}

	params := url.Values{}
	params.Set("codigoDocumento", documentCode)
	params.Set("fase", strconv.Itoa(int(phase)))

	raw, err := c.fetchSinglePage(ctx, endpointImpactedCommitments, params)
	if err != nil {
		return nil, err
	}

	impacted := make([]model.ImpactedCommitment, 0, len(raw))
	for _, item := range raw {
		var imp model.ImpactedCommitment
		if err := json.Unmarshal(item, &imp); err != nil {
			return impacted, &QueryError{
				Endpoint: endpointImpactedCommitments,
				Err:      fmt.Errorf("decoding impacted commitment: %w", err),
			}
		}
		impacted = append(impacted, imp)
	}

	return impacted, nil
}

// Ensure Client implements the Querier interface.
var _ Querier = (*Client)(nil)
