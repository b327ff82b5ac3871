package portal

import (
	"fmt"
	"time"

	"github.com/transparencia-labs/saldo/internal/common"
)

// Default values mirror the Portal da Transparência query conventions
// the reconciler was built around.
const (
	// DefaultBaseURL is the public root of the Portal da Transparência data API.
	DefaultBaseURL = "https://api.portaldatransparencia.gov.br/api-de-dados/"
	// DefaultRecipient is the CNPJ of the recipient whose spending
	// documents are reconciled when no other recipient is configured.
	DefaultRecipient = "03045711000170"
	// DefaultSortOrder is the ordenacaoResultado value sent on document
	// listing queries.
	DefaultSortOrder = 4
	// DefaultPageSize is the portal's page-size ceiling; a batch smaller
	// than this marks the final page.
	DefaultPageSize = 500
)

// Config holds Portal da Transparência API configuration.
type Config struct {
	// Clock paces inter-request delays; nil means real time.
	Clock common.Clock

	APIKey    string
	BaseURL   string
	Recipient string

	SortOrder int
	PageSize  int

	// PageDelay is the pause between successive pages of one query.
	PageDelay time.Duration
	// SequenceDelay is the pause between ledger history queries for
	// consecutive item sequentials of the same commitment.
	SequenceDelay time.Duration
	// Timeout bounds each individual HTTP request.
	Timeout time.Duration
}

// DefaultConfig returns a Config with the portal's standard query settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		Recipient:     DefaultRecipient,
		SortOrder:     DefaultSortOrder,
		PageSize:      DefaultPageSize,
		PageDelay:     500 * time.Millisecond,
		SequenceDelay: 300 * time.Millisecond,
		Timeout:       15 * time.Second,
	}
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("portal API key is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("portal base URL is required")
	}
	if c.Recipient == "" {
		return fmt.Errorf("portal recipient code is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("portal page size must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("portal request timeout must be positive")
	}
	return nil
}
