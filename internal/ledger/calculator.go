// Package ledger reconciles commitment balances from the portal's
// ledger history, related-document, and attribution endpoints.
package ledger

import (
	"log/slog"
	"time"

	"github.com/transparencia-labs/saldo/internal/common"
	"github.com/transparencia-labs/saldo/internal/model"
	"github.com/transparencia-labs/saldo/internal/portal"
)

// Archiver records the raw amendment history and related documents of
// each reconciled commitment. A nil Archiver disables archiving.
type Archiver interface {
	WriteHistory(commitmentCode string, history map[int][]model.LedgerEvent) error
	WriteRelatedDocuments(commitmentCode string, docs []model.RelatedDocument) error
}

// Calculator walks a commitment's amendment history, discovers its
// settlement and payment documents, and combines per-document
// attributions into a balance record.
type Calculator struct {
	querier  portal.Querier
	archiver Archiver
	logger   *slog.Logger
	clock    common.Clock
	delay    time.Duration
	retry    common.RetryOptions
}

// Config adjusts the calculator's pacing and retry behavior.
type Config struct {
	// Clock paces the scan of item sequentials; nil means real time.
	Clock common.Clock
	// Archiver, when set, receives each commitment's raw history and
	// related documents as they are fetched.
	Archiver Archiver
	// SequenceDelay is the pause between ledger history queries for
	// consecutive sequentials of the same commitment.
	SequenceDelay time.Duration
	// Retry governs attribution query retries. Zero values fall back
	// to the shared retry defaults.
	Retry common.RetryOptions
}

// NewCalculator creates a calculator backed by the given portal querier.
func NewCalculator(querier portal.Querier, cfg Config) *Calculator {
	clock := cfg.Clock
	if clock == nil {
		clock = common.RealClock{}
	}

	return &Calculator{
		querier:  querier,
		archiver: cfg.Archiver,
		logger:   slog.Default().With("component", "ledger"),
		clock:    clock,
		delay:    cfg.SequenceDelay,
		retry:    cfg.Retry,
	}
}
