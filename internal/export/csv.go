package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/transparencia-labs/saldo/internal/model"
)

// CSVWriter writes balance records to a local CSV file.
type CSVWriter struct {
	logger *slog.Logger
	path   string
}

// NewCSVWriter creates a writer targeting the given file path. Parent
// directories are created on Write.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{
		path:   path,
		logger: slog.Default().With("component", "export"),
	}
}

// Write implements the BalanceWriter interface.
func (w *CSVWriter) Write(_ context.Context, year int, balances []model.CommitmentBalance) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", w.path, err)
	}
	defer func() { _ = f.Close() }()

	cw := csv.NewWriter(f)
	if err := cw.Write(balanceHeader()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, b := range balances {
		if err := cw.Write(balanceRow(b)); err != nil {
			return fmt.Errorf("writing row for %s: %w", b.Commitment, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", w.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", w.path, err)
	}

	w.logger.Info("Balances written",
		"path", w.path,
		"year", year,
		"rows", len(balances))
	return nil
}

// Ensure CSVWriter implements the BalanceWriter interface.
var _ BalanceWriter = (*CSVWriter)(nil)
