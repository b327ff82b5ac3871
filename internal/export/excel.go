package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/transparencia-labs/saldo/internal/model"
)

// ExcelWriter writes balance records to a local Excel workbook.
type ExcelWriter struct {
	logger *slog.Logger
	path   string
}

// NewExcelWriter creates a writer targeting the given .xlsx path.
func NewExcelWriter(path string) *ExcelWriter {
	return &ExcelWriter{
		path:   path,
		logger: slog.Default().With("component", "export"),
	}
}

// Write implements the BalanceWriter interface.
func (w *ExcelWriter) Write(_ context.Context, year int, balances []model.CommitmentBalance) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "Saldos"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	if err := writeRow(f, sheet, 1, headerCells()); err != nil {
		return err
	}
	for i, b := range balances {
		if err := writeRow(f, sheet, i+2, rowCells(b)); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving %s: %w", w.path, err)
	}

	w.logger.Info("Balances written",
		"path", w.path,
		"year", year,
		"rows", len(balances))
	return nil
}

// WriteExpensesWorkbook writes the bulk document listing of one year to
// an Excel workbook, one sheet per expense phase, in phase order. A
// phase with no documents still gets its (empty) sheet so the workbook
// layout stays stable across years.
func WriteExpensesWorkbook(path string, year int, byPhase map[model.Phase][]model.DocumentSummary) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, phase := range model.AllPhases {
		sheet := phase.SheetName()
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("renaming sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("creating sheet %s: %w", sheet, err)
			}
		}

		header := []any{"documento", "documentoResumido", "data", "especie", "favorecido", "codigoFavorecido", "unidadeGestora", "valor"}
		if err := writeRow(f, sheet, 1, header); err != nil {
			return err
		}
		for row, doc := range byPhase[phase] {
			cells := []any{
				doc.Document,
				doc.DocumentResumed,
				doc.Date,
				doc.Species,
				doc.Recipient,
				doc.RecipientCode,
				doc.ManagementUnit,
				doc.Amount,
			}
			if err := writeRow(f, sheet, row+2, cells); err != nil {
				return err
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	slog.Default().With("component", "export").Info("Expense listing written",
		"path", path,
		"year", year)
	return nil
}

func headerCells() []any {
	header := balanceHeader()
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	return cells
}

// rowCells keeps the commitment code as text and the monetary columns
// as numeric cells. Display only; computation never leaves decimal.
func rowCells(b model.CommitmentBalance) []any {
	return []any{
		b.Commitment,
		b.Initial.InexactFloat64(),
		b.Reinforced.InexactFloat64(),
		b.Cancelled.InexactFloat64(),
		b.Current.InexactFloat64(),
		b.TotalSettled.InexactFloat64(),
		b.TotalPaid.InexactFloat64(),
		b.Balance.InexactFloat64(),
	}
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("computing cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("writing row %d: %w", row, err)
	}
	return nil
}

// Ensure ExcelWriter implements the BalanceWriter interface.
var _ BalanceWriter = (*ExcelWriter)(nil)
