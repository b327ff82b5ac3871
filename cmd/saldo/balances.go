package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/transparencia-labs/saldo/internal/cli"
	"github.com/transparencia-labs/saldo/internal/config"
	"github.com/transparencia-labs/saldo/internal/export"
	"github.com/transparencia-labs/saldo/internal/ledger"
	"github.com/transparencia-labs/saldo/internal/model"
	"github.com/transparencia-labs/saldo/internal/money"
	"github.com/transparencia-labs/saldo/internal/portal"
)

func balancesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Reconcile commitment balances for a budget year",
		Long: `Reconcile the executable balance of every commitment issued to the
configured recipient in a budget year.

For each commitment the full amendment ledger is folded into a current value,
its settlement and payment documents are discovered and attributed back, and
the resulting balances are written to a CSV or Excel report.

Examples:
  saldo balances --year 2022                   # CSV report for 2022
  saldo balances --year 2022 -o saldos.xlsx    # Excel workbook instead
  saldo balances --year 2022 --sheets          # Also push to Google Sheets
  saldo balances --year 2022 --archive data/raw  # Keep the JSON audit trail`,
		RunE: runBalances,
	}

	// Flags
	cmd.Flags().IntP("year", "y", time.Now().Year(), "Budget year to reconcile")
	cmd.Flags().StringP("recipient", "r", "", "Recipient code (CNPJ) to reconcile")
	cmd.Flags().StringP("output", "o", "", "Output file, .csv or .xlsx (default: saldos_empenhos_<year>.csv)")
	cmd.Flags().Bool("sheets", false, "Export balances to Google Sheets")
	cmd.Flags().String("archive", "", "Directory for per-commitment JSON audit archives")
	cmd.Flags().Bool("no-store", false, "Skip recording the run in the local database")

	// Bind to viper
	_ = viper.BindPFlag("balances.year", cmd.Flags().Lookup("year"))
	_ = viper.BindPFlag("balances.recipient", cmd.Flags().Lookup("recipient"))
	_ = viper.BindPFlag("balances.output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("balances.sheets", cmd.Flags().Lookup("sheets"))
	_ = viper.BindPFlag("balances.archive", cmd.Flags().Lookup("archive"))
	_ = viper.BindPFlag("balances.no_store", cmd.Flags().Lookup("no-store"))

	return cmd
}

func runBalances(cmd *cobra.Command, _ []string) error {
	year := viper.GetInt("balances.year")

	portalCfg, err := config.LoadPortalConfig()
	if err != nil {
		return err
	}
	if recipient := viper.GetString("balances.recipient"); recipient != "" {
		portalCfg.Recipient = recipient
	}

	client, err := portal.NewClient(*portalCfg)
	if err != nil {
		return fmt.Errorf("failed to create portal client: %w", err)
	}

	calcCfg := ledger.Config{
		Clock:         portalCfg.Clock,
		SequenceDelay: portalCfg.SequenceDelay,
	}
	if dir := viper.GetString("balances.archive"); dir != "" {
		calcCfg.Archiver = export.NewArchive(config.ExpandPath(dir))
	}
	calc := ledger.NewCalculator(client, calcCfg)

	outputPath := config.ExpandPath(viper.GetString("balances.output"))
	if outputPath == "" {
		outputPath = fmt.Sprintf("saldos_empenhos_%d.csv", year)
	}
	writer, err := writerForPath(outputPath)
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(os.Stdout)
	ctx := handler.HandleInterrupts(cmd.Context(), true)

	slog.Info(cli.FormatTitle(fmt.Sprintf("Reconciling commitment balances for %d", year)))
	slog.Info("Recipient", "code", portalCfg.Recipient)

	startedAt := time.Now()

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = cli.NewProgressBar(total, "Reconciling commitments", os.Stdout)
		}
		if barErr := bar.Set(done); barErr != nil {
			slog.Warn("Failed to update progress bar", "error", barErr)
		}
	}

	result, runErr := calc.BalancesForYear(ctx, portalCfg.Recipient, year, progress)
	if result == nil {
		return fmt.Errorf("reconciliation failed: %w", runErr)
	}
	finishedAt := time.Now()

	interrupted := runErr != nil
	if interrupted && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("reconciliation failed: %w", runErr)
	}

	// The report covers whatever finished, interrupted or not.
	if err := writer.Write(ctx, year, result.Balances); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if viper.GetBool("balances.sheets") && !interrupted {
		if err := exportToSheets(ctx, year, result.Balances); err != nil {
			return fmt.Errorf("failed to export to Google Sheets: %w", err)
		}
	}

	if !viper.GetBool("balances.no_store") {
		run := &model.BatchRun{
			ID:         uuid.New().String(),
			Year:       year,
			StartedAt:  startedAt,
			FinishedAt: finishedAt,
			Succeeded:  len(result.Balances),
			Failed:     len(result.Failed),
		}
		if err := recordRun(run, result.Balances); err != nil {
			// The report is already on disk; a history hiccup shouldn't fail the run.
			slog.Error("Failed to record run", "error", err)
		}
	}

	showRunSummary(result, year, outputPath, finishedAt.Sub(startedAt))

	if len(result.Failed) > 0 {
		slog.Warn(cli.FormatWarning(fmt.Sprintf("Failed commitments: %s", strings.Join(result.Failed, ", "))))
	}
	if interrupted {
		slog.Warn(cli.FormatWarning(fmt.Sprintf("Interrupted after %d of %d commitments; the report is partial",
			len(result.Balances)+len(result.Failed), result.Total)))
		return nil
	}

	slog.Info(cli.FormatSuccess("Reconciliation complete!"))
	return nil
}

func showRunSummary(result *ledger.BatchResult, year int, outputPath string, duration time.Duration) {
	var outstanding decimal.Decimal
	for _, b := range result.Balances {
		outstanding = outstanding.Add(b.Balance)
	}

	summary := fmt.Sprintf("  • Commitments listed: %d\n", result.Total) +
		fmt.Sprintf("  • Reconciled: %d\n", len(result.Balances)) +
		fmt.Sprintf("  • Failed: %d\n", len(result.Failed)) +
		fmt.Sprintf("  • Outstanding balance: R$ %s\n", money.Format(outstanding)) +
		fmt.Sprintf("  • Time taken: %s\n", duration.Round(time.Second)) +
		fmt.Sprintf("  • Report: %s %s\n", outputPath, cli.ChartIcon)

	slog.Info(cli.RenderBox(fmt.Sprintf("Reconciliation %d", year), summary))
}

func exportToSheets(ctx context.Context, year int, balances []model.CommitmentBalance) error {
	sheetsCfg, err := config.LoadSheetsConfig()
	if err != nil {
		return err
	}

	writer, err := export.NewSheetsWriter(ctx, *sheetsCfg)
	if err != nil {
		return err
	}

	slog.Info("📤 Pushing balances to Google Sheets...")
	return writer.Write(ctx, year, balances)
}
