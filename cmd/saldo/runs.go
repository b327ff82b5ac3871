package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/transparencia-labs/saldo/internal/cli"
	"github.com/transparencia-labs/saldo/internal/common"
	"github.com/transparencia-labs/saldo/internal/money"
	"github.com/transparencia-labs/saldo/internal/storage"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show reconciliation run history",
		Long: `List past reconciliation runs recorded in the local database, or show
the balances a specific run produced.

Examples:
  saldo runs                 # All recorded runs
  saldo runs --year 2022     # Runs for one budget year
  saldo runs --id <run-id>   # Balances recorded by one run`,
		RunE: runRuns,
	}

	// Flags
	cmd.Flags().IntP("year", "y", 0, "Filter runs by budget year (0 = all years)")
	cmd.Flags().String("id", "", "Show the balances recorded by this run")

	// Bind to viper
	_ = viper.BindPFlag("runs.year", cmd.Flags().Lookup("year"))
	_ = viper.BindPFlag("runs.id", cmd.Flags().Lookup("id"))

	return cmd
}

func runRuns(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	if runID := viper.GetString("runs.id"); runID != "" {
		return showRunBalances(ctx, store, runID)
	}

	return listRuns(ctx, store, viper.GetInt("runs.year"))
}

func listRuns(ctx context.Context, store *storage.Store, year int) error {
	runs, err := store.ListRuns(ctx, year)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		slog.Info(cli.FormatInfo("No runs recorded yet. Run 'saldo balances' first."))
		return nil
	}

	header := fmt.Sprintf("%-36s  %-4s  %-16s  %-9s  %4s  %6s",
		"ID", "YEAR", "STARTED", "DURATION", "OK", "FAILED")
	fmt.Println(cli.TableHeaderStyle.Render(header))

	for _, run := range runs {
		row := fmt.Sprintf("%-36s  %-4d  %-16s  %-9s  %4d  %6d",
			run.ID,
			run.Year,
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Duration().Round(time.Second),
			run.Succeeded,
			run.Failed,
		)
		fmt.Println(cli.TableCellStyle.Render(row))
	}

	return nil
}

func showRunBalances(ctx context.Context, store *storage.Store, runID string) error {
	run, err := store.GetRun(ctx, runID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("run %s not found", runID)
		}
		return fmt.Errorf("failed to get run: %w", err)
	}

	balances, err := store.RunBalances(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get balances: %w", err)
	}

	slog.Info(cli.FormatTitle(fmt.Sprintf("Run %s (%d, %d reconciled)", run.ID, run.Year, run.Succeeded)))
	if len(balances) == 0 {
		slog.Info(cli.FormatInfo("No balances were recorded for this run"))
		return nil
	}

	header := fmt.Sprintf("%-28s  %18s  %18s  %18s",
		"COMMITMENT", "CURRENT", "PAID", "BALANCE")
	fmt.Println(cli.TableHeaderStyle.Render(header))

	for _, b := range balances {
		row := fmt.Sprintf("%-28s  %18s  %18s  %18s",
			b.Commitment,
			money.Format(b.Current),
			money.Format(b.TotalPaid),
			money.Format(b.Balance),
		)
		fmt.Println(cli.TableCellStyle.Render(row))
	}

	return nil
}
