package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/transparencia-labs/saldo/internal/cli"
	"github.com/transparencia-labs/saldo/internal/config"
	"github.com/transparencia-labs/saldo/internal/ledger"
	"github.com/transparencia-labs/saldo/internal/money"
	"github.com/transparencia-labs/saldo/internal/portal"
)

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <commitment-code>",
		Short: "Reconcile a single commitment",
		Long: `Reconcile one commitment end to end and display its amendment totals,
attributed settlements and payments, and executable balance.

Example:
  saldo history 344001342012022NE000223`,
		Args: cobra.ExactArgs(1),
		RunE: runHistory,
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	commitment := args[0]

	portalCfg, err := config.LoadPortalConfig()
	if err != nil {
		return err
	}

	client, err := portal.NewClient(*portalCfg)
	if err != nil {
		return fmt.Errorf("failed to create portal client: %w", err)
	}

	calc := ledger.NewCalculator(client, ledger.Config{
		Clock:         portalCfg.Clock,
		SequenceDelay: portalCfg.SequenceDelay,
	})

	handler := cli.NewInterruptHandler(os.Stdout)
	ctx := handler.HandleInterrupts(cmd.Context(), false)

	slog.Info(cli.FormatTitle(fmt.Sprintf("Reconciling commitment %s", commitment)))

	balance, err := calc.Balance(ctx, commitment)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Warn("Reconciliation interrupted")
			return nil
		}
		return err
	}

	content := fmt.Sprintf("  • Initial amount: R$ %s\n", money.Format(balance.Initial)) +
		fmt.Sprintf("  • Reinforcements: R$ %s\n", money.Format(balance.Reinforced)) +
		fmt.Sprintf("  • Cancellations: R$ %s\n", money.Format(balance.Cancelled)) +
		fmt.Sprintf("  • Current amount: R$ %s\n", money.Format(balance.Current)) +
		fmt.Sprintf("  • Total settled: R$ %s\n", money.Format(balance.TotalSettled)) +
		fmt.Sprintf("  • Total paid: R$ %s\n", money.Format(balance.TotalPaid)) +
		fmt.Sprintf("  • Executable balance: R$ %s\n", money.Format(balance.Balance))

	slog.Info(cli.RenderBox(fmt.Sprintf("Commitment %s", commitment), content))

	if balance.Overexecuted() {
		slog.Warn(cli.FormatWarning("More was paid than the commitment currently holds"))
	}

	return nil
}
