package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/transparencia-labs/saldo/internal/cli"
	"github.com/transparencia-labs/saldo/internal/common"
	"github.com/transparencia-labs/saldo/internal/config"
	"github.com/transparencia-labs/saldo/internal/export"
	"github.com/transparencia-labs/saldo/internal/ledger"
	"github.com/transparencia-labs/saldo/internal/model"
	"github.com/transparencia-labs/saldo/internal/portal"
)

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract raw expense documents for a budget year",
		Long: `Download every commitment, settlement and payment document issued to the
configured recipient in a budget year and write them to an Excel workbook,
one sheet per phase.

With --details the amendment ledger and related payment documents of each
commitment are also archived as JSON for auditing.

Examples:
  saldo extract --year 2022
  saldo extract --year 2022 --details --archive-dir data/raw`,
		RunE: runExtract,
	}

	// Flags
	cmd.Flags().IntP("year", "y", time.Now().Year(), "Budget year to extract")
	cmd.Flags().StringP("recipient", "r", "", "Recipient code (CNPJ) to extract")
	cmd.Flags().StringP("output", "o", "", "Output workbook (default: despesas_<year>.xlsx)")
	cmd.Flags().Bool("details", false, "Archive per-commitment ledger and payment documents")
	cmd.Flags().String("archive-dir", "data/raw", "Directory for detail archives")

	// Bind to viper
	_ = viper.BindPFlag("extract.year", cmd.Flags().Lookup("year"))
	_ = viper.BindPFlag("extract.recipient", cmd.Flags().Lookup("recipient"))
	_ = viper.BindPFlag("extract.output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("extract.details", cmd.Flags().Lookup("details"))
	_ = viper.BindPFlag("extract.archive_dir", cmd.Flags().Lookup("archive-dir"))

	return cmd
}

func runExtract(cmd *cobra.Command, _ []string) error {
	year := viper.GetInt("extract.year")

	portalCfg, err := config.LoadPortalConfig()
	if err != nil {
		return err
	}
	if recipient := viper.GetString("extract.recipient"); recipient != "" {
		portalCfg.Recipient = recipient
	}

	client, err := portal.NewClient(*portalCfg)
	if err != nil {
		return fmt.Errorf("failed to create portal client: %w", err)
	}

	handler := cli.NewInterruptHandler(os.Stdout)
	ctx := handler.HandleInterrupts(cmd.Context(), true)

	slog.Info(cli.FormatTitle(fmt.Sprintf("Extracting %d expense documents", year)))
	slog.Info("Recipient", "code", portalCfg.Recipient)

	byPhase := make(map[model.Phase][]model.DocumentSummary, len(model.AllPhases))
	for _, phase := range model.AllPhases {
		slog.Info("🔄 Fetching documents...", "phase", phase.String())
		docs, fetchErr := client.DocumentsByRecipient(ctx, portalCfg.Recipient, phase, year)
		if fetchErr != nil {
			if len(docs) == 0 {
				if errors.Is(fetchErr, context.Canceled) {
					slog.Warn("Extraction interrupted")
					return nil
				}
				return fmt.Errorf("failed to fetch %s documents: %w", phase, fetchErr)
			}
			slog.Warn("Document listing incomplete",
				"phase", phase.String(),
				"documents", len(docs),
				"error", fetchErr)
		}
		slog.Info(cli.FormatSuccess(fmt.Sprintf("Fetched %d %s documents", len(docs), phase)))
		byPhase[phase] = docs
	}

	outputPath := config.ExpandPath(viper.GetString("extract.output"))
	if outputPath == "" {
		outputPath = fmt.Sprintf("despesas_%d.xlsx", year)
	}
	if err := export.WriteExpensesWorkbook(outputPath, year, byPhase); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	slog.Info(cli.FormatSuccess(fmt.Sprintf("Workbook written to %s %s", outputPath, cli.ChartIcon)))

	if !viper.GetBool("extract.details") {
		return nil
	}

	if err := archiveDetails(ctx, client, portalCfg, byPhase[model.PhaseCommitment]); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Warn("Archiving interrupted; archives written so far are kept")
			return nil
		}
		return err
	}

	return nil
}

// archiveDetails writes the amendment ledger and the related payment
// documents of each commitment to per-commitment JSON archives.
func archiveDetails(ctx context.Context, client *portal.Client, cfg *portal.Config, commitments []model.DocumentSummary) error {
	if len(commitments) == 0 {
		slog.Info(cli.FormatInfo("No commitments to archive"))
		return nil
	}

	archiveDir := config.ExpandPath(viper.GetString("extract.archive_dir"))
	archive := export.NewArchive(archiveDir)
	calc := ledger.NewCalculator(client, ledger.Config{
		Clock:         cfg.Clock,
		SequenceDelay: cfg.SequenceDelay,
	})

	clock := cfg.Clock
	if clock == nil {
		clock = common.RealClock{}
	}

	slog.Info(cli.FormatTitle(fmt.Sprintf("Archiving details for %d commitments", len(commitments))))
	bar := cli.NewProgressBar(len(commitments), "Archiving commitment details", os.Stdout)

	archived := 0
	for i, doc := range commitments {
		if i > 0 {
			// Pause between commitments to stay inside the portal's rate limits.
			if err := clock.Sleep(ctx, time.Second); err != nil {
				return err
			}
		}

		if err := archiveCommitment(ctx, calc, client, archive, doc.Document); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("Failed to archive commitment", "commitment", doc.Document, "error", err)
		} else {
			archived++
		}

		if barErr := bar.Add(1); barErr != nil {
			slog.Warn("Failed to update progress bar", "error", barErr)
		}
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Archived %d of %d commitments to %s %s",
		archived, len(commitments), archiveDir, cli.FolderIcon)))
	return nil
}

func archiveCommitment(ctx context.Context, calc *ledger.Calculator, client *portal.Client, archive *export.Archive, code string) error {
	breakdown, err := calc.Aggregate(ctx, code)
	if err != nil {
		return fmt.Errorf("ledger history: %w", err)
	}
	if err := archive.WriteHistory(code, breakdown.History); err != nil {
		return err
	}

	related, err := client.RelatedDocuments(ctx, code)
	if err != nil {
		if len(related) == 0 {
			return fmt.Errorf("related documents: %w", err)
		}
		slog.Warn("Related document listing incomplete",
			"commitment", code,
			"documents", len(related),
			"error", err)
	}
	return archive.WriteRelatedDocuments(code, related)
}
