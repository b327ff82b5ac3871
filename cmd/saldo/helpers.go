package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/transparencia-labs/saldo/internal/config"
	"github.com/transparencia-labs/saldo/internal/export"
	"github.com/transparencia-labs/saldo/internal/model"
	"github.com/transparencia-labs/saldo/internal/storage"
)

// initStore opens the run-history database with proper path expansion.
func initStore(ctx context.Context) (*storage.Store, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/saldo/saldo.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewStore(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// writerForPath picks the report writer matching the output file extension.
func writerForPath(path string) (export.BalanceWriter, error) {
	switch filepath.Ext(path) {
	case ".csv":
		return export.NewCSVWriter(path), nil
	case ".xlsx":
		return export.NewExcelWriter(path), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (use .csv or .xlsx)", filepath.Ext(path))
	}
}

// recordRun stores a finished run in the local database. Interrupted runs
// are recorded too, so partial batches show up in history.
func recordRun(run *model.BatchRun, balances []model.CommitmentBalance) error {
	ctx := context.Background()

	store, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	if balances == nil {
		balances = []model.CommitmentBalance{}
	}
	return store.SaveRun(ctx, run, balances)
}
