package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/transparencia-labs/saldo/internal/common"
	"github.com/transparencia-labs/saldo/internal/model"
)

// Helper function to create test storage.
func createTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func testRun(id string, year int) *model.BatchRun {
	started := time.Date(2023, 4, 10, 9, 30, 0, 0, time.UTC)
	return &model.BatchRun{
		ID:         id,
		Year:       year,
		StartedAt:  started,
		FinishedAt: started.Add(12 * time.Minute),
		Succeeded:  2,
		Failed:     1,
	}
}

func testBalances() []model.CommitmentBalance {
	d := decimal.RequireFromString
	return []model.CommitmentBalance{
		{
			Commitment:   "344001342012022NE000223",
			Initial:      d("10000"),
			Reinforced:   d("2000"),
			Cancelled:    d("500"),
			Current:      d("11500"),
			TotalSettled: d("11500"),
			TotalPaid:    d("8000"),
			Balance:      d("3500"),
		},
		{
			Commitment:   "344001342012022NE000187",
			Initial:      d("1234.56"),
			Reinforced:   d("0"),
			Cancelled:    d("0"),
			Current:      d("1234.56"),
			TotalSettled: d("1234.56"),
			TotalPaid:    d("1234.56"),
			Balance:      d("0"),
		},
	}
}

func TestSaveRun_RoundTrip(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()
	ctx := context.Background()

	run := testRun("run-1", 2022)
	balances := testBalances()

	if err := store.SaveRun(ctx, run, balances); err != nil {
		t.Fatalf("Failed to save run: %v", err)
	}

	got, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("Failed to get run: %v", err)
	}
	if got.ID != run.ID || got.Year != run.Year {
		t.Errorf("Got run %s/%d, want %s/%d", got.ID, got.Year, run.ID, run.Year)
	}
	if !got.StartedAt.Equal(run.StartedAt) || !got.FinishedAt.Equal(run.FinishedAt) {
		t.Errorf("Run timestamps did not round-trip: got %v-%v, want %v-%v",
			got.StartedAt, got.FinishedAt, run.StartedAt, run.FinishedAt)
	}
	if got.Succeeded != run.Succeeded || got.Failed != run.Failed {
		t.Errorf("Got tallies %d/%d, want %d/%d", got.Succeeded, got.Failed, run.Succeeded, run.Failed)
	}

	stored, err := store.RunBalances(ctx, run.ID)
	if err != nil {
		t.Fatalf("Failed to get balances: %v", err)
	}
	if len(stored) != len(balances) {
		t.Fatalf("Got %d balances, want %d", len(stored), len(balances))
	}

	// RunBalances orders by commitment code; NE000187 sorts before NE000223.
	want := []model.CommitmentBalance{balances[1], balances[0]}
	for i, b := range stored {
		assertBalanceEqual(t, want[i], b)
		if !b.Consistent() {
			t.Errorf("Stored balance for %s is arithmetically inconsistent", b.Commitment)
		}
	}
}

func assertBalanceEqual(t *testing.T, want, got model.CommitmentBalance) {
	t.Helper()
	if got.Commitment != want.Commitment {
		t.Errorf("Got commitment %s, want %s", got.Commitment, want.Commitment)
	}
	fields := []struct {
		name string
		want decimal.Decimal
		got  decimal.Decimal
	}{
		{"initial", want.Initial, got.Initial},
		{"reinforced", want.Reinforced, got.Reinforced},
		{"cancelled", want.Cancelled, got.Cancelled},
		{"current", want.Current, got.Current},
		{"total settled", want.TotalSettled, got.TotalSettled},
		{"total paid", want.TotalPaid, got.TotalPaid},
		{"balance", want.Balance, got.Balance},
	}
	for _, f := range fields {
		if !f.got.Equal(f.want) {
			t.Errorf("%s: %s = %s, want %s", want.Commitment, f.name, f.got, f.want)
		}
	}
}

func TestListRuns_FiltersByYear(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()
	ctx := context.Background()

	run2022 := testRun("run-2022", 2022)
	run2023 := testRun("run-2023", 2023)
	run2023.StartedAt = run2022.StartedAt.Add(24 * time.Hour)
	run2023.FinishedAt = run2023.StartedAt.Add(5 * time.Minute)

	for _, run := range []*model.BatchRun{run2022, run2023} {
		if err := store.SaveRun(ctx, run, []model.CommitmentBalance{}); err != nil {
			t.Fatalf("Failed to save run %s: %v", run.ID, err)
		}
	}

	all, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to list runs: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Got %d runs, want 2", len(all))
	}
	if all[0].ID != "run-2023" {
		t.Errorf("Newest run first: got %s, want run-2023", all[0].ID)
	}

	only2022, err := store.ListRuns(ctx, 2022)
	if err != nil {
		t.Fatalf("Failed to list 2022 runs: %v", err)
	}
	if len(only2022) != 1 || only2022[0].ID != "run-2022" {
		t.Errorf("Got %v, want just run-2022", only2022)
	}
}

func TestRunBalances_UnknownRun(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	_, err := store.RunBalances(context.Background(), "no-such-run")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Got error %v, want ErrNotFound", err)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	_, err := store.GetRun(context.Background(), "no-such-run")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Got error %v, want ErrNotFound", err)
	}
}

func TestSaveRun_Validation(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.SaveRun(ctx, nil, testBalances()); !errors.Is(err, ErrNilParameter) {
		t.Errorf("Nil run: got %v, want ErrNilParameter", err)
	}

	run := testRun("", 2022)
	if err := store.SaveRun(ctx, run, testBalances()); !errors.Is(err, ErrInvalidRun) {
		t.Errorf("Missing ID: got %v, want ErrInvalidRun", err)
	}

	run = testRun("run-1", 2022)
	if err := store.SaveRun(ctx, run, nil); !errors.Is(err, ErrNilParameter) {
		t.Errorf("Nil balances: got %v, want ErrNilParameter", err)
	}

	bad := testBalances()
	bad[0].Commitment = "  "
	if err := store.SaveRun(ctx, run, bad); !errors.Is(err, ErrInvalidBalance) {
		t.Errorf("Blank commitment: got %v, want ErrInvalidBalance", err)
	}
}

func TestSaveRun_EmptyBatchAllowed(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()
	ctx := context.Background()

	// A run where every commitment failed still gets recorded.
	run := testRun("run-empty", 2022)
	run.Succeeded = 0
	run.Failed = 3

	if err := store.SaveRun(ctx, run, []model.CommitmentBalance{}); err != nil {
		t.Fatalf("Failed to save empty run: %v", err)
	}

	balances, err := store.RunBalances(ctx, run.ID)
	if err != nil {
		t.Fatalf("Failed to get balances: %v", err)
	}
	if len(balances) != 0 {
		t.Errorf("Got %d balances, want 0", len(balances))
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	// createTestStore already migrated once.
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Second migrate failed: %v", err)
	}

	var version int
	if err := store.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("Failed to read schema version: %v", err)
	}
	if version != ExpectedSchemaVersion {
		t.Errorf("Got schema version %d, want %d", version, ExpectedSchemaVersion)
	}
}

func TestNewStore_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "dir", "test.db")

	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store in nested directory: %v", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
}
