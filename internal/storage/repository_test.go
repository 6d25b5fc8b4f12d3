package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetapp/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(context.Background(), filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func strPtr(s string) *string { return &s }

func TestReceiptRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	firstID, err := repo.InsertReceipt(ctx, core.NewReceipt{
		Date: strPtr("2024-01-01"), Vendor: "Store A", Total: 12.50,
		ImagePath: "/tmp/receipt_a.png", OCRText: "OCR A", CreatedAt: "2024-01-02T00:00:00Z",
	})
	require.NoError(t, err)
	secondID, err := repo.InsertReceipt(ctx, core.NewReceipt{
		Date: nil, Vendor: "Store B", Total: 22.00,
		ImagePath: "/tmp/receipt_b.png", OCRText: "OCR B", CreatedAt: "2024-01-04T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Greater(t, secondID, firstID)

	listed, err := repo.ListReceipts(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, secondID, listed[0].ID)
	assert.Equal(t, firstID, listed[1].ID)
	assert.Nil(t, listed[0].Date)
	require.NotNil(t, listed[1].Date)
	assert.Equal(t, "2024-01-01", *listed[1].Date)

	fetched, err := repo.GetReceipt(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, "Store A", fetched.Vendor)
	assert.Equal(t, "OCR A", fetched.OCRText)
	assert.Equal(t, "/tmp/receipt_a.png", fetched.ImagePath)
	assert.Equal(t, 12.50, fetched.Total)

	rows, err := repo.ExportRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, listed, rows)
}

func TestReceiptRepository_ListOrderNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	var ids []int64
	for _, v := range []string{"R1", "R2", "R3"} {
		id, err := repo.InsertReceipt(ctx, core.NewReceipt{Vendor: v})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	listed, err := repo.ListReceipts(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, []string{"R3", "R2", "R1"}, []string{listed[0].Vendor, listed[1].Vendor, listed[2].Vendor})
	assert.Equal(t, ids[2], listed[0].ID)
}

func TestReceiptRepository_GetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetReceipt(context.Background(), 999)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestReceiptRepository_ListEmpty(t *testing.T) {
	listed, err := newTestRepo(t).ListReceipts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, listed)
	assert.Empty(t, listed)
}

func TestBudgetRepository_UpsertAndList(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.UpsertBudget(ctx, core.Budget{Category: "Food", MonthlyLimit: 200, Spent: 75, PriorBalance: 10})
	require.NoError(t, err)
	_, err = repo.UpsertBudget(ctx, core.Budget{Category: "Travel", MonthlyLimit: 500, Spent: 125, PriorBalance: 5})
	require.NoError(t, err)
	_, err = repo.UpsertBudget(ctx, core.Budget{Category: "Food", MonthlyLimit: 250, Spent: 90, PriorBalance: 15})
	require.NoError(t, err)

	rows, err := repo.ListBudgets(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Food", rows[0].Category)
	assert.Equal(t, "Travel", rows[1].Category)
	assert.Equal(t, 250.0, rows[0].MonthlyLimit)
	assert.Equal(t, 90.0, rows[0].Spent)
	assert.Equal(t, 15.0, rows[0].PriorBalance)
}

func TestBudgetRepository_UpsertKeepsID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first, err := repo.UpsertBudget(ctx, core.Budget{Category: "Food", MonthlyLimit: 1, Spent: 2})
	require.NoError(t, err)
	second, err := repo.UpsertBudget(ctx, core.Budget{Category: "Food", MonthlyLimit: 3, Spent: 4})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3.0, second.MonthlyLimit)
}

func TestEnsureColumn_AddsMissingColumnToLegacyTable(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "legacy.db")

	// Budgets table from before prior_balance existed.
	legacy, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = legacy.Exec(`CREATE TABLE budgets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category TEXT UNIQUE,
		monthly_limit REAL DEFAULT 0,
		spent REAL DEFAULT 0
	)`)
	require.NoError(t, err)
	_, err = legacy.Exec(`INSERT INTO budgets (category, monthly_limit, spent) VALUES ('Food', 100, 40)`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	repo, err := NewSQLiteRepository(ctx, dbPath)
	require.NoError(t, err)
	defer repo.Close()

	rows, err := repo.ListBudgets(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0.0, rows[0].PriorBalance)
	assert.Equal(t, 100.0, rows[0].MonthlyLimit)

	// Second call is a no-op.
	require.NoError(t, repo.EnsureColumn(ctx, "budgets", "prior_balance", "REAL", "0"))
}

func TestEnsureColumn_RejectsBadIdentifiers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	assert.Error(t, repo.EnsureColumn(ctx, "budgets; DROP TABLE x", "c", "REAL", "0"))
	assert.Error(t, repo.EnsureColumn(ctx, "budgets", "1col", "REAL", "0"))
}

func TestNewSQLiteRepository_ReopenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "app.db")

	repo, err := NewSQLiteRepository(ctx, dbPath)
	require.NoError(t, err)
	_, err = repo.InsertReceipt(ctx, core.NewReceipt{Vendor: "kept"})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = NewSQLiteRepository(ctx, dbPath)
	require.NoError(t, err)
	defer repo.Close()

	listed, err := repo.ListReceipts(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "kept", listed[0].Vendor)
}
