package services

import (
	"context"
	"fmt"
	"log/slog"

	"budgetapp/internal/core"
	applog "budgetapp/internal/log"
)

// BudgetService maintains category budgets.
type BudgetService struct {
	repo      BudgetRepository
	sheet     SheetReader
	publisher EventPublisher
}

// NewBudgetService wires the budget ledger. sheet and publisher may be nil.
func NewBudgetService(repo BudgetRepository, sheet SheetReader, publisher EventPublisher) *BudgetService {
	return &BudgetService{
		repo:      repo,
		sheet:     sheet,
		publisher: publisher,
	}
}

// ListBudgets returns all budgets ordered by category.
func (s *BudgetService) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	budgets, err := s.repo.ListBudgets(ctx)
	if err != nil {
		return nil, core.WrapStore("list budgets", err)
	}
	return budgets, nil
}

// UpsertBudget creates the category's budget or overwrites its values.
// The category is trimmed and must not be empty; negative amounts are stored as given.
func (s *BudgetService) UpsertBudget(ctx context.Context, category string, monthlyLimit, spent, priorBalance float64) (core.Budget, error) {
	category, err := core.NormalizeCategory(category)
	if err != nil {
		return core.Budget{}, err
	}

	b, err := s.repo.UpsertBudget(ctx, core.Budget{
		Category:     category,
		MonthlyLimit: monthlyLimit,
		Spent:        spent,
		PriorBalance: priorBalance,
	})
	if err != nil {
		return core.Budget{}, core.WrapStore("save budget", err)
	}
	return b, nil
}

// ImportBudgets upserts every row of a CSV or spreadsheet upload.
// Rows are applied in order outside a transaction: a store failure stops the
// import and leaves earlier rows committed.
func (s *BudgetService) ImportBudgets(ctx context.Context, filename string, data []byte) (core.ImportResult, error) {
	table, err := ReadBudgetTable(filename, data)
	if err != nil {
		return core.ImportResult{}, err
	}
	return s.importTable(ctx, filename, table)
}

// ImportBudgetsFromSheet runs the import pipeline over the configured
// spreadsheet range.
func (s *BudgetService) ImportBudgetsFromSheet(ctx context.Context) (core.ImportResult, error) {
	if s.sheet == nil {
		return core.ImportResult{}, core.ErrSheetNotConfigured
	}
	table, err := s.sheet.ReadTable(ctx)
	if err != nil {
		return core.ImportResult{}, fmt.Errorf("read budget sheet: %w", err)
	}
	return s.importTable(ctx, "sheet", table)
}

func (s *BudgetService) importTable(ctx context.Context, source string, table [][]string) (core.ImportResult, error) {
	rows, err := NormalizeBudgetTable(table)
	if err != nil {
		return core.ImportResult{}, err
	}

	imported := 0
	for _, row := range rows {
		if _, err := s.UpsertBudget(ctx, row.Category, row.MonthlyLimit, row.Spent, row.PriorBalance); err != nil {
			slog.ErrorContext(ctx, "Budget import aborted",
				applog.FieldSource, source,
				applog.FieldImported, imported,
				applog.FieldCategory, row.Category,
				applog.FieldError, err)
			return core.ImportResult{}, fmt.Errorf("import row %d (%s): %w", imported+1, row.Category, err)
		}
		imported++
	}

	if s.publisher != nil {
		if err := s.publisher.PublishBudgetsImported(ctx, source, imported); err != nil {
			slog.ErrorContext(ctx, "Failed to publish import event", applog.FieldSource, source, applog.FieldError, err)
		}
	}

	return core.ImportResult{Imported: imported}, nil
}
