package services

import (
	"context"

	"budgetapp/internal/core"
	"budgetapp/internal/parser"
)

// TextExtractor turns a stored receipt image into raw text.
type TextExtractor interface {
	ExtractText(ctx context.Context, imagePath string) (string, error)
}

// ReceiptParser extracts structured fields from raw receipt text.
type ReceiptParser interface {
	Parse(text string) parser.Result
}

// ImageSaver persists uploaded receipt bytes and returns the stored path.
type ImageSaver interface {
	Save(data []byte) (string, error)
}

// ReceiptRepository is the receipt side of the persistence gateway.
type ReceiptRepository interface {
	InsertReceipt(ctx context.Context, rec core.NewReceipt) (int64, error)
	ListReceipts(ctx context.Context) ([]core.ReceiptSummary, error)
	GetReceipt(ctx context.Context, id int64) (core.Receipt, error)
	ExportRows(ctx context.Context) ([]core.ReceiptSummary, error)
}

// BudgetRepository is the budget side of the persistence gateway.
type BudgetRepository interface {
	ListBudgets(ctx context.Context) ([]core.Budget, error)
	UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)
}

// EventPublisher announces completed writes to other systems.
type EventPublisher interface {
	PublishReceiptCreated(ctx context.Context, r core.ReceiptSummary) error
	PublishBudgetsImported(ctx context.Context, source string, imported int) error
}

// SheetReader reads a budget table (header row first) from a spreadsheet.
type SheetReader interface {
	ReadTable(ctx context.Context) ([][]string, error)
}
