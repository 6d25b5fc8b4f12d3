package core

import (
	"strings"
)

// UnknownVendor is used when OCR text carries no non-blank line.
const UnknownVendor = "Unknown Vendor"

type (
	// Receipt is a stored receipt row. Date is free text as read from the
	// receipt and is nil when the parser found none.
	Receipt struct {
		ID        int64   `json:"id"`
		Date      *string `json:"date"`
		Vendor    string  `json:"vendor"`
		Total     float64 `json:"total"`
		ImagePath string  `json:"image_path"`
		OCRText   string  `json:"ocr_text"`
		CreatedAt string  `json:"created_at"`
	}

	// ReceiptSummary is the list/response projection of a Receipt.
	ReceiptSummary struct {
		ID        int64   `json:"id"`
		Date      *string `json:"date"`
		Vendor    string  `json:"vendor"`
		Total     float64 `json:"total"`
		CreatedAt string  `json:"created_at"`
	}

	// NewReceipt holds the values written by the receipt workflow.
	NewReceipt struct {
		Date      *string
		Vendor    string
		Total     float64
		ImagePath string
		OCRText   string
		CreatedAt string
	}

	// Budget is a category budget. Category is the natural key.
	Budget struct {
		ID           int64   `json:"id,omitempty"`
		Category     string  `json:"category"`
		MonthlyLimit float64 `json:"monthly_limit"`
		Spent        float64 `json:"spent"`
		PriorBalance float64 `json:"prior_balance"`
	}

	// ImportResult reports how many rows a bulk budget import upserted.
	ImportResult struct {
		Imported int `json:"imported"`
	}
)

// Summary projects the receipt to its list view.
func (r Receipt) Summary() ReceiptSummary {
	return ReceiptSummary{
		ID:        r.ID,
		Date:      r.Date,
		Vendor:    r.Vendor,
		Total:     r.Total,
		CreatedAt: r.CreatedAt,
	}
}

// NormalizeCategory trims the category and rejects empty values.
func NormalizeCategory(category string) (string, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return "", &ValidationError{Field: "category", Message: "Category is required"}
	}
	return category, nil
}

// Validate checks the budget's natural key. Negative amounts are accepted.
func (b Budget) Validate() error {
	_, err := NormalizeCategory(b.Category)
	return err
}
