package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"budgetapp/internal/core"
	applog "budgetapp/internal/log"
)

// CreatedAtLayout is the ISO-8601 UTC layout stamped on new receipts.
const CreatedAtLayout = "2006-01-02T15:04:05.000000Z07:00"

// ReceiptService runs the receipt workflow: store image, OCR, parse, persist.
type ReceiptService struct {
	repo      ReceiptRepository
	images    ImageSaver
	ocr       TextExtractor
	parser    ReceiptParser
	publisher EventPublisher
	now       func() time.Time
}

// NewReceiptService wires the receipt workflow. publisher may be nil.
func NewReceiptService(repo ReceiptRepository, images ImageSaver, ocr TextExtractor, parser ReceiptParser, publisher EventPublisher) *ReceiptService {
	return &ReceiptService{
		repo:      repo,
		images:    images,
		ocr:       ocr,
		parser:    parser,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateReceipt stores the image, extracts and parses its text and inserts
// the receipt. Steps run in order with no rollback: if the insert fails the
// stored image is left on disk.
func (s *ReceiptService) CreateReceipt(ctx context.Context, image []byte) (core.ReceiptSummary, error) {
	path, err := s.images.Save(image)
	if err != nil {
		return core.ReceiptSummary{}, fmt.Errorf("store receipt image: %w", err)
	}

	slog.DebugContext(ctx, "Receipt image stored", applog.FieldImagePath, path, applog.FieldBytes, len(image))

	text, err := s.ocr.ExtractText(ctx, path)
	if err != nil {
		return core.ReceiptSummary{}, fmt.Errorf("extract receipt text: %w", err)
	}

	parsed := s.parser.Parse(text)
	createdAt := s.now().UTC().Format(CreatedAtLayout)

	id, err := s.repo.InsertReceipt(ctx, core.NewReceipt{
		Date:      parsed.Date,
		Vendor:    parsed.Vendor,
		Total:     parsed.Total,
		ImagePath: path,
		OCRText:   text,
		CreatedAt: createdAt,
	})
	if err != nil {
		return core.ReceiptSummary{}, core.WrapStore("save receipt", err)
	}

	summary := core.ReceiptSummary{
		ID:        id,
		Date:      parsed.Date,
		Vendor:    parsed.Vendor,
		Total:     parsed.Total,
		CreatedAt: createdAt,
	}

	if s.publisher != nil {
		if err := s.publisher.PublishReceiptCreated(ctx, summary); err != nil {
			// Don't fail the request - receipt is saved locally
			slog.ErrorContext(ctx, "Failed to publish receipt event", applog.FieldReceiptID, id, applog.FieldError, err)
		}
	}

	return summary, nil
}

// ListReceipts returns receipt summaries, newest first.
func (s *ReceiptService) ListReceipts(ctx context.Context) ([]core.ReceiptSummary, error) {
	receipts, err := s.repo.ListReceipts(ctx)
	if err != nil {
		return nil, core.WrapStore("list receipts", err)
	}
	return receipts, nil
}

// GetReceipt returns the full receipt or an error wrapping core.ErrNotFound.
func (s *ReceiptService) GetReceipt(ctx context.Context, id int64) (core.Receipt, error) {
	receipt, err := s.repo.GetReceipt(ctx, id)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return core.Receipt{}, core.WrapStore("get receipt", err)
	}
	return receipt, err
}

// ExportCSV writes all receipts as CSV, newest first, with the header
// date,vendor,total,created_at.
func (s *ReceiptService) ExportCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.repo.ExportRows(ctx)
	if err != nil {
		return core.WrapStore("load export rows", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"date", "vendor", "total", "created_at"}); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, r := range rows {
		date := ""
		if r.Date != nil {
			date = *r.Date
		}
		record := []string{date, r.Vendor, strconv.FormatFloat(r.Total, 'f', 2, 64), r.CreatedAt}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush CSV: %w", err)
	}
	return nil
}
