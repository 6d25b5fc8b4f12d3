package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"budgetapp/internal/core"
)

// InsertReceipt stores a receipt and returns its generated id.
func (r *SQLiteRepository) InsertReceipt(ctx context.Context, rec core.NewReceipt) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO receipts (date, vendor, total, image_path, ocr_text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		nullString(rec.Date), rec.Vendor, rec.Total, rec.ImagePath, rec.OCRText, rec.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert receipt: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read receipt id: %w", err)
	}

	slog.InfoContext(ctx, "Receipt saved to SQLite",
		"id", id,
		"vendor", rec.Vendor,
		"total", rec.Total)

	return id, nil
}

// ListReceipts returns receipt summaries, newest first.
func (r *SQLiteRepository) ListReceipts(ctx context.Context) ([]core.ReceiptSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, vendor, total, created_at FROM receipts ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	receipts := []core.ReceiptSummary{}
	for rows.Next() {
		var (
			s                 core.ReceiptSummary
			date              sql.NullString
			vendor, createdAt sql.NullString
			total             sql.NullFloat64
		)
		if err := rows.Scan(&s.ID, &date, &vendor, &total, &createdAt); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		s.Date = stringPtr(date)
		s.Vendor = vendor.String
		s.Total = total.Float64
		s.CreatedAt = createdAt.String
		receipts = append(receipts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipts: %w", err)
	}
	return receipts, nil
}

// GetReceipt returns the full receipt row, or core.ErrNotFound.
func (r *SQLiteRepository) GetReceipt(ctx context.Context, id int64) (core.Receipt, error) {
	var (
		rec                                    core.Receipt
		date, vendor, imagePath, ocrText, cAt sql.NullString
		total                                  sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, date, vendor, total, image_path, ocr_text, created_at FROM receipts WHERE id = ?`, id).
		Scan(&rec.ID, &date, &vendor, &total, &imagePath, &ocrText, &cAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Receipt{}, fmt.Errorf("receipt %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Receipt{}, fmt.Errorf("get receipt by id: %w", err)
	}

	rec.Date = stringPtr(date)
	rec.Vendor = vendor.String
	rec.Total = total.Float64
	rec.ImagePath = imagePath.String
	rec.OCRText = ocrText.String
	rec.CreatedAt = cAt.String
	return rec, nil
}

// ExportRows returns the rows written by the CSV export, newest first.
// It shares the list query so both views order identically.
func (r *SQLiteRepository) ExportRows(ctx context.Context) ([]core.ReceiptSummary, error) {
	return r.ListReceipts(ctx)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
