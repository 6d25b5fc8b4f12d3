package services

import (
	"context"
	"errors"
	"sort"

	"budgetapp/internal/core"
	"budgetapp/internal/parser"
)

type recordingOCR struct {
	text     string
	err      error
	lastPath string
}

func (o *recordingOCR) ExtractText(ctx context.Context, path string) (string, error) {
	o.lastPath = path
	return o.text, o.err
}

type recordingParser struct {
	result   parser.Result
	lastText *string
}

func (p *recordingParser) Parse(text string) parser.Result {
	p.lastText = &text
	return p.result
}

type memImages struct {
	saved [][]byte
	err   error
}

func (m *memImages) Save(data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.saved = append(m.saved, data)
	return "/receipts/receipt_test.png", nil
}

type memReceipts struct {
	rows      []core.Receipt
	insertErr error
	inserted  []core.NewReceipt
}

func (m *memReceipts) InsertReceipt(ctx context.Context, rec core.NewReceipt) (int64, error) {
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.inserted = append(m.inserted, rec)
	id := int64(len(m.rows) + 1)
	m.rows = append(m.rows, core.Receipt{
		ID: id, Date: rec.Date, Vendor: rec.Vendor, Total: rec.Total,
		ImagePath: rec.ImagePath, OCRText: rec.OCRText, CreatedAt: rec.CreatedAt,
	})
	return id, nil
}

func (m *memReceipts) ListReceipts(ctx context.Context) ([]core.ReceiptSummary, error) {
	out := make([]core.ReceiptSummary, 0, len(m.rows))
	for i := len(m.rows) - 1; i >= 0; i-- {
		out = append(out, m.rows[i].Summary())
	}
	return out, nil
}

func (m *memReceipts) GetReceipt(ctx context.Context, id int64) (core.Receipt, error) {
	for _, r := range m.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return core.Receipt{}, core.ErrNotFound
}

func (m *memReceipts) ExportRows(ctx context.Context) ([]core.ReceiptSummary, error) {
	return m.ListReceipts(ctx)
}

type memBudgets struct {
	byCategory map[string]core.Budget
	calls      []core.Budget
	failOn     string
}

func newMemBudgets() *memBudgets {
	return &memBudgets{byCategory: map[string]core.Budget{}}
}

var errStore = errors.New("disk I/O error")

func (m *memBudgets) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	out := make([]core.Budget, 0, len(m.byCategory))
	for _, b := range m.byCategory {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (m *memBudgets) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if m.failOn != "" && b.Category == m.failOn {
		return core.Budget{}, errStore
	}
	m.calls = append(m.calls, b)
	if existing, ok := m.byCategory[b.Category]; ok {
		b.ID = existing.ID
	} else {
		b.ID = int64(len(m.byCategory) + 1)
	}
	m.byCategory[b.Category] = b
	return b, nil
}

type recordingPublisher struct {
	receipts []core.ReceiptSummary
	imports  map[string]int
	err      error
}

func (p *recordingPublisher) PublishReceiptCreated(ctx context.Context, r core.ReceiptSummary) error {
	p.receipts = append(p.receipts, r)
	return p.err
}

func (p *recordingPublisher) PublishBudgetsImported(ctx context.Context, source string, imported int) error {
	if p.imports == nil {
		p.imports = map[string]int{}
	}
	p.imports[source] = imported
	return p.err
}

type staticSheet struct {
	table [][]string
	err   error
}

func (s staticSheet) ReadTable(ctx context.Context) ([][]string, error) {
	return s.table, s.err
}
