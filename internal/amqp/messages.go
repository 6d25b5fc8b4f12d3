package amqp

import (
	"encoding/json"
	"time"

	"budgetapp/internal/core"
)

// Event types carried in the AMQP Type property and the message body.
const (
	EventReceiptCreated  = "receipt.created"
	EventBudgetsImported = "budgets.imported"
)

// ReceiptCreatedMessage carries the summary of a stored receipt. OCR text
// and the image path stay local.
type ReceiptCreatedMessage struct {
	Event     string    `json:"event"`
	ID        int64     `json:"id"`
	Date      *string   `json:"date"`
	Vendor    string    `json:"vendor"`
	Total     float64   `json:"total"`
	CreatedAt string    `json:"created_at"`
	Timestamp time.Time `json:"timestamp"`
}

func NewReceiptCreatedMessage(r core.ReceiptSummary) *ReceiptCreatedMessage {
	return &ReceiptCreatedMessage{
		Event:     EventReceiptCreated,
		ID:        r.ID,
		Date:      r.Date,
		Vendor:    r.Vendor,
		Total:     r.Total,
		CreatedAt: r.CreatedAt,
		Timestamp: time.Now(),
	}
}

func (m *ReceiptCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReceiptCreatedMessageFromJSON(data []byte) (*ReceiptCreatedMessage, error) {
	var msg ReceiptCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// BudgetsImportedMessage reports how many rows an import upserted.
type BudgetsImportedMessage struct {
	Event     string    `json:"event"`
	Source    string    `json:"source"`
	Imported  int       `json:"imported"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBudgetsImportedMessage(source string, imported int) *BudgetsImportedMessage {
	return &BudgetsImportedMessage{
		Event:     EventBudgetsImported,
		Source:    source,
		Imported:  imported,
		Timestamp: time.Now(),
	}
}

func (m *BudgetsImportedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetsImportedMessageFromJSON(data []byte) (*BudgetsImportedMessage, error) {
	var msg BudgetsImportedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
