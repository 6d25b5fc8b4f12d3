package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultRange is read when no range is configured.
const DefaultRange = "Budgets!A:D"

// Config selects the spreadsheet range holding the budget table and the
// service account used to read it.
type Config struct {
	SpreadsheetID   string
	Range           string
	CredentialsJSON string
	CredentialsFile string
}

// Client reads a budget table from Google Sheets.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	rng           string
}

// New creates a read-only Sheets client from service account credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	credentialsJSON, err := loadCredentials(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets client ready", "spreadsheet_id", spreadsheetID, "range", rangeOrDefault(cfg.Range))
	return newClient(svc, spreadsheetID, cfg.Range), nil
}

func newClient(svc *gsheet.Service, spreadsheetID, rng string) *Client {
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		rng:           rangeOrDefault(rng),
	}
}

func rangeOrDefault(rng string) string {
	if rng = strings.TrimSpace(rng); rng == "" {
		return DefaultRange
	}
	return rng
}

// loadCredentials prefers inline JSON, then the credentials file, then
// GOOGLE_APPLICATION_CREDENTIALS.
func loadCredentials(ctx context.Context, cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	file := strings.TrimSpace(cfg.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline service account credentials")
		return []byte(inline), nil
	case file != "":
		slog.DebugContext(ctx, "Reading service account credentials", "path", file)
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// ReadTable returns the configured range as rows of trimmed cell text.
// Cells are read unformatted so numbers arrive without currency symbols.
func (c *Client) ReadTable(ctx context.Context) ([][]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.rng, err)
	}

	slog.InfoContext(ctx, "Read budget sheet", "range", c.rng, "rows", len(resp.Values))
	return toTable(resp.Values), nil
}

func toTable(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = toStrings(row)
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if v == nil {
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
