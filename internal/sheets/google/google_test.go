package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{CredentialsJSON: "{}"})
	assert.EqualError(t, err, "missing spreadsheet id")
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := New(context.Background(), Config{SpreadsheetID: "sheet-id"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}

func TestLoadCredentials(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sa.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"type":"service_account"}`), 0o600))
	envFile := filepath.Join(dir, "env.json")
	require.NoError(t, os.WriteFile(envFile, []byte(`{"from":"env"}`), 0o600))
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", envFile)

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"inline wins", Config{CredentialsJSON: ` {"inline":true} `, CredentialsFile: file}, `{"inline":true}`},
		{"file", Config{CredentialsFile: file}, `{"type":"service_account"}`},
		{"application default path", Config{}, `{"from":"env"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loadCredentials(context.Background(), tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}

	_, err := loadCredentials(context.Background(), Config{CredentialsFile: filepath.Join(dir, "missing.json")})
	assert.Error(t, err)
}

func TestToTable(t *testing.T) {
	values := [][]interface{}{
		{"Category", " Monthly_Limit ", "spent"},
		{"Food", float64(200), 12.5},
		{"Rent", nil},
		{},
	}

	want := [][]string{
		{"Category", "Monthly_Limit", "spent"},
		{"Food", "200", "12.5"},
		{"Rent", ""},
		{},
	}
	assert.Equal(t, want, toTable(values))
}

func TestRangeOrDefault(t *testing.T) {
	assert.Equal(t, DefaultRange, rangeOrDefault("  "))
	assert.Equal(t, "2025 Budget!A1:D50", rangeOrDefault("2025 Budget!A1:D50"))
}

func newTestService(t *testing.T, h http.HandlerFunc) *gsheet.Service {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return svc
}

func TestClient_ReadTable(t *testing.T) {
	var gotPath, gotRender string
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRender = r.URL.Query().Get("valueRenderOption")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"range":"Budgets!A1:D3","values":[["category","monthly_limit"],["Food",200],["Fun",15.5]]}`))
	})

	table, err := newClient(svc, "sheet-123", "").ReadTable(context.Background())
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"category", "monthly_limit"}, {"Food", "200"}, {"Fun", "15.5"}}, table)
	assert.Contains(t, gotPath, "/spreadsheets/sheet-123/values/")
	assert.Equal(t, "UNFORMATTED_VALUE", gotRender)
}

func TestClient_ReadTable_APIError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"forbidden"}}`, http.StatusForbidden)
	})

	_, err := newClient(svc, "sheet-123", "Budgets!A:D").ReadTable(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read Budgets!A:D")
}

func TestClient_ReadTable_Uninitialized(t *testing.T) {
	_, err := (&Client{}).ReadTable(context.Background())
	assert.Error(t, err)
}
