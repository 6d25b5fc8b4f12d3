package cli

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetapp/internal/config"
	applog "budgetapp/internal/log"
)

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard})
}

func TestOptionalIntegrationsDisabledByDefault(t *testing.T) {
	cfg := config.Defaults()

	pub, closeFn := InitPublisher(context.Background(), quietLogger(), cfg)
	assert.Nil(t, pub)
	closeFn()

	sheet, err := InitSheetReader(context.Background(), quietLogger(), cfg)
	require.NoError(t, err)
	assert.Nil(t, sheet)
}

func TestLoadAndValidateConfigRejectsBadPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	_, err := LoadAndValidateConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
}

func TestInitSQLite(t *testing.T) {
	repo, err := InitSQLite(context.Background(), quietLogger(), filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	assert.NoError(t, repo.Ping(context.Background()))
}
