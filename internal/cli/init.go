// Package cli wires the process-level dependencies for cmd/budgetapp:
// environment, logging and the optional outbound integrations.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"budgetapp/internal/amqp"
	"budgetapp/internal/config"
	applog "budgetapp/internal/log"
	"budgetapp/internal/services"
	"budgetapp/internal/sheets/google"
	"budgetapp/internal/storage"
)

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig reads the environment and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the application logger from cfg and installs it as
// the slog default.
func SetupLogger(cfg *config.Config) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     cfg.SlogLevel(),
		Format:    cfg.LogFormat,
		Component: applog.ComponentApp,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)
	return logger
}

// InitSQLite opens the database and applies migrations.
func InitSQLite(ctx context.Context, logger *applog.Logger, dbPath string) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	logger.WithComponent(applog.ComponentStorage).Info("SQLite ready", "path", dbPath)
	return repo, nil
}

// InitPublisher connects to the broker when AMQP is configured. A broker
// that cannot be reached is logged and events are disabled; the returned
// close func is always safe to call.
func InitPublisher(ctx context.Context, logger *applog.Logger, cfg *config.Config) (services.EventPublisher, func()) {
	noop := func() {}
	if !cfg.AMQPEnabled() {
		return nil, noop
	}

	l := logger.WithComponent(applog.ComponentAMQP)
	client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		l.Warn("AMQP unavailable, events disabled", applog.FieldError, err)
		return nil, noop
	}
	l.Info("AMQP publisher connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client, func() {
		if err := client.Close(); err != nil {
			l.Warn("AMQP close failed", applog.FieldError, err)
		}
	}
}

// InitSheetReader builds the Google Sheets budget source when a sheet id
// is configured.
func InitSheetReader(ctx context.Context, logger *applog.Logger, cfg *config.Config) (services.SheetReader, error) {
	if !cfg.SheetEnabled() {
		return nil, nil
	}
	client, err := google.New(ctx, google.Config{
		SpreadsheetID:   cfg.BudgetSheetID,
		Range:           cfg.BudgetSheetRange,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("google sheets: %w", err)
	}
	logger.WithComponent(applog.ComponentSheets).Info("Budget sheet source configured", "range", cfg.BudgetSheetRange)
	return client, nil
}
