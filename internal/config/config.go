package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// HTTP Server
	Port            string        `koanf:"PORT"`
	MaxUploadMB     int           `koanf:"MAX_UPLOAD_MB"`
	ShutdownTimeout time.Duration `koanf:"SHUTDOWN_TIMEOUT"`

	// Storage
	DataDir      string `koanf:"DATA_DIR"`
	SQLiteDBPath string `koanf:"SQLITE_DB_PATH"`
	ReceiptsDir  string `koanf:"RECEIPTS_DIR"`

	// OCR
	TesseractPath string `koanf:"TESSERACT_PATH"`
	OCRLanguage   string `koanf:"OCR_LANGUAGE"`

	// AMQP (disabled when URL is empty)
	AMQPURL      string `koanf:"AMQP_URL"`
	AMQPExchange string `koanf:"AMQP_EXCHANGE"`
	AMQPQueue    string `koanf:"AMQP_QUEUE"`

	// Google Sheets budget source (disabled when sheet id is empty)
	BudgetSheetID            string `koanf:"BUDGET_SHEET_ID"`
	BudgetSheetRange         string `koanf:"BUDGET_SHEET_RANGE"`
	GoogleServiceAccountJSON string `koanf:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	GoogleServiceAccountFile string `koanf:"GOOGLE_SERVICE_ACCOUNT_FILE"`

	// Logging
	LogLevel  string `koanf:"LOG_LEVEL"`
	LogFormat string `koanf:"LOG_FORMAT"`
}

// Defaults returns the configuration used when no variables are set.
func Defaults() *Config {
	return &Config{
		Port:             "8000",
		MaxUploadMB:      10,
		ShutdownTimeout:  10 * time.Second,
		DataDir:          "./data",
		TesseractPath:    "tesseract",
		OCRLanguage:      "eng",
		AMQPExchange:     "budgetapp",
		AMQPQueue:        "receipt_events",
		BudgetSheetRange: "Budgets!A:D",
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load reads the process environment on top of Defaults. Empty variables
// count as unset.
func Load() (*Config, error) {
	k := koanf.New(".")
	provider := env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if strings.TrimSpace(value) == "" {
			return "", nil
		}
		return key, value
	})
	if err := k.Load(provider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Defaults()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.resolvePaths()
	return cfg, nil
}

// resolvePaths derives the database and receipts locations from DataDir
// unless they were set explicitly.
func (c *Config) resolvePaths() {
	if c.SQLiteDBPath == "" {
		c.SQLiteDBPath = filepath.Join(c.DataDir, "app.db")
	}
	if c.ReceiptsDir == "" {
		c.ReceiptsDir = filepath.Join(c.DataDir, "receipts")
	}
}

// MaxUploadBytes is the request body limit for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// AMQPEnabled reports whether events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// SheetEnabled reports whether budgets can be imported from Google Sheets.
func (c *Config) SheetEnabled() bool {
	return c.BudgetSheetID != ""
}

// SlogLevel maps LogLevel onto slog; unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.MaxUploadMB < 1 || c.MaxUploadMB > 100 {
		errors = append(errors, fmt.Sprintf("invalid max upload size %dMB: must be between 1 and 100", c.MaxUploadMB))
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	}
	if c.ReceiptsDir == "" {
		errors = append(errors, "receipts directory cannot be empty")
	}
	if c.TesseractPath == "" {
		errors = append(errors, "tesseract path cannot be empty")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.BudgetSheetID != "" && c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided when BUDGET_SHEET_ID is set")
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}
