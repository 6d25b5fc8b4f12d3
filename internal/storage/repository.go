package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	_ "modernc.org/sqlite"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteRepository owns the receipts and budgets tables.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the database at dbPath, applies migrations and
// adds columns introduced after a database was first created.
func NewSQLiteRepository(ctx context.Context, dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{db: db}

	if err := repo.EnsureColumn(ctx, "budgets", "prior_balance", "REAL", "0"); err != nil {
		db.Close()
		return nil, fmt.Errorf("evolve budgets schema: %w", err)
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// EnsureColumn adds column to table with the given type and default when it
// does not exist yet. Existing rows receive the default.
func (r *SQLiteRepository) EnsureColumn(ctx context.Context, table, column, columnType, defaultValue string) error {
	if !identifierRe.MatchString(table) {
		return fmt.Errorf("invalid table identifier: %s", table)
	}
	if !identifierRe.MatchString(column) {
		return fmt.Errorf("invalid column identifier: %s", column)
	}

	exists, err := r.hasColumn(ctx, table, column)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s DEFAULT %s",
		quoteIdentifier(table), quoteIdentifier(column), columnType, defaultValue)
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}

	slog.InfoContext(ctx, "Column added", "table", table, "column", column, "type", columnType)
	return nil
}

func (r *SQLiteRepository) hasColumn(ctx context.Context, table, column string) (bool, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return false, fmt.Errorf("read table info %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, fmt.Errorf("scan table info %s: %w", table, err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

func quoteIdentifier(s string) string {
	return `"` + s + `"`
}
