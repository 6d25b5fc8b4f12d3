package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"budgetapp/internal/core"
)

// ListBudgets returns all budgets ordered by category.
func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, monthly_limit, spent, prior_balance FROM budgets ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	budgets := []core.Budget{}
	for rows.Next() {
		var (
			b                          core.Budget
			category                   sql.NullString
			limit, spent, priorBalance sql.NullFloat64
		)
		if err := rows.Scan(&b.ID, &category, &limit, &spent, &priorBalance); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Category = category.String
		b.MonthlyLimit = limit.Float64
		b.Spent = spent.Float64
		b.PriorBalance = priorBalance.Float64
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return budgets, nil
}

// UpsertBudget inserts the budget or overwrites the row with the same
// category in a single statement.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO budgets (category, monthly_limit, spent, prior_balance)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(category) DO UPDATE SET
		     monthly_limit = excluded.monthly_limit,
		     spent = excluded.spent,
		     prior_balance = excluded.prior_balance
		 RETURNING id`,
		b.Category, b.MonthlyLimit, b.Spent, b.PriorBalance).Scan(&id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget %q: %w", b.Category, err)
	}
	b.ID = id

	slog.DebugContext(ctx, "Budget upserted",
		"id", id,
		"category", b.Category,
		"monthly_limit", b.MonthlyLimit,
		"spent", b.Spent,
		"prior_balance", b.PriorBalance)

	return b, nil
}
