// Package sqlite persists the ledger in a local SQLite database so that it
// survives process restarts.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const budgetKey = "budget"

type Repository struct {
	db *sql.DB
}

var _ storage.Store = (*Repository)(nil)

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load returns all expenses in insertion order plus the saved budget.
func (r *Repository) Load(ctx context.Context) (storage.State, error) {
	var st storage.State

	rows, err := r.db.QueryContext(ctx, `SELECT id, description, amount FROM expenses ORDER BY seq`)
	if err != nil {
		return st, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e      core.Expense
			amount string
		)
		if err := rows.Scan(&e.ID, &e.Description, &amount); err != nil {
			return st, fmt.Errorf("scan expense: %w", err)
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return st, fmt.Errorf("decode amount of %s: %w", e.ID, err)
		}
		st.Expenses = append(st.Expenses, e)
	}
	if err := rows.Err(); err != nil {
		return st, fmt.Errorf("iterate expenses: %w", err)
	}

	var budget string
	err = r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, budgetKey).Scan(&budget)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return st, fmt.Errorf("query budget: %w", err)
	default:
		if st.Budget, err = decimal.NewFromString(budget); err != nil {
			return st, fmt.Errorf("decode budget: %w", err)
		}
		st.HasBudget = true
	}

	slog.DebugContext(ctx, "Ledger loaded from SQLite", "expenses", len(st.Expenses), "has_budget", st.HasBudget)
	return st, nil
}

func (r *Repository) InsertExpense(ctx context.Context, e core.Expense) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, description, amount) VALUES (?, ?, ?)`,
		e.ID, e.Description, e.Amount.String())
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	slog.DebugContext(ctx, "Expense saved to SQLite", "id", e.ID, "description", e.Description, "amount", e.Amount.String())
	return nil
}

func (r *Repository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET description = ?, amount = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		e.Description, e.Amount.String(), e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update expense rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update expense %s: %w", e.ID, core.ErrNotFound)
	}
	return nil
}

// DeleteExpenses removes the given IDs in one transaction.
func (r *Repository) DeleteExpenses(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM expenses WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare delete: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("delete expense %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

func (r *Repository) SaveBudget(ctx context.Context, budget decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		budgetKey, budget.String())
	if err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	return nil
}
