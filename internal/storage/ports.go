// Package storage defines the persistence port the tracker writes through.
// The memory implementation keeps state for the life of the process only;
// the sqlite implementation persists it across runs.
package storage

import (
	"context"

	"expensetracker/internal/core"

	"github.com/shopspring/decimal"
)

// State is everything a store can hand back on startup.
type State struct {
	Expenses []core.Expense // insertion order
	Budget   decimal.Decimal
	// HasBudget is false when no budget was ever saved.
	HasBudget bool
}

// Store is the outbound persistence port.
type Store interface {
	Load(ctx context.Context) (State, error)
	InsertExpense(ctx context.Context, e core.Expense) error
	UpdateExpense(ctx context.Context, e core.Expense) error
	DeleteExpenses(ctx context.Context, ids []string) error
	SaveBudget(ctx context.Context, budget decimal.Decimal) error
	Close() error
}
