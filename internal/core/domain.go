package core

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrencySymbol is the symbol used when rendering amounts without
// an explicit presentation setting.
const DefaultCurrencySymbol = "Rs"

type (
	// Expense is a single ledger entry. The description doubles as the
	// legacy lookup key and is not unique; ID is.
	Expense struct {
		ID          string
		Description string
		Amount      decimal.Decimal
	}

	// Summary is a point-in-time view of the ledger totals.
	Summary struct {
		Count      int
		Total      decimal.Decimal
		Budget     decimal.Decimal
		OverBudget bool
	}
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrBudgetExceeded = errors.New("budget limit exceeded")
	ErrNotFound       = errors.New("expense not found")
)

// NewExpense builds an expense with a freshly generated ID.
func NewExpense(description string, amount decimal.Decimal) Expense {
	return Expense{
		ID:          uuid.NewString(),
		Description: description,
		Amount:      amount,
	}
}

// String renders the expense the way the listing shows it.
func (e Expense) String() string {
	return e.Format(DefaultCurrencySymbol)
}

// Format renders "<description>: <symbol><amount>" with two decimals.
func (e Expense) Format(symbol string) string {
	return fmt.Sprintf("%s: %s", e.Description, FormatAmount(symbol, e.Amount))
}
