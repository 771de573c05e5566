// Package events describes ledger mutations as messages that can be
// published to a broker and replayed into an audit log.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"expensetracker/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Type string

const (
	ExpenseAdded   Type = "expense.added"
	ExpenseEdited  Type = "expense.edited"
	ExpenseDeleted Type = "expense.deleted"
	BudgetChanged  Type = "budget.changed"
	BudgetExceeded Type = "budget.exceeded"
)

// Valid reports whether t is a known event type.
func (t Type) Valid() bool {
	switch t {
	case ExpenseAdded, ExpenseEdited, ExpenseDeleted, BudgetChanged, BudgetExceeded:
		return true
	}
	return false
}

// Event is a single ledger mutation together with the totals it left behind.
type Event struct {
	ID          string          `json:"id"`
	Type        Type            `json:"type"`
	ExpenseID   string          `json:"expense_id,omitempty"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Total       decimal.Decimal `json:"total"`
	Budget      decimal.Decimal `json:"budget"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// ForExpense builds an event about a single expense.
func ForExpense(t Type, e core.Expense, s core.Summary) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        t,
		ExpenseID:   e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		Total:       s.Total,
		Budget:      s.Budget,
		OccurredAt:  time.Now().UTC(),
	}
}

// ForBudget builds a budget.changed or budget.exceeded event.
func ForBudget(t Type, s core.Summary) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		Total:      s.Total,
		Budget:     s.Budget,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON decodes and validates an event.
func FromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if !e.Type.Valid() {
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	return &e, nil
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
