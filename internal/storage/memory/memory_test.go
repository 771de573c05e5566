package memory

import (
	"context"
	"errors"
	"testing"

	"expensetracker/internal/core"

	"github.com/shopspring/decimal"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	st, err := s.Load(ctx)
	if err != nil || len(st.Expenses) != 0 || st.HasBudget {
		t.Fatalf("unexpected initial state: %+v err=%v", st, err)
	}

	a := core.Expense{ID: "a", Description: "Coffee", Amount: decimal.NewFromInt(3)}
	b := core.Expense{ID: "b", Description: "Lunch", Amount: decimal.NewFromInt(12)}
	c := core.Expense{ID: "c", Description: "Coffee", Amount: decimal.NewFromInt(4)}
	for _, e := range []core.Expense{a, b, c} {
		if err := s.InsertExpense(ctx, e); err != nil {
			t.Fatalf("insert %s: %v", e.ID, err)
		}
	}
	if err := s.InsertExpense(ctx, a); err == nil {
		t.Fatal("expected duplicate id error")
	}

	b.Amount = decimal.NewFromInt(15)
	if err := s.UpdateExpense(ctx, b); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.UpdateExpense(ctx, core.Expense{ID: "zz"}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.DeleteExpenses(ctx, []string{"a", "c", "unknown"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.SaveBudget(ctx, decimal.NewFromInt(500)); err != nil {
		t.Fatalf("save budget: %v", err)
	}

	st, _ = s.Load(ctx)
	if len(st.Expenses) != 1 || st.Expenses[0].ID != "b" || !st.Expenses[0].Amount.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("unexpected expenses %+v", st.Expenses)
	}
	if !st.HasBudget || !st.Budget.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("unexpected budget %+v", st)
	}
}

func TestLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.InsertExpense(ctx, core.Expense{ID: "a", Description: "x", Amount: decimal.NewFromInt(1)})

	st, _ := s.Load(ctx)
	st.Expenses[0].Description = "changed"

	st, _ = s.Load(ctx)
	if st.Expenses[0].Description != "x" {
		t.Fatal("Load must not expose internal slice")
	}
}
