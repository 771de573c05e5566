// Package tracker coordinates the ledger with persistence and event
// publishing.
//
// Adding an expense is blocking: an add that would push the total above the
// budget is refused with core.ErrBudgetExceeded and nothing changes. Edit,
// delete and budget changes are never refused for budget reasons; they
// report the resulting over-budget state so the caller can warn.
package tracker

import (
	"context"
	"errors"
	"fmt"

	"expensetracker/internal/core"
	"expensetracker/internal/events"
	"expensetracker/internal/ledger"
	applog "expensetracker/internal/log"
	"expensetracker/internal/storage"
	"expensetracker/internal/storage/memory"

	"github.com/shopspring/decimal"
)

// Result describes the outcome of a non-blocking mutation.
type Result struct {
	Affected   int
	OverBudget bool
}

type Service struct {
	ledger    *ledger.Ledger
	store     storage.Store
	publisher events.Publisher
	logger    *applog.Logger
}

// Open restores the ledger from store. When the store holds no budget the
// default is used. A nil store or publisher falls back to an in-memory
// store and a no-op publisher.
func Open(ctx context.Context, store storage.Store, publisher events.Publisher, logger *applog.Logger, defaultBudget decimal.Decimal) (*Service, error) {
	if store == nil {
		store = memory.New()
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentTracker)

	st, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	budget := defaultBudget
	if st.HasBudget {
		budget = st.Budget
	}

	s := &Service{
		ledger:    ledger.Restore(budget, st.Expenses),
		store:     store,
		publisher: publisher,
		logger:    logger,
	}

	logger.InfoContext(ctx, "Ledger opened",
		applog.NewFields().
			WithOperation(applog.OpLoad).
			WithAffected(len(st.Expenses)).
			WithBudget(s.ledger.Total(), budget).
			ToSlice()...)
	return s, nil
}

// AddExpense appends an expense unless doing so would exceed the budget.
func (s *Service) AddExpense(ctx context.Context, description string, amount decimal.Decimal) (core.Expense, error) {
	if s.ledger.WouldExceed(amount) {
		s.logger.WarnContext(ctx, "Expense rejected: budget limit exceeded",
			applog.NewFields().
				WithOperation(applog.OpCreate).
				WithErrorType(applog.ErrorTypeBudget).
				WithExpense("", description, amount).
				WithBudget(s.ledger.Total(), s.ledger.Budget()).
				ToSlice()...)
		return core.Expense{}, fmt.Errorf("add %q: %w", description, core.ErrBudgetExceeded)
	}

	e := core.NewExpense(description, amount)
	if err := s.store.InsertExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.ledger.Append(e)

	s.logger.InfoContext(ctx, "Expense added",
		applog.NewFields().WithOperation(applog.OpCreate).WithExpense(e.ID, e.Description, e.Amount).ToSlice()...)
	s.publish(ctx, events.ForExpense(events.ExpenseAdded, e, s.ledger.Summary()))
	s.checkBudget(ctx)
	return e, nil
}

// EditExpense rewrites the first expense whose description matches
// oldDescription. A missing description is not an error: Affected is 0.
func (s *Service) EditExpense(ctx context.Context, oldDescription, newDescription string, newAmount decimal.Decimal) (Result, error) {
	target, ok := s.ledger.Find(oldDescription)
	if !ok {
		s.logger.DebugContext(ctx, "Edit matched no expense", applog.FieldExpenseDesc, oldDescription)
		return s.result(0), nil
	}
	return s.editByID(ctx, target.ID, newDescription, newAmount)
}

// EditExpenseByID rewrites the expense with the given ID.
func (s *Service) EditExpenseByID(ctx context.Context, id, newDescription string, newAmount decimal.Decimal) (Result, error) {
	if _, err := s.ledger.Get(id); err != nil {
		return Result{}, err
	}
	return s.editByID(ctx, id, newDescription, newAmount)
}

func (s *Service) editByID(ctx context.Context, id, newDescription string, newAmount decimal.Decimal) (Result, error) {
	updated := core.Expense{ID: id, Description: newDescription, Amount: newAmount}
	if err := s.store.UpdateExpense(ctx, updated); err != nil {
		return Result{}, fmt.Errorf("save edit: %w", err)
	}
	if _, err := s.ledger.EditByID(id, newDescription, newAmount); err != nil {
		return Result{}, err
	}

	s.logger.InfoContext(ctx, "Expense edited",
		applog.NewFields().WithOperation(applog.OpUpdate).WithExpense(id, newDescription, newAmount).ToSlice()...)
	s.publish(ctx, events.ForExpense(events.ExpenseEdited, updated, s.ledger.Summary()))
	s.checkBudget(ctx)
	return s.result(1), nil
}

// DeleteExpense removes every expense whose description matches.
func (s *Service) DeleteExpense(ctx context.Context, description string) (Result, error) {
	matches := s.ledger.Matching(description)
	if len(matches) == 0 {
		return s.result(0), nil
	}

	ids := make([]string, len(matches))
	for i, e := range matches {
		ids[i] = e.ID
	}
	if err := s.store.DeleteExpenses(ctx, ids); err != nil {
		return Result{}, fmt.Errorf("save delete: %w", err)
	}
	removed := s.ledger.Delete(description)

	s.logger.InfoContext(ctx, "Expenses deleted",
		applog.NewFields().WithOperation(applog.OpDelete).WithAffected(len(removed)).ToSlice()...)
	summary := s.ledger.Summary()
	for _, e := range removed {
		s.publish(ctx, events.ForExpense(events.ExpenseDeleted, e, summary))
	}
	s.checkBudget(ctx)
	return s.result(len(removed)), nil
}

// DeleteExpenseByID removes the expense with the given ID.
func (s *Service) DeleteExpenseByID(ctx context.Context, id string) (Result, error) {
	if _, err := s.ledger.Get(id); err != nil {
		return Result{}, err
	}
	if err := s.store.DeleteExpenses(ctx, []string{id}); err != nil {
		return Result{}, fmt.Errorf("save delete: %w", err)
	}
	removed, err := s.ledger.DeleteByID(id)
	if err != nil {
		return Result{}, err
	}

	s.logger.InfoContext(ctx, "Expense deleted",
		applog.NewFields().WithOperation(applog.OpDelete).WithExpense(removed.ID, removed.Description, removed.Amount).ToSlice()...)
	s.publish(ctx, events.ForExpense(events.ExpenseDeleted, removed, s.ledger.Summary()))
	s.checkBudget(ctx)
	return s.result(1), nil
}

// SetBudget replaces the limit unconditionally.
func (s *Service) SetBudget(ctx context.Context, budget decimal.Decimal) (Result, error) {
	if err := s.store.SaveBudget(ctx, budget); err != nil {
		return Result{}, fmt.Errorf("save budget: %w", err)
	}
	s.ledger.SetBudget(budget)

	s.logger.InfoContext(ctx, "Budget changed",
		applog.NewFields().WithOperation(applog.OpBudget).WithBudget(s.ledger.Total(), budget).ToSlice()...)
	s.publish(ctx, events.ForBudget(events.BudgetChanged, s.ledger.Summary()))
	s.checkBudget(ctx)
	return s.result(1), nil
}

func (s *Service) Total() decimal.Decimal  { return s.ledger.Total() }
func (s *Service) Budget() decimal.Decimal { return s.ledger.Budget() }
func (s *Service) OverBudget() bool        { return s.ledger.IsOverBudget() }
func (s *Service) Summary() core.Summary   { return s.ledger.Summary() }

// Expenses returns a copy of the current listing.
func (s *Service) Expenses() []core.Expense { return s.ledger.Snapshot() }

// Close releases the store and the publisher.
func (s *Service) Close() error {
	return errors.Join(s.store.Close(), s.publisher.Close())
}

func (s *Service) result(affected int) Result {
	return Result{Affected: affected, OverBudget: s.ledger.IsOverBudget()}
}

func (s *Service) checkBudget(ctx context.Context) {
	if !s.ledger.IsOverBudget() {
		return
	}
	summary := s.ledger.Summary()
	s.logger.WarnContext(ctx, "Budget limit exceeded",
		applog.NewFields().WithErrorType(applog.ErrorTypeBudget).WithBudget(summary.Total, summary.Budget).ToSlice()...)
	s.publish(ctx, events.ForBudget(events.BudgetExceeded, summary))
}

// publish is best effort; the ledger is the source of truth.
func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger event",
			applog.FieldEventID, e.ID,
			applog.FieldEventType, e.Type,
			applog.FieldError, err)
	}
}
