package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"expensetracker/internal/core"
	"expensetracker/internal/events"
	"expensetracker/internal/storage"
	"expensetracker/internal/storage/memory"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type recorder struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// failingStore wraps a memory store and fails the selected operations.
type failingStore struct {
	*memory.Store
	failInsert, failUpdate, failDelete, failBudget bool
}

var errDisk = errors.New("disk full")

func (f *failingStore) InsertExpense(ctx context.Context, e core.Expense) error {
	if f.failInsert {
		return errDisk
	}
	return f.Store.InsertExpense(ctx, e)
}

func (f *failingStore) UpdateExpense(ctx context.Context, e core.Expense) error {
	if f.failUpdate {
		return errDisk
	}
	return f.Store.UpdateExpense(ctx, e)
}

func (f *failingStore) DeleteExpenses(ctx context.Context, ids []string) error {
	if f.failDelete {
		return errDisk
	}
	return f.Store.DeleteExpenses(ctx, ids)
}

func (f *failingStore) SaveBudget(ctx context.Context, b decimal.Decimal) error {
	if f.failBudget {
		return errDisk
	}
	return f.Store.SaveBudget(ctx, b)
}

func newService(t *testing.T, budget string) (*Service, *recorder, storage.Store) {
	t.Helper()
	store := memory.New()
	rec := &recorder{}
	svc, err := Open(context.Background(), store, rec, nil, dec(budget))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return svc, rec, store
}

func TestAddIsBlockingAtBudget(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t, "100")

	if _, err := svc.AddExpense(ctx, "Groceries", dec("80")); err != nil {
		t.Fatalf("add 80: %v", err)
	}

	_, err := svc.AddExpense(ctx, "Snacks", dec("20.01"))
	if !errors.Is(err, core.ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}
	if !svc.Total().Equal(dec("80")) || len(svc.Expenses()) != 1 {
		t.Fatalf("rejected add changed the ledger: total %s, %d entries", svc.Total(), len(svc.Expenses()))
	}

	if _, err := svc.AddExpense(ctx, "Snacks", dec("20.00")); err != nil {
		t.Fatalf("add 20.00: %v", err)
	}
	if !svc.Total().Equal(dec("100")) {
		t.Fatalf("total = %s, want 100", svc.Total())
	}
	if svc.OverBudget() {
		t.Fatal("total equal to budget must not be over budget")
	}
}

func TestEditDeleteBudgetAreNonBlocking(t *testing.T) {
	ctx := context.Background()
	svc, rec, _ := newService(t, "100")
	mustAdd(t, svc, "Coffee", "40")
	mustAdd(t, svc, "Lunch", "50")

	res, err := svc.EditExpense(ctx, "Coffee", "Dinner", dec("70"))
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if res.Affected != 1 || !res.OverBudget {
		t.Fatalf("edit result = %+v, want affected and over budget", res)
	}
	if !svc.Total().Equal(dec("120")) {
		t.Fatalf("edit must not be reverted; total %s", svc.Total())
	}

	res, err = svc.SetBudget(ctx, dec("200"))
	if err != nil || res.OverBudget {
		t.Fatalf("set budget: %+v %v", res, err)
	}
	res, err = svc.SetBudget(ctx, dec("10"))
	if err != nil || !res.OverBudget || !svc.Budget().Equal(dec("10")) {
		t.Fatalf("lowering budget must apply and warn: %+v %v", res, err)
	}

	res, err = svc.DeleteExpense(ctx, "Lunch")
	if err != nil || res.Affected != 1 || !res.OverBudget {
		t.Fatalf("delete: %+v %v", res, err)
	}

	exceeded := 0
	for _, typ := range rec.types() {
		if typ == events.BudgetExceeded {
			exceeded++
		}
	}
	if exceeded != 3 {
		t.Fatalf("expected 3 budget.exceeded events (edit, budget, delete), got %d: %v", exceeded, rec.types())
	}
}

func TestLabelSemantics(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newService(t, "10000")
	first := mustAdd(t, svc, "Coffee", "3")
	second := mustAdd(t, svc, "Coffee", "4")

	if _, err := svc.EditExpense(ctx, "Coffee", "Tea", dec("5")); err != nil {
		t.Fatal(err)
	}
	list := svc.Expenses()
	if list[0].ID != first.ID || list[0].Description != "Tea" {
		t.Fatalf("first Coffee should be edited: %+v", list[0])
	}
	if list[1].ID != second.ID || list[1].Description != "Coffee" {
		t.Fatalf("second Coffee should be untouched: %+v", list[1])
	}

	mustAdd(t, svc, "Coffee", "1")
	res, err := svc.DeleteExpense(ctx, "Coffee")
	if err != nil || res.Affected != 2 {
		t.Fatalf("delete should remove both Coffee entries: %+v %v", res, err)
	}
	st, _ := store.Load(ctx)
	if len(st.Expenses) != 1 || st.Expenses[0].Description != "Tea" {
		t.Fatalf("store out of sync: %+v", st.Expenses)
	}
}

func TestMissingLabelIsSilent(t *testing.T) {
	ctx := context.Background()
	svc, rec, _ := newService(t, "10000")
	mustAdd(t, svc, "Coffee", "3")
	before := len(rec.types())

	res, err := svc.EditExpense(ctx, "Nope", "x", dec("1"))
	if err != nil || res.Affected != 0 {
		t.Fatalf("edit missing: %+v %v", res, err)
	}
	res, err = svc.DeleteExpense(ctx, "Nope")
	if err != nil || res.Affected != 0 {
		t.Fatalf("delete missing: %+v %v", res, err)
	}
	if len(rec.types()) != before {
		t.Fatal("no events expected for no-op operations")
	}
}

func TestIDOperations(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t, "10000")
	mustAdd(t, svc, "Coffee", "3")
	second := mustAdd(t, svc, "Coffee", "4")

	if _, err := svc.EditExpenseByID(ctx, second.ID, "Espresso", dec("2")); err != nil {
		t.Fatalf("EditExpenseByID: %v", err)
	}
	if got := svc.Expenses()[1]; got.Description != "Espresso" {
		t.Fatalf("wrong entry edited: %+v", got)
	}
	if _, err := svc.DeleteExpenseByID(ctx, second.ID); err != nil {
		t.Fatalf("DeleteExpenseByID: %v", err)
	}
	if len(svc.Expenses()) != 1 {
		t.Fatal("expected one entry left")
	}

	if _, err := svc.EditExpenseByID(ctx, "missing", "x", dec("1")); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.DeleteExpenseByID(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreFailureLeavesLedgerUnchanged(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: memory.New()}
	svc, err := Open(ctx, store, nil, nil, dec("100"))
	if err != nil {
		t.Fatal(err)
	}
	mustAdd(t, svc, "Coffee", "3")

	store.failInsert, store.failUpdate, store.failDelete, store.failBudget = true, true, true, true

	if _, err := svc.AddExpense(ctx, "Tea", dec("1")); !errors.Is(err, errDisk) {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.EditExpense(ctx, "Coffee", "Tea", dec("1")); !errors.Is(err, errDisk) {
		t.Fatalf("edit: %v", err)
	}
	if _, err := svc.DeleteExpense(ctx, "Coffee"); !errors.Is(err, errDisk) {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.SetBudget(ctx, dec("1")); !errors.Is(err, errDisk) {
		t.Fatalf("budget: %v", err)
	}

	list := svc.Expenses()
	if len(list) != 1 || list[0].Description != "Coffee" || !list[0].Amount.Equal(dec("3")) {
		t.Fatalf("ledger changed despite store failures: %+v", list)
	}
	if !svc.Budget().Equal(dec("100")) {
		t.Fatalf("budget changed despite store failure: %s", svc.Budget())
	}
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	rec := &recorder{err: errors.New("broker down")}
	svc, err := Open(context.Background(), memory.New(), rec, nil, dec("100"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddExpense(context.Background(), "Coffee", dec("3")); err != nil {
		t.Fatalf("publish failure leaked: %v", err)
	}
	if len(rec.types()) != 1 || rec.types()[0] != events.ExpenseAdded {
		t.Fatalf("unexpected events %v", rec.types())
	}
}

func TestOpenRestoresState(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newService(t, "100")
	mustAdd(t, svc, "Coffee", "3")
	mustAdd(t, svc, "Lunch", "12")
	if _, err := svc.SetBudget(ctx, dec("50")); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(ctx, store, nil, nil, dec("100"))
	if err != nil {
		t.Fatal(err)
	}
	if !reopened.Budget().Equal(dec("50")) || !reopened.Total().Equal(dec("15")) {
		t.Fatalf("restored budget %s total %s", reopened.Budget(), reopened.Total())
	}
	if got := reopened.Expenses(); got[0].Description != "Coffee" || got[1].Description != "Lunch" {
		t.Fatalf("order not restored: %+v", got)
	}
	if s := reopened.Summary(); s.Count != 2 || s.OverBudget {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestOpenDefaultsAndClose(t *testing.T) {
	svc, err := Open(context.Background(), nil, nil, nil, dec("10000"))
	if err != nil {
		t.Fatal(err)
	}
	if !svc.Budget().Equal(dec("10000")) || len(svc.Expenses()) != 0 {
		t.Fatal("fresh service should be empty with default budget")
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func mustAdd(t *testing.T, svc *Service, desc, amount string) core.Expense {
	t.Helper()
	e, err := svc.AddExpense(context.Background(), desc, dec(amount))
	if err != nil {
		t.Fatalf("add %s %s: %v", desc, amount, err)
	}
	return e
}
