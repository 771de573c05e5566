// Package ledger holds the in-memory list of expenses and the budget limit.
//
// A Ledger is owned by a single goroutine; it performs no locking.
// Label-based operations keep the legacy semantics: Edit touches the first
// entry whose description matches exactly, Delete removes every match.
// ID-based variants address a single entry unambiguously.
package ledger

import (
	"fmt"

	"expensetracker/internal/core"

	"github.com/shopspring/decimal"
)

// DefaultBudget is the limit a new ledger starts with.
var DefaultBudget = decimal.NewFromInt(10000)

type Ledger struct {
	entries []core.Expense
	budget  decimal.Decimal
}

// New creates an empty ledger with the given budget limit.
func New(budget decimal.Decimal) *Ledger {
	return &Ledger{budget: budget}
}

// Restore creates a ledger pre-populated with entries in the given order.
func Restore(budget decimal.Decimal, entries []core.Expense) *Ledger {
	l := New(budget)
	l.entries = append(l.entries, entries...)
	return l
}

// Add appends a new expense. No validation is performed.
func (l *Ledger) Add(description string, amount decimal.Decimal) core.Expense {
	e := core.NewExpense(description, amount)
	l.entries = append(l.entries, e)
	return e
}

// Append appends a pre-built expense.
func (l *Ledger) Append(e core.Expense) {
	l.entries = append(l.entries, e)
}

// Total returns the sum of all amounts, zero for an empty ledger.
func (l *Ledger) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range l.entries {
		total = total.Add(e.Amount)
	}
	return total
}

// IsOverBudget reports whether the total strictly exceeds the limit.
func (l *Ledger) IsOverBudget() bool {
	return l.Total().GreaterThan(l.budget)
}

// WouldExceed reports whether adding amount would put the total strictly
// above the limit.
func (l *Ledger) WouldExceed(amount decimal.Decimal) bool {
	return l.Total().Add(amount).GreaterThan(l.budget)
}

// SetBudget replaces the limit unconditionally.
func (l *Ledger) SetBudget(budget decimal.Decimal) {
	l.budget = budget
}

func (l *Ledger) Budget() decimal.Decimal {
	return l.budget
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Summary captures count, total and budget state in one call.
func (l *Ledger) Summary() core.Summary {
	total := l.Total()
	return core.Summary{
		Count:      len(l.entries),
		Total:      total,
		Budget:     l.budget,
		OverBudget: total.GreaterThan(l.budget),
	}
}

// Snapshot returns a copy of the entries in insertion order.
func (l *Ledger) Snapshot() []core.Expense {
	out := make([]core.Expense, len(l.entries))
	copy(out, l.entries)
	return out
}

// Find returns the first entry whose description equals description.
func (l *Ledger) Find(description string) (core.Expense, bool) {
	if i := l.indexOf(description); i >= 0 {
		return l.entries[i], true
	}
	return core.Expense{}, false
}

// Matching returns every entry whose description equals description.
func (l *Ledger) Matching(description string) []core.Expense {
	var out []core.Expense
	for _, e := range l.entries {
		if e.Description == description {
			out = append(out, e)
		}
	}
	return out
}

// Get returns the entry with the given ID.
func (l *Ledger) Get(id string) (core.Expense, error) {
	if i := l.indexOfID(id); i >= 0 {
		return l.entries[i], nil
	}
	return core.Expense{}, fmt.Errorf("get %s: %w", id, core.ErrNotFound)
}

// Edit overwrites description and amount of the first entry matching
// oldDescription. It reports false, without error, when nothing matches.
func (l *Ledger) Edit(oldDescription, newDescription string, newAmount decimal.Decimal) (core.Expense, bool) {
	i := l.indexOf(oldDescription)
	if i < 0 {
		return core.Expense{}, false
	}
	l.entries[i].Description = newDescription
	l.entries[i].Amount = newAmount
	return l.entries[i], true
}

// EditByID overwrites description and amount of the entry with the given ID.
func (l *Ledger) EditByID(id, newDescription string, newAmount decimal.Decimal) (core.Expense, error) {
	i := l.indexOfID(id)
	if i < 0 {
		return core.Expense{}, fmt.Errorf("edit %s: %w", id, core.ErrNotFound)
	}
	l.entries[i].Description = newDescription
	l.entries[i].Amount = newAmount
	return l.entries[i], nil
}

// Delete removes every entry whose description equals description and
// returns the removed entries in their original order.
func (l *Ledger) Delete(description string) []core.Expense {
	var removed []core.Expense
	kept := l.entries[:0]
	for _, e := range l.entries {
		if e.Description == description {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	clear(l.entries[len(kept):])
	l.entries = kept
	return removed
}

// DeleteByID removes the entry with the given ID.
func (l *Ledger) DeleteByID(id string) (core.Expense, error) {
	i := l.indexOfID(id)
	if i < 0 {
		return core.Expense{}, fmt.Errorf("delete %s: %w", id, core.ErrNotFound)
	}
	e := l.entries[i]
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	return e, nil
}

func (l *Ledger) indexOf(description string) int {
	for i, e := range l.entries {
		if e.Description == description {
			return i
		}
	}
	return -1
}

func (l *Ledger) indexOfID(id string) int {
	for i, e := range l.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
