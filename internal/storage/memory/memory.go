package memory

import (
	"context"
	"fmt"
	"sync"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"

	"github.com/shopspring/decimal"
)

// Store keeps expenses in process memory.
type Store struct {
	mu        sync.Mutex
	items     []core.Expense
	budget    decimal.Decimal
	hasBudget bool
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) Load(_ context.Context) (storage.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return storage.State{
		Expenses:  append([]core.Expense(nil), s.items...),
		Budget:    s.budget,
		HasBudget: s.hasBudget,
	}, nil
}

func (s *Store) InsertExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(e.ID) >= 0 {
		return fmt.Errorf("insert expense %s: duplicate id", e.ID)
	}
	s.items = append(s.items, e)
	return nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(e.ID)
	if i < 0 {
		return fmt.Errorf("update expense %s: %w", e.ID, core.ErrNotFound)
	}
	s.items[i] = e
	return nil
}

// DeleteExpenses removes the given IDs; unknown IDs are ignored.
func (s *Store) DeleteExpenses(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := s.items[:0]
	for _, e := range s.items {
		if _, ok := drop[e.ID]; !ok {
			kept = append(kept, e)
		}
	}
	clear(s.items[len(kept):])
	s.items = kept
	return nil
}

func (s *Store) SaveBudget(_ context.Context, budget decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budget = budget
	s.hasBudget = true
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) indexOf(id string) int {
	for i, e := range s.items {
		if e.ID == id {
			return i
		}
	}
	return -1
}
