package memory

import (
	"context"
	"fmt"
	"sync"

	"quickspend/internal/core"
	ports "quickspend/internal/sheets"
)

// Store is an in-memory sheet. A row whose ID is already present is not
// appended twice, so redelivered events leave one row per expense.
type Store struct {
	mu    sync.Mutex
	items []core.Expense
	rows  map[int64]int
}

var _ ports.ExpenseAppender = (*Store)(nil)

func New() *Store {
	return &Store{rows: make(map[int64]int)}
}

// Append stores the expense and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.Expense) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.rows[e.ID]; ok {
		return fmt.Sprintf("mem:%d", n), nil
	}
	s.items = append(s.items, e)
	s.rows[e.ID] = len(s.items)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Expenses returns the appended rows in insertion order.
func (s *Store) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.items...)
}
