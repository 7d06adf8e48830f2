package expense

import (
	"context"
	"sync"

	"spendtrail/pkg/platform/sentinel"
)

// Store is interface-driven so the service stays testable and persistence can
// change without rewiring business code.
type Store interface {
	Save(ctx context.Context, exp Expense) error
	FindByID(ctx context.Context, id string) (Expense, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryStore keeps the initial implementation lightweight. It favors
// clarity over performance.
type InMemoryStore struct {
	mu       sync.RWMutex
	expenses map[string]Expense
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{expenses: make(map[string]Expense)}
}

func (s *InMemoryStore) Save(_ context.Context, exp Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses[exp.ID] = exp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if exp, ok := s.expenses[id]; ok {
		return exp, nil
	}
	return Expense{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}
