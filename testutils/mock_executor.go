package testutils

import (
	"context"
	"sync"

	"github.com/evdnx/gobs/executor"
	"github.com/evdnx/gobs/types"
)

// MockExecutor wraps a PaperExecutor, captures every accepted order and can
// be told to fail the next submission.
type MockExecutor struct {
	*executor.PaperExecutor

	mu      sync.RWMutex
	orders  []types.Order // captured for assertions
	failErr error
	history []types.TransactionRecord
}

// NewMockExecutor creates a fresh executor with the supplied starting equity.
func NewMockExecutor(startEquity float64) *MockExecutor {
	return &MockExecutor{PaperExecutor: executor.NewPaperExecutor(startEquity, nil)}
}

// FailNext makes the next Submit return err without touching the book.
func (m *MockExecutor) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

// Seed prepends synthetic history returned ahead of real fills.
func (m *MockExecutor) Seed(recs ...types.TransactionRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, recs...)
}

// Submit records the order and updates equity/position exactly like PaperExecutor.
func (m *MockExecutor) Submit(o types.Order) error {
	m.mu.Lock()
	if err := m.failErr; err != nil {
		m.failErr = nil
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()

	if err := m.PaperExecutor.Submit(o); err != nil {
		return err
	}
	m.mu.Lock()
	m.orders = append(m.orders, o)
	m.mu.Unlock()
	return nil
}

// Transactions returns seeded history followed by the paper fills.
func (m *MockExecutor) Transactions(ctx context.Context, symbol string) ([]types.TransactionRecord, error) {
	fills, err := m.PaperExecutor.Transactions(ctx, symbol)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.TransactionRecord, 0, len(m.history)+len(fills))
	for _, r := range m.history {
		if symbol == "" || r.Instrument == symbol {
			out = append(out, r)
		}
	}
	return append(out, fills...), nil
}

// Orders returns a copy of all submitted orders (useful for assertions).
func (m *MockExecutor) Orders() []types.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Order, len(m.orders))
	copy(out, m.orders)
	return out
}
