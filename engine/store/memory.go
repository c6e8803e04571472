// Package store provides in-memory implementations of the engine's
// persistence interfaces, for tests and development.
package store

import (
	"context"
	"sync"

	"github.com/blocadmin/billing-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory SnapshotSource (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	associations map[engine.AssociationID]*record
}

type record struct {
	units    []engine.Unit
	expenses []engine.Expense
	funds    []engine.RecurringFund
	payments []engine.Payment
	rules    engine.BillingRules
}

func NewMemory() *Memory {
	return &Memory{associations: make(map[engine.AssociationID]*record)}
}

func (m *Memory) assoc(id engine.AssociationID) *record {
	r, ok := m.associations[id]
	if !ok {
		r = &record{}
		m.associations[id] = r
	}
	return r
}

// AddUnit records a unit.
func (m *Memory) AddUnit(u engine.Unit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assoc(u.AssociationID).units = append(m.assoc(u.AssociationID).units, u)
}

// AddExpense records an expense.
func (m *Memory) AddExpense(e engine.Expense) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assoc(e.AssociationID).expenses = append(m.assoc(e.AssociationID).expenses, e)
}

// AddFund records a recurring fund.
func (m *Memory) AddFund(f engine.RecurringFund) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assoc(f.AssociationID).funds = append(m.assoc(f.AssociationID).funds, f)
}

// AddPayment records a payment for a unit of the given association.
func (m *Memory) AddPayment(id engine.AssociationID, p engine.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assoc(id).payments = append(m.assoc(id).payments, p)
}

// SetRules sets the association's billing rules.
func (m *Memory) SetRules(id engine.AssociationID, rules engine.BillingRules) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assoc(id).rules = rules
}

// ConfirmPayment flips a payment to confirmed status.
func (m *Memory) ConfirmPayment(id engine.AssociationID, paymentID engine.PaymentID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.associations[id]
	if !ok {
		return engine.ErrAssociationNotFound
	}
	for i := range r.payments {
		if r.payments[i].ID == paymentID {
			r.payments[i].Status = engine.PaymentConfirmed
			return nil
		}
	}
	return engine.ErrPaymentNotFound
}

// Snapshot returns a deep copy of the association's data, so callers
// can compute over it while writers keep mutating the store.
func (m *Memory) Snapshot(_ context.Context, id engine.AssociationID) (*engine.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.associations[id]
	if !ok {
		return nil, engine.ErrAssociationNotFound
	}

	snap := &engine.Snapshot{
		AssociationID: id,
		Units:         append([]engine.Unit{}, r.units...),
		Expenses:      append([]engine.Expense{}, r.expenses...),
		Funds:         append([]engine.RecurringFund{}, r.funds...),
		Payments:      append([]engine.Payment{}, r.payments...),
		Rules:         r.rules,
	}
	return snap, nil
}

// =============================================================================
// MEMORY STATEMENT CACHE
// =============================================================================

type cacheKey struct {
	ID     engine.AssociationID
	Period engine.BillingPeriod
}

type MemoryCache struct {
	mu         sync.RWMutex
	statements map[cacheKey]engine.BillingStatement
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{statements: make(map[cacheKey]engine.BillingStatement)}
}

func (c *MemoryCache) SaveStatement(_ context.Context, st engine.BillingStatement) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statements[cacheKey{ID: st.AssociationID, Period: st.Period}] = st
	return nil
}

func (c *MemoryCache) GetStatement(_ context.Context, id engine.AssociationID, period engine.BillingPeriod) (*engine.BillingStatement, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st, ok := c.statements[cacheKey{ID: id, Period: period}]
	if !ok {
		return nil, engine.ErrStatementNotCached
	}
	return &st, nil
}
