/*
snapshot.go - The read-only input bundle the engine computes over

PURPOSE:
  The engine is a pure read-then-compute batch: a store loads one
  association's data as a Snapshot (units, expenses, funds, payments,
  rules), and every computation walks that frozen snapshot. Results are
  valid relative to the data seen; transactional consistency of the read
  is the store's responsibility, not the engine's.

KEY QUERIES PROVIDED HERE:
  - ExpensesIn(period): expenses recorded for one billing period
  - ExpensePeriodsBefore(target): distinct periods with at least one
    expense, strictly before the target, ascending
  - ConfirmedPaymentsIn / ConfirmedPaymentsBefore: payment sums keyed
    by unit

SEE ALSO:
  - store.go: SnapshotSource, the interface stores implement
  - store/memory.go: mutable in-memory store for tests and dev
*/
package engine

import "sort"

// =============================================================================
// SNAPSHOT - Point-in-time view of one association
// =============================================================================

type Snapshot struct {
	AssociationID AssociationID
	Units         []Unit
	Expenses      []Expense
	Funds         []RecurringFund
	Payments      []Payment
	Rules         BillingRules
}

// ExpensesIn returns the expenses recorded for the given period.
func (s *Snapshot) ExpensesIn(period BillingPeriod) []Expense {
	var out []Expense
	for _, e := range s.Expenses {
		if e.Period.Equal(period) {
			out = append(out, e)
		}
	}
	return out
}

// ExpensePeriodsBefore returns the distinct billing periods strictly
// before target that have at least one recorded expense, oldest first.
// A period where only funds would accrue but no expense was entered is
// not walked; funds follow recorded expense months.
func (s *Snapshot) ExpensePeriodsBefore(target BillingPeriod) []BillingPeriod {
	seen := make(map[BillingPeriod]bool)
	var periods []BillingPeriod
	for _, e := range s.Expenses {
		if e.Period.Before(target) && !seen[e.Period] {
			seen[e.Period] = true
			periods = append(periods, e.Period)
		}
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })
	return periods
}

// ConfirmedPaymentsIn sums confirmed payments attributed to exactly the
// given period, keyed by unit.
func (s *Snapshot) ConfirmedPaymentsIn(period BillingPeriod) map[UnitID]Amount {
	paid := make(map[UnitID]Amount)
	for _, p := range s.Payments {
		if p.IsConfirmed() && p.Period.Equal(period) {
			paid[p.UnitID] = paid[p.UnitID].Add(p.Amount)
		}
	}
	return paid
}

// ConfirmedPaymentsBefore sums confirmed payments attributed to any
// period strictly before target, keyed by unit.
func (s *Snapshot) ConfirmedPaymentsBefore(target BillingPeriod) map[UnitID]Amount {
	paid := make(map[UnitID]Amount)
	for _, p := range s.Payments {
		if p.IsConfirmed() && p.Period.Before(target) {
			paid[p.UnitID] = paid[p.UnitID].Add(p.Amount)
		}
	}
	return paid
}

// Unit returns the snapshot unit with the given ID, or nil.
func (s *Snapshot) Unit(id UnitID) *Unit {
	for i := range s.Units {
		if s.Units[i].ID == id {
			return &s.Units[i]
		}
	}
	return nil
}
