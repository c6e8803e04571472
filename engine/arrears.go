/*
arrears.go - Carried unpaid balances (the Arrears Accumulator)

PURPOSE:
  Walks every billing period strictly before the target that has
  recorded expenses, sums what each unit owed (expense shares + funds),
  subtracts confirmed payments attributed to those periods, and floors
  the result at zero. Overpayments do not produce credit balances here;
  they simply zero out the arrears.

STATELESSNESS:
  Recomputed from the full snapshot on every call. For associations with
  deep history, callers should cache assembled statements per period
  (see StatementCache) instead of replaying from genesis on every read.

SEE ALSO:
  - ledger.go: per-period owed amounts
  - penalty.go: reuses the per-period unpaid breakdown
*/
package engine

// =============================================================================
// ARREARS ACCUMULATOR
// =============================================================================

type ArrearsAccumulator struct {
	Ledger *LedgerBuilder
}

func NewArrearsAccumulator(ledger *LedgerBuilder) *ArrearsAccumulator {
	return &ArrearsAccumulator{Ledger: ledger}
}

// Compute returns each unit's outstanding balance carried into the
// target period. Zero prior periods means zero arrears for every unit.
func (a *ArrearsAccumulator) Compute(snap *Snapshot, target BillingPeriod) map[UnitID]Amount {
	owed := make(map[UnitID]Amount, len(snap.Units))
	for _, u := range snap.Units {
		owed[u.ID] = ZeroAmount()
	}

	for _, period := range snap.ExpensePeriodsBefore(target) {
		ledger := a.Ledger.Build(snap, period)
		for unitID, amount := range ledger.Owed {
			owed[unitID] = owed[unitID].Add(amount)
		}
	}

	paid := snap.ConfirmedPaymentsBefore(target)

	arrears := make(map[UnitID]Amount, len(snap.Units))
	for _, u := range snap.Units {
		arrears[u.ID] = owed[u.ID].Sub(paid[u.ID]).FloorZero()
	}
	return arrears
}

// PeriodUnpaid returns, per unit, what remains unpaid of one historical
// period: the period's owed amount minus confirmed payments attributed
// to exactly that period, floored at zero. The penalty calculation
// accrues on these per-period remainders, not on the aggregate balance.
func (a *ArrearsAccumulator) PeriodUnpaid(snap *Snapshot, period BillingPeriod) map[UnitID]Amount {
	ledger := a.Ledger.Build(snap, period)
	paid := snap.ConfirmedPaymentsIn(period)

	unpaid := make(map[UnitID]Amount, len(snap.Units))
	for _, u := range snap.Units {
		unpaid[u.ID] = ledger.Owed[u.ID].Sub(paid[u.ID]).FloorZero()
	}
	return unpaid
}
