/*
ledger.go - Per-period owed amounts (the Period Ledger Builder)

PURPOSE:
  Aggregates one billing period into per-unit owed amounts: every
  expense recorded for the period is split via the Resolver, and every
  recurring fund contributes its monthly amount to every unit, once.

CONTRACT:
  Owed has an entry for EVERY snapshot unit, zero included — "no
  expenses this period" and "nothing recorded at all" are distinguished
  by callers, never here.

SEE ALSO:
  - allocation.go: the per-expense split
  - arrears.go: sums these ledgers across prior periods
*/
package engine

// =============================================================================
// PERIOD LEDGER - What each unit owes for one period
// =============================================================================

type PeriodLedger struct {
	Period BillingPeriod

	// Owed is each unit's total for the period: expense shares plus the
	// recurring-fund contribution. Keyed for every snapshot unit.
	Owed map[UnitID]Amount

	// Breakdown is each unit's expense share per category label,
	// excluding funds. Only categories with a recorded expense appear.
	Breakdown map[UnitID]map[string]Amount

	// CategoryTotals sums the recorded expense amounts per category,
	// for the association-wide header of printed statements.
	CategoryTotals map[string]Amount

	// FundShare is the recurring-fund contribution included in every
	// Owed entry (the sum of all funds' monthly amounts).
	FundShare Amount
}

// =============================================================================
// LEDGER BUILDER
// =============================================================================

type LedgerBuilder struct {
	Resolver *Resolver
}

func NewLedgerBuilder() *LedgerBuilder {
	return &LedgerBuilder{Resolver: NewResolver()}
}

// Build aggregates the snapshot's expenses and funds for one period.
func (b *LedgerBuilder) Build(snap *Snapshot, period BillingPeriod) PeriodLedger {
	ledger := PeriodLedger{
		Period:         period,
		Owed:           make(map[UnitID]Amount, len(snap.Units)),
		Breakdown:      make(map[UnitID]map[string]Amount, len(snap.Units)),
		CategoryTotals: make(map[string]Amount),
		FundShare:      ZeroAmount(),
	}

	for _, u := range snap.Units {
		ledger.Owed[u.ID] = ZeroAmount()
		ledger.Breakdown[u.ID] = make(map[string]Amount)
	}

	for _, e := range snap.ExpensesIn(period) {
		ledger.CategoryTotals[e.Category] = ledger.CategoryTotals[e.Category].Add(e.Amount)
		for _, u := range snap.Units {
			share := b.Resolver.ShareOf(e, u, snap.Units)
			if share.IsZero() {
				continue
			}
			ledger.Owed[u.ID] = ledger.Owed[u.ID].Add(share)
			ledger.Breakdown[u.ID][e.Category] = ledger.Breakdown[u.ID][e.Category].Add(share)
		}
	}

	for _, f := range snap.Funds {
		ledger.FundShare = ledger.FundShare.Add(f.MonthlyAmount)
	}
	if !ledger.FundShare.IsZero() {
		for _, u := range snap.Units {
			ledger.Owed[u.ID] = ledger.Owed[u.ID].Add(ledger.FundShare)
		}
	}

	return ledger
}
