/*
statement.go - The assembled monthly statement (the Statement Assembler)

PURPOSE:
  Combines the target period's allocation, the carried arrears, the
  accrued penalties, and the recurring-fund share into one
  BillingStatement. The avizier screen, the avizier export, and receipt
  generation all consume this single output, which is what guarantees
  the three surfaces print identical totals.

FAILURE SEMANTICS:
  - Zero units: an empty statement, not an error.
  - No expenses for the target period: a statement with zero current
    allocation but real (possibly nonzero) arrears and penalties, so
    callers can distinguish "nothing billed yet" from "billed, all
    zero".

DETERMINISM:
  Lines are sorted by unit ID and categories lexicographically, so two
  assemblies over the same snapshot and asOf are byte-identical when
  serialized.
*/
package engine

import (
	"sort"
	"time"
)

// =============================================================================
// BILLING STATEMENT - Output consumed by avizier and receipt surfaces
// =============================================================================

// StatementLine is one unit's row of the statement.
type StatementLine struct {
	UnitID    UnitID
	UnitLabel string

	// Allocation is the unit's share of the target period's expenses.
	Allocation Amount

	// Breakdown splits Allocation by expense category.
	Breakdown map[string]Amount

	// FundShare is the unit's recurring-fund contribution this period.
	FundShare Amount

	// Arrears is the unpaid balance carried from all prior periods.
	Arrears Amount

	// Penalty is the late-payment penalty accrued on those balances.
	Penalty Amount

	// GrandTotal = Allocation + FundShare + Arrears + Penalty.
	GrandTotal Amount
}

// StatementTotals are the association-wide sums across all lines.
type StatementTotals struct {
	Allocation Amount
	Funds      Amount
	Arrears    Amount
	Penalty    Amount
	Grand      Amount
}

type BillingStatement struct {
	AssociationID AssociationID
	Period        BillingPeriod
	AsOf          time.Time

	// Lines, sorted by unit ID. Empty when the association has no units.
	Lines []StatementLine

	// Categories is the distinct, sorted set of expense category labels
	// seen in the target period.
	Categories []string

	// CategoryTotals sums recorded expense amounts per category.
	CategoryTotals map[string]Amount

	Totals StatementTotals
}

// Line returns the statement line for a unit, or nil.
func (s *BillingStatement) Line(unitID UnitID) *StatementLine {
	for i := range s.Lines {
		if s.Lines[i].UnitID == unitID {
			return &s.Lines[i]
		}
	}
	return nil
}

// =============================================================================
// ASSEMBLER
// =============================================================================

type Assembler struct {
	Ledger  *LedgerBuilder
	Arrears *ArrearsAccumulator
	Penalty *PenaltyCalculator
}

// NewAssembler wires the full computation chain over one shared
// Resolver, so custom strategies registered on it apply everywhere.
func NewAssembler() *Assembler {
	ledger := NewLedgerBuilder()
	arrears := NewArrearsAccumulator(ledger)
	return &Assembler{
		Ledger:  ledger,
		Arrears: arrears,
		Penalty: NewPenaltyCalculator(arrears),
	}
}

// Assemble produces the statement for one association and period,
// evaluated at asOf.
func (a *Assembler) Assemble(snap *Snapshot, period BillingPeriod, asOf time.Time) BillingStatement {
	st := BillingStatement{
		AssociationID:  snap.AssociationID,
		Period:         period,
		AsOf:           asOf,
		CategoryTotals: make(map[string]Amount),
		Totals: StatementTotals{
			Allocation: ZeroAmount(),
			Funds:      ZeroAmount(),
			Arrears:    ZeroAmount(),
			Penalty:    ZeroAmount(),
			Grand:      ZeroAmount(),
		},
	}

	if len(snap.Units) == 0 {
		return st
	}

	ledger := a.Ledger.Build(snap, period)
	arrears := a.Arrears.Compute(snap, period)
	penalties := a.Penalty.Compute(snap, period, snap.Rules, asOf)

	for category, total := range ledger.CategoryTotals {
		st.Categories = append(st.Categories, category)
		st.CategoryTotals[category] = total
	}
	sort.Strings(st.Categories)

	units := make([]Unit, len(snap.Units))
	copy(units, snap.Units)
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })

	for _, u := range units {
		allocation := ledger.Owed[u.ID].Sub(ledger.FundShare)
		line := StatementLine{
			UnitID:     u.ID,
			UnitLabel:  u.Label,
			Allocation: allocation,
			Breakdown:  ledger.Breakdown[u.ID],
			FundShare:  ledger.FundShare,
			Arrears:    arrears[u.ID],
			Penalty:    penalties[u.ID],
		}
		line.GrandTotal = line.Allocation.
			Add(line.FundShare).
			Add(line.Arrears).
			Add(line.Penalty)

		st.Lines = append(st.Lines, line)

		st.Totals.Allocation = st.Totals.Allocation.Add(line.Allocation)
		st.Totals.Funds = st.Totals.Funds.Add(line.FundShare)
		st.Totals.Arrears = st.Totals.Arrears.Add(line.Arrears)
		st.Totals.Penalty = st.Totals.Penalty.Add(line.Penalty)
		st.Totals.Grand = st.Totals.Grand.Add(line.GrandTotal)
	}

	return st
}
