package engine_test

import (
	"testing"
	"time"

	"github.com/blocadmin/billing-engine/engine"
)

// =============================================================================
// PERIOD LEDGER TESTS
// =============================================================================

func TestLedgerBuilder_ExpensesAndFunds(t *testing.T) {
	// GIVEN: Two 50/50 units, a 100 lei quota expense, and a 25 lei
	//        monthly fund
	// WHEN: Building the January ledger
	// THEN: Each unit owes 50 + 25, with the fund reported separately

	jan := period(2025, time.January)
	snap := &engine.Snapshot{
		AssociationID: "asoc-1",
		Units:         []engine.Unit{unit("1", 50, 2), unit("2", 50, 3)},
		Expenses:      []engine.Expense{expense("e1", jan, 100, engine.ByQuotaShare, "Curățenie")},
		Funds: []engine.RecurringFund{{
			ID:            "f1",
			AssociationID: "asoc-1",
			Name:          "Fond de reparații",
			MonthlyAmount: lei(25),
		}},
	}

	ledger := engine.NewLedgerBuilder().Build(snap, jan)

	assertAmount(t, ledger.Owed["1"], lei(75), "unit 1 owed")
	assertAmount(t, ledger.Owed["2"], lei(75), "unit 2 owed")
	assertAmount(t, ledger.FundShare, lei(25), "fund share")
	assertAmount(t, ledger.Breakdown["1"]["Curățenie"], lei(50), "unit 1 breakdown")
	assertAmount(t, ledger.CategoryTotals["Curățenie"], lei(100), "category total")
}

func TestLedgerBuilder_EmptyPeriod_KeysEveryUnit(t *testing.T) {
	// GIVEN: Units but no expenses or funds in the period
	// WHEN: Building the ledger
	// THEN: Every unit has an explicit zero entry

	jan := period(2025, time.January)
	snap := &engine.Snapshot{
		AssociationID: "asoc-1",
		Units:         []engine.Unit{unit("1", 50, 2), unit("2", 50, 3)},
	}

	ledger := engine.NewLedgerBuilder().Build(snap, jan)

	if len(ledger.Owed) != 2 {
		t.Fatalf("expected 2 owed entries, got %d", len(ledger.Owed))
	}
	for id, owed := range ledger.Owed {
		assertAmount(t, owed, engine.ZeroAmount(), "owed for unit "+string(id))
	}
}

func TestLedgerBuilder_IgnoresOtherPeriods(t *testing.T) {
	// GIVEN: Expenses recorded for January and February
	// WHEN: Building the January ledger
	// THEN: Only January's expense contributes

	jan := period(2025, time.January)
	feb := period(2025, time.February)
	snap := &engine.Snapshot{
		AssociationID: "asoc-1",
		Units:         []engine.Unit{unit("1", 100, 2)},
		Expenses: []engine.Expense{
			expense("e1", jan, 80, engine.ByQuotaShare, "Apă"),
			expense("e2", feb, 999, engine.ByQuotaShare, "Apă"),
		},
	}

	ledger := engine.NewLedgerBuilder().Build(snap, jan)
	assertAmount(t, ledger.Owed["1"], lei(80), "january owed")
}

func TestLedgerBuilder_MultipleFundsAccumulate(t *testing.T) {
	// GIVEN: A repairs fund and a rolling fund
	// WHEN: Building any period's ledger
	// THEN: Both monthly amounts land on every unit

	jan := period(2025, time.January)
	snap := &engine.Snapshot{
		AssociationID: "asoc-1",
		Units:         []engine.Unit{unit("1", 60, 2), unit("2", 40, 1)},
		Funds: []engine.RecurringFund{
			{ID: "f1", AssociationID: "asoc-1", Name: "Fond de reparații", MonthlyAmount: lei(20)},
			{ID: "f2", AssociationID: "asoc-1", Name: "Fond de rulment", MonthlyAmount: lei(10)},
		},
	}

	ledger := engine.NewLedgerBuilder().Build(snap, jan)

	assertAmount(t, ledger.FundShare, lei(30), "combined fund share")
	assertAmount(t, ledger.Owed["1"], lei(30), "unit 1 owed")
	assertAmount(t, ledger.Owed["2"], lei(30), "unit 2 owed")
}

func TestLedgerBuilder_MixedModesInOnePeriod(t *testing.T) {
	// GIVEN: A quota expense and an equal-split expense in the same period
	// WHEN: Building the ledger
	// THEN: Each expense is split by its own mode and the results add up

	jan := period(2025, time.January)
	snap := &engine.Snapshot{
		AssociationID: "asoc-1",
		Units:         []engine.Unit{unit("1", 80, 2), unit("2", 20, 1)},
		Expenses: []engine.Expense{
			expense("e1", jan, 100, engine.ByQuotaShare, "Reparații"),
			expense("e2", jan, 50, engine.ByUnitEqual, "Interfon"),
		},
	}

	ledger := engine.NewLedgerBuilder().Build(snap, jan)

	assertAmount(t, ledger.Owed["1"], lei(105), "unit 1 owed")
	assertAmount(t, ledger.Owed["2"], lei(45), "unit 2 owed")
	assertAmount(t, ledger.Breakdown["1"]["Reparații"], lei(80), "unit 1 repairs")
	assertAmount(t, ledger.Breakdown["1"]["Interfon"], lei(25), "unit 1 intercom")
}
