package avizier_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blocadmin/billing-engine/avizier"
	"github.com/blocadmin/billing-engine/engine"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func janSnapshot() *engine.Snapshot {
	jan := engine.NewBillingPeriod(2025, time.January)
	return &engine.Snapshot{
		AssociationID: "asoc-1",
		Units: []engine.Unit{
			{ID: "1", AssociationID: "asoc-1", Label: "Ap. 1", QuotaShare: decimal.NewFromInt(60), OccupantCount: 2},
			{ID: "2", AssociationID: "asoc-1", Label: "Ap. 2", QuotaShare: decimal.NewFromInt(40), OccupantCount: 1},
		},
		Expenses: []engine.Expense{{
			ID:            "e1",
			AssociationID: "asoc-1",
			Amount:        engine.NewAmount(100),
			Mode:          engine.ByQuotaShare,
			Period:        jan,
			Category:      "Curățenie",
		}},
		Funds: []engine.RecurringFund{{
			ID: "f1", AssociationID: "asoc-1", Name: "Fond de reparații", MonthlyAmount: engine.NewAmount(20),
		}},
		Rules: engine.BillingRules{
			DueDay:                  25,
			DailyPenaltyRatePercent: decimal.NewFromFloat(0.02),
		},
	}
}

func buildJanSheet(t *testing.T) avizier.Sheet {
	t.Helper()
	snap := janSnapshot()
	jan := engine.NewBillingPeriod(2025, time.January)
	asOf := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	st := engine.NewAssembler().Assemble(snap, jan, asOf)
	return avizier.BuildSheet(st, snap.Rules)
}

// =============================================================================
// SHEET TESTS
// =============================================================================

func TestBuildSheet_RowsMirrorStatementLines(t *testing.T) {
	sheet := buildJanSheet(t)

	require.Len(t, sheet.Rows, 2)

	row1 := sheet.Rows[0]
	assert.Equal(t, engine.UnitID("1"), row1.UnitID)
	assert.Equal(t, "Ap. 1", row1.UnitLabel)
	assert.True(t, row1.Cell("Curățenie").Equal(engine.NewAmount(60)), "category cell")
	assert.True(t, row1.Funds.Equal(engine.NewAmount(20)), "funds cell")
	assert.True(t, row1.Total.Equal(engine.NewAmount(80)), "total cell")
}

func TestBuildSheet_TotalsRow(t *testing.T) {
	sheet := buildJanSheet(t)

	assert.Equal(t, "Total asociație", sheet.TotalsRow.UnitLabel)
	assert.True(t, sheet.TotalsRow.Cell("Curățenie").Equal(engine.NewAmount(100)), "category total")
	assert.True(t, sheet.TotalsRow.Funds.Equal(engine.NewAmount(40)), "funds total")
	assert.True(t, sheet.TotalsRow.Total.Equal(engine.NewAmount(140)), "grand total")
}

func TestBuildSheet_DueDateFromRules(t *testing.T) {
	sheet := buildJanSheet(t)

	want := time.Date(2025, time.January, 25, 0, 0, 0, 0, time.UTC)
	assert.True(t, sheet.DueDate.Equal(want), "due date from rules")
}

func TestBuildSheet_NoRules_NoDueDate(t *testing.T) {
	snap := janSnapshot()
	snap.Rules = engine.BillingRules{}

	jan := engine.NewBillingPeriod(2025, time.January)
	st := engine.NewAssembler().Assemble(snap, jan, time.Now())
	sheet := avizier.BuildSheet(st, snap.Rules)

	assert.True(t, sheet.DueDate.IsZero(), "no due date without rules")
}

func TestBuildSheet_EmptyStatement(t *testing.T) {
	st := engine.NewAssembler().Assemble(&engine.Snapshot{AssociationID: "asoc-1"},
		engine.NewBillingPeriod(2025, time.January), time.Now())
	sheet := avizier.BuildSheet(st, engine.BillingRules{})

	assert.Empty(t, sheet.Rows)
	assert.True(t, sheet.TotalsRow.Total.Equal(engine.ZeroAmount()), "empty totals")
}

func TestRow_Cell_AbsentCategoryIsZero(t *testing.T) {
	sheet := buildJanSheet(t)

	assert.True(t, sheet.Rows[0].Cell("Lift").Equal(engine.ZeroAmount()), "absent category")
}
