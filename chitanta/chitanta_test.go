package chitanta_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blocadmin/billing-engine/chitanta"
	"github.com/blocadmin/billing-engine/engine"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func assembledStatement() engine.BillingStatement {
	jan := engine.NewBillingPeriod(2025, time.January)
	snap := &engine.Snapshot{
		AssociationID: "asoc-1",
		Units: []engine.Unit{
			{ID: "1", AssociationID: "asoc-1", Label: "Ap. 1", QuotaShare: decimal.NewFromInt(100), OccupantCount: 2},
		},
		Expenses: []engine.Expense{{
			ID:            "e1",
			AssociationID: "asoc-1",
			Amount:        engine.NewAmount(120),
			Mode:          engine.ByQuotaShare,
			Period:        jan,
			Category:      "Întreținere",
		}},
		Funds: []engine.RecurringFund{{
			ID: "f1", AssociationID: "asoc-1", Name: "Fond de rulment", MonthlyAmount: engine.NewAmount(0.5),
		}},
	}
	return engine.NewAssembler().Assemble(snap, jan, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC))
}

// =============================================================================
// RECEIPT TESTS
// =============================================================================

func TestFromStatement_CopiesLineAmounts(t *testing.T) {
	st := assembledStatement()
	issuedAt := time.Date(2025, time.February, 1, 9, 0, 0, 0, time.UTC)

	receipt, err := chitanta.FromStatement(st, "1", "BL", 7, issuedAt)
	require.NoError(t, err)

	assert.Equal(t, "BL", receipt.Series)
	assert.Equal(t, 7, receipt.Number)
	assert.Equal(t, "BL-000007", receipt.Reference())
	assert.Equal(t, engine.UnitID("1"), receipt.UnitID)
	assert.Equal(t, "Ap. 1", receipt.UnitLabel)
	assert.True(t, receipt.Allocation.Equal(engine.NewAmount(120)), "allocation")
	assert.True(t, receipt.Funds.Equal(engine.NewAmount(0.5)), "funds")
	assert.True(t, receipt.Total.Equal(engine.NewAmount(120.5)), "total")
	assert.Equal(t, "o sută douăzeci de lei și 50 de bani", receipt.TotalInWords)
}

func TestFromStatement_UnknownUnit(t *testing.T) {
	st := assembledStatement()

	_, err := chitanta.FromStatement(st, "99", "BL", 1, time.Now())
	assert.ErrorIs(t, err, chitanta.ErrUnitNotInStatement)
}

func TestSequence_HandsOutConsecutiveNumbers(t *testing.T) {
	seq := chitanta.NewSequence("BL", 41)

	series, n := seq.Next()
	assert.Equal(t, "BL", series)
	assert.Equal(t, 41, n)

	_, n = seq.Next()
	assert.Equal(t, 42, n)
}

func TestSequence_StartsAtOneWhenSeededLow(t *testing.T) {
	seq := chitanta.NewSequence("BL", 0)
	_, n := seq.Next()
	assert.Equal(t, 1, n)
}

// =============================================================================
// AMOUNT-IN-WORDS TESTS
// =============================================================================

func TestAmountInWords(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{0, "zero lei"},
		{1, "un leu"},
		{2, "doi lei"},
		{5, "cinci lei"},
		{12, "doisprezece lei"},
		{19, "nouăsprezece lei"},
		{20, "douăzeci de lei"},
		{21, "douăzeci și unu de lei"},
		{35, "treizeci și cinci de lei"},
		{100, "o sută de lei"},
		{105, "o sută cinci lei"},
		{120.5, "o sută douăzeci de lei și 50 de bani"},
		{200, "două sute de lei"},
		{345.07, "trei sute patruzeci și cinci de lei și 7 bani"},
		{1000, "o mie de lei"},
		{2024, "două mii douăzeci și patru de lei"},
		{0.01, "zero lei și 1 ban"},
		{10.19, "zece lei și 19 bani"},
	}

	for _, tc := range cases {
		got := chitanta.AmountInWords(engine.NewAmount(tc.amount))
		assert.Equal(t, tc.want, got, "amount %v", tc.amount)
	}
}
