package engine_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/blocadmin/billing-engine/engine"
)

func newPenalty() *engine.PenaltyCalculator {
	return engine.NewPenaltyCalculator(newArrears())
}

func rules(dueDay int, dailyRatePercent float64) engine.BillingRules {
	return engine.BillingRules{
		DueDay:                  dueDay,
		DailyPenaltyRatePercent: decimal.NewFromFloat(dailyRatePercent),
	}
}

// =============================================================================
// PENALTY CALCULATOR TESTS
// =============================================================================

func TestPenalty_AccruesDaily(t *testing.T) {
	// GIVEN: 50 lei unpaid from January, due January 25, 0.02%/day
	// WHEN: Evaluating 20 days past the due date
	// THEN: Penalty is 50 × 0.0002 × 20 = 0.20

	jan := period(2025, time.January)
	feb := period(2025, time.February)
	snap := &engine.Snapshot{
		AssociationID: "asoc-1",
		Units:         []engine.Unit{unit("1", 100, 2)},
		Expenses:      []engine.Expense{expense("e1", jan, 50, engine.ByQuotaShare, "Apă")},
	}

	asOf := time.Date(2025, time.February, 14, 0, 0, 0, 0, time.UTC)
	penalties := newPenalty().Compute(snap, feb, rules(25, 0.02), asOf)

	assertAmount(t, penalties["1"], lei(0.20), "20 days late penalty")
}

func TestPenalty_ZeroBeforeDueDate(t *testing.T) {
	// GIVEN: An unpaid January balance
	// WHEN: Evaluating on the due date itself
	// THEN: No penalty has accrued yet

	jan := period(2025, time.January)
	feb := period(2025, time.February)
	snap := &engine.Snapshot{
		AssociationID: "asoc-1",
		Units:         []engine.Unit{unit("1", 100, 2)},
		Expenses:      []engine.Expense{expense("e1", jan, 50, engine.ByQuotaShare, "Apă")},
	}

	asOf := time.Date(2025, time.January, 25, 0, 0, 0, 0, time.UTC)
	penalties := newPenalty().Compute(snap, feb, rules(25, 0.02), asOf)

	assertAmount(t, penalties["1"], engine.ZeroAmount(), "penalty on due date")
}

func TestPenalty_SettledUnitAccruesNothing(t *testing.T) {
	// GIVEN: A unit that paid its January share in full, however late
	// WHEN: Evaluating well past the due date
	// THEN: Zero arrears means zero penalty

	jan := period(2025, time.January)
	feb := period(2025, time.February)
	snap := &engine.Snapshot{
		AssociationID: "asoc-1",
		Units:         []engine.Unit{unit("1", 100, 2)},
		Expenses:      []engine.Expense{expense("e1", jan, 50, engine.ByQuotaShare, "Apă")},
		Payments:      []engine.Payment{confirmedPayment("p1", "1", jan, 50)},
	}

	asOf := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	penalties := newPenalty().Compute(snap, feb, rules(25, 0.02), asOf)

	assertAmount(t, penalties["1"], engine.ZeroAmount(), "settled unit penalty")
}

func TestPenalty_UnconfiguredRulesSkipAccrual(t *testing.T) {
	// GIVEN: An association without billing rules
	// WHEN: Computing penalties on an unpaid balance
	// THEN: Every penalty is zero and nothing errors

	jan := period(2025, time.January)
	feb := period(2025, time.February)
	snap := &engine.Snapshot{
		AssociationID: "asoc-1",
		Units:         []engine.Unit{unit("1", 100, 2)},
		Expenses:      []engine.Expense{expense("e1", jan, 50, engine.ByQuotaShare, "Apă")},
	}

	asOf := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	penalties := newPenalty().Compute(snap, feb, engine.BillingRules{}, asOf)

	assertAmount(t, penalties["1"], engine.ZeroAmount(), "penalty without rules")
}

func TestPenalty_PartialPaymentAccruesOnRemainder(t *testing.T) {
	// GIVEN: 30 of 50 lei paid for January
	// WHEN: Evaluating 10 days past the due date at 0.05%/day
	// THEN: Penalty accrues on the 20 lei remainder: 20 × 0.0005 × 10 = 0.10

	jan := period(2025, time.January)
	feb := period(2025, time.February)
	snap := &engine.Snapshot{
		AssociationID: "asoc-1",
		Units:         []engine.Unit{unit("1", 100, 2)},
		Expenses:      []engine.Expense{expense("e1", jan, 50, engine.ByQuotaShare, "Apă")},
		Payments:      []engine.Payment{confirmedPayment("p1", "1", jan, 30)},
	}

	asOf := time.Date(2025, time.February, 4, 0, 0, 0, 0, time.UTC)
	penalties := newPenalty().Compute(snap, feb, rules(25, 0.05), asOf)

	assertAmount(t, penalties["1"], lei(0.10), "remainder penalty")
}

func TestPenalty_MultipleDelinquentPeriodsSum(t *testing.T) {
	// GIVEN: Unpaid 50 lei in January and 50 lei in February, due day 25
	// WHEN: Evaluating on March 7 at 0.02%/day
	// THEN: January is 41 days late, February 10 days late:
	//       50 × 0.0002 × 41 + 50 × 0.0002 × 10 = 0.41 + 0.10 = 0.51

	jan := period(2025, time.January)
	feb := period(2025, time.February)
	mar := period(2025, time.March)
	snap := &engine.Snapshot{
		AssociationID: "asoc-1",
		Units:         []engine.Unit{unit("1", 100, 2)},
		Expenses: []engine.Expense{
			expense("e1", jan, 50, engine.ByQuotaShare, "Apă"),
			expense("e2", feb, 50, engine.ByQuotaShare, "Apă"),
		},
	}

	asOf := time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC)
	penalties := newPenalty().Compute(snap, mar, rules(25, 0.02), asOf)

	assertAmount(t, penalties["1"], lei(0.51), "two delinquent periods")
}

func TestPenalty_RoundsHalfAwayFromZero(t *testing.T) {
	// GIVEN: Amounts chosen so the raw accrual lands exactly on a half
	//        cent (55 lei × 0.0002 × 5 days = 0.055)
	// WHEN: Computing the penalty
	// THEN: The half cent rounds away from zero, to 0.06

	jan := period(2025, time.January)
	feb := period(2025, time.February)
	snap := &engine.Snapshot{
		AssociationID: "asoc-1",
		Units:         []engine.Unit{unit("1", 100, 2)},
		Expenses:      []engine.Expense{expense("e1", jan, 55, engine.ByQuotaShare, "Apă")},
	}

	asOf := time.Date(2025, time.January, 30, 0, 0, 0, 0, time.UTC)
	penalties := newPenalty().Compute(snap, feb, rules(25, 0.02), asOf)

	assertAmount(t, penalties["1"], lei(0.06), "half-cent rounding")
}
