/*
penalty.go - Daily late-payment penalty accrual (the Penalty Calculator)

PURPOSE:
  For each unit with a positive carried balance, accrues a penalty on
  every historical period that is still (partly) unpaid past its due
  date:

    penalty += unpaid × (dailyRatePercent / 100) × daysLate

  summed over all delinquent periods and rounded to cent precision,
  half away from zero.

RULES:
  - A unit with zero arrears has zero penalty, no matter how late any
    individual historical payment was.
  - Unconfigured billing rules (no due day or no positive rate) skip
    penalty accrual entirely: associations without configured terms
    still get complete statements.
  - asOf is injected by the caller. The calculation is idempotent for a
    fixed snapshot and asOf; advancing asOf only ever grows penalties.

SEE ALSO:
  - arrears.go: the per-period unpaid amounts this accrues on
  - period.go: due-date derivation with short-month clamping
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// =============================================================================
// PENALTY CALCULATOR
// =============================================================================

type PenaltyCalculator struct {
	Arrears *ArrearsAccumulator
}

func NewPenaltyCalculator(arrears *ArrearsAccumulator) *PenaltyCalculator {
	return &PenaltyCalculator{Arrears: arrears}
}

// Compute returns each unit's accrued penalty entering the target
// period, evaluated at asOf.
func (c *PenaltyCalculator) Compute(snap *Snapshot, target BillingPeriod, rules BillingRules, asOf time.Time) map[UnitID]Amount {
	penalties := make(map[UnitID]Amount, len(snap.Units))
	for _, u := range snap.Units {
		penalties[u.ID] = ZeroAmount()
	}

	if !rules.Configured() {
		return penalties
	}

	arrears := c.Arrears.Compute(snap, target)
	dailyRate := rules.DailyPenaltyRatePercent.Div(oneHundred)

	for _, period := range snap.ExpensePeriodsBefore(target) {
		daysLate := DaysLate(period.DueDate(rules.DueDay), asOf)
		if daysLate <= 0 {
			continue
		}
		days := decimal.NewFromInt(int64(daysLate))

		unpaid := c.Arrears.PeriodUnpaid(snap, period)
		for _, u := range snap.Units {
			if !arrears[u.ID].IsPositive() || !unpaid[u.ID].IsPositive() {
				continue
			}
			accrued := unpaid[u.ID].Mul(dailyRate).Mul(days)
			penalties[u.ID] = penalties[u.ID].Add(accrued)
		}
	}

	for unitID := range penalties {
		penalties[unitID] = penalties[unitID].Round2()
	}
	return penalties
}
