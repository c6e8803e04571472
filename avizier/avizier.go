// Package avizier builds the building notice-board table from a billing
// statement. The screen and the spreadsheet export both render this one
// model, so they cannot drift from each other or from the receipts: all
// numbers come from the same engine.BillingStatement.
package avizier

import (
	"time"

	"github.com/blocadmin/billing-engine/engine"
)

// =============================================================================
// SHEET MODEL - One table: a row per unit, a column per expense category
// =============================================================================

// Fixed column labels, in display order after the category columns.
const (
	ColumnFunds   = "Fonduri"
	ColumnArrears = "Restanțe"
	ColumnPenalty = "Penalizări"
	ColumnTotal   = "Total de plată"
)

type Row struct {
	UnitID    engine.UnitID
	UnitLabel string

	// ByCategory holds the unit's share per category column. Categories
	// absent for the unit read as zero.
	ByCategory map[string]engine.Amount

	Funds   engine.Amount
	Arrears engine.Amount
	Penalty engine.Amount
	Total   engine.Amount
}

// Cell returns the row's value for a category column, zero if absent.
func (r Row) Cell(category string) engine.Amount {
	if v, ok := r.ByCategory[category]; ok {
		return v
	}
	return engine.ZeroAmount()
}

type Sheet struct {
	AssociationID engine.AssociationID
	Period        engine.BillingPeriod
	AsOf          time.Time

	// DueDate is the period's payment deadline for the printed footer,
	// zero when billing rules are not configured.
	DueDate time.Time

	// Categories are the expense category columns, sorted.
	Categories []string

	Rows []Row

	// TotalsRow is the association-wide footer row.
	TotalsRow Row
}

// =============================================================================
// SHEET BUILDER
// =============================================================================

// BuildSheet derives the notice-board table from an assembled statement.
// All amounts are rounded to cent precision for display, matching what
// receipts print for the same units.
func BuildSheet(st engine.BillingStatement, rules engine.BillingRules) Sheet {
	sheet := Sheet{
		AssociationID: st.AssociationID,
		Period:        st.Period,
		AsOf:          st.AsOf,
		Categories:    st.Categories,
	}
	if rules.Configured() {
		sheet.DueDate = st.Period.DueDate(rules.DueDay)
	}

	totals := Row{
		UnitLabel:  "Total asociație",
		ByCategory: make(map[string]engine.Amount),
		Funds:      engine.ZeroAmount(),
		Arrears:    engine.ZeroAmount(),
		Penalty:    engine.ZeroAmount(),
		Total:      engine.ZeroAmount(),
	}

	for _, line := range st.Lines {
		row := Row{
			UnitID:     line.UnitID,
			UnitLabel:  line.UnitLabel,
			ByCategory: make(map[string]engine.Amount, len(line.Breakdown)),
			Funds:      line.FundShare.Round2(),
			Arrears:    line.Arrears.Round2(),
			Penalty:    line.Penalty.Round2(),
			Total:      line.GrandTotal.Round2(),
		}
		for category, share := range line.Breakdown {
			row.ByCategory[category] = share.Round2()
		}

		sheet.Rows = append(sheet.Rows, row)

		for category, share := range row.ByCategory {
			totals.ByCategory[category] = totals.ByCategory[category].Add(share)
		}
		totals.Funds = totals.Funds.Add(row.Funds)
		totals.Arrears = totals.Arrears.Add(row.Arrears)
		totals.Penalty = totals.Penalty.Add(row.Penalty)
		totals.Total = totals.Total.Add(row.Total)
	}

	sheet.TotalsRow = totals
	return sheet
}
