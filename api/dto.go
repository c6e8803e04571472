/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal billing model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Units:
    UnitDTO, CreateUnitRequest, UpdateUnitRequest

  Expenses:
    ExpenseDTO, CreateExpenseRequest

  Funds:
    FundDTO, CreateFundRequest

  Payments:
    PaymentDTO, CreatePaymentRequest

  Rules:
    RulesDTO

  Statement:
    StatementDTO, StatementLineDTO, StatementTotalsDTO

  Avizier / Receipt:
    AvizierDTO, AvizierRowDTO, ReceiptDTO

AMOUNTS:
  Money fields cross the wire as float64 for client convenience. All
  arithmetic happens on decimals inside the engine; floats appear only
  at the serialization boundary.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/statement.go: BillingStatement source type
*/
package api

import (
	"time"

	"github.com/blocadmin/billing-engine/avizier"
	"github.com/blocadmin/billing-engine/chitanta"
	"github.com/blocadmin/billing-engine/engine"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// UnitDTO represents an apartment unit in API responses.
type UnitDTO struct {
	ID            string  `json:"id"`
	AssociationID string  `json:"association_id"`
	Label         string  `json:"label"`
	QuotaShare    float64 `json:"quota_share"`
	OccupantCount int     `json:"occupant_count"`
}

// CreateUnitRequest is the request to register a unit.
type CreateUnitRequest struct {
	ID            string  `json:"id,omitempty"`
	Label         string  `json:"label"`
	QuotaShare    float64 `json:"quota_share"`
	OccupantCount int     `json:"occupant_count"`
}

// UpdateUnitRequest is the request to change a unit's quota or occupancy.
type UpdateUnitRequest struct {
	Label         *string  `json:"label,omitempty"`
	QuotaShare    *float64 `json:"quota_share,omitempty"`
	OccupantCount *int     `json:"occupant_count,omitempty"`
}

// ExpenseDTO represents a recorded expense.
type ExpenseDTO struct {
	ID            string  `json:"id"`
	AssociationID string  `json:"association_id"`
	Amount        float64 `json:"amount"`
	Mode          string  `json:"mode"`
	Month         int     `json:"month"`
	Year          int     `json:"year"`
	Category      string  `json:"category"`
	InvoiceDate   string  `json:"invoice_date,omitempty"`
}

// CreateExpenseRequest is the request to record an expense.
type CreateExpenseRequest struct {
	ID          string  `json:"id,omitempty"`
	Amount      float64 `json:"amount"`
	Mode        string  `json:"mode"`
	Month       int     `json:"month"`
	Year        int     `json:"year"`
	Category    string  `json:"category"`
	InvoiceDate string  `json:"invoice_date,omitempty"`
}

// FundDTO represents a recurring monthly fund.
type FundDTO struct {
	ID            string  `json:"id"`
	AssociationID string  `json:"association_id"`
	Name          string  `json:"name"`
	MonthlyAmount float64 `json:"monthly_amount"`
}

// CreateFundRequest is the request to configure a recurring fund.
type CreateFundRequest struct {
	ID            string  `json:"id,omitempty"`
	Name          string  `json:"name"`
	MonthlyAmount float64 `json:"monthly_amount"`
}

// PaymentDTO represents a recorded payment.
type PaymentDTO struct {
	ID     string  `json:"id"`
	UnitID string  `json:"unit_id"`
	Amount float64 `json:"amount"`
	Status string  `json:"status"`
	Month  int     `json:"month"`
	Year   int     `json:"year"`
	PaidAt string  `json:"paid_at"`
}

// CreatePaymentRequest is the request to record a payment.
type CreatePaymentRequest struct {
	ID     string  `json:"id,omitempty"`
	UnitID string  `json:"unit_id"`
	Amount float64 `json:"amount"`
	Status string  `json:"status,omitempty"`
	Month  int     `json:"month"`
	Year   int     `json:"year"`
	PaidAt string  `json:"paid_at,omitempty"`
}

// RulesDTO represents the association's billing rules.
type RulesDTO struct {
	DueDay                  int     `json:"due_day"`
	DailyPenaltyRatePercent float64 `json:"daily_penalty_rate_percent"`
	Configured              bool    `json:"configured"`
}

// StatementLineDTO is one unit's row of a statement.
type StatementLineDTO struct {
	UnitID     string             `json:"unit_id"`
	UnitLabel  string             `json:"unit_label"`
	Allocation float64            `json:"allocation"`
	Breakdown  map[string]float64 `json:"breakdown,omitempty"`
	FundShare  float64            `json:"fund_share"`
	Arrears    float64            `json:"arrears"`
	Penalty    float64            `json:"penalty"`
	GrandTotal float64            `json:"grand_total"`
}

// StatementTotalsDTO carries the association-wide sums.
type StatementTotalsDTO struct {
	Allocation float64 `json:"allocation"`
	Funds      float64 `json:"funds"`
	Arrears    float64 `json:"arrears"`
	Penalty    float64 `json:"penalty"`
	Grand      float64 `json:"grand"`
}

// StatementDTO represents the full monthly statement.
type StatementDTO struct {
	AssociationID  string             `json:"association_id"`
	Month          int                `json:"month"`
	Year           int                `json:"year"`
	AsOf           string             `json:"as_of"`
	Categories     []string           `json:"categories"`
	CategoryTotals map[string]float64 `json:"category_totals"`
	Lines          []StatementLineDTO `json:"lines"`
	Totals         StatementTotalsDTO `json:"totals"`
	Cached         bool               `json:"cached,omitempty"`
}

// AvizierRowDTO is one unit's row of the notice-board sheet.
type AvizierRowDTO struct {
	UnitID     string             `json:"unit_id"`
	UnitLabel  string             `json:"unit_label"`
	ByCategory map[string]float64 `json:"by_category,omitempty"`
	Funds      float64            `json:"funds"`
	Arrears    float64            `json:"arrears"`
	Penalty    float64            `json:"penalty"`
	Total      float64            `json:"total"`
}

// AvizierDTO represents the printable notice-board sheet.
type AvizierDTO struct {
	AssociationID string          `json:"association_id"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	AsOf          string          `json:"as_of"`
	DueDate       string          `json:"due_date,omitempty"`
	Categories    []string        `json:"categories"`
	Columns       []string        `json:"columns"`
	Rows          []AvizierRowDTO `json:"rows"`
	TotalsRow     AvizierRowDTO   `json:"totals_row"`
}

// ReceiptDTO represents an issued payment receipt.
type ReceiptDTO struct {
	Series        string  `json:"series"`
	Number        int     `json:"number"`
	Reference     string  `json:"reference"`
	AssociationID string  `json:"association_id"`
	UnitID        string  `json:"unit_id"`
	UnitLabel     string  `json:"unit_label"`
	Month         int     `json:"month"`
	Year          int     `json:"year"`
	IssuedAt      string  `json:"issued_at"`
	Allocation    float64 `json:"allocation"`
	Funds         float64 `json:"funds"`
	Arrears       float64 `json:"arrears"`
	Penalty       float64 `json:"penalty"`
	Total         float64 `json:"total"`
	TotalInWords  string  `json:"total_in_words"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toUnitDTO(u engine.Unit) UnitDTO {
	quota, _ := u.QuotaShare.Float64()
	return UnitDTO{
		ID:            string(u.ID),
		AssociationID: string(u.AssociationID),
		Label:         u.Label,
		QuotaShare:    quota,
		OccupantCount: u.OccupantCount,
	}
}

func toExpenseDTO(e engine.Expense) ExpenseDTO {
	dto := ExpenseDTO{
		ID:            string(e.ID),
		AssociationID: string(e.AssociationID),
		Amount:        e.Amount.Float64(),
		Mode:          string(e.Mode),
		Month:         int(e.Period.Month),
		Year:          e.Period.Year,
		Category:      e.Category,
	}
	if !e.InvoiceDate.IsZero() {
		dto.InvoiceDate = e.InvoiceDate.Format("2006-01-02")
	}
	return dto
}

func toFundDTO(f engine.RecurringFund) FundDTO {
	return FundDTO{
		ID:            string(f.ID),
		AssociationID: string(f.AssociationID),
		Name:          f.Name,
		MonthlyAmount: f.MonthlyAmount.Float64(),
	}
}

func toPaymentDTO(p engine.Payment) PaymentDTO {
	return PaymentDTO{
		ID:     string(p.ID),
		UnitID: string(p.UnitID),
		Amount: p.Amount.Float64(),
		Status: string(p.Status),
		Month:  int(p.Period.Month),
		Year:   p.Period.Year,
		PaidAt: p.PaidAt.Format(time.RFC3339),
	}
}

func toStatementDTO(st engine.BillingStatement) StatementDTO {
	dto := StatementDTO{
		AssociationID:  string(st.AssociationID),
		Month:          int(st.Period.Month),
		Year:           st.Period.Year,
		AsOf:           st.AsOf.Format("2006-01-02"),
		Categories:     st.Categories,
		CategoryTotals: make(map[string]float64, len(st.CategoryTotals)),
		Lines:          make([]StatementLineDTO, len(st.Lines)),
		Totals: StatementTotalsDTO{
			Allocation: st.Totals.Allocation.Round2().Float64(),
			Funds:      st.Totals.Funds.Round2().Float64(),
			Arrears:    st.Totals.Arrears.Round2().Float64(),
			Penalty:    st.Totals.Penalty.Round2().Float64(),
			Grand:      st.Totals.Grand.Round2().Float64(),
		},
	}
	for category, total := range st.CategoryTotals {
		dto.CategoryTotals[category] = total.Round2().Float64()
	}
	for i, line := range st.Lines {
		ldto := StatementLineDTO{
			UnitID:     string(line.UnitID),
			UnitLabel:  line.UnitLabel,
			Allocation: line.Allocation.Round2().Float64(),
			FundShare:  line.FundShare.Round2().Float64(),
			Arrears:    line.Arrears.Round2().Float64(),
			Penalty:    line.Penalty.Round2().Float64(),
			GrandTotal: line.GrandTotal.Round2().Float64(),
		}
		if len(line.Breakdown) > 0 {
			ldto.Breakdown = make(map[string]float64, len(line.Breakdown))
			for category, share := range line.Breakdown {
				ldto.Breakdown[category] = share.Round2().Float64()
			}
		}
		dto.Lines[i] = ldto
	}
	return dto
}

func toAvizierRowDTO(row avizier.Row) AvizierRowDTO {
	dto := AvizierRowDTO{
		UnitID:    string(row.UnitID),
		UnitLabel: row.UnitLabel,
		Funds:     row.Funds.Float64(),
		Arrears:   row.Arrears.Float64(),
		Penalty:   row.Penalty.Float64(),
		Total:     row.Total.Float64(),
	}
	if len(row.ByCategory) > 0 {
		dto.ByCategory = make(map[string]float64, len(row.ByCategory))
		for category, cell := range row.ByCategory {
			dto.ByCategory[category] = cell.Float64()
		}
	}
	return dto
}

func toAvizierDTO(sheet avizier.Sheet) AvizierDTO {
	dto := AvizierDTO{
		AssociationID: string(sheet.AssociationID),
		Month:         int(sheet.Period.Month),
		Year:          sheet.Period.Year,
		AsOf:          sheet.AsOf.Format("2006-01-02"),
		Categories:    sheet.Categories,
		Columns: []string{
			avizier.ColumnFunds,
			avizier.ColumnArrears,
			avizier.ColumnPenalty,
			avizier.ColumnTotal,
		},
		Rows:      make([]AvizierRowDTO, len(sheet.Rows)),
		TotalsRow: toAvizierRowDTO(sheet.TotalsRow),
	}
	if !sheet.DueDate.IsZero() {
		dto.DueDate = sheet.DueDate.Format("2006-01-02")
	}
	for i, row := range sheet.Rows {
		dto.Rows[i] = toAvizierRowDTO(row)
	}
	return dto
}

func toReceiptDTO(rc chitanta.Receipt) ReceiptDTO {
	return ReceiptDTO{
		Series:        rc.Series,
		Number:        rc.Number,
		Reference:     rc.Reference(),
		AssociationID: string(rc.AssociationID),
		UnitID:        string(rc.UnitID),
		UnitLabel:     rc.UnitLabel,
		Month:         int(rc.Period.Month),
		Year:          rc.Period.Year,
		IssuedAt:      rc.IssuedAt.Format(time.RFC3339),
		Allocation:    rc.Allocation.Float64(),
		Funds:         rc.Funds.Float64(),
		Arrears:       rc.Arrears.Float64(),
		Penalty:       rc.Penalty.Float64(),
		Total:         rc.Total.Float64(),
		TotalInWords:  rc.TotalInWords,
	}
}
