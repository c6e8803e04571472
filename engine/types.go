/*
Package engine computes monthly maintenance-fee statements for homeowner
associations.

PURPOSE:
  Given a point-in-time snapshot of an association's units, recorded
  expenses, recurring fund contributions, payments, and billing rules,
  the engine derives — per unit and per month — the unit's share of every
  expense, its unpaid balance carried from all prior months, and its
  accrued late-payment penalty. The same computation feeds the notice
  board (avizier), its export, and receipt (chitanta) generation, so all
  three surfaces print identical numbers.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A money value in lei, backed by decimal.Decimal
  - Unit: A billable apartment/parking/storage entity
  - Expense: A recorded cost with a distribution mode and billing period
  - RecurringFund: A fixed monthly contribution owed by every unit
  - Payment: A recorded payment attributed to one billing period
  - Snapshot: The read-only input bundle the engine computes over

DESIGN PRINCIPLES:
  1. Purity: the engine reads a snapshot and computes; it never mutates
     shared state, so concurrent calls are safe.
  2. Precision: decimal.Decimal everywhere, no float money.
  3. Determinism: "now" is an explicit asOf parameter, never time.Now().
  4. Totality: degenerate inputs (zero units, zero quota sums, empty
     periods) resolve to zero contributions, never to errors.

SEE ALSO:
  - allocation.go: distribution-mode strategies
  - ledger.go: per-period owed amounts
  - arrears.go: carried balances across prior periods
  - penalty.go: daily late-payment penalty accrual
  - statement.go: the assembled per-unit statement
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Money value in lei (RON), minor-unit precision on output
// =============================================================================

type Amount struct {
	Value decimal.Decimal
}

func NewAmount(value float64) Amount {
	return Amount{Value: decimal.NewFromFloat(value)}
}

func NewAmountFromInt(value int) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value))}
}

func ZeroAmount() Amount {
	return Amount{Value: decimal.Zero}
}

func MustParseAmount(s string) Amount {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroAmount()
	}
	return Amount{Value: d}
}

func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value)} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value)} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s)} }
func (a Amount) Div(s decimal.Decimal) Amount { return Amount{Value: a.Value.Div(s)} }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg()} }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }

// Round2 rounds to cent precision, half away from zero. Printed and
// exported amounts always go through this.
func (a Amount) Round2() Amount { return Amount{Value: a.Value.Round(2)} }

// FloorZero clamps negative values to zero. Arrears and penalties are
// monotonically non-negative.
func (a Amount) FloorZero() Amount {
	if a.Value.IsNegative() {
		return ZeroAmount()
	}
	return a
}

func (a Amount) Float64() float64 {
	f, _ := a.Value.Float64()
	return f
}

func (a Amount) String() string { return a.Value.StringFixed(2) }

// MarshalJSON/UnmarshalJSON delegate to the underlying decimal, so a
// cached statement round-trips without a wrapper object per amount.
func (a Amount) MarshalJSON() ([]byte, error) { return a.Value.MarshalJSON() }

func (a *Amount) UnmarshalJSON(data []byte) error { return a.Value.UnmarshalJSON(data) }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type AssociationID string
type UnitID string
type ExpenseID string
type FundID string
type PaymentID string

// =============================================================================
// UNIT - A billable entity within an association
// =============================================================================

// Unit is an apartment, parking spot, or storage space. QuotaShare is the
// indivisible ownership quota used for proportional allocation; it may be
// zero for units onboarded without quota data. OccupantCount drives
// per-person allocation and may legitimately be zero (vacant unit).
type Unit struct {
	ID            UnitID
	AssociationID AssociationID
	Label         string // e.g. "Ap. 12"
	QuotaShare    decimal.Decimal
	OccupantCount int
}

// =============================================================================
// EXPENSE - A recorded cost for one billing period
// =============================================================================

// DistributionMode selects how an expense is split across units.
type DistributionMode string

const (
	ByQuotaShare    DistributionMode = "by_quota_share"
	ByOccupantCount DistributionMode = "by_occupant_count"
	ByUnitEqual     DistributionMode = "by_unit_equal"
	Manual          DistributionMode = "manual"
	ByConsumption   DistributionMode = "by_consumption"
)

type Expense struct {
	ID            ExpenseID
	AssociationID AssociationID
	Amount        Amount
	Mode          DistributionMode
	Period        BillingPeriod
	Category      string // e.g. "Apă rece", "Energie electrică", "Salubritate"
	InvoiceDate   time.Time
}

// =============================================================================
// RECURRING FUND - Fixed monthly contribution (fond rulment, fond reparații)
// =============================================================================

// RecurringFund adds its MonthlyAmount to every unit's owed amount for
// every period the engine walks. The fund set is treated as constant
// across history; per-period fund versioning is not modeled.
type RecurringFund struct {
	ID            FundID
	AssociationID AssociationID
	Name          string
	MonthlyAmount Amount
}

// =============================================================================
// PAYMENT - Attributed to exactly one billing period
// =============================================================================

type PaymentStatus string

const (
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentPending   PaymentStatus = "pending"
	PaymentRejected  PaymentStatus = "rejected"
)

// Payment settles (part of) one billing period's owed amount. Period is
// the period the payer intends to settle, not the period the money
// arrived in. Only confirmed payments reduce arrears.
type Payment struct {
	ID     PaymentID
	UnitID UnitID
	Amount Amount
	Status PaymentStatus
	Period BillingPeriod
	PaidAt time.Time
}

func (p Payment) IsConfirmed() bool { return p.Status == PaymentConfirmed }

// =============================================================================
// BILLING RULES - Association-level due day and daily penalty rate
// =============================================================================

// BillingRules carries the association's payment terms. A zero-value
// BillingRules means "not configured": statements still assemble, but
// penalty accrual is skipped entirely.
type BillingRules struct {
	// Day of month the statement becomes due, 1-31. Days past the end of
	// a short month clamp to its last day.
	DueDay int

	// Daily penalty as a percentage of the unpaid amount, e.g. 0.02
	// means 0.02%/day.
	DailyPenaltyRatePercent decimal.Decimal
}

// Configured reports whether penalties can be computed at all.
func (r BillingRules) Configured() bool {
	return r.DueDay >= 1 && r.DueDay <= 31 && r.DailyPenaltyRatePercent.IsPositive()
}
