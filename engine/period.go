package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// BILLING PERIOD - One calendar month of one year
// =============================================================================

// BillingPeriod identifies the month a cost or payment belongs to.
// Everything the engine computes is keyed by period: expenses are
// recorded into one, payments are attributed to one, and arrears walk
// all periods strictly before the target.
type BillingPeriod struct {
	Year  int
	Month time.Month
}

func NewBillingPeriod(year int, month time.Month) BillingPeriod {
	return BillingPeriod{Year: year, Month: month}
}

// PeriodOf returns the billing period containing t.
func PeriodOf(t time.Time) BillingPeriod {
	return BillingPeriod{Year: t.Year(), Month: t.Month()}
}

// Comparison
func (p BillingPeriod) Equal(q BillingPeriod) bool {
	return p.Year == q.Year && p.Month == q.Month
}

func (p BillingPeriod) Before(q BillingPeriod) bool {
	if p.Year != q.Year {
		return p.Year < q.Year
	}
	return p.Month < q.Month
}

func (p BillingPeriod) After(q BillingPeriod) bool { return q.Before(p) }

// Arithmetic
func (p BillingPeriod) Next() BillingPeriod {
	if p.Month == time.December {
		return BillingPeriod{Year: p.Year + 1, Month: time.January}
	}
	return BillingPeriod{Year: p.Year, Month: p.Month + 1}
}

func (p BillingPeriod) Prev() BillingPeriod {
	if p.Month == time.January {
		return BillingPeriod{Year: p.Year - 1, Month: time.December}
	}
	return BillingPeriod{Year: p.Year, Month: p.Month - 1}
}

// Days returns the number of calendar days in the period.
func (p BillingPeriod) Days() int {
	return time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DueDate returns the day the period's statement falls due. A due day
// past the end of a short month clamps to the month's last day; letting
// time.Date normalize it would roll into the next month and shorten the
// late window.
func (p BillingPeriod) DueDate(dueDay int) time.Time {
	day := dueDay
	if last := p.Days(); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(p.Year, p.Month, day, 0, 0, 0, 0, time.UTC)
}

// String formats as "2025-01" for logs, cache keys, and API responses.
func (p BillingPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Valid reports whether the period denotes a real month.
func (p BillingPeriod) Valid() bool {
	return p.Year > 0 && p.Month >= time.January && p.Month <= time.December
}

// =============================================================================
// LATE-DAY ARITHMETIC
// =============================================================================

// DaysLate returns the whole days elapsed since due, zero if asOf is on
// or before the due date.
func DaysLate(due, asOf time.Time) int {
	if !asOf.After(due) {
		return 0
	}
	return int(asOf.Sub(due).Hours() / 24)
}
