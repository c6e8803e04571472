// Package chitanta builds per-unit payment receipts (chitanțe) from a
// billing statement. The receipt reuses the statement's numbers as-is;
// it never recomputes anything, which keeps receipts consistent with
// the notice board built from the same statement.
package chitanta

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blocadmin/billing-engine/engine"
)

// ErrUnitNotInStatement is returned when a receipt is requested for a
// unit the statement has no line for.
var ErrUnitNotInStatement = errors.New("unit not in statement")

// =============================================================================
// RECEIPT - One unit's printable payment summary
// =============================================================================

type Receipt struct {
	Series string
	Number int

	AssociationID engine.AssociationID
	UnitID        engine.UnitID
	UnitLabel     string
	Period        engine.BillingPeriod
	IssuedAt      time.Time

	// The statement components, cent-rounded for print.
	Allocation engine.Amount
	Funds      engine.Amount
	Arrears    engine.Amount
	Penalty    engine.Amount
	Total      engine.Amount

	// TotalInWords is the amount written out in Romanian, required on
	// printed receipts (e.g. "o sută douăzeci de lei și 50 de bani").
	TotalInWords string
}

// Reference returns the printed receipt identifier, e.g. "AB-000123".
func (r Receipt) Reference() string {
	return fmt.Sprintf("%s-%06d", r.Series, r.Number)
}

// FromStatement builds the receipt for one unit of an assembled
// statement.
func FromStatement(st engine.BillingStatement, unitID engine.UnitID, series string, number int, issuedAt time.Time) (Receipt, error) {
	line := st.Line(unitID)
	if line == nil {
		return Receipt{}, fmt.Errorf("%w: %s", ErrUnitNotInStatement, unitID)
	}

	total := line.GrandTotal.Round2()
	return Receipt{
		Series:        series,
		Number:        number,
		AssociationID: st.AssociationID,
		UnitID:        line.UnitID,
		UnitLabel:     line.UnitLabel,
		Period:        st.Period,
		IssuedAt:      issuedAt,
		Allocation:    line.Allocation.Round2(),
		Funds:         line.FundShare.Round2(),
		Arrears:       line.Arrears.Round2(),
		Penalty:       line.Penalty.Round2(),
		Total:         total,
		TotalInWords:  AmountInWords(total),
	}, nil
}

// =============================================================================
// SEQUENCE - Receipt numbering within a series
// =============================================================================

// Sequence hands out consecutive receipt numbers for one series.
// Persisting the high-water mark is the caller's concern.
type Sequence struct {
	mu     sync.Mutex
	Series string
	next   int
}

// NewSequence starts a series at the given next number.
func NewSequence(series string, next int) *Sequence {
	if next < 1 {
		next = 1
	}
	return &Sequence{Series: series, next: next}
}

// Next returns the series and the next unused number.
func (s *Sequence) Next() (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.next
	s.next++
	return s.Series, n
}
