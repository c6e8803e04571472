/*
allocation.go - Distribution-mode strategies (the Allocation Rule Resolver)

PURPOSE:
  Answers "what is this unit's share of this expense?". Each
  DistributionMode maps to an AllocationStrategy; the Resolver holds the
  strategy registry and applies the quota strategy as the fallback for
  unrecognized modes.

THE MODES:
  by_quota_share:    amount × unit.quota / Σ quotas
  by_occupant_count: amount × unit.occupants / Σ occupants
  by_unit_equal:     amount / number of units
  manual:            zero here — amounts entered per unit elsewhere
  by_consumption:    zero here — metered amounts come from a separate
                     metering path; register a custom strategy to plug
                     one in

ZERO DENOMINATORS:
  A zero quota sum, zero occupant sum, or empty unit set yields a zero
  share for every unit. Never an error, never a division by zero.

FALLBACK:
  An unrecognized mode resolves via the quota strategy. Existing data
  contains free-form modes that relied on this, so the fallback is a
  deliberate, tested behavior rather than a hidden else-branch.

SEE ALSO:
  - ledger.go: accumulates shares into per-period owed amounts
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// ALLOCATION STRATEGY - One rule for splitting an expense across units
// =============================================================================

// AllocationStrategy computes a single unit's share of an expense given
// all units of the association. Implementations must be pure and must
// return zero rather than fail on degenerate input.
type AllocationStrategy interface {
	ShareOf(e Expense, u Unit, all []Unit) Amount
}

// =============================================================================
// BUILT-IN STRATEGIES
// =============================================================================

type quotaShareStrategy struct{}

func (quotaShareStrategy) ShareOf(e Expense, u Unit, all []Unit) Amount {
	total := decimal.Zero
	for _, other := range all {
		total = total.Add(other.QuotaShare)
	}
	if total.IsZero() {
		return ZeroAmount()
	}
	return e.Amount.Mul(u.QuotaShare).Div(total)
}

type occupantCountStrategy struct{}

func (occupantCountStrategy) ShareOf(e Expense, u Unit, all []Unit) Amount {
	total := 0
	for _, other := range all {
		total += other.OccupantCount
	}
	if total == 0 {
		return ZeroAmount()
	}
	return e.Amount.
		Mul(decimal.NewFromInt(int64(u.OccupantCount))).
		Div(decimal.NewFromInt(int64(total)))
}

type equalSplitStrategy struct{}

func (equalSplitStrategy) ShareOf(e Expense, u Unit, all []Unit) Amount {
	if len(all) == 0 {
		return ZeroAmount()
	}
	return e.Amount.Div(decimal.NewFromInt(int64(len(all))))
}

// externalEntryStrategy covers modes whose per-unit amounts are produced
// outside this engine (manual entry, meter readings). The engine
// contributes zero; callers with a metering path register a replacement
// via Resolver.Register.
type externalEntryStrategy struct{}

func (externalEntryStrategy) ShareOf(Expense, Unit, []Unit) Amount { return ZeroAmount() }

// =============================================================================
// RESOLVER - Strategy registry with the quota fallback
// =============================================================================

type Resolver struct {
	strategies map[DistributionMode]AllocationStrategy
	fallback   AllocationStrategy
}

// NewResolver returns a resolver with the built-in strategies registered
// and the quota strategy as the fallback for unknown modes.
func NewResolver() *Resolver {
	quota := quotaShareStrategy{}
	return &Resolver{
		strategies: map[DistributionMode]AllocationStrategy{
			ByQuotaShare:    quota,
			ByOccupantCount: occupantCountStrategy{},
			ByUnitEqual:     equalSplitStrategy{},
			Manual:          externalEntryStrategy{},
			ByConsumption:   externalEntryStrategy{},
		},
		fallback: quota,
	}
}

// Register installs or replaces the strategy for a mode. Intended for
// wiring a metering-backed strategy under ByConsumption.
func (r *Resolver) Register(mode DistributionMode, s AllocationStrategy) {
	r.strategies[mode] = s
}

// ShareOf resolves one unit's share of an expense.
func (r *Resolver) ShareOf(e Expense, u Unit, all []Unit) Amount {
	s, ok := r.strategies[e.Mode]
	if !ok {
		s = r.fallback
	}
	return s.ShareOf(e, u, all)
}
