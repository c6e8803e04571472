package engine_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/blocadmin/billing-engine/engine"
)

// =============================================================================
// QUOTA SHARE STRATEGY
// =============================================================================

func TestResolver_QuotaShare_SplitsByQuota(t *testing.T) {
	// GIVEN: Two units holding 60% and 40% of the quota
	// WHEN: Splitting a 100 lei expense by quota share
	// THEN: Shares are 60 and 40

	units := []engine.Unit{unit("1", 60, 2), unit("2", 40, 3)}
	e := expense("e1", period(2025, time.January), 100, engine.ByQuotaShare, "Curățenie")

	r := engine.NewResolver()
	assertAmount(t, r.ShareOf(e, units[0], units), lei(60), "unit 1 share")
	assertAmount(t, r.ShareOf(e, units[1], units), lei(40), "unit 2 share")
}

func TestResolver_QuotaShare_ConservesTotal(t *testing.T) {
	// GIVEN: Three units with quotas that do not divide evenly
	// WHEN: Splitting a 100 lei expense
	// THEN: The shares sum back to the expense within a cent

	units := []engine.Unit{unit("1", 33.33, 1), unit("2", 33.33, 1), unit("3", 33.34, 1)}
	e := expense("e1", period(2025, time.January), 100, engine.ByQuotaShare, "Apă")

	r := engine.NewResolver()
	sum := engine.ZeroAmount()
	for _, u := range units {
		sum = sum.Add(r.ShareOf(e, u, units))
	}

	diff := sum.Sub(e.Amount)
	if diff.IsNegative() {
		diff = diff.Neg()
	}
	if diff.GreaterThan(lei(0.01)) {
		t.Errorf("shares sum to %s, expense is %s", sum, e.Amount)
	}
}

func TestResolver_QuotaShare_ZeroQuotaSum(t *testing.T) {
	// GIVEN: All units with zero quota
	// WHEN: Splitting by quota share
	// THEN: Every share is zero, no division-by-zero panic

	units := []engine.Unit{unit("1", 0, 2), unit("2", 0, 3)}
	e := expense("e1", period(2025, time.January), 100, engine.ByQuotaShare, "Lift")

	r := engine.NewResolver()
	for _, u := range units {
		assertAmount(t, r.ShareOf(e, u, units), engine.ZeroAmount(), "zero-quota share")
	}
}

// =============================================================================
// OCCUPANT COUNT STRATEGY
// =============================================================================

func TestResolver_OccupantCount_SplitsByOccupants(t *testing.T) {
	// GIVEN: Units with 1 and 3 occupants
	// WHEN: Splitting a 100 lei expense by occupant count
	// THEN: Shares are 25 and 75

	units := []engine.Unit{unit("1", 50, 1), unit("2", 50, 3)}
	e := expense("e1", period(2025, time.January), 100, engine.ByOccupantCount, "Apă")

	r := engine.NewResolver()
	assertAmount(t, r.ShareOf(e, units[0], units), lei(25), "unit 1 share")
	assertAmount(t, r.ShareOf(e, units[1], units), lei(75), "unit 2 share")
}

func TestResolver_OccupantCount_VacantBuilding(t *testing.T) {
	// GIVEN: All units vacant (zero occupants)
	// WHEN: Splitting by occupant count
	// THEN: Every share is zero

	units := []engine.Unit{unit("1", 50, 0), unit("2", 50, 0)}
	e := expense("e1", period(2025, time.January), 90, engine.ByOccupantCount, "Apă")

	r := engine.NewResolver()
	for _, u := range units {
		assertAmount(t, r.ShareOf(e, u, units), engine.ZeroAmount(), "vacant share")
	}
}

func TestResolver_OccupantCount_VacantUnitPaysNothing(t *testing.T) {
	// GIVEN: One vacant unit among occupied ones
	// WHEN: Splitting by occupant count
	// THEN: The vacant unit's share is zero, occupied units carry the rest

	units := []engine.Unit{unit("1", 50, 0), unit("2", 30, 2), unit("3", 20, 2)}
	e := expense("e1", period(2025, time.January), 100, engine.ByOccupantCount, "Gunoi")

	r := engine.NewResolver()
	assertAmount(t, r.ShareOf(e, units[0], units), engine.ZeroAmount(), "vacant unit")
	assertAmount(t, r.ShareOf(e, units[1], units), lei(50), "occupied unit 2")
	assertAmount(t, r.ShareOf(e, units[2], units), lei(50), "occupied unit 3")
}

// =============================================================================
// EQUAL SPLIT STRATEGY
// =============================================================================

func TestResolver_UnitEqual_SplitsEvenly(t *testing.T) {
	// GIVEN: Four units of very different quotas
	// WHEN: Splitting a 100 lei expense equally
	// THEN: Each unit owes 25 regardless of quota

	units := []engine.Unit{unit("1", 90, 1), unit("2", 5, 1), unit("3", 3, 1), unit("4", 2, 1)}
	e := expense("e1", period(2025, time.January), 100, engine.ByUnitEqual, "Interfon")

	r := engine.NewResolver()
	for _, u := range units {
		assertAmount(t, r.ShareOf(e, u, units), lei(25), "equal share")
	}
}

func TestResolver_UnitEqual_NoUnits(t *testing.T) {
	// GIVEN: No units at all
	// WHEN: Splitting equally
	// THEN: The share is zero, not a division by zero

	e := expense("e1", period(2025, time.January), 100, engine.ByUnitEqual, "Interfon")

	r := engine.NewResolver()
	assertAmount(t, r.ShareOf(e, unit("ghost", 0, 0), nil), engine.ZeroAmount(), "empty split")
}

// =============================================================================
// EXTERNAL ENTRY MODES AND FALLBACK
// =============================================================================

func TestResolver_ManualAndConsumption_ZeroByDefault(t *testing.T) {
	// GIVEN: Expenses in manual and by_consumption modes
	// WHEN: Resolving shares with no custom strategy registered
	// THEN: The engine contributes zero for every unit

	units := []engine.Unit{unit("1", 60, 2), unit("2", 40, 3)}
	r := engine.NewResolver()

	for _, mode := range []engine.DistributionMode{engine.Manual, engine.ByConsumption} {
		e := expense("e1", period(2025, time.January), 100, mode, "Căldură")
		for _, u := range units {
			assertAmount(t, r.ShareOf(e, u, units), engine.ZeroAmount(), string(mode)+" share")
		}
	}
}

func TestResolver_UnknownMode_FallsBackToQuota(t *testing.T) {
	// GIVEN: An expense with a free-form mode string
	// WHEN: Resolving shares
	// THEN: The quota strategy applies instead of an error or zero

	units := []engine.Unit{unit("1", 75, 2), unit("2", 25, 3)}
	e := expense("e1", period(2025, time.January), 100, "by_surface_area", "Reparații")

	r := engine.NewResolver()
	assertAmount(t, r.ShareOf(e, units[0], units), lei(75), "fallback share 1")
	assertAmount(t, r.ShareOf(e, units[1], units), lei(25), "fallback share 2")
}

// meteredStrategy bills a flat amount to every unit, standing in for a
// metering integration.
type meteredStrategy struct {
	flat decimal.Decimal
}

func (m meteredStrategy) ShareOf(engine.Expense, engine.Unit, []engine.Unit) engine.Amount {
	return engine.Amount{Value: m.flat}
}

func TestResolver_Register_ReplacesConsumptionStrategy(t *testing.T) {
	// GIVEN: A custom strategy registered under by_consumption
	// WHEN: Resolving a consumption expense
	// THEN: The custom strategy's result is used

	units := []engine.Unit{unit("1", 60, 2), unit("2", 40, 3)}
	e := expense("e1", period(2025, time.January), 100, engine.ByConsumption, "Apă rece")

	r := engine.NewResolver()
	r.Register(engine.ByConsumption, meteredStrategy{flat: decimal.NewFromFloat(12.5)})

	for _, u := range units {
		assertAmount(t, r.ShareOf(e, u, units), lei(12.5), "metered share")
	}
}
