package allocation

import (
	"reflect"
	"testing"

	"github.com/google/uuid"

	"example.com/household-finance/internal/models"
)

func activeFund(id uuid.UUID, ruleType models.RuleType, ruleValue int64) models.Fund {
	return models.Fund{
		ID:        id,
		RuleType:  ruleType,
		RuleValue: ruleValue,
		Status:    models.FundStatusActive,
	}
}

// TestPlanScenario проверяет базовый сценарий: 20% + фиксированные 5000.
func TestPlanScenario(t *testing.T) {
	fundA := uuid.New()
	fundB := uuid.New()

	funds := []models.Fund{
		activeFund(fundA, models.RuleTypePercentage, 20),
		activeFund(fundB, models.RuleTypeFixed, 5000),
	}

	got := Plan(100000, funds)
	want := []Planned{
		{FundID: fundA, PlannedCents: 20000},
		{FundID: fundB, PlannedCents: 5000},
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestPlanRounding проверяет округление half-up по каждому фонду отдельно.
func TestPlanRounding(t *testing.T) {
	fund := activeFund(uuid.New(), models.RuleTypePercentage, 33)

	// 101 * 33 / 100 = 33.33 -> 33
	got := Plan(101, []models.Fund{fund})
	if got[0].PlannedCents != 33 {
		t.Fatalf("expected 33, got %d", got[0].PlannedCents)
	}

	// 105 * 33 / 100 = 34.65 -> 35
	got = Plan(105, []models.Fund{fund})
	if got[0].PlannedCents != 35 {
		t.Fatalf("expected 35, got %d", got[0].PlannedCents)
	}

	// ровно .5 округляется вверх: 50 * 33 / 100 = 16.5 -> 17
	got = Plan(50, []models.Fund{fund})
	if got[0].PlannedCents != 17 {
		t.Fatalf("expected 17, got %d", got[0].PlannedCents)
	}
}

// TestPlanFixedIgnoresAmount проверяет, что fixed не зависит от суммы дохода.
func TestPlanFixedIgnoresAmount(t *testing.T) {
	fund := activeFund(uuid.New(), models.RuleTypeFixed, 7500)

	for _, amount := range []int64{0, 1, 100000} {
		got := Plan(amount, []models.Fund{fund})
		if got[0].PlannedCents != 7500 {
			t.Fatalf("amount %d: expected 7500, got %d", amount, got[0].PlannedCents)
		}
	}
}

// TestPlanSkipsInactive проверяет, что неактивные фонды не попадают в план.
func TestPlanSkipsInactive(t *testing.T) {
	active := activeFund(uuid.New(), models.RuleTypePercentage, 10)
	paused := activeFund(uuid.New(), models.RuleTypePercentage, 10)
	paused.Status = models.FundStatusPaused
	completed := activeFund(uuid.New(), models.RuleTypeFixed, 100)
	completed.Status = models.FundStatusCompleted

	got := Plan(1000, []models.Fund{paused, active, completed})
	if len(got) != 1 {
		t.Fatalf("expected 1 planned entry, got %d", len(got))
	}
	if got[0].FundID != active.ID {
		t.Fatalf("expected active fund, got %s", got[0].FundID)
	}
}

// TestPlanUnknownRule проверяет, что нераспознанное правило дает 0 без ошибки.
func TestPlanUnknownRule(t *testing.T) {
	broken := activeFund(uuid.New(), models.RuleType("lottery"), 50)
	empty := activeFund(uuid.New(), "", 50)
	valid := activeFund(uuid.New(), models.RuleTypePercentage, 50)

	got := Plan(1000, []models.Fund{broken, empty, valid})
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].PlannedCents != 0 || got[1].PlannedCents != 0 {
		t.Fatalf("expected 0 for malformed rules, got %d and %d", got[0].PlannedCents, got[1].PlannedCents)
	}
	if got[2].PlannedCents != 500 {
		t.Fatalf("expected 500, got %d", got[2].PlannedCents)
	}
}

// TestPlanPreservesOrder проверяет сохранение порядка входного списка.
func TestPlanPreservesOrder(t *testing.T) {
	funds := make([]models.Fund, 0, 5)
	for i := 0; i < 5; i++ {
		funds = append(funds, activeFund(uuid.New(), models.RuleTypePercentage, int64(i+1)))
	}

	got := Plan(10000, funds)
	for i, p := range got {
		if p.FundID != funds[i].ID {
			t.Fatalf("position %d: expected %s, got %s", i, funds[i].ID, p.FundID)
		}
	}
}

// TestPlanIdempotent проверяет, что повторный вызов дает тот же результат.
func TestPlanIdempotent(t *testing.T) {
	funds := []models.Fund{
		activeFund(uuid.New(), models.RuleTypePercentage, 17),
		activeFund(uuid.New(), models.RuleTypeFixed, 4200),
	}

	first := Plan(98765, funds)
	second := Plan(98765, funds)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results, got %v and %v", first, second)
	}
}

// TestPlanPercentageSums проверяет, что сумма планов отличается от совокупного
// округления не более чем на единицу на фонд.
func TestPlanPercentageSums(t *testing.T) {
	funds := []models.Fund{
		activeFund(uuid.New(), models.RuleTypePercentage, 33),
		activeFund(uuid.New(), models.RuleTypePercentage, 33),
		activeFund(uuid.New(), models.RuleTypePercentage, 34),
	}

	amount := int64(101)
	got := Plan(amount, funds)

	var total int64
	for _, p := range got {
		total += p.PlannedCents
	}

	combined := roundHalfUp(amount*100, 100)
	diff := total - combined
	if diff < 0 {
		diff = -diff
	}
	if diff > int64(len(funds)) {
		t.Fatalf("total %d deviates from combined rounding %d by more than %d", total, combined, len(funds))
	}
}

// TestRemaining проверяет инвариант остатка на бюджет.
func TestRemaining(t *testing.T) {
	distributions := []models.IncomeDistribution{
		{PlannedCents: 20000, IsCompleted: false},
		{PlannedCents: 5000, IsCompleted: false},
	}

	if got := Remaining(100000, distributions); got != 75000 {
		t.Fatalf("expected 75000, got %d", got)
	}

	// Подтверждение первой доли меньшей суммой: план больше не учитывается.
	distributions[0].IsCompleted = true
	distributions[0].ActualCents = 18500

	if got := Remaining(100000, distributions); got != 76500 {
		t.Fatalf("expected 76500, got %d", got)
	}
}

// TestRemainingEmpty проверяет остаток без распределений.
func TestRemainingEmpty(t *testing.T) {
	if got := Remaining(12345, nil); got != 12345 {
		t.Fatalf("expected 12345, got %d", got)
	}
}
