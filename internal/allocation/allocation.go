// Package allocation содержит чистую логику распределения дохода по фондам:
// вычисление плановых сумм по правилам и производного остатка на бюджет.
package allocation

import (
	"github.com/google/uuid"

	"example.com/household-finance/internal/models"
)

type Planned struct {
	FundID       uuid.UUID
	PlannedCents int64
}

// Plan вычисляет плановое распределение суммы дохода по фондам.
// Участвуют только фонды со статусом active, порядок входного списка сохраняется.
// Правило percentage округляется до ближайшей минимальной единицы (half-up),
// fixed берется как есть. Нераспознанное или пустое правило дает план 0
// без ошибки: битые правила отсекаются на этапе записи фонда.
func Plan(amountCents int64, funds []models.Fund) []Planned {
	planned := make([]Planned, 0, len(funds))

	for _, fund := range funds {
		if fund.Status != models.FundStatusActive {
			continue
		}

		planned = append(planned, Planned{
			FundID:       fund.ID,
			PlannedCents: evaluateRule(amountCents, fund.RuleType, fund.RuleValue),
		})
	}

	return planned
}

// Remaining возвращает нераспределенный остаток дохода: сумма минус фактические
// суммы подтвержденных распределений и плановые суммы неподтвержденных.
func Remaining(amountCents int64, distributions []models.IncomeDistribution) int64 {
	remaining := amountCents

	for _, d := range distributions {
		if d.IsCompleted {
			remaining -= d.ActualCents
		} else {
			remaining -= d.PlannedCents
		}
	}

	return remaining
}

func evaluateRule(amountCents int64, ruleType models.RuleType, ruleValue int64) int64 {
	switch ruleType {
	case models.RuleTypePercentage:
		if ruleValue < 0 {
			return 0
		}
		return roundHalfUp(amountCents*ruleValue, 100)
	case models.RuleTypeFixed:
		if ruleValue < 0 {
			return 0
		}
		return ruleValue
	default:
		return 0
	}
}

// roundHalfUp делит numerator на denominator с округлением half-up.
// Ожидает неотрицательные аргументы и denominator > 0.
func roundHalfUp(numerator, denominator int64) int64 {
	if numerator < 0 {
		return 0
	}

	return (numerator + denominator/2) / denominator
}
