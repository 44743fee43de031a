package services

import (
	"time"

	"fintrack/internal/models"
)

// FallbackBudgetRule returns the default 50/30/20 split used when no
// stored rule covers a period.
func FallbackBudgetRule() models.BudgetRule {
	return models.BudgetRule{
		Name:         "Fallback Rule",
		NeedsRatio:   0.50,
		WantsRatio:   0.30,
		SavingsRatio: 0.20,
	}
}

// ResolveBudgetRule selects the single rule governing a period. A rule
// applies when its start date is on or before periodStart and its end
// date (when set) is on or after it. Among applicable rules the latest
// start date wins; rules sharing a start date tie-break on the greater
// ID, which for UUIDv7 keys means the most recently created rule. With
// no applicable rule the fallback 50/30/20 rule is returned.
func ResolveBudgetRule(rules []models.BudgetRule, periodStart time.Time) models.BudgetRule {
	var best *models.BudgetRule
	for i := range rules {
		r := &rules[i]
		if r.StartDate.After(periodStart) {
			continue
		}
		if r.EndDate != nil && periodStart.After(*r.EndDate) {
			continue
		}
		if best == nil ||
			r.StartDate.After(best.StartDate) ||
			(r.StartDate.Equal(best.StartDate) && r.ID > best.ID) {
			best = r
		}
	}
	if best == nil {
		return FallbackBudgetRule()
	}
	return *best
}
