package services

import (
	"math"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// Period selects the reporting window: a calendar month, or a whole
// calendar year when Month is zero.
type Period struct {
	Year  int
	Month time.Month
}

// Bounds returns the inclusive start and end of the period.
func (p Period) Bounds(loc *time.Location) (start, end time.Time) {
	if p.Month == 0 {
		start = time.Date(p.Year, time.January, 1, 0, 0, 0, 0, loc)
		end = time.Date(p.Year, time.December, 31, 23, 59, 59, 999999999, loc)
		return start, end
	}
	start = time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, loc)
	last := start.AddDate(0, 1, -1)
	end = time.Date(last.Year(), last.Month(), last.Day(), 23, 59, 59, 999999999, loc)
	return start, end
}

// Allocation reports actual versus target spending for one budget bucket.
type Allocation struct {
	Actual  int64   `json:"actual"`
	Target  int64   `json:"target"`
	Percent float64 `json:"percent"`
}

// SpendingGauge reports how much of the period's income was consumed by
// non-savings spending. When spending exceeds income the gauge switches
// to the surplus state and reports the excess funded beyond income.
type SpendingGauge struct {
	SpentPercent  float64 `json:"spent_percent"`
	Surplus       bool    `json:"surplus"`
	SurplusAmount int64   `json:"surplus_amount"`
}

// PeriodSummary holds the period-scoped totals. Spending and
// SavingsContribution are reported as positive magnitudes.
type PeriodSummary struct {
	Income              int64 `json:"income"`
	Spending            int64 `json:"spending"`
	SavingsContribution int64 `json:"savings_contribution"`
}

// DashboardSnapshot is the full reporting output for one period.
// Balance and SavingsPot are lifetime values as of the period's end;
// Summary and the allocations are scoped to the period itself.
type DashboardSnapshot struct {
	Balance    int64             `json:"balance"`
	SavingsPot int64             `json:"savings_pot"`
	Summary    PeriodSummary     `json:"summary"`
	Needs      Allocation        `json:"needs"`
	Wants      Allocation        `json:"wants"`
	Savings    Allocation        `json:"savings"`
	Gauge      SpendingGauge     `json:"gauge"`
	Rule       models.BudgetRule `json:"rule"`
}

// ComputeDashboard aggregates the full transaction set into a dashboard
// snapshot in a single pass. Transactions whose category is unknown
// still count toward the lifetime balance but are excluded from the
// category-typed aggregates.
func ComputeDashboard(
	transactions []models.Transaction,
	budgetRules []models.BudgetRule,
	categories []models.Category,
	period Period,
) DashboardSnapshot {
	start, end := period.Bounds(time.UTC)

	typeByCategory := make(map[string]models.CategoryType, len(categories))
	for _, c := range categories {
		typeByCategory[c.ID] = c.Type
	}

	var snap DashboardSnapshot
	for _, tx := range transactions {
		if tx.Date.After(end) {
			continue
		}

		// Lifetime values: everything dated on or before the period end.
		snap.Balance += tx.Amount
		catType, known := typeByCategory[tx.CategoryID]
		if known && catType == models.CategoryTypeSavings {
			snap.SavingsPot += -tx.Amount
		}

		// Period-scoped aggregates.
		if tx.Date.Before(start) || !known {
			continue
		}
		switch {
		case tx.Type == models.TransactionTypeIncome && catType != models.CategoryTypeSavings:
			snap.Summary.Income += tx.Amount
		case tx.Type == models.TransactionTypeExpense && catType == models.CategoryTypeSavings:
			snap.Summary.SavingsContribution += -tx.Amount
		case tx.Type == models.TransactionTypeExpense:
			snap.Summary.Spending += -tx.Amount
			if catType == models.CategoryTypeNeeds {
				snap.Needs.Actual += -tx.Amount
			} else if catType == models.CategoryTypeWants {
				snap.Wants.Actual += -tx.Amount
			}
		}
	}
	snap.Savings.Actual = snap.Summary.SavingsContribution

	rule := ResolveBudgetRule(budgetRules, start)
	snap.Rule = rule
	fillAllocation(&snap.Needs, snap.Summary.Income, rule.NeedsRatio)
	fillAllocation(&snap.Wants, snap.Summary.Income, rule.WantsRatio)
	fillAllocation(&snap.Savings, snap.Summary.Income, rule.SavingsRatio)

	if snap.Summary.Income > 0 {
		snap.Gauge.SpentPercent = float64(snap.Summary.Spending) / float64(snap.Summary.Income) * 100
	}
	if snap.Summary.Spending > snap.Summary.Income {
		snap.Gauge.Surplus = true
		snap.Gauge.SurplusAmount = snap.Summary.Spending - snap.Summary.Income
	}

	return snap
}

// fillAllocation computes the target and percent for one bucket. A zero
// target yields a zero percent rather than a division by zero.
func fillAllocation(a *Allocation, income int64, ratio float64) {
	a.Target = int64(math.Round(float64(income) * ratio))
	if a.Target != 0 {
		a.Percent = float64(a.Actual) / float64(a.Target) * 100
	}
}

// dashboardService loads the inputs for ComputeDashboard from storage.
type dashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB) DashboardServicer {
	return &dashboardService{db: db}
}

// GetDashboard loads all transactions, budget rules, and categories and
// computes the snapshot for the requested period.
func (s *dashboardService) GetDashboard(period Period) (*DashboardSnapshot, error) {
	var transactions []models.Transaction
	if err := s.db.Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rules []models.BudgetRule
	if err := s.db.Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := s.db.Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	snap := ComputeDashboard(transactions, rules, categories, period)
	return &snap, nil
}
