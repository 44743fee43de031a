package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// budgetRuleService handles budget rule management.
type budgetRuleService struct {
	db *gorm.DB
}

// NewBudgetRuleService creates a new BudgetRuleServicer.
func NewBudgetRuleService(db *gorm.DB) BudgetRuleServicer {
	return &budgetRuleService{db: db}
}

// CreateBudgetRule creates a new budget rule.
func (s *budgetRuleService) CreateBudgetRule(
	name string,
	startDate time.Time,
	endDate *time.Time,
	needsRatio, wantsRatio, savingsRatio float64,
) (*models.BudgetRule, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget rule name is required")
	}
	if endDate != nil && endDate.Before(startDate) {
		return nil, apperrors.ErrEndBeforeStart
	}

	rule := &models.BudgetRule{
		Name:         name,
		StartDate:    startDate,
		EndDate:      endDate,
		NeedsRatio:   needsRatio,
		WantsRatio:   wantsRatio,
		SavingsRatio: savingsRatio,
	}

	if err := s.db.Create(rule).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rule, nil
}

// GetBudgetRules returns a paginated list of budget rules, newest first.
func (s *budgetRuleService) GetBudgetRules(page pagination.PageRequest) (*pagination.PageResponse[models.BudgetRule], error) {
	page.Defaults()

	base := s.db.Model(&models.BudgetRule{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rules []models.BudgetRule
	if err := base.Order("start_date DESC").Scopes(pagination.Paginate(page)).Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(rules, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetRuleByID returns a budget rule by ID.
func (s *budgetRuleService) GetBudgetRuleByID(ruleID string) (*models.BudgetRule, error) {
	var rule models.BudgetRule
	if err := s.db.Where("id = ?", ruleID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetRuleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rule, nil
}

// UpdateBudgetRule updates an existing budget rule's fields.
func (s *budgetRuleService) UpdateBudgetRule(
	ruleID string,
	name *string,
	startDate, endDate *time.Time,
	needsRatio, wantsRatio, savingsRatio *float64,
) (*models.BudgetRule, error) {
	rule, err := s.GetBudgetRuleByID(ruleID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != nil {
		updates["name"] = *name
	}
	effectiveStart := rule.StartDate
	if startDate != nil {
		effectiveStart = *startDate
		updates["start_date"] = *startDate
	}
	if endDate != nil {
		if endDate.Before(effectiveStart) {
			return nil, apperrors.ErrEndBeforeStart
		}
		updates["end_date"] = endDate
	}
	if needsRatio != nil {
		updates["needs_ratio"] = *needsRatio
	}
	if wantsRatio != nil {
		updates["wants_ratio"] = *wantsRatio
	}
	if savingsRatio != nil {
		updates["savings_ratio"] = *savingsRatio
	}

	if len(updates) > 0 {
		if err := s.db.Model(rule).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return rule, nil
}

// DeleteBudgetRule soft-deletes a budget rule.
func (s *budgetRuleService) DeleteBudgetRule(ruleID string) error {
	rule, err := s.GetBudgetRuleByID(ruleID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(rule).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
