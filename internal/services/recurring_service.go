package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// recurringService handles recurring income/expense rule management.
type recurringService struct {
	db              *gorm.DB
	categoryService CategoryServicer
}

// NewRecurringService creates a new RecurringServicer.
func NewRecurringService(db *gorm.DB, categoryService CategoryServicer) RecurringServicer {
	return &recurringService{
		db:              db,
		categoryService: categoryService,
	}
}

// validateRule checks the fields shared by both rule kinds.
func (s *recurringService) validateRule(amount int64, categoryID string, recurrenceDay int, startDate, endDate time.Time) error {
	if amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if recurrenceDay < 1 || recurrenceDay > 31 {
		return apperrors.ErrInvalidRecurrenceDay
	}
	if endDate.Before(startDate) {
		return apperrors.ErrEndBeforeStart
	}
	if _, err := s.categoryService.GetCategoryByID(categoryID); err != nil {
		return err
	}
	return nil
}

// CreateRecurringIncome creates a new recurring income rule.
func (s *recurringService) CreateRecurringIncome(
	description string,
	amount int64,
	categoryID string,
	recurrenceDay int,
	startDate, endDate time.Time,
) (*models.RecurringIncome, error) {
	if err := s.validateRule(amount, categoryID, recurrenceDay, startDate, endDate); err != nil {
		return nil, err
	}

	rule := &models.RecurringIncome{
		Description:   description,
		Amount:        amount,
		CategoryID:    categoryID,
		RecurrenceDay: recurrenceDay,
		StartDate:     startDate,
		EndDate:       endDate,
	}

	if err := s.db.Create(rule).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rule, nil
}

// GetRecurringIncomes returns a paginated list of recurring income rules.
func (s *recurringService) GetRecurringIncomes(page pagination.PageRequest) (*pagination.PageResponse[models.RecurringIncome], error) {
	page.Defaults()

	base := s.db.Model(&models.RecurringIncome{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rules []models.RecurringIncome
	if err := base.Preload("Category").Order("start_date DESC").Scopes(pagination.Paginate(page)).Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(rules, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetRecurringIncomeByID returns a recurring income rule by ID.
func (s *recurringService) GetRecurringIncomeByID(ruleID string) (*models.RecurringIncome, error) {
	var rule models.RecurringIncome
	if err := s.db.Preload("Category").Where("id = ?", ruleID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurringRuleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rule, nil
}

// UpdateRecurringIncome updates a recurring income rule. Any change
// discards the rule's generated transactions and clears the cursor so
// the full history is regenerated under the new parameters.
func (s *recurringService) UpdateRecurringIncome(
	ruleID string,
	description *string,
	amount *int64,
	categoryID *string,
	recurrenceDay *int,
	startDate, endDate *time.Time,
) (*models.RecurringIncome, error) {
	rule, err := s.GetRecurringIncomeByID(ruleID)
	if err != nil {
		return nil, err
	}

	updates, err := s.ruleUpdates(rule.StartDate, rule.EndDate, description, amount, categoryID, recurrenceDay, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return rule, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recurring_income_id = ?", ruleID).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		updates["last_processed_date"] = nil
		return tx.Model(rule).Updates(updates).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	rule.LastProcessedDate = nil
	return rule, nil
}

// DeleteRecurringIncome deletes a rule and every transaction it generated.
func (s *recurringService) DeleteRecurringIncome(ruleID string) error {
	rule, err := s.GetRecurringIncomeByID(ruleID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recurring_income_id = ?", ruleID).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(rule).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// CreateRecurringExpense creates a new recurring expense rule. The end
// date may not precede the contract end date when one is set.
func (s *recurringService) CreateRecurringExpense(
	description string,
	amount int64,
	categoryID string,
	recurrenceDay int,
	startDate, endDate time.Time,
	contractEndDate *time.Time,
) (*models.RecurringExpense, error) {
	if err := s.validateRule(amount, categoryID, recurrenceDay, startDate, endDate); err != nil {
		return nil, err
	}
	if contractEndDate != nil && endDate.Before(*contractEndDate) {
		return nil, apperrors.ErrEndBeforeContractEnd
	}

	rule := &models.RecurringExpense{
		Description:     description,
		Amount:          amount,
		CategoryID:      categoryID,
		RecurrenceDay:   recurrenceDay,
		StartDate:       startDate,
		EndDate:         endDate,
		ContractEndDate: contractEndDate,
	}

	if err := s.db.Create(rule).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rule, nil
}

// GetRecurringExpenses returns a paginated list of recurring expense rules.
func (s *recurringService) GetRecurringExpenses(page pagination.PageRequest) (*pagination.PageResponse[models.RecurringExpense], error) {
	page.Defaults()

	base := s.db.Model(&models.RecurringExpense{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rules []models.RecurringExpense
	if err := base.Preload("Category").Order("start_date DESC").Scopes(pagination.Paginate(page)).Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(rules, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetRecurringExpenseByID returns a recurring expense rule by ID.
func (s *recurringService) GetRecurringExpenseByID(ruleID string) (*models.RecurringExpense, error) {
	var rule models.RecurringExpense
	if err := s.db.Preload("Category").Where("id = ?", ruleID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurringRuleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rule, nil
}

// UpdateRecurringExpense updates a recurring expense rule with the same
// regeneration semantics as UpdateRecurringIncome.
func (s *recurringService) UpdateRecurringExpense(
	ruleID string,
	description *string,
	amount *int64,
	categoryID *string,
	recurrenceDay *int,
	startDate, endDate, contractEndDate *time.Time,
) (*models.RecurringExpense, error) {
	rule, err := s.GetRecurringExpenseByID(ruleID)
	if err != nil {
		return nil, err
	}

	updates, err := s.ruleUpdates(rule.StartDate, rule.EndDate, description, amount, categoryID, recurrenceDay, startDate, endDate)
	if err != nil {
		return nil, err
	}

	effectiveEnd := rule.EndDate
	if endDate != nil {
		effectiveEnd = *endDate
	}
	effectiveContract := rule.ContractEndDate
	if contractEndDate != nil {
		effectiveContract = contractEndDate
		updates["contract_end_date"] = contractEndDate
	}
	if effectiveContract != nil && effectiveEnd.Before(*effectiveContract) {
		return nil, apperrors.ErrEndBeforeContractEnd
	}

	if len(updates) == 0 {
		return rule, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recurring_expense_id = ?", ruleID).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		updates["last_processed_date"] = nil
		return tx.Model(rule).Updates(updates).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	rule.LastProcessedDate = nil
	return rule, nil
}

// DeleteRecurringExpense deletes a rule and every transaction it generated.
func (s *recurringService) DeleteRecurringExpense(ruleID string) error {
	rule, err := s.GetRecurringExpenseByID(ruleID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recurring_expense_id = ?", ruleID).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(rule).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ruleUpdates validates the provided optional fields against the current
// rule dates and builds the update map shared by both rule kinds.
func (s *recurringService) ruleUpdates(
	currentStart, currentEnd time.Time,
	description *string,
	amount *int64,
	categoryID *string,
	recurrenceDay *int,
	startDate, endDate *time.Time,
) (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	if description != nil {
		updates["description"] = *description
	}
	if amount != nil {
		if *amount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = *amount
	}
	if categoryID != nil {
		if _, err := s.categoryService.GetCategoryByID(*categoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *categoryID
	}
	if recurrenceDay != nil {
		if *recurrenceDay < 1 || *recurrenceDay > 31 {
			return nil, apperrors.ErrInvalidRecurrenceDay
		}
		updates["recurrence_day"] = *recurrenceDay
	}

	effectiveStart := currentStart
	if startDate != nil {
		effectiveStart = *startDate
		updates["start_date"] = *startDate
	}
	effectiveEnd := currentEnd
	if endDate != nil {
		effectiveEnd = *endDate
		updates["end_date"] = *endDate
	}
	if effectiveEnd.Before(effectiveStart) {
		return nil, apperrors.ErrEndBeforeStart
	}

	return updates, nil
}
