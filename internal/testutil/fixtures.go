package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date builds a midnight UTC date, the form all fixture dates use.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		Name: fmt.Sprintf("Test Category %d", nextID()),
		Type: categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a transaction with the given signed amount.
func CreateTestTransaction(t *testing.T, db *gorm.DB, categoryID string, txType models.TransactionType, amount int64, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		Description: fmt.Sprintf("Test Transaction %d", nextID()),
		Amount:      amount,
		Type:        txType,
		CategoryID:  categoryID,
		Date:        date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestRecurringIncome creates a recurring income rule.
func CreateTestRecurringIncome(t *testing.T, db *gorm.DB, categoryID string, recurrenceDay int, startDate, endDate time.Time) *models.RecurringIncome {
	t.Helper()

	rule := &models.RecurringIncome{
		Description:   fmt.Sprintf("Test Recurring Income %d", nextID()),
		Amount:        350000, // $3500.00
		CategoryID:    categoryID,
		RecurrenceDay: recurrenceDay,
		StartDate:     startDate,
		EndDate:       endDate,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test recurring income: %v", err)
	}
	return rule
}

// CreateTestRecurringExpense creates a recurring expense rule.
func CreateTestRecurringExpense(t *testing.T, db *gorm.DB, categoryID string, recurrenceDay int, startDate, endDate time.Time) *models.RecurringExpense {
	t.Helper()

	rule := &models.RecurringExpense{
		Description:   fmt.Sprintf("Test Recurring Expense %d", nextID()),
		Amount:        150000, // $1500.00
		CategoryID:    categoryID,
		RecurrenceDay: recurrenceDay,
		StartDate:     startDate,
		EndDate:       endDate,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test recurring expense: %v", err)
	}
	return rule
}

// CreateTestBudgetRule creates a budget rule with the given split.
func CreateTestBudgetRule(t *testing.T, db *gorm.DB, startDate time.Time, endDate *time.Time, needs, wants, savings float64) *models.BudgetRule {
	t.Helper()

	rule := &models.BudgetRule{
		Name:         fmt.Sprintf("Test Budget Rule %d", nextID()),
		StartDate:    startDate,
		EndDate:      endDate,
		NeedsRatio:   needs,
		WantsRatio:   wants,
		SavingsRatio: savings,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test budget rule: %v", err)
	}
	return rule
}
