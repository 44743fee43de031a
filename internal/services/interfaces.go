package services

import (
	"time"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(name string, categoryType models.CategoryType, color, description string) (*models.Category, error)
	GetCategories(page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoriesByType(categoryType models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(categoryID string) (*models.Category, error)
	UpdateCategory(categoryID, name, color, description string) (*models.Category, error)
	DeleteCategory(categoryID string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(description string, amount int64, transactionType models.TransactionType, categoryID string, date time.Time) (*models.Transaction, error)
	GetTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(transactionID string) (*models.Transaction, error)
	UpdateTransaction(transactionID string, description *string, amount *int64, categoryID *string, date *time.Time) (*models.Transaction, error)
	DeleteTransaction(transactionID string) error
}

// RecurringServicer defines the contract for recurring income/expense rule
// management. Updating a rule discards every transaction it generated and
// resets the materialization cursor, so the next run regenerates history
// under the new parameters. Deleting a rule removes its transactions.
type RecurringServicer interface {
	CreateRecurringIncome(description string, amount int64, categoryID string, recurrenceDay int, startDate, endDate time.Time) (*models.RecurringIncome, error)
	GetRecurringIncomes(page pagination.PageRequest) (*pagination.PageResponse[models.RecurringIncome], error)
	GetRecurringIncomeByID(ruleID string) (*models.RecurringIncome, error)
	UpdateRecurringIncome(ruleID string, description *string, amount *int64, categoryID *string, recurrenceDay *int, startDate, endDate *time.Time) (*models.RecurringIncome, error)
	DeleteRecurringIncome(ruleID string) error

	CreateRecurringExpense(description string, amount int64, categoryID string, recurrenceDay int, startDate, endDate time.Time, contractEndDate *time.Time) (*models.RecurringExpense, error)
	GetRecurringExpenses(page pagination.PageRequest) (*pagination.PageResponse[models.RecurringExpense], error)
	GetRecurringExpenseByID(ruleID string) (*models.RecurringExpense, error)
	UpdateRecurringExpense(ruleID string, description *string, amount *int64, categoryID *string, recurrenceDay *int, startDate, endDate, contractEndDate *time.Time) (*models.RecurringExpense, error)
	DeleteRecurringExpense(ruleID string) error
}

// BudgetRuleServicer defines the contract for budget rule management.
type BudgetRuleServicer interface {
	CreateBudgetRule(name string, startDate time.Time, endDate *time.Time, needsRatio, wantsRatio, savingsRatio float64) (*models.BudgetRule, error)
	GetBudgetRules(page pagination.PageRequest) (*pagination.PageResponse[models.BudgetRule], error)
	GetBudgetRuleByID(ruleID string) (*models.BudgetRule, error)
	UpdateBudgetRule(ruleID string, name *string, startDate, endDate *time.Time, needsRatio, wantsRatio, savingsRatio *float64) (*models.BudgetRule, error)
	DeleteBudgetRule(ruleID string) error
}

// RuleKind selects which family of recurring rules an operation targets.
type RuleKind string

const (
	RuleKindIncome  RuleKind = "income"
	RuleKindExpense RuleKind = "expense"
)

// MaterializationResult reports the outcome of a materialization run.
type MaterializationResult struct {
	ProcessedRules      int `json:"processed_rules"`
	CreatedTransactions int `json:"created_transactions"`
}

// MaterializerServicer turns recurring rules plus elapsed time into
// concrete transaction rows. Runs are idempotent: a second call with the
// same reference date creates nothing.
type MaterializerServicer interface {
	MaterializeDue(kind RuleKind, today time.Time) (MaterializationResult, error)
	MaterializeAll(today time.Time) (MaterializationResult, error)
}

// DashboardServicer computes the reporting snapshot for a period.
type DashboardServicer interface {
	GetDashboard(period Period) (*DashboardSnapshot, error)
}
