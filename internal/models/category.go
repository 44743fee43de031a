package models

// CategoryType classifies a category for budget allocation purposes.
// The taxonomy is fixed: needs/wants/savings for spending buckets,
// income for inflows.
type CategoryType string

const (
	CategoryTypeNeeds   CategoryType = "needs"
	CategoryTypeWants   CategoryType = "wants"
	CategoryTypeSavings CategoryType = "savings"
	CategoryTypeIncome  CategoryType = "income"
)

// Category classifies transactions and recurring rules.
type Category struct {
	Base
	Name         string       `gorm:"not null" json:"name"`
	Type         CategoryType `gorm:"not null" json:"type"`
	Color        string       `json:"color"`
	Description  string       `json:"description"`
	IsPredefined bool         `gorm:"default:false" json:"is_predefined"`

	// Relationships
	Transactions      []Transaction      `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
	RecurringIncomes  []RecurringIncome  `gorm:"foreignKey:CategoryID" json:"recurring_incomes,omitempty"`
	RecurringExpenses []RecurringExpense `gorm:"foreignKey:CategoryID" json:"recurring_expenses,omitempty"`
}
