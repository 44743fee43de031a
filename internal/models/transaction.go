package models

import "time"

// TransactionType represents the stored type of a transaction.
// The stored model is deliberately two-valued; the four-way
// presentation split is derived via DisplayTypeFor.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// DisplayType is the user-facing classification of a transaction,
// derived from the stored type and the category type. Never persisted.
type DisplayType string

const (
	DisplayTypeIncome     DisplayType = "income"
	DisplayTypeExpense    DisplayType = "expense"
	DisplayTypeTransfer   DisplayType = "transfer"
	DisplayTypeWithdrawal DisplayType = "withdrawal"
)

// Transaction represents a single dated cash movement. Amount is signed:
// positive is an inflow, negative an outflow. At most one of
// RecurringIncomeID/RecurringExpenseID is set, linking the transaction
// back to the rule that generated it.
type Transaction struct {
	Base
	Description string          `json:"description"`
	Amount      int64           `gorm:"type:bigint;not null" json:"amount"`
	Type        TransactionType `gorm:"not null" json:"type"`
	CategoryID  string          `gorm:"type:uuid;not null" json:"category_id"`
	Date        time.Time       `gorm:"not null" json:"date"`

	// DisplayType is derived, never persisted. Set via SetDisplayType
	// once the category is known.
	DisplayType DisplayType `gorm:"-" json:"display_type,omitempty"`

	// Provenance
	RecurringIncomeID  *string `gorm:"type:uuid" json:"recurring_income_id,omitempty"`
	RecurringExpenseID *string `gorm:"type:uuid" json:"recurring_expense_id,omitempty"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// SetDisplayType derives DisplayType from the preloaded Category. It is
// a no-op when the category relationship is not loaded.
func (t *Transaction) SetDisplayType() {
	if t.Category != nil {
		t.DisplayType = DisplayTypeFor(t.Type, t.Category.Type)
	}
}

// DisplayTypeFor maps the stored two-type model plus the category type to
// the four-way user-facing classification.
//
//	income  x savings  -> withdrawal (money leaves the savings pot)
//	expense x savings  -> transfer   (money moves into the savings pot)
//	income  x other    -> income
//	expense x other    -> expense
func DisplayTypeFor(txType TransactionType, categoryType CategoryType) DisplayType {
	if categoryType == CategoryTypeSavings {
		if txType == TransactionTypeIncome {
			return DisplayTypeWithdrawal
		}
		return DisplayTypeTransfer
	}
	if txType == TransactionTypeIncome {
		return DisplayTypeIncome
	}
	return DisplayTypeExpense
}
