package models

import "time"

// RecurringIncome is a template for a monthly income. Amount is a
// non-negative magnitude in cents. LastProcessedDate is the
// materialization cursor: transactions exist for every month up to and
// including the month containing it.
type RecurringIncome struct {
	Base
	Description       string     `gorm:"not null" json:"description"`
	Amount            int64      `gorm:"type:bigint;not null" json:"amount"`
	CategoryID        string     `gorm:"type:uuid;not null" json:"category_id"`
	RecurrenceDay     int        `gorm:"not null" json:"recurrence_day"`
	StartDate         time.Time  `gorm:"not null" json:"start_date"`
	EndDate           time.Time  `gorm:"not null" json:"end_date"`
	LastProcessedDate *time.Time `json:"last_processed_date,omitempty"`

	// Relationships
	Category     *Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:RecurringIncomeID" json:"transactions,omitempty"`
}

// RecurringExpense is a template for a monthly expense. Amount is stored
// as a positive magnitude; materialization applies the negative sign.
// ContractEndDate, when set, is a hard floor: EndDate may not precede it.
type RecurringExpense struct {
	Base
	Description       string     `gorm:"not null" json:"description"`
	Amount            int64      `gorm:"type:bigint;not null" json:"amount"`
	CategoryID        string     `gorm:"type:uuid;not null" json:"category_id"`
	RecurrenceDay     int        `gorm:"not null" json:"recurrence_day"`
	StartDate         time.Time  `gorm:"not null" json:"start_date"`
	EndDate           time.Time  `gorm:"not null" json:"end_date"`
	ContractEndDate   *time.Time `json:"contract_end_date,omitempty"`
	LastProcessedDate *time.Time `json:"last_processed_date,omitempty"`

	// Relationships
	Category     *Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:RecurringExpenseID" json:"transactions,omitempty"`
}
