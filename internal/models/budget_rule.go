package models

import "time"

// BudgetRule is a named needs/wants/savings split effective over a date
// range. Ratios are fractions of period income. A nil EndDate means the
// rule is open-ended. Nothing in the stored model forces the ratios to
// sum to 1; the API layer enforces that at entry time.
type BudgetRule struct {
	Base
	Name         string     `gorm:"not null" json:"name"`
	StartDate    time.Time  `gorm:"not null" json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	NeedsRatio   float64    `gorm:"not null" json:"needs_ratio"`
	WantsRatio   float64    `gorm:"not null" json:"wants_ratio"`
	SavingsRatio float64    `gorm:"not null" json:"savings_ratio"`
}
