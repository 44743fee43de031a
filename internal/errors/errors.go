// Package errors provides custom error types for the fintrack API.
// All service-layer errors should use AppError to ensure consistent
// error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Category errors.
var (
	ErrCategoryNotFound   = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategoryPredefined = &AppError{Code: "CATEGORY_PREDEFINED", Message: "Predefined categories cannot be deleted", StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
)

// Recurring rule errors.
var (
	ErrRecurringRuleNotFound = &AppError{Code: "RECURRING_RULE_NOT_FOUND", Message: "Recurring rule not found", StatusCode: http.StatusNotFound}
	ErrInvalidRecurrenceDay  = &AppError{Code: "INVALID_RECURRENCE_DAY", Message: "Recurrence day must be between 1 and 31", StatusCode: http.StatusBadRequest}
	ErrEndBeforeStart        = &AppError{Code: "END_BEFORE_START", Message: "End date must not be before start date", StatusCode: http.StatusBadRequest}
	ErrEndBeforeContractEnd  = &AppError{Code: "END_BEFORE_CONTRACT_END", Message: "End date must not be before the contract end date", StatusCode: http.StatusBadRequest}
)

// Budget rule errors.
var (
	ErrBudgetRuleNotFound = &AppError{Code: "BUDGET_RULE_NOT_FOUND", Message: "Budget rule not found", StatusCode: http.StatusNotFound}
	ErrInvalidRatioSum    = &AppError{Code: "INVALID_RATIO_SUM", Message: "Needs, wants, and savings ratios must sum to 1", StatusCode: http.StatusBadRequest}
)
