package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// RecurringHandler handles recurring income/expense rule requests.
type RecurringHandler struct {
	recurringService services.RecurringServicer
	materializer     services.MaterializerServicer
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(recurringService services.RecurringServicer, materializer services.MaterializerServicer) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService, materializer: materializer}
}

// CreateRecurringRuleRequest represents the request payload for creating
// a recurring rule. ContractEndDate is only honored for expense rules.
type CreateRecurringRuleRequest struct {
	Description     string  `json:"description" binding:"required,min=1,max=500"`
	Amount          int64   `json:"amount" binding:"required,gt=0"`
	CategoryID      string  `json:"category_id" binding:"required,uuid"`
	RecurrenceDay   int     `json:"recurrence_day" binding:"required,recurrence_day"`
	StartDate       string  `json:"start_date" binding:"required"`
	EndDate         string  `json:"end_date" binding:"required"`
	ContractEndDate *string `json:"contract_end_date"`
}

// UpdateRecurringRuleRequest represents the request payload for updating
// a recurring rule. Any provided field triggers full regeneration of the
// rule's transaction history.
type UpdateRecurringRuleRequest struct {
	Description     *string `json:"description" binding:"omitempty,min=1,max=500"`
	Amount          *int64  `json:"amount" binding:"omitempty,gt=0"`
	CategoryID      *string `json:"category_id" binding:"omitempty,uuid"`
	RecurrenceDay   *int    `json:"recurrence_day" binding:"omitempty,recurrence_day"`
	StartDate       *string `json:"start_date"`
	EndDate         *string `json:"end_date"`
	ContractEndDate *string `json:"contract_end_date"`
}

func (r *CreateRecurringRuleRequest) dates() (start, end time.Time, contractEnd *time.Time, err error) {
	if start, err = parseDate(r.StartDate); err != nil {
		return
	}
	if end, err = parseDate(r.EndDate); err != nil {
		return
	}
	if r.ContractEndDate != nil && *r.ContractEndDate != "" {
		var parsed time.Time
		if parsed, err = parseDate(*r.ContractEndDate); err != nil {
			return
		}
		contractEnd = &parsed
	}
	return
}

func (r *UpdateRecurringRuleRequest) dates() (start, end, contractEnd *time.Time, err error) {
	parse := func(v *string) (*time.Time, error) {
		if v == nil || *v == "" {
			return nil, nil
		}
		parsed, err := parseDate(*v)
		if err != nil {
			return nil, err
		}
		return &parsed, nil
	}
	if start, err = parse(r.StartDate); err != nil {
		return
	}
	if end, err = parse(r.EndDate); err != nil {
		return
	}
	contractEnd, err = parse(r.ContractEndDate)
	return
}

// CreateRecurringIncome handles the creation of a recurring income rule.
func (h *RecurringHandler) CreateRecurringIncome(c *gin.Context) {
	var req CreateRecurringRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	start, end, _, err := req.dates()
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	rule, err := h.recurringService.CreateRecurringIncome(
		req.Description, req.Amount, req.CategoryID, req.RecurrenceDay, start, end,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recurring_income": rule})
}

// GetRecurringIncomes handles listing recurring income rules.
func (h *RecurringHandler) GetRecurringIncomes(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.recurringService.GetRecurringIncomes(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRecurringIncomeByID handles retrieving a specific recurring income rule.
func (h *RecurringHandler) GetRecurringIncomeByID(c *gin.Context) {
	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rule, err := h.recurringService.GetRecurringIncomeByID(ruleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_income": rule})
}

// UpdateRecurringIncome handles updating a recurring income rule.
func (h *RecurringHandler) UpdateRecurringIncome(c *gin.Context) {
	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRecurringRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	start, end, _, err := req.dates()
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	rule, err := h.recurringService.UpdateRecurringIncome(
		ruleID, req.Description, req.Amount, req.CategoryID, req.RecurrenceDay, start, end,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_income": rule})
}

// DeleteRecurringIncome handles deleting a recurring income rule and its
// generated transactions.
func (h *RecurringHandler) DeleteRecurringIncome(c *gin.Context) {
	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recurringService.DeleteRecurringIncome(ruleID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recurring income deleted"})
}

// CreateRecurringExpense handles the creation of a recurring expense rule.
func (h *RecurringHandler) CreateRecurringExpense(c *gin.Context) {
	var req CreateRecurringRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	start, end, contractEnd, err := req.dates()
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	rule, err := h.recurringService.CreateRecurringExpense(
		req.Description, req.Amount, req.CategoryID, req.RecurrenceDay, start, end, contractEnd,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recurring_expense": rule})
}

// GetRecurringExpenses handles listing recurring expense rules.
func (h *RecurringHandler) GetRecurringExpenses(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.recurringService.GetRecurringExpenses(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRecurringExpenseByID handles retrieving a specific recurring expense rule.
func (h *RecurringHandler) GetRecurringExpenseByID(c *gin.Context) {
	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rule, err := h.recurringService.GetRecurringExpenseByID(ruleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_expense": rule})
}

// UpdateRecurringExpense handles updating a recurring expense rule.
func (h *RecurringHandler) UpdateRecurringExpense(c *gin.Context) {
	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRecurringRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	start, end, contractEnd, err := req.dates()
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	rule, err := h.recurringService.UpdateRecurringExpense(
		ruleID, req.Description, req.Amount, req.CategoryID, req.RecurrenceDay, start, end, contractEnd,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_expense": rule})
}

// DeleteRecurringExpense handles deleting a recurring expense rule and
// its generated transactions.
func (h *RecurringHandler) DeleteRecurringExpense(c *gin.Context) {
	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recurringService.DeleteRecurringExpense(ruleID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recurring expense deleted"})
}

// Materialize triggers materialization of both rule kinds for today.
func (h *RecurringHandler) Materialize(c *gin.Context) {
	result, err := h.materializer.MaterializeAll(time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
