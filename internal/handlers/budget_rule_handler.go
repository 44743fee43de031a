package handlers

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// ratioSumTolerance absorbs float rounding when checking that the three
// ratios sum to 1.
const ratioSumTolerance = 1e-9

// BudgetRuleHandler handles budget rule requests.
type BudgetRuleHandler struct {
	budgetRuleService services.BudgetRuleServicer
}

// NewBudgetRuleHandler creates a new BudgetRuleHandler.
func NewBudgetRuleHandler(budgetRuleService services.BudgetRuleServicer) *BudgetRuleHandler {
	return &BudgetRuleHandler{budgetRuleService: budgetRuleService}
}

// CreateBudgetRuleRequest represents the request payload for creating a budget rule.
type CreateBudgetRuleRequest struct {
	Name         string  `json:"name" binding:"required,min=1,max=100"`
	StartDate    string  `json:"start_date" binding:"required"`
	EndDate      *string `json:"end_date"`
	NeedsRatio   float64 `json:"needs_ratio" binding:"min=0,max=1"`
	WantsRatio   float64 `json:"wants_ratio" binding:"min=0,max=1"`
	SavingsRatio float64 `json:"savings_ratio" binding:"min=0,max=1"`
}

// UpdateBudgetRuleRequest represents the request payload for updating a
// budget rule. Ratios must be provided together so the sum check stays
// meaningful.
type UpdateBudgetRuleRequest struct {
	Name         *string  `json:"name" binding:"omitempty,min=1,max=100"`
	StartDate    *string  `json:"start_date"`
	EndDate      *string  `json:"end_date"`
	NeedsRatio   *float64 `json:"needs_ratio" binding:"omitempty,min=0,max=1"`
	WantsRatio   *float64 `json:"wants_ratio" binding:"omitempty,min=0,max=1"`
	SavingsRatio *float64 `json:"savings_ratio" binding:"omitempty,min=0,max=1"`
}

// CreateBudgetRule handles the creation of a new budget rule.
func (h *BudgetRuleHandler) CreateBudgetRule(c *gin.Context) {
	var req CreateBudgetRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if math.Abs(req.NeedsRatio+req.WantsRatio+req.SavingsRatio-1) > ratioSumTolerance {
		respondWithError(c, apperrors.ErrInvalidRatioSum)
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var endDate *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, parseErr := parseDate(*req.EndDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		endDate = &parsed
	}

	rule, err := h.budgetRuleService.CreateBudgetRule(
		req.Name, startDate, endDate, req.NeedsRatio, req.WantsRatio, req.SavingsRatio,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"budget_rule": rule})
}

// GetBudgetRules handles listing budget rules.
func (h *BudgetRuleHandler) GetBudgetRules(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.budgetRuleService.GetBudgetRules(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudgetRuleByID handles retrieving a specific budget rule.
func (h *BudgetRuleHandler) GetBudgetRuleByID(c *gin.Context) {
	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rule, err := h.budgetRuleService.GetBudgetRuleByID(ruleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget_rule": rule})
}

// UpdateBudgetRule handles updating an existing budget rule.
func (h *BudgetRuleHandler) UpdateBudgetRule(c *gin.Context) {
	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	ratiosProvided := 0
	for _, r := range []*float64{req.NeedsRatio, req.WantsRatio, req.SavingsRatio} {
		if r != nil {
			ratiosProvided++
		}
	}
	if ratiosProvided != 0 {
		if ratiosProvided != 3 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "all three ratios must be provided together"))
			return
		}
		if math.Abs(*req.NeedsRatio+*req.WantsRatio+*req.SavingsRatio-1) > ratioSumTolerance {
			respondWithError(c, apperrors.ErrInvalidRatioSum)
			return
		}
	}

	var startDate, endDate *time.Time
	if req.StartDate != nil && *req.StartDate != "" {
		parsed, parseErr := parseDate(*req.StartDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		startDate = &parsed
	}
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, parseErr := parseDate(*req.EndDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		endDate = &parsed
	}

	rule, err := h.budgetRuleService.UpdateBudgetRule(
		ruleID, req.Name, startDate, endDate, req.NeedsRatio, req.WantsRatio, req.SavingsRatio,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget_rule": rule})
}

// DeleteBudgetRule handles deleting a budget rule.
func (h *BudgetRuleHandler) DeleteBudgetRule(c *gin.Context) {
	ruleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetRuleService.DeleteBudgetRule(ruleID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget rule deleted"})
}
