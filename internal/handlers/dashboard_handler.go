package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// DashboardHandler handles dashboard requests.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
	materializer     services.MaterializerServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer, materializer services.MaterializerServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, materializer: materializer}
}

// GetDashboard materializes any due recurring transactions and returns
// the reporting snapshot for the requested period. The period defaults
// to the current calendar month; passing only year selects the whole
// year.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	now := time.Now()
	period := services.Period{Year: now.Year(), Month: now.Month()}

	if v := c.Query("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 1970 || year > 9999 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid year"))
			return
		}
		period.Year = year
		period.Month = 0
	}
	if v := c.Query("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid month"))
			return
		}
		period.Month = time.Month(month)
	}

	// Dashboard loads double as the materialization trigger: every due
	// recurring transaction exists before the snapshot is computed.
	if _, err := h.materializer.MaterializeAll(now); err != nil {
		respondWithError(c, err)
		return
	}

	snapshot, err := h.dashboardService.GetDashboard(period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dashboard": snapshot})
}
